// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package conn implements connections to Ignite nodes over the thin client
// protocol. A Connection carries one request at a time: the response to a
// request must be read before the next request is written, and concurrent
// writers wait for their turn.
package conn

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"

	"github.com/ikmak/ignite-go-driver/event"
	"github.com/ikmak/ignite-go-driver/internal/logger"
	"github.com/ikmak/ignite-go-driver/x/ignite/driver"
	"github.com/ikmak/ignite-go-driver/x/network/wiremessage"
)

var globalConnectionID uint64

func nextConnectionID() uint64 {
	return atomic.AddUint64(&globalConnectionID, 1)
}

// aLongTimeAgo is a deadline in the past, used to interrupt blocked I/O.
var aLongTimeAgo = time.Unix(1, 0)

// Connection is a handshaken connection to an Ignite node. It implements
// driver.Connection and is safe for concurrent use.
type Connection struct {
	id             string
	ep             Endpoint
	nc             net.Conn
	version        wiremessage.Version
	maxMessageSize int32
	monitor        *event.ConnectionMonitor
	logger         *logger.Logger

	// turn is held from a successful write until the matching read.
	turn    *semaphore.Weighted
	pending int32
	dead    int32

	closeOnce sync.Once
}

var (
	_ driver.Connection   = (*Connection)(nil)
	_ driver.LoggerSource = (*Connection)(nil)
)

// Dial opens a connection to the node at endpoint and performs the protocol
// handshake.
func Dial(ctx context.Context, endpoint Endpoint, opts ...Option) (*Connection, error) {
	cfg := newConfig(opts...)
	ep := endpoint.Canonicalize()

	if cfg.connectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.connectTimeout)
		defer cancel()
	}

	id := fmt.Sprintf("%s[-%d]", ep, nextConnectionID())
	nc, err := cfg.dialer(ctx, "tcp", string(ep))
	if err != nil {
		return nil, ConnectionError{ConnectionID: id, message: "unable to dial", inner: err}
	}

	c := &Connection{
		id:             id,
		ep:             ep,
		nc:             nc,
		version:        cfg.version,
		maxMessageSize: cfg.maxMessageSize,
		monitor:        cfg.monitor,
		logger:         cfg.logger,
		turn:           semaphore.NewWeighted(1),
	}
	c.publish(event.ConnectionCreated, "", nil)
	c.logger.Print(logger.LevelInfo, logger.ComponentConnection, logger.ConnectionCreated, c.keyValues()...)

	if err := c.handshake(ctx); err != nil {
		reason := event.ReasonConnectionErrored
		var he HandshakeError
		if errors.As(err, &he) {
			reason = event.ReasonHandshakeRejected
			c.logger.Print(logger.LevelInfo, logger.ComponentConnection, logger.HandshakeRejected,
				append(c.keyValues(), logger.KeyMessage, he.Message)...)
		}
		_ = c.close(reason, err)
		return nil, err
	}

	c.publish(event.ConnectionReady, "", nil)
	c.logger.Print(logger.LevelInfo, logger.ComponentConnection, logger.ConnectionReady, c.keyValues()...)
	return c, nil
}

func (c *Connection) handshake(ctx context.Context) error {
	var resp []byte
	err := c.withContext(ctx, func() error {
		if _, err := c.nc.Write(wiremessage.AppendHandshakeRequest(nil, c.version)); err != nil {
			return err
		}
		var err error
		resp, err = c.readFrame(nil)
		return err
	})
	if err != nil {
		return c.wrapError(err, "handshake failed")
	}

	success, server, msg, ok := wiremessage.ReadHandshakeResponse(resp[4:])
	if !ok {
		return c.wrapError(errors.New("malformed handshake response"), "handshake failed")
	}
	if !success {
		return HandshakeError{Requested: c.version, Server: server, Message: msg}
	}
	return nil
}

// WriteWireMessage writes a request. If a previous response has not been
// read yet it waits until it is, or until ctx is done.
func (c *Connection) WriteWireMessage(ctx context.Context, wm []byte) error {
	if !c.Alive() {
		return c.wrapError(ErrConnectionClosed, "unable to write wire message")
	}
	if err := c.turn.Acquire(ctx, 1); err != nil {
		return busyError{errors.Wrap(err, driver.ErrConnectionBusy.Error())}
	}
	// the connection may have been closed while waiting
	if !c.Alive() {
		c.turn.Release(1)
		return c.wrapError(ErrConnectionClosed, "unable to write wire message")
	}

	err := c.withContext(ctx, func() error {
		_, err := c.nc.Write(wm)
		return err
	})
	if err != nil {
		c.turn.Release(1)
		c.fault(err)
		return c.wrapError(err, "unable to write wire message")
	}
	atomic.StoreInt32(&c.pending, 1)
	return nil
}

// ReadWireMessage reads the response to the last request written, appending
// it to dst[:0].
func (c *Connection) ReadWireMessage(ctx context.Context, dst []byte) ([]byte, error) {
	if !c.Alive() {
		return dst[:0], c.wrapError(ErrConnectionClosed, "unable to read wire message")
	}
	if atomic.LoadInt32(&c.pending) == 0 {
		return dst[:0], ErrNoPendingRequest
	}

	var wm []byte
	err := c.withContext(ctx, func() error {
		var err error
		wm, err = c.readFrame(dst[:0])
		return err
	})
	if err != nil {
		c.fault(err)
		return dst[:0], c.wrapError(err, "unable to read wire message")
	}
	c.releaseTurn()
	return wm, nil
}

func (c *Connection) releaseTurn() {
	if atomic.CompareAndSwapInt32(&c.pending, 1, 0) {
		c.turn.Release(1)
	}
}

// readFrame reads one length-prefixed message, length included.
func (c *Connection) readFrame(dst []byte) ([]byte, error) {
	var size [4]byte
	if _, err := io.ReadFull(c.nc, size[:]); err != nil {
		return dst, err
	}
	length, _, _ := wiremessage.ReadLength(size[:])
	if length < 0 || length > c.maxMessageSize {
		return dst, MessageTooLargeError{Size: length, Max: c.maxMessageSize}
	}

	total := 4 + int(length)
	if cap(dst) < total {
		dst = make([]byte, 0, total)
	}
	dst = append(dst[:0], size[:]...)
	dst = dst[:total]
	if _, err := io.ReadFull(c.nc, dst[4:]); err != nil {
		return dst[:0], err
	}
	return dst, nil
}

// withContext runs fn with the deadline of ctx applied to the network
// connection. Cancelling ctx interrupts fn.
func (c *Connection) withContext(ctx context.Context, fn func() error) error {
	deadline, _ := ctx.Deadline()
	if err := c.nc.SetDeadline(deadline); err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() {
		_ = c.nc.SetDeadline(aLongTimeAgo)
	})
	err := fn()
	stop()
	if err != nil && ctx.Err() != nil {
		return errors.Wrap(ctx.Err(), err.Error())
	}
	return err
}

// Alive reports whether the connection can still be used.
func (c *Connection) Alive() bool {
	return atomic.LoadInt32(&c.dead) == 0
}

// Close closes the connection. It is safe to call more than once.
func (c *Connection) Close() error {
	return c.close(event.ReasonClosed, nil)
}

func (c *Connection) fault(err error) {
	c.logger.Error(err, logger.ComponentConnection, logger.ConnectionFaulted, c.keyValues()...)
	_ = c.close(event.ReasonConnectionErrored, err)
}

func (c *Connection) close(reason string, cause error) error {
	var err error
	c.closeOnce.Do(func() {
		atomic.StoreInt32(&c.dead, 1)
		err = c.nc.Close()
		c.releaseTurn()
		c.publish(event.ConnectionClosed, reason, cause)
		c.logger.Print(logger.LevelInfo, logger.ComponentConnection, logger.ConnectionClosed,
			append(c.keyValues(), logger.KeyFailure, reason)...)
	})
	if err != nil {
		return c.wrapError(err, "failed closing")
	}
	return nil
}

// ID returns the identifier of the connection.
func (c *Connection) ID() string {
	return c.id
}

// Endpoint returns the canonical address of the node.
func (c *Connection) Endpoint() Endpoint {
	return c.ep
}

// Version returns the protocol version agreed in the handshake.
func (c *Connection) Version() wiremessage.Version {
	return c.version
}

// Logger implements driver.LoggerSource.
func (c *Connection) Logger() *logger.Logger {
	return c.logger
}

func (c *Connection) keyValues() []interface{} {
	var kvs logger.KeyValues
	kvs.Add(logger.KeyConnectionID, c.id)
	if host, port, err := net.SplitHostPort(string(c.ep)); err == nil {
		kvs.Add(logger.KeyServerHost, host)
		kvs.Add(logger.KeyServerPort, port)
	}
	return kvs
}

func (c *Connection) publish(typ, reason string, err error) {
	if c.monitor == nil || c.monitor.Event == nil {
		return
	}
	c.monitor.Event(&event.ConnectionEvent{
		Type:         typ,
		Address:      string(c.ep),
		ConnectionID: c.id,
		Reason:       reason,
		Error:        err,
	})
}

func (c *Connection) wrapError(inner error, message string) error {
	return ConnectionError{ConnectionID: c.id, message: message, inner: inner}
}
