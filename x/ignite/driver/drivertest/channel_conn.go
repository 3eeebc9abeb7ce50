// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package drivertest provides fake connections and an in-memory server for
// testing code built on the driver.
package drivertest

import (
	"context"
	"errors"

	"github.com/ikmak/ignite-go-driver/x/binary/bincodec"
	"github.com/ikmak/ignite-go-driver/x/binary/bincore"
	"github.com/ikmak/ignite-go-driver/x/ignite/driver"
	"github.com/ikmak/ignite-go-driver/x/network/wiremessage"
)

// ChannelConn implements the driver.Connection interface by reading and writing wire messages
// to a channel
type ChannelConn struct {
	WriteErr error
	Written  chan []byte
	ReadResp chan []byte
	ReadErr  chan error
	Closed   bool
}

var _ driver.Connection = (*ChannelConn)(nil)

// NewChannelConn returns a ChannelConn with buffered channels of the given size.
func NewChannelConn(size int) *ChannelConn {
	return &ChannelConn{
		Written:  make(chan []byte, size),
		ReadResp: make(chan []byte, size),
		ReadErr:  make(chan error, size),
	}
}

// WriteWireMessage implements the driver.Connection interface.
func (c *ChannelConn) WriteWireMessage(ctx context.Context, wm []byte) error {
	// Copy wm in case the caller reuses it.
	b := make([]byte, len(wm))
	copy(b, wm)
	select {
	case c.Written <- b:
	default:
		c.WriteErr = errors.New("could not write wiremessage to written channel")
	}
	return c.WriteErr
}

// ReadWireMessage implements the driver.Connection interface.
func (c *ChannelConn) ReadWireMessage(ctx context.Context, dst []byte) ([]byte, error) {
	dst = dst[:0]
	var wm []byte
	var err error
	select {
	case wm = <-c.ReadResp:
	case err = <-c.ReadErr:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if l := len(wm); l > 0 {
		if l > cap(dst) {
			dst = make([]byte, 0, l)
		}
		dst = append(dst, wm...)
	}
	return dst, err
}

// Close implements the driver.Connection interface.
func (c *ChannelConn) Close() error {
	c.Closed = true
	return nil
}

// ID implements the driver.Connection interface.
func (c *ChannelConn) ID() string {
	return "faked"
}

// MakeResponse creates a successful response to reqid carrying payload.
func MakeResponse(reqid int64, payload []byte) []byte {
	idx, dst := wiremessage.AppendResponseHeaderStart(nil, reqid, wiremessage.StatusSuccess)
	dst = append(dst, payload...)
	return wiremessage.UpdateLength(dst, idx)
}

// MakeErrorResponse creates a response to reqid with a non-zero status.
func MakeErrorResponse(reqid int64, status int32, msg string) []byte {
	idx, dst := wiremessage.AppendResponseHeaderStart(nil, reqid, wiremessage.Status(status))
	dst = bincore.AppendStringObject(dst, msg)
	return wiremessage.UpdateLength(dst, idx)
}

// Request is a decoded request as seen by a server.
type Request struct {
	OpCode    wiremessage.OpCode
	RequestID int64
	Fields    map[string]interface{}
}

// RequestSchema returns the layout of requests with the given op code.
func RequestSchema(op wiremessage.OpCode) (driver.Schema, bool) {
	switch op {
	case wiremessage.OpQueryScan:
		return driver.ScanRequest, true
	case wiremessage.OpQuerySQL:
		return driver.SQLRequest, true
	case wiremessage.OpQuerySQLFields:
		return driver.SQLFieldsRequest, true
	case wiremessage.OpQueryScanCursorGetPage, wiremessage.OpQuerySQLCursorGetPage,
		wiremessage.OpQuerySQLFieldsCursorGetPage, wiremessage.OpResourceClose:
		return driver.CursorRequest, true
	}
	return nil, false
}

// GetRequest decodes a request wire message written by the driver.
func GetRequest(wm []byte) (Request, error) {
	length, op, reqid, rem, ok := wiremessage.ReadRequestHeader(wm)
	if !ok {
		return Request{}, errors.New("could not read header")
	}
	if int(length) != len(wm)-4 {
		return Request{}, errors.New("length does not match message size")
	}
	s, ok := RequestSchema(op)
	if !ok {
		return Request{}, errors.New("unknown op code " + op.String())
	}
	fields, rem, err := driver.DecodeFields(rem, s, bincodec.DefaultRegistry)
	if err != nil {
		return Request{}, err
	}
	if len(rem) != 0 {
		return Request{}, driver.ErrTrailingBytes
	}
	return Request{OpCode: op, RequestID: reqid, Fields: fields}, nil
}
