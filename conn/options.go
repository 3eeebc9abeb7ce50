// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package conn

import (
	"time"

	"github.com/ikmak/ignite-go-driver/event"
	"github.com/ikmak/ignite-go-driver/internal/logger"
	"github.com/ikmak/ignite-go-driver/x/network/wiremessage"
)

// DefaultMaxMessageSize bounds the length of a single response.
const DefaultMaxMessageSize = 256 << 20

func newConfig(opts ...Option) *config {
	cfg := &config{
		dialer:         dialNet,
		version:        wiremessage.DefaultVersion,
		connectTimeout: 30 * time.Second,
		maxMessageSize: DefaultMaxMessageSize,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// Option configures a connection.
type Option func(*config)

type config struct {
	dialer         NetDialer
	version        wiremessage.Version
	connectTimeout time.Duration
	maxMessageSize int32
	monitor        *event.ConnectionMonitor
	logger         *logger.Logger
}

// WithDialer sets the function used to open the network connection. Use it
// to enable things like TLS.
func WithDialer(dialer NetDialer) Option {
	return func(c *config) {
		c.dialer = dialer
	}
}

// WithVersion sets the protocol version offered in the handshake.
func WithVersion(v wiremessage.Version) Option {
	return func(c *config) {
		c.version = v
	}
}

// WithConnectTimeout bounds dialing and the handshake together. Zero means
// only the context passed to Dial applies.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *config) {
		c.connectTimeout = d
	}
}

// WithMaxMessageSize bounds the length of a single response.
func WithMaxMessageSize(size int32) Option {
	return func(c *config) {
		c.maxMessageSize = size
	}
}

// WithMonitor sets the monitor notified of connection events.
func WithMonitor(monitor *event.ConnectionMonitor) Option {
	return func(c *config) {
		c.monitor = monitor
	}
}

// WithLogger sets the logger used by the connection and by operations run
// on it.
func WithLogger(l *logger.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}
