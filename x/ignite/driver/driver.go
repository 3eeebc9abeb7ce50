// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package driver contains the request builder, the response decoder and the
// round trip logic shared by every thin client query operation.
//
// Operations are described by an ordered Schema. Requests are built by
// encoding the bound values in schema order, responses are decoded field by
// field, and Operation.Execute ties the two together over a Connection.
package driver // import "github.com/ikmak/ignite-go-driver/x/ignite/driver"

import (
	"context"
	"unicode/utf16"

	"github.com/ikmak/ignite-go-driver/internal/logger"
)

// Connection represents a connection to an Ignite node. Implementations are
// half-duplex: a response must be read before the next request is written.
type Connection interface {
	WriteWireMessage(context.Context, []byte) error
	ReadWireMessage(ctx context.Context, dst []byte) ([]byte, error)
	Close() error
	ID() string
}

// LoggerSource is implemented by connections that carry a logger. Operations
// without an explicit logger use it.
type LoggerSource interface {
	Logger() *logger.Logger
}

// CacheID returns the identifier of the named cache, which is the Java
// String.hashCode of the name.
func CacheID(name string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(name)) {
		h = 31*h + int32(c)
	}
	return h
}
