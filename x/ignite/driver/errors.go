// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package driver

import (
	"errors"
	"fmt"

	"github.com/ikmak/ignite-go-driver/x/network/wiremessage"
)

var (
	// ErrNoConnection is returned when an operation is executed without a connection.
	ErrNoConnection = errors.New("operation must have a Connection set before Execute can be called")
	// ErrTrailingBytes occurs when a response payload holds more than its schema describes.
	ErrTrailingBytes = errors.New("response has trailing bytes")
	// ErrNegativeFieldCount occurs when a field projection page is requested with a negative column count.
	ErrNegativeFieldCount = errors.New("field count must not be negative")
	// ErrConnectionBusy is returned by connections when a request could not be
	// written because another request was still waiting for its response.
	// The connection remains usable.
	ErrConnectionBusy = errors.New("connection is busy with another request")
)

// Server status codes that callers commonly branch on.
const (
	StatusFailed               int32 = 1
	StatusInvalidOpCode        int32 = 2
	StatusCacheDoesNotExist    int32 = 1000
	StatusCacheExists          int32 = 1001
	StatusTooManyCursors       int32 = 1010
	StatusResourceDoesNotExist int32 = 1011
	StatusSecurityViolation    int32 = 1012
)

// Error is a non-zero status returned by the server. The request failed but
// the connection stays usable.
type Error struct {
	Status    int32
	Message   string
	OpCode    wiremessage.OpCode
	RequestID int64
}

// Error implements the error interface.
func (e Error) Error() string {
	return fmt.Sprintf("%s (request %d) failed with status %d: %s", e.OpCode, e.RequestID, e.Status, e.Message)
}

// ConnectionError represents a fault that leaves the connection unusable:
// an I/O failure or a response that could not be decoded.
type ConnectionError struct {
	ConnectionID string
	Wrapped      error

	message string
}

// Error implements the error interface.
func (e ConnectionError) Error() string {
	if e.Wrapped != nil && e.message != "" {
		return fmt.Sprintf("connection(%s) %s: %s", e.ConnectionID, e.message, e.Wrapped.Error())
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("connection(%s) %s", e.ConnectionID, e.Wrapped.Error())
	}
	return fmt.Sprintf("connection(%s) %s", e.ConnectionID, e.message)
}

// Unwrap returns the underlying error.
func (e ConnectionError) Unwrap() error {
	return e.Wrapped
}

// IsStatusError reports whether err carries a server status.
func IsStatusError(err error) bool {
	var e Error
	return errors.As(err, &e)
}

// StatusOf returns the server status carried by err, or 0.
func StatusOf(err error) int32 {
	var e Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// IsConnectionError reports whether err is fatal to the connection.
func IsConnectionError(err error) bool {
	var e ConnectionError
	return errors.As(err, &e)
}
