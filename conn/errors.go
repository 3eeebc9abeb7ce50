// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package conn

import (
	"errors"
	"fmt"

	"github.com/ikmak/ignite-go-driver/x/ignite/driver"
	"github.com/ikmak/ignite-go-driver/x/network/wiremessage"
)

var (
	// ErrConnectionClosed is returned by every call on a closed or faulted connection.
	ErrConnectionClosed = errors.New("connection is closed")
	// ErrNoPendingRequest is returned when a response is read without a request having been written.
	ErrNoPendingRequest = errors.New("no request is waiting for a response")
)

// ConnectionError represents a fault of the underlying network connection.
// The connection is unusable afterwards.
type ConnectionError struct {
	ConnectionID string

	message string
	inner   error
}

// Message gets the basic error message.
func (e ConnectionError) Message() string {
	return e.message
}

// Error implements the error interface.
func (e ConnectionError) Error() string {
	if e.inner != nil {
		return fmt.Sprintf("connection(%s) %s: %v", e.ConnectionID, e.message, e.inner)
	}
	return fmt.Sprintf("connection(%s) %s", e.ConnectionID, e.message)
}

// Unwrap returns the underlying error.
func (e ConnectionError) Unwrap() error {
	return e.inner
}

// busyError is returned when a writer gives up waiting for the response of
// the previous request. It matches driver.ErrConnectionBusy and unwraps to the
// context error.
type busyError struct {
	error
}

func (e busyError) Is(target error) bool { return target == driver.ErrConnectionBusy }

func (e busyError) Unwrap() error { return e.error }

// HandshakeError is returned by Dial when the node refuses the protocol
// version offered.
type HandshakeError struct {
	Requested wiremessage.Version
	// Server is the version the node supports.
	Server  wiremessage.Version
	Message string
}

// Error implements the error interface.
func (e HandshakeError) Error() string {
	return fmt.Sprintf("handshake for version %d.%d.%d rejected, server supports %d.%d.%d: %s",
		e.Requested.Major, e.Requested.Minor, e.Requested.Patch,
		e.Server.Major, e.Server.Minor, e.Server.Patch, e.Message)
}

// MessageTooLargeError is returned when a response announces a length over
// the configured maximum.
type MessageTooLargeError struct {
	Size, Max int32
}

// Error implements the error interface.
func (e MessageTooLargeError) Error() string {
	return fmt.Sprintf("message length %d exceeds maximum %d", e.Size, e.Max)
}
