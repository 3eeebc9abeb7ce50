// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package event contains the monitors the driver reports to.
package event // import "github.com/ikmak/ignite-go-driver/event"

import (
	"context"
	"time"
)

// QueryStartedEvent represents an event generated when a query request is
// written to a connection.
type QueryStartedEvent struct {
	OperationName string
	OpCode        int16
	RequestID     int64
	ConnectionID  string
	// CursorID is set for page fetches and resource closes.
	CursorID *int64
}

// QueryFinishedEvent represents a generic query round trip finishing.
type QueryFinishedEvent struct {
	Duration      time.Duration
	OperationName string
	OpCode        int16
	RequestID     int64
	ConnectionID  string
}

// QuerySucceededEvent represents an event generated when the server answered
// with status 0 and the response was decoded.
type QuerySucceededEvent struct {
	QueryFinishedEvent
	// CursorID is the handle opened by the query, if any.
	CursorID *int64
	Rows     int
	More     bool
}

// QueryFailedEvent represents an event generated when a query fails, either
// with a server status or a connection fault.
type QueryFailedEvent struct {
	QueryFinishedEvent
	// Status is the server status, zero for connection faults.
	Status  int32
	Failure string
}

// QueryMonitor represents a monitor that is triggered for different events.
type QueryMonitor struct {
	Started   func(context.Context, *QueryStartedEvent)
	Succeeded func(context.Context, *QuerySucceededEvent)
	Failed    func(context.Context, *QueryFailedEvent)
}

// MultiQueryMonitor returns a monitor that fans events out to every non-nil
// monitor, in order.
func MultiQueryMonitor(monitors ...*QueryMonitor) *QueryMonitor {
	return &QueryMonitor{
		Started: func(ctx context.Context, evt *QueryStartedEvent) {
			for _, m := range monitors {
				if m != nil && m.Started != nil {
					m.Started(ctx, evt)
				}
			}
		},
		Succeeded: func(ctx context.Context, evt *QuerySucceededEvent) {
			for _, m := range monitors {
				if m != nil && m.Succeeded != nil {
					m.Succeeded(ctx, evt)
				}
			}
		},
		Failed: func(ctx context.Context, evt *QueryFailedEvent) {
			for _, m := range monitors {
				if m != nil && m.Failed != nil {
					m.Failed(ctx, evt)
				}
			}
		},
	}
}

// strings for connection monitoring reasons
const (
	ReasonClosed            = "closed"
	ReasonConnectionErrored = "connectionError"
	ReasonHandshakeRejected = "handshakeRejected"
)

// strings for connection monitoring types
const (
	ConnectionCreated = "ConnectionCreated"
	ConnectionReady   = "ConnectionReady"
	ConnectionClosed  = "ConnectionClosed"
)

// ConnectionEvent contains all information summarizing a connection event.
type ConnectionEvent struct {
	Type         string `json:"type"`
	Address      string `json:"address"`
	ConnectionID string `json:"connectionId"`
	Reason       string `json:"reason"`
	Error        error  `json:"-"`
}

// ConnectionMonitor is a function that allows the user to gain access to
// events occurring on a connection.
type ConnectionMonitor struct {
	Event func(*ConnectionEvent)
}
