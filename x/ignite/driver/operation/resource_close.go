// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package operation

import (
	"context"

	"github.com/ikmak/ignite-go-driver/event"
	"github.com/ikmak/ignite-go-driver/internal/logger"
	"github.com/ikmak/ignite-go-driver/x/ignite/driver"
	"github.com/ikmak/ignite-go-driver/x/network/wiremessage"
)

// ResourceClose releases a server side resource such as a query cursor.
// Closing a handle the server no longer knows fails with
// driver.StatusResourceDoesNotExist.
type ResourceClose struct {
	resource   int64
	requestID  *int64
	monitor    *event.QueryMonitor
	logger     *logger.Logger
	connection driver.Connection
}

// NewResourceClose constructs and returns a new ResourceClose.
func NewResourceClose(resource int64) *ResourceClose {
	return &ResourceClose{resource: resource}
}

// Execute runs this operation and returns an error if the operation did not execute successfully.
func (rc *ResourceClose) Execute(ctx context.Context) error {
	resource := rc.resource
	return driver.Operation{
		Name:       ResourceCloseOp,
		OpCode:     wiremessage.OpResourceClose,
		Schema:     driver.CursorRequest,
		Values:     map[string]interface{}{"cursor": rc.resource},
		Connection: rc.connection,
		RequestID:  rc.requestID,
		CursorID:   &resource,
		Monitor:    rc.monitor,
		Logger:     rc.logger,
	}.Execute(ctx)
}

// RequestID overrides the generated correlation id.
func (rc *ResourceClose) RequestID(id int64) *ResourceClose {
	if rc == nil {
		rc = new(ResourceClose)
	}

	rc.requestID = &id
	return rc
}

// QueryMonitor sets the monitor to use for query events.
func (rc *ResourceClose) QueryMonitor(monitor *event.QueryMonitor) *ResourceClose {
	if rc == nil {
		rc = new(ResourceClose)
	}

	rc.monitor = monitor
	return rc
}

// Logger sets the logger for this operation.
func (rc *ResourceClose) Logger(l *logger.Logger) *ResourceClose {
	if rc == nil {
		rc = new(ResourceClose)
	}

	rc.logger = l
	return rc
}

// Connection sets the connection to run this operation on.
func (rc *ResourceClose) Connection(conn driver.Connection) *ResourceClose {
	if rc == nil {
		rc = new(ResourceClose)
	}

	rc.connection = conn
	return rc
}
