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
	"github.com/ikmak/ignite-go-driver/x/binary/bincodec"
	"github.com/ikmak/ignite-go-driver/x/ignite/driver"
	"github.com/ikmak/ignite-go-driver/x/network/wiremessage"
)

// keyValueGetPage fetches the next page of a scan or SQL cursor. The two
// differ only by op code.
type keyValueGetPage struct {
	cursor     int64
	requestID  *int64
	monitor    *event.QueryMonitor
	logger     *logger.Logger
	registry   *bincodec.Registry
	connection driver.Connection

	result driver.KeyValuePage
}

func (kv *keyValueGetPage) execute(ctx context.Context, name string, opcode wiremessage.OpCode) error {
	cursor := kv.cursor
	return driver.Operation{
		Name:   name,
		OpCode: opcode,
		Schema: driver.CursorRequest,
		Values: map[string]interface{}{"cursor": kv.cursor},
		ProcessResponseFn: func(payload []byte) (driver.ResponseInfo, []byte, error) {
			var info driver.ResponseInfo
			var rem []byte
			var err error
			kv.result, info, rem, err = decodeKeyValuePage(payload, driver.KeyValuePageResponse, registryOrDefault(kv.registry))
			return info, rem, err
		},
		Connection: kv.connection,
		RequestID:  kv.requestID,
		CursorID:   &cursor,
		Monitor:    kv.monitor,
		Logger:     kv.logger,
	}.Execute(ctx)
}

// ScanCursorGetPage fetches the next page of a scan cursor.
type ScanCursorGetPage struct {
	keyValueGetPage
}

// NewScanCursorGetPage constructs and returns a new ScanCursorGetPage.
func NewScanCursorGetPage(cursor int64) *ScanCursorGetPage {
	return &ScanCursorGetPage{keyValueGetPage{cursor: cursor}}
}

// Result returns the fetched page. Its Cursor is always nil.
func (sp *ScanCursorGetPage) Result() *driver.KeyValuePage { return &sp.result }

// Execute runs this operation and returns an error if the operation did not execute successfully.
func (sp *ScanCursorGetPage) Execute(ctx context.Context) error {
	return sp.execute(ctx, ScanCursorGetPageOp, wiremessage.OpQueryScanCursorGetPage)
}

// RequestID overrides the generated correlation id.
func (sp *ScanCursorGetPage) RequestID(id int64) *ScanCursorGetPage {
	if sp == nil {
		sp = new(ScanCursorGetPage)
	}

	sp.requestID = &id
	return sp
}

// QueryMonitor sets the monitor to use for query events.
func (sp *ScanCursorGetPage) QueryMonitor(monitor *event.QueryMonitor) *ScanCursorGetPage {
	if sp == nil {
		sp = new(ScanCursorGetPage)
	}

	sp.monitor = monitor
	return sp
}

// Logger sets the logger for this operation.
func (sp *ScanCursorGetPage) Logger(l *logger.Logger) *ScanCursorGetPage {
	if sp == nil {
		sp = new(ScanCursorGetPage)
	}

	sp.logger = l
	return sp
}

// Registry sets the registry used to decode keys and values.
func (sp *ScanCursorGetPage) Registry(r *bincodec.Registry) *ScanCursorGetPage {
	if sp == nil {
		sp = new(ScanCursorGetPage)
	}

	sp.registry = r
	return sp
}

// Connection sets the connection to run this operation on.
func (sp *ScanCursorGetPage) Connection(conn driver.Connection) *ScanCursorGetPage {
	if sp == nil {
		sp = new(ScanCursorGetPage)
	}

	sp.connection = conn
	return sp
}

// SQLCursorGetPage fetches the next page of a SQL cursor.
type SQLCursorGetPage struct {
	keyValueGetPage
}

// NewSQLCursorGetPage constructs and returns a new SQLCursorGetPage.
func NewSQLCursorGetPage(cursor int64) *SQLCursorGetPage {
	return &SQLCursorGetPage{keyValueGetPage{cursor: cursor}}
}

// Result returns the fetched page. Its Cursor is always nil.
func (sp *SQLCursorGetPage) Result() *driver.KeyValuePage { return &sp.result }

// Execute runs this operation and returns an error if the operation did not execute successfully.
func (sp *SQLCursorGetPage) Execute(ctx context.Context) error {
	return sp.execute(ctx, SQLCursorGetPageOp, wiremessage.OpQuerySQLCursorGetPage)
}

// RequestID overrides the generated correlation id.
func (sp *SQLCursorGetPage) RequestID(id int64) *SQLCursorGetPage {
	if sp == nil {
		sp = new(SQLCursorGetPage)
	}

	sp.requestID = &id
	return sp
}

// QueryMonitor sets the monitor to use for query events.
func (sp *SQLCursorGetPage) QueryMonitor(monitor *event.QueryMonitor) *SQLCursorGetPage {
	if sp == nil {
		sp = new(SQLCursorGetPage)
	}

	sp.monitor = monitor
	return sp
}

// Logger sets the logger for this operation.
func (sp *SQLCursorGetPage) Logger(l *logger.Logger) *SQLCursorGetPage {
	if sp == nil {
		sp = new(SQLCursorGetPage)
	}

	sp.logger = l
	return sp
}

// Registry sets the registry used to decode keys and values.
func (sp *SQLCursorGetPage) Registry(r *bincodec.Registry) *SQLCursorGetPage {
	if sp == nil {
		sp = new(SQLCursorGetPage)
	}

	sp.registry = r
	return sp
}

// Connection sets the connection to run this operation on.
func (sp *SQLCursorGetPage) Connection(conn driver.Connection) *SQLCursorGetPage {
	if sp == nil {
		sp = new(SQLCursorGetPage)
	}

	sp.connection = conn
	return sp
}
