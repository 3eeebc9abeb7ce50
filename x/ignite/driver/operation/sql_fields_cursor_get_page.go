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

// SQLFieldsCursorGetPage fetches the next page of a SQL fields cursor. The
// server does not repeat the column count, so the caller supplies it.
type SQLFieldsCursorGetPage struct {
	cursor     int64
	fieldCount int
	requestID  *int64
	monitor    *event.QueryMonitor
	logger     *logger.Logger
	registry   *bincodec.Registry
	connection driver.Connection

	result driver.FieldsPage
}

// NewSQLFieldsCursorGetPage constructs and returns a new SQLFieldsCursorGetPage.
func NewSQLFieldsCursorGetPage(cursor int64, fieldCount int) *SQLFieldsCursorGetPage {
	return &SQLFieldsCursorGetPage{cursor: cursor, fieldCount: fieldCount}
}

// Result returns the fetched page. Its Cursor and FieldNames are always nil.
func (sp *SQLFieldsCursorGetPage) Result() *driver.FieldsPage {
	return &sp.result
}

func (sp *SQLFieldsCursorGetPage) processResponse(payload []byte) (driver.ResponseInfo, []byte, error) {
	rows, more, rem, err := decodeFieldsRows(payload, sp.fieldCount, registryOrDefault(sp.registry))
	if err != nil {
		return driver.ResponseInfo{}, payload, err
	}
	sp.result = driver.FieldsPage{FieldCount: sp.fieldCount, Rows: rows, More: more}
	return driver.ResponseInfo{Rows: len(rows), More: more}, rem, nil
}

// Execute runs this operation and returns an error if the operation did not execute successfully.
func (sp *SQLFieldsCursorGetPage) Execute(ctx context.Context) error {
	if sp.fieldCount < 0 {
		return driver.ErrNegativeFieldCount
	}

	cursor := sp.cursor
	return driver.Operation{
		Name:              SQLFieldsCursorGetPageOp,
		OpCode:            wiremessage.OpQuerySQLFieldsCursorGetPage,
		Schema:            driver.CursorRequest,
		Values:            map[string]interface{}{"cursor": sp.cursor},
		ProcessResponseFn: sp.processResponse,
		Connection:        sp.connection,
		RequestID:         sp.requestID,
		CursorID:          &cursor,
		Monitor:           sp.monitor,
		Logger:            sp.logger,
	}.Execute(ctx)
}

// RequestID overrides the generated correlation id.
func (sp *SQLFieldsCursorGetPage) RequestID(id int64) *SQLFieldsCursorGetPage {
	if sp == nil {
		sp = new(SQLFieldsCursorGetPage)
	}

	sp.requestID = &id
	return sp
}

// QueryMonitor sets the monitor to use for query events.
func (sp *SQLFieldsCursorGetPage) QueryMonitor(monitor *event.QueryMonitor) *SQLFieldsCursorGetPage {
	if sp == nil {
		sp = new(SQLFieldsCursorGetPage)
	}

	sp.monitor = monitor
	return sp
}

// Logger sets the logger for this operation.
func (sp *SQLFieldsCursorGetPage) Logger(l *logger.Logger) *SQLFieldsCursorGetPage {
	if sp == nil {
		sp = new(SQLFieldsCursorGetPage)
	}

	sp.logger = l
	return sp
}

// Registry sets the registry used to decode values.
func (sp *SQLFieldsCursorGetPage) Registry(r *bincodec.Registry) *SQLFieldsCursorGetPage {
	if sp == nil {
		sp = new(SQLFieldsCursorGetPage)
	}

	sp.registry = r
	return sp
}

// Connection sets the connection to run this operation on.
func (sp *SQLFieldsCursorGetPage) Connection(conn driver.Connection) *SQLFieldsCursorGetPage {
	if sp == nil {
		sp = new(SQLFieldsCursorGetPage)
	}

	sp.connection = conn
	return sp
}
