// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package operation

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/ikmak/ignite-go-driver/event"
	"github.com/ikmak/ignite-go-driver/internal/logger"
	"github.com/ikmak/ignite-go-driver/x/binary/bincodec"
	"github.com/ikmak/ignite-go-driver/x/ignite/driver"
	"github.com/ikmak/ignite-go-driver/x/network/wiremessage"
)

// StatementType restricts the kind of statement a SQL fields query accepts.
type StatementType int8

// These constants are the statement types understood by the server.
const (
	StatementAny    StatementType = 0
	StatementSelect StatementType = 1
	StatementUpdate StatementType = 2
)

// SQLFields performs a SQL query that returns projected columns.
type SQLFields struct {
	cacheID           int32
	query             string
	pageSize          int32
	schema            *string
	maxRows           *int32
	args              []interface{}
	statementType     *StatementType
	distributedJoins  *bool
	local             *bool
	replicatedOnly    *bool
	enforceJoinOrder  *bool
	collocated        *bool
	lazy              *bool
	timeout           *time.Duration
	includeFieldNames *bool
	keepBinary        *bool
	requestID         *int64
	monitor           *event.QueryMonitor
	logger            *logger.Logger
	registry          *bincodec.Registry
	connection        driver.Connection

	result driver.FieldsPage
}

// NewSQLFields constructs and returns a new SQLFields.
func NewSQLFields(cacheID int32, query string, pageSize int32) *SQLFields {
	return &SQLFields{cacheID: cacheID, query: query, pageSize: pageSize}
}

// Result returns the first page of the query. FieldCount is always set, and
// FieldNames too when they were requested.
func (sf *SQLFields) Result() *driver.FieldsPage {
	return &sf.result
}

func (sf *SQLFields) processResponse(payload []byte) (driver.ResponseInfo, []byte, error) {
	r := registryOrDefault(sf.registry)

	head, rem, err := driver.DecodeFields(payload, driver.FieldsCursor, r)
	if err != nil {
		return driver.ResponseInfo{}, payload, err
	}
	cursor := head["cursor"].(int64)

	var page driver.FieldsPage
	page.Cursor = &cursor
	if boolValue(sf.includeFieldNames) {
		names, next, err := driver.DecodeFields(rem, driver.FieldsNames, r)
		if err != nil {
			return driver.ResponseInfo{}, payload, err
		}
		page.FieldNames = names["fields"].([]string)
		page.FieldCount = len(page.FieldNames)
		rem = next
	} else {
		count, next, err := driver.DecodeFields(rem, driver.FieldsCount, r)
		if err != nil {
			return driver.ResponseInfo{}, payload, err
		}
		fc := count["field_count"].(int32)
		if fc < 0 {
			return driver.ResponseInfo{}, payload, errors.Wrapf(driver.ErrNegativeFieldCount, "server sent %d", fc)
		}
		page.FieldCount = int(fc)
		rem = next
	}

	page.Rows, page.More, rem, err = decodeFieldsRows(rem, page.FieldCount, r)
	if err != nil {
		return driver.ResponseInfo{}, payload, err
	}
	sf.result = page
	return driver.ResponseInfo{Cursor: page.Cursor, Rows: len(page.Rows), More: page.More}, rem, nil
}

// Execute runs this operation and returns an error if the operation did not execute successfully.
func (sf *SQLFields) Execute(ctx context.Context) error {
	maxRows := int32(-1)
	if sf.maxRows != nil {
		maxRows = *sf.maxRows
	}
	var stmt StatementType
	if sf.statementType != nil {
		stmt = *sf.statementType
	}

	return driver.Operation{
		Name:   SQLFieldsOp,
		OpCode: wiremessage.OpQuerySQLFields,
		Schema: driver.SQLFieldsRequest,
		Values: map[string]interface{}{
			"hash_code":           sf.cacheID,
			"flag":                flag(sf.keepBinary),
			"schema":              sf.schema,
			"page_size":           sf.pageSize,
			"max_rows":            maxRows,
			"query_str":           sf.query,
			"query_args":          sf.args,
			"statement_type":      int8(stmt),
			"distributed_joins":   boolValue(sf.distributedJoins),
			"local":               boolValue(sf.local),
			"replicated_only":     boolValue(sf.replicatedOnly),
			"enforce_join_order":  boolValue(sf.enforceJoinOrder),
			"collocated":          boolValue(sf.collocated),
			"lazy":                boolValue(sf.lazy),
			"timeout":             timeoutMS(sf.timeout),
			"include_field_names": boolValue(sf.includeFieldNames),
		},
		ProcessResponseFn: sf.processResponse,
		Connection:        sf.connection,
		RequestID:         sf.requestID,
		Monitor:           sf.monitor,
		Logger:            sf.logger,
	}.Execute(ctx)
}

// Schema sets the SQL schema. Without it the server uses PUBLIC.
func (sf *SQLFields) Schema(schema string) *SQLFields {
	if sf == nil {
		sf = new(SQLFields)
	}

	sf.schema = &schema
	return sf
}

// MaxRows limits the total number of rows. Negative values mean no limit.
func (sf *SQLFields) MaxRows(maxRows int32) *SQLFields {
	if sf == nil {
		sf = new(SQLFields)
	}

	sf.maxRows = &maxRows
	return sf
}

// Args sets the positional query arguments.
func (sf *SQLFields) Args(args ...interface{}) *SQLFields {
	if sf == nil {
		sf = new(SQLFields)
	}

	sf.args = args
	return sf
}

// StatementType restricts the kind of statement accepted.
func (sf *SQLFields) StatementType(st StatementType) *SQLFields {
	if sf == nil {
		sf = new(SQLFields)
	}

	sf.statementType = &st
	return sf
}

// DistributedJoins enables joins across nodes.
func (sf *SQLFields) DistributedJoins(distributedJoins bool) *SQLFields {
	if sf == nil {
		sf = new(SQLFields)
	}

	sf.distributedJoins = &distributedJoins
	return sf
}

// Local restricts the query to the node the connection is made to.
func (sf *SQLFields) Local(local bool) *SQLFields {
	if sf == nil {
		sf = new(SQLFields)
	}

	sf.local = &local
	return sf
}

// ReplicatedOnly marks a query that touches replicated caches only.
func (sf *SQLFields) ReplicatedOnly(replicatedOnly bool) *SQLFields {
	if sf == nil {
		sf = new(SQLFields)
	}

	sf.replicatedOnly = &replicatedOnly
	return sf
}

// EnforceJoinOrder keeps the join order written in the query.
func (sf *SQLFields) EnforceJoinOrder(enforceJoinOrder bool) *SQLFields {
	if sf == nil {
		sf = new(SQLFields)
	}

	sf.enforceJoinOrder = &enforceJoinOrder
	return sf
}

// Collocated marks the query as collocated by its grouping key.
func (sf *SQLFields) Collocated(collocated bool) *SQLFields {
	if sf == nil {
		sf = new(SQLFields)
	}

	sf.collocated = &collocated
	return sf
}

// Lazy asks the server to produce the result set lazily.
func (sf *SQLFields) Lazy(lazy bool) *SQLFields {
	if sf == nil {
		sf = new(SQLFields)
	}

	sf.lazy = &lazy
	return sf
}

// Timeout sets the server side query timeout. Zero disables it.
func (sf *SQLFields) Timeout(timeout time.Duration) *SQLFields {
	if sf == nil {
		sf = new(SQLFields)
	}

	sf.timeout = &timeout
	return sf
}

// IncludeFieldNames asks for the column names on the first page.
func (sf *SQLFields) IncludeFieldNames(include bool) *SQLFields {
	if sf == nil {
		sf = new(SQLFields)
	}

	sf.includeFieldNames = &include
	return sf
}

// KeepBinary asks the server to return complex objects in binary form.
func (sf *SQLFields) KeepBinary(keepBinary bool) *SQLFields {
	if sf == nil {
		sf = new(SQLFields)
	}

	sf.keepBinary = &keepBinary
	return sf
}

// RequestID overrides the generated correlation id.
func (sf *SQLFields) RequestID(id int64) *SQLFields {
	if sf == nil {
		sf = new(SQLFields)
	}

	sf.requestID = &id
	return sf
}

// QueryMonitor sets the monitor to use for query events.
func (sf *SQLFields) QueryMonitor(monitor *event.QueryMonitor) *SQLFields {
	if sf == nil {
		sf = new(SQLFields)
	}

	sf.monitor = monitor
	return sf
}

// Logger sets the logger for this operation.
func (sf *SQLFields) Logger(l *logger.Logger) *SQLFields {
	if sf == nil {
		sf = new(SQLFields)
	}

	sf.logger = l
	return sf
}

// Registry sets the registry used to decode values.
func (sf *SQLFields) Registry(r *bincodec.Registry) *SQLFields {
	if sf == nil {
		sf = new(SQLFields)
	}

	sf.registry = r
	return sf
}

// Connection sets the connection to run this operation on.
func (sf *SQLFields) Connection(conn driver.Connection) *SQLFields {
	if sf == nil {
		sf = new(SQLFields)
	}

	sf.connection = conn
	return sf
}
