// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package operation

import (
	"context"
	"time"

	"github.com/ikmak/ignite-go-driver/event"
	"github.com/ikmak/ignite-go-driver/internal/logger"
	"github.com/ikmak/ignite-go-driver/x/binary/bincodec"
	"github.com/ikmak/ignite-go-driver/x/ignite/driver"
	"github.com/ikmak/ignite-go-driver/x/network/wiremessage"
)

// SQL performs a SQL query that returns whole cache entries of one table.
type SQL struct {
	cacheID          int32
	table            string
	query            string
	pageSize         int32
	args             []interface{}
	distributedJoins *bool
	local            *bool
	replicatedOnly   *bool
	timeout          *time.Duration
	keepBinary       *bool
	requestID        *int64
	monitor          *event.QueryMonitor
	logger           *logger.Logger
	registry         *bincodec.Registry
	connection       driver.Connection

	result driver.KeyValuePage
}

// NewSQL constructs and returns a new SQL.
func NewSQL(cacheID int32, table, query string, pageSize int32) *SQL {
	return &SQL{cacheID: cacheID, table: table, query: query, pageSize: pageSize}
}

// Result returns the first page of the query.
func (s *SQL) Result() *driver.KeyValuePage {
	return &s.result
}

func (s *SQL) processResponse(payload []byte) (driver.ResponseInfo, []byte, error) {
	var info driver.ResponseInfo
	var rem []byte
	var err error
	s.result, info, rem, err = decodeKeyValuePage(payload, driver.KeyValueOpenResponse, registryOrDefault(s.registry))
	return info, rem, err
}

// Execute runs this operation and returns an error if the operation did not execute successfully.
func (s *SQL) Execute(ctx context.Context) error {
	return driver.Operation{
		Name:   SQLOp,
		OpCode: wiremessage.OpQuerySQL,
		Schema: driver.SQLRequest,
		Values: map[string]interface{}{
			"hash_code":         s.cacheID,
			"flag":              flag(s.keepBinary),
			"table_name":        s.table,
			"query_str":         s.query,
			"query_args":        s.args,
			"distributed_joins": boolValue(s.distributedJoins),
			"local":             boolValue(s.local),
			"replicated_only":   boolValue(s.replicatedOnly),
			"page_size":         s.pageSize,
			"timeout":           timeoutMS(s.timeout),
		},
		ProcessResponseFn: s.processResponse,
		Connection:        s.connection,
		RequestID:         s.requestID,
		Monitor:           s.monitor,
		Logger:            s.logger,
	}.Execute(ctx)
}

func timeoutMS(d *time.Duration) int64 {
	if d == nil {
		return 0
	}
	return d.Milliseconds()
}

// Args sets the positional query arguments.
func (s *SQL) Args(args ...interface{}) *SQL {
	if s == nil {
		s = new(SQL)
	}

	s.args = args
	return s
}

// DistributedJoins enables joins across nodes.
func (s *SQL) DistributedJoins(distributedJoins bool) *SQL {
	if s == nil {
		s = new(SQL)
	}

	s.distributedJoins = &distributedJoins
	return s
}

// Local restricts the query to the node the connection is made to.
func (s *SQL) Local(local bool) *SQL {
	if s == nil {
		s = new(SQL)
	}

	s.local = &local
	return s
}

// ReplicatedOnly marks a query that touches replicated caches only.
func (s *SQL) ReplicatedOnly(replicatedOnly bool) *SQL {
	if s == nil {
		s = new(SQL)
	}

	s.replicatedOnly = &replicatedOnly
	return s
}

// Timeout sets the server side query timeout. Zero disables it.
func (s *SQL) Timeout(timeout time.Duration) *SQL {
	if s == nil {
		s = new(SQL)
	}

	s.timeout = &timeout
	return s
}

// KeepBinary asks the server to return complex objects in binary form.
func (s *SQL) KeepBinary(keepBinary bool) *SQL {
	if s == nil {
		s = new(SQL)
	}

	s.keepBinary = &keepBinary
	return s
}

// RequestID overrides the generated correlation id.
func (s *SQL) RequestID(id int64) *SQL {
	if s == nil {
		s = new(SQL)
	}

	s.requestID = &id
	return s
}

// QueryMonitor sets the monitor to use for query events.
func (s *SQL) QueryMonitor(monitor *event.QueryMonitor) *SQL {
	if s == nil {
		s = new(SQL)
	}

	s.monitor = monitor
	return s
}

// Logger sets the logger for this operation.
func (s *SQL) Logger(l *logger.Logger) *SQL {
	if s == nil {
		s = new(SQL)
	}

	s.logger = l
	return s
}

// Registry sets the registry used to decode keys and values.
func (s *SQL) Registry(r *bincodec.Registry) *SQL {
	if s == nil {
		s = new(SQL)
	}

	s.registry = r
	return s
}

// Connection sets the connection to run this operation on.
func (s *SQL) Connection(conn driver.Connection) *SQL {
	if s == nil {
		s = new(SQL)
	}

	s.connection = conn
	return s
}
