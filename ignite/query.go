// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package ignite

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ikmak/ignite-go-driver/ignite/options"
	"github.com/ikmak/ignite-go-driver/x/ignite/driver"
	"github.com/ikmak/ignite-go-driver/x/ignite/driver/operation"
)

var (
	// ErrInvalidPageSize is returned when a query is opened with a page size below one.
	ErrInvalidPageSize = errors.New("page size must be positive")
	// ErrNegativeTimeout is returned when a query is opened with a negative timeout.
	ErrNegativeTimeout = errors.New("timeout must not be negative")
	// ErrCursorExhausted is returned when a page is requested from a cursor the server has no more pages for.
	ErrCursorExhausted = errors.New("cursor is exhausted")
	// ErrCursorClosed is returned when a closed cursor is used.
	ErrCursorClosed = errors.New("cursor is closed")
)

// OpenScan opens a scan query over every entry of the cache and returns the
// first page. The page carries the cursor handle used by FetchScanPage.
func OpenScan(ctx context.Context, conn driver.Connection, cacheID int32, pageSize int32,
	opts ...*options.ScanOptions) (*driver.KeyValuePage, error) {

	if pageSize <= 0 {
		return nil, ErrInvalidPageSize
	}
	so := options.MergeScanOptions(opts...)

	op := operation.NewScan(cacheID, pageSize).
		Registry(so.Registry).
		QueryMonitor(so.Monitor).
		Logger(so.Logger).
		Connection(conn)
	if so.Partitions != nil {
		op = op.Partitions(*so.Partitions)
	}
	if so.Local != nil {
		op = op.Local(*so.Local)
	}
	if so.KeepBinary != nil {
		op = op.KeepBinary(*so.KeepBinary)
	}
	if so.RequestID != nil {
		op = op.RequestID(*so.RequestID)
	}

	if err := op.Execute(ctx); err != nil {
		return nil, errors.WithMessage(err, "open scan")
	}
	return op.Result(), nil
}

// FetchScanPage fetches the next page of a scan cursor. The returned page has
// no cursor set.
func FetchScanPage(ctx context.Context, conn driver.Connection, cursor int64,
	opts ...*options.PageOptions) (*driver.KeyValuePage, error) {

	po := options.MergePageOptions(opts...)
	op := operation.NewScanCursorGetPage(cursor).
		Registry(po.Registry).
		QueryMonitor(po.Monitor).
		Logger(po.Logger).
		Connection(conn)
	if po.RequestID != nil {
		op = op.RequestID(*po.RequestID)
	}

	if err := op.Execute(ctx); err != nil {
		return nil, errors.WithMessagef(err, "fetch scan page of cursor %d", cursor)
	}
	return op.Result(), nil
}

// OpenSQL opens a SQL query returning whole entries of table and returns the
// first page.
func OpenSQL(ctx context.Context, conn driver.Connection, cacheID int32, table, query string, pageSize int32,
	opts ...*options.SQLOptions) (*driver.KeyValuePage, error) {

	if pageSize <= 0 {
		return nil, ErrInvalidPageSize
	}
	so := options.MergeSQLOptions(opts...)
	if so.Timeout != nil && *so.Timeout < 0 {
		return nil, ErrNegativeTimeout
	}

	op := operation.NewSQL(cacheID, table, query, pageSize).
		Args(so.Args...).
		Registry(so.Registry).
		QueryMonitor(so.Monitor).
		Logger(so.Logger).
		Connection(conn)
	if so.DistributedJoins != nil {
		op = op.DistributedJoins(*so.DistributedJoins)
	}
	if so.Local != nil {
		op = op.Local(*so.Local)
	}
	if so.ReplicatedOnly != nil {
		op = op.ReplicatedOnly(*so.ReplicatedOnly)
	}
	if so.Timeout != nil {
		op = op.Timeout(*so.Timeout)
	}
	if so.KeepBinary != nil {
		op = op.KeepBinary(*so.KeepBinary)
	}
	if so.RequestID != nil {
		op = op.RequestID(*so.RequestID)
	}

	if err := op.Execute(ctx); err != nil {
		return nil, errors.WithMessage(err, "open sql query")
	}
	return op.Result(), nil
}

// FetchSQLPage fetches the next page of a SQL cursor.
func FetchSQLPage(ctx context.Context, conn driver.Connection, cursor int64,
	opts ...*options.PageOptions) (*driver.KeyValuePage, error) {

	po := options.MergePageOptions(opts...)
	op := operation.NewSQLCursorGetPage(cursor).
		Registry(po.Registry).
		QueryMonitor(po.Monitor).
		Logger(po.Logger).
		Connection(conn)
	if po.RequestID != nil {
		op = op.RequestID(*po.RequestID)
	}

	if err := op.Execute(ctx); err != nil {
		return nil, errors.WithMessagef(err, "fetch sql page of cursor %d", cursor)
	}
	return op.Result(), nil
}

// OpenSQLFields opens a SQL query returning projected columns and returns
// the first page. The page reports the column count, and the column names
// when they were requested.
func OpenSQLFields(ctx context.Context, conn driver.Connection, cacheID int32, query string, pageSize int32,
	opts ...*options.SQLFieldsOptions) (*driver.FieldsPage, error) {

	if pageSize <= 0 {
		return nil, ErrInvalidPageSize
	}
	so := options.MergeSQLFieldsOptions(opts...)
	if so.Timeout != nil && *so.Timeout < 0 {
		return nil, ErrNegativeTimeout
	}

	op := operation.NewSQLFields(cacheID, query, pageSize).
		Args(so.Args...).
		Registry(so.Registry).
		QueryMonitor(so.Monitor).
		Logger(so.Logger).
		Connection(conn)
	if so.Schema != nil {
		op = op.Schema(*so.Schema)
	}
	if so.MaxRows != nil {
		op = op.MaxRows(*so.MaxRows)
	}
	if so.StatementType != nil {
		op = op.StatementType(operation.StatementType(*so.StatementType))
	}
	if so.DistributedJoins != nil {
		op = op.DistributedJoins(*so.DistributedJoins)
	}
	if so.Local != nil {
		op = op.Local(*so.Local)
	}
	if so.ReplicatedOnly != nil {
		op = op.ReplicatedOnly(*so.ReplicatedOnly)
	}
	if so.EnforceJoinOrder != nil {
		op = op.EnforceJoinOrder(*so.EnforceJoinOrder)
	}
	if so.Collocated != nil {
		op = op.Collocated(*so.Collocated)
	}
	if so.Lazy != nil {
		op = op.Lazy(*so.Lazy)
	}
	if so.Timeout != nil {
		op = op.Timeout(*so.Timeout)
	}
	if so.IncludeFieldNames != nil {
		op = op.IncludeFieldNames(*so.IncludeFieldNames)
	}
	if so.KeepBinary != nil {
		op = op.KeepBinary(*so.KeepBinary)
	}
	if so.RequestID != nil {
		op = op.RequestID(*so.RequestID)
	}

	if err := op.Execute(ctx); err != nil {
		return nil, errors.WithMessage(err, "open sql fields query")
	}
	return op.Result(), nil
}

// FetchSQLFieldsPage fetches the next page of a SQL fields cursor. The server
// does not repeat the column count, so fieldCount must be the one reported
// by the opening page.
func FetchSQLFieldsPage(ctx context.Context, conn driver.Connection, cursor int64, fieldCount int,
	opts ...*options.PageOptions) (*driver.FieldsPage, error) {

	po := options.MergePageOptions(opts...)
	op := operation.NewSQLFieldsCursorGetPage(cursor, fieldCount).
		Registry(po.Registry).
		QueryMonitor(po.Monitor).
		Logger(po.Logger).
		Connection(conn)
	if po.RequestID != nil {
		op = op.RequestID(*po.RequestID)
	}

	if err := op.Execute(ctx); err != nil {
		return nil, errors.WithMessagef(err, "fetch sql fields page of cursor %d", cursor)
	}
	return op.Result(), nil
}

// CloseResource releases a cursor on the server. The server forgets a cursor
// once its last page was sent, and closing a handle it does not know fails
// with driver.StatusResourceDoesNotExist. Closing the same handle twice is
// therefore an error.
func CloseResource(ctx context.Context, conn driver.Connection, cursor int64, opts ...*options.PageOptions) error {
	po := options.MergePageOptions(opts...)
	op := operation.NewResourceClose(cursor).
		QueryMonitor(po.Monitor).
		Logger(po.Logger).
		Connection(conn)
	if po.RequestID != nil {
		op = op.RequestID(*po.RequestID)
	}

	return errors.WithMessagef(op.Execute(ctx), "close resource %d", cursor)
}
