// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package ignite

import (
	"context"

	"github.com/ikmak/ignite-go-driver/ignite/options"
	"github.com/ikmak/ignite-go-driver/x/binary/bincodec"
	"github.com/ikmak/ignite-go-driver/x/ignite/driver"
)

type cursorKind int

const (
	scanCursor cursorKind = iota
	sqlCursor
	fieldsCursor
)

// Cursor iterates over the pages of a query, fetching the next page when the
// current one is consumed. Scan and SQL cursors yield entries, SQL fields
// cursors yield rows.
//
// A typical usage of the Cursor type would be:
//
//	cur, err := ignite.QueryFields(ctx, conn, cacheID, "SELECT name FROM Person", 100)
//	if err != nil {
//		return err
//	}
//	defer cur.Close(ctx)
//
//	for cur.Next(ctx) {
//		row := cur.Row()
//		// do something with row...
//	}
//
//	if err := cur.Err(); err != nil {
//		return err
//	}
//
// Close releases the server side cursor when iteration stops early. A Cursor
// must not be used concurrently.
type Cursor struct {
	conn driver.Connection
	kind cursorKind
	id   int64
	more bool
	page *options.PageOptions

	fieldNames []string
	fieldCount int

	entries []bincodec.Pair
	rows    [][]interface{}
	pos     int

	err    error
	closed bool
}

// Scan opens a scan query and returns a cursor over its entries.
func Scan(ctx context.Context, conn driver.Connection, cacheID int32, pageSize int32,
	opts ...*options.ScanOptions) (*Cursor, error) {

	first, err := OpenScan(ctx, conn, cacheID, pageSize, opts...)
	if err != nil {
		return nil, err
	}
	so := options.MergeScanOptions(opts...)
	page := options.Page().SetRegistry(so.Registry).SetMonitor(so.Monitor).SetLogger(so.Logger)
	return newKeyValueCursor(conn, scanCursor, first, page), nil
}

// Query opens a SQL query and returns a cursor over the matching entries.
func Query(ctx context.Context, conn driver.Connection, cacheID int32, table, query string, pageSize int32,
	opts ...*options.SQLOptions) (*Cursor, error) {

	first, err := OpenSQL(ctx, conn, cacheID, table, query, pageSize, opts...)
	if err != nil {
		return nil, err
	}
	so := options.MergeSQLOptions(opts...)
	page := options.Page().SetRegistry(so.Registry).SetMonitor(so.Monitor).SetLogger(so.Logger)
	return newKeyValueCursor(conn, sqlCursor, first, page), nil
}

// QueryFields opens a SQL fields query and returns a cursor over its rows.
func QueryFields(ctx context.Context, conn driver.Connection, cacheID int32, query string, pageSize int32,
	opts ...*options.SQLFieldsOptions) (*Cursor, error) {

	first, err := OpenSQLFields(ctx, conn, cacheID, query, pageSize, opts...)
	if err != nil {
		return nil, err
	}
	so := options.MergeSQLFieldsOptions(opts...)
	return &Cursor{
		conn:       conn,
		kind:       fieldsCursor,
		id:         *first.Cursor,
		more:       first.More,
		page:       options.Page().SetRegistry(so.Registry).SetMonitor(so.Monitor).SetLogger(so.Logger),
		fieldNames: first.FieldNames,
		fieldCount: first.FieldCount,
		rows:       first.Rows,
		pos:        -1,
	}, nil
}

func newKeyValueCursor(conn driver.Connection, kind cursorKind, first *driver.KeyValuePage, page *options.PageOptions) *Cursor {
	return &Cursor{
		conn:    conn,
		kind:    kind,
		id:      *first.Cursor,
		more:    first.More,
		page:    page,
		entries: first.Rows,
		pos:     -1,
	}
}

// ID returns the server handle of the cursor.
func (c *Cursor) ID() int64 { return c.id }

// More reports whether the server holds further pages.
func (c *Cursor) More() bool { return c.more }

// FieldNames returns the column names of a SQL fields cursor opened with
// field names requested, or nil.
func (c *Cursor) FieldNames() []string { return c.fieldNames }

// FieldCount returns the column count of a SQL fields cursor.
func (c *Cursor) FieldCount() int { return c.fieldCount }

func (c *Cursor) pageLen() int {
	if c.kind == fieldsCursor {
		return len(c.rows)
	}
	return len(c.entries)
}

// Next advances to the next entry or row, fetching a page if needed. It
// returns false at the end of the results or on error; Err tells the two
// apart.
func (c *Cursor) Next(ctx context.Context) bool {
	if c.closed {
		if c.err == nil {
			c.err = ErrCursorClosed
		}
		return false
	}
	if c.err != nil {
		return false
	}

	c.pos++
	for c.pos >= c.pageLen() {
		if !c.more {
			c.pos = c.pageLen()
			return false
		}
		if err := c.NextPage(ctx); err != nil {
			c.err = err
			return false
		}
		c.pos = 0
	}
	return true
}

// NextPage replaces the current page with the next one from the server.
func (c *Cursor) NextPage(ctx context.Context) error {
	switch {
	case c.closed:
		return ErrCursorClosed
	case !c.more:
		return ErrCursorExhausted
	}

	switch c.kind {
	case fieldsCursor:
		page, err := FetchSQLFieldsPage(ctx, c.conn, c.id, c.fieldCount, c.page)
		if err != nil {
			return err
		}
		c.rows, c.more = page.Rows, page.More
	default:
		fetch := FetchScanPage
		if c.kind == sqlCursor {
			fetch = FetchSQLPage
		}
		page, err := fetch(ctx, c.conn, c.id, c.page)
		if err != nil {
			return err
		}
		c.entries, c.more = page.Rows, page.More
	}
	c.pos = -1
	return nil
}

// PageEntries returns the current page of a scan or SQL cursor.
func (c *Cursor) PageEntries() []bincodec.Pair {
	if c.kind == fieldsCursor {
		return nil
	}
	return c.entries
}

// PageRows returns the current page of a SQL fields cursor.
func (c *Cursor) PageRows() [][]interface{} {
	if c.kind != fieldsCursor {
		return nil
	}
	return c.rows
}

// Entry returns the current entry of a scan or SQL cursor.
func (c *Cursor) Entry() bincodec.Pair {
	if c.kind == fieldsCursor || c.pos < 0 || c.pos >= len(c.entries) {
		return bincodec.Pair{}
	}
	return c.entries[c.pos]
}

// Row returns the current row of a SQL fields cursor.
func (c *Cursor) Row() []interface{} {
	if c.kind != fieldsCursor || c.pos < 0 || c.pos >= len(c.rows) {
		return nil
	}
	return c.rows[c.pos]
}

// Err returns the error that stopped the iteration, if any.
func (c *Cursor) Err() error { return c.err }

// Close releases the cursor. The server already released a cursor whose last
// page was fetched, in which case nothing is sent. Close may be called more
// than once.
func (c *Cursor) Close(ctx context.Context) error {
	if c.closed {
		return nil
	}
	c.closed = true
	if !c.more {
		return nil
	}
	c.more = false
	return CloseResource(ctx, c.conn, c.id, c.page)
}

// AllEntries reads the remaining entries of a scan or SQL cursor and closes
// it.
func (c *Cursor) AllEntries(ctx context.Context) ([]bincodec.Pair, error) {
	defer c.Close(ctx)

	var out []bincodec.Pair
	for c.Next(ctx) {
		out = append(out, c.Entry())
	}
	return out, c.Err()
}

// AllRows reads the remaining rows of a SQL fields cursor and closes it.
func (c *Cursor) AllRows(ctx context.Context) ([][]interface{}, error) {
	defer c.Close(ctx)

	var out [][]interface{}
	for c.Next(ctx) {
		out = append(out, c.Row())
	}
	return out, c.Err()
}
