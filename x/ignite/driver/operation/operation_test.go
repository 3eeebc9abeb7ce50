// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package operation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikmak/ignite-go-driver/x/binary/bincodec"
	"github.com/ikmak/ignite-go-driver/x/ignite/driver"
	"github.com/ikmak/ignite-go-driver/x/ignite/driver/drivertest"
	"github.com/ikmak/ignite-go-driver/x/network/wiremessage"
)

const cacheName = "PersonCache"

func newServer() *drivertest.Server {
	entries := make([]bincodec.Pair, 0, 5)
	for i := int32(1); i <= 5; i++ {
		entries = append(entries, bincodec.Pair{Key: i, Value: "person-" + string(rune('0'+i))})
	}
	return &drivertest.Server{
		CacheID:    driver.CacheID(cacheName),
		Entries:    entries,
		FieldNames: []string{"ID", "NAME"},
		Rows: [][]interface{}{
			{int32(1), "ann"},
			{int32(2), "bob"},
			{int32(3), nil},
		},
	}
}

func lastRequest(t *testing.T, srv *drivertest.Server) drivertest.Request {
	t.Helper()
	reqs := srv.Requests()
	require.NotEmpty(t, reqs)
	return reqs[len(reqs)-1]
}

func TestScanPaging(t *testing.T) {
	ctx := context.Background()
	srv := newServer()
	conn := srv.Conn()

	scan := NewScan(driver.CacheID(cacheName), 2).Connection(conn)
	require.NoError(t, scan.Execute(ctx))
	first := scan.Result()
	require.NotNil(t, first.Cursor)
	assert.True(t, first.More)
	assert.Equal(t, []bincodec.Pair{{Key: int32(1), Value: "person-1"}, {Key: int32(2), Value: "person-2"}}, first.Rows)

	req := lastRequest(t, srv)
	assert.Equal(t, wiremessage.OpQueryScan, req.OpCode)
	assert.Equal(t, int32(-1), req.Fields["partitions"])
	assert.Equal(t, int8(0), req.Fields["flag"])
	assert.Equal(t, false, req.Fields["local"])

	var got []bincodec.Pair
	got = append(got, first.Rows...)
	more := first.More
	fetches := 0
	for more {
		page := NewScanCursorGetPage(*first.Cursor).Connection(conn)
		require.NoError(t, page.Execute(ctx))
		assert.Nil(t, page.Result().Cursor)
		got = append(got, page.Result().Rows...)
		more = page.Result().More
		fetches++
	}
	assert.Equal(t, 2, fetches)
	if diff := cmp.Diff(srv.Entries, got); diff != "" {
		t.Errorf("entries differ (-want +got):\n%s", diff)
	}

	t.Run("exhausted cursor is released", func(t *testing.T) {
		assert.Equal(t, 0, srv.OpenCursors())
		err := NewScanCursorGetPage(*first.Cursor).Connection(conn).Execute(ctx)
		assert.Equal(t, driver.StatusResourceDoesNotExist, driver.StatusOf(err))
		err = NewResourceClose(*first.Cursor).Connection(conn).Execute(ctx)
		assert.Equal(t, driver.StatusResourceDoesNotExist, driver.StatusOf(err))
	})
}

func TestScanOptions(t *testing.T) {
	ctx := context.Background()
	srv := newServer()

	scan := NewScan(driver.CacheID(cacheName), 10).
		Partitions(3).
		Local(true).
		KeepBinary(true).
		RequestID(77).
		Connection(srv.Conn())
	require.NoError(t, scan.Execute(ctx))
	assert.False(t, scan.Result().More)
	assert.Len(t, scan.Result().Rows, 5)

	req := lastRequest(t, srv)
	assert.Equal(t, int64(77), req.RequestID)
	assert.Equal(t, int32(3), req.Fields["partitions"])
	assert.Equal(t, true, req.Fields["local"])
	assert.Equal(t, driver.FlagKeepBinary, req.Fields["flag"])
	assert.Nil(t, req.Fields["filter"])
}

func TestScanErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown cache", func(t *testing.T) {
		scan := NewScan(driver.CacheID("missing"), 2).Connection(newServer().Conn())
		err := scan.Execute(ctx)
		assert.Equal(t, driver.StatusCacheDoesNotExist, driver.StatusOf(err))
		assert.Nil(t, scan.Result().Cursor)
	})
	t.Run("non-positive page size", func(t *testing.T) {
		for _, size := range []int32{0, -1} {
			err := NewScan(driver.CacheID(cacheName), size).Connection(newServer().Conn()).Execute(ctx)
			assert.Equal(t, driver.StatusFailed, driver.StatusOf(err), "page size %d", size)
		}
	})
}

func TestSQL(t *testing.T) {
	ctx := context.Background()

	t.Run("arguments and flags are sent", func(t *testing.T) {
		srv := newServer()
		sql := NewSQL(driver.CacheID(cacheName), "Person", "age > ? AND name = ?", 3).
			Args(int32(30), "ann").
			DistributedJoins(true).
			ReplicatedOnly(true).
			Timeout(1500 * time.Millisecond).
			Connection(srv.Conn())
		require.NoError(t, sql.Execute(ctx))
		assert.Len(t, sql.Result().Rows, 3)
		assert.True(t, sql.Result().More)

		req := lastRequest(t, srv)
		assert.Equal(t, wiremessage.OpQuerySQL, req.OpCode)
		assert.Equal(t, "Person", req.Fields["table_name"])
		assert.Equal(t, "age > ? AND name = ?", req.Fields["query_str"])
		assert.Equal(t, []interface{}{int32(30), "ann"}, req.Fields["query_args"])
		assert.Equal(t, true, req.Fields["distributed_joins"])
		assert.Equal(t, false, req.Fields["local"])
		assert.Equal(t, true, req.Fields["replicated_only"])
		assert.Equal(t, int64(1500), req.Fields["timeout"])
	})
	t.Run("pages through a cursor", func(t *testing.T) {
		srv := newServer()
		conn := srv.Conn()
		sql := NewSQL(driver.CacheID(cacheName), "Person", "1=1", 4).Connection(conn)
		require.NoError(t, sql.Execute(ctx))
		require.True(t, sql.Result().More)

		page := NewSQLCursorGetPage(*sql.Result().Cursor).Connection(conn)
		require.NoError(t, page.Execute(ctx))
		assert.Len(t, page.Result().Rows, 1)
		assert.False(t, page.Result().More)
	})
	t.Run("status error returns no cursor", func(t *testing.T) {
		srv := newServer()
		sql := NewSQL(driver.CacheID(cacheName), "", "1=1", 2).Connection(srv.Conn())
		err := sql.Execute(ctx)
		var se driver.Error
		require.True(t, errors.As(err, &se))
		assert.Equal(t, driver.StatusFailed, se.Status)
		assert.Nil(t, sql.Result().Cursor)
		assert.Equal(t, 0, srv.OpenCursors())
	})
	t.Run("scan cursor cannot be paged as sql", func(t *testing.T) {
		srv := newServer()
		conn := srv.Conn()
		scan := NewScan(driver.CacheID(cacheName), 1).Connection(conn)
		require.NoError(t, scan.Execute(ctx))

		err := NewSQLCursorGetPage(*scan.Result().Cursor).Connection(conn).Execute(ctx)
		assert.Equal(t, driver.StatusResourceDoesNotExist, driver.StatusOf(err))
	})
}

func TestSQLFields(t *testing.T) {
	ctx := context.Background()

	t.Run("field names come first", func(t *testing.T) {
		srv := newServer()
		conn := srv.Conn()
		sf := NewSQLFields(driver.CacheID(cacheName), "SELECT id, name FROM Person", 2).
			IncludeFieldNames(true).
			Connection(conn)
		require.NoError(t, sf.Execute(ctx))

		first := sf.Result()
		require.NotNil(t, first.Cursor)
		assert.Equal(t, []string{"ID", "NAME"}, first.FieldNames)
		assert.Equal(t, 2, first.FieldCount)
		assert.Equal(t, [][]interface{}{{int32(1), "ann"}, {int32(2), "bob"}}, first.Rows)
		assert.True(t, first.More)

		page := NewSQLFieldsCursorGetPage(*first.Cursor, first.FieldCount).Connection(conn)
		require.NoError(t, page.Execute(ctx))
		assert.Equal(t, [][]interface{}{{int32(3), nil}}, page.Result().Rows)
		assert.False(t, page.Result().More)
		assert.Nil(t, page.Result().FieldNames)
	})
	t.Run("count without names", func(t *testing.T) {
		srv := newServer()
		sf := NewSQLFields(0, "SELECT id, name FROM Person", 10).Connection(srv.Conn())
		require.NoError(t, sf.Execute(ctx))
		assert.Nil(t, sf.Result().FieldNames)
		assert.Equal(t, 2, sf.Result().FieldCount)
		assert.Len(t, sf.Result().Rows, 3)
		assert.False(t, sf.Result().More)

		req := lastRequest(t, srv)
		assert.Equal(t, int32(-1), req.Fields["max_rows"])
		assert.Nil(t, req.Fields["schema"])
		assert.Equal(t, int8(StatementAny), req.Fields["statement_type"])
		assert.Equal(t, false, req.Fields["include_field_names"])
	})
	t.Run("zero fields", func(t *testing.T) {
		srv := newServer()
		srv.FieldNames = nil
		srv.Rows = [][]interface{}{{}, {}}
		sf := NewSQLFields(0, "SELECT 1", 10).IncludeFieldNames(true).Connection(srv.Conn())
		require.NoError(t, sf.Execute(ctx))
		assert.Equal(t, 0, sf.Result().FieldCount)
		assert.Equal(t, [][]interface{}{{}, {}}, sf.Result().Rows)
	})
	t.Run("max rows and options", func(t *testing.T) {
		srv := newServer()
		sf := NewSQLFields(driver.CacheID(cacheName), "SELECT id, name FROM Person", 10).
			Schema("PUBLIC").
			MaxRows(2).
			StatementType(StatementSelect).
			EnforceJoinOrder(true).
			Collocated(true).
			Lazy(true).
			Local(true).
			Connection(srv.Conn())
		require.NoError(t, sf.Execute(ctx))
		assert.Len(t, sf.Result().Rows, 2)

		req := lastRequest(t, srv)
		assert.Equal(t, "PUBLIC", req.Fields["schema"])
		assert.Equal(t, int32(2), req.Fields["max_rows"])
		assert.Equal(t, int8(StatementSelect), req.Fields["statement_type"])
		assert.Equal(t, true, req.Fields["enforce_join_order"])
		assert.Equal(t, true, req.Fields["collocated"])
		assert.Equal(t, true, req.Fields["lazy"])
		assert.Equal(t, true, req.Fields["local"])
		assert.Equal(t, false, req.Fields["distributed_joins"])
	})
	t.Run("negative field count is rejected before sending", func(t *testing.T) {
		srv := newServer()
		err := NewSQLFieldsCursorGetPage(1, -1).Connection(srv.Conn()).Execute(ctx)
		assert.True(t, errors.Is(err, driver.ErrNegativeFieldCount))
		assert.Empty(t, srv.Requests())
	})
	t.Run("empty query", func(t *testing.T) {
		err := NewSQLFields(0, "", 10).Connection(newServer().Conn()).Execute(ctx)
		assert.Equal(t, driver.StatusFailed, driver.StatusOf(err))
	})
}

func TestResourceClose(t *testing.T) {
	ctx := context.Background()
	srv := newServer()
	conn := srv.Conn()

	scan := NewScan(driver.CacheID(cacheName), 1).Connection(conn)
	require.NoError(t, scan.Execute(ctx))
	cursor := *scan.Result().Cursor
	require.Equal(t, 1, srv.OpenCursors())

	require.NoError(t, NewResourceClose(cursor).Connection(conn).Execute(ctx))
	assert.Equal(t, 0, srv.OpenCursors())
	assert.False(t, conn.Closed())

	// the server no longer knows the handle
	err := NewResourceClose(cursor).Connection(conn).Execute(ctx)
	assert.Equal(t, driver.StatusResourceDoesNotExist, driver.StatusOf(err))
	assert.False(t, driver.IsConnectionError(err))

	err = NewScanCursorGetPage(cursor).Connection(conn).Execute(ctx)
	assert.Equal(t, driver.StatusResourceDoesNotExist, driver.StatusOf(err))
}

func TestWrongFieldCountIsAConnectionFault(t *testing.T) {
	ctx := context.Background()
	srv := newServer()
	conn := srv.Conn()

	sf := NewSQLFields(0, "SELECT id, name FROM Person", 1).Connection(conn)
	require.NoError(t, sf.Execute(ctx))

	err := NewSQLFieldsCursorGetPage(*sf.Result().Cursor, 3).Connection(conn).Execute(ctx)
	assert.True(t, driver.IsConnectionError(err))
	assert.True(t, conn.Closed())
}
