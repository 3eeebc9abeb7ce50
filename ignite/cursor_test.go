// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package ignite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikmak/ignite-go-driver/ignite/options"
	"github.com/ikmak/ignite-go-driver/x/binary/bincodec"
	"github.com/ikmak/ignite-go-driver/x/ignite/driver"
	"github.com/ikmak/ignite-go-driver/x/ignite/driver/drivertest"
	"github.com/ikmak/ignite-go-driver/x/network/wiremessage"
)

func countOps(srv *drivertest.Server, op wiremessage.OpCode) int {
	n := 0
	for _, req := range srv.Requests() {
		if req.OpCode == op {
			n++
		}
	}
	return n
}

func TestCursorScan(t *testing.T) {
	ctx := context.Background()
	srv := newServer(5)

	cur, err := Scan(ctx, srv.Conn(), cacheX, 2)
	require.NoError(t, err)
	assert.True(t, cur.More())

	var got []bincodec.Pair
	for cur.Next(ctx) {
		got = append(got, cur.Entry())
		assert.Nil(t, cur.Row())
	}
	require.NoError(t, cur.Err())
	assert.Equal(t, srv.Entries, got)
	assert.False(t, cur.More())
	assert.Equal(t, 2, countOps(srv, wiremessage.OpQueryScanCursorGetPage))

	// exhausted: nothing is sent
	require.NoError(t, cur.Close(ctx))
	assert.Equal(t, 0, countOps(srv, wiremessage.OpResourceClose))

	assert.False(t, cur.Next(ctx))
	assert.Equal(t, ErrCursorClosed, cur.Err())
	assert.Equal(t, ErrCursorClosed, cur.NextPage(ctx))
}

func TestCursorEarlyClose(t *testing.T) {
	ctx := context.Background()
	srv := newServer(5)

	cur, err := Query(ctx, srv.Conn(), cacheX, "Person", "1=1", 2)
	require.NoError(t, err)
	require.True(t, cur.Next(ctx))
	assert.Equal(t, bincodec.Pair{Key: int32(0), Value: "v0"}, cur.Entry())
	assert.Equal(t, 1, srv.OpenCursors())

	require.NoError(t, cur.Close(ctx))
	assert.Equal(t, 0, srv.OpenCursors())
	assert.Equal(t, 1, countOps(srv, wiremessage.OpResourceClose))

	// closing twice is harmless client side
	require.NoError(t, cur.Close(ctx))
	assert.Equal(t, 1, countOps(srv, wiremessage.OpResourceClose))
}

func TestCursorNextPage(t *testing.T) {
	ctx := context.Background()
	srv := newServer(3)

	cur, err := Scan(ctx, srv.Conn(), cacheX, 2)
	require.NoError(t, err)
	defer cur.Close(ctx)

	assert.Len(t, cur.PageEntries(), 2)
	assert.Nil(t, cur.PageRows())
	require.NoError(t, cur.NextPage(ctx))
	assert.Equal(t, []bincodec.Pair{{Key: int32(2), Value: "v2"}}, cur.PageEntries())
	require.True(t, cur.Next(ctx))
	assert.Equal(t, int32(2), cur.Entry().Key)
	assert.False(t, cur.More())
	assert.Equal(t, ErrCursorExhausted, cur.NextPage(ctx))
	assert.False(t, cur.Next(ctx))
	assert.NoError(t, cur.Err())
}

func TestCursorFields(t *testing.T) {
	ctx := context.Background()
	srv := newServer(5)

	cur, err := QueryFields(ctx, srv.Conn(), cacheX, "SELECT id, name FROM Person", 2,
		options.SQLFields().SetIncludeFieldNames(true))
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "NAME"}, cur.FieldNames())
	assert.Equal(t, 2, cur.FieldCount())

	rows, err := cur.AllRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, srv.Rows, rows)
	assert.Equal(t, 2, countOps(srv, wiremessage.OpQuerySQLFieldsCursorGetPage))
	assert.Equal(t, 0, countOps(srv, wiremessage.OpResourceClose))
}

func TestCursorAllEntries(t *testing.T) {
	ctx := context.Background()
	srv := newServer(4)

	cur, err := Query(ctx, srv.Conn(), cacheX, "Person", "1=1", 3)
	require.NoError(t, err)
	entries, err := cur.AllEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, srv.Entries, entries)
	assert.Equal(t, 0, srv.OpenCursors())
}

func TestCursorFetchError(t *testing.T) {
	ctx := context.Background()
	srv := newServer(5)
	srv.Fail = func(req drivertest.Request) (int32, string) {
		if req.OpCode == wiremessage.OpQueryScanCursorGetPage {
			return driver.StatusFailed, "node is stopping"
		}
		return 0, ""
	}

	cur, err := Scan(ctx, srv.Conn(), cacheX, 2)
	require.NoError(t, err)

	n := 0
	for cur.Next(ctx) {
		n++
	}
	assert.Equal(t, 2, n)
	assert.Equal(t, driver.StatusFailed, driver.StatusOf(cur.Err()))

	// the cursor is still open on the server, so Close releases it
	require.NoError(t, cur.Close(ctx))
	assert.Equal(t, 0, srv.OpenCursors())
}

func TestCursorOpenError(t *testing.T) {
	ctx := context.Background()
	srv := newServer(1)

	cur, err := QueryFields(ctx, srv.Conn(), cacheX, "", 2)
	assert.Nil(t, cur)
	assert.Equal(t, driver.StatusFailed, driver.StatusOf(err))

	cur, err = Scan(ctx, srv.Conn(), cacheX, 0)
	assert.Nil(t, cur)
	assert.Equal(t, ErrInvalidPageSize, err)
}
