// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ikmak/ignite-go-driver/conn"
	"github.com/ikmak/ignite-go-driver/x/binary/bincodec"
	"github.com/ikmak/ignite-go-driver/x/binary/bincore"
	"github.com/ikmak/ignite-go-driver/x/ignite/driver"
	"github.com/ikmak/ignite-go-driver/x/ignite/driver/drivertest"
	"github.com/ikmak/ignite-go-driver/x/network/wiremessage"
)

func newServer(entries int) *drivertest.Server {
	srv := &drivertest.Server{CacheID: driver.CacheID("PersonCache"), FieldNames: []string{"ID", "NAME"}}
	for i := 0; i < entries; i++ {
		srv.Entries = append(srv.Entries, bincodec.Pair{Key: int32(i), Value: fmt.Sprintf("v%d", i)})
		srv.Rows = append(srv.Rows, []interface{}{int32(i), fmt.Sprintf("n%d", i)})
	}
	return srv
}

// serverDialer connects every dial to srv over an in-memory pipe.
func serverDialer(t *testing.T, srv *drivertest.Server) conn.Option {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	t.Cleanup(func() {
		cancel()
		_ = g.Wait()
	})
	return conn.WithDialer(func(context.Context, string, string) (net.Conn, error) {
		client, server := net.Pipe()
		g.Go(func() error { return srv.ServeConn(gctx, server) })
		return client, nil
	})
}

func execute(t *testing.T, srv *drivertest.Server, args ...string) (*bytes.Buffer, *bytes.Buffer, error) {
	t.Helper()
	clearIgniteEnv(t)
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut, serverDialer(t, srv))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return &out, &errOut, err
}

func decodePages(t *testing.T, r io.Reader) []map[string]interface{} {
	t.Helper()
	var pages []map[string]interface{}
	dec := json.NewDecoder(r)
	for {
		var page map[string]interface{}
		err := dec.Decode(&page)
		if err == io.EOF {
			return pages
		}
		require.NoError(t, err)
		pages = append(pages, page)
	}
}

func TestScanCommand(t *testing.T) {
	srv := newServer(5)
	out, errOut, err := execute(t, srv, "scan", "--cache", "PersonCache", "--page-size", "2")
	require.NoError(t, err)

	pages := decodePages(t, out)
	require.Len(t, pages, 3)
	assert.Equal(t, true, pages[0]["more"])
	assert.Equal(t, false, pages[2]["more"])
	assert.Equal(t, []interface{}{
		map[string]interface{}{"key": float64(4), "value": "v4"},
	}, pages[2]["rows"])
	assert.Contains(t, errOut.String(), "3 round trips: p50=")
	assert.Equal(t, 0, srv.OpenCursors())
	assert.Empty(t, requestsWith(srv, wiremessage.OpResourceClose), "an exhausted cursor is not closed")
}

func TestLimitPagesReleasesCursor(t *testing.T) {
	srv := newServer(10)
	out, _, err := execute(t, srv, "sql", "--cache", "PersonCache", "--table", "Person",
		"--query", "age > ?", "--arg", "int:3", "--page-size", "3", "--limit-pages", "2", "--compact")
	require.NoError(t, err)

	assert.Equal(t, 2, bytes.Count(out.Bytes(), []byte("\n")), "compact output is one line per page")
	assert.Len(t, decodePages(t, out), 2)
	assert.Equal(t, 0, srv.OpenCursors())
	require.Len(t, requestsWith(srv, wiremessage.OpResourceClose), 1)

	open := requestsWith(srv, wiremessage.OpQuerySQL)[0]
	assert.Equal(t, "Person", open.Fields["table_name"])
	assert.Equal(t, []interface{}{int32(3)}, open.Fields["query_args"])
}

func TestFieldsCommand(t *testing.T) {
	srv := newServer(3)
	out, _, err := execute(t, srv, "fields", "--cache-id", fmt.Sprint(srv.CacheID),
		"--query", "SELECT id, name FROM Person", "--include-field-names", "--schema", "PUBLIC", "--page-size", "2")
	require.NoError(t, err)

	pages := decodePages(t, out)
	require.Len(t, pages, 2)
	assert.Equal(t, []interface{}{"ID", "NAME"}, pages[0]["fields"])
	assert.Equal(t, []interface{}{
		[]interface{}{float64(2), "n2"},
	}, pages[1]["rows"])

	open := requestsWith(srv, wiremessage.OpQuerySQLFields)[0]
	assert.Equal(t, "PUBLIC", open.Fields["schema"])
	assert.Equal(t, int32(-1), open.Fields["max_rows"])
}

func TestCommandErrors(t *testing.T) {
	t.Run("status error", func(t *testing.T) {
		_, _, err := execute(t, newServer(1), "scan", "--cache", "OtherCache")
		assert.Equal(t, driver.StatusCacheDoesNotExist, driver.StatusOf(err))
	})
	t.Run("missing query", func(t *testing.T) {
		_, _, err := execute(t, newServer(1), "fields")
		assert.Error(t, err)
	})
	t.Run("bad argument", func(t *testing.T) {
		srv := newServer(1)
		_, _, err := execute(t, srv, "fields", "--query", "SELECT ?", "--arg", "int:x")
		assert.Error(t, err)
		assert.Empty(t, srv.Requests())
	})
	t.Run("invalid page size", func(t *testing.T) {
		srv := newServer(1)
		_, _, err := execute(t, srv, "scan", "--page-size", "-1")
		assert.Error(t, err)
		assert.Empty(t, srv.Requests())
	})
	t.Run("handshake rejected", func(t *testing.T) {
		srv := newServer(1)
		srv.RejectHandshake = "unsupported version"
		_, _, err := execute(t, srv, "scan")
		var he conn.HandshakeError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, "unsupported version", he.Message)
	})
}

func TestParseArg(t *testing.T) {
	tests := []struct {
		in   string
		want interface{}
	}{
		{"plain", "plain"},
		{"int:42", int32(42)},
		{"long:-9", int64(-9)},
		{"byte:7", int8(7)},
		{"double:1.5", 1.5},
		{"bool:true", true},
		{"string:int:3", "int:3"},
		{"null:", nil},
		{"short:5", bincore.Value{Type: bincore.TypeShort, Data: bincore.AppendShort(nil, 5)}},
		{"host:port", "host:port"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseArg(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	for _, bad := range []string{"int:x", "long:", "short:99999", "byte:300", "double:d", "bool:maybe"} {
		_, err := parseArg(bad)
		assert.Error(t, err, bad)
	}
}

func requestsWith(srv *drivertest.Server, op wiremessage.OpCode) []drivertest.Request {
	var out []drivertest.Request
	for _, req := range srv.Requests() {
		if req.OpCode == op {
			out = append(out, req)
		}
	}
	return out
}
