// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package conn

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ikmak/ignite-go-driver/event"
	"github.com/ikmak/ignite-go-driver/x/binary/bincodec"
	"github.com/ikmak/ignite-go-driver/x/binary/bincore"
	"github.com/ikmak/ignite-go-driver/x/ignite/driver"
	"github.com/ikmak/ignite-go-driver/x/ignite/driver/drivertest"
	"github.com/ikmak/ignite-go-driver/x/ignite/driver/operation"
	"github.com/ikmak/ignite-go-driver/x/network/wiremessage"
)

func TestEndpointCanonicalize(t *testing.T) {
	testCases := []struct {
		in   Endpoint
		want Endpoint
	}{
		{"localhost", "localhost:10800"},
		{"LOCALHOST:10801", "localhost:10801"},
		{" 10.0.0.1 ", "10.0.0.1:10800"},
		{"[::1]", "[::1]:10800"},
		{"[::1]:47500", "[::1]:47500"},
	}
	for _, tc := range testCases {
		t.Run(string(tc.in), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.in.Canonicalize())
		})
	}
}

type eventRecorder struct {
	mu     sync.Mutex
	events []*event.ConnectionEvent
}

func (r *eventRecorder) monitor() *event.ConnectionMonitor {
	return &event.ConnectionMonitor{Event: func(e *event.ConnectionEvent) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, e)
	}}
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// pipeDialer returns a dialer handing out the client end of a pipe whose
// server end is served by serve in its own goroutine.
func pipeDialer(t *testing.T, serve func(ctx context.Context, nc net.Conn) error) NetDialer {
	t.Helper()
	client, server := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return serve(gctx, server) })
	t.Cleanup(func() {
		cancel()
		_ = client.Close()
		_ = server.Close()
		_ = g.Wait()
	})
	return func(context.Context, string, string) (net.Conn, error) {
		return client, nil
	}
}

// acceptHandshake answers the handshake on nc and returns the first request.
func acceptHandshake(nc net.Conn) ([]byte, error) {
	if _, err := readTestFrame(nc); err != nil {
		return nil, err
	}
	if _, err := nc.Write(wiremessage.AppendHandshakeResponse(nil, true, wiremessage.Version{}, "")); err != nil {
		return nil, err
	}
	return readTestFrame(nc)
}

func readTestFrame(r io.Reader) ([]byte, error) {
	var size [4]byte
	if _, err := io.ReadFull(r, size[:]); err != nil {
		return nil, err
	}
	length, _, _ := wiremessage.ReadLength(size[:])
	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return append(size[:], body...), nil
}

func testServer() *drivertest.Server {
	return &drivertest.Server{
		CacheID: driver.CacheID("cache"),
		Entries: []bincodec.Pair{
			{Key: int32(1), Value: "a"},
			{Key: int32(2), Value: "b"},
			{Key: int32(3), Value: "c"},
		},
	}
}

func TestDial(t *testing.T) {
	ctx := context.Background()

	t.Run("queries over the connection", func(t *testing.T) {
		srv := testServer()
		var rec eventRecorder
		c, err := Dial(ctx, "node", WithDialer(pipeDialer(t, srv.ServeConn)), WithMonitor(rec.monitor()))
		require.NoError(t, err)
		assert.True(t, c.Alive())
		assert.Equal(t, Endpoint("node:10800"), c.Endpoint())
		assert.Equal(t, wiremessage.DefaultVersion, c.Version())
		assert.Contains(t, c.ID(), "node:10800")

		scan := operation.NewScan(driver.CacheID("cache"), 2).Connection(c)
		require.NoError(t, scan.Execute(ctx))
		assert.Len(t, scan.Result().Rows, 2)
		require.True(t, scan.Result().More)

		page := operation.NewScanCursorGetPage(*scan.Result().Cursor).Connection(c)
		require.NoError(t, page.Execute(ctx))
		assert.Equal(t, []bincodec.Pair{{Key: int32(3), Value: "c"}}, page.Result().Rows)

		err = operation.NewResourceClose(*scan.Result().Cursor).Connection(c).Execute(ctx)
		assert.Equal(t, driver.StatusResourceDoesNotExist, driver.StatusOf(err))
		assert.True(t, c.Alive(), "a status error leaves the connection usable")

		require.NoError(t, c.Close())
		require.NoError(t, c.Close())
		assert.False(t, c.Alive())
		assert.Equal(t, []string{event.ConnectionCreated, event.ConnectionReady, event.ConnectionClosed}, rec.types())

		err = c.WriteWireMessage(ctx, []byte{0})
		assert.True(t, errors.Is(err, ErrConnectionClosed))
	})
	t.Run("handshake rejected", func(t *testing.T) {
		srv := testServer()
		srv.RejectHandshake = "Unsupported version."
		var rec eventRecorder
		_, err := Dial(ctx, "node", WithDialer(pipeDialer(t, srv.ServeConn)), WithMonitor(rec.monitor()),
			WithVersion(wiremessage.Version{Major: 9}))

		var he HandshakeError
		require.True(t, errors.As(err, &he))
		assert.Equal(t, "Unsupported version.", he.Message)
		assert.Equal(t, wiremessage.DefaultVersion, he.Server)
		assert.Equal(t, int16(9), he.Requested.Major)

		require.Len(t, rec.types(), 2)
		assert.Equal(t, event.ConnectionClosed, rec.events[1].Type)
		assert.Equal(t, event.ReasonHandshakeRejected, rec.events[1].Reason)
	})
	t.Run("dial error", func(t *testing.T) {
		boom := errors.New("refused")
		_, err := Dial(ctx, "node", WithDialer(func(context.Context, string, string) (net.Conn, error) {
			return nil, boom
		}))
		assert.True(t, errors.Is(err, boom))
	})
	t.Run("handshake timeout", func(t *testing.T) {
		silent := func(ctx context.Context, nc net.Conn) error {
			<-ctx.Done()
			return nil
		}
		_, err := Dial(ctx, "node", WithDialer(pipeDialer(t, silent)), WithConnectTimeout(20*time.Millisecond))
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}

func TestConnectionHalfDuplex(t *testing.T) {
	ctx := context.Background()
	srv := testServer()
	c, err := Dial(ctx, "node", WithDialer(pipeDialer(t, srv.ServeConn)))
	require.NoError(t, err)

	_, err = c.ReadWireMessage(ctx, nil)
	assert.Equal(t, ErrNoPendingRequest, err)

	first, err := driver.BuildRequest(nil, wiremessage.OpResourceClose, 1, driver.CursorRequest, nil)
	require.NoError(t, err)
	require.NoError(t, c.WriteWireMessage(ctx, first))

	// the response to the first request has not been read
	wctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err = c.WriteWireMessage(wctx, first)
	assert.True(t, errors.Is(err, driver.ErrConnectionBusy))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, driver.ErrConnectionBusy.Error()+": "+context.DeadlineExceeded.Error(), err.Error())
	assert.True(t, c.Alive())

	resp, err := c.ReadWireMessage(ctx, nil)
	require.NoError(t, err)
	_, reqid, status, _, ok := wiremessage.ReadResponseHeader(resp)
	require.True(t, ok)
	assert.Equal(t, int64(1), reqid)
	assert.Equal(t, wiremessage.Status(driver.StatusResourceDoesNotExist), status)

	t.Run("waiting writer proceeds after the read", func(t *testing.T) {
		require.NoError(t, c.WriteWireMessage(ctx, first))
		done := make(chan error, 1)
		go func() {
			second, _ := driver.BuildRequest(nil, wiremessage.OpResourceClose, 2, driver.CursorRequest, nil)
			done <- c.WriteWireMessage(ctx, second)
		}()
		_, err := c.ReadWireMessage(ctx, nil)
		require.NoError(t, err)
		require.NoError(t, <-done)
		resp, err := c.ReadWireMessage(ctx, nil)
		require.NoError(t, err)
		_, reqid, _, _, _ := wiremessage.ReadResponseHeader(resp)
		assert.Equal(t, int64(2), reqid)
	})
}

func TestConnectionFaults(t *testing.T) {
	ctx := context.Background()

	t.Run("peer closes", func(t *testing.T) {
		hangup := func(_ context.Context, nc net.Conn) error {
			_, err := acceptHandshake(nc)
			_ = nc.Close()
			return err
		}
		var rec eventRecorder
		c, err := Dial(ctx, "node", WithDialer(pipeDialer(t, hangup)), WithMonitor(rec.monitor()))
		require.NoError(t, err)

		err = operation.NewResourceClose(1).Connection(c).Execute(ctx)
		assert.True(t, driver.IsConnectionError(err))
		assert.False(t, c.Alive())

		err = c.WriteWireMessage(ctx, []byte{0})
		assert.True(t, errors.Is(err, ErrConnectionClosed))

		types := rec.types()
		require.NotEmpty(t, types)
		assert.Equal(t, event.ConnectionClosed, types[len(types)-1])
		assert.Equal(t, event.ReasonConnectionErrored, rec.events[len(types)-1].Reason)
	})
	t.Run("message too large", func(t *testing.T) {
		huge := func(_ context.Context, nc net.Conn) error {
			if _, err := acceptHandshake(nc); err != nil {
				return err
			}
			_, err := nc.Write(bincore.AppendInt(nil, 1<<30))
			return err
		}
		c, err := Dial(ctx, "node", WithDialer(pipeDialer(t, huge)), WithMaxMessageSize(1024))
		require.NoError(t, err)

		err = operation.NewResourceClose(1).Connection(c).Execute(ctx)
		var mtl MessageTooLargeError
		require.True(t, errors.As(err, &mtl))
		assert.Equal(t, int32(1024), mtl.Max)
		assert.False(t, c.Alive())
	})
	t.Run("cancelled read", func(t *testing.T) {
		stall := func(ctx context.Context, nc net.Conn) error {
			if _, err := acceptHandshake(nc); err != nil {
				return err
			}
			<-ctx.Done()
			return nil
		}
		c, err := Dial(ctx, "node", WithDialer(pipeDialer(t, stall)))
		require.NoError(t, err)

		cctx, cancel := context.WithCancel(ctx)
		time.AfterFunc(20*time.Millisecond, cancel)
		err = operation.NewResourceClose(1).Connection(c).Execute(cctx)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.False(t, c.Alive())
	})
}
