// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package drivertest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/ikmak/ignite-go-driver/x/binary/bincodec"
	"github.com/ikmak/ignite-go-driver/x/binary/bincore"
	"github.com/ikmak/ignite-go-driver/x/ignite/driver"
	"github.com/ikmak/ignite-go-driver/x/network/wiremessage"
)

// Server is an in-memory node that answers query requests over a fixed data
// set. Scan and SQL queries return Entries; SQL fields queries return Rows.
// Queries are not evaluated.
//
// Cursors are released by the server as soon as their last page has been
// sent, like a real node does.
type Server struct {
	CacheID    int32
	Entries    []bincodec.Pair
	FieldNames []string
	Rows       [][]interface{}

	// Fail, when set, is consulted before a request is served. A non-zero
	// status is sent back instead of the result.
	Fail func(Request) (status int32, msg string)

	// RejectHandshake makes ServeConn refuse the handshake with this message.
	RejectHandshake string

	mu       sync.Mutex
	cursors  map[int64]*serverCursor
	lastID   int64
	requests []Request
}

type serverCursor struct {
	opened     wiremessage.OpCode
	pageSize   int
	pairs      []bincodec.Pair
	rows       [][]interface{}
	fieldCount int
}

// Requests returns every request served so far, in order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// OpenCursors returns the number of cursors the server still holds.
func (s *Server) OpenCursors() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cursors)
}

// Handle serves one request wire message and returns the response wire
// message. It returns nil if the header cannot be read.
func (s *Server) Handle(wm []byte) []byte {
	_, op, reqid, _, ok := wiremessage.ReadRequestHeader(wm)
	if !ok {
		return nil
	}
	if _, known := RequestSchema(op); !known {
		return MakeErrorResponse(reqid, driver.StatusInvalidOpCode, fmt.Sprintf("Invalid request op code: %d", op))
	}
	req, err := GetRequest(wm)
	if err != nil {
		return MakeErrorResponse(reqid, driver.StatusFailed, "Malformed request: "+err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursors == nil {
		s.cursors = make(map[int64]*serverCursor)
	}
	s.requests = append(s.requests, req)

	if s.Fail != nil {
		if status, msg := s.Fail(req); status != 0 {
			return MakeErrorResponse(reqid, status, msg)
		}
	}

	payload, status, msg := s.serve(req)
	if status != 0 {
		return MakeErrorResponse(reqid, status, msg)
	}
	return MakeResponse(reqid, payload)
}

func (s *Server) serve(req Request) ([]byte, int32, string) {
	f := req.Fields
	switch req.OpCode {
	case wiremessage.OpQueryScan:
		if status, msg := s.checkCache(f["hash_code"].(int32)); status != 0 {
			return nil, status, msg
		}
		return s.openKeyValue(req.OpCode, f["page_size"].(int32))
	case wiremessage.OpQuerySQL:
		if status, msg := s.checkCache(f["hash_code"].(int32)); status != 0 {
			return nil, status, msg
		}
		if q, _ := f["query_str"].(string); q == "" {
			return nil, driver.StatusFailed, "Failed to parse query: empty query"
		}
		if t, _ := f["table_name"].(string); t == "" {
			return nil, driver.StatusFailed, "Failed to parse query: table name is not set"
		}
		return s.openKeyValue(req.OpCode, f["page_size"].(int32))
	case wiremessage.OpQuerySQLFields:
		if hash := f["hash_code"].(int32); hash != 0 {
			if status, msg := s.checkCache(hash); status != 0 {
				return nil, status, msg
			}
		}
		if q, _ := f["query_str"].(string); q == "" {
			return nil, driver.StatusFailed, "Failed to parse query: empty query"
		}
		return s.openFields(f["page_size"].(int32), f["max_rows"].(int32), f["include_field_names"].(bool))
	case wiremessage.OpQueryScanCursorGetPage, wiremessage.OpQuerySQLCursorGetPage:
		id := f["cursor"].(int64)
		cur, ok := s.cursors[id]
		if !ok || cur.opened != openedBy(req.OpCode) {
			return nil, driver.StatusResourceDoesNotExist, fmt.Sprintf("Failed to find resource with id: %d", id)
		}
		return s.keyValuePage(id, cur, driver.KeyValuePageResponse)
	case wiremessage.OpQuerySQLFieldsCursorGetPage:
		id := f["cursor"].(int64)
		cur, ok := s.cursors[id]
		if !ok || cur.opened != wiremessage.OpQuerySQLFields {
			return nil, driver.StatusResourceDoesNotExist, fmt.Sprintf("Failed to find resource with id: %d", id)
		}
		return s.fieldsPage(id, cur, nil)
	case wiremessage.OpResourceClose:
		id := f["cursor"].(int64)
		if _, ok := s.cursors[id]; !ok {
			return nil, driver.StatusResourceDoesNotExist, fmt.Sprintf("Failed to find resource with id: %d", id)
		}
		delete(s.cursors, id)
		return nil, 0, ""
	}
	return nil, driver.StatusInvalidOpCode, "Invalid request op code"
}

func openedBy(pageOp wiremessage.OpCode) wiremessage.OpCode {
	if pageOp == wiremessage.OpQueryScanCursorGetPage {
		return wiremessage.OpQueryScan
	}
	return wiremessage.OpQuerySQL
}

func (s *Server) checkCache(hash int32) (int32, string) {
	if hash != s.CacheID {
		return driver.StatusCacheDoesNotExist, fmt.Sprintf("Cache does not exist [cacheId= %d]", hash)
	}
	return 0, ""
}

func (s *Server) register(cur *serverCursor) int64 {
	s.lastID++
	s.cursors[s.lastID] = cur
	return s.lastID
}

func (s *Server) openKeyValue(op wiremessage.OpCode, pageSize int32) ([]byte, int32, string) {
	if pageSize <= 0 {
		return nil, driver.StatusFailed, "Page size must be positive"
	}
	pairs := make([]bincodec.Pair, len(s.Entries))
	copy(pairs, s.Entries)
	cur := &serverCursor{opened: op, pageSize: int(pageSize), pairs: pairs}
	id := s.register(cur)
	return s.keyValuePage(id, cur, driver.KeyValueOpenResponse)
}

func (s *Server) keyValuePage(id int64, cur *serverCursor, schema driver.Schema) ([]byte, int32, string) {
	n := cur.pageSize
	if n > len(cur.pairs) {
		n = len(cur.pairs)
	}
	page := cur.pairs[:n]
	cur.pairs = cur.pairs[n:]
	more := len(cur.pairs) > 0
	if !more {
		delete(s.cursors, id)
	}

	payload, err := schema.AppendPayload(nil, map[string]interface{}{
		"cursor": id,
		"data":   page,
		"more":   more,
	})
	if err != nil {
		return nil, driver.StatusFailed, err.Error()
	}
	return payload, 0, ""
}

func (s *Server) openFields(pageSize, maxRows int32, includeNames bool) ([]byte, int32, string) {
	if pageSize <= 0 {
		return nil, driver.StatusFailed, "Page size must be positive"
	}
	rows := s.Rows
	if maxRows > 0 && int(maxRows) < len(rows) {
		rows = rows[:maxRows]
	}
	cur := &serverCursor{
		opened:     wiremessage.OpQuerySQLFields,
		pageSize:   int(pageSize),
		rows:       append([][]interface{}(nil), rows...),
		fieldCount: len(s.FieldNames),
	}
	id := s.register(cur)

	head := bincore.AppendLong(nil, id)
	if includeNames {
		head = bincore.AppendStringArray(head, s.FieldNames)
	} else {
		head = bincore.AppendInt(head, int32(len(s.FieldNames)))
	}
	return s.fieldsPage(id, cur, head)
}

func (s *Server) fieldsPage(id int64, cur *serverCursor, dst []byte) ([]byte, int32, string) {
	n := cur.pageSize
	if n > len(cur.rows) {
		n = len(cur.rows)
	}
	page := cur.rows[:n]
	cur.rows = cur.rows[n:]
	more := len(cur.rows) > 0
	if !more {
		delete(s.cursors, id)
	}

	dst = bincore.AppendInt(dst, int32(len(page)))
	for _, row := range page {
		if len(row) != cur.fieldCount {
			return nil, driver.StatusFailed, "row width does not match field count"
		}
		for _, val := range row {
			var err error
			dst, err = bincodec.AppendObject(dst, val)
			if err != nil {
				return nil, driver.StatusFailed, err.Error()
			}
		}
	}
	return bincore.AppendBool(dst, more), 0, ""
}

// Conn returns a new in-process connection to the server.
func (s *Server) Conn() *ServerConn {
	return &ServerConn{server: s}
}

// ServerConn is an in-process driver.Connection to a Server. Like a network
// connection it is half-duplex: writing a request while a response is
// unread fails.
type ServerConn struct {
	server  *Server
	pending []byte
	closed  bool
}

var _ driver.Connection = (*ServerConn)(nil)

// ErrHalfDuplex is returned when a request is written before the previous
// response was read.
var ErrHalfDuplex = errors.New("previous response has not been read")

// WriteWireMessage implements the driver.Connection interface.
func (c *ServerConn) WriteWireMessage(_ context.Context, wm []byte) error {
	if c.closed {
		return net.ErrClosed
	}
	if c.pending != nil {
		return ErrHalfDuplex
	}
	c.pending = c.server.Handle(wm)
	if c.pending == nil {
		return errors.New("malformed request header")
	}
	return nil
}

// ReadWireMessage implements the driver.Connection interface.
func (c *ServerConn) ReadWireMessage(_ context.Context, dst []byte) ([]byte, error) {
	if c.closed {
		return dst[:0], net.ErrClosed
	}
	if c.pending == nil {
		return dst[:0], io.EOF
	}
	dst = append(dst[:0], c.pending...)
	c.pending = nil
	return dst, nil
}

// Close implements the driver.Connection interface.
func (c *ServerConn) Close() error {
	c.closed = true
	return nil
}

// Closed reports whether Close was called.
func (c *ServerConn) Closed() bool { return c.closed }

// ID implements the driver.Connection interface.
func (c *ServerConn) ID() string { return "in-process" }

// ServeConn speaks the thin protocol on nc: it answers the handshake and then
// serves requests until the peer closes the connection or ctx is done.
func (s *Server) ServeConn(ctx context.Context, nc net.Conn) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = nc.Close()
		case <-stop:
		}
	}()

	hs, err := readFrame(nc)
	if err != nil {
		return err
	}
	if len(hs) < 12 || hs[4] != 1 {
		return errors.New("unexpected handshake request")
	}
	if s.RejectHandshake != "" {
		_, err = nc.Write(wiremessage.AppendHandshakeResponse(nil, false, wiremessage.DefaultVersion, s.RejectHandshake))
		return err
	}
	if _, err = nc.Write(wiremessage.AppendHandshakeResponse(nil, true, wiremessage.Version{}, "")); err != nil {
		return err
	}

	for {
		wm, err := readFrame(nc)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		resp := s.Handle(wm)
		if resp == nil {
			return errors.New("malformed request header")
		}
		if _, err = nc.Write(resp); err != nil {
			return err
		}
	}
}

func readFrame(r io.Reader) ([]byte, error) {
	var size [4]byte
	if _, err := io.ReadFull(r, size[:]); err != nil {
		return nil, err
	}
	length, _, _ := wiremessage.ReadLength(size[:])
	wm := make([]byte, 4+int(length))
	copy(wm, size[:])
	if _, err := io.ReadFull(r, wm[4:]); err != nil {
		return nil, err
	}
	return wm, nil
}
