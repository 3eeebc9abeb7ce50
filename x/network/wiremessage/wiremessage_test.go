// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package wiremessage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestHeader(t *testing.T) {
	idx, wm := AppendRequestHeaderStart(nil, OpQuerySQLFields, 0x0102030405060708)
	wm = append(wm, 0xAA, 0xBB)
	wm = UpdateLength(wm, idx)

	assert.Equal(t, []byte{
		12, 0, 0, 0, // length
		0xD4, 0x07, // 2004
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
		0xAA, 0xBB,
	}, wm)

	length, op, reqid, rem, ok := ReadRequestHeader(wm)
	require.True(t, ok)
	assert.Equal(t, int32(12), length)
	assert.Equal(t, OpQuerySQLFields, op)
	assert.Equal(t, int64(0x0102030405060708), reqid)
	assert.Equal(t, []byte{0xAA, 0xBB}, rem)

	_, _, _, _, ok = ReadRequestHeader(wm[:RequestHeaderLen-1])
	assert.False(t, ok)
}

func TestResponseHeader(t *testing.T) {
	idx, wm := AppendResponseHeaderStart(nil, 42, Status(1))
	wm = UpdateLength(wm, idx)

	length, reqid, status, rem, ok := ReadResponseHeader(wm)
	require.True(t, ok)
	assert.Equal(t, int32(ResponseHeaderLen-4), length)
	assert.Equal(t, int64(42), reqid)
	assert.Equal(t, Status(1), status)
	assert.Empty(t, rem)
}

func TestNextRequestID(t *testing.T) {
	first := NextRequestID()
	second := NextRequestID()
	assert.Greater(t, second, first)
	assert.Equal(t, second, CurrentRequestID())
}

func TestOpCodeString(t *testing.T) {
	testCases := []struct {
		op   OpCode
		want string
	}{
		{OpResourceClose, "OP_RESOURCE_CLOSE"},
		{OpQueryScan, "OP_QUERY_SCAN"},
		{OpQuerySQLCursorGetPage, "OP_QUERY_SQL_CURSOR_GET_PAGE"},
		{OpCode(1), "<invalid opcode>"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, tc.op.String())
	}
}

func TestHandshake(t *testing.T) {
	req := AppendHandshakeRequest(nil, DefaultVersion)
	assert.Equal(t, []byte{8, 0, 0, 0, 1, 1, 0, 2, 0, 0, 0, 2}, req)

	t.Run("accepted", func(t *testing.T) {
		resp := AppendHandshakeResponse(nil, true, Version{}, "")
		length, body, ok := ReadLength(resp)
		require.True(t, ok)
		assert.Equal(t, int32(1), length)

		success, _, _, ok := ReadHandshakeResponse(body)
		require.True(t, ok)
		assert.True(t, success)
	})
	t.Run("rejected", func(t *testing.T) {
		resp := AppendHandshakeResponse(nil, false, Version{Major: 1, Minor: 1}, "unsupported version")
		_, body, ok := ReadLength(resp)
		require.True(t, ok)

		success, server, msg, ok := ReadHandshakeResponse(body)
		require.True(t, ok)
		assert.False(t, success)
		assert.Equal(t, Version{Major: 1, Minor: 1}, server)
		assert.Equal(t, "unsupported version", msg)
	})
	t.Run("truncated", func(t *testing.T) {
		_, _, _, ok := ReadHandshakeResponse([]byte{0, 1})
		assert.False(t, ok)
	})
}
