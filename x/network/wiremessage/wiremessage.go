// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package wiremessage frames Ignite thin client messages.
//
// A request is an int32 length followed by an int16 op code, an int64
// request id and the payload. A response is an int32 length followed by the
// echoed int64 request id, an int32 status and either the payload (status 0)
// or a typed error string. The length never counts its own four bytes.
package wiremessage

import (
	"sync/atomic"

	"github.com/ikmak/ignite-go-driver/x/binary/bincore"
)

// WireMessage represents an Ignite thin client message in binary form.
type WireMessage []byte

var globalRequestID int64

// CurrentRequestID returns the current request ID.
func CurrentRequestID() int64 { return atomic.LoadInt64(&globalRequestID) }

// NextRequestID returns the next request ID.
func NextRequestID() int64 { return atomic.AddInt64(&globalRequestID, 1) }

// OpCode represents an Ignite thin client operation code.
type OpCode int16

// These constants are the op codes of the query and resource operations.
const (
	OpResourceClose               OpCode = 0
	OpQueryScan                   OpCode = 2000
	OpQueryScanCursorGetPage      OpCode = 2001
	OpQuerySQL                    OpCode = 2002
	OpQuerySQLCursorGetPage       OpCode = 2003
	OpQuerySQLFields              OpCode = 2004
	OpQuerySQLFieldsCursorGetPage OpCode = 2005
)

// String implements the fmt.Stringer interface.
func (oc OpCode) String() string {
	switch oc {
	case OpResourceClose:
		return "OP_RESOURCE_CLOSE"
	case OpQueryScan:
		return "OP_QUERY_SCAN"
	case OpQueryScanCursorGetPage:
		return "OP_QUERY_SCAN_CURSOR_GET_PAGE"
	case OpQuerySQL:
		return "OP_QUERY_SQL"
	case OpQuerySQLCursorGetPage:
		return "OP_QUERY_SQL_CURSOR_GET_PAGE"
	case OpQuerySQLFields:
		return "OP_QUERY_SQL_FIELDS"
	case OpQuerySQLFieldsCursorGetPage:
		return "OP_QUERY_SQL_FIELDS_CURSOR_GET_PAGE"
	default:
		return "<invalid opcode>"
	}
}

// Status is the result code carried by every response. Zero is success.
type Status int32

// StatusSuccess is the only status that is followed by a payload.
const StatusSuccess Status = 0

const (
	// RequestHeaderLen is the size of a request header, length included.
	RequestHeaderLen = 4 + 2 + 8
	// ResponseHeaderLen is the size of a response header, length included.
	ResponseHeaderLen = 4 + 8 + 4
)

// AppendRequestHeaderStart reserves the length and appends the op code and
// request id. The returned index must be passed to UpdateLength once the
// payload has been appended.
func AppendRequestHeaderStart(dst []byte, opcode OpCode, reqid int64) (index int32, b []byte) {
	index, dst = bincore.ReserveLength(dst)
	dst = bincore.AppendShort(dst, int16(opcode))
	dst = bincore.AppendLong(dst, reqid)
	return index, dst
}

// AppendResponseHeaderStart reserves the length and appends the request id
// and status.
func AppendResponseHeaderStart(dst []byte, reqid int64, status Status) (index int32, b []byte) {
	index, dst = bincore.ReserveLength(dst)
	dst = bincore.AppendLong(dst, reqid)
	dst = bincore.AppendInt(dst, int32(status))
	return index, dst
}

// UpdateLength writes the length of the message started at index.
func UpdateLength(dst []byte, index int32) []byte {
	return bincore.UpdateLength(dst, index, int32(len(dst))-index-4)
}

// ReadLength reads the length prefix of a message.
func ReadLength(src []byte) (length int32, rem []byte, ok bool) {
	length, rem, ok = bincore.ReadInt(src)
	if !ok || length < 0 {
		return 0, src, false
	}
	return length, rem, true
}

// ReadRequestHeader parses a full request header.
func ReadRequestHeader(src []byte) (length int32, opcode OpCode, reqid int64, rem []byte, ok bool) {
	if len(src) < RequestHeaderLen {
		return 0, 0, 0, src, false
	}
	length, rem, ok = ReadLength(src)
	if !ok {
		return 0, 0, 0, src, false
	}
	op, rem, _ := bincore.ReadShort(rem)
	reqid, rem, _ = bincore.ReadLong(rem)
	return length, OpCode(op), reqid, rem, true
}

// ReadResponseHeader parses a full response header.
func ReadResponseHeader(src []byte) (length int32, reqid int64, status Status, rem []byte, ok bool) {
	if len(src) < ResponseHeaderLen {
		return 0, 0, 0, src, false
	}
	length, rem, ok = ReadLength(src)
	if !ok {
		return 0, 0, 0, src, false
	}
	reqid, rem, _ = bincore.ReadLong(rem)
	st, rem, _ := bincore.ReadInt(rem)
	return length, reqid, Status(st), rem, true
}

// ClientCode identifies the kind of client in the handshake.
type ClientCode byte

// ThinClient is the client code of the thin client protocol.
const ThinClient ClientCode = 2

const handshakeRequestCode = 1

// Version is a thin protocol version.
type Version struct {
	Major, Minor, Patch int16
}

// DefaultVersion is the protocol version spoken unless configured otherwise.
var DefaultVersion = Version{Major: 1, Minor: 2, Patch: 0}

// AppendHandshakeRequest appends a complete handshake request for version v.
func AppendHandshakeRequest(dst []byte, v Version) []byte {
	idx, dst := bincore.ReserveLength(dst)
	dst = append(dst, handshakeRequestCode)
	dst = bincore.AppendShort(dst, v.Major)
	dst = bincore.AppendShort(dst, v.Minor)
	dst = bincore.AppendShort(dst, v.Patch)
	dst = append(dst, byte(ThinClient))
	return UpdateLength(dst, idx)
}

// ReadHandshakeResponse parses a handshake response body, length excluded.
// On rejection the server reports the version it supports and a message.
func ReadHandshakeResponse(src []byte) (success bool, server Version, msg string, ok bool) {
	if len(src) < 1 {
		return false, Version{}, "", false
	}
	if src[0] == 1 {
		return true, Version{}, "", true
	}
	rem := src[1:]
	if server.Major, rem, ok = bincore.ReadShort(rem); !ok {
		return false, Version{}, "", false
	}
	if server.Minor, rem, ok = bincore.ReadShort(rem); !ok {
		return false, Version{}, "", false
	}
	if server.Patch, rem, ok = bincore.ReadShort(rem); !ok {
		return false, Version{}, "", false
	}
	msg, _, _, ok = bincore.ReadStringObject(rem)
	if !ok {
		return false, Version{}, "", false
	}
	return false, server, msg, true
}

// AppendHandshakeResponse appends a complete handshake response. It is used
// by fake servers in tests.
func AppendHandshakeResponse(dst []byte, success bool, server Version, msg string) []byte {
	idx, dst := bincore.ReserveLength(dst)
	if success {
		dst = append(dst, 1)
		return UpdateLength(dst, idx)
	}
	dst = append(dst, 0)
	dst = bincore.AppendShort(dst, server.Major)
	dst = bincore.AppendShort(dst, server.Minor)
	dst = bincore.AppendShort(dst, server.Patch)
	dst = bincore.AppendStringObject(dst, msg)
	return UpdateLength(dst, idx)
}
