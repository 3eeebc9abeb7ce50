// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package driver

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/ikmak/ignite-go-driver/event"
	"github.com/ikmak/ignite-go-driver/internal/logger"
	"github.com/ikmak/ignite-go-driver/x/binary/bincore"
	"github.com/ikmak/ignite-go-driver/x/network/wiremessage"
)

// ResponseInfo summarizes a decoded response for monitoring.
type ResponseInfo struct {
	Cursor *int64
	Rows   int
	More   bool
}

// Operation is used to execute a single request-response round trip. Only
// Connection is required; an empty Schema sends a header-only request.
type Operation struct {
	Name   string
	OpCode wiremessage.OpCode
	Schema Schema
	Values map[string]interface{}

	// ProcessResponseFn decodes the payload of a successful response and
	// returns whatever it did not consume, which must be nothing.
	ProcessResponseFn func(payload []byte) (ResponseInfo, []byte, error)

	Connection Connection

	// RequestID overrides the generated correlation id.
	RequestID *int64
	// CursorID is reported to monitors for page fetches and closes.
	CursorID *int64

	Monitor *event.QueryMonitor
	Logger  *logger.Logger
}

// Validate returns an error if the operation cannot be executed.
func (op Operation) Validate() error {
	if op.Connection == nil {
		return ErrNoConnection
	}
	return nil
}

// Execute runs the operation. A server status is returned as Error and leaves
// the connection usable. Any I/O failure or undecodable response is returned
// as ConnectionError and the connection is closed.
func (op Operation) Execute(ctx context.Context) error {
	if err := op.Validate(); err != nil {
		return err
	}
	reqid := wiremessage.NextRequestID()
	if op.RequestID != nil {
		reqid = *op.RequestID
	}

	wm, err := BuildRequest(nil, op.OpCode, reqid, op.Schema, op.Values)
	if err != nil {
		return err
	}

	log := op.getLogger()
	start := time.Now()
	op.publishStarted(ctx, reqid)
	log.Print(logger.LevelDebug, logger.ComponentQuery, logger.QueryStarted, op.keyValues(reqid)...)

	info, err := op.roundTrip(ctx, wm, reqid)
	duration := time.Since(start)
	if err != nil {
		op.publishFailed(ctx, reqid, duration, err)
		kvs := append(op.keyValues(reqid), logger.KeyDurationMS, duration.Milliseconds(), logger.KeyStatus, StatusOf(err))
		log.Print(logger.LevelDebug, logger.ComponentQuery, logger.QueryFailed, append(kvs, logger.KeyFailure, err.Error())...)
		if IsConnectionError(err) {
			_ = op.Connection.Close()
			log.Error(err, logger.ComponentConnection, logger.ConnectionFaulted, logger.KeyConnectionID, op.Connection.ID())
		}
		return err
	}

	op.publishSucceeded(ctx, reqid, duration, info)
	kvs := append(op.keyValues(reqid), logger.KeyDurationMS, duration.Milliseconds())
	log.Print(logger.LevelDebug, logger.ComponentQuery, logger.QuerySucceeded, kvs...)
	return nil
}

// roundTrip writes a wire message to the connection, reads the response and
// decodes it. The wm parameter is reused when reading the response.
func (op Operation) roundTrip(ctx context.Context, wm []byte, reqid int64) (ResponseInfo, error) {
	connID := op.Connection.ID()
	if err := op.Connection.WriteWireMessage(ctx, wm); err != nil {
		if errors.Is(err, ErrConnectionBusy) {
			return ResponseInfo{}, err
		}
		return ResponseInfo{}, ConnectionError{ConnectionID: connID, Wrapped: err, message: "unable to write wire message"}
	}

	res, err := op.Connection.ReadWireMessage(ctx, wm[:0])
	if err != nil {
		return ResponseInfo{}, ConnectionError{ConnectionID: connID, Wrapped: err, message: "unable to read wire message"}
	}

	length, respid, status, payload, ok := wiremessage.ReadResponseHeader(res)
	if !ok || int(length) != len(res)-4 {
		return ResponseInfo{}, ConnectionError{
			ConnectionID: connID,
			Wrapped:      bincore.NewInsufficientBytesError(res, res),
			message:      "malformed response header",
		}
	}
	if respid != reqid {
		return ResponseInfo{}, ConnectionError{
			ConnectionID: connID,
			Wrapped:      errors.Errorf("response to request %d received while waiting for %d", respid, reqid),
			message:      "request id mismatch",
		}
	}

	if status != wiremessage.StatusSuccess {
		msg, _, rem, ok := bincore.ReadStringObject(payload)
		if !ok || len(rem) != 0 {
			return ResponseInfo{}, ConnectionError{
				ConnectionID: connID,
				Wrapped:      bincore.NewInsufficientBytesError(payload, rem),
				message:      "malformed error response",
			}
		}
		return ResponseInfo{}, Error{Status: int32(status), Message: msg, OpCode: op.OpCode, RequestID: reqid}
	}

	if op.ProcessResponseFn == nil {
		if len(payload) != 0 {
			return ResponseInfo{}, ConnectionError{ConnectionID: connID, Wrapped: ErrTrailingBytes}
		}
		return ResponseInfo{}, nil
	}
	info, rem, err := op.ProcessResponseFn(payload)
	if err != nil {
		return ResponseInfo{}, ConnectionError{ConnectionID: connID, Wrapped: err, message: "unable to decode response"}
	}
	if len(rem) != 0 {
		return ResponseInfo{}, ConnectionError{ConnectionID: connID, Wrapped: errors.Wrapf(ErrTrailingBytes, "%d bytes", len(rem))}
	}
	return info, nil
}

func (op Operation) getLogger() *logger.Logger {
	if op.Logger != nil {
		return op.Logger
	}
	if ls, ok := op.Connection.(LoggerSource); ok {
		return ls.Logger()
	}
	return nil
}

func (op Operation) keyValues(reqid int64) []interface{} {
	var kvs logger.KeyValues
	kvs.Add(logger.KeyOperation, op.name())
	kvs.Add(logger.KeyOpCode, int16(op.OpCode))
	kvs.Add(logger.KeyRequestID, reqid)
	kvs.Add(logger.KeyConnectionID, op.Connection.ID())
	if op.CursorID != nil {
		kvs.Add(logger.KeyCursorID, *op.CursorID)
	}
	return kvs
}

func (op Operation) name() string {
	if op.Name != "" {
		return op.Name
	}
	return op.OpCode.String()
}

func (op Operation) publishStarted(ctx context.Context, reqid int64) {
	if op.Monitor == nil || op.Monitor.Started == nil {
		return
	}
	op.Monitor.Started(ctx, &event.QueryStartedEvent{
		OperationName: op.name(),
		OpCode:        int16(op.OpCode),
		RequestID:     reqid,
		ConnectionID:  op.Connection.ID(),
		CursorID:      op.CursorID,
	})
}

func (op Operation) finished(reqid int64, duration time.Duration) event.QueryFinishedEvent {
	return event.QueryFinishedEvent{
		Duration:      duration,
		OperationName: op.name(),
		OpCode:        int16(op.OpCode),
		RequestID:     reqid,
		ConnectionID:  op.Connection.ID(),
	}
}

func (op Operation) publishSucceeded(ctx context.Context, reqid int64, duration time.Duration, info ResponseInfo) {
	if op.Monitor == nil || op.Monitor.Succeeded == nil {
		return
	}
	op.Monitor.Succeeded(ctx, &event.QuerySucceededEvent{
		QueryFinishedEvent: op.finished(reqid, duration),
		CursorID:           info.Cursor,
		Rows:               info.Rows,
		More:               info.More,
	})
}

func (op Operation) publishFailed(ctx context.Context, reqid int64, duration time.Duration, err error) {
	if op.Monitor == nil || op.Monitor.Failed == nil {
		return
	}
	op.Monitor.Failed(ctx, &event.QueryFailedEvent{
		QueryFinishedEvent: op.finished(reqid, duration),
		Status:             StatusOf(err),
		Failure:            err.Error(),
	})
}
