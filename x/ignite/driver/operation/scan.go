// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package operation

import (
	"context"

	"github.com/ikmak/ignite-go-driver/event"
	"github.com/ikmak/ignite-go-driver/internal/logger"
	"github.com/ikmak/ignite-go-driver/x/binary/bincodec"
	"github.com/ikmak/ignite-go-driver/x/ignite/driver"
	"github.com/ikmak/ignite-go-driver/x/network/wiremessage"
)

// Scan performs a scan query: it opens a cursor over every entry of a cache
// and returns the first page.
type Scan struct {
	cacheID    int32
	pageSize   int32
	partitions *int32
	local      *bool
	keepBinary *bool
	requestID  *int64
	monitor    *event.QueryMonitor
	logger     *logger.Logger
	registry   *bincodec.Registry
	connection driver.Connection

	result driver.KeyValuePage
}

// NewScan constructs and returns a new Scan.
func NewScan(cacheID int32, pageSize int32) *Scan {
	return &Scan{cacheID: cacheID, pageSize: pageSize}
}

// Result returns the first page of the scan.
func (s *Scan) Result() *driver.KeyValuePage {
	return &s.result
}

func (s *Scan) processResponse(payload []byte) (driver.ResponseInfo, []byte, error) {
	var info driver.ResponseInfo
	var rem []byte
	var err error
	s.result, info, rem, err = decodeKeyValuePage(payload, driver.KeyValueOpenResponse, registryOrDefault(s.registry))
	return info, rem, err
}

// Execute runs this operation and returns an error if the operation did not execute successfully.
func (s *Scan) Execute(ctx context.Context) error {
	partitions := int32(-1)
	if s.partitions != nil {
		partitions = *s.partitions
	}

	return driver.Operation{
		Name:   ScanOp,
		OpCode: wiremessage.OpQueryScan,
		Schema: driver.ScanRequest,
		Values: map[string]interface{}{
			"hash_code":  s.cacheID,
			"flag":       flag(s.keepBinary),
			"page_size":  s.pageSize,
			"partitions": partitions,
			"local":      boolValue(s.local),
		},
		ProcessResponseFn: s.processResponse,
		Connection:        s.connection,
		RequestID:         s.requestID,
		Monitor:           s.monitor,
		Logger:            s.logger,
	}.Execute(ctx)
}

// Partitions restricts the scan to one partition. Negative values scan all partitions.
func (s *Scan) Partitions(partitions int32) *Scan {
	if s == nil {
		s = new(Scan)
	}

	s.partitions = &partitions
	return s
}

// Local restricts the scan to the node the connection is made to.
func (s *Scan) Local(local bool) *Scan {
	if s == nil {
		s = new(Scan)
	}

	s.local = &local
	return s
}

// KeepBinary asks the server to return complex objects in binary form.
func (s *Scan) KeepBinary(keepBinary bool) *Scan {
	if s == nil {
		s = new(Scan)
	}

	s.keepBinary = &keepBinary
	return s
}

// RequestID overrides the generated correlation id.
func (s *Scan) RequestID(id int64) *Scan {
	if s == nil {
		s = new(Scan)
	}

	s.requestID = &id
	return s
}

// QueryMonitor sets the monitor to use for query events.
func (s *Scan) QueryMonitor(monitor *event.QueryMonitor) *Scan {
	if s == nil {
		s = new(Scan)
	}

	s.monitor = monitor
	return s
}

// Logger sets the logger for this operation.
func (s *Scan) Logger(l *logger.Logger) *Scan {
	if s == nil {
		s = new(Scan)
	}

	s.logger = l
	return s
}

// Registry sets the registry used to decode keys and values.
func (s *Scan) Registry(r *bincodec.Registry) *Scan {
	if s == nil {
		s = new(Scan)
	}

	s.registry = r
	return s
}

// Connection sets the connection to run this operation on.
func (s *Scan) Connection(conn driver.Connection) *Scan {
	if s == nil {
		s = new(Scan)
	}

	s.connection = conn
	return s
}
