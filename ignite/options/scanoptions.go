// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package options defines the optional settings of the query functions in
// package ignite. Every field is a pointer: nil means the documented default.
package options

import (
	"github.com/ikmak/ignite-go-driver/event"
	"github.com/ikmak/ignite-go-driver/internal/logger"
	"github.com/ikmak/ignite-go-driver/x/binary/bincodec"
)

// ScanOptions represents options that can be used to configure a scan query.
type ScanOptions struct {
	Partitions *int32              // The partition to scan. The default is -1, which scans all partitions.
	Local      *bool               // If true, only entries held by the connected node are scanned. The default is false.
	KeepBinary *bool               // If true, complex objects are returned undecoded. The default is false.
	RequestID  *int64              // The correlation id of the request. By default one is generated.
	Registry   *bincodec.Registry  // The registry used to decode values. The default is bincodec.DefaultRegistry.
	Monitor    *event.QueryMonitor // The monitor notified of the request.
	Logger     *logger.Logger      // The logger of the request. By default the connection's logger is used.
}

// Scan creates a new ScanOptions instance.
func Scan() *ScanOptions {
	return &ScanOptions{}
}

// SetPartitions restricts the scan to one partition.
func (so *ScanOptions) SetPartitions(p int32) *ScanOptions {
	so.Partitions = &p
	return so
}

// SetLocal specifies whether only the connected node is scanned.
func (so *ScanOptions) SetLocal(b bool) *ScanOptions {
	so.Local = &b
	return so
}

// SetKeepBinary specifies whether complex objects are returned undecoded.
func (so *ScanOptions) SetKeepBinary(b bool) *ScanOptions {
	so.KeepBinary = &b
	return so
}

// SetRequestID sets the correlation id of the request.
func (so *ScanOptions) SetRequestID(id int64) *ScanOptions {
	so.RequestID = &id
	return so
}

// SetRegistry sets the registry used to decode values.
func (so *ScanOptions) SetRegistry(r *bincodec.Registry) *ScanOptions {
	so.Registry = r
	return so
}

// SetMonitor sets the monitor notified of the request.
func (so *ScanOptions) SetMonitor(m *event.QueryMonitor) *ScanOptions {
	so.Monitor = m
	return so
}

// SetLogger sets the logger of the request.
func (so *ScanOptions) SetLogger(l *logger.Logger) *ScanOptions {
	so.Logger = l
	return so
}

// MergeScanOptions combines the given ScanOptions instances into a single
// ScanOptions in a last-one-wins fashion.
func MergeScanOptions(opts ...*ScanOptions) *ScanOptions {
	so := Scan()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if opt.Partitions != nil {
			so.Partitions = opt.Partitions
		}
		if opt.Local != nil {
			so.Local = opt.Local
		}
		if opt.KeepBinary != nil {
			so.KeepBinary = opt.KeepBinary
		}
		if opt.RequestID != nil {
			so.RequestID = opt.RequestID
		}
		if opt.Registry != nil {
			so.Registry = opt.Registry
		}
		if opt.Monitor != nil {
			so.Monitor = opt.Monitor
		}
		if opt.Logger != nil {
			so.Logger = opt.Logger
		}
	}

	return so
}
