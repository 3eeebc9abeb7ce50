// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package options

import (
	"time"

	"github.com/ikmak/ignite-go-driver/event"
	"github.com/ikmak/ignite-go-driver/internal/logger"
	"github.com/ikmak/ignite-go-driver/x/binary/bincodec"
)

// SQLOptions represents options that can be used to configure a SQL query.
type SQLOptions struct {
	Args             []interface{}       // The positional query arguments. The default is none.
	DistributedJoins *bool               // If true, joins may span nodes. The default is false.
	Local            *bool               // If true, only the connected node is queried. The default is false.
	ReplicatedOnly   *bool               // If true, the query touches replicated caches only. The default is false.
	Timeout          *time.Duration      // The server side timeout. The default is 0, which means none.
	KeepBinary       *bool               // If true, complex objects are returned undecoded. The default is false.
	RequestID        *int64              // The correlation id of the request. By default one is generated.
	Registry         *bincodec.Registry  // The registry used to decode values. The default is bincodec.DefaultRegistry.
	Monitor          *event.QueryMonitor // The monitor notified of the request.
	Logger           *logger.Logger      // The logger of the request. By default the connection's logger is used.
}

// SQL creates a new SQLOptions instance.
func SQL() *SQLOptions {
	return &SQLOptions{}
}

// SetArgs sets the positional query arguments. A bincore.Value argument is
// sent as is, which allows choosing the wire type.
func (so *SQLOptions) SetArgs(args ...interface{}) *SQLOptions {
	so.Args = args
	return so
}

// SetDistributedJoins specifies whether joins may span nodes.
func (so *SQLOptions) SetDistributedJoins(b bool) *SQLOptions {
	so.DistributedJoins = &b
	return so
}

// SetLocal specifies whether only the connected node is queried.
func (so *SQLOptions) SetLocal(b bool) *SQLOptions {
	so.Local = &b
	return so
}

// SetReplicatedOnly specifies whether the query touches replicated caches only.
func (so *SQLOptions) SetReplicatedOnly(b bool) *SQLOptions {
	so.ReplicatedOnly = &b
	return so
}

// SetTimeout sets the server side timeout, sent in milliseconds.
func (so *SQLOptions) SetTimeout(d time.Duration) *SQLOptions {
	so.Timeout = &d
	return so
}

// SetKeepBinary specifies whether complex objects are returned undecoded.
func (so *SQLOptions) SetKeepBinary(b bool) *SQLOptions {
	so.KeepBinary = &b
	return so
}

// SetRequestID sets the correlation id of the request.
func (so *SQLOptions) SetRequestID(id int64) *SQLOptions {
	so.RequestID = &id
	return so
}

// SetRegistry sets the registry used to decode values.
func (so *SQLOptions) SetRegistry(r *bincodec.Registry) *SQLOptions {
	so.Registry = r
	return so
}

// SetMonitor sets the monitor notified of the request.
func (so *SQLOptions) SetMonitor(m *event.QueryMonitor) *SQLOptions {
	so.Monitor = m
	return so
}

// SetLogger sets the logger of the request.
func (so *SQLOptions) SetLogger(l *logger.Logger) *SQLOptions {
	so.Logger = l
	return so
}

// MergeSQLOptions combines the given SQLOptions instances into a single
// SQLOptions in a last-one-wins fashion.
func MergeSQLOptions(opts ...*SQLOptions) *SQLOptions {
	so := SQL()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if opt.Args != nil {
			so.Args = opt.Args
		}
		if opt.DistributedJoins != nil {
			so.DistributedJoins = opt.DistributedJoins
		}
		if opt.Local != nil {
			so.Local = opt.Local
		}
		if opt.ReplicatedOnly != nil {
			so.ReplicatedOnly = opt.ReplicatedOnly
		}
		if opt.Timeout != nil {
			so.Timeout = opt.Timeout
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
