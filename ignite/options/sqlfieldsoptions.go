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

// StatementType restricts the kind of statement a SQL fields query accepts.
type StatementType int8

// These constants are the statement types understood by the server.
const (
	StatementAny StatementType = iota
	StatementSelect
	StatementUpdate
)

// String implements the fmt.Stringer interface.
func (st StatementType) String() string {
	switch st {
	case StatementAny:
		return "any"
	case StatementSelect:
		return "select"
	case StatementUpdate:
		return "update"
	}
	return "unknown"
}

// ParseStatementType parses the names returned by StatementType.String.
func ParseStatementType(s string) (StatementType, bool) {
	for _, st := range []StatementType{StatementAny, StatementSelect, StatementUpdate} {
		if st.String() == s {
			return st, true
		}
	}
	return StatementAny, false
}

// SQLFieldsOptions represents options that can be used to configure a SQL
// fields query.
type SQLFieldsOptions struct {
	Schema            *string             // The SQL schema. The default is nil, which means PUBLIC.
	MaxRows           *int32              // The maximum number of rows returned. The default is -1, which means no limit.
	Args              []interface{}       // The positional query arguments. The default is none.
	StatementType     *StatementType      // The kind of statement accepted. The default is StatementAny.
	DistributedJoins  *bool               // If true, joins may span nodes. The default is false.
	Local             *bool               // If true, only the connected node is queried. The default is false.
	ReplicatedOnly    *bool               // If true, the query touches replicated caches only. The default is false.
	EnforceJoinOrder  *bool               // If true, joins run in the order written. The default is false.
	Collocated        *bool               // If true, the query is collocated by its grouping key. The default is false.
	Lazy              *bool               // If true, the result set is produced lazily. The default is false.
	Timeout           *time.Duration      // The server side timeout. The default is 0, which means none.
	IncludeFieldNames *bool               // If true, the first page carries the column names. The default is false.
	KeepBinary        *bool               // If true, complex objects are returned undecoded. The default is false.
	RequestID         *int64              // The correlation id of the request. By default one is generated.
	Registry          *bincodec.Registry  // The registry used to decode values. The default is bincodec.DefaultRegistry.
	Monitor           *event.QueryMonitor // The monitor notified of the request.
	Logger            *logger.Logger      // The logger of the request. By default the connection's logger is used.
}

// SQLFields creates a new SQLFieldsOptions instance.
func SQLFields() *SQLFieldsOptions {
	return &SQLFieldsOptions{}
}

// SetSchema sets the SQL schema.
func (so *SQLFieldsOptions) SetSchema(s string) *SQLFieldsOptions {
	so.Schema = &s
	return so
}

// SetMaxRows limits the number of rows returned.
func (so *SQLFieldsOptions) SetMaxRows(n int32) *SQLFieldsOptions {
	so.MaxRows = &n
	return so
}

// SetArgs sets the positional query arguments. A bincore.Value argument is
// sent as is, which allows choosing the wire type.
func (so *SQLFieldsOptions) SetArgs(args ...interface{}) *SQLFieldsOptions {
	so.Args = args
	return so
}

// SetStatementType restricts the kind of statement accepted.
func (so *SQLFieldsOptions) SetStatementType(st StatementType) *SQLFieldsOptions {
	so.StatementType = &st
	return so
}

// SetDistributedJoins specifies whether joins may span nodes.
func (so *SQLFieldsOptions) SetDistributedJoins(b bool) *SQLFieldsOptions {
	so.DistributedJoins = &b
	return so
}

// SetLocal specifies whether only the connected node is queried.
func (so *SQLFieldsOptions) SetLocal(b bool) *SQLFieldsOptions {
	so.Local = &b
	return so
}

// SetReplicatedOnly specifies whether the query touches replicated caches only.
func (so *SQLFieldsOptions) SetReplicatedOnly(b bool) *SQLFieldsOptions {
	so.ReplicatedOnly = &b
	return so
}

// SetEnforceJoinOrder specifies whether joins run in the order written.
func (so *SQLFieldsOptions) SetEnforceJoinOrder(b bool) *SQLFieldsOptions {
	so.EnforceJoinOrder = &b
	return so
}

// SetCollocated specifies whether the query is collocated.
func (so *SQLFieldsOptions) SetCollocated(b bool) *SQLFieldsOptions {
	so.Collocated = &b
	return so
}

// SetLazy specifies whether the result set is produced lazily.
func (so *SQLFieldsOptions) SetLazy(b bool) *SQLFieldsOptions {
	so.Lazy = &b
	return so
}

// SetTimeout sets the server side timeout, sent in milliseconds.
func (so *SQLFieldsOptions) SetTimeout(d time.Duration) *SQLFieldsOptions {
	so.Timeout = &d
	return so
}

// SetIncludeFieldNames specifies whether the first page carries the column names.
func (so *SQLFieldsOptions) SetIncludeFieldNames(b bool) *SQLFieldsOptions {
	so.IncludeFieldNames = &b
	return so
}

// SetKeepBinary specifies whether complex objects are returned undecoded.
func (so *SQLFieldsOptions) SetKeepBinary(b bool) *SQLFieldsOptions {
	so.KeepBinary = &b
	return so
}

// SetRequestID sets the correlation id of the request.
func (so *SQLFieldsOptions) SetRequestID(id int64) *SQLFieldsOptions {
	so.RequestID = &id
	return so
}

// SetRegistry sets the registry used to decode values.
func (so *SQLFieldsOptions) SetRegistry(r *bincodec.Registry) *SQLFieldsOptions {
	so.Registry = r
	return so
}

// SetMonitor sets the monitor notified of the request.
func (so *SQLFieldsOptions) SetMonitor(m *event.QueryMonitor) *SQLFieldsOptions {
	so.Monitor = m
	return so
}

// SetLogger sets the logger of the request.
func (so *SQLFieldsOptions) SetLogger(l *logger.Logger) *SQLFieldsOptions {
	so.Logger = l
	return so
}

// MergeSQLFieldsOptions combines the given SQLFieldsOptions instances into a
// single SQLFieldsOptions in a last-one-wins fashion.
func MergeSQLFieldsOptions(opts ...*SQLFieldsOptions) *SQLFieldsOptions {
	so := SQLFields()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if opt.Schema != nil {
			so.Schema = opt.Schema
		}
		if opt.MaxRows != nil {
			so.MaxRows = opt.MaxRows
		}
		if opt.Args != nil {
			so.Args = opt.Args
		}
		if opt.StatementType != nil {
			so.StatementType = opt.StatementType
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
		if opt.EnforceJoinOrder != nil {
			so.EnforceJoinOrder = opt.EnforceJoinOrder
		}
		if opt.Collocated != nil {
			so.Collocated = opt.Collocated
		}
		if opt.Lazy != nil {
			so.Lazy = opt.Lazy
		}
		if opt.Timeout != nil {
			so.Timeout = opt.Timeout
		}
		if opt.IncludeFieldNames != nil {
			so.IncludeFieldNames = opt.IncludeFieldNames
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
