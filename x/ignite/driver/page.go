// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package driver

import (
	"strconv"

	"github.com/ikmak/ignite-go-driver/x/binary/bincodec"
	"github.com/ikmak/ignite-go-driver/x/binary/bincore"
)

// KeyValuePage is a page of a scan or SQL query. Rows keep the order the
// server sent them in.
type KeyValuePage struct {
	// Cursor is only set on the page that opened the cursor.
	Cursor *int64
	Rows   []bincodec.Pair
	More   bool
}

// FieldsPage is a page of a SQL fields query. Each row holds FieldCount
// values in column order.
type FieldsPage struct {
	// Cursor is only set on the page that opened the cursor.
	Cursor *int64
	// FieldNames is only set on the opening page when names were requested.
	FieldNames []string
	FieldCount int
	Rows       [][]interface{}
	More       bool
}

// ReshapeKeyValue turns the alternating keys and values of a decoded map
// field into ordered pairs.
func ReshapeKeyValue(vals []bincore.Value, r *bincodec.Registry) ([]bincodec.Pair, error) {
	return r.DecodePairs(vals)
}

// ReshapeFields flattens rows keyed field_0 to field_{fieldCount-1} into
// positional value slices.
func ReshapeFields(rows []map[string]interface{}, fieldCount int) [][]interface{} {
	out := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		vals := make([]interface{}, fieldCount)
		for i := 0; i < fieldCount; i++ {
			vals[i] = row["field_"+strconv.Itoa(i)]
		}
		out = append(out, vals)
	}
	return out
}
