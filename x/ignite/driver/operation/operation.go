// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package operation contains the builder-style query operations of the thin
// client protocol. Each operation is configured through chained setters, run
// with Execute and inspected with Result.
package operation

import (
	"github.com/pkg/errors"

	"github.com/ikmak/ignite-go-driver/x/binary/bincodec"
	"github.com/ikmak/ignite-go-driver/x/binary/bincore"
	"github.com/ikmak/ignite-go-driver/x/ignite/driver"
)

// Operation names reported to monitors and logs.
const (
	ScanOp                   = "scan"
	ScanCursorGetPageOp      = "scanCursorGetPage"
	SQLOp                    = "sql"
	SQLCursorGetPageOp       = "sqlCursorGetPage"
	SQLFieldsOp              = "sqlFields"
	SQLFieldsCursorGetPageOp = "sqlFieldsCursorGetPage"
	ResourceCloseOp          = "resourceClose"
)

func registryOrDefault(r *bincodec.Registry) *bincodec.Registry {
	if r == nil {
		return bincodec.DefaultRegistry
	}
	return r
}

func flag(keepBinary *bool) int8 {
	if keepBinary != nil && *keepBinary {
		return driver.FlagKeepBinary
	}
	return 0
}

func boolValue(b *bool) bool {
	return b != nil && *b
}

// decodeKeyValuePage decodes a scan or SQL page. When s starts with a cursor
// field the cursor handle is set on the result.
func decodeKeyValuePage(payload []byte, s driver.Schema, r *bincodec.Registry) (driver.KeyValuePage, driver.ResponseInfo, []byte, error) {
	fields, rem, err := driver.DecodeFields(payload, s, r)
	if err != nil {
		return driver.KeyValuePage{}, driver.ResponseInfo{}, payload, err
	}

	var page driver.KeyValuePage
	if c, ok := fields["cursor"].(int64); ok {
		page.Cursor = &c
	}
	page.More, _ = fields["more"].(bool)
	raw, _ := fields["data"].([]bincore.Value)
	page.Rows, err = driver.ReshapeKeyValue(raw, r)
	if err != nil {
		return driver.KeyValuePage{}, driver.ResponseInfo{}, payload, errors.Wrap(err, "reshaping key-value page")
	}
	return page, driver.ResponseInfo{Cursor: page.Cursor, Rows: len(page.Rows), More: page.More}, rem, nil
}

// decodeFieldsRows decodes the rows and the more flag that end every field
// projection page.
func decodeFieldsRows(src []byte, fieldCount int, r *bincodec.Registry) ([][]interface{}, bool, []byte, error) {
	rows, rem, err := driver.DecodeRows(src, fieldCount, r)
	if err != nil {
		return nil, false, src, err
	}
	tail, rem, err := driver.DecodeFields(rem, driver.FieldsMore, r)
	if err != nil {
		return nil, false, src, err
	}
	more, _ := tail["more"].(bool)
	return driver.ReshapeFields(rows, fieldCount), more, rem, nil
}
