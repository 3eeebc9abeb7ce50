// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package driver

// Request and response layouts of the query operations. The field order is
// the wire order.
var (
	ScanRequest = Schema{
		{"hash_code", FieldInt},
		{"flag", FieldByte},
		{"filter", FieldNull},
		{"page_size", FieldInt},
		{"partitions", FieldInt},
		{"local", FieldBool},
	}

	SQLRequest = Schema{
		{"hash_code", FieldInt},
		{"flag", FieldByte},
		{"table_name", FieldString},
		{"query_str", FieldString},
		{"query_args", FieldAnyDataArray},
		{"distributed_joins", FieldBool},
		{"local", FieldBool},
		{"replicated_only", FieldBool},
		{"page_size", FieldInt},
		{"timeout", FieldLong},
	}

	SQLFieldsRequest = Schema{
		{"hash_code", FieldInt},
		{"flag", FieldByte},
		{"schema", FieldString},
		{"page_size", FieldInt},
		{"max_rows", FieldInt},
		{"query_str", FieldString},
		{"query_args", FieldAnyDataArray},
		{"statement_type", FieldByte},
		{"distributed_joins", FieldBool},
		{"local", FieldBool},
		{"replicated_only", FieldBool},
		{"enforce_join_order", FieldBool},
		{"collocated", FieldBool},
		{"lazy", FieldBool},
		{"timeout", FieldLong},
		{"include_field_names", FieldBool},
	}

	// CursorRequest is the layout of every page fetch and of resource close.
	CursorRequest = Schema{
		{"cursor", FieldLong},
	}

	// KeyValueOpenResponse answers both scan and SQL queries.
	KeyValueOpenResponse = Schema{
		{"cursor", FieldLong},
		{"data", FieldMap},
		{"more", FieldBool},
	}

	KeyValuePageResponse = Schema{
		{"data", FieldMap},
		{"more", FieldBool},
	}
)

// Field projection responses depend on the request, so they are decoded in
// steps: the cursor, then either the names or the count, then the rows.
var (
	FieldsCursor = Schema{{"cursor", FieldLong}}
	FieldsNames  = Schema{{"fields", FieldStringArray}}
	FieldsCount  = Schema{{"field_count", FieldInt}}
	FieldsMore   = Schema{{"more", FieldBool}}
)

// Flag bits of query requests.
const (
	FlagKeepBinary int8 = 1
)
