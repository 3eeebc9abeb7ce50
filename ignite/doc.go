// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package ignite runs paged queries against an Ignite node over the thin
// client protocol.
//
// A query is opened with OpenScan, OpenSQL or OpenSQLFields, which return the
// first page together with a server side cursor handle. Further pages are
// fetched with the matching Fetch function while the last page reports More.
// The server releases a cursor once its last page was sent; a cursor left
// before that must be released with CloseResource.
//
// The Cursor type wraps these calls:
//
//	c, err := conn.Dial(ctx, "localhost")
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	cur, err := ignite.Scan(ctx, c, driver.CacheID("PersonCache"), 100)
//	if err != nil {
//		return err
//	}
//	defer cur.Close(ctx)
//
//	for cur.Next(ctx) {
//		entry := cur.Entry()
//		// do something with entry.Key and entry.Value...
//	}
//	return cur.Err()
//
// A cursor handle belongs to the connection and the query kind it was opened
// with. Passing a handle to the fetch function of another kind is a caller
// error; the server answers it with a status error.
package ignite
