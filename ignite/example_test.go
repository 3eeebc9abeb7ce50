// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package ignite_test

import (
	"context"
	"fmt"
	"log"

	"github.com/ikmak/ignite-go-driver/ignite"
	"github.com/ikmak/ignite-go-driver/ignite/options"
	"github.com/ikmak/ignite-go-driver/x/ignite/driver"
	"github.com/ikmak/ignite-go-driver/x/ignite/driver/drivertest"
)

func ExampleQueryFields() {
	srv := &drivertest.Server{
		CacheID:    driver.CacheID("SQL_PUBLIC_PERSON"),
		FieldNames: []string{"NAME", "AGE"},
		Rows:       [][]interface{}{{"Alice", int32(31)}, {"Bob", int32(27)}, {"Carol", int32(45)}},
	}
	ctx := context.Background()

	cur, err := ignite.QueryFields(ctx, srv.Conn(), srv.CacheID, "SELECT name, age FROM Person", 2,
		options.SQLFields().SetIncludeFieldNames(true))
	if err != nil {
		log.Fatal(err)
	}
	defer cur.Close(ctx)

	fmt.Println(cur.FieldNames())
	for cur.Next(ctx) {
		fmt.Println(cur.Row()...)
	}
	if err := cur.Err(); err != nil {
		log.Fatal(err)
	}
	// Output:
	// [NAME AGE]
	// Alice 31
	// Bob 27
	// Carol 45
}

func ExampleOpenScan() {
	srv := &drivertest.Server{CacheID: driver.CacheID("PersonCache")}
	ctx := context.Background()
	conn := srv.Conn()

	page, err := ignite.OpenScan(ctx, conn, srv.CacheID, 10)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(len(page.Rows), page.More)

	// the server released the cursor with its last page
	err = ignite.CloseResource(ctx, conn, *page.Cursor)
	fmt.Println(driver.StatusOf(err) == driver.StatusResourceDoesNotExist)
	// Output:
	// 0 false
	// true
}
