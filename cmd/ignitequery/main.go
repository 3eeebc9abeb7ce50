// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Command ignitequery runs a scan, SQL or SQL fields query against an Ignite
// node and prints the result pages as JSON.
//
//	ignitequery scan --cache PersonCache --page-size 100
//	ignitequery sql --cache PersonCache --table Person --query "age > ?" --arg int:30
//	ignitequery fields --query "SELECT name FROM Person" --include-field-names --limit-pages 2
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ikmak/ignite-go-driver/conn"
)

type rootFlags struct {
	configPath string
	envFiles   []string
	override   Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer, dialOpts ...conn.Option) *cobra.Command {
	rf := &rootFlags{}
	root := &cobra.Command{
		Use:           "ignitequery",
		Short:         "Run paged queries against an Ignite node",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&rf.configPath, "config", "", "TOML config file")
	pf.StringSliceVar(&rf.envFiles, "env-file", nil, "env files to load instead of .env")
	pf.StringVar(&rf.override.Addr, "addr", "", "node address, host[:port] (default "+defaultAddr+")")
	pf.StringVar(&rf.override.Cache, "cache", "", "cache name")
	pf.Int32Var(&rf.override.CacheID, "cache-id", 0, "numeric cache id, used when no cache name is given")
	pf.Int32Var(&rf.override.PageSize, "page-size", 0, fmt.Sprintf("rows per page (default %d)", defaultPageSize))
	pf.IntVar(&rf.override.LimitPages, "limit-pages", 0, "stop after this many pages and release the cursor")
	pf.StringVar(&rf.override.ConnectTimeout, "connect-timeout", "", "connect and handshake timeout")
	pf.BoolVar(&rf.override.Compact, "compact", false, "print one line per page")
	pf.StringVar(&rf.override.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while the query runs")
	pf.StringVar(&rf.override.LogLevel, "log-level", "", "driver log level (info, debug)")

	s := streams{out: out, errOut: errOut}
	runWith := func(cmd *cobra.Command, req request) error {
		cfg, err := rf.config(cmd)
		if err != nil {
			return err
		}
		return run(cmd.Context(), cfg, req, s, dialOpts...)
	}

	root.AddCommand(newScanCmd(runWith), newSQLCmd(runWith), newFieldsCmd(runWith))
	return root
}

// config loads the configuration and applies the flags set on the command
// line over it.
func (rf *rootFlags) config(cmd *cobra.Command) (Config, error) {
	cfg, err := loadConfig(rf.configPath, rf.envFiles...)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	o := rf.override
	if flags.Changed("addr") {
		cfg.Addr = o.Addr
	}
	if flags.Changed("cache") {
		cfg.Cache = o.Cache
	}
	if flags.Changed("cache-id") {
		cfg.CacheID = o.CacheID
	}
	if flags.Changed("page-size") {
		cfg.PageSize = o.PageSize
	}
	if flags.Changed("limit-pages") {
		cfg.LimitPages = o.LimitPages
	}
	if flags.Changed("connect-timeout") {
		cfg.ConnectTimeout = o.ConnectTimeout
	}
	if flags.Changed("compact") {
		cfg.Compact = o.Compact
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = o.MetricsAddr
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.LogLevel
	}
	cfg.applyDefaults()
	return cfg, nil
}

type runFunc func(*cobra.Command, request) error

func parseArgs(raw []string) ([]interface{}, error) {
	args := make([]interface{}, 0, len(raw))
	for _, a := range raw {
		v, err := parseArg(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func newScanCmd(run runFunc) *cobra.Command {
	var partitions int32
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan every entry of a cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, request{kind: scanQuery, partitions: partitions})
		},
	}
	cmd.Flags().Int32Var(&partitions, "partitions", -1, "number of partitions to scan, negative for all")
	return cmd
}

func newSQLCmd(run runFunc) *cobra.Command {
	var (
		table, query string
		rawArgs      []string
	)
	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Run a SQL query returning whole entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			args, err := parseArgs(rawArgs)
			if err != nil {
				return err
			}
			return run(cmd, request{kind: sqlQuery, table: table, query: query, args: args})
		},
	}
	cmd.Flags().StringVar(&table, "table", "", "table name")
	cmd.Flags().StringVar(&query, "query", "", "SQL where clause")
	cmd.Flags().StringArrayVar(&rawArgs, "arg", nil, "query argument, optionally prefixed with a type (int:, long:, double:, bool:, ...)")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func newFieldsCmd(run runFunc) *cobra.Command {
	var (
		query, schema string
		rawArgs       []string
		includeNames  bool
		maxRows       int32
	)
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Run a SQL query returning projected columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			args, err := parseArgs(rawArgs)
			if err != nil {
				return err
			}
			return run(cmd, request{
				kind:              fieldsQuery,
				query:             query,
				schema:            schema,
				args:              args,
				includeFieldNames: includeNames,
				maxRows:           maxRows,
			})
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "SQL statement")
	cmd.Flags().StringVar(&schema, "schema", "", "SQL schema (server default PUBLIC)")
	cmd.Flags().StringArrayVar(&rawArgs, "arg", nil, "query argument, optionally prefixed with a type (int:, long:, double:, bool:, ...)")
	cmd.Flags().BoolVar(&includeNames, "include-field-names", false, "return the column names with the first page")
	cmd.Flags().Int32Var(&maxRows, "max-rows", -1, "maximum number of rows, negative for unbounded")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}
