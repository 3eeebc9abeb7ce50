// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/pretty"
	"golang.org/x/sync/errgroup"

	"github.com/ikmak/ignite-go-driver/conn"
	"github.com/ikmak/ignite-go-driver/event"
	"github.com/ikmak/ignite-go-driver/ignite"
	"github.com/ikmak/ignite-go-driver/ignite/metrics"
	"github.com/ikmak/ignite-go-driver/ignite/options"
	"github.com/ikmak/ignite-go-driver/internal/logger"
	"github.com/ikmak/ignite-go-driver/x/binary/bincore"
)

type queryKind int

const (
	scanQuery queryKind = iota
	sqlQuery
	fieldsQuery
)

// request describes the query to run.
type request struct {
	kind              queryKind
	table             string
	query             string
	schema            string
	args              []interface{}
	includeFieldNames bool
	maxRows           int32
	partitions        int32
}

type streams struct {
	out    io.Writer
	errOut io.Writer
}

// pageOutput is the JSON document printed for every page.
type pageOutput struct {
	Page   int         `json:"page"`
	Cursor int64       `json:"cursor"`
	More   bool        `json:"more"`
	Fields []string    `json:"fields,omitempty"`
	Rows   interface{} `json:"rows"`
}

type entryOutput struct {
	Key   interface{} `json:"key"`
	Value interface{} `json:"value"`
}

// latencies records the duration of every successful round trip.
type latencies struct {
	mu      sync.Mutex
	samples stats.Float64Data
}

func (l *latencies) monitor() *event.QueryMonitor {
	return &event.QueryMonitor{
		Succeeded: func(_ context.Context, evt *event.QuerySucceededEvent) {
			l.mu.Lock()
			l.samples = append(l.samples, float64(evt.Duration)/float64(time.Millisecond))
			l.mu.Unlock()
		},
	}
}

func (l *latencies) summary() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.samples) == 0 {
		return "no round trips", nil
	}
	var parts []string
	for _, perc := range []float64{50, 90, 99} {
		p, err := stats.Percentile(l.samples, perc)
		if err != nil {
			return "", errors.Wrapf(err, "computing p%.0f", perc)
		}
		parts = append(parts, fmt.Sprintf("p%.0f=%.3fms", perc, p))
	}
	maxv, err := stats.Max(l.samples)
	if err != nil {
		return "", errors.Wrap(err, "computing max")
	}
	parts = append(parts, fmt.Sprintf("max=%.3fms", maxv))
	return fmt.Sprintf("%d round trips: %s", len(l.samples), strings.Join(parts, " ")), nil
}

func newLogger(cfg Config, w io.Writer) *logger.Logger {
	if cfg.LogLevel == "" {
		return nil
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.DebugLevel)
	return logger.New(logger.NewLogrusSink(l), map[logger.Component]logger.Level{
		logger.ComponentAll: logger.ParseLevel(cfg.LogLevel),
	})
}

// run connects to the configured node, runs req and prints every page to
// s.out. The cursor is released when run stops before the last page.
func run(ctx context.Context, cfg Config, req request, s streams, dialOpts ...conn.Option) error {
	timeout, err := cfg.connectTimeout()
	if err != nil {
		return err
	}
	if cfg.PageSize <= 0 {
		return ignite.ErrInvalidPageSize
	}

	lg := newLogger(cfg, s.errOut)
	reg := prometheus.NewRegistry()
	collector := metrics.New(reg, "ignitequery")
	lat := &latencies{}
	monitor := event.MultiQueryMonitor(collector.Monitor(), lat.monitor())

	opts := append([]conn.Option{conn.WithConnectTimeout(timeout), conn.WithLogger(lg)}, dialOpts...)
	c, err := conn.Dial(ctx, conn.Endpoint(cfg.Addr), opts...)
	if err != nil {
		return errors.Wrapf(err, "connecting to %s", cfg.Addr)
	}
	defer c.Close()

	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return errors.Wrap(err, "metrics endpoint")
			}
			return nil
		})
		g.Go(func() error {
			select {
			case <-done:
			case <-gctx.Done():
			}
			return srv.Shutdown(context.Background())
		})
	}
	g.Go(func() error {
		defer close(done)
		return stream(gctx, c, cfg, req, monitor, lg, s.out)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	summary, err := lat.summary()
	if err != nil {
		return err
	}
	fmt.Fprintln(s.errOut, summary)
	return nil
}

func open(ctx context.Context, c *conn.Connection, cfg Config, req request,
	monitor *event.QueryMonitor, lg *logger.Logger) (*ignite.Cursor, error) {

	switch req.kind {
	case sqlQuery:
		return ignite.Query(ctx, c, cfg.cacheID(), req.table, req.query, cfg.PageSize,
			options.SQL().SetArgs(req.args...).SetMonitor(monitor).SetLogger(lg))
	case fieldsQuery:
		so := options.SQLFields().
			SetArgs(req.args...).
			SetIncludeFieldNames(req.includeFieldNames).
			SetMaxRows(req.maxRows).
			SetMonitor(monitor).
			SetLogger(lg)
		if req.schema != "" {
			so.SetSchema(req.schema)
		}
		return ignite.QueryFields(ctx, c, cfg.cacheID(), req.query, cfg.PageSize, so)
	default:
		return ignite.Scan(ctx, c, cfg.cacheID(), cfg.PageSize,
			options.Scan().SetPartitions(req.partitions).SetMonitor(monitor).SetLogger(lg))
	}
}

func stream(ctx context.Context, c *conn.Connection, cfg Config, req request,
	monitor *event.QueryMonitor, lg *logger.Logger, out io.Writer) (err error) {

	cur, err := open(ctx, c, cfg, req, monitor, lg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultCloseTimeout)
		defer cancel()
		if cerr := cur.Close(closeCtx); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "releasing cursor")
		}
	}()

	for page := 1; ; page++ {
		if err := printPage(out, cur, req.kind, page, cfg.Compact); err != nil {
			return err
		}
		if !cur.More() || (cfg.LimitPages > 0 && page >= cfg.LimitPages) {
			return nil
		}
		// stop between pages so the cursor can still be released
		if ctx.Err() != nil {
			return nil
		}
		if err := cur.NextPage(ctx); err != nil {
			return err
		}
	}
}

func printPage(w io.Writer, cur *ignite.Cursor, kind queryKind, page int, compact bool) error {
	po := pageOutput{Page: page, Cursor: cur.ID(), More: cur.More()}
	if kind == fieldsQuery {
		po.Fields = cur.FieldNames()
		rows := cur.PageRows()
		if rows == nil {
			rows = [][]interface{}{}
		}
		po.Rows = rows
	} else {
		entries := make([]entryOutput, 0, len(cur.PageEntries()))
		for _, e := range cur.PageEntries() {
			entries = append(entries, entryOutput{Key: e.Key, Value: e.Value})
		}
		po.Rows = entries
	}

	data, err := json.Marshal(po)
	if err != nil {
		return errors.Wrapf(err, "encoding page %d", page)
	}
	if compact {
		data = append(pretty.Ugly(data), '\n')
	} else {
		data = pretty.Pretty(data)
	}
	_, err = w.Write(data)
	return err
}

// parseArg converts a command line query argument. An optional type prefix
// selects the Ignite type: int, long, short, byte, double, bool, string or
// null. Unprefixed arguments are strings.
func parseArg(s string) (interface{}, error) {
	typ, val, ok := strings.Cut(s, ":")
	if !ok {
		return s, nil
	}
	switch typ {
	case "int":
		n, err := strconv.ParseInt(val, 10, 32)
		return int32(n), errors.Wrapf(err, "invalid int argument %q", val)
	case "long":
		n, err := strconv.ParseInt(val, 10, 64)
		return n, errors.Wrapf(err, "invalid long argument %q", val)
	case "short":
		n, err := strconv.ParseInt(val, 10, 16)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid short argument %q", val)
		}
		return bincore.Value{Type: bincore.TypeShort, Data: bincore.AppendShort(nil, int16(n))}, nil
	case "byte":
		n, err := strconv.ParseInt(val, 10, 8)
		return int8(n), errors.Wrapf(err, "invalid byte argument %q", val)
	case "double":
		f, err := strconv.ParseFloat(val, 64)
		return f, errors.Wrapf(err, "invalid double argument %q", val)
	case "bool":
		b, err := strconv.ParseBool(val)
		return b, errors.Wrapf(err, "invalid bool argument %q", val)
	case "string":
		return val, nil
	case "null":
		return nil, nil
	default:
		return s, nil
	}
}
