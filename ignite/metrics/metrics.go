// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package metrics exports query round trips as Prometheus metrics.
//
//	c := metrics.New(prometheus.DefaultRegisterer, "ignite")
//	first, err := ignite.OpenScan(ctx, conn, cacheID, 100, options.Scan().SetMonitor(c.Monitor()))
package metrics // import "github.com/ikmak/ignite-go-driver/ignite/metrics"

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ikmak/ignite-go-driver/event"
	"github.com/ikmak/ignite-go-driver/x/network/wiremessage"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeStatus  = "status"
	OutcomeFault   = "fault"
)

// Collector holds the query metrics of a client.
type Collector struct {
	queries  *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rows     *prometheus.CounterVec
	cursors  prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer, namespace string) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		queries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Total number of query round trips by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "query_status_errors_total",
				Help:      "Total number of non-zero response statuses by operation and status",
			},
			[]string{"operation", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Query round trip latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		rows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "query_rows_total",
				Help:      "Total number of rows received by operation",
			},
			[]string{"operation"},
		),
		cursors: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "open_cursors",
				Help:      "Number of server cursors opened by this client and not yet released",
			},
		),
	}
}

// Monitor returns a query monitor feeding the collector.
func (c *Collector) Monitor() *event.QueryMonitor {
	return &event.QueryMonitor{
		Succeeded: c.succeeded,
		Failed:    c.failed,
	}
}

func (c *Collector) succeeded(_ context.Context, evt *event.QuerySucceededEvent) {
	op := evt.OperationName
	c.queries.WithLabelValues(op, OutcomeSuccess).Inc()
	c.duration.WithLabelValues(op).Observe(evt.Duration.Seconds())
	c.rows.WithLabelValues(op).Add(float64(evt.Rows))

	switch wiremessage.OpCode(evt.OpCode) {
	case wiremessage.OpQueryScan, wiremessage.OpQuerySQL, wiremessage.OpQuerySQLFields:
		// the server releases a cursor together with its last page
		if evt.More {
			c.cursors.Inc()
		}
	case wiremessage.OpQueryScanCursorGetPage, wiremessage.OpQuerySQLCursorGetPage,
		wiremessage.OpQuerySQLFieldsCursorGetPage:
		if !evt.More {
			c.cursors.Dec()
		}
	case wiremessage.OpResourceClose:
		c.cursors.Dec()
	}
}

func (c *Collector) failed(_ context.Context, evt *event.QueryFailedEvent) {
	op := evt.OperationName
	c.duration.WithLabelValues(op).Observe(evt.Duration.Seconds())
	if evt.Status == 0 {
		c.queries.WithLabelValues(op, OutcomeFault).Inc()
		return
	}
	c.queries.WithLabelValues(op, OutcomeStatus).Inc()
	c.failures.WithLabelValues(op, strconv.Itoa(int(evt.Status))).Inc()
}
