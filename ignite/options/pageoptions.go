// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package options

import (
	"github.com/ikmak/ignite-go-driver/event"
	"github.com/ikmak/ignite-go-driver/internal/logger"
	"github.com/ikmak/ignite-go-driver/x/binary/bincodec"
)

// PageOptions represents options that can be used to configure page fetches
// and resource closes.
type PageOptions struct {
	RequestID *int64              // The correlation id of the request. By default one is generated.
	Registry  *bincodec.Registry  // The registry used to decode values. The default is bincodec.DefaultRegistry.
	Monitor   *event.QueryMonitor // The monitor notified of the request.
	Logger    *logger.Logger      // The logger of the request. By default the connection's logger is used.
}

// Page creates a new PageOptions instance.
func Page() *PageOptions {
	return &PageOptions{}
}

// SetRequestID sets the correlation id of the request.
func (po *PageOptions) SetRequestID(id int64) *PageOptions {
	po.RequestID = &id
	return po
}

// SetRegistry sets the registry used to decode values.
func (po *PageOptions) SetRegistry(r *bincodec.Registry) *PageOptions {
	po.Registry = r
	return po
}

// SetMonitor sets the monitor notified of the request.
func (po *PageOptions) SetMonitor(m *event.QueryMonitor) *PageOptions {
	po.Monitor = m
	return po
}

// SetLogger sets the logger of the request.
func (po *PageOptions) SetLogger(l *logger.Logger) *PageOptions {
	po.Logger = l
	return po
}

// MergePageOptions combines the given PageOptions instances into a single
// PageOptions in a last-one-wins fashion.
func MergePageOptions(opts ...*PageOptions) *PageOptions {
	po := Page()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if opt.RequestID != nil {
			po.RequestID = opt.RequestID
		}
		if opt.Registry != nil {
			po.Registry = opt.Registry
		}
		if opt.Monitor != nil {
			po.Monitor = opt.Monitor
		}
		if opt.Logger != nil {
			po.Logger = opt.Logger
		}
	}

	return po
}
