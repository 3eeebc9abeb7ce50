// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package conn

import (
	"context"
	"net"
)

// NetDialer creates a net.Conn.
type NetDialer func(ctx context.Context, network, address string) (net.Conn, error)

func dialNet(ctx context.Context, network, address string) (net.Conn, error) {
	dialer := net.Dialer{}
	nc, err := dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}

	if tcpConn, ok := nc.(*net.TCPConn); ok {
		_ = tcpConn.SetKeepAlive(true)
		// requests are written in one call, so batching only adds latency
		_ = tcpConn.SetNoDelay(true)
	}

	return nc, nil
}
