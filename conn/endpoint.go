// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package conn

import (
	"net"
	"strings"
)

// DefaultPort is the port Ignite nodes accept thin clients on.
const DefaultPort = "10800"

// Endpoint represents the location of an Ignite node.
type Endpoint string

// Canonicalize lowercases the endpoint and adds the default port when none
// is given.
func (ep Endpoint) Canonicalize() Endpoint {
	s := strings.ToLower(strings.TrimSpace(string(ep)))
	_, _, err := net.SplitHostPort(s)
	if err != nil && strings.Contains(err.Error(), "missing port in address") {
		s = net.JoinHostPort(strings.Trim(s, "[]"), DefaultPort)
	}

	return Endpoint(s)
}

// String implements the fmt.Stringer interface.
func (ep Endpoint) String() string { return string(ep) }
