// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package logger

import (
	"os"
)

// Keys shared by the driver's log messages.
const (
	KeyConnectionID = "driverConnectionId"
	KeyCursorID     = "cursorId"
	KeyDurationMS   = "durationMS"
	KeyError        = "error"
	KeyFailure      = "failure"
	KeyMessage      = "message"
	KeyOpCode       = "opCode"
	KeyOperation    = "operation"
	KeyRequestID    = "requestId"
	KeyServerHost   = "serverHost"
	KeyServerPort   = "serverPort"
	KeyStatus       = "status"
)

// Messages logged by the driver.
const (
	QueryStarted      = "Query started"
	QuerySucceeded    = "Query succeeded"
	QueryFailed       = "Query failed"
	ConnectionCreated = "Connection created"
	ConnectionReady   = "Connection ready"
	ConnectionClosed  = "Connection closed"
	ConnectionFaulted = "Connection faulted"
	HandshakeRejected = "Handshake rejected"
)

// KeyValues is a list of alternating keys and values.
type KeyValues []interface{}

// Add appends a key-value pair.
func (kvs *KeyValues) Add(key string, value interface{}) {
	*kvs = append(*kvs, key, value)
}

// Component is an enumeration representing the "components" which can be
// logged against. A Level can be configured on a per-component basis.
type Component int

const (
	// ComponentAll enables logging for all components.
	ComponentAll Component = iota

	// ComponentQuery enables query round-trip logging.
	ComponentQuery

	// ComponentConnection enables connection services logging.
	ComponentConnection
)

const (
	envVarAll        = "IGNITE_LOG_ALL"
	envVarQuery      = "IGNITE_LOG_QUERY"
	envVarConnection = "IGNITE_LOG_CONNECTION"
)

var componentEnvVars = map[Component]string{
	ComponentQuery:      envVarQuery,
	ComponentConnection: envVarConnection,
}

// String implements the fmt.Stringer interface.
func (c Component) String() string {
	switch c {
	case ComponentAll:
		return "all"
	case ComponentQuery:
		return "query"
	case ComponentConnection:
		return "connection"
	default:
		return "unknown"
	}
}

// getEnvComponentLevels returns the component levels configured in the
// environment. IGNITE_LOG_ALL applies to every component and takes precedence.
func getEnvComponentLevels() map[Component]Level {
	levels := make(map[Component]Level)

	if all := ParseLevel(os.Getenv(envVarAll)); all != LevelOff {
		for c := range componentEnvVars {
			levels[c] = all
		}
		return levels
	}

	for c, env := range componentEnvVars {
		if level := ParseLevel(os.Getenv(env)); level != LevelOff {
			levels[c] = level
		}
	}
	return levels
}
