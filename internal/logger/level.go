// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package logger

import (
	"strings"
)

// DiffToInfo is the number of levels in the driver that come before the
// "Info" level. This ensures that "Info" is the 0th level passed to the sink.
const DiffToInfo = 1

// Level is an enumeration representing the log severity levels supported by
// the driver. The order of the levels is important: a sink receives the level
// minus DiffToInfo, so Info arrives as 0 and Debug as 1.
type Level int

const (
	// LevelOff suppresses logging.
	LevelOff Level = iota

	// LevelInfo enables logging of informational messages. These logs are
	// high-level information about normal driver behavior. Example: a
	// connection being established or closed.
	LevelInfo

	// LevelDebug enables logging of debug messages. These logs can be
	// voluminous and are intended for detailed information that may be
	// helpful when debugging an application. Example: a query starting.
	LevelDebug
)

// LevelLiteral are the logging levels accepted in environment variables.
type LevelLiteral string

// These constants are the accepted level literals.
const (
	LevelLiteralOff       LevelLiteral = "off"
	LevelLiteralEmergency LevelLiteral = "emergency"
	LevelLiteralAlert     LevelLiteral = "alert"
	LevelLiteralCritical  LevelLiteral = "critical"
	LevelLiteralError     LevelLiteral = "error"
	LevelLiteralWarning   LevelLiteral = "warn"
	LevelLiteralNotice    LevelLiteral = "notice"
	LevelLiteralInfo      LevelLiteral = "info"
	LevelLiteralDebug     LevelLiteral = "debug"
	LevelLiteralTrace     LevelLiteral = "trace"
)

var allLevelLiterals = []LevelLiteral{
	LevelLiteralOff,
	LevelLiteralEmergency,
	LevelLiteralAlert,
	LevelLiteralCritical,
	LevelLiteralError,
	LevelLiteralWarning,
	LevelLiteralNotice,
	LevelLiteralInfo,
	LevelLiteralDebug,
	LevelLiteralTrace,
}

// Level returns the Level associated with the literal. Severities the driver
// does not distinguish collapse into Info; unknown literals turn logging off.
func (ll LevelLiteral) Level() Level {
	switch ll {
	case LevelLiteralEmergency, LevelLiteralAlert, LevelLiteralCritical,
		LevelLiteralError, LevelLiteralWarning, LevelLiteralNotice, LevelLiteralInfo:
		return LevelInfo
	case LevelLiteralDebug, LevelLiteralTrace:
		return LevelDebug
	default:
		return LevelOff
	}
}

// ParseLevel returns the Level for a case-insensitive literal. The default is
// LevelOff.
func ParseLevel(str string) Level {
	for _, ll := range allLevelLiterals {
		if strings.EqualFold(string(ll), str) {
			return ll.Level()
		}
	}
	return LevelOff
}
