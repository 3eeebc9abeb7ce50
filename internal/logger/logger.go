// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package logger provides the driver's component based, leveled logger.
package logger

import (
	"github.com/sirupsen/logrus"
)

// LogSink is an interface that can be implemented to provide a custom sink
// for the driver's logs. The level passed to Info starts at 0 for Info.
type LogSink interface {
	Info(level int, message string, keysAndValues ...interface{})
	Error(err error, message string, keysAndValues ...interface{})
}

// Logger represents the configuration for the internal logger.
type Logger struct {
	ComponentLevels map[Component]Level
	Sink            LogSink
}

// New constructs a new logger with the given sink. If the sink is nil, a
// logrus sink writing to the standard logrus logger is used.
//
// The componentLevels parameter is merged over the levels found in the
// environment, so explicit configuration wins.
func New(sink LogSink, componentLevels map[Component]Level) *Logger {
	levels := getEnvComponentLevels()
	for c, l := range componentLevels {
		if c == ComponentAll {
			for comp := range componentEnvVars {
				levels[comp] = l
			}
			continue
		}
		levels[c] = l
	}

	if sink == nil {
		sink = NewLogrusSink(logrus.StandardLogger())
	}

	return &Logger{
		ComponentLevels: levels,
		Sink:            sink,
	}
}

// LevelComponentEnabled reports whether the given level is enabled for the
// given component. A nil logger has everything disabled.
func (logger *Logger) LevelComponentEnabled(level Level, component Component) bool {
	if logger == nil || logger.Sink == nil {
		return false
	}
	return logger.ComponentLevels[component] >= level
}

// Print logs msg with the key-value pairs if the level is enabled for the
// component.
func (logger *Logger) Print(level Level, component Component, msg string, keysAndValues ...interface{}) {
	if !logger.LevelComponentEnabled(level, component) {
		return
	}
	logger.Sink.Info(int(level)-DiffToInfo, msg, keysAndValues...)
}

// Error logs err with the key-value pairs. Errors are emitted whenever the
// component is enabled at any level.
func (logger *Logger) Error(err error, component Component, msg string, keysAndValues ...interface{}) {
	if !logger.LevelComponentEnabled(LevelInfo, component) {
		return
	}
	logger.Sink.Error(err, msg, keysAndValues...)
}

// LogrusSink adapts a logrus logger to the LogSink interface. Key-value pairs
// become logrus fields.
type LogrusSink struct {
	log logrus.FieldLogger
}

var _ LogSink = (*LogrusSink)(nil)

// NewLogrusSink creates a sink that writes to l.
func NewLogrusSink(l logrus.FieldLogger) *LogrusSink {
	return &LogrusSink{log: l}
}

// Info implements LogSink. Level 0 maps to logrus Info, anything above to Debug.
func (s *LogrusSink) Info(level int, msg string, keysAndValues ...interface{}) {
	entry := s.log.WithFields(fields(keysAndValues))
	if level > 0 {
		entry.Debug(msg)
		return
	}
	entry.Info(msg)
}

// Error implements LogSink.
func (s *LogrusSink) Error(err error, msg string, keysAndValues ...interface{}) {
	s.log.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		f[key] = keysAndValues[i+1]
	}
	return f
}
