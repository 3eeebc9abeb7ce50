// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bincodec converts between Go values and Ignite binary objects.
//
// Decoding goes through a Registry that maps each type code to a DecodeFunc.
// The default registry understands every standard Ignite type; binary and
// complex objects are left as raw bincore.Value so that callers asking for
// keep-binary results, or plugging in their own object mapping, get the bytes
// untouched. Register a DecodeFunc for TypeComplexObject to map user types.
package bincodec

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ikmak/ignite-go-driver/x/binary/bincore"
)

// ErrNilRegistry is returned when a nil registry is used for decoding.
var ErrNilRegistry = errors.New("bincodec: nil registry")

// DecodeFunc converts a typed Ignite object into a Go value. The registry is
// passed so that container decoders can decode their elements with it.
type DecodeFunc func(r *Registry, v bincore.Value) (interface{}, error)

// DecodeError is returned when a value cannot be converted.
type DecodeError struct {
	Type    bincore.Type
	Wrapped error
}

// Error implements the error interface.
func (de DecodeError) Error() string {
	return fmt.Sprintf("cannot decode Ignite %s: %v", de.Type, de.Wrapped)
}

// Unwrap returns the underlying error.
func (de DecodeError) Unwrap() error { return de.Wrapped }

// Registry holds the decoders used to turn typed objects into Go values. It
// is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	decoders map[bincore.Type]DecodeFunc
}

// DefaultRegistry is the registry used when no other is supplied.
var DefaultRegistry = NewRegistry()

// NewRegistry returns a registry populated with the default decoders.
func NewRegistry() *Registry {
	r := &Registry{decoders: make(map[bincore.Type]DecodeFunc)}
	registerDefaultDecoders(r)
	return r
}

// RegisterDecoder sets the decoder used for type t, replacing any previous one.
func (r *Registry) RegisterDecoder(t bincore.Type, fn DecodeFunc) *Registry {
	r.mu.Lock()
	r.decoders[t] = fn
	r.mu.Unlock()
	return r
}

// LookupDecoder returns the decoder registered for t.
func (r *Registry) LookupDecoder(t bincore.Type) (DecodeFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.decoders[t]
	return fn, ok
}

// Decode converts v into a Go value. Types without a registered decoder are
// returned as the raw bincore.Value.
func (r *Registry) Decode(v bincore.Value) (interface{}, error) {
	if r == nil {
		return nil, ErrNilRegistry
	}
	fn, ok := r.LookupDecoder(v.Type)
	if !ok {
		return v, nil
	}
	out, err := fn(r, v)
	if err != nil {
		var de DecodeError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, DecodeError{Type: v.Type, Wrapped: err}
	}
	return out, nil
}

// DecodeValues decodes each value in order.
func (r *Registry) DecodeValues(vals []bincore.Value) ([]interface{}, error) {
	out := make([]interface{}, 0, len(vals))
	for _, v := range vals {
		dv, err := r.Decode(v)
		if err != nil {
			return nil, err
		}
		out = append(out, dv)
	}
	return out, nil
}

// Pair is a single key-value entry of an Ignite map. Maps are exposed as
// ordered slices of pairs because keys are not always comparable in Go and
// the server order is kept.
type Pair struct {
	Key   interface{}
	Value interface{}
}

// Enum is an Ignite enum value.
type Enum struct {
	TypeID  int32
	Ordinal int32
}

// MapType is the hint byte stored with an Ignite map.
type MapType byte

// These constants are the map kinds understood by the server.
const (
	HashMap       MapType = 1
	LinkedHashMap MapType = 2
)

// CollectionType is the hint byte stored with an Ignite collection.
type CollectionType byte

// These constants are the collection kinds understood by the server.
const (
	UserSet       CollectionType = 0xFF
	UserList      CollectionType = 0
	ArrayList     CollectionType = 1
	LinkedList    CollectionType = 2
	HashSet       CollectionType = 3
	LinkedHashSet CollectionType = 4
	SingletonList CollectionType = 5
)
