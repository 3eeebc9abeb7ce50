// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bincore

import (
	"fmt"
)

// InsufficientBytesError indicates that there were not enough bytes to read the next component.
type InsufficientBytesError struct {
	Source    []byte
	Remaining []byte
}

// NewInsufficientBytesError creates a new InsufficientBytesError with the given source and remaining bytes.
func NewInsufficientBytesError(src, rem []byte) InsufficientBytesError {
	return InsufficientBytesError{Source: src, Remaining: rem}
}

// Error implements the error interface.
func (ibe InsufficientBytesError) Error() string {
	return fmt.Sprintf("too few bytes to read next component: %d remaining of %d", len(ibe.Remaining), len(ibe.Source))
}

// Equal checks that err2 also is an InsufficientBytesError.
func (ibe InsufficientBytesError) Equal(err2 error) bool {
	switch err2.(type) {
	case InsufficientBytesError:
		return true
	default:
		return false
	}
}

// UnknownTypeError is returned when a type code that cannot be skipped is encountered.
type UnknownTypeError struct {
	Type Type
}

// Error implements the error interface.
func (ute UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown Ignite type code %d", byte(ute.Type))
}

// Value represents a typed Ignite object with its type code and raw payload.
// Data never includes the leading type code byte.
type Value struct {
	Type Type
	Data []byte
}

// IsNull returns true if v is the null marker.
func (v Value) IsNull() bool { return v.Type == TypeNull }

// Validate ensures the payload holds exactly one object of v.Type.
func (v Value) Validate() error {
	if !v.Type.IsValid() {
		return UnknownTypeError{Type: v.Type}
	}
	length, ok := valueLength(v.Type, v.Data)
	if !ok || length != len(v.Data) {
		return NewInsufficientBytesError(v.Data, v.Data)
	}
	return nil
}

// String implements the fmt.Stringer interface.
func (v Value) String() string {
	return fmt.Sprintf("{%s %x}", v.Type, v.Data)
}

// AppendValue will append v, type code included, to dst.
func AppendValue(dst []byte, v Value) []byte {
	return append(AppendType(dst, v.Type), v.Data...)
}

// ReadValue reads exactly one typed object from src. Nested content is skipped
// without being interpreted, so that the stream stays aligned for the next
// read. It returns false if the type code is unknown or src is too short.
func ReadValue(src []byte) (Value, []byte, bool) {
	t, rem, ok := ReadType(src)
	if !ok {
		return Value{}, src, false
	}
	length, ok := valueLength(t, rem)
	if !ok || length < 0 || length > len(rem) {
		return Value{}, src, false
	}
	return Value{Type: t, Data: rem[:length]}, rem[length:], true
}

// ReadValueErr is ReadValue with the failure described as an error.
func ReadValueErr(src []byte) (Value, []byte, error) {
	v, rem, ok := ReadValue(src)
	if ok {
		return v, rem, nil
	}
	if len(src) > 0 && !Type(src[0]).IsValid() {
		return Value{}, src, UnknownTypeError{Type: Type(src[0])}
	}
	return Value{}, src, NewInsufficientBytesError(src, src)
}

// ReadValues reads count typed objects from src.
func ReadValues(src []byte, count int32) ([]Value, []byte, bool) {
	if count < 0 || int(count) > len(src) {
		return nil, src, false
	}
	vals := make([]Value, 0, count)
	rem := src
	for i := int32(0); i < count; i++ {
		var v Value
		var ok bool
		v, rem, ok = ReadValue(rem)
		if !ok {
			return nil, src, false
		}
		vals = append(vals, v)
	}
	return vals, rem, true
}

// valueLength returns the length of the payload of a value of type t that
// starts at val, type code excluded. Lengths read from val are computed in
// int and never exceed len(val).
func valueLength(t Type, val []byte) (int, bool) {
	var length int
	switch t {
	case TypeNull:
		return 0, true
	case TypeByte, TypeBool:
		length = 1
	case TypeShort, TypeChar:
		length = 2
	case TypeInt, TypeFloat:
		length = 4
	case TypeLong, TypeDouble, TypeDate, TypeTime, TypeEnum, TypeBinaryEnum:
		length = 8
	case TypeTimestamp:
		length = 12
	case TypeUUID:
		length = 16
	case TypeString:
		l, _, ok := readi32(val)
		if !ok || l < 0 {
			return 0, false
		}
		length = 4 + int(l)
	case TypeByteArray, TypeShortArray, TypeIntArray, TypeLongArray,
		TypeFloatArray, TypeDoubleArray, TypeCharArray, TypeBoolArray:
		count, _, ok := readi32(val)
		if !ok || count < 0 {
			return 0, false
		}
		size, _ := primitiveArrayElemSize(t)
		length = 4 + int(count)*size
	case TypeStringArray, TypeUUIDArray, TypeDateArray, TypeTimestampArray,
		TypeTimeArray, TypeDecimalArray:
		count, rem, ok := readi32(val)
		if !ok {
			return 0, false
		}
		return elementsLength(4, rem, int(count))
	case TypeObjectArray, TypeEnumArray:
		// type id, then count
		if len(val) < 8 {
			return 0, false
		}
		count, rem, _ := readi32(val[4:])
		return elementsLength(8, rem, int(count))
	case TypeCollection:
		count, rem, ok := readi32(val)
		if !ok || len(rem) < 1 {
			return 0, false
		}
		return elementsLength(5, rem[1:], int(count))
	case TypeMap:
		count, rem, ok := readi32(val)
		if !ok || len(rem) < 1 || count < 0 {
			return 0, false
		}
		return elementsLength(5, rem[1:], 2*int(count))
	case TypeDecimal:
		// scale, then magnitude length
		if len(val) < 4 {
			return 0, false
		}
		l, _, ok := readi32(val[4:])
		if !ok || l < 0 {
			return 0, false
		}
		length = 8 + int(l)
	case TypeBinaryObject:
		l, _, ok := readi32(val)
		if !ok || l < 0 {
			return 0, false
		}
		length = 4 + int(l) + 4
	case TypeComplexObject:
		// version(1) flags(2) type id(4) hash code(4) total length(4)
		if len(val) < 15 {
			return 0, false
		}
		total, _, ok := readi32(val[11:])
		if !ok || total < complexObjectHeaderLen {
			return 0, false
		}
		length = int(total) - 1
	default:
		return 0, false
	}
	if length > len(val) {
		return 0, false
	}
	return length, true
}

// complexObjectHeaderLen is the size of a complex object header, type code included.
const complexObjectHeaderLen = 24

// elementsLength returns prefix plus the length of count typed objects read from src.
func elementsLength(prefix int, src []byte, count int) (int, bool) {
	// every typed object takes at least one byte
	if count < 0 || count > len(src) {
		return 0, false
	}
	length := prefix
	rem := src
	for i := 0; i < count; i++ {
		var v Value
		var ok bool
		v, rem, ok = ReadValue(rem)
		if !ok {
			return 0, false
		}
		length += 1 + len(v.Data)
	}
	return length, true
}
