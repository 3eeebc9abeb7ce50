// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package driver

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"github.com/ikmak/ignite-go-driver/x/binary/bincodec"
	"github.com/ikmak/ignite-go-driver/x/binary/bincore"
	"github.com/ikmak/ignite-go-driver/x/network/wiremessage"
)

// FieldType is the wire type of a schema field.
type FieldType int

// These constants are the field types a schema can hold. Everything except
// String, Null and AnyDataObject is written without a type code.
const (
	FieldInt FieldType = iota + 1
	FieldLong
	FieldByte
	FieldBool
	FieldString
	FieldNull
	FieldAnyDataArray
	FieldMap
	FieldStringArray
	FieldAnyDataObject
)

// String implements the fmt.Stringer interface.
func (ft FieldType) String() string {
	switch ft {
	case FieldInt:
		return "Int"
	case FieldLong:
		return "Long"
	case FieldByte:
		return "Byte"
	case FieldBool:
		return "Bool"
	case FieldString:
		return "String"
	case FieldNull:
		return "Null"
	case FieldAnyDataArray:
		return "AnyDataArray"
	case FieldMap:
		return "Map"
	case FieldStringArray:
		return "StringArray"
	case FieldAnyDataObject:
		return "AnyDataObject"
	default:
		return "<invalid field type>"
	}
}

// Field is a named, typed slot of a schema.
type Field struct {
	Name string
	Type FieldType
}

// Schema is the ordered list of fields of a request or response.
type Schema []Field

// SchemaError is returned when a bound value does not fit its field.
type SchemaError struct {
	Field Field
	Value interface{}
}

// Error implements the error interface.
func (se SchemaError) Error() string {
	return fmt.Sprintf("cannot encode %T as %s for field %q", se.Value, se.Field.Type, se.Field.Name)
}

// AppendPayload encodes values in schema order and appends them to dst.
// Fields without a value are written with their absent representation: zero
// for numbers, false for booleans, null for strings and objects, and an
// empty array or map. No field is ever omitted.
func (s Schema) AppendPayload(dst []byte, values map[string]interface{}) ([]byte, error) {
	var err error
	for _, f := range s {
		dst, err = appendField(dst, f, values[f.Name])
		if err != nil {
			return dst, err
		}
	}
	return dst, nil
}

func appendField(dst []byte, f Field, val interface{}) ([]byte, error) {
	mismatch := SchemaError{Field: f, Value: val}
	switch f.Type {
	case FieldInt:
		switch v := val.(type) {
		case nil:
			return bincore.AppendInt(dst, 0), nil
		case int32:
			return bincore.AppendInt(dst, v), nil
		case int:
			return bincore.AppendInt(dst, int32(v)), nil
		}
	case FieldLong:
		switch v := val.(type) {
		case nil:
			return bincore.AppendLong(dst, 0), nil
		case int64:
			return bincore.AppendLong(dst, v), nil
		case int:
			return bincore.AppendLong(dst, int64(v)), nil
		}
	case FieldByte:
		switch v := val.(type) {
		case nil:
			return bincore.AppendByte(dst, 0), nil
		case int8:
			return bincore.AppendByte(dst, v), nil
		case byte:
			return append(dst, v), nil
		}
	case FieldBool:
		switch v := val.(type) {
		case nil:
			return bincore.AppendBool(dst, false), nil
		case bool:
			return bincore.AppendBool(dst, v), nil
		}
	case FieldString:
		switch v := val.(type) {
		case nil:
			return bincore.AppendNull(dst), nil
		case string:
			return bincore.AppendStringObject(dst, v), nil
		case *string:
			return bincore.AppendNullableStringObject(dst, v), nil
		}
	case FieldNull:
		return bincore.AppendNull(dst), nil
	case FieldAnyDataArray:
		switch v := val.(type) {
		case nil:
			return bincore.AppendInt(dst, 0), nil
		case []interface{}:
			dst = bincore.AppendInt(dst, int32(len(v)))
			for i, elem := range v {
				var err error
				dst, err = bincodec.AppendObject(dst, elem)
				if err != nil {
					return dst, errors.Wrapf(err, "field %q element %d", f.Name, i)
				}
			}
			return dst, nil
		}
	case FieldMap:
		switch v := val.(type) {
		case nil:
			return bincore.AppendInt(dst, 0), nil
		case []bincodec.Pair:
			dst = bincore.AppendInt(dst, int32(len(v)))
			for _, p := range v {
				var err error
				if dst, err = bincodec.AppendObject(dst, p.Key); err != nil {
					return dst, errors.Wrapf(err, "field %q key", f.Name)
				}
				if dst, err = bincodec.AppendObject(dst, p.Value); err != nil {
					return dst, errors.Wrapf(err, "field %q value", f.Name)
				}
			}
			return dst, nil
		}
	case FieldStringArray:
		switch v := val.(type) {
		case nil:
			return bincore.AppendInt(dst, 0), nil
		case []string:
			return bincore.AppendStringArray(dst, v), nil
		}
	case FieldAnyDataObject:
		out, err := bincodec.AppendObject(dst, val)
		if err != nil {
			return dst, errors.Wrapf(err, "field %q", f.Name)
		}
		return out, nil
	}
	return dst, mismatch
}

// BuildRequest returns a complete request message: header, then the payload
// encoded from values.
func BuildRequest(dst []byte, opcode wiremessage.OpCode, reqid int64, s Schema, values map[string]interface{}) ([]byte, error) {
	idx, dst := wiremessage.AppendRequestHeaderStart(dst, opcode, reqid)
	dst, err := s.AppendPayload(dst, values)
	if err != nil {
		return dst, err
	}
	return wiremessage.UpdateLength(dst, idx), nil
}

// DecodeFields reads each schema field from src, in order, into a map keyed
// by field name. Typed objects are decoded with r. Map fields are returned
// as their raw alternating keys and values ([]bincore.Value); use
// ReshapeKeyValue to turn them into ordered pairs.
func DecodeFields(src []byte, s Schema, r *bincodec.Registry) (map[string]interface{}, []byte, error) {
	out := make(map[string]interface{}, len(s))
	rem := src
	for _, f := range s {
		var val interface{}
		var err error
		val, rem, err = decodeField(rem, f, r)
		if err != nil {
			return nil, src, errors.Wrapf(err, "decoding field %q", f.Name)
		}
		out[f.Name] = val
	}
	return out, rem, nil
}

func decodeField(src []byte, f Field, r *bincodec.Registry) (interface{}, []byte, error) {
	insufficient := bincore.NewInsufficientBytesError(src, src)
	switch f.Type {
	case FieldInt:
		v, rem, ok := bincore.ReadInt(src)
		if !ok {
			return nil, src, insufficient
		}
		return v, rem, nil
	case FieldLong:
		v, rem, ok := bincore.ReadLong(src)
		if !ok {
			return nil, src, insufficient
		}
		return v, rem, nil
	case FieldByte:
		v, rem, ok := bincore.ReadByte(src)
		if !ok {
			return nil, src, insufficient
		}
		return v, rem, nil
	case FieldBool:
		v, rem, ok := bincore.ReadBool(src)
		if !ok {
			return nil, src, insufficient
		}
		return v, rem, nil
	case FieldString:
		s, isNull, rem, ok := bincore.ReadStringObject(src)
		if !ok {
			return nil, src, insufficient
		}
		if isNull {
			return nil, rem, nil
		}
		return s, rem, nil
	case FieldNull:
		t, rem, ok := bincore.ReadType(src)
		if !ok {
			return nil, src, insufficient
		}
		if t != bincore.TypeNull {
			return nil, src, bincore.UnknownTypeError{Type: t}
		}
		return nil, rem, nil
	case FieldAnyDataArray:
		count, rem, ok := bincore.ReadInt(src)
		if !ok || count < 0 {
			return nil, src, insufficient
		}
		vals, rem, err := readValues(rem, int(count))
		if err != nil {
			return nil, src, err
		}
		out, err := r.DecodeValues(vals)
		if err != nil {
			return nil, src, err
		}
		return out, rem, nil
	case FieldMap:
		count, rem, ok := bincore.ReadInt(src)
		if !ok || count < 0 {
			return nil, src, insufficient
		}
		vals, rem, err := readValues(rem, 2*int(count))
		if err != nil {
			return nil, src, err
		}
		return vals, rem, nil
	case FieldStringArray:
		v, rem, ok := bincore.ReadStringArray(src)
		if !ok {
			return nil, src, insufficient
		}
		return v, rem, nil
	case FieldAnyDataObject:
		v, rem, err := bincore.ReadValueErr(src)
		if err != nil {
			return nil, src, err
		}
		out, err := r.Decode(v)
		if err != nil {
			return nil, src, err
		}
		return out, rem, nil
	}
	return nil, src, errors.Errorf("unknown field type %d", f.Type)
}

// readValues is bincore.ReadValues with the failure described as an error.
func readValues(src []byte, count int) ([]bincore.Value, []byte, error) {
	// every typed object takes at least one byte
	if count < 0 || count > len(src) {
		return nil, src, bincore.NewInsufficientBytesError(src, src)
	}
	vals := make([]bincore.Value, 0, count)
	rem := src
	for i := 0; i < count; i++ {
		var v bincore.Value
		var err error
		v, rem, err = bincore.ReadValueErr(rem)
		if err != nil {
			return nil, src, err
		}
		vals = append(vals, v)
	}
	return vals, rem, nil
}

// RowSchema returns the schema of one projected row: fieldCount any-typed
// columns named field_0 to field_{fieldCount-1}.
func RowSchema(fieldCount int) Schema {
	s := make(Schema, 0, fieldCount)
	for i := 0; i < fieldCount; i++ {
		s = append(s, Field{Name: "field_" + strconv.Itoa(i), Type: FieldAnyDataObject})
	}
	return s
}

// DecodeRows reads an int32 row count followed by that many rows of
// fieldCount typed objects. The column count is not on the wire: a wrong
// value misreads every following byte.
func DecodeRows(src []byte, fieldCount int, r *bincodec.Registry) ([]map[string]interface{}, []byte, error) {
	if fieldCount < 0 {
		return nil, src, ErrNegativeFieldCount
	}
	count, rem, ok := bincore.ReadInt(src)
	if !ok || count < 0 {
		return nil, src, errors.Wrap(bincore.NewInsufficientBytesError(src, src), "decoding row count")
	}
	// every column takes at least one byte
	if fieldCount > 0 && int(count) > len(rem)/fieldCount {
		return nil, src, errors.Wrap(bincore.NewInsufficientBytesError(src, rem), "decoding rows")
	}
	rs := RowSchema(fieldCount)
	capacity := int(count)
	if capacity > len(rem) {
		capacity = len(rem)
	}
	rows := make([]map[string]interface{}, 0, capacity)
	for i := int32(0); i < count; i++ {
		var row map[string]interface{}
		var err error
		row, rem, err = DecodeFields(rem, rs, r)
		if err != nil {
			return nil, src, errors.Wrapf(err, "decoding row %d", i)
		}
		rows = append(rows, row)
	}
	return rows, rem, nil
}
