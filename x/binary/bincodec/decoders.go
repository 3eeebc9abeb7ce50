// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bincodec

import (
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ikmak/ignite-go-driver/x/binary/bincore"
)

func registerDefaultDecoders(r *Registry) {
	r.decoders[bincore.TypeNull] = func(*Registry, bincore.Value) (interface{}, error) { return nil, nil }
	r.decoders[bincore.TypeByte] = decodeByte
	r.decoders[bincore.TypeShort] = decodeShort
	r.decoders[bincore.TypeInt] = decodeInt
	r.decoders[bincore.TypeLong] = decodeLong
	r.decoders[bincore.TypeFloat] = decodeFloat
	r.decoders[bincore.TypeDouble] = decodeDouble
	r.decoders[bincore.TypeChar] = decodeChar
	r.decoders[bincore.TypeBool] = decodeBool
	r.decoders[bincore.TypeString] = decodeString
	r.decoders[bincore.TypeUUID] = decodeUUID
	r.decoders[bincore.TypeDate] = decodeDate
	r.decoders[bincore.TypeTimestamp] = decodeTimestamp
	r.decoders[bincore.TypeTime] = decodeTime
	r.decoders[bincore.TypeDecimal] = decodeDecimal
	r.decoders[bincore.TypeEnum] = decodeEnum
	r.decoders[bincore.TypeBinaryEnum] = decodeEnum

	r.decoders[bincore.TypeByteArray] = decodeByteArray
	r.decoders[bincore.TypeShortArray] = decodeShortArray
	r.decoders[bincore.TypeIntArray] = decodeIntArray
	r.decoders[bincore.TypeLongArray] = decodeLongArray
	r.decoders[bincore.TypeFloatArray] = decodeFloatArray
	r.decoders[bincore.TypeDoubleArray] = decodeDoubleArray
	r.decoders[bincore.TypeCharArray] = decodeCharArray
	r.decoders[bincore.TypeBoolArray] = decodeBoolArray

	for _, t := range []bincore.Type{
		bincore.TypeStringArray, bincore.TypeUUIDArray, bincore.TypeDateArray,
		bincore.TypeTimestampArray, bincore.TypeTimeArray, bincore.TypeDecimalArray,
	} {
		r.decoders[t] = decodeTypedArray
	}
	r.decoders[bincore.TypeObjectArray] = decodeObjectArray
	r.decoders[bincore.TypeEnumArray] = decodeObjectArray
	r.decoders[bincore.TypeCollection] = decodeCollection
	r.decoders[bincore.TypeMap] = decodeMap
}

func insufficient(v bincore.Value) error {
	return bincore.NewInsufficientBytesError(v.Data, v.Data)
}

func decodeByte(_ *Registry, v bincore.Value) (interface{}, error) {
	b, _, ok := bincore.ReadByte(v.Data)
	if !ok {
		return nil, insufficient(v)
	}
	return b, nil
}

func decodeShort(_ *Registry, v bincore.Value) (interface{}, error) {
	i16, _, ok := bincore.ReadShort(v.Data)
	if !ok {
		return nil, insufficient(v)
	}
	return i16, nil
}

func decodeInt(_ *Registry, v bincore.Value) (interface{}, error) {
	i32, _, ok := bincore.ReadInt(v.Data)
	if !ok {
		return nil, insufficient(v)
	}
	return i32, nil
}

func decodeLong(_ *Registry, v bincore.Value) (interface{}, error) {
	i64, _, ok := bincore.ReadLong(v.Data)
	if !ok {
		return nil, insufficient(v)
	}
	return i64, nil
}

func decodeFloat(_ *Registry, v bincore.Value) (interface{}, error) {
	f32, _, ok := bincore.ReadFloat(v.Data)
	if !ok {
		return nil, insufficient(v)
	}
	return f32, nil
}

func decodeDouble(_ *Registry, v bincore.Value) (interface{}, error) {
	f64, _, ok := bincore.ReadDouble(v.Data)
	if !ok {
		return nil, insufficient(v)
	}
	return f64, nil
}

func decodeChar(_ *Registry, v bincore.Value) (interface{}, error) {
	c, _, ok := bincore.ReadChar(v.Data)
	if !ok {
		return nil, insufficient(v)
	}
	return rune(c), nil
}

func decodeBool(_ *Registry, v bincore.Value) (interface{}, error) {
	b, _, ok := bincore.ReadBool(v.Data)
	if !ok {
		return nil, insufficient(v)
	}
	return b, nil
}

func decodeString(_ *Registry, v bincore.Value) (interface{}, error) {
	s, _, ok := bincore.ReadString(v.Data)
	if !ok {
		return nil, insufficient(v)
	}
	return s, nil
}

// UUIDs travel as two little-endian longs: most significant bits first.
func decodeUUID(_ *Registry, v bincore.Value) (interface{}, error) {
	if len(v.Data) < 16 {
		return nil, insufficient(v)
	}
	var id uuid.UUID
	for i := 0; i < 8; i++ {
		id[i] = v.Data[7-i]
		id[8+i] = v.Data[15-i]
	}
	return id, nil
}

func decodeDate(_ *Registry, v bincore.Value) (interface{}, error) {
	ms, _, ok := bincore.ReadLong(v.Data)
	if !ok {
		return nil, insufficient(v)
	}
	return time.UnixMilli(ms).UTC(), nil
}

func decodeTimestamp(_ *Registry, v bincore.Value) (interface{}, error) {
	ms, rem, ok := bincore.ReadLong(v.Data)
	if !ok {
		return nil, insufficient(v)
	}
	nanos, _, ok := bincore.ReadInt(rem)
	if !ok {
		return nil, insufficient(v)
	}
	return time.UnixMilli(ms).Add(time.Duration(nanos)).UTC(), nil
}

// Time values are milliseconds since midnight.
func decodeTime(_ *Registry, v bincore.Value) (interface{}, error) {
	ms, _, ok := bincore.ReadLong(v.Data)
	if !ok {
		return nil, insufficient(v)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// Decimals are a scale followed by a big-endian magnitude whose highest bit
// carries the sign.
func decodeDecimal(_ *Registry, v bincore.Value) (interface{}, error) {
	scale, rem, ok := bincore.ReadInt(v.Data)
	if !ok {
		return nil, insufficient(v)
	}
	length, rem, ok := bincore.ReadInt(rem)
	if !ok {
		return nil, insufficient(v)
	}
	mag, _, ok := bincore.ReadBytes(rem, length)
	if !ok {
		return nil, insufficient(v)
	}
	if len(mag) == 0 {
		return decimal.New(0, -scale), nil
	}
	buf := make([]byte, len(mag))
	copy(buf, mag)
	negative := buf[0]&0x80 != 0
	buf[0] &^= 0x80

	coef := new(big.Int).SetBytes(buf)
	if negative {
		coef.Neg(coef)
	}
	return decimal.NewFromBigInt(coef, -scale), nil
}

func decodeEnum(_ *Registry, v bincore.Value) (interface{}, error) {
	typeID, rem, ok := bincore.ReadInt(v.Data)
	if !ok {
		return nil, insufficient(v)
	}
	ordinal, _, ok := bincore.ReadInt(rem)
	if !ok {
		return nil, insufficient(v)
	}
	return Enum{TypeID: typeID, Ordinal: ordinal}, nil
}

func readCount(v bincore.Value) (int32, []byte, error) {
	count, rem, ok := bincore.ReadInt(v.Data)
	// every element takes at least one byte
	if !ok || count < 0 || int(count) > len(rem) {
		return 0, nil, insufficient(v)
	}
	return count, rem, nil
}

func decodeByteArray(_ *Registry, v bincore.Value) (interface{}, error) {
	count, rem, err := readCount(v)
	if err != nil {
		return nil, err
	}
	b, _, ok := bincore.ReadBytes(rem, count)
	if !ok {
		return nil, insufficient(v)
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func decodeShortArray(_ *Registry, v bincore.Value) (interface{}, error) {
	count, rem, err := readCount(v)
	if err != nil {
		return nil, err
	}
	out := make([]int16, 0, count)
	for i := int32(0); i < count; i++ {
		var i16 int16
		var ok bool
		i16, rem, ok = bincore.ReadShort(rem)
		if !ok {
			return nil, insufficient(v)
		}
		out = append(out, i16)
	}
	return out, nil
}

func decodeIntArray(_ *Registry, v bincore.Value) (interface{}, error) {
	count, rem, err := readCount(v)
	if err != nil {
		return nil, err
	}
	out := make([]int32, 0, count)
	for i := int32(0); i < count; i++ {
		var i32 int32
		var ok bool
		i32, rem, ok = bincore.ReadInt(rem)
		if !ok {
			return nil, insufficient(v)
		}
		out = append(out, i32)
	}
	return out, nil
}

func decodeLongArray(_ *Registry, v bincore.Value) (interface{}, error) {
	count, rem, err := readCount(v)
	if err != nil {
		return nil, err
	}
	out := make([]int64, 0, count)
	for i := int32(0); i < count; i++ {
		var i64 int64
		var ok bool
		i64, rem, ok = bincore.ReadLong(rem)
		if !ok {
			return nil, insufficient(v)
		}
		out = append(out, i64)
	}
	return out, nil
}

func decodeFloatArray(_ *Registry, v bincore.Value) (interface{}, error) {
	count, rem, err := readCount(v)
	if err != nil {
		return nil, err
	}
	out := make([]float32, 0, count)
	for i := int32(0); i < count; i++ {
		var f32 float32
		var ok bool
		f32, rem, ok = bincore.ReadFloat(rem)
		if !ok {
			return nil, insufficient(v)
		}
		out = append(out, f32)
	}
	return out, nil
}

func decodeDoubleArray(_ *Registry, v bincore.Value) (interface{}, error) {
	count, rem, err := readCount(v)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, count)
	for i := int32(0); i < count; i++ {
		var f64 float64
		var ok bool
		f64, rem, ok = bincore.ReadDouble(rem)
		if !ok {
			return nil, insufficient(v)
		}
		out = append(out, f64)
	}
	return out, nil
}

func decodeCharArray(_ *Registry, v bincore.Value) (interface{}, error) {
	count, rem, err := readCount(v)
	if err != nil {
		return nil, err
	}
	out := make([]rune, 0, count)
	for i := int32(0); i < count; i++ {
		var c uint16
		var ok bool
		c, rem, ok = bincore.ReadChar(rem)
		if !ok {
			return nil, insufficient(v)
		}
		out = append(out, rune(c))
	}
	return out, nil
}

func decodeBoolArray(_ *Registry, v bincore.Value) (interface{}, error) {
	count, rem, err := readCount(v)
	if err != nil {
		return nil, err
	}
	out := make([]bool, 0, count)
	for i := int32(0); i < count; i++ {
		var b bool
		var ok bool
		b, rem, ok = bincore.ReadBool(rem)
		if !ok {
			return nil, insufficient(v)
		}
		out = append(out, b)
	}
	return out, nil
}

func decodeElements(r *Registry, v bincore.Value, src []byte, count int32) ([]interface{}, error) {
	vals, _, ok := bincore.ReadValues(src, count)
	if !ok {
		return nil, insufficient(v)
	}
	return r.DecodeValues(vals)
}

func decodeTypedArray(r *Registry, v bincore.Value) (interface{}, error) {
	count, rem, err := readCount(v)
	if err != nil {
		return nil, err
	}
	return decodeElements(r, v, rem, count)
}

// Object and enum arrays carry a component type id before the count.
func decodeObjectArray(r *Registry, v bincore.Value) (interface{}, error) {
	_, rem, ok := bincore.ReadInt(v.Data)
	if !ok {
		return nil, insufficient(v)
	}
	count, rem, ok := bincore.ReadInt(rem)
	if !ok {
		return nil, insufficient(v)
	}
	return decodeElements(r, v, rem, count)
}

func decodeCollection(r *Registry, v bincore.Value) (interface{}, error) {
	count, rem, err := readCount(v)
	if err != nil {
		return nil, err
	}
	if len(rem) < 1 {
		return nil, insufficient(v)
	}
	return decodeElements(r, v, rem[1:], count)
}

func decodeMap(r *Registry, v bincore.Value) (interface{}, error) {
	count, rem, err := readCount(v)
	if err != nil {
		return nil, err
	}
	if len(rem) < 1 || 2*int(count) > len(rem)-1 {
		return nil, insufficient(v)
	}
	vals, _, ok := bincore.ReadValues(rem[1:], count*2)
	if !ok {
		return nil, insufficient(v)
	}
	return r.DecodePairs(vals)
}

// DecodePairs decodes an even-length list of alternating keys and values
// into ordered pairs.
func (r *Registry) DecodePairs(vals []bincore.Value) ([]Pair, error) {
	if len(vals)%2 != 0 {
		return nil, DecodeError{Type: bincore.TypeMap, Wrapped: bincore.NewInsufficientBytesError(nil, nil)}
	}
	pairs := make([]Pair, 0, len(vals)/2)
	for i := 0; i < len(vals); i += 2 {
		k, err := r.Decode(vals[i])
		if err != nil {
			return nil, err
		}
		val, err := r.Decode(vals[i+1])
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, Pair{Key: k, Value: val})
	}
	return pairs, nil
}
