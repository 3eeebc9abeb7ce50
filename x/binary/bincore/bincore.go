// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bincore contains functions that can be used to encode and decode
// Ignite binary protocol values to or from a slice of bytes. These functions
// are aimed at allowing low level manipulation of the wire format and are the
// building blocks of the request builder and response decoder in the driver.
//
// The Read* functions within this package return the value, the remaining
// bytes and a boolean indicating if the value could be read. A boolean is used
// instead of an error because any error that would be returned would be the
// same: not enough bytes. The caller decides how to report it.
//
// The Append* functions append the value to dst and return the extended
// buffer. Functions without the Object suffix write the payload only; the
// *Object variants prefix it with the type code, which is how values travel
// inside maps, arrays and query arguments.
//
// All multi-byte values are little-endian.
package bincore

import (
	"math"
)

// AppendType will append t to dst and return the extended buffer.
func AppendType(dst []byte, t Type) []byte { return append(dst, byte(t)) }

// ReadType will read a type code from src.
func ReadType(src []byte) (Type, []byte, bool) {
	if len(src) < 1 {
		return 0, src, false
	}
	return Type(src[0]), src[1:], true
}

// AppendByte will append b to dst and return the extended buffer.
func AppendByte(dst []byte, b int8) []byte { return append(dst, byte(b)) }

// ReadByte will read a signed byte from src.
func ReadByte(src []byte) (int8, []byte, bool) {
	if len(src) < 1 {
		return 0, src, false
	}
	return int8(src[0]), src[1:], true
}

// AppendBool will append b to dst as a single 0/1 byte.
func AppendBool(dst []byte, b bool) []byte {
	if b {
		return append(dst, 0x01)
	}
	return append(dst, 0x00)
}

// ReadBool will read a boolean from src. Any non-zero byte is true.
func ReadBool(src []byte) (bool, []byte, bool) {
	if len(src) < 1 {
		return false, src, false
	}
	return src[0] != 0x00, src[1:], true
}

// AppendShort will append i16 to dst and return the extended buffer.
func AppendShort(dst []byte, i16 int16) []byte { return appendi16(dst, i16) }

// ReadShort will read an int16 from src.
func ReadShort(src []byte) (int16, []byte, bool) { return readi16(src) }

// AppendChar will append a UTF-16 code unit to dst.
func AppendChar(dst []byte, c uint16) []byte { return appendi16(dst, int16(c)) }

// ReadChar will read a UTF-16 code unit from src.
func ReadChar(src []byte) (uint16, []byte, bool) {
	i16, rem, ok := readi16(src)
	return uint16(i16), rem, ok
}

// AppendInt will append i32 to dst and return the extended buffer.
func AppendInt(dst []byte, i32 int32) []byte { return appendi32(dst, i32) }

// ReadInt will read an int32 from src.
func ReadInt(src []byte) (int32, []byte, bool) { return readi32(src) }

// AppendLong will append i64 to dst and return the extended buffer.
func AppendLong(dst []byte, i64 int64) []byte { return appendi64(dst, i64) }

// ReadLong will read an int64 from src.
func ReadLong(src []byte) (int64, []byte, bool) { return readi64(src) }

// AppendFloat will append f to dst and return the extended buffer.
func AppendFloat(dst []byte, f float32) []byte { return appendi32(dst, int32(math.Float32bits(f))) }

// ReadFloat will read a float32 from src.
func ReadFloat(src []byte) (float32, []byte, bool) {
	bits, rem, ok := readi32(src)
	if !ok {
		return 0, src, false
	}
	return math.Float32frombits(uint32(bits)), rem, true
}

// AppendDouble will append f to dst and return the extended buffer.
func AppendDouble(dst []byte, f float64) []byte { return appendi64(dst, int64(math.Float64bits(f))) }

// ReadDouble will read a float64 from src.
func ReadDouble(src []byte) (float64, []byte, bool) {
	bits, rem, ok := readi64(src)
	if !ok {
		return 0, src, false
	}
	return math.Float64frombits(uint64(bits)), rem, true
}

// AppendString will append the length-prefixed UTF-8 bytes of s to dst.
func AppendString(dst []byte, s string) []byte {
	dst = appendi32(dst, int32(len(s)))
	return append(dst, s...)
}

// ReadString will read a length-prefixed UTF-8 string from src.
func ReadString(src []byte) (string, []byte, bool) {
	l, rem, ok := readi32(src)
	if !ok || l < 0 || len(rem) < int(l) {
		return "", src, false
	}
	return string(rem[:l]), rem[l:], true
}

// AppendStringObject will append s as a typed string object.
func AppendStringObject(dst []byte, s string) []byte {
	return AppendString(AppendType(dst, TypeString), s)
}

// AppendNullableStringObject will append s as a typed string object, or the
// null marker when s is nil.
func AppendNullableStringObject(dst []byte, s *string) []byte {
	if s == nil {
		return AppendNull(dst)
	}
	return AppendStringObject(dst, *s)
}

// ReadStringObject will read a typed string object from src. A null marker is
// read as the empty string with isNull set.
func ReadStringObject(src []byte) (s string, isNull bool, rem []byte, ok bool) {
	t, rem, ok := ReadType(src)
	if !ok {
		return "", false, src, false
	}
	switch t {
	case TypeNull:
		return "", true, rem, true
	case TypeString:
		s, rem, ok = ReadString(rem)
		if !ok {
			return "", false, src, false
		}
		return s, false, rem, true
	default:
		return "", false, src, false
	}
}

// AppendNull will append the null marker to dst.
func AppendNull(dst []byte) []byte { return AppendType(dst, TypeNull) }

// AppendStringArray will append a count-prefixed sequence of typed strings.
func AppendStringArray(dst []byte, strs []string) []byte {
	dst = appendi32(dst, int32(len(strs)))
	for _, s := range strs {
		dst = AppendStringObject(dst, s)
	}
	return dst
}

// ReadStringArray will read a count-prefixed sequence of typed strings. Null
// elements are read as empty strings.
func ReadStringArray(src []byte) ([]string, []byte, bool) {
	count, rem, ok := readi32(src)
	// every element takes at least one byte
	if !ok || count < 0 || int(count) > len(rem) {
		return nil, src, false
	}
	strs := make([]string, 0, count)
	for i := int32(0); i < count; i++ {
		var s string
		s, _, rem, ok = ReadStringObject(rem)
		if !ok {
			return nil, src, false
		}
		strs = append(strs, s)
	}
	return strs, rem, true
}

// ReadBytes will read length bytes from src.
func ReadBytes(src []byte, length int32) ([]byte, []byte, bool) {
	if length < 0 || len(src) < int(length) {
		return nil, src, false
	}
	return src[:length], src[length:], true
}

// ReserveLength reserves the space required for a length prefix and returns
// the index where the length starts so it can be filled in with UpdateLength.
func ReserveLength(dst []byte) (int32, []byte) {
	index := len(dst)
	return int32(index), append(dst, 0x00, 0x00, 0x00, 0x00)
}

// UpdateLength updates the length at index with length and returns the
// buffer.
func UpdateLength(dst []byte, index, length int32) []byte {
	dst[index] = byte(length)
	dst[index+1] = byte(length >> 8)
	dst[index+2] = byte(length >> 16)
	dst[index+3] = byte(length >> 24)
	return dst
}

func appendi16(dst []byte, i16 int16) []byte {
	return append(dst, byte(i16), byte(i16>>8))
}

func readi16(src []byte) (int16, []byte, bool) {
	if len(src) < 2 {
		return 0, src, false
	}
	return int16(src[0]) | int16(src[1])<<8, src[2:], true
}

func appendi32(dst []byte, i32 int32) []byte {
	return append(dst, byte(i32), byte(i32>>8), byte(i32>>16), byte(i32>>24))
}

func readi32(src []byte) (int32, []byte, bool) {
	if len(src) < 4 {
		return 0, src, false
	}
	return (int32(src[0]) | int32(src[1])<<8 | int32(src[2])<<16 | int32(src[3])<<24), src[4:], true
}

func appendi64(dst []byte, i64 int64) []byte {
	return append(dst,
		byte(i64), byte(i64>>8), byte(i64>>16), byte(i64>>24),
		byte(i64>>32), byte(i64>>40), byte(i64>>48), byte(i64>>56),
	)
}

func readi64(src []byte) (int64, []byte, bool) {
	if len(src) < 8 {
		return 0, src, false
	}
	i64 := (int64(src[0]) | int64(src[1])<<8 | int64(src[2])<<16 | int64(src[3])<<24 |
		int64(src[4])<<32 | int64(src[5])<<40 | int64(src[6])<<48 | int64(src[7])<<56)
	return i64, src[8:], true
}
