// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bincore

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend(t *testing.T) {
	pi := math.Float64bits(3.14159)

	testCases := []struct {
		name     string
		got      []byte
		expected []byte
	}{
		{"AppendType", AppendType(nil, TypeNull), []byte{101}},
		{"AppendByte", AppendByte(nil, -1), []byte{0xFF}},
		{"AppendBool/true", AppendBool(nil, true), []byte{0x01}},
		{"AppendBool/false", AppendBool(nil, false), []byte{0x00}},
		{"AppendShort", AppendShort(nil, 0x0102), []byte{0x02, 0x01}},
		{"AppendChar", AppendChar(nil, 'A'), []byte{0x41, 0x00}},
		{"AppendInt", AppendInt(nil, -1), []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{"AppendInt/page size", AppendInt(nil, 2), []byte{0x02, 0x00, 0x00, 0x00}},
		{"AppendLong", AppendLong(nil, 0x0102030405060708), []byte{8, 7, 6, 5, 4, 3, 2, 1}},
		{
			"AppendDouble",
			AppendDouble(nil, 3.14159),
			[]byte{
				byte(pi), byte(pi >> 8), byte(pi >> 16), byte(pi >> 24),
				byte(pi >> 32), byte(pi >> 40), byte(pi >> 48), byte(pi >> 56),
			},
		},
		{"AppendString", AppendString(nil, "ab"), []byte{2, 0, 0, 0, 'a', 'b'}},
		{"AppendStringObject", AppendStringObject(nil, "ab"), []byte{9, 2, 0, 0, 0, 'a', 'b'}},
		{"AppendNullableStringObject/nil", AppendNullableStringObject(nil, nil), []byte{101}},
		{"AppendNull", AppendNull([]byte{0xAA}), []byte{0xAA, 101}},
		{
			"AppendStringArray",
			AppendStringArray(nil, []string{"a", ""}),
			[]byte{2, 0, 0, 0, 9, 1, 0, 0, 0, 'a', 9, 0, 0, 0, 0},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tc.expected, tc.got); diff != "" {
				t.Errorf("bytes differ (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRead(t *testing.T) {
	t.Run("primitives", func(t *testing.T) {
		src := AppendInt(nil, 42)
		src = AppendLong(src, -7)
		src = AppendBool(src, true)
		src = AppendShort(src, -2)
		src = AppendFloat(src, 1.5)

		i32, rem, ok := ReadInt(src)
		require.True(t, ok)
		assert.Equal(t, int32(42), i32)

		i64, rem, ok := ReadLong(rem)
		require.True(t, ok)
		assert.Equal(t, int64(-7), i64)

		b, rem, ok := ReadBool(rem)
		require.True(t, ok)
		assert.True(t, b)

		i16, rem, ok := ReadShort(rem)
		require.True(t, ok)
		assert.Equal(t, int16(-2), i16)

		f32, rem, ok := ReadFloat(rem)
		require.True(t, ok)
		assert.Equal(t, float32(1.5), f32)
		assert.Empty(t, rem)
	})
	t.Run("short reads keep src", func(t *testing.T) {
		src := []byte{0x01, 0x02}
		_, rem, ok := ReadInt(src)
		assert.False(t, ok)
		assert.Equal(t, src, rem)

		_, rem, ok = ReadString([]byte{5, 0, 0, 0, 'a'})
		assert.False(t, ok)
		assert.Len(t, rem, 5)
	})
	t.Run("string object", func(t *testing.T) {
		s, isNull, rem, ok := ReadStringObject(AppendStringObject(nil, "héllo"))
		require.True(t, ok)
		assert.False(t, isNull)
		assert.Equal(t, "héllo", s)
		assert.Empty(t, rem)

		_, isNull, _, ok = ReadStringObject(AppendNull(nil))
		require.True(t, ok)
		assert.True(t, isNull)

		_, _, _, ok = ReadStringObject(AppendInt(AppendType(nil, TypeInt), 1))
		assert.False(t, ok)
	})
	t.Run("string array", func(t *testing.T) {
		strs, rem, ok := ReadStringArray(AppendStringArray(nil, []string{"ID", "NAME"}))
		require.True(t, ok)
		assert.Equal(t, []string{"ID", "NAME"}, strs)
		assert.Empty(t, rem)
	})
}

func TestReadValue(t *testing.T) {
	intObj := func(i int32) []byte { return AppendInt(AppendType(nil, TypeInt), i) }
	strObj := func(s string) []byte { return AppendStringObject(nil, s) }
	cat := func(parts ...[]byte) []byte {
		var out []byte
		for _, p := range parts {
			out = append(out, p...)
		}
		return out
	}

	complexObj := func() []byte {
		// 24 byte header followed by a 4 byte field and no schema.
		obj := []byte{byte(TypeComplexObject), 1, 0, 0}
		obj = AppendInt(obj, 123) // type id
		obj = AppendInt(obj, 456) // hash code
		obj = AppendInt(obj, 28)  // total length
		obj = AppendInt(obj, 0)   // schema id
		obj = AppendInt(obj, 24)  // schema offset
		return AppendInt(obj, 99)
	}

	testCases := []struct {
		name   string
		object []byte
	}{
		{"null", AppendNull(nil)},
		{"byte", AppendByte(AppendType(nil, TypeByte), 3)},
		{"int", intObj(5)},
		{"long", AppendLong(AppendType(nil, TypeLong), 5)},
		{"double", AppendDouble(AppendType(nil, TypeDouble), 5)},
		{"string", strObj("five")},
		{"uuid", append(AppendType(nil, TypeUUID), make([]byte, 16)...)},
		{"timestamp", AppendInt(AppendLong(AppendType(nil, TypeTimestamp), 1), 2)},
		{"int array", AppendInt(AppendInt(AppendInt(AppendType(nil, TypeIntArray), 2), 1), 2)},
		{"bool array", append(AppendInt(AppendType(nil, TypeBoolArray), 3), 1, 0, 1)},
		{"string array", cat(AppendType(nil, TypeStringArray), AppendInt(nil, 2), strObj("a"), AppendNull(nil))},
		{"object array", cat(AppendType(nil, TypeObjectArray), AppendInt(nil, -1), AppendInt(nil, 2), intObj(1), strObj("x"))},
		{"collection", cat(AppendType(nil, TypeCollection), AppendInt(nil, 1), []byte{1}, intObj(1))},
		{"map", cat(AppendType(nil, TypeMap), AppendInt(nil, 2), []byte{1}, intObj(1), strObj("a"), intObj(2), strObj("b"))},
		{"nested map", cat(AppendType(nil, TypeMap), AppendInt(nil, 1), []byte{1}, strObj("k"),
			cat(AppendType(nil, TypeMap), AppendInt(nil, 1), []byte{1}, intObj(1), AppendNull(nil)))},
		{"decimal", cat(AppendType(nil, TypeDecimal), AppendInt(nil, 2), AppendInt(nil, 2), []byte{0x30, 0x39})},
		{"binary object", cat(AppendType(nil, TypeBinaryObject), AppendInt(nil, 3), []byte{1, 2, 3}, AppendInt(nil, 0))},
		{"enum", cat(AppendType(nil, TypeEnum), AppendInt(nil, 10), AppendInt(nil, 1))},
		{"complex object", complexObj()},
	}

	trailer := []byte{0xDE, 0xAD}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			src := append(append([]byte{}, tc.object...), trailer...)
			v, rem, ok := ReadValue(src)
			require.True(t, ok, "expected value to be readable")
			assert.Equal(t, Type(tc.object[0]), v.Type)
			assert.Equal(t, tc.object[1:], v.Data)
			assert.Equal(t, trailer, rem, "ReadValue must consume exactly one object")
			assert.NoError(t, v.Validate())
			assert.Equal(t, tc.object, AppendValue(nil, v))
		})
	}

	t.Run("unknown type", func(t *testing.T) {
		_, _, err := ReadValueErr([]byte{200, 0, 0})
		assert.Equal(t, UnknownTypeError{Type: 200}, err)
	})
	t.Run("truncated", func(t *testing.T) {
		_, _, err := ReadValueErr(strObj("truncated")[:5])
		var ibe InsufficientBytesError
		assert.ErrorAs(t, err, &ibe)
	})
	t.Run("length overflow", func(t *testing.T) {
		complexHeader := []byte{byte(TypeComplexObject), 1, 0, 0}
		complexHeader = AppendInt(AppendInt(complexHeader, 123), 456)

		overflows := []struct {
			name   string
			object []byte
		}{
			{"string near max", cat(AppendType(nil, TypeString), AppendInt(nil, 0x7FFFFFFE), []byte("ab"))},
			{"string max", cat(AppendType(nil, TypeString), AppendInt(nil, math.MaxInt32), []byte("ab"))},
			{"string wraps at prefix", cat(AppendType(nil, TypeString), AppendInt(nil, 0x7FFFFFFC), []byte("ab"))},
			{"string negative", cat(AppendType(nil, TypeString), AppendInt(nil, -2), []byte("ab"))},
			{"decimal", cat(AppendType(nil, TypeDecimal), AppendInt(nil, 2), AppendInt(nil, 0x7FFFFFFA), []byte{1})},
			{"decimal negative", cat(AppendType(nil, TypeDecimal), AppendInt(nil, 2), AppendInt(nil, -1))},
			{"binary object", cat(AppendType(nil, TypeBinaryObject), AppendInt(nil, 0x7FFFFFF9), []byte{1, 2, 3})},
			{"binary object negative", cat(AppendType(nil, TypeBinaryObject), AppendInt(nil, -8), AppendInt(nil, 0))},
			{"long array", cat(AppendType(nil, TypeLongArray), AppendInt(nil, 0x10000000), AppendLong(nil, 1))},
			{"int array", cat(AppendType(nil, TypeIntArray), AppendInt(nil, math.MaxInt32), AppendInt(nil, 1))},
			{"string array", cat(AppendType(nil, TypeStringArray), AppendInt(nil, math.MaxInt32), strObj("a"))},
			{"object array", cat(AppendType(nil, TypeObjectArray), AppendInt(nil, -1), AppendInt(nil, math.MaxInt32), intObj(1))},
			{"map", cat(AppendType(nil, TypeMap), AppendInt(nil, 0x40000000), []byte{1}, intObj(1), intObj(2))},
			{"map with oversized key", cat(AppendType(nil, TypeMap), AppendInt(nil, 1), []byte{1},
				AppendType(nil, TypeString), AppendInt(nil, 0x7FFFFFFE), []byte("ab"))},
			{"complex object", cat(complexHeader, AppendInt(nil, math.MaxInt32), AppendInt(nil, 0))},
		}
		for _, tc := range overflows {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				require.NotPanics(t, func() {
					_, rem, ok := ReadValue(tc.object)
					assert.False(t, ok)
					assert.Equal(t, tc.object, rem)

					_, _, err := ReadValueErr(tc.object)
					var ibe InsufficientBytesError
					assert.ErrorAs(t, err, &ibe)

					v := Value{Type: Type(tc.object[0]), Data: tc.object[1:]}
					assert.Error(t, v.Validate())
				})
			})
		}

		require.NotPanics(t, func() {
			_, _, ok := ReadValues(intObj(1), math.MaxInt32)
			assert.False(t, ok)
			_, _, ok = ReadStringArray(cat(AppendInt(nil, math.MaxInt32), strObj("a")))
			assert.False(t, ok)
		})
	})
	t.Run("ReadValues", func(t *testing.T) {
		vals, rem, ok := ReadValues(cat(intObj(1), strObj("a"), AppendNull(nil)), 3)
		require.True(t, ok)
		assert.Len(t, vals, 3)
		assert.Empty(t, rem)

		vals, rem, ok = ReadValues(nil, 0)
		require.True(t, ok)
		assert.Empty(t, vals)
		assert.Empty(t, rem)
	})
}

func TestReserveLength(t *testing.T) {
	idx, dst := ReserveLength([]byte{0xFF})
	assert.Equal(t, int32(1), idx)
	dst = append(dst, 1, 2, 3)
	dst = UpdateLength(dst, idx, int32(len(dst[idx:])))
	assert.Equal(t, []byte{0xFF, 7, 0, 0, 0, 1, 2, 3}, dst)
}
