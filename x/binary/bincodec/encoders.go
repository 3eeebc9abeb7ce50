// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bincodec

import (
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ikmak/ignite-go-driver/x/binary/bincore"
)

// EncodeError is returned when a Go value has no Ignite representation.
type EncodeError struct {
	Value interface{}
}

// Error implements the error interface.
func (ee EncodeError) Error() string {
	return fmt.Sprintf("no Ignite binary encoding for value of type %T", ee.Value)
}

// AppendObject encodes val as a typed object and appends it to dst.
func AppendObject(dst []byte, val interface{}) ([]byte, error) {
	v, err := Encode(val)
	if err != nil {
		return dst, err
	}
	return bincore.AppendValue(dst, v), nil
}

// Encode converts a Go value into a typed Ignite object. A bincore.Value is
// passed through untouched, which lets callers pin the wire type of an
// argument (for example a short instead of an int).
func Encode(val interface{}) (bincore.Value, error) {
	switch tv := val.(type) {
	case nil:
		return bincore.Value{Type: bincore.TypeNull}, nil
	case bincore.Value:
		return tv, nil
	case *bincore.Value:
		if tv == nil {
			return bincore.Value{Type: bincore.TypeNull}, nil
		}
		return *tv, nil
	case bool:
		return bincore.Value{Type: bincore.TypeBool, Data: bincore.AppendBool(nil, tv)}, nil
	case int8:
		return bincore.Value{Type: bincore.TypeByte, Data: bincore.AppendByte(nil, tv)}, nil
	case int16:
		return bincore.Value{Type: bincore.TypeShort, Data: bincore.AppendShort(nil, tv)}, nil
	case int32:
		return bincore.Value{Type: bincore.TypeInt, Data: bincore.AppendInt(nil, tv)}, nil
	case int64:
		return bincore.Value{Type: bincore.TypeLong, Data: bincore.AppendLong(nil, tv)}, nil
	case int:
		return bincore.Value{Type: bincore.TypeLong, Data: bincore.AppendLong(nil, int64(tv))}, nil
	case float32:
		return bincore.Value{Type: bincore.TypeFloat, Data: bincore.AppendFloat(nil, tv)}, nil
	case float64:
		return bincore.Value{Type: bincore.TypeDouble, Data: bincore.AppendDouble(nil, tv)}, nil
	case string:
		return bincore.Value{Type: bincore.TypeString, Data: bincore.AppendString(nil, tv)}, nil
	case *string:
		if tv == nil {
			return bincore.Value{Type: bincore.TypeNull}, nil
		}
		return Encode(*tv)
	case uuid.UUID:
		return bincore.Value{Type: bincore.TypeUUID, Data: appendUUID(nil, tv)}, nil
	case time.Time:
		return bincore.Value{Type: bincore.TypeTimestamp, Data: appendTimestamp(nil, tv)}, nil
	case time.Duration:
		return bincore.Value{Type: bincore.TypeTime, Data: bincore.AppendLong(nil, tv.Milliseconds())}, nil
	case decimal.Decimal:
		return bincore.Value{Type: bincore.TypeDecimal, Data: appendDecimal(nil, tv)}, nil
	case Enum:
		data := bincore.AppendInt(bincore.AppendInt(nil, tv.TypeID), tv.Ordinal)
		return bincore.Value{Type: bincore.TypeEnum, Data: data}, nil
	case []byte:
		data := append(bincore.AppendInt(nil, int32(len(tv))), tv...)
		return bincore.Value{Type: bincore.TypeByteArray, Data: data}, nil
	case []int16:
		data := bincore.AppendInt(nil, int32(len(tv)))
		for _, i16 := range tv {
			data = bincore.AppendShort(data, i16)
		}
		return bincore.Value{Type: bincore.TypeShortArray, Data: data}, nil
	case []int32:
		data := bincore.AppendInt(nil, int32(len(tv)))
		for _, i32 := range tv {
			data = bincore.AppendInt(data, i32)
		}
		return bincore.Value{Type: bincore.TypeIntArray, Data: data}, nil
	case []int64:
		data := bincore.AppendInt(nil, int32(len(tv)))
		for _, i64 := range tv {
			data = bincore.AppendLong(data, i64)
		}
		return bincore.Value{Type: bincore.TypeLongArray, Data: data}, nil
	case []float64:
		data := bincore.AppendInt(nil, int32(len(tv)))
		for _, f64 := range tv {
			data = bincore.AppendDouble(data, f64)
		}
		return bincore.Value{Type: bincore.TypeDoubleArray, Data: data}, nil
	case []bool:
		data := bincore.AppendInt(nil, int32(len(tv)))
		for _, b := range tv {
			data = bincore.AppendBool(data, b)
		}
		return bincore.Value{Type: bincore.TypeBoolArray, Data: data}, nil
	case []string:
		return bincore.Value{Type: bincore.TypeStringArray, Data: bincore.AppendStringArray(nil, tv)}, nil
	case []interface{}:
		// -1 is the component type id of Object[].
		data := bincore.AppendInt(bincore.AppendInt(nil, -1), int32(len(tv)))
		var err error
		for _, elem := range tv {
			data, err = AppendObject(data, elem)
			if err != nil {
				return bincore.Value{}, err
			}
		}
		return bincore.Value{Type: bincore.TypeObjectArray, Data: data}, nil
	case []Pair:
		data := append(bincore.AppendInt(nil, int32(len(tv))), byte(HashMap))
		var err error
		for _, p := range tv {
			if data, err = AppendObject(data, p.Key); err != nil {
				return bincore.Value{}, err
			}
			if data, err = AppendObject(data, p.Value); err != nil {
				return bincore.Value{}, err
			}
		}
		return bincore.Value{Type: bincore.TypeMap, Data: data}, nil
	}
	return bincore.Value{}, EncodeError{Value: val}
}

func appendUUID(dst []byte, id uuid.UUID) []byte {
	for i := 7; i >= 0; i-- {
		dst = append(dst, id[i])
	}
	for i := 15; i >= 8; i-- {
		dst = append(dst, id[i])
	}
	return dst
}

// Timestamps are milliseconds since the epoch plus the nanoseconds within
// that millisecond.
func appendTimestamp(dst []byte, t time.Time) []byte {
	ms := t.Unix()*1000 + int64(t.Nanosecond()/int(time.Millisecond))
	nanos := int32(t.Nanosecond() % int(time.Millisecond))
	return bincore.AppendInt(bincore.AppendLong(dst, ms), nanos)
}

func appendDecimal(dst []byte, d decimal.Decimal) []byte {
	coef := new(big.Int).Set(d.Coefficient())
	scale := -d.Exponent()
	if scale < 0 {
		coef.Mul(coef, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-scale)), nil))
		scale = 0
	}
	negative := coef.Sign() < 0
	mag := new(big.Int).Abs(coef).Bytes()
	if len(mag) == 0 || mag[0]&0x80 != 0 {
		mag = append([]byte{0x00}, mag...)
	}
	if negative {
		mag[0] |= 0x80
	}
	dst = bincore.AppendInt(dst, scale)
	dst = bincore.AppendInt(dst, int32(len(mag)))
	return append(dst, mag...)
}
