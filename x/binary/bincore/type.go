// Copyright (C) MongoDB, Inc. 2024-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bincore

// Type represents an Ignite binary type code. Every typed object on the wire
// starts with one of these bytes.
type Type byte

// These constants uniquely refer to each Ignite binary type.
const (
	TypeByte           Type = 1
	TypeShort          Type = 2
	TypeInt            Type = 3
	TypeLong           Type = 4
	TypeFloat          Type = 5
	TypeDouble         Type = 6
	TypeChar           Type = 7
	TypeBool           Type = 8
	TypeString         Type = 9
	TypeUUID           Type = 10
	TypeDate           Type = 11
	TypeByteArray      Type = 12
	TypeShortArray     Type = 13
	TypeIntArray       Type = 14
	TypeLongArray      Type = 15
	TypeFloatArray     Type = 16
	TypeDoubleArray    Type = 17
	TypeCharArray      Type = 18
	TypeBoolArray      Type = 19
	TypeStringArray    Type = 20
	TypeUUIDArray      Type = 21
	TypeDateArray      Type = 22
	TypeObjectArray    Type = 23
	TypeCollection     Type = 24
	TypeMap            Type = 25
	TypeBinaryObject   Type = 27
	TypeEnum           Type = 28
	TypeEnumArray      Type = 29
	TypeDecimal        Type = 30
	TypeDecimalArray   Type = 31
	TypeTimestamp      Type = 33
	TypeTimestampArray Type = 34
	TypeTime           Type = 36
	TypeTimeArray      Type = 37
	TypeBinaryEnum     Type = 38
	TypeNull           Type = 101
	TypeComplexObject  Type = 103
)

// String returns the string representation of the Ignite type's name.
func (t Type) String() string {
	switch t {
	case TypeByte:
		return "byte"
	case TypeShort:
		return "short"
	case TypeInt:
		return "int"
	case TypeLong:
		return "long"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeChar:
		return "char"
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	case TypeUUID:
		return "uuid"
	case TypeDate:
		return "date"
	case TypeByteArray:
		return "byte array"
	case TypeShortArray:
		return "short array"
	case TypeIntArray:
		return "int array"
	case TypeLongArray:
		return "long array"
	case TypeFloatArray:
		return "float array"
	case TypeDoubleArray:
		return "double array"
	case TypeCharArray:
		return "char array"
	case TypeBoolArray:
		return "bool array"
	case TypeStringArray:
		return "string array"
	case TypeUUIDArray:
		return "uuid array"
	case TypeDateArray:
		return "date array"
	case TypeObjectArray:
		return "object array"
	case TypeCollection:
		return "collection"
	case TypeMap:
		return "map"
	case TypeBinaryObject:
		return "binary object"
	case TypeEnum:
		return "enum"
	case TypeEnumArray:
		return "enum array"
	case TypeDecimal:
		return "decimal"
	case TypeDecimalArray:
		return "decimal array"
	case TypeTimestamp:
		return "timestamp"
	case TypeTimestampArray:
		return "timestamp array"
	case TypeTime:
		return "time"
	case TypeTimeArray:
		return "time array"
	case TypeBinaryEnum:
		return "binary enum"
	case TypeNull:
		return "null"
	case TypeComplexObject:
		return "complex object"
	default:
		return "invalid"
	}
}

// IsValid returns true if t is a type code this package knows how to skip over.
func (t Type) IsValid() bool { return t.String() != "invalid" }

// primitiveArrayElemSize returns the width of one element of a primitive array type.
func primitiveArrayElemSize(t Type) (int, bool) {
	switch t {
	case TypeByteArray, TypeBoolArray:
		return 1, true
	case TypeShortArray, TypeCharArray:
		return 2, true
	case TypeIntArray, TypeFloatArray:
		return 4, true
	case TypeLongArray, TypeDoubleArray:
		return 8, true
	}
	return 0, false
}
