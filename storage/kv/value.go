package kv

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Kind identifies which primitive a Value holds
type Kind uint8

const (
	// KindInvalid is the kind of the zero Value. It is never stored.
	KindInvalid Kind = iota
	KindBool
	KindBytes
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindString
	// KindBlob holds the output of a serialization codec. It is
	// kept distinct from KindBytes so that raw byte values and
	// serialized values never alias each other.
	KindBlob
)

var kindNames = map[Kind]string{
	KindInvalid: "invalid",
	KindBool:    "bool",
	KindBytes:   "bytes",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindString:  "string",
	KindBlob:    "blob",
}

func (kind Kind) String() string {
	if name, ok := kindNames[kind]; ok {
		return name
	}

	return fmt.Sprintf("kind(%d)", uint8(kind))
}

// Valid returns true if kind is one of the storable kinds
func (kind Kind) Valid() bool {
	return kind >= KindBool && kind <= KindBlob
}

// Value is a tagged value. A Value is immutable once
// constructed: byte payloads are copied on the way in
// and on the way out.
type Value struct {
	kind Kind
	num  uint64
	str  string
}

// BoolValue returns a Value of KindBool
func BoolValue(v bool) Value {
	var n uint64

	if v {
		n = 1
	}

	return Value{kind: KindBool, num: n}
}

// BytesValue returns a Value of KindBytes
func BytesValue(v []byte) Value {
	return Value{kind: KindBytes, str: string(v)}
}

// Int32Value returns a Value of KindInt32
func Int32Value(v int32) Value {
	return Value{kind: KindInt32, num: uint64(uint32(v))}
}

// Int64Value returns a Value of KindInt64
func Int64Value(v int64) Value {
	return Value{kind: KindInt64, num: uint64(v)}
}

// Float32Value returns a Value of KindFloat32
func Float32Value(v float32) Value {
	return Value{kind: KindFloat32, num: uint64(math.Float32bits(v))}
}

// Float64Value returns a Value of KindFloat64
func Float64Value(v float64) Value {
	return Value{kind: KindFloat64, num: math.Float64bits(v)}
}

// StringValue returns a Value of KindString
func StringValue(v string) Value {
	return Value{kind: KindString, str: v}
}

// BlobValue returns a Value of KindBlob
func BlobValue(v []byte) Value {
	return Value{kind: KindBlob, str: string(v)}
}

// Kind returns the kind tag of this value
func (value Value) Kind() Kind {
	return value.kind
}

// AsBool returns the boolean held by value. ok is false
// if value is of any other kind.
func (value Value) AsBool() (v bool, ok bool) {
	if value.kind != KindBool {
		return false, false
	}

	return value.num == 1, true
}

// AsBytes returns a copy of the byte sequence held by value
func (value Value) AsBytes() ([]byte, bool) {
	if value.kind != KindBytes {
		return nil, false
	}

	return []byte(value.str), true
}

func (value Value) AsInt32() (int32, bool) {
	if value.kind != KindInt32 {
		return 0, false
	}

	return int32(uint32(value.num)), true
}

func (value Value) AsInt64() (int64, bool) {
	if value.kind != KindInt64 {
		return 0, false
	}

	return int64(value.num), true
}

func (value Value) AsFloat32() (float32, bool) {
	if value.kind != KindFloat32 {
		return 0, false
	}

	return math.Float32frombits(uint32(value.num)), true
}

func (value Value) AsFloat64() (float64, bool) {
	if value.kind != KindFloat64 {
		return 0, false
	}

	return math.Float64frombits(value.num), true
}

func (value Value) AsString() (string, bool) {
	if value.kind != KindString {
		return "", false
	}

	return value.str, true
}

// AsBlob returns a copy of the serialized payload held by value
func (value Value) AsBlob() ([]byte, bool) {
	if value.kind != KindBlob {
		return nil, false
	}

	return []byte(value.str), true
}

// Equal returns true if both values have the same kind and
// the same payload. Floats compare by bit pattern so that
// NaN equals itself.
func (value Value) Equal(other Value) bool {
	return value.kind == other.kind && value.num == other.num && value.str == other.str
}

// GoString renders value for logs and test diffs
func (value Value) GoString() string {
	switch value.kind {
	case KindBool:
		v, _ := value.AsBool()

		return fmt.Sprintf("bool(%t)", v)
	case KindInt32:
		v, _ := value.AsInt32()

		return fmt.Sprintf("int32(%d)", v)
	case KindInt64:
		v, _ := value.AsInt64()

		return fmt.Sprintf("int64(%d)", v)
	case KindFloat32:
		v, _ := value.AsFloat32()

		return fmt.Sprintf("float32(%g)", v)
	case KindFloat64:
		v, _ := value.AsFloat64()

		return fmt.Sprintf("float64(%g)", v)
	case KindString:
		return fmt.Sprintf("string(%q)", value.str)
	case KindBytes, KindBlob:
		return fmt.Sprintf("%s(%x)", value.kind, value.str)
	}

	return "invalid"
}

// MarshalBinary encodes value as one kind byte followed
// by its payload. Numeric payloads are 8 bytes big endian.
func (value Value) MarshalBinary() ([]byte, error) {
	if !value.kind.Valid() {
		return nil, fmt.Errorf("cannot marshal value of kind %s", value.kind)
	}

	switch value.kind {
	case KindBytes, KindString, KindBlob:
		encoded := make([]byte, 1+len(value.str))
		encoded[0] = byte(value.kind)
		copy(encoded[1:], value.str)

		return encoded, nil
	}

	encoded := make([]byte, 9)
	encoded[0] = byte(value.kind)
	binary.BigEndian.PutUint64(encoded[1:], value.num)

	return encoded, nil
}

// UnmarshalBinary decodes the output of MarshalBinary
func (value *Value) UnmarshalBinary(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty encoded value")
	}

	kind := Kind(data[0])

	if !kind.Valid() {
		return fmt.Errorf("unknown kind tag %d", data[0])
	}

	switch kind {
	case KindBytes, KindString, KindBlob:
		*value = Value{kind: kind, str: string(data[1:])}

		return nil
	}

	if len(data) != 9 {
		return fmt.Errorf("%s payload must be 8 bytes, got %d", kind, len(data)-1)
	}

	*value = Value{kind: kind, num: binary.BigEndian.Uint64(data[1:])}

	return nil
}
