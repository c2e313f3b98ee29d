// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bdat

import "fmt"

// Dialect identifies a BDAT format family. Legacy and modern files are
// structurally incompatible; LegacySwitch/LegacyWii/LegacyX differ only
// in endianness, header size and float representation.
type Dialect int

const (
	// DialectUnknown is the zero value; no table or file should ever
	// carry it past construction.
	DialectUnknown Dialect = iota

	// DialectModern is the newer, little-endian, hash-labelled format.
	DialectModern

	// DialectLegacySwitch is the little-endian legacy format.
	DialectLegacySwitch

	// DialectLegacyWii is the big-endian legacy format with a 32-byte
	// table header.
	DialectLegacyWii

	// DialectLegacyX is the big-endian legacy format with a 64-byte
	// table header and base-4096 fixed-point floats.
	DialectLegacyX
)

func (d Dialect) String() string {
	switch d {
	case DialectModern:
		return "modern"
	case DialectLegacySwitch:
		return "legacy-switch"
	case DialectLegacyWii:
		return "legacy-wii"
	case DialectLegacyX:
		return "legacy-x"
	default:
		return "unknown"
	}
}

// IsLegacy reports whether d belongs to the legacy family.
func (d Dialect) IsLegacy() bool {
	return d == DialectLegacySwitch || d == DialectLegacyWii || d == DialectLegacyX
}

// ValueType is the 1-byte on-disk tag identifying a Value's shape. The
// numeric values are part of the wire format and must never be
// renumbered.
type ValueType uint8

const (
	ValueTypeUnknown      ValueType = 0
	ValueTypeU8           ValueType = 1
	ValueTypeU16          ValueType = 2
	ValueTypeU32          ValueType = 3
	ValueTypeI8           ValueType = 4
	ValueTypeI16          ValueType = 5
	ValueTypeI32          ValueType = 6
	ValueTypeString       ValueType = 7
	ValueTypeFloat        ValueType = 8
	ValueTypeHashRef      ValueType = 9
	ValueTypePercent      ValueType = 10
	ValueTypeDebugString  ValueType = 11
	ValueTypeUnknown12    ValueType = 12
	ValueTypeMessageID    ValueType = 13
	valueTypeCount                  = 14
)

// modernOnly reports whether a value type is only valid in the modern
// dialect (tags 9-13).
func (t ValueType) modernOnly() bool {
	return t >= ValueTypeHashRef && t <= ValueTypeMessageID
}

// DataLen returns the fixed on-disk width of the type in bytes, or 0
// for ValueTypeUnknown which carries no payload.
func (t ValueType) DataLen() int {
	switch t {
	case ValueTypeUnknown:
		return 0
	case ValueTypeU8, ValueTypeI8, ValueTypePercent, ValueTypeUnknown12:
		return 1
	case ValueTypeU16, ValueTypeI16, ValueTypeMessageID:
		return 2
	case ValueTypeU32, ValueTypeI32, ValueTypeString, ValueTypeFloat, ValueTypeHashRef, ValueTypeDebugString:
		return 4
	default:
		return 0
	}
}

func (t ValueType) String() string {
	switch t {
	case ValueTypeUnknown:
		return "Unknown"
	case ValueTypeU8:
		return "U8"
	case ValueTypeU16:
		return "U16"
	case ValueTypeU32:
		return "U32"
	case ValueTypeI8:
		return "I8"
	case ValueTypeI16:
		return "I16"
	case ValueTypeI32:
		return "I32"
	case ValueTypeString:
		return "String"
	case ValueTypeFloat:
		return "Float"
	case ValueTypeHashRef:
		return "HashRef"
	case ValueTypePercent:
		return "Percent"
	case ValueTypeDebugString:
		return "DebugString"
	case ValueTypeUnknown12:
		return "Unknown12"
	case ValueTypeMessageID:
		return "MessageId"
	default:
		return fmt.Sprintf("ValueType(%d)", uint8(t))
	}
}

// valueTypeFromTag validates a raw on-disk tag byte.
func valueTypeFromTag(tag uint8) (ValueType, error) {
	if tag >= valueTypeCount {
		return 0, errUnknownValueType(tag)
	}
	return ValueType(tag), nil
}

// FloatRepr distinguishes the two wire representations a Float value
// may carry, plus the "not yet known" state produced when a value is
// decoded without a dialect in hand.
type FloatRepr int

const (
	// FloatUnknown marks a float loaded without a known dialect; it
	// must be promoted via Value.Promote before it can be written.
	FloatUnknown FloatRepr = iota
	// FloatIEEE is plain IEEE-754 binary32.
	FloatIEEE
	// FloatFixed4096 is the LegacyX base-4096 fixed-point encoding.
	FloatFixed4096
)

// Label is a column or table name. The three variants preserve where
// the name came from: Hash is the only form modern files can store;
// Text is what legacy files store; Unhashed is a Text known to be the
// plaintext of some externally-known hash, kept distinct from Text so
// callers can tell recovered names from names that were always
// plaintext. Equality is by variant: Hash(h) never equals Text(s) even
// if murmur3(s) == h.
type Label struct {
	kind labelKind
	hash uint32
	text string
}

type labelKind uint8

const (
	labelHash labelKind = iota
	labelTextKind
	labelUnhashed
)

// HashLabel builds a Label carrying a raw 32-bit hash.
func HashLabel(h uint32) Label { return Label{kind: labelHash, hash: h} }

// TextLabel builds a Label carrying plain text.
func TextLabel(s string) Label { return Label{kind: labelTextKind, text: s} }

// UnhashedLabel builds a Label carrying text known to be the plaintext
// of some hash, preserving that provenance.
func UnhashedLabel(s string) Label { return Label{kind: labelUnhashed, text: s} }

// IsHash reports whether the label stores a raw hash rather than text.
func (l Label) IsHash() bool { return l.kind == labelHash }

// Hash returns the label's hash. If the label carries text, the hash
// is computed on demand via Murmur3.
func (l Label) Hash() uint32 {
	if l.kind == labelHash {
		return l.hash
	}
	return Murmur3([]byte(l.text), 0)
}

// Text returns the label's text and true, or "" and false if the label
// only carries a hash.
func (l Label) Text() (string, bool) {
	if l.kind == labelHash {
		return "", false
	}
	return l.text, true
}

// Equal reports variant-exact equality, per spec: Hash(h) != Text(s)
// even when murmur3(s) == h.
func (l Label) Equal(o Label) bool {
	if l.kind != o.kind {
		return false
	}
	if l.kind == labelHash {
		return l.hash == o.hash
	}
	return l.text == o.text
}

// String formats the label the way the original tooling displays it:
// hashes as "<XXXXXXXX>", text as itself.
func (l Label) String() string {
	if l.kind == labelHash {
		return fmt.Sprintf("<%08X>", l.hash)
	}
	return l.text
}

// StringPlus formats a hash label without angle brackets, matching the
// "sign_plus" formatting mode used by the original tooling's debug
// dumps.
func (l Label) StringPlus() string {
	if l.kind == labelHash {
		return fmt.Sprintf("%08X", l.hash)
	}
	return l.text
}

// ParseLabel extracts a Label from text the way name-dictionary tools
// accept it: an 8-hex-digit literal wrapped in angle brackets
// ("<01ABCDEF>") is always a hash; anything else is hashed only if
// forceHash is set, otherwise kept as plain text.
func ParseLabel(text string, forceHash bool) Label {
	if len(text) == 10 && text[0] == '<' && text[9] == '>' {
		var n uint32
		if _, err := fmt.Sscanf(text[1:9], "%08X", &n); err == nil {
			return HashLabel(n)
		}
	}
	if forceHash {
		return HashLabel(Murmur3([]byte(text), 0))
	}
	return TextLabel(text)
}

// Value is a tagged union over ValueType. Exactly one of the typed
// fields is meaningful, selected by Type. This mirrors the discriminant
// + inline-payload encoding the design notes call for in place of a
// class hierarchy.
type Value struct {
	Type ValueType

	u32  uint32
	i32  int32
	f32  float32
	str  string
	frep FloatRepr
}

// Unknown returns the zero Value, carrying no payload.
func Unknown() Value { return Value{Type: ValueTypeUnknown} }

func U8(v uint8) Value   { return Value{Type: ValueTypeU8, u32: uint32(v)} }
func U16(v uint16) Value { return Value{Type: ValueTypeU16, u32: uint32(v)} }
func U32(v uint32) Value { return Value{Type: ValueTypeU32, u32: v} }
func I8(v int8) Value    { return Value{Type: ValueTypeI8, i32: int32(v)} }
func I16(v int16) Value  { return Value{Type: ValueTypeI16, i32: int32(v)} }
func I32(v int32) Value  { return Value{Type: ValueTypeI32, i32: v} }
func Str(v string) Value { return Value{Type: ValueTypeString, str: v} }
func HashRef(v uint32) Value   { return Value{Type: ValueTypeHashRef, u32: v} }
func Percent(v uint8) Value    { return Value{Type: ValueTypePercent, u32: uint32(v)} }
func DebugString(v string) Value { return Value{Type: ValueTypeDebugString, str: v} }
func Unknown12(v uint8) Value  { return Value{Type: ValueTypeUnknown12, u32: uint32(v)} }
func MessageID(v uint16) Value { return Value{Type: ValueTypeMessageID, u32: uint32(v)} }

// FloatIEEEValue builds a Float value known to be IEEE-754.
func FloatIEEEValue(v float32) Value {
	return Value{Type: ValueTypeFloat, f32: v, frep: FloatIEEE}
}

// FloatFixedValue builds a Float value known to be LegacyX fixed-point,
// storing the real number directly; bit-level conversion happens at
// write time (see float.go).
func FloatFixedValue(v float32) Value {
	return Value{Type: ValueTypeFloat, f32: v, frep: FloatFixed4096}
}

// FloatUnknownValue builds a Float value with no known representation
// yet; it must be promoted with Promote before it can be serialised.
func FloatUnknownValue(v float32) Value {
	return Value{Type: ValueTypeFloat, f32: v, frep: FloatUnknown}
}

// FloatRepr reports which wire representation a Float value carries.
// Calling this on a non-Float value returns FloatUnknown.
func (v Value) FloatRepr() FloatRepr {
	if v.Type != ValueTypeFloat {
		return FloatUnknown
	}
	return v.frep
}

// Promote resolves an Unknown float representation against a dialect,
// returning a new Value. Non-float or already-resolved values are
// returned unchanged.
func (v Value) Promote(d Dialect) Value {
	if v.Type != ValueTypeFloat || v.frep != FloatUnknown {
		return v
	}
	if d == DialectLegacyX {
		v.frep = FloatFixed4096
	} else {
		v.frep = FloatIEEE
	}
	return v
}

// AsUint returns the value bit-cast / widened to uint32 for any
// unsigned or hash-like integral type, matching the "to_integer"
// widening the table model calls for.
func (v Value) AsUint() (uint32, error) {
	switch v.Type {
	case ValueTypeU8, ValueTypeU16, ValueTypeU32, ValueTypeHashRef,
		ValueTypePercent, ValueTypeUnknown12, ValueTypeMessageID:
		return v.u32, nil
	case ValueTypeI8, ValueTypeI16, ValueTypeI32:
		return uint32(v.i32), nil
	default:
		return 0, errValueCast(v.Type)
	}
}

// AsInt returns the value bit-cast to int32 for any integral type.
func (v Value) AsInt() (int32, error) {
	switch v.Type {
	case ValueTypeI8, ValueTypeI16, ValueTypeI32:
		return v.i32, nil
	case ValueTypeU8, ValueTypeU16, ValueTypeU32, ValueTypeHashRef,
		ValueTypePercent, ValueTypeUnknown12, ValueTypeMessageID:
		return int32(v.u32), nil
	default:
		return 0, errValueCast(v.Type)
	}
}

// AsFloat returns the f32 representation of a Float value.
func (v Value) AsFloat() (float32, error) {
	if v.Type != ValueTypeFloat {
		return 0, errValueCast(v.Type)
	}
	return v.f32, nil
}

// AsString returns the string payload of a String or DebugString
// value.
func (v Value) AsString() (string, error) {
	if v.Type != ValueTypeString && v.Type != ValueTypeDebugString {
		return "", errValueCast(v.Type)
	}
	return v.str, nil
}

// String renders a value for debugging, matching the original
// tooling's Display impls (Percent appends "%", HashRef renders as a
// hash label).
func (v Value) String() string {
	switch v.Type {
	case ValueTypeUnknown:
		return ""
	case ValueTypeHashRef:
		return HashLabel(v.u32).String()
	case ValueTypePercent:
		return fmt.Sprintf("%d%%", v.u32)
	case ValueTypeU8, ValueTypeU16, ValueTypeU32, ValueTypeUnknown12, ValueTypeMessageID:
		return fmt.Sprintf("%d", v.u32)
	case ValueTypeI8, ValueTypeI16, ValueTypeI32:
		return fmt.Sprintf("%d", v.i32)
	case ValueTypeString, ValueTypeDebugString:
		return v.str
	case ValueTypeFloat:
		return fmt.Sprintf("%g", v.f32)
	default:
		return fmt.Sprintf("<value type %s>", v.Type)
	}
}
