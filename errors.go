// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bdat

import "fmt"

// Kind identifies the category of a boundary error returned by this
// package. Every error surfaced across the package boundary carries one
// of these, so callers can branch on failure class without string
// matching.
type Kind int

const (
	// KindMalformedFile is returned when a file-level structure (magic,
	// header layout) does not match the expected shape.
	KindMalformedFile Kind = iota

	// KindMalformedTable is returned when a table-level structure does
	// not match the expected shape.
	KindMalformedTable

	// KindUnknownValueType is returned when a cell-info record names a
	// value-type tag this package does not recognise.
	KindUnknownValueType

	// KindUnknownCellType is returned when a cell-info record names a
	// tag byte other than value/list/flags.
	KindUnknownCellType

	// KindUnsupportedType is returned when a value type is valid but
	// not permitted for the dialect being written.
	KindUnsupportedType

	// KindInvalidFlagType is returned when a flag is declared on a
	// column whose value type cannot carry flags.
	KindInvalidFlagType

	// KindVersionDetect is returned when the version dispatcher cannot
	// settle on a dialect for the given bytes.
	KindVersionDetect

	// KindFormatConvert is returned when converting a value between
	// wire representations fails (e.g. writing a float whose
	// representation is still Unknown).
	KindFormatConvert

	// KindValueCast is returned when one of Value's accessors (AsUint,
	// AsInt, AsFloat, AsString) is called on a value of another type.
	KindValueCast

	// KindDuplicateKey is returned when two rows of a primary-key
	// modern table share a hash.
	KindDuplicateKey

	// KindInvalidLength is returned when a length field cannot be
	// represented in the target integer width.
	KindInvalidLength

	// KindUTF8 is returned when string bytes are not valid UTF-8.
	KindUTF8

	// KindIO is returned verbatim for underlying I/O failures.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindMalformedFile:
		return "malformed file"
	case KindMalformedTable:
		return "malformed table"
	case KindUnknownValueType:
		return "unknown value type"
	case KindUnknownCellType:
		return "unknown cell type"
	case KindUnsupportedType:
		return "unsupported type for dialect"
	case KindInvalidFlagType:
		return "invalid flag type"
	case KindVersionDetect:
		return "version detection failed"
	case KindFormatConvert:
		return "format conversion failed"
	case KindValueCast:
		return "value cast failed"
	case KindDuplicateKey:
		return "duplicate key"
	case KindInvalidLength:
		return "invalid length"
	case KindUTF8:
		return "invalid utf-8"
	case KindIO:
		return "i/o error"
	default:
		return "unknown error"
	}
}

// Error is the error type returned at every package boundary. Kind
// selects the error family; the remaining fields are populated
// depending on Kind, matching the payloads spec'd for each kind.
type Error struct {
	Kind Kind

	// Byte tag payload for KindUnknownValueType / KindUnknownCellType.
	Tag uint8

	// ValueType payload for KindUnsupportedType / KindInvalidFlagType /
	// KindValueCast.
	ValueType ValueType

	// Dialect payload for KindUnsupportedType.
	Dialect Dialect

	// DuplicateKey payload.
	LabelA, LabelB Label
	RowA, RowB     uint32

	Reason string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnknownValueType:
		return fmt.Sprintf("bdat: unknown value type 0x%02x", e.Tag)
	case KindUnknownCellType:
		return fmt.Sprintf("bdat: unknown cell type 0x%02x", e.Tag)
	case KindUnsupportedType:
		return fmt.Sprintf("bdat: value type %s unsupported for dialect %s", e.ValueType, e.Dialect)
	case KindInvalidFlagType:
		return fmt.Sprintf("bdat: value type %s cannot carry flags", e.ValueType)
	case KindValueCast:
		return fmt.Sprintf("bdat: cannot cast value of type %s", e.ValueType)
	case KindDuplicateKey:
		return fmt.Sprintf("bdat: duplicate key: row %d (%s) and row %d (%s) share a hash",
			e.RowA, e.LabelA, e.RowB, e.LabelB)
	case KindVersionDetect, KindFormatConvert:
		if e.Reason != "" {
			return fmt.Sprintf("bdat: %s: %s", e.Kind, e.Reason)
		}
		return fmt.Sprintf("bdat: %s", e.Kind)
	case KindIO, KindUTF8:
		if e.Err != nil {
			return fmt.Sprintf("bdat: %s: %v", e.Kind, e.Err)
		}
		return fmt.Sprintf("bdat: %s", e.Kind)
	default:
		if e.Reason != "" {
			return fmt.Sprintf("bdat: %s: %s", e.Kind, e.Reason)
		}
		return fmt.Sprintf("bdat: %s", e.Kind)
	}
}

// Unwrap exposes the wrapped cause, if any, to errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

func errMalformedFile(reason string) error {
	return &Error{Kind: KindMalformedFile, Reason: reason}
}

func errMalformedTable(reason string) error {
	return &Error{Kind: KindMalformedTable, Reason: reason}
}

func errUnknownValueType(tag uint8) error {
	return &Error{Kind: KindUnknownValueType, Tag: tag}
}

func errUnknownCellType(tag uint8) error {
	return &Error{Kind: KindUnknownCellType, Tag: tag}
}

func errUnsupportedType(vt ValueType, d Dialect) error {
	return &Error{Kind: KindUnsupportedType, ValueType: vt, Dialect: d}
}

func errInvalidFlagType(vt ValueType) error {
	return &Error{Kind: KindInvalidFlagType, ValueType: vt}
}

func errVersionDetect(reason string) error {
	return &Error{Kind: KindVersionDetect, Reason: reason}
}

func errFormatConvert(detail string) error {
	return &Error{Kind: KindFormatConvert, Reason: detail}
}

func errValueCast(vt ValueType) error {
	return &Error{Kind: KindValueCast, ValueType: vt}
}

func errDuplicateKey(labelA, labelB Label, rowA, rowB uint32) error {
	return &Error{Kind: KindDuplicateKey, LabelA: labelA, LabelB: labelB, RowA: rowA, RowB: rowB}
}

func errInvalidLength(reason string) error {
	return &Error{Kind: KindInvalidLength, Reason: reason}
}

func errUTF8(err error) error {
	return &Error{Kind: KindUTF8, Err: err}
}

func errIO(err error) error {
	return &Error{Kind: KindIO, Err: err}
}

// ErrOutsideBoundary is returned by the byte cursor when a read or
// write would cross the end of the backing buffer.
var ErrOutsideBoundary = errMalformedFile("reading data outside boundary")
