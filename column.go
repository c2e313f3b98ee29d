// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bdat

// Column describes one field of a table's row schema. Count greater
// than one means the column's cells are Lists of that length; a
// non-empty Flags means the cells are bitfields extracted from a single
// integral value. A column is never both.
type Column struct {
	Label      Label
	ValueType  ValueType
	Count      int
	Flags      []FlagDef
	ByteOffset int
}

// Shape reports which CellShape this column's cells must take.
func (c Column) Shape() CellShape {
	switch {
	case len(c.Flags) > 0:
		return ShapeFlags
	case c.Count > 1:
		return ShapeList
	default:
		return ShapeSingle
	}
}

// validate checks a column's own invariants, independent of any table
// or dialect: count must be positive, and a column cannot mix list and
// flag shape.
func (c Column) validate() error {
	if c.Count < 1 {
		return errMalformedTable("column count must be >= 1")
	}
	if len(c.Flags) > 0 && c.Count > 1 {
		return errInvalidFlagType(c.ValueType)
	}
	if len(c.Flags) > 0 {
		switch c.ValueType {
		case ValueTypeU8, ValueTypeU16, ValueTypeU32, ValueTypeI8, ValueTypeI16, ValueTypeI32:
		default:
			return errInvalidFlagType(c.ValueType)
		}
	}
	return nil
}
