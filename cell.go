// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bdat

// CellShape identifies which of the three forms a Cell takes.
type CellShape int

const (
	// ShapeSingle holds exactly one Value. The only shape modern
	// tables permit.
	ShapeSingle CellShape = iota
	// ShapeList holds a fixed-length homogeneous sequence of Values.
	// Legacy only.
	ShapeList
	// ShapeFlags holds one decoded integer per FlagDef declared on the
	// parent column. Legacy only.
	ShapeFlags
)

// Cell is one row's value for one column. Its shape must match the
// parent Column's shape (invariant T1).
type Cell struct {
	Shape  CellShape
	Single Value
	List   []Value
	Flags  []uint32
}

// SingleCell wraps v as a ShapeSingle cell.
func SingleCell(v Value) Cell { return Cell{Shape: ShapeSingle, Single: v} }

// ListCell wraps vs as a ShapeList cell.
func ListCell(vs []Value) Cell { return Cell{Shape: ShapeList, List: vs} }

// FlagsCell wraps decoded flag values as a ShapeFlags cell.
func FlagsCell(vs []uint32) Cell { return Cell{Shape: ShapeFlags, Flags: vs} }

// FlagDef declares one bitfield extracted from an integral parent
// column. Multiple FlagDefs may share a parent; each extracts
// (value & Mask) >> BitIndex.
type FlagDef struct {
	Label    Label
	BitIndex uint8
	Mask     uint32
}

// Extract pulls this flag's value out of a raw integer read from the
// parent column.
func (f FlagDef) Extract(raw uint32) uint32 {
	return (raw & f.Mask) >> f.BitIndex
}

// Pack folds val back into acc at this flag's position, for writing.
func (f FlagDef) Pack(acc, val uint32) uint32 {
	return acc | ((val << f.BitIndex) & f.Mask)
}
