// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bdat

import (
	"encoding/binary"
	"sort"
)

// WriteModernFile serialises a set of tables into a complete modern
// BDAT file image: a 16-byte fixed header, a table-offset array, then
// each table's body back to back.
func WriteModernFile(tables []*Table) ([]byte, error) {
	order := binary.LittleEndian

	bodies := make([][]byte, len(tables))
	for i, t := range tables {
		body, err := writeModernTable(t, order)
		if err != nil {
			return nil, err
		}
		bodies[i] = body
	}

	headerLen := 16 + len(tables)*4
	total := headerLen
	offsets := make([]uint32, len(bodies))
	for i, b := range bodies {
		offsets[i] = uint32(total)
		total += len(b)
	}

	buf := make([]byte, total)
	cur := NewByteCursor(buf)
	if err := cur.WriteBytes(0, bdatMagic[:]); err != nil {
		return nil, err
	}
	if err := cur.WriteU32(4, modernVersionWord, order); err != nil {
		return nil, err
	}
	if err := cur.WriteU32(8, uint32(len(tables)), order); err != nil {
		return nil, err
	}
	if err := cur.WriteU32(12, uint32(total), order); err != nil {
		return nil, err
	}
	for i, off := range offsets {
		if err := cur.WriteU32(16+i*4, off, order); err != nil {
			return nil, err
		}
	}
	for i, b := range bodies {
		copy(buf[offsets[i]:], b)
	}
	return buf, nil
}

// modernStringRegion lays out the string/hash table that sits at the
// end of a modern table body. Labels are always written hashed (the
// region's first byte is the 0x00 marker the reader keys its
// are_labels_hashed check on); each label gets a fixed 4-byte slot
// holding its raw hash, and each distinct String/DebugString cell value
// gets a deduplicated NUL-terminated slot, exactly as the reader
// resolves both kinds of pointer relative to the region's own start.
type modernStringRegion struct {
	buf        []byte
	order      binary.ByteOrder
	stringOffs map[string]int
}

func newModernStringRegion(order binary.ByteOrder) *modernStringRegion {
	return &modernStringRegion{buf: []byte{0}, order: order, stringOffs: make(map[string]int)}
}

// putLabel reserves and writes a fixed 4-byte hash slot, returning its
// offset relative to the region start.
func (r *modernStringRegion) putLabel(l Label) int {
	off := len(r.buf)
	word := make([]byte, 4)
	r.order.PutUint32(word, l.Hash())
	r.buf = append(r.buf, word...)
	return off
}

// putString interns s as a NUL-terminated run, returning its offset
// relative to the region start. Repeated values collapse to the same
// offset.
func (r *modernStringRegion) putString(s string) int {
	if off, ok := r.stringOffs[s]; ok {
		return off
	}
	off := len(r.buf)
	r.buf = append(r.buf, s...)
	r.buf = append(r.buf, 0)
	r.stringOffs[s] = off
	return off
}

func writeModernTable(t *Table, order binary.ByteOrder) ([]byte, error) {
	columnCount := len(t.Columns)
	rowCount := len(t.Rows)

	rowLength := 0
	for _, c := range t.Columns {
		if len(c.Flags) > 0 || c.Count > 1 {
			return nil, errMalformedTable("modern columns cannot carry flags or repeat (T3)")
		}
		rowLength += c.ValueType.DataLen()
	}

	const headerLen = modernTableHeaderFixedSize
	columnOffset := headerLen
	hashOffset := pad4(columnOffset + columnCount*modernColumnDefSize)
	hashDefsLen := rowCount * modernHashDefSize
	rowOffset := pad4(hashOffset + hashDefsLen)
	rowsLen := rowCount * rowLength
	stringOffset := pad4(rowOffset + rowsLen)

	strs := newModernStringRegion(order)
	strs.putLabel(t.Name) // always lands at relative offset 1, matching the reader's fixed table-name slot
	colLabelOff := make([]int, columnCount)
	for i, c := range t.Columns {
		colLabelOff[i] = strs.putLabel(c.Label)
	}
	// Intern every string cell value up front so the region's final size
	// is known before the buffer is allocated and the header is written.
	for _, row := range t.Rows {
		for ci, col := range t.Columns {
			if col.ValueType != ValueTypeString && col.ValueType != ValueTypeDebugString {
				continue
			}
			s, err := row.Cells[ci].Single.AsString()
			if err != nil {
				return nil, err
			}
			strs.putString(s)
		}
	}

	fileLen := pad4(stringOffset + len(strs.buf))
	buf := make([]byte, fileLen)
	cur := NewByteCursor(buf)

	if err := cur.WriteBytes(0, bdatMagic[:]); err != nil {
		return nil, err
	}
	writes := []struct {
		off int
		val uint32
	}{
		{4, modernTableTypeTag},
		{8, uint32(columnCount)},
		{12, uint32(rowCount)},
		{16, t.BaseID},
		{20, 0},
		{24, uint32(columnOffset)},
		{28, uint32(hashOffset)},
		{32, uint32(rowOffset)},
		{36, uint32(rowLength)},
		{40, uint32(stringOffset)},
		{44, uint32(len(strs.buf))},
	}
	for _, w := range writes {
		if err := cur.WriteU32(w.off, w.val, order); err != nil {
			return nil, err
		}
	}

	for i, c := range t.Columns {
		recBase := columnOffset + i*modernColumnDefSize
		if err := cur.WriteU8(recBase, uint8(c.ValueType)); err != nil {
			return nil, err
		}
		if err := cur.WriteU16(recBase+1, uint16(colLabelOff[i]), order); err != nil {
			return nil, err
		}
	}

	if err := writeModernHashDefs(cur, t, hashOffset, order); err != nil {
		return nil, err
	}

	for i, row := range t.Rows {
		rowStart := rowOffset + i*rowLength
		byteCursor := 0
		for ci, col := range t.Columns {
			n, err := writeModernValue(cur, strs, rowStart+byteCursor, col.ValueType, row.Cells[ci].Single, order)
			if err != nil {
				return nil, err
			}
			byteCursor += n
		}
	}

	if err := cur.WriteBytes(stringOffset, strs.buf); err != nil {
		return nil, err
	}

	return buf, nil
}

// writeModernHashDefs fills the hash-def section for a primary-key
// table (first column HashRef): one (hash, row index) pair per row,
// sorted by hash, mirroring the closed directory the reader's table
// length calculation sizes for but never itself parses. Non-primary-key
// tables leave the section zeroed.
func writeModernHashDefs(cur *ByteCursor, t *Table, hashOffset int, order binary.ByteOrder) error {
	if len(t.Columns) == 0 || t.Columns[0].ValueType != ValueTypeHashRef {
		return nil
	}
	type pair struct {
		hash uint32
		row  uint32
	}
	pairs := make([]pair, 0, len(t.Rows))
	for i, row := range t.Rows {
		h, err := row.Cells[0].Single.AsUint()
		if err != nil {
			continue
		}
		pairs = append(pairs, pair{hash: h, row: uint32(i)})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].hash < pairs[j].hash })
	for i, p := range pairs {
		base := hashOffset + i*modernHashDefSize
		if err := cur.WriteU32(base, p.hash, order); err != nil {
			return err
		}
		if err := cur.WriteU32(base+4, p.row, order); err != nil {
			return err
		}
	}
	return nil
}

func writeModernValue(cur *ByteCursor, strs *modernStringRegion, offset int, vt ValueType, v Value, order binary.ByteOrder) (int, error) {
	switch vt {
	case ValueTypeUnknown:
		return 0, nil
	case ValueTypeU8:
		u, err := v.AsUint()
		return 1, firstErr(err, cur.WriteU8(offset, uint8(u)))
	case ValueTypeU16:
		u, err := v.AsUint()
		return 2, firstErr(err, cur.WriteU16(offset, uint16(u), order))
	case ValueTypeU32:
		u, err := v.AsUint()
		return 4, firstErr(err, cur.WriteU32(offset, u, order))
	case ValueTypeI8:
		n, err := v.AsInt()
		return 1, firstErr(err, cur.WriteU8(offset, uint8(int8(n))))
	case ValueTypeI16:
		n, err := v.AsInt()
		return 2, firstErr(err, cur.WriteU16(offset, uint16(int16(n)), order))
	case ValueTypeI32:
		n, err := v.AsInt()
		return 4, firstErr(err, cur.WriteU32(offset, uint32(n), order))
	case ValueTypeString:
		s, err := v.AsString()
		if err != nil {
			return 0, err
		}
		return 4, cur.WriteU32(offset, uint32(strs.putString(s)), order)
	case ValueTypeFloat:
		if v.FloatRepr() == FloatUnknown {
			return 0, errFormatConvert("float value has no dialect-specific representation; call Promote before writing")
		}
		f, err := v.AsFloat()
		return 4, firstErr(err, cur.WriteU32(offset, float32Bits(f), order))
	case ValueTypeHashRef:
		u, err := v.AsUint()
		return 4, firstErr(err, cur.WriteU32(offset, u, order))
	case ValueTypePercent:
		u, err := v.AsUint()
		return 1, firstErr(err, cur.WriteU8(offset, uint8(u)))
	case ValueTypeDebugString:
		s, err := v.AsString()
		if err != nil {
			return 0, err
		}
		return 4, cur.WriteU32(offset, uint32(strs.putString(s)), order)
	case ValueTypeUnknown12:
		u, err := v.AsUint()
		return 1, firstErr(err, cur.WriteU8(offset, uint8(u)))
	case ValueTypeMessageID:
		u, err := v.AsUint()
		return 2, firstErr(err, cur.WriteU16(offset, uint16(u), order))
	default:
		return 0, errUnknownValueType(uint8(vt))
	}
}

func firstErr(a, b error) error {
	if a != nil {
		return a
	}
	return b
}
