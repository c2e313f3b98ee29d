// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bdat

import "encoding/binary"

// WriteLegacyFile serialises tables into a complete legacy BDAT image:
// a leading table-count/file-size/offset-list header (the same shape
// DetectDialect and readLegacyTableList scan) followed by each table's
// own 64-byte-headed body, back to back.
func WriteLegacyFile(tables []*Table, opts LegacyWriteOptions) ([]byte, error) {
	if opts.Endian == nil {
		opts.Endian = binary.LittleEndian
	}
	bodies := make([][]byte, len(tables))
	for i, t := range tables {
		body, err := WriteLegacyTable(t, opts)
		if err != nil {
			return nil, err
		}
		bodies[i] = body
	}

	listStart := 8
	listEnd := listStart + len(tables)*4 + 4 // +4 for the zero terminator word
	offsets := make([]uint32, len(tables))
	pos := listEnd
	for i, b := range bodies {
		offsets[i] = uint32(pos)
		pos += len(b)
	}

	buf := make([]byte, pos)
	opts.Endian.PutUint32(buf[0:4], uint32(len(tables)))
	opts.Endian.PutUint32(buf[4:8], uint32(pos))
	for i, off := range offsets {
		opts.Endian.PutUint32(buf[listStart+i*4:], off)
	}
	// buf[listEnd-4:listEnd] is already zero, the list terminator.

	for i, b := range bodies {
		copy(buf[offsets[i]:], b)
	}
	return buf, nil
}

type legacyColLayout struct {
	byteOffset int
}

// WriteLegacyTable serialises a single table into the 64-byte-headed
// legacy body format, honouring opts.HashSlots in full (REDESIGN FLAG
// 1: the original writer ignored its own hash-modulo option and always
// wrote 61) and writing the real checksum into the header's checksum
// field rather than leaving it zero (REDESIGN FLAG 2).
func WriteLegacyTable(t *Table, opts LegacyWriteOptions) ([]byte, error) {
	if opts.HashSlots <= 0 {
		opts.HashSlots = defaultHashSlots
	}
	order := opts.Endian
	if order == nil {
		order = binary.LittleEndian
	}

	layouts := make([]legacyColLayout, len(t.Columns))
	offset := 0
	for i, c := range t.Columns {
		layouts[i] = legacyColLayout{byteOffset: offset}
		width := c.ValueType.DataLen()
		n := c.Count
		if n < 1 {
			n = 1
		}
		offset += width * n
	}
	rowStride := offset

	totalDefs := 0
	for _, c := range t.Columns {
		totalDefs++
		totalDefs += len(c.Flags)
	}

	names := NewStringInterner(0)
	names.Intern(labelText(t.Name)) // first, so the table name sits at offset 0
	for _, c := range t.Columns {
		names.Intern(labelText(c.Label))
		for _, f := range c.Flags {
			names.Intern(labelText(f.Label))
		}
	}
	namesLen := names.Size()

	const headerSize = legacyHeaderSize
	infoStart := headerSize
	infoLen := 0
	infoOffsets := make([]int, len(t.Columns))
	flagInfoOffsets := make([][]int, len(t.Columns))
	pos := infoStart
	for i, c := range t.Columns {
		infoOffsets[i] = pos
		if c.Count > 1 {
			pos += 6
		} else {
			pos += 4
		}
	}
	for i, c := range t.Columns {
		flagInfoOffsets[i] = make([]int, len(c.Flags))
		for j := range c.Flags {
			flagInfoOffsets[i][j] = pos
			pos += 8
		}
	}
	infoLen = pos - infoStart

	namesStart := infoStart + infoLen
	names.BaseOffset = namesStart

	defsStart := namesStart + namesLen
	defsLen := totalDefs * legacyColDefSize

	hashStart := defsStart + defsLen
	hashLen := opts.HashSlots * 2

	rowsStart := pad32(hashStart + hashLen)
	rowsLen := rowStride * len(t.Rows)

	stringsStart := rowsStart + rowsLen
	strings := NewStringInterner(0)
	for _, r := range t.Rows {
		for i, c := range t.Columns {
			if c.ValueType != ValueTypeString {
				continue
			}
			if c.Count > 1 {
				for _, v := range r.Cells[i].List {
					s, err := v.AsString()
					if err != nil {
						return nil, err
					}
					strings.Intern(s)
				}
				continue
			}
			s, err := r.Cells[i].Single.AsString()
			if err != nil {
				return nil, err
			}
			strings.Intern(s)
		}
	}
	stringsLen := strings.Size()
	strings.BaseOffset = stringsStart

	fileLen := pad64(stringsStart + stringsLen)
	buf := make([]byte, fileLen)

	// Names region: table name, then every column and flag label, in
	// declaration order, matching the interning order above.
	copy(buf[namesStart:], names.Emit())

	// Column / list / flags info records.
	infoCur := NewByteCursor(buf)
	for i, c := range t.Columns {
		base := infoOffsets[i]
		if c.Count > 1 {
			infoCur.WriteU8(base, 2)
			infoCur.WriteU8(base+1, uint8(c.ValueType))
			infoCur.WriteU16(base+2, uint16(layouts[i].byteOffset), order)
			infoCur.WriteU16(base+4, uint16(c.Count), order)
		} else {
			infoCur.WriteU8(base, 1)
			infoCur.WriteU8(base+1, uint8(c.ValueType))
			infoCur.WriteU16(base+2, uint16(layouts[i].byteOffset), order)
		}
	}

	// Definition records: real columns first, then flags, with the real
	// columns' records also threaded through the hash directory by
	// name. See legacyhash.go for the bucket formula.
	table := NewLegacyHashTable(opts.HashSlots)
	defNext := make([]uint16, totalDefs)
	defCur := NewByteCursor(buf)
	di := 0
	realDefOffset := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		defOff := defsStart + di*legacyColDefSize
		realDefOffset[i] = defOff
		prevHead := table.Insert(labelText(c.Label), uint32(defOff))
		defNext[di] = uint16(prevHead)
		di++
	}
	// Second walk: emit the def records themselves, plus the
	// flag-parented ones. names.Intern is idempotent once a string has
	// already been interned, so this just recovers each label's
	// already-assigned absolute offset.
	di = 0
	for i, c := range t.Columns {
		base := defsStart + di*legacyColDefSize
		defCur.WriteU16(base, uint16(infoOffsets[i]), order)
		defCur.WriteU16(base+2, defNext[di], order)
		defCur.WriteU16(base+4, uint16(names.Intern(labelText(c.Label))), order)
		di++
	}
	for i, c := range t.Columns {
		for j, f := range c.Flags {
			base := defsStart + di*legacyColDefSize
			defCur.WriteU16(base, uint16(flagInfoOffsets[i][j]), order)
			defCur.WriteU16(base+2, 0, order)
			defCur.WriteU16(base+4, uint16(names.Intern(labelText(f.Label))), order)
			di++
		}
	}

	// Flag cell-info records, now that the parent's def offset is final.
	for i, c := range t.Columns {
		for j, f := range c.Flags {
			base := flagInfoOffsets[i][j]
			infoCur.WriteU8(base, 3)
			infoCur.WriteU8(base+1, f.BitIndex)
			infoCur.WriteU32(base+2, f.Mask, order)
			infoCur.WriteU16(base+6, uint16(realDefOffset[i]), order)
		}
	}

	// Hash directory slot array.
	hashCur := NewByteCursor(buf)
	for i, slot := range table.Slots() {
		hashCur.WriteU16(hashStart+i*2, uint16(slot), order)
	}

	// Row data, now that every column's byte offset and the string
	// interner's base offset are both known.
	rowCur := NewByteCursor(buf)
	for ri, r := range t.Rows {
		rowStart := rowsStart + ri*rowStride
		for ci, c := range t.Columns {
			cellOffset := rowStart + layouts[ci].byteOffset
			if err := writeLegacyCell(rowCur, strings, cellOffset, c, r.Cells[ci], order, opts.SubVariant); err != nil {
				return nil, err
			}
		}
	}

	// String region.
	copy(buf[stringsStart:], strings.Emit())

	// Header, with checksum left zero so it is excluded from its own
	// computation, then patched once the table is otherwise complete.
	headCur := NewByteCursor(buf)
	headCur.WriteBytes(0, bdatMagic[:])
	headCur.WriteU16(4, 0, order) // scramble key, patched below if enabled
	headCur.WriteU16(6, uint16(namesStart), order)
	headCur.WriteU16(8, uint16(rowStride), order)
	headCur.WriteU16(10, uint16(hashStart), order)
	headCur.WriteU16(12, uint16(opts.HashSlots), order)
	headCur.WriteU16(14, uint16(rowsStart), order)
	headCur.WriteU16(16, uint16(len(t.Rows)), order)
	headCur.WriteU16(18, uint16(t.BaseID), order)
	headCur.WriteU16(20, 2, order) // reserved; the original tooling always writes 2 here
	headCur.WriteU16(22, 0, order) // checksum placeholder
	headCur.WriteU32(24, uint32(stringsStart), order)
	headCur.WriteU32(28, uint32(fileLen-stringsStart), order)
	headCur.WriteU16(32, uint16(defsStart), order)
	headCur.WriteU16(34, uint16(totalDefs), order)

	checksum := tableChecksum(buf)
	headCur.WriteU16(22, checksum, order)

	if opts.Scramble {
		key := checksum
		if opts.ScrambleKey != nil {
			key = *opts.ScrambleKey
		}
		headCur.WriteU16(4, key, order)
		nameRegionLen := defsStart - namesStart
		scramble(buf[namesStart:namesStart+nameRegionLen], key)
		scramble(buf[stringsStart:stringsStart+stringsLen], key)
	}

	return buf, nil
}

// labelText recovers a label's text form for interning: its own text if
// it carries any, otherwise its hash rendered the way the original
// tooling displays unresolved names.
func labelText(l Label) string {
	if s, ok := l.Text(); ok {
		return s
	}
	return l.String()
}

func writeLegacyCell(cur *ByteCursor, strings *StringInterner, offset int, col Column, cell Cell, order binary.ByteOrder, dialect Dialect) error {
	if len(col.Flags) > 0 {
		var acc uint32
		for i, f := range col.Flags {
			if i >= len(cell.Flags) {
				break
			}
			acc = f.Pack(acc, cell.Flags[i])
		}
		return writeIntegral(cur, offset, col.ValueType, acc, order)
	}
	if col.Count > 1 {
		width := col.ValueType.DataLen()
		for i, v := range cell.List {
			if err := writeLegacyValue(cur, strings, offset+i*width, col.ValueType, v, order, dialect); err != nil {
				return err
			}
		}
		return nil
	}
	return writeLegacyValue(cur, strings, offset, col.ValueType, cell.Single, order, dialect)
}

func writeIntegral(cur *ByteCursor, offset int, vt ValueType, v uint32, order binary.ByteOrder) error {
	switch vt {
	case ValueTypeU8, ValueTypeI8:
		return cur.WriteU8(offset, uint8(v))
	case ValueTypeU16, ValueTypeI16:
		return cur.WriteU16(offset, uint16(v), order)
	case ValueTypeU32, ValueTypeI32:
		return cur.WriteU32(offset, v, order)
	default:
		return errInvalidFlagType(vt)
	}
}

func writeLegacyValue(cur *ByteCursor, strings *StringInterner, offset int, vt ValueType, v Value, order binary.ByteOrder, dialect Dialect) error {
	if vt.modernOnly() {
		return errUnsupportedType(vt, dialect)
	}
	switch vt {
	case ValueTypeU8:
		u, err := v.AsUint()
		if err != nil {
			return err
		}
		return cur.WriteU8(offset, uint8(u))
	case ValueTypeU16:
		u, err := v.AsUint()
		if err != nil {
			return err
		}
		return cur.WriteU16(offset, uint16(u), order)
	case ValueTypeU32:
		u, err := v.AsUint()
		if err != nil {
			return err
		}
		return cur.WriteU32(offset, u, order)
	case ValueTypeI8:
		i, err := v.AsInt()
		if err != nil {
			return err
		}
		return cur.WriteU8(offset, uint8(int8(i)))
	case ValueTypeI16:
		i, err := v.AsInt()
		if err != nil {
			return err
		}
		return cur.WriteU16(offset, uint16(int16(i)), order)
	case ValueTypeI32:
		i, err := v.AsInt()
		if err != nil {
			return err
		}
		return cur.WriteU32(offset, uint32(i), order)
	case ValueTypeString:
		s, err := v.AsString()
		if err != nil {
			return err
		}
		return cur.WriteU32(offset, uint32(strings.Intern(s)), order)
	case ValueTypeFloat:
		if v.FloatRepr() == FloatUnknown {
			return errFormatConvert("float value has no dialect-specific representation; call Promote before writing")
		}
		if dialect == DialectLegacyX {
			f, err := v.AsFloat()
			if err != nil {
				return err
			}
			return cur.WriteU32(offset, floatToFixed(f), order)
		}
		f, err := v.AsFloat()
		if err != nil {
			return err
		}
		return cur.WriteU32(offset, float32Bits(f), order)
	default:
		return errUnknownValueType(uint8(vt))
	}
}
