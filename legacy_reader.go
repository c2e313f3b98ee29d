// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bdat

import (
	"bytes"
	"encoding/binary"
)

// Legacy header field widths, byte-exact per the specification this
// package implements. The header occupies a fixed 64-byte block; only
// the LegacySwitch and LegacyX sub-variants are parsed here (see
// DESIGN.md: the original tooling's own writer and reader only ever
// target the 64-byte header generically over endianness, never a
// separate 32-byte LegacyWii layout, so this package follows suit).
const (
	legacyHeaderSize  = 64
	legacyColDefSize  = 6
	legacyCellTagSize = 1
)

type legacyHeader struct {
	scramble        uint16
	namesOffset     int
	rowStride       int
	hashDirOffset   int
	hashSlots       int
	rowRegionOffset int
	rowCount        int
	baseID          uint32
	reserved        uint16
	checksum        uint16
	stringOffset    int
	stringLength    int
	columnDefOffset int
	columnCount     int
}

var bdatMagic = [4]byte{'B', 'D', 'A', 'T'}

func parseLegacyHeader(data []byte, order binary.ByteOrder) (legacyHeader, error) {
	var h legacyHeader
	if len(data) < legacyHeaderSize {
		return h, errMalformedTable("legacy table header truncated")
	}
	if !bytes.Equal(data[0:4], bdatMagic[:]) {
		return h, errMalformedTable("legacy table magic not found")
	}
	cur := NewByteCursor(data)
	h.scramble, _ = cur.ReadU16(4, order)
	namesOffset, _ := cur.ReadU16(6, order)
	h.namesOffset = int(namesOffset)
	rowStride, _ := cur.ReadU16(8, order)
	h.rowStride = int(rowStride)
	hashDirOffset, _ := cur.ReadU16(10, order)
	h.hashDirOffset = int(hashDirOffset)
	hashSlots, _ := cur.ReadU16(12, order)
	h.hashSlots = int(hashSlots)
	rowRegionOffset, _ := cur.ReadU16(14, order)
	h.rowRegionOffset = int(rowRegionOffset)
	rowCount, _ := cur.ReadU16(16, order)
	h.rowCount = int(rowCount)
	baseID, _ := cur.ReadU16(18, order)
	h.baseID = uint32(baseID)
	h.reserved, _ = cur.ReadU16(20, order)
	h.checksum, _ = cur.ReadU16(22, order)
	stringOffset, _ := cur.ReadU32(24, order)
	h.stringOffset = int(stringOffset)
	stringLength, _ := cur.ReadU32(28, order)
	h.stringLength = int(stringLength)
	columnDefOffset, _ := cur.ReadU16(32, order)
	h.columnDefOffset = int(columnDefOffset)
	columnCount, _ := cur.ReadU16(34, order)
	h.columnCount = int(columnCount)
	return h, nil
}

type legacyCellInfo struct {
	tag          uint8
	valueType    ValueType
	byteOffset   int
	count        int
	shift        uint8
	mask         uint32
	parentOffset int
}

func parseLegacyCellInfo(data []byte, offset int, order binary.ByteOrder) (legacyCellInfo, error) {
	cur := NewByteCursor(data)
	tag, err := cur.ReadU8(offset)
	if err != nil {
		return legacyCellInfo{}, err
	}
	switch tag {
	case 1: // single value
		vt, err := cur.ReadU8(offset + 1)
		if err != nil {
			return legacyCellInfo{}, err
		}
		off, err := cur.ReadU16(offset+2, order)
		if err != nil {
			return legacyCellInfo{}, err
		}
		valueType, err := valueTypeFromTag(vt)
		if err != nil {
			return legacyCellInfo{}, err
		}
		return legacyCellInfo{tag: tag, valueType: valueType, byteOffset: int(off), count: 1}, nil
	case 2: // list
		vt, err := cur.ReadU8(offset + 1)
		if err != nil {
			return legacyCellInfo{}, err
		}
		off, err := cur.ReadU16(offset+2, order)
		if err != nil {
			return legacyCellInfo{}, err
		}
		count, err := cur.ReadU16(offset+4, order)
		if err != nil {
			return legacyCellInfo{}, err
		}
		valueType, err := valueTypeFromTag(vt)
		if err != nil {
			return legacyCellInfo{}, err
		}
		return legacyCellInfo{tag: tag, valueType: valueType, byteOffset: int(off), count: int(count)}, nil
	case 3: // flags
		shift, err := cur.ReadU8(offset + 1)
		if err != nil {
			return legacyCellInfo{}, err
		}
		mask, err := cur.ReadU32(offset+2, order)
		if err != nil {
			return legacyCellInfo{}, err
		}
		parent, err := cur.ReadU16(offset+6, order)
		if err != nil {
			return legacyCellInfo{}, err
		}
		return legacyCellInfo{tag: tag, shift: shift, mask: mask, parentOffset: int(parent)}, nil
	default:
		return legacyCellInfo{}, errUnknownCellType(tag)
	}
}

// readCString reads a NUL-terminated string starting at offset.
func readCString(data []byte, offset int) (string, error) {
	if offset < 0 || offset > len(data) {
		return "", ErrOutsideBoundary
	}
	end := bytes.IndexByte(data[offset:], 0)
	if end < 0 {
		return "", errMalformedTable("unterminated string")
	}
	return string(data[offset : offset+end]), nil
}

// readLegacyTable parses one legacy table starting at the beginning of
// tableData (a slice that begins with that table's header and may run
// past the table's end), per specification section 4.7.
func readLegacyTable(tableData []byte, order binary.ByteOrder, dialect Dialect) (*Table, error) {
	h, err := parseLegacyHeader(tableData, order)
	if err != nil {
		return nil, err
	}

	work := tableData
	if h.scramble != 0 {
		work = append([]byte(nil), tableData...)
		nameRegionLen := h.columnDefOffset - h.namesOffset
		if nameRegionLen > 0 {
			unscramble(work[h.namesOffset:h.namesOffset+nameRegionLen], h.scramble)
		}
		if h.stringLength > 0 {
			end := h.stringOffset + h.stringLength
			if end > len(work) {
				end = len(work)
			}
			unscramble(work[h.stringOffset:end], h.scramble)
		}
	}

	type defRecord struct {
		infoOffset int
		nameOffset int
		fileOffset int
	}
	defs := make([]defRecord, h.columnCount)
	cur := NewByteCursor(work)
	for i := 0; i < h.columnCount; i++ {
		base := h.columnDefOffset + i*legacyColDefSize
		infoOff, err := cur.ReadU16(base, order)
		if err != nil {
			return nil, err
		}
		nameOff, err := cur.ReadU16(base+4, order)
		if err != nil {
			return nil, err
		}
		defs[i] = defRecord{infoOffset: int(infoOff), nameOffset: int(nameOff), fileOffset: base}
	}

	columns := make([]Column, 0, h.columnCount)
	offsetToColumn := make(map[int]int, h.columnCount)
	var flagInfos []struct {
		info legacyCellInfo
		name string
	}

	for _, d := range defs {
		info, err := parseLegacyCellInfo(work, d.infoOffset, order)
		if err != nil {
			return nil, err
		}
		name, err := readCString(work, d.nameOffset)
		if err != nil {
			return nil, err
		}
		switch info.tag {
		case 1, 2:
			offsetToColumn[d.fileOffset] = len(columns)
			columns = append(columns, Column{
				Label:      TextLabel(name),
				ValueType:  info.valueType,
				Count:      info.count,
				ByteOffset: info.byteOffset,
			})
		case 3:
			flagInfos = append(flagInfos, struct {
				info legacyCellInfo
				name string
			}{info, name})
		}
	}
	for _, f := range flagInfos {
		ci, ok := offsetToColumn[f.info.parentOffset]
		if !ok {
			return nil, errMalformedTable("flag definition references unknown parent column")
		}
		columns[ci].Flags = append(columns[ci].Flags, FlagDef{
			Label:    TextLabel(f.name),
			BitIndex: f.info.shift,
			Mask:     f.info.mask,
		})
	}

	tableName, err := readCString(work, h.namesOffset)
	if err != nil {
		return nil, err
	}

	b := NewBuilder(TextLabel(tableName), dialect)
	for _, c := range columns {
		b.AddColumn(c)
	}

	rowCur := NewByteCursor(work)
	for i := 0; i < h.rowCount; i++ {
		rowStart := h.rowRegionOffset + i*h.rowStride
		cells := make([]Cell, len(columns))
		for ci, col := range columns {
			cell, err := readLegacyCell(rowCur, work, rowStart+col.ByteOffset, col, order, dialect)
			if err != nil {
				return nil, err
			}
			cells[ci] = cell
		}
		b.AddRow(Row{ID: h.baseID + uint32(i), Cells: cells})
	}

	return b.Build()
}

func readLegacyCell(cur *ByteCursor, work []byte, offset int, col Column, order binary.ByteOrder, dialect Dialect) (Cell, error) {
	if len(col.Flags) > 0 {
		raw, err := readIntegral(cur, offset, col.ValueType, order)
		if err != nil {
			return Cell{}, err
		}
		vals := make([]uint32, len(col.Flags))
		for i, f := range col.Flags {
			vals[i] = f.Extract(raw)
		}
		return FlagsCell(vals), nil
	}
	if col.Count > 1 {
		vals := make([]Value, col.Count)
		width := col.ValueType.DataLen()
		for i := 0; i < col.Count; i++ {
			v, err := readLegacyValue(cur, work, offset+i*width, col.ValueType, order, dialect)
			if err != nil {
				return Cell{}, err
			}
			vals[i] = v
		}
		return ListCell(vals), nil
	}
	v, err := readLegacyValue(cur, work, offset, col.ValueType, order, dialect)
	if err != nil {
		return Cell{}, err
	}
	return SingleCell(v), nil
}

func readIntegral(cur *ByteCursor, offset int, vt ValueType, order binary.ByteOrder) (uint32, error) {
	switch vt {
	case ValueTypeU8:
		v, err := cur.ReadU8(offset)
		return uint32(v), err
	case ValueTypeU16:
		v, err := cur.ReadU16(offset, order)
		return uint32(v), err
	case ValueTypeU32:
		return cur.ReadU32(offset, order)
	case ValueTypeI8:
		v, err := cur.ReadI8(offset)
		return uint32(v), err
	case ValueTypeI16:
		v, err := cur.ReadI16(offset, order)
		return uint32(v), err
	case ValueTypeI32:
		v, err := cur.ReadI32(offset, order)
		return uint32(v), err
	default:
		return 0, errInvalidFlagType(vt)
	}
}

func readLegacyValue(cur *ByteCursor, work []byte, offset int, vt ValueType, order binary.ByteOrder, dialect Dialect) (Value, error) {
	if vt.modernOnly() {
		return Value{}, errUnsupportedType(vt, dialect)
	}
	switch vt {
	case ValueTypeU8:
		v, err := cur.ReadU8(offset)
		return U8(v), err
	case ValueTypeU16:
		v, err := cur.ReadU16(offset, order)
		return U16(v), err
	case ValueTypeU32:
		v, err := cur.ReadU32(offset, order)
		return U32(v), err
	case ValueTypeI8:
		v, err := cur.ReadI8(offset)
		return I8(v), err
	case ValueTypeI16:
		v, err := cur.ReadI16(offset, order)
		return I16(v), err
	case ValueTypeI32:
		v, err := cur.ReadI32(offset, order)
		return I32(v), err
	case ValueTypeString:
		off, err := cur.ReadU32(offset, order)
		if err != nil {
			return Value{}, err
		}
		s, err := readCString(work, int(off))
		if err != nil {
			return Value{}, err
		}
		return Str(s), nil
	case ValueTypeFloat:
		if dialect == DialectLegacyX {
			bits, err := cur.ReadU32(offset, order)
			if err != nil {
				return Value{}, err
			}
			return FloatFixedValue(fixedToFloat(bits)), nil
		}
		f, err := cur.ReadF32(offset, order)
		if err != nil {
			return Value{}, err
		}
		return FloatIEEEValue(f), nil
	default:
		return Value{}, errUnknownValueType(uint8(vt))
	}
}
