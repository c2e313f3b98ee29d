// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bdat

import "encoding/binary"

// Modern file and table header layouts, byte-exact per the
// specification this package implements. Every field in both headers
// is a 32-bit little-endian word; the per-column and per-hash-bucket
// records below the table header are the only narrower fields.
const (
	modernVersionWord  = 0x01001004
	modernTableTypeTag = 0x3004

	modernColumnDefSize = 3 // type:u8, name/offset word:u16
	modernHashDefSize   = 8 // hash:u32, row index:u32 (unused on read; only sized for layout)

	modernFileHeaderFixedSize  = 8  // table_count, file_size
	modernTableHeaderFixedSize = 48 // 12 u32 fields, see readModernTableHeader
)

type modernTableHeader struct {
	columnCount  int
	rowCount     int
	baseID       uint32
	columnOffset int
	hashOffset   int
	rowOffset    int
	rowLength    int
	stringOffset int
	stringLength int
}

// readModernFile parses a complete modern BDAT file image, returning
// one Table per embedded table.
func readModernFile(data []byte) ([]*Table, error) {
	order := binary.LittleEndian
	cur := NewByteCursor(data)

	magic, err := cur.ReadBytes(0, 4)
	if err != nil {
		return nil, err
	}
	if string(magic) != string(bdatMagic[:]) {
		return nil, errMalformedFile("modern file magic not found")
	}
	version, err := cur.ReadU32(4, order)
	if err != nil {
		return nil, err
	}
	if version != modernVersionWord {
		return nil, errMalformedFile("unrecognised modern file version word")
	}

	tableCount, err := cur.ReadU32(8, order)
	if err != nil {
		return nil, err
	}
	// file size at offset 12, not needed once the table offsets are known.

	offsets := make([]uint32, tableCount)
	for i := range offsets {
		off, err := cur.ReadU32(16+i*4, order)
		if err != nil {
			return nil, err
		}
		offsets[i] = off
	}

	tables := make([]*Table, tableCount)
	for i, off := range offsets {
		t, err := readModernTable(data, int(off), order)
		if err != nil {
			return nil, err
		}
		tables[i] = t
	}
	return tables, nil
}

func readModernTableHeader(cur *ByteCursor, base int, order binary.ByteOrder) (modernTableHeader, error) {
	var h modernTableHeader
	magic, err := cur.ReadBytes(base, 4)
	if err != nil {
		return h, err
	}
	if string(magic) != string(bdatMagic[:]) {
		return h, errMalformedTable("modern table magic not found")
	}
	tag, err := cur.ReadU32(base+4, order)
	if err != nil {
		return h, err
	}
	if tag != modernTableTypeTag {
		return h, errMalformedTable("modern table type tag mismatch")
	}
	columns, err := cur.ReadU32(base+8, order)
	if err != nil {
		return h, err
	}
	rows, err := cur.ReadU32(base+12, order)
	if err != nil {
		return h, err
	}
	baseID, err := cur.ReadU32(base+16, order)
	if err != nil {
		return h, err
	}
	reserved, err := cur.ReadU32(base+20, order)
	if err != nil {
		return h, err
	}
	if reserved != 0 {
		return h, errMalformedTable("modern table reserved word at +0x14 was not zero")
	}
	colOff, err := cur.ReadU32(base+24, order)
	if err != nil {
		return h, err
	}
	hashOff, err := cur.ReadU32(base+28, order)
	if err != nil {
		return h, err
	}
	rowOff, err := cur.ReadU32(base+32, order)
	if err != nil {
		return h, err
	}
	rowLen, err := cur.ReadU32(base+36, order)
	if err != nil {
		return h, err
	}
	strOff, err := cur.ReadU32(base+40, order)
	if err != nil {
		return h, err
	}
	strLen, err := cur.ReadU32(base+44, order)
	if err != nil {
		return h, err
	}

	h.columnCount = int(columns)
	h.rowCount = int(rows)
	h.baseID = baseID
	h.columnOffset = int(colOff)
	h.hashOffset = int(hashOff)
	h.rowOffset = int(rowOff)
	h.rowLength = int(rowLen)
	h.stringOffset = int(strOff)
	h.stringLength = int(strLen)
	return h, nil
}

// tableLength returns the byte extent of the table starting at its own
// base (0), the max of every section's end offset, matching the
// original reader's table_len computation: it is the amount of table
// data that must be sliced out before any field is dereferenced.
func (h modernTableHeader) tableLength() int {
	ends := []int{
		h.columnOffset + modernColumnDefSize*h.columnCount,
		h.hashOffset + modernHashDefSize*h.rowCount,
		h.rowOffset + h.rowLength*h.rowCount,
		h.stringOffset + h.stringLength,
	}
	max := ends[0]
	for _, e := range ends[1:] {
		if e > max {
			max = e
		}
	}
	return max
}

// readModernTable parses one table whose header begins at base within
// the full file image.
func readModernTable(data []byte, base int, order binary.ByteOrder) (*Table, error) {
	headCur := NewByteCursor(data)
	h, err := readModernTableHeader(headCur, base, order)
	if err != nil {
		return nil, err
	}
	end := base + h.tableLength()
	if end > len(data) {
		return nil, ErrOutsideBoundary
	}
	table := data[base:end]
	cur := NewByteCursor(table)

	labelsHashed := table[h.stringOffset] == 0
	nameOffset := 0
	if labelsHashed {
		nameOffset = 1
	}
	name, err := readModernLabel(cur, h.stringOffset, nameOffset, labelsHashed, order)
	if err != nil {
		return nil, err
	}

	columns := make([]Column, h.columnCount)
	for i := 0; i < h.columnCount; i++ {
		recBase := h.columnOffset + i*modernColumnDefSize
		tyTag, err := cur.ReadU8(recBase)
		if err != nil {
			return nil, err
		}
		nameOff, err := cur.ReadU16(recBase+1, order)
		if err != nil {
			return nil, err
		}
		vt, err := valueTypeFromTag(tyTag)
		if err != nil {
			return nil, err
		}
		label, err := readModernLabel(cur, h.stringOffset, int(nameOff), labelsHashed, order)
		if err != nil {
			return nil, err
		}
		// Modern rows pack values sequentially with no stored per-column
		// byte offset; ByteOffset is meaningless here and left zero.
		columns[i] = Column{Label: label, ValueType: vt, Count: 1}
	}

	b := NewBuilder(name, DialectModern)
	for _, c := range columns {
		b.AddColumn(c)
	}

	for i := 0; i < h.rowCount; i++ {
		rowStart := h.rowOffset + i*h.rowLength
		cells := make([]Cell, len(columns))
		byteCursor := 0
		for ci, col := range columns {
			v, n, err := readModernValue(cur, table, h.stringOffset, rowStart+byteCursor, col.ValueType, order)
			if err != nil {
				return nil, err
			}
			cells[ci] = SingleCell(v)
			byteCursor += n
		}
		b.AddRow(Row{ID: h.baseID + uint32(i), Cells: cells})
	}

	return b.Build()
}

func readModernLabel(cur *ByteCursor, stringTableOffset, relOffset int, hashed bool, order binary.ByteOrder) (Label, error) {
	if hashed {
		h, err := cur.ReadU32(stringTableOffset+relOffset, order)
		if err != nil {
			return Label{}, err
		}
		return HashLabel(h), nil
	}
	s, err := readCString(cur.Bytes(), stringTableOffset+relOffset)
	if err != nil {
		return Label{}, err
	}
	return TextLabel(s), nil
}

// readModernValue reads one cell value at offset, returning the value
// and the number of row bytes it occupied. stringTableOffset anchors
// String/DebugString pointers, which are stored relative to the string
// table's start, not as absolute file offsets.
func readModernValue(cur *ByteCursor, table []byte, stringTableOffset, offset int, vt ValueType, order binary.ByteOrder) (Value, int, error) {
	switch vt {
	case ValueTypeUnknown:
		return Unknown(), 0, nil
	case ValueTypeU8:
		v, err := cur.ReadU8(offset)
		return U8(v), 1, err
	case ValueTypeU16:
		v, err := cur.ReadU16(offset, order)
		return U16(v), 2, err
	case ValueTypeU32:
		v, err := cur.ReadU32(offset, order)
		return U32(v), 4, err
	case ValueTypeI8:
		v, err := cur.ReadI8(offset)
		return I8(v), 1, err
	case ValueTypeI16:
		v, err := cur.ReadI16(offset, order)
		return I16(v), 2, err
	case ValueTypeI32:
		v, err := cur.ReadI32(offset, order)
		return I32(v), 4, err
	case ValueTypeString:
		off, err := cur.ReadU32(offset, order)
		if err != nil {
			return Value{}, 0, err
		}
		s, err := readModernString(table, stringTableOffset+int(off))
		if err != nil {
			return Value{}, 0, err
		}
		return Str(s), 4, nil
	case ValueTypeFloat:
		f, err := cur.ReadF32(offset, order)
		return FloatIEEEValue(f), 4, err
	case ValueTypeHashRef:
		v, err := cur.ReadU32(offset, order)
		return HashRef(v), 4, err
	case ValueTypePercent:
		v, err := cur.ReadU8(offset)
		return Percent(v), 1, err
	case ValueTypeDebugString:
		off, err := cur.ReadU32(offset, order)
		if err != nil {
			return Value{}, 0, err
		}
		s, err := readModernString(table, stringTableOffset+int(off))
		if err != nil {
			return Value{}, 0, err
		}
		return DebugString(s), 4, nil
	case ValueTypeUnknown12:
		v, err := cur.ReadU8(offset)
		return Unknown12(v), 1, err
	case ValueTypeMessageID:
		v, err := cur.ReadU16(offset, order)
		return MessageID(v), 2, err
	default:
		return Value{}, 0, errUnknownValueType(uint8(vt))
	}
}

// readModernString resolves a String/DebugString cell's pointer, which
// unlike label pointers is always plain text regardless of whether
// labels in this table are hashed.
func readModernString(table []byte, ptr int) (string, error) {
	return readCString(table, ptr)
}
