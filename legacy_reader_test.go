// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bdat

import (
	"encoding/binary"
	"testing"
)

func TestParseLegacyHeaderRejectsBadMagic(t *testing.T) {
	data := make([]byte, legacyHeaderSize)
	copy(data, []byte("XXXX"))
	if _, err := parseLegacyHeader(data, binary.LittleEndian); err == nil {
		t.Fatalf("expected an error for a missing BDAT magic")
	}
}

func TestParseLegacyHeaderRejectsTruncatedData(t *testing.T) {
	data := make([]byte, legacyHeaderSize-1)
	if _, err := parseLegacyHeader(data, binary.LittleEndian); err == nil {
		t.Fatalf("expected an error for a truncated header")
	}
}

func TestParseLegacyHeaderFields(t *testing.T) {
	data := make([]byte, legacyHeaderSize)
	copy(data, bdatMagic[:])
	order := binary.LittleEndian
	order.PutUint16(data[4:], 0)      // scramble
	order.PutUint16(data[6:], 64)     // names offset
	order.PutUint16(data[8:], 8)      // row stride
	order.PutUint16(data[10:], 200)   // hash dir offset
	order.PutUint16(data[12:], 61)    // hash slots
	order.PutUint16(data[14:], 300)   // row region offset
	order.PutUint16(data[16:], 2)     // row count
	order.PutUint16(data[18:], 5)     // base id
	order.PutUint16(data[20:], 2)     // reserved
	order.PutUint16(data[22:], 1234)  // checksum
	order.PutUint32(data[24:], 400)   // string offset
	order.PutUint32(data[28:], 20)    // string length
	order.PutUint16(data[32:], 70)    // column def offset
	order.PutUint16(data[34:], 3)     // column count

	h, err := parseLegacyHeader(data, order)
	if err != nil {
		t.Fatalf("parseLegacyHeader: %v", err)
	}
	if h.namesOffset != 64 || h.rowStride != 8 || h.hashDirOffset != 200 ||
		h.hashSlots != 61 || h.rowRegionOffset != 300 || h.rowCount != 2 ||
		h.baseID != 5 || h.checksum != 1234 || h.stringOffset != 400 ||
		h.stringLength != 20 || h.columnDefOffset != 70 || h.columnCount != 3 {
		t.Fatalf("parsed header mismatch: %+v", h)
	}
}

func TestParseLegacyCellInfoTags(t *testing.T) {
	order := binary.LittleEndian

	single := make([]byte, 4)
	single[0] = 1 // single value tag
	single[1] = uint8(ValueTypeU32)
	order.PutUint16(single[2:], 16)
	info, err := parseLegacyCellInfo(single, 0, order)
	if err != nil {
		t.Fatalf("parseLegacyCellInfo(single): %v", err)
	}
	if info.tag != 1 || info.valueType != ValueTypeU32 || info.byteOffset != 16 || info.count != 1 {
		t.Fatalf("single cell info mismatch: %+v", info)
	}

	list := make([]byte, 6)
	list[0] = 2 // list tag
	list[1] = uint8(ValueTypeU16)
	order.PutUint16(list[2:], 8)
	order.PutUint16(list[4:], 4)
	info, err = parseLegacyCellInfo(list, 0, order)
	if err != nil {
		t.Fatalf("parseLegacyCellInfo(list): %v", err)
	}
	if info.tag != 2 || info.count != 4 || info.byteOffset != 8 {
		t.Fatalf("list cell info mismatch: %+v", info)
	}

	flags := make([]byte, 8)
	flags[0] = 3 // flags tag
	flags[1] = 2 // shift
	order.PutUint32(flags[2:], 0xf0)
	order.PutUint16(flags[6:], 12)
	info, err = parseLegacyCellInfo(flags, 0, order)
	if err != nil {
		t.Fatalf("parseLegacyCellInfo(flags): %v", err)
	}
	if info.tag != 3 || info.shift != 2 || info.mask != 0xf0 || info.parentOffset != 12 {
		t.Fatalf("flags cell info mismatch: %+v", info)
	}

	bad := []byte{9}
	if _, err := parseLegacyCellInfo(bad, 0, order); err == nil {
		t.Fatalf("expected error for unknown cell tag")
	}
}

func TestReadCString(t *testing.T) {
	data := append([]byte("hello"), 0, 'x')
	s, err := readCString(data, 0)
	if err != nil || s != "hello" {
		t.Fatalf("readCString = (%q, %v), want (\"hello\", nil)", s, err)
	}

	noNul := []byte("oops")
	if _, err := readCString(noNul, 0); err == nil {
		t.Fatalf("expected error for an unterminated string")
	}

	if _, err := readCString(data, 100); err == nil {
		t.Fatalf("expected error for an out-of-range offset")
	}
}
