// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bdat

import (
	"encoding/binary"
	"testing"
)

func TestReadModernFileRejectsBadMagic(t *testing.T) {
	data := make([]byte, 16)
	copy(data, []byte("XXXX"))
	if _, err := readModernFile(data); err == nil {
		t.Fatalf("expected an error for a missing modern magic")
	}
}

func TestReadModernFileRejectsBadVersion(t *testing.T) {
	order := binary.LittleEndian
	data := make([]byte, 16)
	copy(data, bdatMagic[:])
	order.PutUint32(data[4:], 0xdeadbeef)
	if _, err := readModernFile(data); err == nil {
		t.Fatalf("expected an error for an unrecognised version word")
	}
}

func TestReadModernTableHeaderRejectsReservedWord(t *testing.T) {
	order := binary.LittleEndian
	data := make([]byte, modernTableHeaderFixedSize)
	copy(data, bdatMagic[:])
	order.PutUint32(data[4:], modernTableTypeTag)
	order.PutUint32(data[20:], 1) // reserved, must be zero

	cur := NewByteCursor(data)
	if _, err := readModernTableHeader(cur, 0, order); err == nil {
		t.Fatalf("expected an error for a non-zero reserved word")
	}
}

func TestModernTableHeaderTableLength(t *testing.T) {
	h := modernTableHeader{
		columnCount:  2,
		rowCount:     3,
		columnOffset: 48,
		hashOffset:   100,
		rowOffset:    200,
		rowLength:    8,
		stringOffset: 300,
		stringLength: 20,
	}
	want := 320 // stringOffset + stringLength is the largest extent
	if got := h.tableLength(); got != want {
		t.Fatalf("tableLength() = %d, want %d", got, want)
	}
}

func TestReadModernLabelPlaintext(t *testing.T) {
	order := binary.LittleEndian
	region := append([]byte{'x'}, []byte("Param1\x00")...) // first byte != 0x00: unhashed
	cur := NewByteCursor(region)
	label, err := readModernLabel(cur, 0, 1, false, order)
	if err != nil {
		t.Fatalf("readModernLabel: %v", err)
	}
	s, ok := label.Text()
	if !ok || s != "Param1" {
		t.Fatalf("readModernLabel = (%q, %v), want (\"Param1\", true)", s, ok)
	}
}

func TestReadModernLabelHashed(t *testing.T) {
	order := binary.LittleEndian
	region := make([]byte, 5)
	region[0] = 0 // hashed marker
	order.PutUint32(region[1:], 0xCAFEBABE)
	cur := NewByteCursor(region)
	label, err := readModernLabel(cur, 0, 1, true, order)
	if err != nil {
		t.Fatalf("readModernLabel: %v", err)
	}
	if label.Hash() != 0xCAFEBABE {
		t.Fatalf("readModernLabel hash = %#x, want %#x", label.Hash(), 0xCAFEBABE)
	}
}
