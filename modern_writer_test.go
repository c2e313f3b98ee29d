// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bdat

import (
	"bytes"
	"testing"
)

func buildScenario3Table(t *testing.T) *Table {
	t.Helper()
	b := NewBuilder(HashLabel(0xCAFEBABE), DialectModern)
	b.AddColumn(Column{Label: HashLabel(0xDEADBEEF), ValueType: ValueTypeHashRef, Count: 1})
	b.AddColumn(Column{Label: HashLabel(0xCAFECAFE), ValueType: ValueTypeU32, Count: 1})
	b.AddRow(Row{ID: 0, Cells: []Cell{SingleCell(HashRef(1)), SingleCell(U32(10))}})
	b.AddRow(Row{ID: 1, Cells: []Cell{SingleCell(HashRef(0x01000001)), SingleCell(U32(100))}})
	tbl, err := b.Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}
	return tbl
}

// TestModernRoundTrip implements the write-then-read-then-rewrite
// round trip described for a HashRef-keyed table with two rows.
func TestModernRoundTrip(t *testing.T) {
	tbl := buildScenario3Table(t)

	buf, err := WriteModernFile([]*Table{tbl})
	if err != nil {
		t.Fatalf("WriteModernFile: %v", err)
	}

	view, err := ReadFileView(buf)
	if err != nil {
		t.Fatalf("ReadFileView: %v", err)
	}
	if view.Dialect != DialectModern {
		t.Fatalf("Dialect = %v, want Modern", view.Dialect)
	}
	if len(view.Tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(view.Tables))
	}

	got := view.Tables[0]
	if !got.Name.Equal(tbl.Name) {
		t.Fatalf("table name = %v, want %v", got.Name, tbl.Name)
	}
	if len(got.Columns) != 2 {
		t.Fatalf("column count = %d, want 2", len(got.Columns))
	}
	for i, c := range got.Columns {
		if !c.Label.Equal(tbl.Columns[i].Label) {
			t.Fatalf("column %d label = %v, want %v", i, c.Label, tbl.Columns[i].Label)
		}
		if c.ValueType != tbl.Columns[i].ValueType {
			t.Fatalf("column %d type = %v, want %v", i, c.ValueType, tbl.Columns[i].ValueType)
		}
	}

	row0, err := got.Row(0)
	if err != nil {
		t.Fatalf("Row(0): %v", err)
	}
	h0, _ := row0.Cells[0].Single.AsUint()
	if h0 != 1 {
		t.Fatalf("row 0 hash = %#x, want 1", h0)
	}
	row1, err := got.Row(1)
	if err != nil {
		t.Fatalf("Row(1): %v", err)
	}
	h1, _ := row1.Cells[0].Single.AsUint()
	if h1 != 0x01000001 {
		t.Fatalf("row 1 hash = %#x, want %#x", h1, 0x01000001)
	}

	rewritten, err := WriteModernFile([]*Table{got})
	if err != nil {
		t.Fatalf("WriteModernFile (rewrite): %v", err)
	}
	if !bytes.Equal(buf, rewritten) {
		t.Fatalf("rewriting a read-back table did not reproduce the original bytes")
	}
}

func TestModernWriterRejectsFlaggedOrRepeatingColumns(t *testing.T) {
	tbl := &Table{
		Name:    HashLabel(1),
		Dialect: DialectModern,
		Columns: []Column{{Label: HashLabel(2), ValueType: ValueTypeU32, Count: 2}},
		Rows:    []Row{{ID: 0, Cells: []Cell{ListCell([]Value{U32(1), U32(2)})}}},
	}
	if _, err := WriteModernFile([]*Table{tbl}); err == nil {
		t.Fatalf("expected an error writing a modern table with a repeating column")
	}
}

func TestModernWriterRejectsUnpromotedFloat(t *testing.T) {
	b := NewBuilder(HashLabel(1), DialectModern)
	b.AddColumn(Column{Label: HashLabel(2), ValueType: ValueTypeFloat, Count: 1})
	b.AddRow(Row{ID: 0, Cells: []Cell{SingleCell(FloatUnknownValue(1.5))}})
	tbl, err := b.Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}

	if _, err := WriteModernFile([]*Table{tbl}); err == nil {
		t.Fatalf("expected an error writing an un-promoted float value")
	}
}

func TestModernWriterDeduplicatesStrings(t *testing.T) {
	b := NewBuilder(HashLabel(1), DialectModern)
	b.AddColumn(Column{Label: HashLabel(2), ValueType: ValueTypeString, Count: 1})
	b.AddRow(Row{ID: 0, Cells: []Cell{SingleCell(Str("dup"))}})
	b.AddRow(Row{ID: 1, Cells: []Cell{SingleCell(Str("dup"))}})
	tbl, err := b.Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}

	buf, err := WriteModernFile([]*Table{tbl})
	if err != nil {
		t.Fatalf("WriteModernFile: %v", err)
	}
	view, err := ReadFileView(buf)
	if err != nil {
		t.Fatalf("ReadFileView: %v", err)
	}
	row0, _ := view.Tables[0].Row(0)
	row1, _ := view.Tables[0].Row(1)
	s0, _ := row0.Cells[0].Single.AsString()
	s1, _ := row1.Cells[0].Single.AsString()
	if s0 != "dup" || s1 != "dup" {
		t.Fatalf("got strings %q, %q, want both \"dup\"", s0, s1)
	}
}
