// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bdat

import (
	"errors"
	"testing"
)

func TestBuilderDuplicatePrimaryKeyFails(t *testing.T) {
	b := NewBuilder(HashLabel(0xCAFEBABE), DialectModern)
	b.AddColumn(Column{Label: HashLabel(0xDEADBEEF), ValueType: ValueTypeHashRef, Count: 1})
	b.AddColumn(Column{Label: HashLabel(0xCAFECAFE), ValueType: ValueTypeU32, Count: 1})
	b.AddRow(Row{ID: 0, Cells: []Cell{SingleCell(HashRef(1)), SingleCell(U32(10))}})
	b.AddRow(Row{ID: 1, Cells: []Cell{SingleCell(HashRef(1)), SingleCell(U32(20))}})

	_, err := b.Build()
	if err == nil {
		t.Fatalf("expected a duplicate-key error, got nil")
	}
	var bdatErr *Error
	if !errors.As(err, &bdatErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if bdatErr.Kind != KindDuplicateKey {
		t.Fatalf("Kind = %v, want KindDuplicateKey", bdatErr.Kind)
	}
	if bdatErr.RowA != 0 || bdatErr.RowB != 1 {
		t.Fatalf("RowA/RowB = %d/%d, want 0/1", bdatErr.RowA, bdatErr.RowB)
	}
}

func TestBuilderRejectsDuplicateColumnLabelsInLegacyTables(t *testing.T) {
	b := NewBuilder(TextLabel("tbl"), DialectLegacySwitch)
	b.AddColumn(Column{Label: TextLabel("Param1"), ValueType: ValueTypeU32, Count: 1})
	b.AddColumn(Column{Label: TextLabel("Param1"), ValueType: ValueTypeU32, Count: 1})
	if _, err := b.Build(); err == nil {
		t.Fatalf("expected duplicate column label to be rejected at AddColumn time")
	}
}

func TestBuilderModernRejectsFlagsAndLists(t *testing.T) {
	b := NewBuilder(HashLabel(1), DialectModern)
	b.AddColumn(Column{
		Label:     HashLabel(2),
		ValueType: ValueTypeU32,
		Count:     1,
		Flags:     []FlagDef{{Label: HashLabel(3), BitIndex: 0, Mask: 0xf}},
	})
	if _, err := b.Build(); err == nil {
		t.Fatalf("expected modern table to reject a flagged column")
	}

	b2 := NewBuilder(HashLabel(1), DialectModern)
	b2.AddColumn(Column{Label: HashLabel(2), ValueType: ValueTypeU32, Count: 3})
	if _, err := b2.Build(); err == nil {
		t.Fatalf("expected modern table to reject a repeating column")
	}
}

func TestBuilderDerivesBaseIDAndRejectsGaps(t *testing.T) {
	b := NewBuilder(TextLabel("tbl"), DialectLegacySwitch)
	b.AddColumn(Column{Label: TextLabel("v"), ValueType: ValueTypeU32, Count: 1})
	b.AddRow(Row{ID: 10, Cells: []Cell{SingleCell(U32(1))}})
	b.AddRow(Row{ID: 11, Cells: []Cell{SingleCell(U32(2))}})

	tbl, err := b.Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}
	if tbl.BaseID != 10 {
		t.Fatalf("BaseID = %d, want 10", tbl.BaseID)
	}

	b2 := NewBuilder(TextLabel("tbl"), DialectLegacySwitch)
	b2.AddColumn(Column{Label: TextLabel("v"), ValueType: ValueTypeU32, Count: 1})
	b2.AddRow(Row{ID: 10, Cells: []Cell{SingleCell(U32(1))}})
	b2.AddRow(Row{ID: 12, Cells: []Cell{SingleCell(U32(2))}}) // gap at 11
	if _, err := b2.Build(); err == nil {
		t.Fatalf("expected a non-contiguous row ID sequence to be rejected")
	}
}

func TestTableRowAndCellAccessors(t *testing.T) {
	b := NewBuilder(TextLabel("tbl"), DialectLegacySwitch)
	b.AddColumn(Column{Label: TextLabel("v"), ValueType: ValueTypeU32, Count: 1})
	b.AddRow(Row{ID: 5, Cells: []Cell{SingleCell(U32(99))}})
	tbl, err := b.Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}

	row, err := tbl.Row(5)
	if err != nil {
		t.Fatalf("Row(5): %v", err)
	}
	if row.ID != 5 {
		t.Fatalf("Row(5).ID = %d, want 5", row.ID)
	}

	cell, err := tbl.Cell(5, TextLabel("v"))
	if err != nil {
		t.Fatalf("Cell(5, v): %v", err)
	}
	u, err := cell.Single.AsUint()
	if err != nil || u != 99 {
		t.Fatalf("cell value = (%d, %v), want (99, nil)", u, err)
	}

	if _, err := tbl.Row(6); err == nil {
		t.Fatalf("expected error looking up a nonexistent row")
	}
	if _, err := tbl.Cell(5, TextLabel("nope")); err == nil {
		t.Fatalf("expected error looking up a nonexistent column")
	}
}

func TestTableRowByHash(t *testing.T) {
	b := NewBuilder(HashLabel(1), DialectModern)
	b.AddColumn(Column{Label: HashLabel(2), ValueType: ValueTypeHashRef, Count: 1})
	b.AddRow(Row{ID: 0, Cells: []Cell{SingleCell(HashRef(0xAAAA))}})
	b.AddRow(Row{ID: 1, Cells: []Cell{SingleCell(HashRef(0xBBBB))}})
	tbl, err := b.Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}

	row, err := tbl.RowByHash(0xBBBB)
	if err != nil {
		t.Fatalf("RowByHash: %v", err)
	}
	if row.ID != 1 {
		t.Fatalf("RowByHash(0xBBBB).ID = %d, want 1", row.ID)
	}
	if _, err := tbl.RowByHash(0xCCCC); err == nil {
		t.Fatalf("expected error for an absent hash")
	}
}

func TestTableIntoOwned(t *testing.T) {
	b := NewBuilder(TextLabel("tbl"), DialectLegacySwitch)
	b.AddColumn(Column{Label: TextLabel("s"), ValueType: ValueTypeString, Count: 1})
	b.AddRow(Row{ID: 0, Cells: []Cell{SingleCell(Str("hello"))}})
	tbl, err := b.Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}

	owned := tbl.IntoOwned()
	owned.Rows[0].Cells[0] = SingleCell(Str("changed"))
	got, _ := tbl.Rows[0].Cells[0].Single.AsString()
	if got != "hello" {
		t.Fatalf("mutating IntoOwned copy affected the source table: got %q", got)
	}
}
