// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bdat

import "testing"

func TestFileAddAnomalyDeduplicates(t *testing.T) {
	f := &File{}
	f.addAnomaly(AnoZeroTables)
	f.addAnomaly(AnoZeroTables)
	f.addAnomaly(AnoZeroColumns)
	if len(f.Anomalies) != 2 {
		t.Fatalf("Anomalies = %v, want 2 distinct entries", f.Anomalies)
	}
}

func TestFileCollectAnomaliesZeroTables(t *testing.T) {
	f := &File{}
	f.collectAnomalies()
	if len(f.Anomalies) != 1 || f.Anomalies[0] != AnoZeroTables {
		t.Fatalf("Anomalies = %v, want [%q]", f.Anomalies, AnoZeroTables)
	}
}

func TestFileCollectAnomaliesZeroColumnsAndRows(t *testing.T) {
	f := &File{Tables: []*Table{{Name: TextLabel("Empty")}}}
	f.collectAnomalies()

	var sawColumns, sawRows bool
	for _, a := range f.Anomalies {
		if a == AnoZeroColumns {
			sawColumns = true
		}
		if a == AnoZeroRows {
			sawRows = true
		}
	}
	if !sawColumns || !sawRows {
		t.Fatalf("Anomalies = %v, want both %q and %q", f.Anomalies, AnoZeroColumns, AnoZeroRows)
	}
}

func TestFileCollectAnomaliesCleanTableReportsNothing(t *testing.T) {
	b := NewBuilder(TextLabel("ITM_Data"), DialectModern)
	b.AddColumn(Column{Label: TextLabel("Id"), ValueType: ValueTypeU32, Count: 1})
	b.AddRow(Row{ID: 0, Cells: []Cell{SingleCell(U32(1))}})
	tbl, err := b.Build()
	if err != nil {
		t.Fatalf("Build(): %v", err)
	}

	f := &File{Tables: []*Table{tbl}}
	f.collectAnomalies()
	if len(f.Anomalies) != 0 {
		t.Fatalf("Anomalies = %v, want none", f.Anomalies)
	}
}
