// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bdat

// Row is one record of a table: a numeric ID plus one Cell per column,
// positional.
type Row struct {
	ID    uint32
	Cells []Cell
}

// Table is the in-memory model produced by the readers and consumed by
// the writers. It is a single-owner value; mutation requires exclusive
// access, per the concurrency model in the specification this package
// implements.
type Table struct {
	Name    Label
	BaseID  uint32
	Columns []Column
	Rows    []Row
	Dialect Dialect

	hashIndex map[uint32]int // populated lazily for modern primary-key tables
}

// Builder assembles a Table while enforcing invariants T1-T4: every row
// matches the column shapes (T1), BaseID equals the minimum row ID and
// a row's position equals id-BaseID (T2), modern tables use only single
// cells with no flags/lists (T3), and modern primary-key tables (first
// column HashRef) carry no duplicate row hashes (T4).
type Builder struct {
	name    Label
	dialect Dialect
	columns []Column
	rows    []Row
	err     error
}

// NewBuilder starts a Table builder for the given dialect.
func NewBuilder(name Label, dialect Dialect) *Builder {
	return &Builder{name: name, dialect: dialect}
}

// AddColumn appends a column definition. Columns must all be added
// before any row.
func (b *Builder) AddColumn(c Column) *Builder {
	if b.err != nil {
		return b
	}
	if err := c.validate(); err != nil {
		b.err = err
		return b
	}
	if b.dialect == DialectModern && len(c.Flags) > 0 {
		b.err = errInvalidFlagType(c.ValueType)
		return b
	}
	if b.dialect == DialectModern && c.Count > 1 {
		b.err = errMalformedTable("modern columns cannot repeat (T3)")
		return b
	}
	if b.dialect.IsLegacy() {
		for _, existing := range b.columns {
			if existing.Label.Equal(c.Label) {
				b.err = errDuplicateKey(existing.Label, c.Label, 0, 0)
				return b
			}
		}
	}
	b.columns = append(b.columns, c)
	return b
}

// AddRow appends a row. Row shape is checked against the already-added
// columns (invariant T1).
func (b *Builder) AddRow(r Row) *Builder {
	if b.err != nil {
		return b
	}
	if len(r.Cells) != len(b.columns) {
		b.err = errMalformedTable("row cell count does not match column count")
		return b
	}
	for i, cell := range r.Cells {
		want := b.columns[i].Shape()
		if cell.Shape != want {
			b.err = errMalformedTable("row cell shape does not match its column")
			return b
		}
		if b.dialect == DialectModern && cell.Shape != ShapeSingle {
			b.err = errMalformedTable("modern cells must be single-valued (T3)")
			return b
		}
	}
	b.rows = append(b.rows, r)
	return b
}

// Build finalises the table, deriving BaseID (T2) and checking the
// modern primary-key uniqueness rule (T4). It fails if any prior step
// recorded an error, or if the new checks fail.
func (b *Builder) Build() (*Table, error) {
	if b.err != nil {
		return nil, b.err
	}

	baseID := uint32(0)
	if len(b.rows) > 0 {
		baseID = b.rows[0].ID
		for _, r := range b.rows {
			if r.ID < baseID {
				baseID = r.ID
			}
		}
	}
	for i, r := range b.rows {
		if int(r.ID-baseID) != i {
			return nil, errMalformedTable("row IDs must be contiguous starting at the base ID")
		}
	}

	t := &Table{
		Name:    b.name,
		BaseID:  baseID,
		Columns: b.columns,
		Rows:    b.rows,
		Dialect: b.dialect,
	}

	if b.dialect == DialectModern && len(b.columns) > 0 && b.columns[0].ValueType == ValueTypeHashRef {
		seen := make(map[uint32]int, len(b.rows))
		for i, r := range b.rows {
			h, err := r.Cells[0].Single.AsUint()
			if err != nil {
				continue
			}
			if prev, ok := seen[h]; ok {
				return nil, errDuplicateKey(b.columns[0].Label, HashLabel(h), b.rows[prev].ID, r.ID)
			}
			seen[h] = i
		}
		t.hashIndex = seen
	}

	return t, nil
}

// Row returns the row with the given ID.
func (t *Table) Row(id uint32) (*Row, error) {
	if id < t.BaseID || int(id-t.BaseID) >= len(t.Rows) {
		return nil, errMalformedTable("no such row")
	}
	return &t.Rows[id-t.BaseID], nil
}

// RowByHash resolves a row by its first column's hash value. Only
// valid for modern tables whose first column is HashRef.
func (t *Table) RowByHash(h uint32) (*Row, error) {
	if t.hashIndex == nil {
		return nil, errMalformedTable("table has no hash index")
	}
	i, ok := t.hashIndex[h]
	if !ok {
		return nil, errMalformedTable("no such row")
	}
	return &t.Rows[i], nil
}

// ColumnIndex returns the position of the column with the given label,
// or -1 if none matches.
func (t *Table) ColumnIndex(label Label) int {
	for i, c := range t.Columns {
		if c.Label.Equal(label) {
			return i
		}
	}
	return -1
}

// Cell returns the cell at (rowID, label).
func (t *Table) Cell(rowID uint32, label Label) (*Cell, error) {
	r, err := t.Row(rowID)
	if err != nil {
		return nil, err
	}
	i := t.ColumnIndex(label)
	if i < 0 {
		return nil, errMalformedTable("no such column")
	}
	return &r.Cells[i], nil
}

// IntoOwned returns a copy of the table in which every borrowed String
// / DebugString value has been materialised into an owned Go string.
// Since this package's Value already stores strings as Go strings
// (never as a slice alias), IntoOwned is a structural deep copy that
// exists to give callers the same "detach from the source buffer"
// guarantee the specification requires, independent of how a given
// reader happened to produce its strings.
func (t *Table) IntoOwned() *Table {
	cp := *t
	cp.Columns = make([]Column, len(t.Columns))
	for i, c := range t.Columns {
		c.Flags = append([]FlagDef(nil), c.Flags...)
		cp.Columns[i] = c
	}
	cp.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		cells := make([]Cell, len(r.Cells))
		for j, c := range r.Cells {
			c.List = append([]Value(nil), c.List...)
			c.Flags = append([]uint32(nil), c.Flags...)
			cells[j] = c
		}
		cp.Rows[i] = Row{ID: r.ID, Cells: cells}
	}
	if t.hashIndex != nil {
		cp.hashIndex = make(map[uint32]int, len(t.hashIndex))
		for k, v := range t.hashIndex {
			cp.hashIndex[k] = v
		}
	}
	return &cp
}
