package validation

import (
	"fmt"

	"github.com/ginjaninja78/broai/internal/templates"
	"github.com/ginjaninja78/broai/internal/types"
)

// Table is an editable set of rows bound to template columns, used to fix
// rows before confirming an import.
//
// Edits never modify a row in place: the edited row and the row slice are
// replaced, so rows handed out by Rows() and results of earlier Validate
// calls stay as they were.
type Table struct {
	columns []templates.Column
	rows    []types.Row
}

// NewTable copies the given rows into a new table.
func NewTable(columns []templates.Column, rows []types.Row) *Table {
	return &Table{
		columns: append([]templates.Column(nil), columns...),
		rows:    types.CloneRows(rows),
	}
}

// Columns returns the table columns.
func (t *Table) Columns() []templates.Column {
	return append([]templates.Column(nil), t.columns...)
}

// Rows returns a copy of the current rows.
func (t *Table) Rows() []types.Row {
	return types.CloneRows(t.rows)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// SetCell replaces one cell.
func (t *Table) SetCell(row int, key string, v types.Value) error {
	if row < 0 || row >= len(t.rows) {
		return fmt.Errorf("row %d out of range (table has %d rows)", row, len(t.rows))
	}
	next := make([]types.Row, len(t.rows))
	copy(next, t.rows)

	edited := next[row].Clone()
	if edited == nil {
		edited = make(types.Row, 1)
	}
	edited[key] = v
	next[row] = edited

	t.rows = next
	return nil
}

// AddRow appends a row with an empty string in every column and returns
// its index.
func (t *Table) AddRow() int {
	row := make(types.Row, len(t.columns))
	for _, c := range t.columns {
		row[c.Key] = types.String("")
	}
	next := make([]types.Row, len(t.rows), len(t.rows)+1)
	copy(next, t.rows)
	t.rows = append(next, row)
	return len(t.rows) - 1
}

// RemoveRow deletes a row. Later rows shift up by one.
func (t *Table) RemoveRow(row int) error {
	if row < 0 || row >= len(t.rows) {
		return fmt.Errorf("row %d out of range (table has %d rows)", row, len(t.rows))
	}
	next := make([]types.Row, 0, len(t.rows)-1)
	next = append(next, t.rows[:row]...)
	next = append(next, t.rows[row+1:]...)
	t.rows = next
	return nil
}

// Validate validates the current rows.
func (t *Table) Validate() Result {
	return Validate(t.columns, t.rows)
}
