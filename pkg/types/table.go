// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Table is a minimal column-ordered relational frame used where a stage
// works against caller-supplied column names: the matcher's query and
// reference inputs and its result set. Rows are positionally aligned
// with Columns; missing cells are empty strings.
type Table struct {
	Columns []string   `json:"columns" yaml:"columns"`
	Rows    [][]string `json:"rows" yaml:"rows"`
}

// ColumnIndex returns the position of name in Columns, or an error when
// the column does not exist. A missing column is a caller contract
// violation, not a data-quality issue.
func (t *Table) ColumnIndex(name string) (int, error) {
	for i, c := range t.Columns {
		if c == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %q not found in table", name)
}

// Cell returns the value at (row, col), or "" when the row is ragged.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }
