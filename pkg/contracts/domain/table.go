package domain

// Table is a list of flattened records plus the column order every export
// format renders.
type Table struct {
	Columns []string  `json:"columns"`
	Rows    []*Record `json:"rows"`
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Cell returns the value of column in the given row. Fields a record does
// not carry read as Null.
func (t *Table) Cell(row int, column string) Value {
	if t == nil || row < 0 || row >= len(t.Rows) {
		return Null()
	}
	v, _ := t.Rows[row].Get(column)
	return v
}

// Row returns the cells of a row aligned with Columns
func (t *Table) Row(row int) []Value {
	cells := make([]Value, len(t.Columns))
	for i, column := range t.Columns {
		cells[i] = t.Cell(row, column)
	}
	return cells
}

// TextRow returns the cell texts of a row aligned with Columns
func (t *Table) TextRow(row int) []string {
	cells := make([]string, len(t.Columns))
	for i, column := range t.Columns {
		cells[i] = t.Cell(row, column).Text()
	}
	return cells
}
