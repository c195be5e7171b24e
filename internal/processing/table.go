package processing

import "strings"

// Table is an in-memory tabular dataset: a header row plus data rows. Every
// reader normalizes its input format into this shape.
type Table struct {
	Headers []string
	Rows    [][]string
}

// ColumnIndex returns the position of the named column, matched
// case-insensitively, or -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// AddColumn appends a column with the given values. Rows shorter than the
// header row are padded first so the new value lands in the right position.
func (t *Table) AddColumn(name string, values []string) {
	width := len(t.Headers)
	t.Headers = append(t.Headers, name)

	for i := range t.Rows {
		for len(t.Rows[i]) < width {
			t.Rows[i] = append(t.Rows[i], "")
		}
		value := ""
		if i < len(values) {
			value = values[i]
		}
		t.Rows[i] = append(t.Rows[i], value)
	}
}

// Cell returns the value at (row, col), or an empty string when the row is
// ragged and does not reach col.
func (t *Table) Cell(row, col int) string {
	if col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}
