package models

import (
	"strconv"
)

// Column is one named column of a Frame. Exactly one of Num or Text is used,
// depending on Numeric.
type Column struct {
	Name    string
	Numeric bool
	Num     []float64
	Text    []string
}

// Value renders row i as text.
func (c Column) Value(i int) string {
	if c.Numeric {
		return strconv.FormatFloat(c.Num[i], 'f', -1, 64)
	}
	return c.Text[i]
}

// Len returns the number of rows in the column.
func (c Column) Len() int {
	if c.Numeric {
		return len(c.Num)
	}
	return len(c.Text)
}

// Frame is an ordered set of equally long columns.
type Frame struct {
	Columns []Column
}

// Rows returns the row count.
func (f *Frame) Rows() int {
	if len(f.Columns) == 0 {
		return 0
	}
	return f.Columns[0].Len()
}

// Header returns the column names in order.
func (f *Frame) Header() []string {
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Name
	}
	return names
}

// Row renders row i as text in column order.
func (f *Frame) Row(i int) []string {
	row := make([]string, len(f.Columns))
	for j, c := range f.Columns {
		row[j] = c.Value(i)
	}
	return row
}

// Column returns the named column.
func (f *Frame) Column(name string) (Column, bool) {
	for _, c := range f.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}
