package feature

import (
	"fmt"
	"sort"
)

// Record is a single row of input, field name to value.
type Record map[string]interface{}

// Frame is the canonical tabular form every input shape is normalized into
// before validation: named columns of equal length.
type Frame struct {
	cols []string
	data map[string][]interface{}
	rows int
}

// NewFrame builds a frame from named columns. All columns must have the
// same length.
func NewFrame(data map[string][]interface{}) (*Frame, error) {
	cols := make([]string, 0, len(data))
	for name := range data {
		cols = append(cols, name)
	}
	sort.Strings(cols)

	rows := -1
	for _, name := range cols {
		if rows == -1 {
			rows = len(data[name])
			continue
		}
		if len(data[name]) != rows {
			return nil, fmt.Errorf("column %q has %d values, want %d", name, len(data[name]), rows)
		}
	}
	if rows == -1 {
		rows = 0
	}

	copied := make(map[string][]interface{}, len(data))
	for name, vals := range data {
		copied[name] = append([]interface{}(nil), vals...)
	}
	return &Frame{cols: cols, data: copied, rows: rows}, nil
}

// FrameFromRecord treats a single record as a one-row frame.
func FrameFromRecord(r Record) *Frame {
	return FrameFromRecords([]Record{r})
}

// FrameFromRecords treats a slice of records as a multi-row frame in slice
// order. Columns are the union of all record keys; a record missing a key
// contributes a nil value in that column.
func FrameFromRecords(rs []Record) *Frame {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range rs {
		for name := range r {
			if !seen[name] {
				seen[name] = true
				cols = append(cols, name)
			}
		}
	}
	sort.Strings(cols)

	data := make(map[string][]interface{}, len(cols))
	for _, name := range cols {
		vals := make([]interface{}, len(rs))
		for i, r := range rs {
			vals[i] = r[name]
		}
		data[name] = vals
	}
	return &Frame{cols: cols, data: data, rows: len(rs)}
}

// Rows returns the number of rows.
func (f *Frame) Rows() int {
	return f.rows
}

// ColumnNames returns the column names in stable order.
func (f *Frame) ColumnNames() []string {
	return append([]string(nil), f.cols...)
}

// HasColumn reports whether the named column is present.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.data[name]
	return ok
}

// Column returns the values of the named column, or nil if absent.
func (f *Frame) Column(name string) []interface{} {
	return f.data[name]
}

// Float coerces a cell value to float64. Strings are deliberately not
// parsed; a string where a number belongs surfaces as an error from the
// transform, not a silent conversion.
func Float(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case nil:
		return 0, fmt.Errorf("missing value")
	default:
		return 0, fmt.Errorf("not a number: %v (%T)", v, v)
	}
}
