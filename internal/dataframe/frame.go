// Package dataframe provides an in-memory columnar table loaded from CSV, Excel
// or JSON sources together with the analysis operations exposed to agents.
package dataframe

import (
	"fmt"
	"math"
)

// Kind is an inferred column type; names are reported as dtypes.
type Kind string

const (
	KindInt    Kind = "int64"
	KindFloat  Kind = "float64"
	KindBool   Kind = "bool"
	KindObject Kind = "object"
)

// IsNumeric reports whether the kind takes part in numeric statistics.
func (k Kind) IsNumeric() bool {
	return k == KindInt || k == KindFloat
}

// Column holds typed cell values; nil marks a missing cell.
type Column struct {
	Name   string
	Kind   Kind
	Values []interface{}
}

// Missing returns the number of missing cells.
func (c *Column) Missing() int {
	count := 0
	for _, v := range c.Values {
		if v == nil {
			count++
		}
	}
	return count
}

// Floats returns non missing values of a numeric column as float64.
func (c *Column) Floats() []float64 {
	result := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if f, ok := toFloat(v); ok {
			result = append(result, f)
		}
	}
	return result
}

// Frame is a column oriented table.
type Frame struct {
	Source  string
	Columns []*Column
	rows    int
	index   map[string]int
}

// New creates a frame, all columns have to have the same length.
func New(source string, columns ...*Column) (*Frame, error) {
	f := &Frame{Source: source, index: map[string]int{}}
	for i, column := range columns {
		if i == 0 {
			f.rows = len(column.Values)
		} else if len(column.Values) != f.rows {
			return nil, fmt.Errorf("column '%s' has %d values, expected %d", column.Name, len(column.Values), f.rows)
		}
		if _, ok := f.index[column.Name]; ok {
			return nil, fmt.Errorf("duplicate column '%s'", column.Name)
		}
		f.index[column.Name] = i
		f.Columns = append(f.Columns, column)
	}
	return f, nil
}

// Rows returns number of rows.
func (f *Frame) Rows() int { return f.rows }

// Shape returns rows and columns count.
func (f *Frame) Shape() [2]int { return [2]int{f.rows, len(f.Columns)} }

// Names returns column names in declaration order.
func (f *Frame) Names() []string {
	result := make([]string, len(f.Columns))
	for i, column := range f.Columns {
		result[i] = column.Name
	}
	return result
}

// Column returns a column by name.
func (f *Frame) Column(name string) (*Column, bool) {
	idx, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.Columns[idx], true
}

// MustColumns resolves names or returns a "column not found" error.
func (f *Frame) MustColumns(names ...string) ([]*Column, error) {
	result := make([]*Column, 0, len(names))
	for _, name := range names {
		column, ok := f.Column(name)
		if !ok {
			return nil, fmt.Errorf("column '%s' not found", name)
		}
		result = append(result, column)
	}
	return result, nil
}

// Numeric returns int64 and float64 columns.
func (f *Frame) Numeric() []*Column {
	var result []*Column
	for _, column := range f.Columns {
		if column.Kind.IsNumeric() {
			result = append(result, column)
		}
	}
	return result
}

// Dtypes returns column kinds keyed by column name.
func (f *Frame) Dtypes() map[string]string {
	result := make(map[string]string, len(f.Columns))
	for _, column := range f.Columns {
		result[column.Name] = string(column.Kind)
	}
	return result
}

// MissingValues returns missing cell counts keyed by column name.
func (f *Frame) MissingValues() map[string]int {
	result := make(map[string]int, len(f.Columns))
	for _, column := range f.Columns {
		result[column.Name] = column.Missing()
	}
	return result
}

// Record returns the i-th row keyed by column name.
func (f *Frame) Record(i int) map[string]interface{} {
	record := make(map[string]interface{}, len(f.Columns))
	for _, column := range f.Columns {
		record[column.Name] = jsonValue(column.Values[i])
	}
	return record
}

// Head returns up to n leading records.
func (f *Frame) Head(n int) []map[string]interface{} {
	if n < 0 || n > f.rows {
		n = f.rows
	}
	result := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		result = append(result, f.Record(i))
	}
	return result
}

// Take returns a new frame with the selected rows.
func (f *Frame) Take(rows []int) *Frame {
	columns := make([]*Column, len(f.Columns))
	for i, column := range f.Columns {
		values := make([]interface{}, len(rows))
		for j, row := range rows {
			values[j] = column.Values[row]
		}
		columns[i] = &Column{Name: column.Name, Kind: column.Kind, Values: values}
	}
	result, _ := New(f.Source, columns...)
	if len(columns) == 0 {
		result.rows = len(rows)
	}
	return result
}

func toFloat(v interface{}) (float64, bool) {
	switch actual := v.(type) {
	case int64:
		return float64(actual), true
	case float64:
		if math.IsNaN(actual) {
			return 0, false
		}
		return actual, true
	}
	return 0, false
}

// jsonValue replaces values JSON cannot represent with null.
func jsonValue(v interface{}) interface{} {
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil
	}
	return v
}

// number wraps a statistic for JSON output, NaN and infinities become null.
func number(f float64) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
