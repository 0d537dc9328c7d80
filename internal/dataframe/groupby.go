package dataframe

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Aggregations supported by GroupBy.
var Aggregations = []string{"mean", "sum", "count", "min", "max", "median", "std"}

type group struct {
	keys []interface{}
	rows []int
}

// GroupBy groups rows by the key columns and aggregates every other column.
// Rows with a missing key are dropped; records are ordered by group keys.
// count applies to all columns, other aggregations to numeric columns only.
func (f *Frame) GroupBy(keys []string, aggregation string) ([]map[string]interface{}, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("'columns' parameter required for groupby operation")
	}
	if aggregation == "" {
		aggregation = "mean"
	}
	aggregation = strings.ToLower(aggregation)
	if !isAggregation(aggregation) {
		return nil, fmt.Errorf("unsupported aggregation '%s', supported: %s", aggregation, strings.Join(Aggregations, ", "))
	}
	keyColumns, err := f.MustColumns(keys...)
	if err != nil {
		return nil, err
	}
	groups := f.groups(keyColumns)

	isKey := map[string]bool{}
	for _, key := range keys {
		isKey[key] = true
	}
	var valueColumns []*Column
	for _, column := range f.Columns {
		if isKey[column.Name] {
			continue
		}
		if aggregation == "count" || column.Kind.IsNumeric() {
			valueColumns = append(valueColumns, column)
		}
	}

	result := make([]map[string]interface{}, 0, len(groups))
	for _, g := range groups {
		record := make(map[string]interface{}, len(keyColumns)+len(valueColumns))
		for i, column := range keyColumns {
			record[column.Name] = g.keys[i]
		}
		for _, column := range valueColumns {
			record[column.Name] = aggregate(column, g.rows, aggregation)
		}
		result = append(result, record)
	}
	return result, nil
}

func isAggregation(name string) bool {
	for _, candidate := range Aggregations {
		if candidate == name {
			return true
		}
	}
	return false
}

func (f *Frame) groups(keyColumns []*Column) []*group {
	index := map[string]*group{}
	var groups []*group
	for row := 0; row < f.rows; row++ {
		values := make([]interface{}, len(keyColumns))
		parts := make([]string, len(keyColumns))
		skip := false
		for i, column := range keyColumns {
			value := column.Values[row]
			if value == nil {
				skip = true
				break
			}
			values[i] = value
			parts[i] = fmt.Sprintf("%T:%v", value, value)
		}
		if skip {
			continue
		}
		key := strings.Join(parts, "\x00")
		g, ok := index[key]
		if !ok {
			g = &group{keys: values}
			index[key] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, row)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		for k := range groups[i].keys {
			if c := compare(groups[i].keys[k], groups[j].keys[k]); c != 0 {
				return c < 0
			}
		}
		return false
	})
	return groups
}

func aggregate(column *Column, rows []int, aggregation string) interface{} {
	if aggregation == "count" {
		count := 0
		for _, row := range rows {
			if column.Values[row] != nil {
				count++
			}
		}
		return count
	}
	var values []float64
	for _, row := range rows {
		if v, ok := toFloat(column.Values[row]); ok {
			values = append(values, v)
		}
	}
	isInt := column.Kind == KindInt
	switch aggregation {
	case "sum":
		sum := floats.Sum(values)
		if isInt {
			return int64(sum)
		}
		return sum
	}
	if len(values) == 0 {
		return nil
	}
	var value float64
	switch aggregation {
	case "mean":
		value = stat.Mean(values, nil)
	case "median":
		value = median(values)
	case "std":
		value = stdDev(values)
	case "min":
		value = floats.Min(values)
	case "max":
		value = floats.Max(values)
	}
	if isInt && (aggregation == "min" || aggregation == "max") {
		return int64(value)
	}
	return number(value)
}

// compare orders values of possibly different types: numbers, then bools, then strings.
func compare(a, b interface{}) int {
	rank := func(v interface{}) int {
		switch v.(type) {
		case int64, float64:
			return 0
		case bool:
			return 1
		}
		return 2
	}
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch ra {
	case 0:
		x, _ := toFloat(a)
		y, _ := toFloat(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case 1:
		x, y := a.(bool), b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
