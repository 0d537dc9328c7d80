package dataframe

import (
	"fmt"
	"strings"
)

// Operations lists the analysis operations accepted by Analyze.
var Operations = []string{"info", "describe", "correlation", "groupby", "query", "summary"}

// Info describes the loaded dataset.
type Info struct {
	Shape         [2]int                   `json:"shape"`
	Columns       []string                 `json:"columns"`
	Dtypes        map[string]string        `json:"dtypes"`
	MissingValues map[string]int           `json:"missing_values"`
	SampleData    []map[string]interface{} `json:"sample_data"`
	FilePath      string                   `json:"file_path"`
}

// Summary is a one stop overview of the dataset.
type Summary struct {
	Shape              [2]int                            `json:"shape"`
	Dtypes             map[string]string                 `json:"dtypes"`
	MissingValues      map[string]int                    `json:"missing_values"`
	NumericSummary     map[string]map[string]interface{} `json:"numeric_summary"`
	CategoricalSummary map[string]map[string]int         `json:"categorical_summary"`
}

// Info returns structure, missing values and the first five records.
func (f *Frame) Info() *Info {
	return &Info{
		Shape:         f.Shape(),
		Columns:       f.Names(),
		Dtypes:        f.Dtypes(),
		MissingValues: f.MissingValues(),
		SampleData:    f.Head(5),
		FilePath:      f.Source,
	}
}

// Summary returns shape, types, missing values, numeric statistics and value
// counts of object columns.
func (f *Frame) Summary() (*Summary, error) {
	numeric, err := f.Describe(nil)
	if err != nil {
		return nil, err
	}
	categorical := map[string]map[string]int{}
	for _, column := range f.Columns {
		if column.Kind != KindObject {
			continue
		}
		counts := map[string]int{}
		for _, v := range column.Values {
			if v == nil {
				continue
			}
			counts[fmt.Sprint(v)]++
		}
		categorical[column.Name] = counts
	}
	return &Summary{
		Shape:              f.Shape(),
		Dtypes:             f.Dtypes(),
		MissingValues:      f.MissingValues(),
		NumericSummary:     numeric,
		CategoricalSummary: categorical,
	}, nil
}

// Analyze runs the named operation with loosely typed parameters as sent by a model.
func (f *Frame) Analyze(operation string, params map[string]interface{}) (interface{}, error) {
	if params == nil {
		params = map[string]interface{}{}
	}
	switch strings.ToLower(strings.TrimSpace(operation)) {
	case "info":
		return f.Info(), nil
	case "describe":
		percentiles, err := Floats(params["percentiles"])
		if err != nil {
			return nil, fmt.Errorf("invalid 'percentiles': %w", err)
		}
		return f.Describe(percentiles)
	case "correlation":
		return f.Correlation()
	case "groupby":
		if _, ok := params["columns"]; !ok {
			return nil, fmt.Errorf("'columns' parameter required for groupby operation")
		}
		columns, err := Strings(params["columns"])
		if err != nil {
			return nil, fmt.Errorf("invalid 'columns': %w", err)
		}
		aggregation, _ := params["aggregation"].(string)
		return f.GroupBy(columns, aggregation)
	case "query":
		filter, _ := params["filter"].(string)
		if filter == "" {
			return nil, fmt.Errorf("'filter' parameter required for query operation")
		}
		limit, err := Int(params["limit"])
		if err != nil {
			return nil, fmt.Errorf("invalid 'limit': %w", err)
		}
		return f.Query(filter, limit)
	case "summary":
		return f.Summary()
	case "custom":
		return nil, fmt.Errorf("unsupported operation 'custom': executing arbitrary code is not allowed, use one of: %s", strings.Join(Operations, ", "))
	}
	return nil, fmt.Errorf("unsupported operation '%s'", operation)
}

// Strings accepts a string or a list of strings.
func Strings(value interface{}) ([]string, error) {
	switch actual := value.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{actual}, nil
	case []string:
		return actual, nil
	case []interface{}:
		result := make([]string, 0, len(actual))
		for _, item := range actual {
			text, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", item)
			}
			result = append(result, text)
		}
		return result, nil
	}
	return nil, fmt.Errorf("expected string or list of strings, got %T", value)
}

// Floats accepts a number or a list of numbers.
func Floats(value interface{}) ([]float64, error) {
	switch actual := value.(type) {
	case nil:
		return nil, nil
	case []float64:
		return actual, nil
	case []interface{}:
		result := make([]float64, 0, len(actual))
		for _, item := range actual {
			f, ok := number64(item)
			if !ok {
				return nil, fmt.Errorf("expected number, got %T", item)
			}
			result = append(result, f)
		}
		return result, nil
	}
	if f, ok := number64(value); ok {
		return []float64{f}, nil
	}
	return nil, fmt.Errorf("expected list of numbers, got %T", value)
}

// Int accepts an integral number, zero when absent.
func Int(value interface{}) (int, error) {
	if value == nil {
		return 0, nil
	}
	f, ok := number64(value)
	if !ok || f != float64(int(f)) {
		return 0, fmt.Errorf("expected integer, got %v", value)
	}
	return int(f), nil
}

func number64(value interface{}) (float64, bool) {
	switch actual := value.(type) {
	case float64:
		return actual, true
	case float32:
		return float64(actual), true
	case int:
		return float64(actual), true
	case int64:
		return float64(actual), true
	}
	return 0, false
}
