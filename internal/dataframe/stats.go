package dataframe

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrNoNumericColumns is returned by numeric operations on frames without numeric columns.
var ErrNoNumericColumns = errors.New("No numeric columns found for correlation analysis")

// DefaultPercentiles are used by Describe when none are supplied.
var DefaultPercentiles = []float64{0.25, 0.5, 0.75}

// Describe returns count, mean, std, min, percentiles and max for every
// numeric column, keyed by column then statistic.
func (f *Frame) Describe(percentiles []float64) (map[string]map[string]interface{}, error) {
	percentiles, err := normalizePercentiles(percentiles)
	if err != nil {
		return nil, err
	}
	result := map[string]map[string]interface{}{}
	for _, column := range f.Numeric() {
		result[column.Name] = describe(column.Floats(), percentiles)
	}
	return result, nil
}

func describe(values []float64, percentiles []float64) map[string]interface{} {
	summary := map[string]interface{}{"count": float64(len(values))}
	if len(values) == 0 {
		summary["mean"], summary["std"], summary["min"], summary["max"] = nil, nil, nil, nil
		for _, p := range percentiles {
			summary[percentileLabel(p)] = nil
		}
		return summary
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	summary["mean"] = number(stat.Mean(values, nil))
	summary["std"] = number(stdDev(values))
	summary["min"] = number(floats.Min(values))
	summary["max"] = number(floats.Max(values))
	for _, p := range percentiles {
		summary[percentileLabel(p)] = number(quantile(p, sorted))
	}
	return summary
}

// stdDev is the sample standard deviation, undefined for fewer than two values.
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	return stat.StdDev(values, nil)
}

// quantile interpolates linearly between the closest ranks of sorted values.
func quantile(p float64, sorted []float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return quantile(0.5, sorted)
}

func normalizePercentiles(percentiles []float64) ([]float64, error) {
	if len(percentiles) == 0 {
		return DefaultPercentiles, nil
	}
	unique := map[float64]bool{0.5: true}
	for _, p := range percentiles {
		if p < 0 || p > 1 || math.IsNaN(p) {
			return nil, fmt.Errorf("percentiles should all be in the interval [0, 1], got %v", p)
		}
		unique[p] = true
	}
	result := make([]float64, 0, len(unique))
	for p := range unique {
		result = append(result, p)
	}
	sort.Float64s(result)
	return result, nil
}

func percentileLabel(p float64) string {
	return strconv.FormatFloat(p*100, 'f', -1, 64) + "%"
}

// Correlation returns the Pearson correlation matrix of numeric columns using
// pairwise complete observations.
func (f *Frame) Correlation() (map[string]map[string]interface{}, error) {
	numeric := f.Numeric()
	if len(numeric) == 0 {
		return nil, ErrNoNumericColumns
	}
	matrix := correlationMatrix(numeric)
	result := make(map[string]map[string]interface{}, len(numeric))
	for i, x := range numeric {
		row := make(map[string]interface{}, len(numeric))
		for j, y := range numeric {
			row[y.Name] = number(matrix[i][j])
		}
		result[x.Name] = row
	}
	return result, nil
}

func correlationMatrix(columns []*Column) [][]float64 {
	matrix := make([][]float64, len(columns))
	for i := range columns {
		matrix[i] = make([]float64, len(columns))
	}
	for i := range columns {
		for j := i; j < len(columns); j++ {
			value := pairwiseCorrelation(columns[i], columns[j])
			matrix[i][j], matrix[j][i] = value, value
		}
	}
	return matrix
}

func pairwiseCorrelation(a, b *Column) float64 {
	var x, y []float64
	for i := range a.Values {
		xv, ok1 := toFloat(a.Values[i])
		yv, ok2 := toFloat(b.Values[i])
		if ok1 && ok2 {
			x = append(x, xv)
			y = append(y, yv)
		}
	}
	if len(x) < 2 {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

// CorrelationMatrix returns numeric column names with their correlation matrix.
func (f *Frame) CorrelationMatrix() ([]string, [][]float64, error) {
	numeric := f.Numeric()
	if len(numeric) == 0 {
		return nil, nil, ErrNoNumericColumns
	}
	names := make([]string, len(numeric))
	for i, column := range numeric {
		names[i] = column.Name
	}
	return names, correlationMatrix(numeric), nil
}
