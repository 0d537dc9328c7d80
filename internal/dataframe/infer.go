package dataframe

import (
	"strconv"
	"strings"
)

// missingTokens mirrors the default NA markers of common tabular readers.
var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"#N/A": true,
	"NaN":  true,
	"nan":  true,
	"-NaN": true,
	"null": true,
	"NULL": true,
	"None": true,
	"<NA>": true,
}

// textColumn builds a column from raw text cells, inferring its kind.
func textColumn(name string, cells []string) *Column {
	values := make([]interface{}, len(cells))
	for i, cell := range cells {
		cell = strings.TrimSpace(cell)
		if missingTokens[cell] {
			continue
		}
		values[i] = cell
	}
	return &Column{Name: name, Kind: inferText(values), Values: convertText(values)}
}

func inferText(values []interface{}) Kind {
	isInt, isFloat, isBool := true, true, true
	present, missing := 0, 0
	for _, v := range values {
		if v == nil {
			missing++
			continue
		}
		present++
		text := v.(string)
		if isInt {
			if _, err := strconv.ParseInt(text, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(text, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			if _, ok := parseBool(text); !ok {
				isBool = false
			}
		}
	}
	switch {
	case present == 0:
		return KindFloat
	case isInt && missing == 0:
		return KindInt
	case isInt || isFloat:
		return KindFloat
	case isBool && missing == 0:
		return KindBool
	}
	return KindObject
}

func convertText(values []interface{}) []interface{} {
	kind := inferText(values)
	result := make([]interface{}, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		text := v.(string)
		switch kind {
		case KindInt:
			result[i], _ = strconv.ParseInt(text, 10, 64)
		case KindFloat:
			result[i], _ = strconv.ParseFloat(text, 64)
		case KindBool:
			result[i], _ = parseBool(text)
		default:
			result[i] = text
		}
	}
	return result
}

func parseBool(text string) (bool, bool) {
	switch text {
	case "True", "true", "TRUE":
		return true, true
	case "False", "false", "FALSE":
		return false, true
	}
	return false, false
}

// valueColumn builds a column from already typed values (nil, bool, int64,
// float64, string), as produced by JSON decoding.
func valueColumn(name string, values []interface{}) *Column {
	allInt, allNumber, allBool := true, true, true
	present, missing := 0, 0
	for _, v := range values {
		switch v.(type) {
		case nil:
			missing++
			continue
		case int64:
			allBool = false
		case float64:
			allInt, allBool = false, false
		case bool:
			allInt, allNumber = false, false
		default:
			allInt, allNumber, allBool = false, false, false
		}
		present++
	}
	kind := KindObject
	switch {
	case present == 0:
		kind = KindFloat
	case allInt && missing == 0:
		kind = KindInt
	case allNumber:
		kind = KindFloat
	case allBool && missing == 0:
		kind = KindBool
	}
	result := make([]interface{}, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		if kind == KindFloat {
			result[i], _ = toFloat(v)
			continue
		}
		result[i] = v
	}
	return &Column{Name: name, Kind: kind, Values: result}
}
