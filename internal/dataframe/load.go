package dataframe

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/viant/afs"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for file extensions that cannot be loaded.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Format returns the lower-cased extension of a file name without the dot.
func Format(name string) string {
	if idx := strings.IndexAny(name, "?#"); idx != -1 && strings.Contains(name, "://") {
		name = name[:idx]
	}
	return strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
}

// Read downloads URL with fs and loads it as a frame.
func Read(ctx context.Context, fs afs.Service, URL string) (*Frame, error) {
	format := Format(URL)
	if err := checkFormat(format); err != nil {
		return nil, err
	}
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", URL, err)
	}
	return Load(URL, data)
}

// Load decodes data according to the extension of name.
func Load(name string, data []byte) (*Frame, error) {
	format := Format(name)
	if err := checkFormat(format); err != nil {
		return nil, err
	}
	var frame *Frame
	var err error
	switch format {
	case "csv":
		frame, err = loadCSV(name, data)
	case "xlsx", "xlsm":
		frame, err = loadExcel(name, data)
	case "json":
		frame, err = loadJSON(name, data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	return frame, nil
}

func checkFormat(format string) error {
	switch format {
	case "csv", "xlsx", "xlsm", "json":
		return nil
	case "xls":
		return fmt.Errorf("%w: xls (legacy binary workbooks are not supported, save the file as xlsx)", ErrUnsupportedFormat)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

func loadCSV(name string, data []byte) (*Frame, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no columns to parse from file")
	}
	return fromRows(name, rows[0], rows[1:])
}

func loadExcel(name string, data []byte) (*Frame, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer workbook.Close()
	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheets[0])
	}
	return fromRows(name, rows[0], rows[1:])
}

// fromRows builds a frame out of a header and text rows of any width.
func fromRows(name string, header []string, rows [][]string) (*Frame, error) {
	width := len(header)
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	names := columnNames(header, width)
	columns := make([]*Column, width)
	for i := 0; i < width; i++ {
		cells := make([]string, len(rows))
		for j, row := range rows {
			if i < len(row) {
				cells[j] = row[i]
			}
		}
		columns[i] = textColumn(names[i], cells)
	}
	return New(name, columns...)
}

// columnNames fills blank headers and de-duplicates repeated names.
func columnNames(header []string, width int) []string {
	result := make([]string, width)
	seen := map[string]int{}
	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if count, ok := seen[name]; ok {
			seen[name] = count + 1
			name = name + "." + strconv.Itoa(count+1)
		}
		seen[name] = 0
		result[i] = name
	}
	return result
}

func loadJSON(name string, data []byte) (*Frame, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON document")
	}
	root := gjson.ParseBytes(data)
	switch {
	case root.IsArray():
		return jsonRecords(name, root)
	case root.IsObject():
		return jsonColumns(name, root)
	}
	return nil, fmt.Errorf("expected JSON array of records or object of columns")
}

// jsonRecords loads [{"a":1,"b":"x"}, ...]; keys missing in a record are missing cells.
func jsonRecords(name string, root gjson.Result) (*Frame, error) {
	var order []string
	cells := map[string][]interface{}{}
	rows := 0
	root.ForEach(func(_, record gjson.Result) bool {
		if !record.IsObject() {
			record = gjson.Parse(`{"0":` + record.Raw + `}`)
		}
		record.ForEach(func(key, value gjson.Result) bool {
			column := key.String()
			values, ok := cells[column]
			if !ok {
				order = append(order, column)
				values = make([]interface{}, rows)
			}
			cells[column] = append(values, jsonCell(value))
			return true
		})
		rows++
		for _, column := range order {
			if len(cells[column]) < rows {
				cells[column] = append(cells[column], nil)
			}
		}
		return true
	})
	columns := make([]*Column, len(order))
	for i, column := range order {
		columns[i] = valueColumn(column, cells[column])
	}
	frame, err := New(name, columns...)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		frame.rows = rows
	}
	return frame, nil
}

// jsonColumns loads {"a":[1,2]} or {"a":{"0":1,"1":2}} column oriented documents.
func jsonColumns(name string, root gjson.Result) (*Frame, error) {
	var order []string
	var labels []string
	labelIndex := map[string]int{}
	raw := map[string]gjson.Result{}
	var err error
	root.ForEach(func(key, value gjson.Result) bool {
		column := key.String()
		order = append(order, column)
		raw[column] = value
		switch {
		case value.IsArray():
			for i := len(labels); i < len(value.Array()); i++ {
				label := strconv.Itoa(i)
				labelIndex[label] = len(labels)
				labels = append(labels, label)
			}
		case value.IsObject():
			value.ForEach(func(label, _ gjson.Result) bool {
				if _, ok := labelIndex[label.String()]; !ok {
					labelIndex[label.String()] = len(labels)
					labels = append(labels, label.String())
				}
				return true
			})
		default:
			err = fmt.Errorf("column '%s' is neither an array nor an object", column)
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	columns := make([]*Column, len(order))
	for i, column := range order {
		values := make([]interface{}, len(labels))
		value := raw[column]
		if value.IsArray() {
			for j, item := range value.Array() {
				values[j] = jsonCell(item)
			}
		} else {
			value.ForEach(func(label, item gjson.Result) bool {
				values[labelIndex[label.String()]] = jsonCell(item)
				return true
			})
		}
		columns[i] = valueColumn(column, values)
	}
	return New(name, columns...)
}

func jsonCell(value gjson.Result) interface{} {
	switch value.Type {
	case gjson.Null:
		return nil
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Number:
		if !strings.ContainsAny(value.Raw, ".eE") {
			if i, err := strconv.ParseInt(value.Raw, 10, 64); err == nil {
				return i
			}
		}
		return value.Float()
	case gjson.String:
		return value.String()
	}
	return value.Raw
}
