package dataframe

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/types"
	"github.com/expr-lang/expr/vm"
	"github.com/expr-lang/expr/vm/runtime"
)

// DefaultQueryLimit caps the number of records returned by Query.
const DefaultQueryLimit = 10

// QueryResult holds the filtered shape and the leading records.
type QueryResult struct {
	Shape [2]int                   `json:"shape"`
	Data  []map[string]interface{} `json:"data"`
}

// Filter returns the rows for which the boolean expression holds. Columns are
// available as identifiers and through row["column name"]. Ordering
// comparisons with a missing value are false; rows where the expression
// cannot be evaluated do not match.
func (f *Frame) Filter(filter string) (*Frame, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil, fmt.Errorf("'filter' parameter required for query operation")
	}
	program, err := f.compile(filter)
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", filter, err)
	}
	var rows []int
	var firstErr error
	failed := 0
	for i := 0; i < f.rows; i++ {
		env := f.env(i)
		output, err := expr.Run(program, env)
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if matched, ok := output.(bool); ok && matched {
			rows = append(rows, i)
		}
	}
	if f.rows > 0 && failed == f.rows {
		return nil, fmt.Errorf("failed to evaluate filter %q: %w", filter, firstErr)
	}
	return f.Take(rows), nil
}

// Query filters the frame and returns the filtered shape with up to limit records.
func (f *Frame) Query(filter string, limit int) (*QueryResult, error) {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	filtered, err := f.Filter(filter)
	if err != nil {
		return nil, err
	}
	return &QueryResult{Shape: filtered.Shape(), Data: filtered.Head(limit)}, nil
}

func (f *Frame) compile(filter string) (*vm.Program, error) {
	declared := types.Map{"row": types.TypeOf(map[string]interface{}{})}
	for _, column := range f.Columns {
		if column.Name == "row" {
			continue
		}
		declared[column.Name] = types.Any
	}
	options := []expr.Option{expr.Env(declared), expr.AsBool(), expr.Patch(missingSafe{})}
	for operator, name := range comparisons {
		options = append(options, expr.Function(name, comparator(operator), new(func(any, any) bool)))
	}
	return expr.Compile(filter, options...)
}

// comparisons maps ordering operators to their missing-safe functions.
var comparisons = map[string]string{
	"<":  "__lt",
	"<=": "__le",
	">":  "__gt",
	">=": "__ge",
}

// missingSafe rewrites ordering comparisons into calls that treat missing values as false.
type missingSafe struct{}

func (missingSafe) Visit(node *ast.Node) {
	binary, ok := (*node).(*ast.BinaryNode)
	if !ok {
		return
	}
	name, ok := comparisons[binary.Operator]
	if !ok {
		return
	}
	ast.Patch(node, &ast.CallNode{
		Callee:    &ast.IdentifierNode{Value: name},
		Arguments: []ast.Node{binary.Left, binary.Right},
	})
}

func comparator(operator string) func(params ...any) (any, error) {
	return func(params ...any) (result any, err error) {
		left, right := params[0], params[1]
		if left == nil || right == nil {
			return false, nil
		}
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("invalid operation: %T %s %T", left, operator, right)
			}
		}()
		switch operator {
		case "<":
			return runtime.Less(left, right), nil
		case "<=":
			return runtime.LessOrEqual(left, right), nil
		case ">":
			return runtime.More(left, right), nil
		default:
			return runtime.MoreOrEqual(left, right), nil
		}
	}
}

func (f *Frame) env(i int) map[string]interface{} {
	record := make(map[string]interface{}, len(f.Columns))
	env := make(map[string]interface{}, len(f.Columns)+1)
	for _, column := range f.Columns {
		record[column.Name] = column.Values[i]
		env[column.Name] = column.Values[i]
	}
	env["row"] = record
	return env
}
