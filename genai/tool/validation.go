package tool

import (
	"fmt"
	"strings"

	"github.com/viant/datacrew/genai/llm"
)

// FieldError captures one missing or invalid parameter detected during
// validation against the tool's JSON schema.
type FieldError struct {
	Name   string // parameter name, e.g. "file_path"
	Reason string
}

// ValidationError lists the problems found in a tool call.
type ValidationError struct {
	Tool     string
	Problems []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, problem := range e.Problems {
		parts = append(parts, fmt.Sprintf("%s: %s", problem.Name, problem.Reason))
	}
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, strings.Join(parts, "; "))
}

// ValidateArgs checks the provided args against the required list of the tool
// schema. It returns a copy of args with schema defaults filled in and the
// remaining problems.
func ValidateArgs(def llm.ToolDefinition, args map[string]interface{}) (map[string]interface{}, []FieldError) {
	fixed := map[string]interface{}{}
	for k, v := range args {
		fixed[k] = v
	}
	var problems []FieldError
	properties, _ := def.Parameters["properties"].(map[string]interface{})
	for _, field := range requiredFields(def) {
		if value, found := fixed[field]; found && value != nil {
			continue
		}
		if defVal := defaultValue(properties, field); defVal != nil {
			fixed[field] = defVal
			continue
		}
		problems = append(problems, FieldError{Name: field, Reason: "required but missing"})
	}
	return fixed, problems
}

func requiredFields(def llm.ToolDefinition) []string {
	var result []string
	switch actual := def.Parameters["required"].(type) {
	case []string:
		result = append(result, actual...)
	case []interface{}:
		for _, item := range actual {
			if field, ok := item.(string); ok {
				result = append(result, field)
			}
		}
	}
	if len(result) == 0 {
		result = def.Required
	}
	var fields []string
	for _, field := range result {
		if strings.TrimSpace(field) != "" {
			fields = append(fields, field)
		}
	}
	return fields
}

func defaultValue(props map[string]interface{}, field string) interface{} {
	if props == nil {
		return nil
	}
	switch actual := props[field].(type) {
	case map[string]interface{}:
		return actual["default"]
	}
	return nil
}
