// Package adapter exposes service methods as model-callable tools.
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/viant/datacrew/genai/llm"
	"github.com/viant/datacrew/genai/tool"
	svc "github.com/viant/datacrew/genai/tool/service"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// definitions derives a tool definition for every public method of s.
// Tool names are method names; parameters come from the input struct.
func definitions(s svc.Service) []llm.ToolDefinition {
	var result []llm.ToolDefinition
	for _, sig := range s.Methods() {
		if sig.Internal {
			continue
		}
		result = append(result, definition(sig))
	}
	return result
}

// Register adds every public method of the services to registry.
func Register(registry *tool.Registry, services ...svc.Service) error {
	for _, s := range services {
		for _, sig := range s.Methods() {
			if sig.Internal {
				continue
			}
			exec, err := s.Method(sig.Name)
			if err != nil {
				return fmt.Errorf("failed to resolve %s.%s: %w", s.Name(), sig.Name, err)
			}
			registry.Register(definition(sig), handler(sig, exec))
		}
	}
	return nil
}

func definition(sig svc.Signature) llm.ToolDefinition {
	inT := sig.Input
	if inT == nil {
		inT = reflect.TypeOf(struct{}{})
	}
	props, required := objectSchema(inT)
	description := sig.Description
	if description == "" {
		description = sig.Name
	}
	params := map[string]interface{}{"type": "object", "properties": props}
	if len(required) > 0 {
		params["required"] = required
	}
	return llm.ToolDefinition{
		Name:        sig.Name,
		Description: description,
		Parameters:  params,
		Required:    required,
	}
}

func handler(sig svc.Signature, exec svc.Executable) tool.Handler {
	return func(ctx context.Context, args map[string]interface{}) (string, error) {
		input := newValue(sig.Input)
		if input != nil {
			data, err := json.Marshal(args)
			if err != nil {
				return "", err
			}
			if err = json.Unmarshal(data, input); err != nil {
				return "", fmt.Errorf("invalid %s arguments: %w", sig.Name, err)
			}
			if indirectType(sig.Input).Kind() == reflect.Struct {
				if err = validate.Struct(input); err != nil {
					return "", fmt.Errorf("invalid %s arguments: %w", sig.Name, err)
				}
			}
		}
		output := newValue(sig.Output)
		if err := exec(ctx, input, output); err != nil {
			return "", err
		}
		return render(output)
	}
}

func newValue(t reflect.Type) interface{} {
	if t == nil {
		return nil
	}
	return reflect.New(indirectType(t)).Interface()
}

func render(output interface{}) (string, error) {
	if output == nil {
		return "", nil
	}
	if texter, ok := output.(svc.Texter); ok {
		return texter.Text(), nil
	}
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode tool output: %w", err)
	}
	return string(data), nil
}
