package adapter

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/datacrew/genai/tool"
	svc "github.com/viant/datacrew/genai/tool/service"
)

type testInner struct {
	Street string `json:"street" description:"Street address"`
	Zip    int    `json:"zip"`
}

type testInput struct {
	Name    string            `json:"name" validate:"required" description:"User name"`
	Age     *int              `json:"age,omitempty"`
	Secret  string            `json:"secret" internal:"true"`
	Tags    []string          `json:"tags"`
	Data    []byte            `json:"data"`
	Address testInner         `json:"address"`
	Meta    map[string]string `json:"meta"`
	Mode    string            `json:"mode,omitempty" enum:"fast,slow"`
}

type testOutput struct {
	Greeting string `json:"greeting"`
}

type textOutput struct {
	Value string
}

func (o *textOutput) Text() string { return o.Value }

type fakeService struct{}

func (fakeService) Name() string { return "test" }
func (fakeService) Methods() svc.Signatures {
	return []svc.Signature{
		{Name: "greet", Description: "Greets a user", Input: reflect.TypeOf(&testInput{}), Output: reflect.TypeOf(&testOutput{})},
		{Name: "shout", Input: reflect.TypeOf(&testInput{}), Output: reflect.TypeOf(&textOutput{})},
		{Name: "hidden", Internal: true},
	}
}

func (fakeService) Method(name string) (svc.Executable, error) {
	switch name {
	case "greet":
		return func(ctx context.Context, in, out interface{}) error {
			out.(*testOutput).Greeting = "hello " + in.(*testInput).Name
			return nil
		}, nil
	case "shout":
		return func(ctx context.Context, in, out interface{}) error {
			input := in.(*testInput)
			if input.Name == "fail" {
				return fmt.Errorf("cannot shout")
			}
			out.(*textOutput).Value = strings.ToUpper(input.Name)
			return nil
		}, nil
	}
	return nil, svc.NewMethodNotFoundError(name)
}

func TestDefinitions(t *testing.T) {
	defs := definitions(fakeService{})
	require.Len(t, defs, 2)
	def := defs[0]
	assert.Equal(t, "greet", def.Name)
	assert.Equal(t, "Greets a user", def.Description)
	assert.Equal(t, "shout", defs[1].Description)

	props := def.Parameters["properties"].(map[string]interface{})
	assert.ElementsMatch(t, []string{"name", "tags", "data", "address", "meta"}, def.Required)

	testCases := []struct {
		property   string
		expectType string
	}{
		{property: "name", expectType: "string"},
		{property: "age", expectType: "integer"},
		{property: "tags", expectType: "array"},
		{property: "data", expectType: "string"},
		{property: "address", expectType: "object"},
		{property: "meta", expectType: "object"},
		{property: "mode", expectType: "string"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.property, func(t *testing.T) {
			prop, ok := props[testCase.property].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, testCase.expectType, prop["type"])
		})
	}
	_, hasSecret := props["secret"]
	assert.False(t, hasSecret)
	assert.Equal(t, "User name", props["name"].(map[string]interface{})["description"])
	assert.Equal(t, []string{"fast", "slow"}, props["mode"].(map[string]interface{})["enum"])
	address := props["address"].(map[string]interface{})["properties"].(map[string]interface{})
	assert.Equal(t, "integer", address["zip"].(map[string]interface{})["type"])
}

func TestRegister(t *testing.T) {
	registry := tool.NewRegistry()
	require.NoError(t, Register(registry, fakeService{}))
	assert.Equal(t, []string{"greet", "shout"}, registry.Names())

	args := func(name string) map[string]interface{} {
		return map[string]interface{}{
			"name": name, "tags": []interface{}{"a"}, "data": "", "address": map[string]interface{}{"street": "x", "zip": 1}, "meta": map[string]interface{}{},
		}
	}
	testCases := []struct {
		description string
		tool        string
		args        map[string]interface{}
		expect      string
		expectErr   string
	}{
		{description: "json output", tool: "greet", args: args("ann"), expect: "{\n  \"greeting\": \"hello ann\"\n}"},
		{description: "text output", tool: "shout", args: args("bob"), expect: "BOB"},
		{description: "service prefix", tool: "test.shout", args: args("bob"), expect: "BOB"},
		{description: "method error", tool: "shout", args: args("fail"), expectErr: "cannot shout"},
		{description: "missing required", tool: "greet", args: map[string]interface{}{"name": "ann"}, expectErr: "required but missing"},
		{description: "validator rejects empty", tool: "greet", args: args(""), expectErr: "invalid greet arguments"},
		{description: "wrong type", tool: "greet", args: func() map[string]interface{} { a := args("x"); a["tags"] = 5; return a }(), expectErr: "invalid greet arguments"},
		{description: "internal not exposed", tool: "hidden", expectErr: `tool "hidden" not registered`},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			actual, err := registry.Execute(context.Background(), testCase.tool, testCase.args)
			if testCase.expectErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), testCase.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.expect, actual)
		})
	}
}
