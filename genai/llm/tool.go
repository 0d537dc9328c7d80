package llm

// Tool represents a tool that can be used by an LLM.
type Tool struct {
	// Type is the type of the tool. Currently, only "function" is supported.
	Type string `json:"type" yaml:"type"`

	// Definition follows the JSON schema function declaration used by chat APIs.
	Definition ToolDefinition `json:"definition" yaml:"definition"`
}

// ToolDefinition represents a function that can be called by an LLM.
type ToolDefinition struct {
	// Name is the name of the function to be called.
	Name string `json:"name" yaml:"name"`

	// Description is a description of what the function does.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Parameters is a JSON Schema object that defines the input parameters the function accepts.
	Parameters map[string]interface{} `json:"parameters,omitempty" yaml:"parameters,omitempty"`

	// Required is a list of required parameters.
	Required []string `json:"required,omitempty" yaml:"required"`
}

// NewFunctionTool creates a new Tool representing a callable function.
func NewFunctionTool(definition ToolDefinition) Tool {
	return Tool{
		Type:       "function",
		Definition: definition,
	}
}

// Normalize ensures parameters is always a JSON object with type=object,
// properties=object and the required list folded in.
func (d *ToolDefinition) Normalize() {
	if d.Parameters == nil {
		d.Parameters = map[string]interface{}{}
	}
	if _, ok := d.Parameters["type"]; !ok || d.Parameters["type"] == nil {
		d.Parameters["type"] = "object"
	}
	if props, ok := d.Parameters["properties"]; !ok || props == nil {
		d.Parameters["properties"] = map[string]interface{}{}
	} else if _, ok := props.(map[string]interface{}); !ok {
		switch m := props.(type) {
		case map[string]map[string]interface{}:
			coerced := make(map[string]interface{}, len(m))
			for k, v := range m {
				coerced[k] = v
			}
			d.Parameters["properties"] = coerced
		default:
			d.Parameters["properties"] = map[string]interface{}{}
		}
	}
	if len(d.Required) > 0 {
		if _, ok := d.Parameters["required"]; !ok {
			d.Parameters["required"] = d.Required
		}
	}
}

// ToolChoice represents a choice of tool to use.
// It can be "none", "auto", or a specific tool.
type ToolChoice struct {
	// Type is the type of the tool choice. It can be "none", "auto", or "function".
	Type string `json:"type"`

	// Function is the function to call if Type is "function".
	Function *ToolChoiceFunction `json:"function,omitempty"`
}

// ToolChoiceFunction represents a function to call in a tool choice.
type ToolChoiceFunction struct {
	// Name is the name of the function to call.
	Name string `json:"name"`
}

// NewAutoToolChoice creates a new ToolChoice with "auto" type.
func NewAutoToolChoice() ToolChoice {
	return ToolChoice{
		Type: "auto",
	}
}

// NewNoneToolChoice creates a new ToolChoice with "none" type.
func NewNoneToolChoice() ToolChoice {
	return ToolChoice{
		Type: "none",
	}
}

// NewFunctionToolChoice creates a new ToolChoice with "function" type and the given function name.
func NewFunctionToolChoice(name string) ToolChoice {
	return ToolChoice{
		Type: "function",
		Function: &ToolChoiceFunction{
			Name: name,
		},
	}
}
