package llm

type Options struct {
	// Model is the model to use.
	Model string `json:"model" yaml:"model"`

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Temperature is the temperature for sampling, between 0 and 2; nil leaves the backend default.
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`

	// TopP is the cumulative probability for top-p sampling.
	TopP float64 `json:"top_p" yaml:"top_p"`

	// StopWords is a list of words to stop on.
	StopWords []string `json:"stop_words" yaml:"stop_words"`

	// Tools is a list of tools to use.
	Tools []Tool `json:"tools,omitempty" yaml:"tools,omitempty"`

	// ToolChoice is the choice of tool to use: "none", "auto" (default), or a specific tool.
	ToolChoice ToolChoice `json:"tool_choice,omitempty" yaml:"tool_choice,omitempty"`

	// Metadata is a map of metadata to include in the request.
	// The meaning of this field is specific to the backend in use.
	Metadata map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}
