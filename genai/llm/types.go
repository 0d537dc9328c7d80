package llm

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// MessageRole represents the role of the message sender.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

func (m MessageRole) String() string {
	return string(m)
}

// Message is a provider-neutral chat message.
type Message struct {
	// Role of the sender (user, assistant, system, tool)
	Role MessageRole `json:"role"`

	// Name is the optional sender/tool name.
	Name string `json:"name,omitempty"`

	// Content is the text payload.
	Content string `json:"content,omitempty"`

	// ToolCalls represents structured function/tool calls requested by the assistant.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallId links a tool result message back to the originating call.
	ToolCallId string `json:"tool_call_id,omitempty"`
}

// FunctionCall carries the wire form of a tool invocation.
type FunctionCall struct {
	// Name is the name of the function to call.
	Name string `json:"name"`

	// Arguments is a JSON string containing the arguments to pass to the function.
	Arguments string `json:"arguments"`
}

// ToolCall is a structured representation of a function/tool invocation.
type ToolCall struct {
	// ID is a unique identifier for the tool call.
	ID string `json:"id,omitempty"`

	// Name is the name of the tool to call.
	Name string `json:"name"`

	// Arguments contains the decoded arguments to pass to the tool.
	Arguments map[string]interface{} `json:"arguments,omitempty"`

	Type     string       `json:"type,omitempty"`
	Function FunctionCall `json:"function,omitempty"`

	Result string `json:"result,omitempty"`
	//Error tool call error
	Error string `json:"error,omitempty"`
}

// DecodeArguments returns call arguments, decoding the raw JSON function
// arguments when the structured form was not populated by the provider.
func (c *ToolCall) DecodeArguments() (map[string]interface{}, error) {
	if c.Arguments != nil {
		return c.Arguments, nil
	}
	raw := strings.TrimSpace(c.Function.Arguments)
	if raw == "" {
		return map[string]interface{}{}, nil
	}
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	c.Arguments = args
	return args, nil
}

// ToolName returns the invoked tool name regardless of which field carries it.
func (c *ToolCall) ToolName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Function.Name
}

// GenerateRequest represents a request to a chat-based LLM.
type GenerateRequest struct {
	// Messages is the list of messages in the conversation.
	Messages []Message `json:"messages"`

	// Options contains additional options for the request.
	Options *Options `json:"options,omitempty"`
}

// GenerateResponse represents a response from a chat-based LLM.
type GenerateResponse struct {
	// Choices contains the generated responses.
	Choices []Choice `json:"choices"`

	// Usage contains token usage information.
	Usage *Usage `json:"usage,omitempty"`
	Model string `json:"model,omitempty"`
}

// Message returns the first choice message, or nil when the response is empty.
func (r *GenerateResponse) Message() *Message {
	if r == nil || len(r.Choices) == 0 {
		return nil
	}
	return &r.Choices[0].Message
}

// Choice represents a single response choice from a chat-based LLM.
type Choice struct {
	// Index is the index of the choice.
	Index int `json:"index"`

	// Message is the generated message.
	Message Message `json:"message"`

	// FinishReason is the reason why the generation stopped.
	FinishReason string `json:"finish_reason,omitempty"`
}

// Usage contains token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// PromptCachedTokens from prompt_tokens_details.cached_tokens
	PromptCachedTokens int `json:"prompt_cached_tokens,omitempty"`
	// CompletionReasoningTokens from completion_tokens_details.reasoning_tokens
	CompletionReasoningTokens int `json:"completion_reasoning_tokens,omitempty"`
}

type Messages []Message

func (m *Messages) Append(msg Message) {
	*m = append(*m, msg)
}

// NewUserMessage creates a new message with the "user" role.
func NewUserMessage(content string) Message {
	return NewTextMessage(RoleUser, content)
}

// NewSystemMessage creates a new message with the "system" role.
func NewSystemMessage(content string) Message {
	return NewTextMessage(RoleSystem, content)
}

// NewAssistantMessage creates a new message with the "assistant" role.
func NewAssistantMessage(content string) Message {
	return NewTextMessage(RoleAssistant, content)
}

// NewTextMessage creates a text-only message for the given role.
func NewTextMessage(role MessageRole, content string) Message {
	return Message{Role: role, Content: content}
}

// NewToolResultMessage creates a tool role message with the given tool call's ID and result content.
func NewToolResultMessage(call ToolCall) Message {
	content := call.Result
	if content == "" && call.Error != "" {
		content = "error: " + call.Error
	}
	msg := NewTextMessage(RoleTool, content)
	msg.Name = call.ToolName()
	msg.ToolCallId = call.ID
	return msg
}

// NewFunctionCall creates a FunctionCall with the given name and arguments.
func NewFunctionCall(name string, args map[string]interface{}) FunctionCall {
	data, _ := json.Marshal(args)
	return FunctionCall{
		Name:      name,
		Arguments: string(data),
	}
}

// NewToolCall creates a ToolCall with the given function name and arguments.
// An ID is generated when empty.
func NewToolCall(id string, name string, args map[string]interface{}) ToolCall {
	if id == "" {
		id = uuid.NewString()
	}
	copied := make(map[string]interface{}, len(args))
	for key, val := range args {
		copied[key] = val
	}
	return ToolCall{
		ID:        id,
		Name:      name,
		Arguments: copied,
		Type:      "function",
		Function:  NewFunctionCall(name, copied),
	}
}
