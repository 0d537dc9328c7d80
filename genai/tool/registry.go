package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/viant/datacrew/genai/llm"
)

// Handler is a function that executes a tool call with given arguments.
// It returns the tool's result as a string.
type Handler func(ctx context.Context, args map[string]interface{}) (string, error)

// Registry holds tool definitions and handlers.
type Registry struct {
	mux         sync.RWMutex
	names       []string
	definitions map[string]llm.ToolDefinition
	handlers    map[string]Handler
}

// NewRegistry creates a new empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		definitions: make(map[string]llm.ToolDefinition),
		handlers:    make(map[string]Handler),
	}
}

// Register registers a tool definition and handler in this registry.
func (r *Registry) Register(def llm.ToolDefinition, handler Handler) {
	r.mux.Lock()
	defer r.mux.Unlock()
	def.Normalize()
	if _, ok := r.definitions[def.Name]; !ok {
		r.names = append(r.names, def.Name)
	}
	r.definitions[def.Name] = def
	r.handlers[def.Name] = handler
}

// GetDefinition retrieves a tool definition by name from this registry.
func (r *Registry) GetDefinition(name string) (llm.ToolDefinition, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	def, ok := r.definitions[name]
	return def, ok
}

// Definitions returns registered definitions in registration order.
func (r *Registry) Definitions() []llm.ToolDefinition {
	r.mux.RLock()
	defer r.mux.RUnlock()
	defs := make([]llm.ToolDefinition, 0, len(r.names))
	for _, name := range r.names {
		defs = append(defs, r.definitions[name])
	}
	return defs
}

// Names returns registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return append([]string(nil), r.names...)
}

// Tools returns every registered definition as a function tool.
func (r *Registry) Tools() []llm.Tool {
	defs := r.Definitions()
	tools := make([]llm.Tool, 0, len(defs))
	for _, def := range defs {
		tools = append(tools, llm.NewFunctionTool(def))
	}
	return tools
}

// Scope returns a registry restricted to the named tools. Unknown names are an error.
func (r *Registry) Scope(names ...string) (*Registry, error) {
	scoped := NewRegistry()
	r.mux.RLock()
	defer r.mux.RUnlock()
	for _, name := range names {
		def, ok := r.definitions[name]
		if !ok {
			return nil, fmt.Errorf("tool %q not registered", name)
		}
		if _, dup := scoped.definitions[name]; dup {
			continue
		}
		scoped.names = append(scoped.names, name)
		scoped.definitions[name] = def
		scoped.handlers[name] = r.handlers[name]
	}
	return scoped, nil
}

// Execute invokes a registered tool handler by name with given args.
// Missing required arguments are reported before the handler runs.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	r.mux.RLock()
	handler, ok := r.handlers[name]
	if !ok {
		if idx := strings.LastIndex(name, "."); idx > 0 {
			name = name[idx+1:]
			handler, ok = r.handlers[name]
		}
	}
	def := r.definitions[name]
	r.mux.RUnlock()
	if !ok {
		return "", fmt.Errorf("tool %q not registered", name)
	}
	fixed, problems := ValidateArgs(def, args)
	if len(problems) > 0 {
		return "", &ValidationError{Tool: name, Problems: problems}
	}
	return handler(ctx, fixed)
}

// UnmarshalArguments helps parse JSON-encoded arguments into a map.
func UnmarshalArguments(raw json.RawMessage) (map[string]interface{}, error) {
	var args map[string]interface{}
	if len(raw) == 0 {
		return map[string]interface{}{}, nil
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("invalid tool arguments: %w", err)
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	return args, nil
}
