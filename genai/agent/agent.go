package agent

import (
	"fmt"
	"strings"

	"github.com/viant/datacrew/internal/templating"
)

// DefaultMaxIterations bounds model calls per task when an agent does not set one.
const DefaultMaxIterations = 15

const defaultPrompt = `You are ${Role}. ${Backstory}
Your personal goal is: ${Goal}`

type (
	// Agent represents a role-playing persona with the tools it may call.
	Agent struct {
		ID            string   `yaml:"id" json:"id"`
		Role          string   `yaml:"role" json:"role"`
		Goal          string   `yaml:"goal" json:"goal"`
		Backstory     string   `yaml:"backstory,omitempty" json:"backstory,omitempty"`
		Tools         []string `yaml:"tools,omitempty" json:"tools,omitempty"`
		Model         string   `yaml:"model,omitempty" json:"model,omitempty"`             // model name, provider default when empty
		Temperature   *float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"` // nil inherits the configured default
		MaxIterations int      `yaml:"maxIterations,omitempty" json:"maxIterations,omitempty"`
		Verbose       bool     `yaml:"verbose,omitempty" json:"verbose,omitempty"`
		Prompt        string   `yaml:"prompt,omitempty" json:"prompt,omitempty"` // velty system prompt template
	}
)

// Validate checks that the agent has an identity.
func (a *Agent) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("agent id was empty")
	}
	if strings.TrimSpace(a.Role) == "" {
		return fmt.Errorf("agent %v: role was empty", a.ID)
	}
	if strings.TrimSpace(a.Goal) == "" {
		return fmt.Errorf("agent %v: goal was empty", a.ID)
	}
	if a.MaxIterations < 0 {
		return fmt.Errorf("agent %v: maxIterations must not be negative", a.ID)
	}
	return nil
}

// Iterations returns the model call budget per task.
func (a *Agent) Iterations() int {
	if a.MaxIterations > 0 {
		return a.MaxIterations
	}
	return DefaultMaxIterations
}

// SystemPrompt renders the persona from Prompt, or the role/goal/backstory default.
// Templates reference ${ID}, ${Role}, ${Goal}, ${Backstory} and ${Tools}.
func (a *Agent) SystemPrompt() (string, error) {
	text := a.Prompt
	if strings.TrimSpace(text) == "" {
		text = defaultPrompt
	}
	tools := a.Tools
	if tools == nil {
		tools = []string{}
	}
	prompt, err := templating.Expand(text, map[string]interface{}{
		"ID":        a.ID,
		"Role":      a.Role,
		"Goal":      a.Goal,
		"Backstory": a.Backstory,
		"Tools":     tools,
	})
	if err != nil {
		return "", fmt.Errorf("agent %v: invalid prompt: %w", a.ID, err)
	}
	return strings.TrimSpace(prompt), nil
}
