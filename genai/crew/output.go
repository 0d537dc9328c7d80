package crew

import (
	"time"

	"github.com/viant/datacrew/genai/usage"
)

// ToolCall records a tool invocation made while working on a task.
type ToolCall struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
	Result    string                 `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// TaskOutput is the final answer of one task.
type TaskOutput struct {
	Task        string     `json:"task"`
	Agent       string     `json:"agent"`
	Description string     `json:"description,omitempty"`
	Output      string     `json:"output"`
	Iterations  int        `json:"iterations"`
	ToolCalls   []ToolCall `json:"toolCalls,omitempty"`
}

// Output is the result of a crew run.
type Output struct {
	ID      string                `json:"id"`
	Started time.Time             `json:"started"`
	Ended   time.Time             `json:"ended"`
	Raw     string                `json:"-"`
	Tasks   []TaskOutput          `json:"tasks"`
	Usage   map[string]usage.Stat `json:"usage,omitempty"`
}

// Task returns the output of the named task.
func (o *Output) Task(name string) (*TaskOutput, bool) {
	for i := range o.Tasks {
		if o.Tasks[i].Task == name {
			return &o.Tasks[i], true
		}
	}
	return nil, false
}
