package crew

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/viant/datacrew/genai/agent"
)

var placeholder = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_\-]*)\}`)

// Task is an instruction assigned to one agent.
type Task struct {
	Name           string
	Description    string
	ExpectedOutput string
	Agent          *agent.Agent
	Context        []string // names of earlier tasks whose outputs are shared, all earlier tasks when empty
}

// NewTasks binds task definitions to their agents.
func NewTasks(defs *agent.Definitions) ([]*Task, error) {
	byID := map[string]*agent.Agent{}
	for _, candidate := range defs.Agents {
		byID[candidate.ID] = candidate
	}
	result := make([]*Task, 0, len(defs.Tasks))
	for _, def := range defs.Tasks {
		owner, ok := byID[def.Agent]
		if !ok {
			return nil, fmt.Errorf("task %v: unknown agent %q", def.Name, def.Agent)
		}
		result = append(result, &Task{
			Name:           def.Name,
			Description:    def.Description,
			ExpectedOutput: def.ExpectedOutput,
			Agent:          owner,
			Context:        append([]string(nil), def.Context...),
		})
	}
	return result, nil
}

// Interpolate replaces {name} placeholders with inputs. Unknown placeholders are an error.
func Interpolate(text string, inputs map[string]string) (string, error) {
	var missing []string
	seen := map[string]bool{}
	result := placeholder.ReplaceAllStringFunc(text, func(match string) string {
		name := match[1 : len(match)-1]
		value, ok := inputs[name]
		if !ok {
			if !seen[name] {
				missing = append(missing, name)
				seen[name] = true
			}
			return match
		}
		return value
	})
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", fmt.Errorf("missing inputs: %s", strings.Join(missing, ", "))
	}
	return result, nil
}

// interpolate returns a copy of the task with inputs applied.
func (t *Task) interpolate(inputs map[string]string) (*Task, error) {
	description, err := Interpolate(t.Description, inputs)
	if err != nil {
		return nil, fmt.Errorf("task %v description: %w", t.Name, err)
	}
	expected, err := Interpolate(t.ExpectedOutput, inputs)
	if err != nil {
		return nil, fmt.Errorf("task %v expected output: %w", t.Name, err)
	}
	clone := *t
	clone.Description = description
	clone.ExpectedOutput = expected
	return &clone, nil
}

// Prompt builds the user message for the task with outputs of its context tasks.
func (t *Task) Prompt(context []string) string {
	var buf strings.Builder
	buf.WriteString(strings.TrimSpace(t.Description))
	if expected := strings.TrimSpace(t.ExpectedOutput); expected != "" {
		buf.WriteString("\n\nThis is the expected criteria for your final answer: ")
		buf.WriteString(expected)
		buf.WriteString("\nyou MUST return the actual complete content as the final answer, not a summary.")
	}
	if len(context) > 0 {
		buf.WriteString("\n\nThis is the context you're working with:\n")
		buf.WriteString(strings.Join(context, "\n\n----------\n\n"))
	}
	return buf.String()
}
