package agent

import (
	"context"
	"fmt"
	"strings"
)

// Sequential is the only supported crew process.
const Sequential = "sequential"

type (
	// Definitions describe the agents and tasks of a crew.
	Definitions struct {
		Process string   `yaml:"process,omitempty" json:"process,omitempty"`
		Agents  []*Agent `yaml:"agents" json:"agents"`
		Tasks   []*Task  `yaml:"tasks" json:"tasks"`
	}

	// Task is a templated instruction assigned to one agent. Description and
	// ExpectedOutput may reference kickoff inputs as {name}.
	Task struct {
		Name           string   `yaml:"name" json:"name"`
		Description    string   `yaml:"description" json:"description"`
		ExpectedOutput string   `yaml:"expectedOutput" json:"expectedOutput"`
		Agent          string   `yaml:"agent" json:"agent"`
		Context        []string `yaml:"context,omitempty" json:"context,omitempty"` // names of earlier tasks, all earlier tasks when empty
	}
)

var _ Finder = (*Definitions)(nil)

// Find returns the agent with id.
func (d *Definitions) Find(ctx context.Context, id string) (*Agent, error) {
	for _, candidate := range d.Agents {
		if candidate.ID == id {
			return candidate, nil
		}
	}
	return nil, fmt.Errorf("agent %q not found", id)
}

// Validate checks agents and that tasks only reference known agents and earlier tasks.
func (d *Definitions) Validate() error {
	if d.Process != "" && !strings.EqualFold(d.Process, Sequential) {
		return fmt.Errorf("unsupported process: %v", d.Process)
	}
	if len(d.Agents) == 0 {
		return fmt.Errorf("no agents defined")
	}
	if len(d.Tasks) == 0 {
		return fmt.Errorf("no tasks defined")
	}
	agents := map[string]bool{}
	for _, candidate := range d.Agents {
		if candidate == nil {
			return fmt.Errorf("agent was nil")
		}
		if err := candidate.Validate(); err != nil {
			return err
		}
		if agents[candidate.ID] {
			return fmt.Errorf("duplicate agent: %v", candidate.ID)
		}
		agents[candidate.ID] = true
	}
	tasks := map[string]bool{}
	for i, task := range d.Tasks {
		if task == nil {
			return fmt.Errorf("task[%d] was nil", i)
		}
		if strings.TrimSpace(task.Name) == "" {
			return fmt.Errorf("task[%d]: name was empty", i)
		}
		if tasks[task.Name] {
			return fmt.Errorf("duplicate task: %v", task.Name)
		}
		if strings.TrimSpace(task.Description) == "" {
			return fmt.Errorf("task %v: description was empty", task.Name)
		}
		if !agents[task.Agent] {
			return fmt.Errorf("task %v: unknown agent %q", task.Name, task.Agent)
		}
		for _, dep := range task.Context {
			if !tasks[dep] {
				return fmt.Errorf("task %v: context %q must name an earlier task", task.Name, dep)
			}
		}
		tasks[task.Name] = true
	}
	return nil
}
