// Package crew runs agents through tasks in declaration order.
package crew

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/viant/datacrew/genai/agent"
	"github.com/viant/datacrew/genai/llm"
	"github.com/viant/datacrew/genai/tool"
	"github.com/viant/datacrew/genai/usage"
	"github.com/viant/datacrew/internal/logger"
)

// ErrUnsupportedProcess is returned for any process other than sequential.
var ErrUnsupportedProcess = errors.New("unsupported process")

// Crew is an ordered set of agents and tasks.
type Crew struct {
	Agents  []*agent.Agent
	Tasks   []*Task
	Process string

	finder   llm.Finder
	registry *tool.Registry
	scoped   map[string]*tool.Registry
}

// Option customises a crew
type Option func(c *Crew)

// WithProcess sets the process, sequential by default.
func WithProcess(process string) Option {
	return func(c *Crew) { c.Process = process }
}

// WithFinder resolves each agent model by name.
func WithFinder(finder llm.Finder) Option {
	return func(c *Crew) { c.finder = finder }
}

// WithModel uses model for every agent.
func WithModel(model llm.Model) Option {
	return func(c *Crew) { c.finder = staticFinder{model: model} }
}

// WithRegistry sets the tools agents may call; each agent sees only its own tools.
func WithRegistry(registry *tool.Registry) Option {
	return func(c *Crew) { c.registry = registry }
}

type staticFinder struct {
	model llm.Model
}

func (f staticFinder) Find(ctx context.Context, name string) (llm.Model, error) {
	return f.model, nil
}

// New validates the crew; agents must be able to see every tool they list.
func New(agents []*agent.Agent, tasks []*Task, opts ...Option) (*Crew, error) {
	c := &Crew{Agents: agents, Tasks: tasks, Process: agent.Sequential}
	for _, opt := range opts {
		opt(c)
	}
	if !strings.EqualFold(strings.TrimSpace(c.Process), agent.Sequential) {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedProcess, c.Process)
	}
	if c.finder == nil {
		return nil, fmt.Errorf("model finder was empty")
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("no tasks defined")
	}
	known := map[*agent.Agent]bool{}
	for _, candidate := range agents {
		known[candidate] = true
	}
	names := map[string]bool{}
	for i, task := range tasks {
		if task.Agent == nil || !known[task.Agent] {
			return nil, fmt.Errorf("task %v: agent is not part of the crew", task.Name)
		}
		for _, dep := range task.Context {
			if !names[dep] {
				return nil, fmt.Errorf("task %v: context %q must name an earlier task", task.Name, dep)
			}
		}
		if task.Name == "" {
			task.Name = fmt.Sprintf("task_%d", i+1)
		}
		names[task.Name] = true
	}
	c.scoped = map[string]*tool.Registry{}
	for _, candidate := range agents {
		if len(candidate.Tools) == 0 {
			continue
		}
		if c.registry == nil {
			return nil, fmt.Errorf("agent %v: tools requested but no registry provided", candidate.ID)
		}
		scoped, err := c.registry.Scope(candidate.Tools...)
		if err != nil {
			return nil, fmt.Errorf("agent %v: %w", candidate.ID, err)
		}
		c.scoped[candidate.ID] = scoped
	}
	return c, nil
}

// Kickoff runs every task in order and returns the outputs; Raw holds the last one.
func (c *Crew) Kickoff(ctx context.Context, inputs map[string]string) (*Output, error) {
	tasks := make([]*Task, 0, len(c.Tasks))
	for _, task := range c.Tasks {
		interpolated, err := task.interpolate(inputs)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, interpolated)
	}

	output := &Output{ID: uuid.NewString(), Started: time.Now()}
	aggregator := usage.FromContext(ctx)
	if aggregator == nil {
		aggregator = &usage.Aggregator{}
	}
	log := logger.FromContext(ctx).With().Str("crew", output.ID).Logger()
	log.Info().Int("tasks", len(tasks)).Msg("crew started")

	results := map[string]string{}
	var previous []string
	for _, task := range tasks {
		model, err := c.finder.Find(ctx, task.Agent.Model)
		if err != nil {
			return nil, fmt.Errorf("task %v: %w", task.Name, err)
		}
		taskLog := log.With().Str("task", task.Name).Str("agent", task.Agent.Role).Logger()
		exec := &executor{agent: task.Agent, model: model, tools: c.scoped[task.Agent.ID], usage: aggregator, logger: taskLog}
		exec.log().Msg("task started")

		shared := previous
		if len(task.Context) > 0 {
			shared = make([]string, 0, len(task.Context))
			for _, name := range task.Context {
				shared = append(shared, results[name])
			}
		}
		answer, iterations, calls, err := exec.run(ctx, task.Prompt(shared))
		if err != nil {
			return nil, fmt.Errorf("task %v failed: %w", task.Name, err)
		}
		exec.log().Int("iterations", iterations).Int("toolCalls", len(calls)).Msg("task completed")
		results[task.Name] = answer
		previous = append(previous, answer)
		output.Tasks = append(output.Tasks, TaskOutput{
			Task:        task.Name,
			Agent:       task.Agent.Role,
			Description: task.Description,
			Output:      answer,
			Iterations:  iterations,
			ToolCalls:   calls,
		})
		output.Raw = answer
	}
	output.Ended = time.Now()
	output.Usage = aggregator.Snapshot()
	log.Info().Dur("elapsed", output.Ended.Sub(output.Started)).Msg("crew completed")
	return output, nil
}
