// Package analysis runs the data engineer, data analyst and research
// specialist crew against a dataset and writes the final report.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/datacrew/genai/agent"
	"github.com/viant/datacrew/genai/crew"
	"github.com/viant/datacrew/genai/llm"
	"github.com/viant/datacrew/genai/llm/provider"
	"github.com/viant/datacrew/genai/redact"
	"github.com/viant/datacrew/genai/tool"
	"github.com/viant/datacrew/genai/tool/adapter"
	"github.com/viant/datacrew/genai/tool/service/dataframe"
	"github.com/viant/datacrew/genai/tool/service/file"
	"github.com/viant/datacrew/genai/usage"
	"github.com/viant/datacrew/internal/config"
	"github.com/viant/datacrew/internal/logger"
)

const (
	// InputDataSource names the dataset placeholder in task descriptions.
	InputDataSource = "data_source"
	// InputQuestion names the question placeholder in task descriptions.
	InputQuestion = "analysis_question"
	// ReportTask names the task whose answer becomes the report.
	ReportTask = "final_report"
)

// DataAnalysisCrew wires the analysis agents, their tools and the model.
type DataAnalysisCrew struct {
	config      *config.Config
	fs          afs.Service
	model       llm.Model
	finder      llm.Finder
	registry    *tool.Registry
	definitions string
	output      string
	transcript  string
}

// New creates the crew service; the configuration must carry an OpenAI API key.
func New(cfg *config.Config, opts ...Option) (*DataAnalysisCrew, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config was empty")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ret := &DataAnalysisCrew{
		config:      cfg,
		definitions: cfg.Crew.Definitions,
		output:      cfg.Crew.Output,
		transcript:  cfg.Crew.Transcript,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.fs == nil {
		ret.fs = afs.New()
	}
	if ret.output == "" {
		ret.output = config.DefaultOutput
	}
	if ret.model == nil {
		temperature := cfg.OpenAI.Temperature
		retries := cfg.OpenAI.MaxRetries
		ret.finder = provider.NewFinder(provider.Options{
			Provider:    provider.ProviderOpenAI,
			Model:       cfg.OpenAI.Model,
			APIKey:      cfg.OpenAI.APIKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			Temperature: &temperature,
			MaxTokens:   cfg.OpenAI.MaxTokens,
			MaxRetries:  &retries,
			Timeout:     cfg.OpenAI.Timeout,
		})
	}
	var err error
	if ret.registry, err = ret.newRegistry(); err != nil {
		return nil, err
	}
	return ret, nil
}

// Registry returns the tools available to the agents. Each run gets its own
// copy, so datasets loaded through this one are never seen by a run.
func (c *DataAnalysisCrew) Registry() *tool.Registry { return c.registry }

// newRegistry binds the tools to an empty dataframe store.
func (c *DataAnalysisCrew) newRegistry() (*tool.Registry, error) {
	registry := tool.NewRegistry()
	if err := adapter.Register(registry, file.New(c.fs), dataframe.New(c.fs, dataframe.NewStore())); err != nil {
		return nil, err
	}
	return registry, nil
}

// Output returns the report location.
func (c *DataAnalysisCrew) Output() string { return c.output }

// CreateAgents returns the data engineer, data analyst and research specialist.
func (c *DataAnalysisCrew) CreateAgents() ([]*agent.Agent, error) {
	defs, err := c.loadDefinitions(context.Background())
	if err != nil {
		return nil, err
	}
	return defs.Agents, nil
}

// CreateTasks returns the preparation, analysis and report tasks with the
// dataset and question filled in.
func (c *DataAnalysisCrew) CreateTasks(dataSource, question string) ([]*crew.Task, error) {
	defs, err := c.loadDefinitions(context.Background())
	if err != nil {
		return nil, err
	}
	tasks, err := crew.NewTasks(defs)
	if err != nil {
		return nil, err
	}
	inputs := c.inputs(dataSource, question)
	for _, task := range tasks {
		if task.Description, err = crew.Interpolate(task.Description, inputs); err != nil {
			return nil, fmt.Errorf("task %v description: %w", task.Name, err)
		}
		if task.ExpectedOutput, err = crew.Interpolate(task.ExpectedOutput, inputs); err != nil {
			return nil, fmt.Errorf("task %v expected output: %w", task.Name, err)
		}
	}
	return tasks, nil
}

// RunCrew runs the crew against dataSource and returns the report location.
func (c *DataAnalysisCrew) RunCrew(ctx context.Context, dataSource, question string) (string, error) {
	if strings.TrimSpace(dataSource) == "" {
		return "", fmt.Errorf("data source was empty")
	}
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("analysis question was empty")
	}
	defs, err := c.loadDefinitions(ctx)
	if err != nil {
		return "", err
	}
	tasks, err := crew.NewTasks(defs)
	if err != nil {
		return "", err
	}
	registry, err := c.newRegistry()
	if err != nil {
		return "", err
	}
	options := []crew.Option{crew.WithRegistry(registry)}
	if defs.Process != "" {
		options = append(options, crew.WithProcess(defs.Process))
	}
	if c.model != nil {
		options = append(options, crew.WithModel(c.model))
	} else {
		options = append(options, crew.WithFinder(c.finder))
	}
	runner, err := crew.New(defs.Agents, tasks, options...)
	if err != nil {
		return "", err
	}

	log := logger.FromContext(ctx)
	ctx, aggregator := usage.WithAggregator(ctx)
	output, err := runner.Kickoff(ctx, c.inputs(dataSource, question))
	if err != nil {
		return "", err
	}
	report := output.Raw
	if final, ok := output.Task(ReportTask); ok {
		report = final.Output
	}
	if err = file.Upload(ctx, c.fs, c.output, []byte(report)); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", c.output, err)
	}
	if c.transcript != "" {
		data, err := redact.JSON(output, nil)
		if err != nil {
			return "", fmt.Errorf("failed to encode transcript: %w", err)
		}
		if err = file.Upload(ctx, c.fs, c.transcript, data); err != nil {
			return "", fmt.Errorf("failed to write transcript %s: %w", c.transcript, err)
		}
	}
	totals := aggregator.Totals()
	log.Info().
		Str("crew", output.ID).
		Str("report", c.output).
		Int("calls", totals.Calls).
		Int("promptTokens", totals.PromptTokens).
		Int("completionTokens", totals.CompletionTokens).
		Int("totalTokens", totals.TotalTokens).
		Msg("analysis complete")
	return c.output, nil
}

func (c *DataAnalysisCrew) inputs(dataSource, question string) map[string]string {
	return map[string]string{InputDataSource: dataSource, InputQuestion: question}
}

// loadDefinitions reads a fresh copy of the definitions so runs never share agent state.
func (c *DataAnalysisCrew) loadDefinitions(ctx context.Context) (*agent.Definitions, error) {
	defs, err := agent.NewLoader(c.fs).Load(ctx, c.definitions)
	if err != nil {
		return nil, err
	}
	for _, candidate := range defs.Agents {
		if candidate.MaxIterations == 0 {
			candidate.MaxIterations = c.config.Crew.MaxIterations
		}
		if candidate.Temperature == nil {
			temperature := c.config.OpenAI.Temperature
			candidate.Temperature = &temperature
		}
	}
	return defs, nil
}
