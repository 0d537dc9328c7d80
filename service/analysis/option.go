package analysis

import (
	"github.com/viant/afs"
	"github.com/viant/datacrew/genai/llm"
)

// Option customises a DataAnalysisCrew.
type Option func(c *DataAnalysisCrew)

// WithModel uses model for every agent instead of the configured OpenAI client.
func WithModel(model llm.Model) Option {
	return func(c *DataAnalysisCrew) { c.model = model }
}

// WithOutput sets the report location.
func WithOutput(URL string) Option {
	return func(c *DataAnalysisCrew) { c.output = URL }
}

// WithDefinitions loads agents and tasks from URL instead of the embedded crew.
func WithDefinitions(URL string) Option {
	return func(c *DataAnalysisCrew) { c.definitions = URL }
}

// WithFileSystem sets the file system used for datasets, definitions and reports.
func WithFileSystem(fs afs.Service) Option {
	return func(c *DataAnalysisCrew) { c.fs = fs }
}

// WithTranscript writes every task output as JSON to URL.
func WithTranscript(URL string) Option {
	return func(c *DataAnalysisCrew) { c.transcript = URL }
}
