package provider

import (
	"context"
	"sync"

	"github.com/viant/datacrew/genai/llm"
)

// Finder creates models on demand from shared options, one per model name.
type Finder struct {
	factory  *Factory
	defaults Options
	mux      sync.Mutex
	models   map[string]llm.Model
}

// Find returns a cached model for name, creating it when needed; an empty
// name selects the default model.
func (f *Finder) Find(ctx context.Context, name string) (llm.Model, error) {
	if name == "" {
		name = f.defaults.Model
	}
	f.mux.Lock()
	defer f.mux.Unlock()
	if model, ok := f.models[name]; ok {
		return model, nil
	}
	options := f.defaults
	options.Model = name
	model, err := f.factory.CreateModel(ctx, &options)
	if err != nil {
		return nil, err
	}
	f.models[name] = model
	return model, nil
}

// NewFinder creates a model finder using defaults for every created model.
func NewFinder(defaults Options) *Finder {
	return &Finder{factory: New(), defaults: defaults, models: map[string]llm.Model{}}
}
