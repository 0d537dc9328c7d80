package usage

import (
	"context"
	"sort"
	"sync"

	"github.com/viant/datacrew/genai/llm"
)

// Stat accumulates token numbers for a single model.
type Stat struct {
	Calls            int `json:"calls"`
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
	CachedTokens     int `json:"cachedTokens,omitempty"`
	ReasoningTokens  int `json:"reasoningTokens,omitempty"`
}

// Aggregator collects usage grouped by model name. It is safe for concurrent use.
type Aggregator struct {
	mux      sync.RWMutex
	PerModel map[string]*Stat
}

// OnUsage matches provider/base.UsageListener so that aggregator.OnUsage can
// be passed directly to provider clients.
func (a *Aggregator) OnUsage(model string, u *llm.Usage) {
	if u == nil {
		return
	}
	a.mux.Lock()
	defer a.mux.Unlock()
	if a.PerModel == nil {
		a.PerModel = map[string]*Stat{}
	}
	stat, ok := a.PerModel[model]
	if !ok {
		stat = &Stat{}
		a.PerModel[model] = stat
	}
	total := u.TotalTokens
	if total == 0 {
		total = u.PromptTokens + u.CompletionTokens
	}
	stat.Calls++
	stat.PromptTokens += u.PromptTokens
	stat.CompletionTokens += u.CompletionTokens
	stat.TotalTokens += total
	stat.CachedTokens += u.PromptCachedTokens
	stat.ReasoningTokens += u.CompletionReasoningTokens
}

// Totals returns accumulated numbers across all tracked models.
func (a *Aggregator) Totals() Stat {
	a.mux.RLock()
	defer a.mux.RUnlock()
	var result Stat
	for _, stat := range a.PerModel {
		result.Calls += stat.Calls
		result.PromptTokens += stat.PromptTokens
		result.CompletionTokens += stat.CompletionTokens
		result.TotalTokens += stat.TotalTokens
		result.CachedTokens += stat.CachedTokens
		result.ReasoningTokens += stat.ReasoningTokens
	}
	return result
}

// Snapshot returns a copy of per model stats.
func (a *Aggregator) Snapshot() map[string]Stat {
	a.mux.RLock()
	defer a.mux.RUnlock()
	result := make(map[string]Stat, len(a.PerModel))
	for model, stat := range a.PerModel {
		result[model] = *stat
	}
	return result
}

// Keys returns sorted list of model names.
func (a *Aggregator) Keys() []string {
	a.mux.RLock()
	defer a.mux.RUnlock()
	keys := make([]string, 0, len(a.PerModel))
	for k := range a.PerModel {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type keyT struct{}

var key = keyT{}

// WithAggregator injects a new Aggregator into context.
func WithAggregator(ctx context.Context) (context.Context, *Aggregator) {
	agg := &Aggregator{}
	return context.WithValue(ctx, key, agg), agg
}

func FromContext(ctx context.Context) *Aggregator {
	if a, ok := ctx.Value(key).(*Aggregator); ok {
		return a
	}
	return nil
}
