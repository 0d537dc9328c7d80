package llm

import "context"

// Finder resolves a model by its name, e.g. the model an agent asks for.
type Finder interface {
	Find(ctx context.Context, name string) (Model, error)
}
