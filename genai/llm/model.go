package llm

import "context"

// Model generates chat completions. Implementations report optional
// capabilities (see provider/base features) through Implements.
type Model interface {
	Generate(ctx context.Context, request *GenerateRequest) (*GenerateResponse, error)
	Implements(feature string) bool
}
