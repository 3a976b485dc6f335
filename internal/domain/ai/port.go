package ai

import "context"

// Request is one completion call. Zero Temperature or MaxTokens means the
// provider default.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Client is a language model provider.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
	Provider() string
	Model() string
}
