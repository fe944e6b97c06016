// Package llm abstracts the model endpoint used to synthesize review
// comments and drive review agents. Callers see a single Complete method;
// transport details, retries, and rate limiting stay behind it.
package llm

import (
	"context"
)

// CompletionRequest carries one prompt exchange to the model.
type CompletionRequest struct {
	// SystemPrompt sets the model's role for the exchange. Optional.
	SystemPrompt string

	// UserPrompt is the user-turn content.
	UserPrompt string

	// MaxTokens caps the response length. Zero means the client
	// default.
	MaxTokens int
}

// CompletionResponse is the model's reply.
type CompletionResponse struct {
	// Content is the concatenated text output.
	Content string

	// TokensUsed is the total input plus output token count reported
	// by the endpoint.
	TokensUsed int
}

// Client is the model endpoint abstraction. Implementations must be safe
// for concurrent use.
type Client interface {
	// Complete sends a single prompt exchange and returns the model's
	// reply. The context bounds the whole call including retries.
	Complete(ctx context.Context,
		req CompletionRequest) (CompletionResponse, error)

	// Name identifies the backing provider for logging.
	Name() string
}
