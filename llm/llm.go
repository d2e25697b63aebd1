package llm

import (
	"context"
	"errors"
)

// Message is one turn of a chat-completion conversation
type Message struct {
	Role    string `json:"role"` // "system" or "user"
	Content string `json:"content"`
}

// CompletionRequest represents one round trip to a hosted chat-completion API
type CompletionRequest struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Client is a hosted text-completion provider. Implementations return the
// trimmed response text or an error; they never return error text as output.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ErrNotConfigured is returned when the provider API credential is missing.
// Callers can branch on it to report a configuration failure instead of an
// upstream one.
var ErrNotConfigured = errors.New("llm: api key not configured")

// ErrEmptyResponse is returned when the provider answered without content
var ErrEmptyResponse = errors.New("llm: provider returned empty content")
