package llmclient

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	ErrInvalidJSON   = errors.New("llm: invalid JSON from model")
	ErrEmptyResponse = errors.New("llm: empty response from model")
	ErrMissingAPIKey = errors.New("llm: api key is empty")
)

// LLMClient defines the interface for LLM providers.
type LLMClient interface {
	Name() string
	Close() error
	// GenerateJSON sends prompt plus the JSON-encoded input and returns the
	// model's JSON document. A response schema attached with
	// WithResponseSchema is forwarded when the provider supports it.
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
}
