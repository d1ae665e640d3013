package llm

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	llmclient "dualcore/internal/llmclient"
)

// Retry re-issues GenerateJSON up to retries extra times with exponential
// backoff starting at baseDelay. Malformed replies, missing credentials and
// context errors are returned immediately. retries <= 0 disables it.
func Retry(retries int, baseDelay time.Duration) Middleware {
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		if retries <= 0 {
			return next
		}
		return &retrying{next: next, retries: retries, base: baseDelay}
	}
}

type retrying struct {
	next    llmclient.LLMClient
	retries int
	base    time.Duration
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }

func (r *retrying) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	var last error
	for i := 0; i <= r.retries; i++ {
		resp, err := r.next.GenerateJSON(ctx, prompt, input)
		if err == nil {
			return resp, nil
		}
		if permanent(err) || ctx.Err() != nil {
			return nil, err
		}
		last = err
		if i == r.retries {
			break
		}
		timer := time.NewTimer(r.base * time.Duration(1<<i))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, last
}

func permanent(err error) bool {
	return errors.Is(err, llmclient.ErrEmptyResponse) ||
		errors.Is(err, llmclient.ErrInvalidJSON) ||
		errors.Is(err, llmclient.ErrMissingAPIKey) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
