package llm

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	llmclient "dualcore/internal/llmclient"
)

// Middleware decorates an LLMClient to inject cross-cutting concerns
// (timeouts, logging, etc.).
type Middleware func(llmclient.LLMClient) llmclient.LLMClient

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner llmclient.LLMClient, mws ...Middleware) llmclient.LLMClient {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] == nil {
			continue
		}
		out = mws[i](out)
	}
	return out
}

// -------- Timeout --------

// Timeout bounds every GenerateJSON call. d <= 0 disables it.
// Expiry surfaces as context.DeadlineExceeded from the inner client.
func Timeout(d time.Duration) Middleware {
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		if d <= 0 {
			return next
		}
		return &timed{next: next, d: d}
	}
}

type timed struct {
	next llmclient.LLMClient
	d    time.Duration
}

func (t *timed) Name() string { return t.next.Name() }
func (t *timed) Close() error { return t.next.Close() }
func (t *timed) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	raw, err := t.next.GenerateJSON(ctx, prompt, input)
	if err == nil && ctx.Err() != nil {
		// A late reply after the deadline still counts as a timeout.
		return nil, ctx.Err()
	}
	return raw, err
}

// -------- Logging --------

// WithLogging logs request size, latency and errors. A nil logger disables it.
// Prompt text is never logged.
func WithLogging(logger *zap.Logger) Middleware {
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		if logger == nil {
			return next
		}
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next llmclient.LLMClient
	log  *zap.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }
func (l *logging) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	in, _ := json.Marshal(input)
	phase := PhaseFrom(ctx)
	l.log.Debug("LLM request",
		zap.String("client", l.next.Name()),
		zap.String("phase", phase),
		zap.Int("bytes", len(prompt)+len(in)))
	start := time.Now()
	raw, err := l.next.GenerateJSON(ctx, prompt, input)
	if err != nil {
		l.log.Info("LLM error",
			zap.String("client", l.next.Name()),
			zap.String("phase", phase),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return raw, err
	}
	l.log.Debug("LLM response",
		zap.String("phase", phase),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("bytes", len(raw)))
	return raw, nil
}
