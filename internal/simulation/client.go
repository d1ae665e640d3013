package simulation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"dualcore/internal/catalog"
	"dualcore/internal/composer"
	"dualcore/internal/llm"
	llmclient "dualcore/internal/llmclient"
)

// DefaultTimeout bounds one remote call when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

const phase = "simulate"

// Config is read once at startup and never mutated.
type Config struct {
	// APIKey is the generation service credential. Empty means every call
	// falls back without reaching the service.
	APIKey   string
	Language string
	// Timeout bounds the remote call including retries; negative disables
	// the bound.
	Timeout time.Duration
	// Retries is the number of extra attempts after a transport failure.
	Retries int
}

// Client runs single, independent simulations. It holds no per-request state
// and is safe for concurrent use.
type Client struct {
	cfg Config
	llm llmclient.LLMClient
	log *zap.Logger
}

// New wraps cli with the request timeout and logging middleware. cli may be
// nil when no credential is configured.
func New(cfg Config, cli llmclient.LLMClient, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	c := &Client{cfg: cfg, log: logger.Named("simulation")}
	if cli != nil {
		c.llm = llm.Wrap(cli,
			llm.WithLogging(logger.Named("llm")),
			llm.Timeout(cfg.Timeout),
			llm.Retry(cfg.Retries, 0),
		)
	}
	return c
}

// Configured reports whether a credential and a service client are present.
func (c *Client) Configured() bool {
	return c.llm != nil && strings.TrimSpace(c.cfg.APIKey) != ""
}

// Simulate always returns a complete result; failures yield Fallback().
func (c *Client) Simulate(ctx context.Context, scenario string, mode catalog.ThinkingMode, mindset catalog.Mindset) Result {
	res, _ := c.Run(ctx, scenario, mode, mindset)
	return res
}

// Run is Simulate plus the classified failure, if any. The result is valid
// even when err is non-nil.
func (c *Client) Run(ctx context.Context, scenario string, mode catalog.ThinkingMode, mindset catalog.Mindset) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = Fallback(), c.fail(mode, mindset, newError(ClassTransport, fmt.Errorf("panic: %v", r)))
		}
	}()

	scenario = strings.TrimSpace(scenario)
	if scenario == "" {
		return Fallback(), c.fail(mode, mindset, newError(ClassInvalidInput, nil))
	}
	if !c.Configured() {
		return Fallback(), c.fail(mode, mindset, newError(ClassConfigurationMissing, nil))
	}

	payload := composer.Compose(scenario, mode, mindset, composer.WithLanguage(c.cfg.Language))
	callCtx := llmclient.WithResponseSchema(llm.WithPhase(ctx, phase), payload.Schema)

	raw, callErr := c.llm.GenerateJSON(callCtx, payload.Prompt, payload.Input)
	if callErr != nil {
		switch {
		case errors.Is(ctx.Err(), context.Canceled):
			return Fallback(), c.fail(mode, mindset, newError(ClassCanceled, callErr))
		case errors.Is(callErr, llmclient.ErrEmptyResponse), errors.Is(callErr, llmclient.ErrInvalidJSON):
			return Fallback(), c.fail(mode, mindset, newError(ClassSchemaViolation, callErr))
		}
		return Fallback(), c.fail(mode, mindset, newError(ClassTransport, callErr))
	}
	out, parseErr := ParseResult(raw)
	if parseErr != nil {
		return Fallback(), c.fail(mode, mindset, newError(ClassSchemaViolation, parseErr))
	}
	return out, nil
}

// fail emits the diagnostic record for e. Scenario and prompt text are never
// logged.
func (c *Client) fail(mode catalog.ThinkingMode, mindset catalog.Mindset, e *Error) error {
	fields := []zap.Field{
		zap.String("class", string(e.Class)),
		zap.String("mode", string(mode)),
		zap.String("mindset", string(mindset)),
	}
	if e.Err != nil {
		fields = append(fields, zap.Error(e.Err))
	}
	if e.Class == ClassCanceled {
		c.log.Debug("simulation abandoned", fields...)
	} else {
		c.log.Warn("simulation fell back", fields...)
	}
	return e
}
