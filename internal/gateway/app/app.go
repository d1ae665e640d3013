package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"dualcore/internal/config"
	"dualcore/internal/gateway/handler"
	"dualcore/internal/gateway/server"
	gatewaysimulate "dualcore/internal/gateway/service/simulate"
	llmclient "dualcore/internal/llmclient"
	"dualcore/internal/simulation"
)

type App struct {
	server *server.Server
	svc    *gatewaysimulate.Service
	llm    llmclient.LLMClient
}

type Option func(*options)

type options struct {
	llm llmclient.LLMClient
}

// WithLLMClient replaces the Gemini client, e.g. with llmclient.FakeClient
// for offline runs.
func WithLLMClient(c llmclient.LLMClient) Option {
	return func(o *options) { o.llm = c }
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	simClient, llm, err := NewSimulationClient(ctx, cfg, logger, o.llm)
	if err != nil {
		return nil, err
	}

	svc, err := gatewaysimulate.New(simClient, cfg.SessionCacheSize, logger.Named("sessions"))
	if err != nil {
		return nil, fmt.Errorf("failed to init simulate service: %w", err)
	}

	simulateHandler := handler.NewSimulateHandler(svc, logger.Named("http"))
	sessionHandler := handler.NewSessionHandler(svc, logger.Named("ws"))

	// Routing & Server
	mux := server.NewMux(simulateHandler, sessionHandler, logger.Named("access"))
	srv := server.New(cfg.Port, mux, logger)

	return &App{server: srv, svc: svc, llm: llm}, nil
}

// NewSimulationClient builds the simulation client from cfg. When override
// is nil and no API key is configured the client runs unconfigured and every
// simulation falls back with an advisory.
func NewSimulationClient(ctx context.Context, cfg *config.Config, logger *zap.Logger, override llmclient.LLMClient) (*simulation.Client, llmclient.LLMClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	simCfg := cfg.Simulation()
	cli := override
	switch {
	case cli != nil:
		if simCfg.APIKey == "" {
			simCfg.APIKey = "offline"
		}
	case simCfg.APIKey != "":
		g, err := llmclient.NewGeminiClient(ctx, simCfg.APIKey, cfg.Gemini.Model)
		if err != nil && !errors.Is(err, llmclient.ErrMissingAPIKey) {
			return nil, nil, fmt.Errorf("failed to init gemini client: %w", err)
		}
		if g != nil {
			cli = g
		}
	default:
		logger.Warn("GEMINI_API_KEY is not set; simulations will return the fallback reaction")
	}
	return simulation.New(simCfg, cli, logger), cli, nil
}

func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	a.release()
	return err
}

func (a *App) release() {
	a.svc.Close()
	if a.llm != nil {
		_ = a.llm.Close()
	}
}

// Run starts the server and blocks until ctx is done, then shuts down with
// the given grace period.
func (a *App) Run(ctx context.Context, grace time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Start()
	}()

	select {
	case err := <-errCh:
		a.release()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := a.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return <-errCh
}
