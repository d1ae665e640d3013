package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dualcore/internal/config"
	gatewaysimulate "dualcore/internal/gateway/service/simulate"
	llmclient "dualcore/internal/llmclient"
	"dualcore/internal/simulation"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:             ":0",
		Env:              "local",
		Gemini:           config.GeminiConfig{Model: llmclient.DefaultGeminiModel},
		Sim:              config.SimulationConfig{Timeout: time.Second},
		SessionCacheSize: 4,
	}
}

func TestNew_OfflineClientServesSimulations(t *testing.T) {
	fake := llmclient.NewFakeClient()
	a, err := New(context.Background(), testConfig(), nil, WithLLMClient(fake))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	ts := httptest.NewServer(a.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/simulate", "application/json", strings.NewReader(`{"scenario":"x","mode":"SYSTEM_2"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out gatewaysimulate.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 80, out.Result.EnergyLevel)
	assert.Empty(t, out.Advisory)
	assert.Equal(t, 1, fake.Calls())
}

func TestNewSimulationClient_WithoutKeyIsUnconfigured(t *testing.T) {
	client, llm, err := NewSimulationClient(context.Background(), testConfig(), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, llm)
	assert.False(t, client.Configured())

	res, runErr := client.Run(context.Background(), "x", "", "")
	assert.Equal(t, simulation.Fallback(), res)
	assert.ErrorIs(t, runErr, simulation.ErrConfigurationMissing)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Port = "127.0.0.1:0"
	a, err := New(context.Background(), cfg, nil, WithLLMClient(llmclient.NewFakeClient()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx, time.Second) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
