package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"dualcore/internal/composer"
	llmclient "dualcore/internal/llmclient"
	"dualcore/internal/simulation"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string
	Gemini   GeminiConfig
	Sim      SimulationConfig
	// SessionCacheSize caps live websocket sessions held by the gateway.
	SessionCacheSize int
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type SimulationConfig struct {
	Language string
	Timeout  time.Duration
	Retries  int
}

// Load reads .env (when present) and then the process environment. A missing
// API key is not an error; simulations fall back until one is provided.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := firstNonEmpty(strings.TrimSpace(os.Getenv("APP_ENV")), "local")

	timeout, err := parseDuration("SIM_TIMEOUT", simulation.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parsePositiveInt("SESSION_CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}
	retries, err := parseInt("SIM_RETRIES", 0)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:     normalizePort(firstNonEmpty(strings.TrimSpace(os.Getenv("PORT")), ":8080")),
		Env:      env,
		LogLevel: strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))),
		Gemini: GeminiConfig{
			APIKey: firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_API_KEY")), strings.TrimSpace(os.Getenv("API_KEY"))),
			Model:  firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_MODEL")), llmclient.DefaultGeminiModel),
		},
		Sim: SimulationConfig{
			Language: firstNonEmpty(strings.TrimSpace(os.Getenv("SIM_LANGUAGE")), composer.DefaultLanguage),
			Timeout:  timeout,
			Retries:  retries,
		},
		SessionCacheSize: cacheSize,
	}, nil
}

func (c *Config) IsLocal() bool {
	return strings.EqualFold(c.Env, "local")
}

// Simulation maps the loaded values onto the simulation client config.
func (c *Config) Simulation() simulation.Config {
	return simulation.Config{
		APIKey:   c.Gemini.APIKey,
		Language: c.Sim.Language,
		Timeout:  c.Sim.Timeout,
		Retries:  c.Sim.Retries,
	}
}

func normalizePort(p string) string {
	if strings.HasPrefix(p, ":") {
		return p
	}
	return ":" + p
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	n, err := parseInt(key, def)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("config: %s must be positive, got %d", key, n)
	}
	return n, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
