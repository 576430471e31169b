// Package config provides typed configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Strategy names accepted by ROADMAP_STRATEGY.
const (
	StrategyRules     = "rules"
	StrategyGenerated = "generated"
)

// ServerConfig holds configuration for the HTTP API server.
type ServerConfig struct {
	Port              int
	DatabaseURL       string
	GeminiAPIKey      string
	Strategy          string
	CompletionTimeout time.Duration
	SkipPageCache     bool
}

// NewServerConfig creates server configuration from environment variables.
// It reads DATABASE_URL (required), GEMINI_API_KEY (required when the
// generated strategy is selected), PORT (default: 8080), ROADMAP_STRATEGY
// (default: generated), COMPLETION_TIMEOUT (default: 60s) and
// SKIP_PAGE_CACHE.
func NewServerConfig() (*ServerConfig, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %v", err)
	}

	strategy := os.Getenv("ROADMAP_STRATEGY")
	if strategy == "" {
		strategy = StrategyGenerated
	}

	timeoutStr := os.Getenv("COMPLETION_TIMEOUT")
	if timeoutStr == "" {
		timeoutStr = "60s"
	}
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid COMPLETION_TIMEOUT: %v", err)
	}

	skipCache := false
	if v := os.Getenv("SKIP_PAGE_CACHE"); v != "" {
		skipCache, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SKIP_PAGE_CACHE: %v", err)
		}
	}

	config := &ServerConfig{
		Port:              port,
		DatabaseURL:       databaseURL,
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		Strategy:          strategy,
		CompletionTimeout: timeout,
		SkipPageCache:     skipCache,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *ServerConfig) normalize() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	switch c.Strategy {
	case StrategyRules:
	case StrategyGenerated:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the generated strategy")
		}
	default:
		return fmt.Errorf("unknown ROADMAP_STRATEGY: %q", c.Strategy)
	}
	if c.CompletionTimeout < time.Minute {
		return fmt.Errorf("COMPLETION_TIMEOUT must be at least 1m, got: %s", c.CompletionTimeout)
	}
	return nil
}
