package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setServerEnv(t *testing.T, overrides map[string]string) {
	t.Helper()
	base := map[string]string{
		"DATABASE_URL":       "postgres://localhost:5432/planner",
		"GEMINI_API_KEY":     "test-key",
		"PORT":               "",
		"ROADMAP_STRATEGY":   "",
		"COMPLETION_TIMEOUT": "",
		"SKIP_PAGE_CACHE":    "",
	}
	for k, v := range overrides {
		base[k] = v
	}
	for k, v := range base {
		t.Setenv(k, v)
	}
}

func TestNewServerConfig_Defaults(t *testing.T) {
	setServerEnv(t, nil)

	cfg, err := NewServerConfig()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StrategyGenerated, cfg.Strategy)
	assert.Equal(t, time.Minute, cfg.CompletionTimeout)
	assert.False(t, cfg.SkipPageCache)
}

func TestNewServerConfig_RequiresDatabaseURL(t *testing.T) {
	setServerEnv(t, map[string]string{"DATABASE_URL": ""})

	_, err := NewServerConfig()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestNewServerConfig_GeneratedStrategyRequiresAPIKey(t *testing.T) {
	setServerEnv(t, map[string]string{"GEMINI_API_KEY": ""})

	_, err := NewServerConfig()
	assert.ErrorContains(t, err, "GEMINI_API_KEY")
}

func TestNewServerConfig_RulesStrategyNeedsNoAPIKey(t *testing.T) {
	setServerEnv(t, map[string]string{
		"GEMINI_API_KEY":   "",
		"ROADMAP_STRATEGY": StrategyRules,
	})

	cfg, err := NewServerConfig()
	require.NoError(t, err)
	assert.Equal(t, StrategyRules, cfg.Strategy)
}

func TestNewServerConfig_UnknownStrategy(t *testing.T) {
	setServerEnv(t, map[string]string{"ROADMAP_STRATEGY": "oracle"})

	_, err := NewServerConfig()
	assert.ErrorContains(t, err, "ROADMAP_STRATEGY")
}

func TestNewServerConfig_TimeoutFloor(t *testing.T) {
	setServerEnv(t, map[string]string{"COMPLETION_TIMEOUT": "5s"})

	_, err := NewServerConfig()
	assert.ErrorContains(t, err, "COMPLETION_TIMEOUT")
}

func TestNewServerConfig_CustomValues(t *testing.T) {
	setServerEnv(t, map[string]string{
		"PORT":               "9090",
		"COMPLETION_TIMEOUT": "90s",
		"SKIP_PAGE_CACHE":    "true",
	})

	cfg, err := NewServerConfig()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 90*time.Second, cfg.CompletionTimeout)
	assert.True(t, cfg.SkipPageCache)
}

func TestNewServerConfig_InvalidPort(t *testing.T) {
	setServerEnv(t, map[string]string{"PORT": "not-a-port"})

	_, err := NewServerConfig()
	assert.ErrorContains(t, err, "PORT")
}
