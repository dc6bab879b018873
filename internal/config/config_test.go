package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TRIP_OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSOrigins)
	assert.Empty(t, cfg.HTTP.TrustedProxies)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "gpt-4o-search-preview", cfg.AI.OpenAIModel)
	assert.Equal(t, 4, cfg.Planner.ShortTripMaxDays)
	assert.Equal(t, 5, cfg.Planner.ChunkSize)
	assert.Equal(t, 5, cfg.Planner.Concurrency)
	assert.Equal(t, 2, cfg.Planner.MaxRetries)
	assert.Equal(t, 1200*time.Millisecond, cfg.Planner.RetryBase)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TRIP_AI_PROVIDER", "Gemini")
	t.Setenv("TRIP_GEMINI_API_KEY", "g-key")
	t.Setenv("TRIP_PLANNER_CHUNK_SIZE", "3")
	t.Setenv("TRIP_PLANNER_RETRY_BASE", "50ms")
	t.Setenv("TRIP_HTTP_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("TRIP_ENV", "production")
	t.Setenv("TRIP_HTTP_TRUSTED_PROXIES", "10.0.0.0/8,127.0.0.1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.HTTP.TrustedProxies)

	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, 3, cfg.Planner.ChunkSize)
	assert.Equal(t, 50*time.Millisecond, cfg.Planner.RetryBase)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_MissingProviderKey(t *testing.T) {
	t.Setenv("TRIP_AI_PROVIDER", "openai")
	t.Setenv("TRIP_OPENAI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRIP_OPENAI_API_KEY")
}

func TestLoad_UnknownProvider(t *testing.T) {
	t.Setenv("TRIP_AI_PROVIDER", "llama")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_InvalidPlanner(t *testing.T) {
	t.Setenv("TRIP_OPENAI_API_KEY", "sk-test")
	t.Setenv("TRIP_PLANNER_CHUNK_SIZE", "0")

	_, err := Load()
	require.Error(t, err)
}
