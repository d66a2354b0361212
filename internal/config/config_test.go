package config

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults checks the defaults that matter for correctness. The
// relay URL in particular must be absolute: the orchestrator executes it
// with a plain HTTP client, which has no origin to resolve a relative
// path against.
func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "WEATHERSTACK_BASE_URL", "ORIGIN_SCHEME", "RELAY_URL",
		"RETRY_DELAY", "REFRESH_INTERVAL", "REDIS_ENABLED",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://api.weatherstack.com", cfg.Upstream.BaseURL)
	assert.Equal(t, "http", cfg.Client.OriginScheme)
	assert.Equal(t, 2*time.Second, cfg.Client.RetryDelay)
	assert.Equal(t, 5*time.Minute, cfg.Client.RefreshInterval)
	assert.False(t, cfg.Redis.Enabled)

	parsed, err := url.Parse(cfg.Client.RelayURL)

	require.NoError(t, err)
	assert.True(t, parsed.IsAbs(), "relay URL default must be absolute, got %q", cfg.Client.RelayURL)
	assert.Equal(t, "/api/relay", parsed.Path)
}

// TestLoad_EnvOverrides checks that environment values win over defaults.
func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ORIGIN_SCHEME", "https")
	t.Setenv("RELAY_URL", "https://weather.example.com/api/relay")
	t.Setenv("RETRY_DELAY", "150ms")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()

	assert.Equal(t, "https", cfg.Client.OriginScheme)
	assert.Equal(t, "https://weather.example.com/api/relay", cfg.Client.RelayURL)
	assert.Equal(t, 150*time.Millisecond, cfg.Client.RetryDelay)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 3, cfg.Redis.DB)
}

// TestLoad_MalformedValuesFallBack checks that unparseable env values are
// ignored in favor of the defaults.
func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("RETRY_DELAY", "soon")
	t.Setenv("REDIS_ENABLED", "yep")
	t.Setenv("REDIS_DB", "three")

	cfg := Load()

	assert.Equal(t, 2*time.Second, cfg.Client.RetryDelay)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 0, cfg.Redis.DB)
}
