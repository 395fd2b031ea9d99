package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.Equal(t, DefaultEndpoint, cfg.Endpoint)
	require.Equal(t, 5, cfg.MaxReconnectAttempts)
	require.Equal(t, time.Second, cfg.BaseRetryDelay.Duration)
	require.Equal(t, 30*time.Second, cfg.MaxRetryDelay.Duration)
	require.Equal(t, 20*time.Second, cfg.HeartbeatInterval.Duration)
	require.Contains(t, cfg.ReconnectableCodes, websocket.CloseAbnormalClosure)
	require.Contains(t, cfg.ReconnectableCodes, CloseBadGateway)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livewire.toml")
	body := `
api_key = "k-123"
model = "models/custom"
max_reconnect_attempts = 3
base_retry_delay = "500ms"
max_retry_delay = "10s"
retry_jitter_max = "250ms"
heartbeat_interval = "5s"
reconnectable_codes = [1006, 1011]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "k-123", cfg.APIKey)
	require.Equal(t, "models/custom", cfg.Model)
	require.Equal(t, 3, cfg.MaxReconnectAttempts)
	require.Equal(t, 500*time.Millisecond, cfg.BaseRetryDelay.Duration)
	require.Equal(t, 10*time.Second, cfg.MaxRetryDelay.Duration)
	require.Equal(t, []int{1006, 1011}, cfg.ReconnectableCodes)
	// Untouched keys keep their defaults.
	require.Equal(t, DefaultEndpoint, cfg.Endpoint)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LIVEWIRE_API_KEY", "env-key")
	t.Setenv("LIVEWIRE_MODEL", "models/from-env")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "env-key", cfg.APIKey)
	require.Equal(t, "models/from-env", cfg.Model)
}

func TestLoadGeminiKeyFallback(t *testing.T) {
	t.Setenv("LIVEWIRE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gem-key")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "gem-key", cfg.APIKey)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty endpoint", func(c *Config) { c.Endpoint = "" }},
		{"negative attempts", func(c *Config) { c.MaxReconnectAttempts = -1 }},
		{"zero base delay", func(c *Config) { c.BaseRetryDelay.Duration = 0 }},
		{"max below base", func(c *Config) { c.MaxRetryDelay.Duration = time.Millisecond }},
		{"negative jitter", func(c *Config) { c.RetryJitterMax.Duration = -time.Second }},
		{"zero heartbeat", func(c *Config) { c.HeartbeatInterval.Duration = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}
