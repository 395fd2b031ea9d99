// Package config holds client configuration: connection target,
// reconnect policy tuning, and storage location. Values come from
// defaults, an optional TOML file, and environment overrides, in that
// order.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gorilla/websocket"
)

const (
	// DefaultEndpoint is the live API websocket endpoint.
	DefaultEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

	// DefaultModel is used when the caller does not pick a model.
	DefaultModel = "models/gemini-2.0-flash-live-001"

	// CloseBadGateway is not defined by gorilla/websocket.
	CloseBadGateway = 1014
)

// Duration is a time.Duration that decodes from TOML strings such as
// "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config is the full client configuration.
type Config struct {
	// APIKey authenticates against the live API endpoint.
	APIKey string `toml:"api_key"`

	// Endpoint is the websocket URL of the live API.
	Endpoint string `toml:"endpoint"`

	// Model is the default model for connect calls.
	Model string `toml:"model"`

	// MaxReconnectAttempts bounds consecutive automatic reconnect
	// attempts before the client gives up and clears resumption state.
	MaxReconnectAttempts int `toml:"max_reconnect_attempts"`

	// BaseRetryDelay is the first reconnect delay; it doubles per
	// attempt up to MaxRetryDelay.
	BaseRetryDelay Duration `toml:"base_retry_delay"`
	MaxRetryDelay  Duration `toml:"max_retry_delay"`

	// RetryJitterMax is the upper bound of the random jitter added to
	// every reconnect delay.
	RetryJitterMax Duration `toml:"retry_jitter_max"`

	// HeartbeatInterval is the keepalive send period while connected.
	HeartbeatInterval Duration `toml:"heartbeat_interval"`

	// ReconnectableCodes are websocket close codes treated as
	// transient failures worth reconnecting after.
	ReconnectableCodes []int `toml:"reconnectable_codes"`

	// HandlePath overrides where the resumption handle is persisted.
	// Empty selects a file under the user config directory.
	HandlePath string `toml:"handle_path"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Endpoint:             DefaultEndpoint,
		Model:                DefaultModel,
		MaxReconnectAttempts: 5,
		BaseRetryDelay:       Duration{time.Second},
		MaxRetryDelay:        Duration{30 * time.Second},
		RetryJitterMax:       Duration{time.Second},
		HeartbeatInterval:    Duration{20 * time.Second},
		ReconnectableCodes: []int{
			websocket.CloseNoStatusReceived,
			websocket.CloseAbnormalClosure,
			websocket.CloseInternalServerErr,
			websocket.CloseServiceRestart,
			websocket.CloseTryAgainLater,
			CloseBadGateway,
		},
	}
}

// Load builds a Config from defaults, the TOML file at path (skipped
// when path is empty), and environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LIVEWIRE_API_KEY"); v != "" {
		c.APIKey = v
	} else if v := os.Getenv("GEMINI_API_KEY"); v != "" && c.APIKey == "" {
		c.APIKey = v
	}
	if v := os.Getenv("LIVEWIRE_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("LIVEWIRE_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("LIVEWIRE_HANDLE_PATH"); v != "" {
		c.HandlePath = v
	}
}

// Validate checks the configuration for values the client cannot run
// with.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	if c.MaxReconnectAttempts < 0 {
		return errors.New("max_reconnect_attempts must not be negative")
	}
	if c.BaseRetryDelay.Duration <= 0 {
		return errors.New("base_retry_delay must be positive")
	}
	if c.MaxRetryDelay.Duration < c.BaseRetryDelay.Duration {
		return errors.New("max_retry_delay must be at least base_retry_delay")
	}
	if c.RetryJitterMax.Duration < 0 {
		return errors.New("retry_jitter_max must not be negative")
	}
	if c.HeartbeatInterval.Duration <= 0 {
		return errors.New("heartbeat_interval must be positive")
	}
	return nil
}
