// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and environment variables over those defaults.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/0xJagger/poc-geo-tier-list/internal/domain/scoring"
)

// Preparer modes.
const (
	PreparerLocal = "local"
	PreparerHTTP  = "http"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CatalogPath points at a YAML catalog. Empty selects the built-in list.
	CatalogPath string `koanf:"catalog_path"`

	// ScoreMode selects how out-of-range scores are handled: permissive, clamp, reject.
	ScoreMode string `koanf:"score_mode"`

	// PreparerMode selects the edit preparation backend: local or http.
	PreparerMode string `koanf:"preparer_mode"`

	// PreparerURL is the endpoint used when PreparerMode is http.
	PreparerURL string `koanf:"preparer_url"`

	// PreparerTimeoutMS bounds a single preparation call.
	PreparerTimeoutMS int `koanf:"preparer_timeout_ms"`

	// PreparerLatencyMinMS and PreparerLatencyMaxMS bound the simulated service latency.
	PreparerLatencyMinMS int `koanf:"preparer_latency_min_ms"`
	PreparerLatencyMaxMS int `koanf:"preparer_latency_max_ms"`

	// PrepareQueueSize bounds pending preparation jobs.
	PrepareQueueSize int `koanf:"prepare_queue_size"`
}

// New creates a Config populated with defaults. Context is accepted first to
// follow the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		ScoreMode:            string(scoring.ModePermissive),
		PreparerMode:         PreparerLocal,
		PreparerTimeoutMS:    5_000,
		PreparerLatencyMinMS: 80,
		PreparerLatencyMaxMS: 150,
		PrepareQueueSize:     16,
	}
}

// Validate checks field combinations Load cannot express through types.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if _, err := scoring.ParseMode(c.ScoreMode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch c.PreparerMode {
	case PreparerLocal:
	case PreparerHTTP:
		if strings.TrimSpace(c.PreparerURL) == "" {
			return fmt.Errorf("%w: preparer_url is required in http mode", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown preparer_mode %q", ErrInvalidConfig, c.PreparerMode)
	}
	if c.PreparerTimeoutMS <= 0 {
		return fmt.Errorf("%w: preparer_timeout_ms must be positive", ErrInvalidConfig)
	}
	if c.PreparerLatencyMinMS < 0 || c.PreparerLatencyMaxMS < c.PreparerLatencyMinMS {
		return fmt.Errorf("%w: preparer latency range is invalid", ErrInvalidConfig)
	}
	if c.PrepareQueueSize <= 0 {
		return fmt.Errorf("%w: prepare_queue_size must be positive", ErrInvalidConfig)
	}
	return nil
}
