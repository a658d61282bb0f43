// Package config loads daemon configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full daemon configuration.
type Config struct {
	// MetricsAddr is the listen address for the Prometheus endpoint.
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`

	// StorePath is the SQLite file holding user records.
	StorePath string `env:"STORE_PATH" envDefault:"./data/skland.db"`

	// AutoSignEnabled turns the daily batch run on.
	AutoSignEnabled bool `env:"AUTO_SIGN_ENABLED" envDefault:"true"`

	// AutoSignHour is the local hour (0-23) the batch run fires at.
	AutoSignHour int `env:"AUTO_SIGN_HOUR" envDefault:"1"`

	// MaxRetries is the per-request HTTP attempt budget.
	MaxRetries int `env:"MAX_RETRIES" envDefault:"3"`

	// AttemptTimeout bounds each individual HTTP attempt.
	AttemptTimeout time.Duration `env:"ATTEMPT_TIMEOUT" envDefault:"10s"`

	// Concurrency bounds per-role sign-in calls in flight within one run.
	Concurrency int `env:"SIGNIN_CONCURRENCY" envDefault:"4"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment and normalizes out-of-range values.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.AutoSignHour < 0 {
		cfg.AutoSignHour = 0
	}
	if cfg.AutoSignHour > 23 {
		cfg.AutoSignHour = 23
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return cfg, nil
}
