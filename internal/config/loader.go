package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if EXCESS_CONFIG is set
//  3. env (prefix EXCESS_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("EXCESS_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// EXCESS_QUEUE_SIZE -> queue_size. Keys are flat, so underscores are kept.
	envProvider := env.Provider("EXCESS_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "excess_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded values for consistency.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.CoverageThreshold <= 0 || c.CoverageThreshold > 1 {
		return fmt.Errorf("%w: coverage_threshold must be in (0, 1], got %v", ErrInvalidConfig, c.CoverageThreshold)
	}
	if c.MinBaselineYears < 1 {
		return fmt.Errorf("%w: min_baseline_years must be positive", ErrInvalidConfig)
	}
	if c.LatestEndYear < c.EarliestStartYear {
		return fmt.Errorf("%w: latest_end_year %d before earliest_start_year %d",
			ErrInvalidConfig, c.LatestEndYear, c.EarliestStartYear)
	}
	sel, err := c.Selection()
	if err != nil {
		return err
	}
	if sel.PandemicEnd.Before(sel.PandemicStart) {
		return fmt.Errorf("%w: pandemic_end before pandemic_start", ErrInvalidConfig)
	}
	if _, err := c.Reference(); err != nil {
		return err
	}
	if _, err := c.Fallback(); err != nil {
		return err
	}
	if _, err := c.Cumulative(); err != nil {
		return err
	}
	if _, err := c.Windows(); err != nil {
		return err
	}
	return nil
}
