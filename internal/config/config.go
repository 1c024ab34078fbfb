// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Date-valued keys are "YYYY-MM-DD" strings and are parsed on use.
// - External errors are wrapped with this package's sentinels.
package config

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/samber/lo"

	"github.com/okian/excess/internal/domain/model"
	"github.com/okian/excess/internal/domain/selection"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataPaths are tried in order; the first readable CSV wins.
	DataPaths []string `koanf:"data_paths"`

	// ReferenceStart is the date a country must reach back to in order to be kept.
	ReferenceStart string `koanf:"reference_start"`

	// CoverageThreshold is the share of kept countries that must report a week
	// for it to count as the common end date.
	CoverageThreshold float64 `koanf:"coverage_threshold"`

	// DefaultEndDate is used when no week reaches the coverage threshold.
	DefaultEndDate string `koanf:"default_end_date"`

	// PandemicStart and PandemicEnd bound the period no baseline may touch.
	PandemicStart string `koanf:"pandemic_start"`
	PandemicEnd   string `koanf:"pandemic_end"`

	// EarliestStartYear, LatestEndYear and MinBaselineYears shape the candidate grid.
	EarliestStartYear int `koanf:"earliest_start_year"`
	LatestEndYear     int `koanf:"latest_end_year"`
	MinBaselineYears  int `koanf:"min_baseline_years"`

	// EvaluationYear starts the held-out period; 0 means the latest data year.
	EvaluationYear int `koanf:"evaluation_year"`

	// CumulativeStart anchors cumulative excess series.
	CumulativeStart string `koanf:"cumulative_start"`

	// WorkerCount sets the number of window evaluation workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`

	// FixedBaselines lists "YYYY-YYYY" windows fitted alongside the optimum.
	FixedBaselines []string `koanf:"fixed_baselines"`

	// BaselineLabels attributes fixed windows to the institutions that use them.
	BaselineLabels map[string][]string `koanf:"baseline_labels"`
}

// New creates a Config with defaults. Context is accepted first to satisfy the
// project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		DataPaths:         []string{"./data/HMD.csv", "../data/HMD.csv", "data/HMD.csv"},
		ReferenceStart:    "2001-01-01",
		CoverageThreshold: 0.8,
		DefaultEndDate:    "2025-06-25",
		PandemicStart:     "2020-01-01",
		PandemicEnd:       "2022-12-31",
		EarliestStartYear: 2001,
		LatestEndYear:     2019,
		MinBaselineYears:  4,
		CumulativeStart:   "2020-01-01",
		WorkerCount:       runtime.NumCPU(),
		QueueSize:         1024,
		FixedBaselines:    defaultBaselines(),
		BaselineLabels: map[string][]string{
			"2014-2019": {"2025 RMSE minimised"},
			"2015-2019": {"Our World in Data", "The Economist"},
			"2010-2019": {"Institute and Faculty of Actuaries", "M. Pizzato"},
			"2016-2019": {"Eurostat"},
			"2001-2019": {"Equilibrium-Selected Baseline"},
		},
	}
}

// defaultBaselines returns the labels of the built-in fixed windows.
func defaultBaselines() []string {
	return lo.Map(selection.DefaultFixedWindows(), func(w model.Window, _ int) string {
		return w.Label()
	})
}

// Selection builds the candidate grid bounds.
func (c *Config) Selection() (selection.Config, error) {
	start, err := parseDate("pandemic_start", c.PandemicStart)
	if err != nil {
		return selection.Config{}, err
	}
	end, err := parseDate("pandemic_end", c.PandemicEnd)
	if err != nil {
		return selection.Config{}, err
	}
	return selection.Config{
		PandemicStart:     start,
		PandemicEnd:       end,
		EarliestStartYear: c.EarliestStartYear,
		LatestEndYear:     c.LatestEndYear,
		MinYears:          c.MinBaselineYears,
	}, nil
}

// Reference returns the parsed reference start date.
func (c *Config) Reference() (time.Time, error) {
	return parseDate("reference_start", c.ReferenceStart)
}

// Fallback returns the parsed default end date.
func (c *Config) Fallback() (time.Time, error) {
	return parseDate("default_end_date", c.DefaultEndDate)
}

// Cumulative returns the parsed cumulative excess anchor.
func (c *Config) Cumulative() (time.Time, error) {
	return parseDate("cumulative_start", c.CumulativeStart)
}

// Windows parses FixedBaselines.
func (c *Config) Windows() ([]model.Window, error) {
	out := make([]model.Window, 0, len(c.FixedBaselines))
	for _, s := range c.FixedBaselines {
		w, err := model.ParseWindow(s)
		if err != nil {
			return nil, fmt.Errorf("%w: fixed_baselines: %w", ErrInvalidConfig, err)
		}
		out = append(out, w)
	}
	return out, nil
}

func parseDate(key, value string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
	}
	return t, nil
}
