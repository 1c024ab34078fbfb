package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/okian/excess/internal/synthetic"
	"github.com/okian/excess/pkg/logger"
)

const defaultTimeout = time.Minute

func main() {
	defaults := synthetic.DefaultConfig()
	var (
		output    = flag.String("out", defaults.Output, "Output CSV path")
		countries = flag.String("countries", "", "Comma-separated country codes (default: built-in set)")
		fromYear  = flag.Int("from", 2001, "First ISO year")
		toYear    = flag.Int("to", 2025, "Last ISO year")
		lastWeek  = flag.Int("last-week", 26, "Last ISO week of the final year")
		shock     = flag.Float64("shock", defaults.Shock, "Rate multiplier during the shock years")
		noise     = flag.Float64("noise", defaults.Noise, "Relative noise standard deviation")
		seed      = flag.Uint64("seed", defaults.Seed, "Random seed")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	cfg := defaults
	cfg.Output = *output
	cfg.Shock = *shock
	cfg.Noise = *noise
	cfg.Seed = *seed
	if *countries != "" {
		cfg.Countries = nil
		for _, code := range strings.Split(*countries, ",") {
			cfg.Countries = append(cfg.Countries, synthetic.Country{Code: strings.TrimSpace(code), Scale: 1})
		}
	}
	for i := range cfg.Countries {
		cfg.Countries[i].FromYear = *fromYear
		cfg.Countries[i].ToYear = *toYear
		cfg.Countries[i].LastWeek = *lastWeek
	}

	if err := run(cfg); err != nil {
		os.Exit(1)
	}
}

func run(cfg synthetic.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if err := synthetic.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "synthetic data generation failed", logger.Error(err))
		return err
	}
	return nil
}
