package synthetic

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/excess/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0640
)

// Run generates the configured series and writes them to cfg.Output.
func Run(ctx context.Context, cfg Config) error {
	log := logger.Get().Named("synthetic")
	log.Info(ctx, "generating synthetic mortality data",
		logger.Int("countries", len(cfg.Countries)),
		logger.Float64("shock", cfg.Shock),
		logger.Float64("noise", cfg.Noise),
		logger.String("output", cfg.Output),
	)

	records := Generate(cfg)
	if err := ctx.Err(); err != nil {
		return err
	}

	if dir := filepath.Dir(cfg.Output); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := WriteCSV(f, records); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}

	log.Info(ctx, "synthetic data written", logger.Int("records", len(records)), logger.String("output", cfg.Output))
	return nil
}
