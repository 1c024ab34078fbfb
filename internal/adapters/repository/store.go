// Package repository holds fitted baselines keyed by their window.
package repository

import (
	"context"

	"github.com/okian/excess/internal/domain/model"
	"github.com/okian/excess/internal/domain/seasonal"
)

// Entry is one fitted baseline and how it performed.
type Entry struct {
	Rank     int
	Window   model.Window
	Labels   []string
	Baseline seasonal.Baseline
	// RMSE over the evaluation period; +Inf when it could not be scored.
	RMSE    float64
	Optimal bool
}

// Store provides read access to fitted baselines. Entries never change once stored.
type Store interface {
	// Get returns the baseline fitted on w, or ErrNotFound.
	Get(ctx context.Context, w model.Window) (Entry, error)

	// List returns every entry in window order.
	List(ctx context.Context) ([]Entry, error)

	// TopN returns the n best entries ordered by RMSE, then window.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of stored baselines.
	Count(ctx context.Context) int
}
