package repository

import (
	"cmp"
	"context"
	"slices"

	"github.com/okian/excess/internal/domain/model"
)

// MemoryStore is an immutable, in-memory Store. Build it once with New.
type MemoryStore struct {
	byWindow map[model.WindowKey]int
	ordered  []Entry // window order
	ranked   []Entry // rmse order
}

var _ Store = (*MemoryStore)(nil)

// New builds a store from entries. Later entries for the same window replace earlier ones.
func New(entries []Entry, opts ...Option) *MemoryStore {
	var cfg options
	for _, opt := range opts {
		opt(&cfg)
	}

	latest := make(map[model.WindowKey]Entry, len(entries))
	for _, e := range entries {
		if labels, ok := cfg.labels[e.Window.Label()]; ok {
			e.Labels = append(slices.Clone(e.Labels), labels...)
		}
		latest[e.Window.Key()] = e
	}

	s := &MemoryStore{byWindow: make(map[model.WindowKey]int, len(latest))}
	for _, e := range latest {
		s.ordered = append(s.ordered, e)
	}
	slices.SortFunc(s.ordered, compareWindows)

	s.ranked = slices.Clone(s.ordered)
	slices.SortStableFunc(s.ranked, func(a, b Entry) int { return cmp.Compare(a.RMSE, b.RMSE) })
	rank := make(map[model.WindowKey]int, len(s.ranked))
	for i := range s.ranked {
		s.ranked[i].Rank = i + 1
		rank[s.ranked[i].Window.Key()] = i + 1
	}
	for i := range s.ordered {
		s.ordered[i].Rank = rank[s.ordered[i].Window.Key()]
		s.byWindow[s.ordered[i].Window.Key()] = i
	}
	return s
}

func compareWindows(a, b Entry) int {
	if c := a.Window.Start.Compare(b.Window.Start); c != 0 {
		return c
	}
	return a.Window.End.Compare(b.Window.End)
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, w model.Window) (Entry, error) {
	i, ok := s.byWindow[w.Key()]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return s.ordered[i], nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) ([]Entry, error) {
	return slices.Clone(s.ordered), nil
}

// TopN implements Store.
func (s *MemoryStore) TopN(_ context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}
	return slices.Clone(s.ranked[:min(n, len(s.ranked))]), nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	return len(s.ordered)
}
