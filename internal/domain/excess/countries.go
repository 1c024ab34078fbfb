package excess

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/okian/excess/internal/domain/model"
	"github.com/okian/excess/internal/domain/seasonal"
)

// Contribution is one country's accumulated excess over a period.
type Contribution struct {
	CountryCode string
	Excess      float64
	Weeks       int
}

// Contributions fits each country on w and sums its weekly excess over
// [from, to]. Countries without a model or without weeks in the period are
// skipped. The result is ordered by excess, largest first.
func Contributions(countries map[string]model.Series, w model.Window, from, to time.Time) []Contribution {
	out := make([]Contribution, 0, len(countries))
	for _, code := range sortedCodes(countries) {
		points := countries[code].Points()
		b, err := seasonal.Fit(points, w)
		if err != nil {
			continue
		}
		total, n := Sum(points, b.Projector(), from, to)
		if n == 0 {
			continue
		}
		out = append(out, Contribution{CountryCode: code, Excess: total, Weeks: n})
	}
	slices.SortStableFunc(out, func(a, b Contribution) int { return cmp.Compare(b.Excess, a.Excess) })
	return out
}

// Divergence compares the cumulative excess of one country under two windows.
type Divergence struct {
	CountryCode string
	First       float64
	Second      float64
	Difference  float64
}

// Divergent fits every country on both windows, accumulates excess from
// `from` through `at` under each, and returns the limit countries with the
// largest absolute difference.
func Divergent(countries map[string]model.Series, first, second model.Window, from, at time.Time, limit int) []Divergence {
	var out []Divergence
	for _, code := range sortedCodes(countries) {
		points := countries[code].Points()
		a, err := seasonal.Fit(points, first)
		if err != nil {
			continue
		}
		b, err := seasonal.Fit(points, second)
		if err != nil {
			continue
		}
		x, nx := Sum(points, a.Projector(), from, at)
		y, ny := Sum(points, b.Projector(), from, at)
		if nx == 0 || ny == 0 {
			continue
		}
		out = append(out, Divergence{CountryCode: code, First: x, Second: y, Difference: x - y})
	}
	slices.SortStableFunc(out, func(a, b Divergence) int {
		return cmp.Compare(math.Abs(b.Difference), math.Abs(a.Difference))
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortedCodes(countries map[string]model.Series) []string {
	codes := lo.Keys(countries)
	slices.Sort(codes)
	return codes
}
