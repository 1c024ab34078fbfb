// Package selection searches candidate fitting windows for the baseline that
// best predicts a held-out evaluation period.
package selection

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/okian/excess/internal/domain/calendar"
	"github.com/okian/excess/internal/domain/excess"
	"github.com/okian/excess/internal/domain/model"
	"github.com/okian/excess/internal/domain/seasonal"
)

// Config bounds the candidate grid.
type Config struct {
	PandemicStart     time.Time
	PandemicEnd       time.Time
	EarliestStartYear int
	LatestEndYear     int
	MinYears          int
}

// DefaultConfig returns the 2001..2019 grid with a 2020-2022 exclusion.
func DefaultConfig() Config {
	return Config{
		PandemicStart:     calendar.Date(2020, time.January, 1),
		PandemicEnd:       calendar.Date(2022, time.December, 31),
		EarliestStartYear: 2001,
		LatestEndYear:     2019,
		MinYears:          4,
	}
}

// DefaultFixedWindows returns the published reference windows followed by
// every other window ending in 2019 that starts between 2010 and 2016.
func DefaultFixedWindows() []model.Window {
	out := []model.Window{
		model.YearWindow(2014, 2019),
		model.YearWindow(2015, 2019),
		model.YearWindow(2010, 2019),
		model.YearWindow(2016, 2019),
		model.YearWindow(2001, 2019),
	}
	for start := 2010; start <= 2016; start++ {
		w := model.YearWindow(start, 2019)
		if !slices.Contains(out, w) {
			out = append(out, w)
		}
	}
	return out
}

// Pandemic returns the excluded period as a window.
func (c Config) Pandemic() model.Window {
	return model.Window{Start: c.PandemicStart, End: c.PandemicEnd}
}

// Excluded reports whether w touches the pandemic period.
func (c Config) Excluded(w model.Window) bool {
	return w.Overlaps(c.Pandemic())
}

// Candidates enumerates year windows in (startYear, endYear) order. A window
// is kept when it spans at least MinYears, ends before evalStart and does not
// touch the pandemic period.
func Candidates(c Config, evalStart time.Time) []model.Window {
	var out []model.Window
	for start := c.EarliestStartYear; start <= c.LatestEndYear-c.MinYears+1; start++ {
		for end := start + c.MinYears - 1; end <= c.LatestEndYear; end++ {
			w := model.YearWindow(start, end)
			if !w.End.Before(evalStart) || c.Excluded(w) {
				continue
			}
			out = append(out, w)
		}
	}
	return out
}

// Period is the held-out evaluation range.
type Period = model.Window

// EvaluationPeriod runs from January 1st of year to the last point date. A
// zero year selects the year of the last point. ok is false without points.
func EvaluationPeriod(points []model.Point, year int) (Period, bool) {
	if len(points) == 0 {
		return Period{}, false
	}
	last := points[0].Date
	for _, p := range points[1:] {
		if p.Date.After(last) {
			last = p.Date
		}
	}
	if year == 0 {
		year = last.Year()
	}
	start := calendar.Date(year, time.January, 1)
	if start.After(last) {
		return Period{}, false
	}
	return Period{Start: start, End: last}, true
}

// Evaluation is the outcome of one candidate window.
type Evaluation struct {
	Index    int
	Window   model.Window
	Baseline seasonal.Baseline
	RMSE     float64
	Err      error
}

// Evaluate fits w and scores it against the evaluation period.
func Evaluate(points []model.Point, period Period, index int, w model.Window) Evaluation {
	ev := Evaluation{Index: index, Window: w, RMSE: math.Inf(1)}
	b, err := seasonal.Fit(points, w)
	if err != nil {
		ev.Err = err
		return ev
	}
	ev.Baseline = b
	obs, pred := excess.Pairs(points, b.Projector(), period.Start, period.End)
	ev.RMSE = excess.RMSE(obs, pred)
	return ev
}

// Evaluator scores a batch of windows. Results are returned in window order.
type Evaluator interface {
	EvaluateAll(ctx context.Context, points []model.Point, period Period, windows []model.Window) ([]Evaluation, error)
}

// Sequential evaluates every window on the calling goroutine.
type Sequential struct{}

// EvaluateAll implements Evaluator.
func (Sequential) EvaluateAll(ctx context.Context, points []model.Point, period Period, windows []model.Window) ([]Evaluation, error) {
	out := make([]Evaluation, len(windows))
	for i, w := range windows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = Evaluate(points, period, i, w)
	}
	return out, nil
}

// Result is the selected baseline.
type Result struct {
	Baseline  seasonal.Baseline
	Window    model.Window
	RMSE      float64
	Evaluated int
}

// Best returns the lowest-RMSE evaluation. The earlier candidate wins ties.
// Candidates without a model or with an infinite RMSE never win.
func Best(evals []Evaluation) (Result, bool) {
	best := -1
	bestRMSE := math.Inf(1)
	for i, e := range evals {
		if e.Err != nil {
			continue
		}
		if e.RMSE < bestRMSE {
			best, bestRMSE = i, e.RMSE
		}
	}
	if best < 0 {
		return Result{Evaluated: len(evals)}, false
	}
	e := evals[best]
	return Result{Baseline: e.Baseline, Window: e.Window, RMSE: e.RMSE, Evaluated: len(evals)}, true
}

// Select runs the grid search. It returns model.ErrNoBaseline when no
// candidate produces a finite score.
func Select(ctx context.Context, ev Evaluator, points []model.Point, c Config, period Period) (Result, error) {
	windows := Candidates(c, period.Start)
	evals, err := ev.EvaluateAll(ctx, points, period, windows)
	if err != nil {
		return Result{}, fmt.Errorf("evaluate candidates: %w", err)
	}
	res, ok := Best(evals)
	if !ok {
		return res, fmt.Errorf("%w: %d candidates", model.ErrNoBaseline, len(windows))
	}
	return res, nil
}
