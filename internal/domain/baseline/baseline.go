// Package baseline fits a log-linear trend to weekly mortality and projects it.
//
// The model is ln(value) = a + b*x with x = year*100 + week, estimated by
// ordinary least squares. Quasi-Poisson dispersion is reported from Pearson
// residuals on the original scale.
package baseline

import (
	"fmt"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/okian/excess/internal/domain/calendar"
	"github.com/okian/excess/internal/domain/model"
)

const (
	// MinPoints is the smallest sample a trend is fitted on.
	MinPoints = 3
	// singularTolerance bounds the normal-equation determinant.
	singularTolerance = 1e-10
)

// Model is a fitted log-linear trend.
type Model struct {
	Intercept  float64
	Slope      float64
	Dispersion float64
	N          int
	Window     model.Window
	FirstDate  time.Time
}

// Projector returns a baseline value for an ISO week, or false when none exists.
type Projector func(calendar.Week) (float64, bool)

// sample is the in-window, positive part of a series in date order.
type sample struct {
	dates  []time.Time
	xs     []float64
	ys     []float64
	values []float64
}

func collect(points []model.Point, w model.Window) sample {
	in := make([]model.Point, 0, len(points))
	for _, p := range points {
		if !w.Contains(p.Date) || !positive(p.Value) {
			continue
		}
		in = append(in, p)
	}
	slices.SortStableFunc(in, func(a, b model.Point) int { return a.Date.Compare(b.Date) })

	s := sample{
		dates:  make([]time.Time, len(in)),
		xs:     make([]float64, len(in)),
		ys:     make([]float64, len(in)),
		values: make([]float64, len(in)),
	}
	for i, p := range in {
		s.dates[i] = p.Date
		s.xs[i] = p.ISO.Index()
		s.ys[i] = math.Log(p.Value)
		s.values[i] = p.Value
	}
	return s
}

// Fit estimates the trend on the points inside w. Points whose value is not a
// positive finite number are ignored.
func Fit(points []model.Point, w model.Window) (Model, error) {
	s := collect(points, w)
	n := len(s.xs)
	if n < MinPoints {
		return Model{}, fmt.Errorf("%w: %d points in %s", ErrInsufficientData, n, w.Label())
	}

	sumX := floats.Sum(s.xs)
	det := float64(n)*floats.Dot(s.xs, s.xs) - sumX*sumX
	if math.Abs(det) < singularTolerance {
		return Model{}, fmt.Errorf("%w: determinant %g in %s", ErrDegenerate, det, w.Label())
	}

	a, b := stat.LinearRegression(s.xs, s.ys, nil, false)
	if math.IsNaN(a) || math.IsNaN(b) {
		return Model{}, fmt.Errorf("%w: non-finite coefficients in %s", ErrDegenerate, w.Label())
	}

	m := Model{
		Intercept: a,
		Slope:     b,
		N:         n,
		Window:    w,
		FirstDate: s.dates[0],
	}
	m.Dispersion = dispersion(s, a, b)
	return m, nil
}

// dispersion is the Pearson chi-square over n-2 degrees of freedom.
func dispersion(s sample, a, b float64) float64 {
	df := len(s.xs) - 2
	if df <= 0 {
		return 0
	}
	var chi2 float64
	for i, x := range s.xs {
		fitted := math.Exp(a + b*x)
		if !positive(fitted) {
			continue
		}
		r := (s.values[i] - fitted) / math.Sqrt(fitted)
		chi2 += r * r
	}
	return chi2 / float64(df)
}

// Project evaluates the trend at an ISO week. A nil model projects nothing.
func (m *Model) Project(w calendar.Week) (float64, bool) {
	if m == nil {
		return 0, false
	}
	v := math.Exp(m.Intercept + m.Slope*w.Index())
	if !positive(v) {
		return 0, false
	}
	return v, true
}

// Projector adapts the trend to the Projector signature.
func (m *Model) Projector() Projector {
	return m.Project
}

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
