// Package excess compares observed mortality with a baseline.
package excess

import (
	"math"
	"time"

	"github.com/okian/excess/internal/domain/baseline"
	"github.com/okian/excess/internal/domain/model"
)

// WeeksPerYear converts annualized weekly rates into weekly contributions.
const WeeksPerYear = 52

// Point is a dated value. A nil Value marks a week without a usable baseline or observation.
type Point struct {
	Date  time.Time
	Value *float64
}

// Present reports whether the point carries a value.
func (p Point) Present() bool {
	return p.Value != nil
}

func some(v float64) *float64 {
	return &v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Baseline evaluates proj at every observed week.
func Baseline(observed []model.Point, proj baseline.Projector) []Point {
	out := make([]Point, len(observed))
	for i, o := range observed {
		out[i].Date = o.Date
		if v, ok := proj(o.ISO); ok {
			out[i].Value = some(v)
		}
	}
	return out
}

// Pointwise returns observed minus baseline for every observed week.
func Pointwise(observed []model.Point, proj baseline.Projector) []Point {
	out := make([]Point, len(observed))
	for i, o := range observed {
		out[i].Date = o.Date
		if d, ok := diff(o, proj); ok {
			out[i].Value = some(d)
		}
	}
	return out
}

func diff(o model.Point, proj baseline.Projector) (float64, bool) {
	if !finite(o.Value) {
		return 0, false
	}
	b, ok := proj(o.ISO)
	if !ok || !finite(b) {
		return 0, false
	}
	return o.Value - b, true
}

// Cumulative is a running excess series and its grand total.
type Cumulative struct {
	Points []Point
	Total  float64
}

// Accumulate builds the running sum of weekly excess from start onwards. Each
// point holds the excess accumulated before its own week, so the first point
// on or after start is exactly zero. Total includes every week. Weeks without
// a baseline produce a nil marker and leave the sum unchanged.
func Accumulate(observed []model.Point, proj baseline.Projector, start time.Time) Cumulative {
	var c Cumulative
	for _, o := range observed {
		if o.Date.Before(start) {
			continue
		}
		d, ok := diff(o, proj)
		if !ok {
			c.Points = append(c.Points, Point{Date: o.Date})
			continue
		}
		c.Points = append(c.Points, Point{Date: o.Date, Value: some(c.Total)})
		c.Total += d / WeeksPerYear
	}
	return c
}

// Sum returns the weekly excess accumulated over [from, to] and how many weeks contributed.
func Sum(observed []model.Point, proj baseline.Projector, from, to time.Time) (float64, int) {
	var total float64
	var n int
	for _, o := range observed {
		if !o.InRange(from, to) {
			continue
		}
		d, ok := diff(o, proj)
		if !ok {
			continue
		}
		total += d / WeeksPerYear
		n++
	}
	return total, n
}
