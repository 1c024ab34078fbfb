package model

import (
	"time"

	"github.com/okian/excess/internal/domain/calendar"
)

// Series is the date-ordered observations of one country and sex.
type Series struct {
	CountryCode string
	Sex         Sex
	Rows        []Observation
}

// Span returns the first and last observation dates. ok is false for an empty series.
func (s Series) Span() (earliest, latest time.Time, ok bool) {
	if len(s.Rows) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s.Rows[0].Date, s.Rows[len(s.Rows)-1].Date, true
}

// Points converts the rows into fit-ready points.
func (s Series) Points() []Point {
	out := make([]Point, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = Point{Date: r.Date, ISO: r.ISO, Value: r.ASMR100k, Countries: 1}
	}
	return out
}

// Point is a dated value. For aggregates, Value is the sum over Countries contributors.
type Point struct {
	Date      time.Time
	ISO       calendar.Week
	Value     float64
	Countries int
}

// Mean returns the per-country average of an aggregate point.
func (p Point) Mean() float64 {
	if p.Countries == 0 {
		return 0
	}
	return p.Value / float64(p.Countries)
}

// InRange reports whether the point date lies in [from, to].
func (p Point) InRange(from, to time.Time) bool {
	return !p.Date.Before(from) && !p.Date.After(to)
}
