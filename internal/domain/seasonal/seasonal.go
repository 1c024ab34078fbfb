// Package seasonal adds a per-ISO-week adjustment on top of a fitted trend.
package seasonal

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/excess/internal/domain/baseline"
	"github.com/okian/excess/internal/domain/calendar"
	"github.com/okian/excess/internal/domain/model"
)

const (
	leapWeek     = "W53"
	fallbackWeek = "W52"
	// minLeapSamples is the number of week-53 observations needed before the
	// week gets a seasonal mean of its own.
	minLeapSamples = 2
)

// Deviations maps a week key to the mean gap between the seasonal average and the trend.
type Deviations map[string]float64

// Lookup returns the deviation for key. W53 falls back to W52; other missing keys to 0.
func (d Deviations) Lookup(key string) float64 {
	if v, ok := d[key]; ok {
		return v
	}
	if key == leapWeek {
		if v, ok := d[fallbackWeek]; ok {
			return v
		}
	}
	return 0
}

func bucket(points []model.Point, w model.Window) map[string][]float64 {
	out := make(map[string][]float64)
	for _, p := range points {
		if !w.Contains(p.Date) || !usable(p.Value) {
			continue
		}
		k := p.ISO.Key()
		out[k] = append(out[k], p.Value)
	}
	return out
}

// Means returns the average value per week key inside w.
func Means(points []model.Point, w model.Window) map[string]float64 {
	means := make(map[string]float64)
	for k, vs := range bucket(points, w) {
		if k == leapWeek && len(vs) < minLeapSamples {
			continue
		}
		means[k] = stat.Mean(vs, nil)
	}
	return means
}

// Compute averages, per week key, the seasonal mean minus the trend at each in-window point.
func Compute(points []model.Point, w model.Window, m *baseline.Model) Deviations {
	means := Means(points, w)
	gaps := make(map[string][]float64)
	for _, p := range points {
		if !w.Contains(p.Date) || !usable(p.Value) {
			continue
		}
		k := p.ISO.Key()
		mean, ok := means[k]
		if !ok {
			continue
		}
		trend, ok := m.Project(p.ISO)
		if !ok {
			continue
		}
		gaps[k] = append(gaps[k], mean-trend)
	}

	out := make(Deviations, len(gaps))
	for k, vs := range gaps {
		out[k] = stat.Mean(vs, nil)
	}
	return out
}

// Apply returns trend plus the week's deviation.
func Apply(m *baseline.Model, d Deviations, iso calendar.Week) (float64, bool) {
	trend, ok := m.Project(iso)
	if !ok {
		return 0, false
	}
	v := trend + d.Lookup(iso.Key())
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func usable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
