package seasonal

import (
	"github.com/okian/excess/internal/domain/baseline"
	"github.com/okian/excess/internal/domain/calendar"
	"github.com/okian/excess/internal/domain/model"
)

// Baseline is a trend with its seasonal adjustment. It is not modified after Fit.
type Baseline struct {
	Model      baseline.Model
	Deviations Deviations
}

// Fit fits the trend on w and derives the deviations from the same points.
func Fit(points []model.Point, w model.Window) (Baseline, error) {
	m, err := baseline.Fit(points, w)
	if err != nil {
		return Baseline{}, err
	}
	return Baseline{Model: m, Deviations: Compute(points, w, &m)}, nil
}

// Window returns the fitting window.
func (b *Baseline) Window() model.Window {
	return b.Model.Window
}

// Project returns the seasonally adjusted baseline for an ISO week.
func (b *Baseline) Project(iso calendar.Week) (float64, bool) {
	if b == nil {
		return 0, false
	}
	return Apply(&b.Model, b.Deviations, iso)
}

// Projector adapts the baseline to the baseline.Projector signature.
func (b *Baseline) Projector() baseline.Projector {
	return b.Project
}
