// Package asmr computes age-standardized mortality rates using the 2013
// European Standard Population.
package asmr

import (
	"errors"
	"fmt"
	"math"

	"github.com/okian/excess/internal/domain/calendar"
	"github.com/okian/excess/internal/domain/model"
)

const per100k = 100_000

// Weights are the population shares of the five age bands.
type Weights struct {
	R0_14  float64
	R15_64 float64
	R65_74 float64
	R75_84 float64
	R85p   float64
}

// ESP2013 weights.
var ESP2013 = Weights{
	R0_14:  0.156,
	R15_64: 0.654,
	R65_74: 0.080,
	R75_84: 0.066,
	R85p:   0.044,
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.R0_14 + w.R15_64 + w.R65_74 + w.R75_84 + w.R85p
}

// Compute returns the ESP2013 weighted rate per 100,000. Missing bands count as zero.
func Compute(r model.AgeBandRates) float64 {
	return ESP2013.Apply(r)
}

// Apply returns the weighted rate per 100,000 under w.
func (w Weights) Apply(r model.AgeBandRates) float64 {
	return per100k * (rate(r.R0_14)*w.R0_14 +
		rate(r.R15_64)*w.R15_64 +
		rate(r.R65_74)*w.R65_74 +
		rate(r.R75_84)*w.R75_84 +
		rate(r.R85p)*w.R85p)
}

func rate(v *float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return 0
	}
	return *v
}

// NewObservation validates a record and attaches its date and ASMR.
func NewObservation(r model.Record) (model.Observation, error) {
	sex, ok := model.ParseSex(r.Sex)
	if !ok {
		return model.Observation{}, fmt.Errorf("%w: %q", ErrInvalidSex, r.Sex)
	}
	iso := calendar.Week{Year: r.Year, Week: r.Week}
	if !iso.Valid() {
		return model.Observation{}, fmt.Errorf("%w: %s", ErrInvalidWeek, iso)
	}
	v := Compute(r.Rates)
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return model.Observation{}, fmt.Errorf("%w: %s %s", ErrNonPositiveRate, r.CountryCode, iso)
	}
	return model.Observation{
		CountryCode: r.CountryCode,
		Sex:         sex,
		ISO:         iso,
		Date:        iso.Date(),
		Rates:       r.Rates,
		ASMR100k:    v,
	}, nil
}

// Rejections counts discarded records per reason.
type Rejections map[string]int

// Total returns the number of rejected records.
func (r Rejections) Total() int {
	n := 0
	for _, c := range r {
		n += c
	}
	return n
}

// Standardize converts every valid record and tallies the rest by reason.
func Standardize(records []model.Record) ([]model.Observation, Rejections) {
	out := make([]model.Observation, 0, len(records))
	rejected := Rejections{}
	for _, r := range records {
		obs, err := NewObservation(r)
		if err != nil {
			rejected[Reason(err)]++
			continue
		}
		out = append(out, obs)
	}
	return out, rejected
}

// Reason maps a validation error to a short label.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidSex):
		return "invalid_sex"
	case errors.Is(err, ErrInvalidWeek):
		return "invalid_week"
	case errors.Is(err, ErrNonPositiveRate):
		return "non_positive_rate"
	default:
		return "unknown"
	}
}
