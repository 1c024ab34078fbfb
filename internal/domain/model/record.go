// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/excess/internal/domain/calendar"
)

// Sex of the population a series describes.
type Sex string

const (
	SexBoth   Sex = "b"
	SexMale   Sex = "m"
	SexFemale Sex = "f"
)

// ParseSex maps the loader's sex code to a Sex.
func ParseSex(s string) (Sex, bool) {
	switch Sex(s) {
	case SexBoth, SexMale, SexFemale:
		return Sex(s), true
	default:
		return "", false
	}
}

// AgeBandRates holds weekly death rates per age band. A nil band is missing.
type AgeBandRates struct {
	R0_14  *float64
	R15_64 *float64
	R65_74 *float64
	R75_84 *float64
	R85p   *float64
}

// Record is one raw row as produced by a loader, before standardization.
type Record struct {
	CountryCode string
	Sex         string
	Year        int
	Week        int
	Rates       AgeBandRates
}

// Observation is a validated record with its date and age-standardized rate.
type Observation struct {
	CountryCode string
	Sex         Sex
	ISO         calendar.Week
	Date        time.Time
	Rates       AgeBandRates
	ASMR100k    float64
}

// Rate returns a pointer to v, for building AgeBandRates literals.
func Rate(v float64) *float64 {
	return &v
}
