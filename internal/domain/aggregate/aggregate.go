// Package aggregate groups observations by country, selects a common data
// cutoff and sums the retained countries into a single weekly series.
package aggregate

import (
	"math"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/okian/excess/internal/domain/calendar"
	"github.com/okian/excess/internal/domain/model"
)

// Countries maps a country code to its selected series.
type Countries map[string]model.Series

// Codes returns the country codes in ascending order.
func (c Countries) Codes() []string {
	codes := lo.Keys(map[string]model.Series(c))
	slices.Sort(codes)
	return codes
}

type groupKey struct {
	country string
	sex     model.Sex
}

// GroupByCountry keeps one series per country: the first-seen sex group,
// replaced by the both-sexes group when one exists. Rows are date-ordered.
func GroupByCountry(obs []model.Observation) Countries {
	groups := make(map[groupKey][]model.Observation)
	var order []groupKey
	for _, o := range obs {
		k := groupKey{country: o.CountryCode, sex: o.Sex}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], o)
	}

	out := make(Countries)
	for _, k := range order {
		existing, ok := out[k.country]
		if ok && (k.sex != model.SexBoth || existing.Sex == model.SexBoth) {
			continue
		}
		rows := groups[k]
		slices.SortStableFunc(rows, func(a, b model.Observation) int {
			return a.Date.Compare(b.Date)
		})
		out[k.country] = model.Series{CountryCode: k.country, Sex: k.sex, Rows: rows}
	}
	return out
}

// Cutoff is the outcome of the common end-date search.
type Cutoff struct {
	Date     time.Time
	Eligible int
	Covered  int
	Fallback bool
}

// FindOptimalEndDate returns the latest date that at least threshold of the
// countries starting on or before referenceStart still cover. When no country
// qualifies, fallback is returned.
func FindOptimalEndDate(countries Countries, referenceStart time.Time, threshold float64, fallback time.Time) Cutoff {
	var latest []time.Time
	for _, code := range countries.Codes() {
		earliest, last, ok := countries[code].Span()
		if !ok || earliest.After(referenceStart) {
			continue
		}
		latest = append(latest, last)
	}
	if len(latest) == 0 {
		return Cutoff{Date: fallback, Fallback: true}
	}
	slices.SortFunc(latest, func(a, b time.Time) int { return a.Compare(b) })

	target := int(math.Floor(float64(len(latest)) * threshold))
	for i := len(latest) - 1; i >= 0; i-- {
		candidate := latest[i]
		covered := lo.CountBy(latest, func(t time.Time) bool { return !t.Before(candidate) })
		if covered >= target {
			return Cutoff{Date: candidate, Eligible: len(latest), Covered: covered}
		}
	}
	last := latest[len(latest)-1]
	return Cutoff{Date: last, Eligible: len(latest), Covered: 1, Fallback: true}
}

// Filter keeps countries whose data spans [start, end] and truncates their rows to it.
func Filter(countries Countries, start, end time.Time) Countries {
	out := make(Countries)
	for code, s := range countries {
		earliest, latest, ok := s.Span()
		if !ok || earliest.After(start) || latest.Before(end) {
			continue
		}
		rows := lo.Filter(s.Rows, func(o model.Observation, _ int) bool {
			return !o.Date.Before(start) && !o.Date.After(end)
		})
		if len(rows) == 0 {
			continue
		}
		out[code] = model.Series{CountryCode: code, Sex: s.Sex, Rows: rows}
	}
	return out
}

// Aggregate sums the ASMR of all countries per date. Each point records how
// many countries contributed. The ISO week is derived from the date.
func Aggregate(countries Countries) []model.Point {
	byDate := make(map[time.Time]*model.Point)
	for _, code := range countries.Codes() {
		for _, o := range countries[code].Rows {
			p, ok := byDate[o.Date]
			if !ok {
				p = &model.Point{Date: o.Date, ISO: calendar.ISOWeekOf(o.Date)}
				byDate[o.Date] = p
			}
			p.Value += o.ASMR100k
			p.Countries++
		}
	}
	out := make([]model.Point, 0, len(byDate))
	for _, p := range byDate {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b model.Point) int { return a.Date.Compare(b.Date) })
	return out
}
