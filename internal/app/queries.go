package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	repository "github.com/okian/excess/internal/adapters/repository"
	"github.com/okian/excess/internal/domain/baseline"
	"github.com/okian/excess/internal/domain/calendar"
	"github.com/okian/excess/internal/domain/excess"
	"github.com/okian/excess/internal/domain/model"
	"github.com/okian/excess/internal/domain/seasonal"
	"github.com/okian/excess/internal/domain/types"
)

// Default windows compared by Divergence.
var (
	DefaultDivergenceFirst  = model.YearWindow(2015, 2019)
	DefaultDivergenceSecond = model.YearWindow(2010, 2019)
)

const (
	defaultDivergenceLimit = 10
	optimalAlias           = "optimal"
)

// Report returns the summary of the latest analysis.
func (s *Service) Report(_ context.Context) (types.Report, error) {
	r, err := s.snapshot()
	if err != nil {
		return types.Report{}, err
	}
	rep := r.report
	rep.Rejected = maps.Clone(rep.Rejected)
	return rep, nil
}

// Countries lists the kept countries in code order.
func (s *Service) Countries(_ context.Context) ([]types.Country, error) {
	r, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	codes := r.countries.Codes()
	out := make([]types.Country, 0, len(codes))
	for _, code := range codes {
		series := r.countries[code]
		from, to, _ := series.Span()
		out = append(out, types.Country{
			Code: code,
			Name: model.CountryName(code),
			Sex:  string(series.Sex),
			From: types.Day(from),
			To:   types.Day(to),
			Rows: len(series.Rows),
		})
	}
	return out, nil
}

// Series returns the observed weekly values of a country, or of the aggregate
// when country is empty.
func (s *Service) Series(_ context.Context, country string) ([]types.SeriesPoint, error) {
	r, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	points, err := r.points(country)
	if err != nil {
		return nil, err
	}
	out := make([]types.SeriesPoint, len(points))
	for i, p := range points {
		out[i] = types.SeriesPoint{
			Date:  types.Day(p.Date),
			Year:  p.ISO.Year,
			Week:  p.ISO.Week,
			Value: p.Value,
		}
		if country == "" {
			out[i].Countries = p.Countries
			out[i].Mean = types.Float(p.Mean())
		}
	}
	return out, nil
}

// OptimalBaseline describes the window chosen by the grid search.
func (s *Service) OptimalBaseline(ctx context.Context) (types.Baseline, error) {
	return s.Baseline(ctx, optimalAlias, "")
}

// Baseline fits window on a country, or on the aggregate when country is
// empty, and returns the model with its projection over the observed dates.
// Aggregate windows computed during the analysis are served from the store.
func (s *Service) Baseline(ctx context.Context, window, country string) (types.Baseline, error) {
	r, err := s.snapshot()
	if err != nil {
		return types.Baseline{}, err
	}
	points, b, entry, err := r.baseline(ctx, window, country)
	if err != nil {
		return types.Baseline{}, err
	}

	out := types.Baseline{
		Window:     b.Window().Label(),
		Country:    country,
		Labels:     entry.Labels,
		Optimal:    entry.Optimal,
		Rank:       entry.Rank,
		Intercept:  b.Model.Intercept,
		Slope:      b.Model.Slope,
		Dispersion: b.Model.Dispersion,
		Points:     b.Model.N,
		FirstDate:  types.Day(b.Model.FirstDate),
		Deviations: maps.Clone(map[string]float64(b.Deviations)),
		Projection: values(excess.Baseline(points, b.Projector())),
	}
	if entry.Rank > 0 {
		out.RMSE = types.Float(entry.RMSE)
	}
	if sum, err := baseline.Summarize(points, b.Model); err == nil {
		out.Summary = &types.Summary{
			StdErrIntercept:  types.Float(sum.StdErrIntercept),
			StdErrSlope:      types.Float(sum.StdErrSlope),
			ResidualVariance: types.Float(sum.ResidualVariance),
			RSquared:         types.Float(sum.RSquared),
		}
	}
	return out, nil
}

// Excess returns the weekly or cumulative excess for the query. Cumulative
// series are always weekly and start at CumulativeStart unless From is set.
func (s *Service) Excess(ctx context.Context, q types.ExcessQuery) (types.Excess, error) {
	g, err := excess.ParseGranularity(q.Granularity)
	if err != nil {
		return types.Excess{}, err
	}
	r, err := s.snapshot()
	if err != nil {
		return types.Excess{}, err
	}
	points, b, _, err := r.baseline(ctx, q.Baseline, q.Country)
	if err != nil {
		return types.Excess{}, err
	}

	out := types.Excess{
		Window:      b.Window().Label(),
		Country:     q.Country,
		Granularity: string(g),
		Cumulative:  q.Cumulative,
	}
	if q.Cumulative {
		start := q.From
		if start.IsZero() {
			start = s.analysis.CumulativeStart
		}
		c := excess.Accumulate(points, b.Projector(), start)
		out.Granularity = string(excess.Week)
		out.Points = values(c.Points)
		out.Total = types.Float(c.Total)
		return out, nil
	}

	weekly := excess.Pointwise(points, b.Projector())
	if !q.From.IsZero() {
		weekly = since(weekly, q.From)
	}
	out.Points = values(excess.Resample(weekly, g))
	return out, nil
}

// Contributions ranks countries by their excess under window over [from, to].
// A zero from uses CumulativeStart and a zero to uses the common end date.
func (s *Service) Contributions(_ context.Context, window string, from, to time.Time) ([]types.Contribution, error) {
	r, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	w, err := r.window(window)
	if err != nil {
		return nil, err
	}
	from, to = s.span(r, from, to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: period ends before it starts", model.ErrInvalidArgument)
	}

	contribs := excess.Contributions(r.countries, w, from, to)
	out := make([]types.Contribution, len(contribs))
	for i, c := range contribs {
		out[i] = types.Contribution{
			Code:   c.CountryCode,
			Name:   model.CountryName(c.CountryCode),
			Excess: c.Excess,
			Weeks:  c.Weeks,
		}
	}
	return out, nil
}

// Divergence returns the n countries whose cumulative excess differs most
// between windows a and b. Empty arguments take their defaults.
func (s *Service) Divergence(_ context.Context, a, b string, from, at time.Time, n int) ([]types.Divergence, error) {
	r, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	first, second := DefaultDivergenceFirst, DefaultDivergenceSecond
	if a != "" {
		if first, err = r.window(a); err != nil {
			return nil, err
		}
	}
	if b != "" {
		if second, err = r.window(b); err != nil {
			return nil, err
		}
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", model.ErrInvalidArgument)
	}
	if n == 0 {
		n = defaultDivergenceLimit
	}
	from, at = s.span(r, from, at)

	divs := excess.Divergent(r.countries, first, second, from, at, n)
	out := make([]types.Divergence, len(divs))
	for i, d := range divs {
		out[i] = types.Divergence{
			Code:       d.CountryCode,
			Name:       model.CountryName(d.CountryCode),
			First:      d.First,
			Second:     d.Second,
			Difference: d.Difference,
		}
	}
	return out, nil
}

// PeriodRMSE scores every stored aggregate baseline over its own window and
// over each half year from the end of the pandemic period to the latest data.
func (s *Service) PeriodRMSE(ctx context.Context) ([]types.PeriodRMSE, error) {
	r, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	entries, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	last := r.aggregate[len(r.aggregate)-1].Date
	halves := HalfYears(s.analysis.Selection.PandemicEnd.Year(), last)

	out := make([]types.PeriodRMSE, 0, len(entries))
	for _, e := range entries {
		b := e.Baseline
		row := types.PeriodRMSE{Window: e.Window.Label(), Labels: e.Labels, Optimal: e.Optimal}
		periods := append([]Half{{Label: "Pre-pandemic", Window: e.Window}}, halves...)
		for _, p := range periods {
			pm := types.PeriodMetric{Label: p.Label, From: types.Day(p.Window.Start), To: types.Day(p.Window.End)}
			if m, ok := excess.PeriodMetrics(r.aggregate, b.Projector(), p.Window.Start, p.Window.End); ok {
				pm.RMSE = types.Float(m.RMSE)
				pm.RelativeRMSE = types.Float(m.RelativeRMSE)
				pm.MeanObserved = types.Float(m.MeanObserved)
				pm.Pairs = m.Pairs
			}
			row.Periods = append(row.Periods, pm)
		}
		out = append(out, row)
	}
	return out, nil
}

// Half is a labelled half-year period.
type Half struct {
	Label  string
	Window model.Window
}

// HalfYears returns the half years from January of fromYear whose first day
// is not after last, in date order.
func HalfYears(fromYear int, last time.Time) []Half {
	var out []Half
	for year := fromYear; year <= last.Year(); year++ {
		h1 := Half{
			Label:  fmt.Sprintf("%d (Jan-Jun)", year),
			Window: model.Window{Start: calendar.Date(year, time.January, 1), End: calendar.Date(year, time.June, 30)},
		}
		h2 := Half{
			Label:  fmt.Sprintf("%d (Jul-Dec)", year),
			Window: model.Window{Start: calendar.Date(year, time.July, 1), End: calendar.Date(year, time.December, 31)},
		}
		for _, h := range []Half{h1, h2} {
			if h.Window.Start.After(last) {
				break
			}
			out = append(out, h)
		}
	}
	return out
}

// span fills zero bounds with the cumulative start and the common end date.
func (s *Service) span(r *run, from, to time.Time) (time.Time, time.Time) {
	if from.IsZero() {
		from = s.analysis.CumulativeStart
	}
	if to.IsZero() {
		to = r.cutoff.Date
	}
	return from, to
}

// points returns the series of a country, or the aggregate for "".
func (r *run) points(country string) ([]model.Point, error) {
	if country == "" {
		return r.aggregate, nil
	}
	series, ok := r.countries[country]
	if !ok {
		return nil, fmt.Errorf("country %q: %w", country, model.ErrNotFound)
	}
	return series.Points(), nil
}

// window resolves "", "optimal" or "YYYY-YYYY". Windows touching the
// pandemic period have no baseline.
func (r *run) window(label string) (model.Window, error) {
	if label == "" || label == optimalAlias {
		return r.optimal.Window, nil
	}
	w, err := model.ParseWindow(label)
	if err != nil {
		return model.Window{}, err
	}
	if r.grid.Excluded(w) {
		return model.Window{}, fmt.Errorf("%w: %s overlaps the pandemic period", model.ErrNoBaseline, w.Label())
	}
	return w, nil
}

// baseline resolves the window for a country or the aggregate and fits it,
// reusing the stored aggregate fit when there is one.
func (r *run) baseline(ctx context.Context, label, country string) ([]model.Point, *seasonal.Baseline, repository.Entry, error) {
	w, err := r.window(label)
	if err != nil {
		return nil, nil, repository.Entry{}, err
	}
	points, err := r.points(country)
	if err != nil {
		return nil, nil, repository.Entry{}, err
	}
	if country == "" {
		entry, err := r.store.Get(ctx, w)
		if err == nil {
			return points, &entry.Baseline, entry, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, nil, repository.Entry{}, err
		}
	}
	b, err := seasonal.Fit(points, w)
	if err != nil {
		return nil, nil, repository.Entry{}, fmt.Errorf("%w: %s: %w", model.ErrNoBaseline, w.Label(), err)
	}
	return points, &b, repository.Entry{Window: w}, nil
}

func values(points []excess.Point) []types.Value {
	out := make([]types.Value, len(points))
	for i, p := range points {
		out[i] = types.Value{Date: types.Day(p.Date)}
		if p.Present() {
			out[i].Value = types.Float(*p.Value)
		}
	}
	return out
}

func since(points []excess.Point, from time.Time) []excess.Point {
	for i, p := range points {
		if !p.Date.Before(from) {
			return points[i:]
		}
	}
	return nil
}
