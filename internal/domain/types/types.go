// Package types contains the read shapes shared by the service and the HTTP API.
package types

import (
	"math"
	"time"
)

// Float returns a pointer to v, or nil when v is not finite. JSON cannot carry NaN or Inf.
func Float(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Day formats t as YYYY-MM-DD.
func Day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

// Period is an inclusive date range.
type Period struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Report summarizes one analysis run.
type Report struct {
	RunID        string         `json:"run_id"`
	StartedAt    time.Time      `json:"started_at"`
	DurationMS   int64          `json:"duration_ms"`
	Rows         int            `json:"rows"`
	Rejected     map[string]int `json:"rejected"`
	Observations int            `json:"observations"`
	Countries    int            `json:"countries"`
	EndDate      string         `json:"end_date"`
	Fallback     bool           `json:"end_date_fallback"`
	Evaluation   Period         `json:"evaluation"`
	Optimal      string         `json:"optimal_window"`
	RMSE         *float64       `json:"rmse"`
	Candidates   int            `json:"candidates"`
	Ranking      []string       `json:"ranking"`
	Workers      int            `json:"workers"`
}

// Country describes one kept country.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Sex  string `json:"sex"`
	From string `json:"from"`
	To   string `json:"to"`
	Rows int    `json:"rows"`
}

// SeriesPoint is one observed week.
type SeriesPoint struct {
	Date      string   `json:"date"`
	Year      int      `json:"iso_year"`
	Week      int      `json:"iso_week"`
	Value     float64  `json:"value"`
	Countries int      `json:"countries,omitempty"`
	Mean      *float64 `json:"mean,omitempty"`
}

// Value is a dated value that may be missing.
type Value struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// Summary carries goodness-of-fit figures on the log scale.
type Summary struct {
	StdErrIntercept  *float64 `json:"stderr_intercept"`
	StdErrSlope      *float64 `json:"stderr_slope"`
	ResidualVariance *float64 `json:"residual_variance"`
	RSquared         *float64 `json:"r_squared"`
}

// Baseline describes a fitted window.
type Baseline struct {
	Window     string             `json:"window"`
	Country    string             `json:"country,omitempty"`
	Labels     []string           `json:"labels,omitempty"`
	Optimal    bool               `json:"optimal"`
	Rank       int                `json:"rank,omitempty"`
	RMSE       *float64           `json:"rmse,omitempty"`
	Intercept  float64            `json:"intercept"`
	Slope      float64            `json:"slope"`
	Dispersion float64            `json:"dispersion"`
	Points     int                `json:"points"`
	FirstDate  string             `json:"first_date"`
	Deviations map[string]float64 `json:"deviations"`
	Summary    *Summary           `json:"summary,omitempty"`
	Projection []Value            `json:"projection,omitempty"`
}

// ExcessQuery selects an excess series.
type ExcessQuery struct {
	// Baseline is "YYYY-YYYY", or empty / "optimal" for the selected window.
	Baseline    string
	Country     string
	From        time.Time
	Granularity string
	Cumulative  bool
}

// Excess is an observed-minus-baseline series.
type Excess struct {
	Window      string   `json:"window"`
	Country     string   `json:"country,omitempty"`
	Granularity string   `json:"granularity"`
	Cumulative  bool     `json:"cumulative"`
	Points      []Value  `json:"points"`
	// Total is the cumulative excess including the last week. Each cumulative
	// point holds the sum before its own week, so Total exceeds the last point
	// by that week's contribution.
	Total       *float64 `json:"total,omitempty"`
}

// Contribution is one country's share of excess over a period.
type Contribution struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Excess float64 `json:"excess"`
	Weeks  int     `json:"weeks"`
}

// Divergence is the gap between two baselines' cumulative excess for a country.
type Divergence struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	First      float64 `json:"first"`
	Second     float64 `json:"second"`
	Difference float64 `json:"difference"`
}

// PeriodMetric scores a baseline over one period.
type PeriodMetric struct {
	Label        string   `json:"label"`
	From         string   `json:"from"`
	To           string   `json:"to"`
	RMSE         *float64 `json:"rmse"`
	RelativeRMSE *float64 `json:"relative_rmse"`
	MeanObserved *float64 `json:"mean_observed"`
	Pairs        int      `json:"pairs"`
}

// PeriodRMSE is the accuracy table row of one baseline.
type PeriodRMSE struct {
	Window  string         `json:"window"`
	Labels  []string       `json:"labels,omitempty"`
	Optimal bool           `json:"optimal"`
	Periods []PeriodMetric `json:"periods"`
}
