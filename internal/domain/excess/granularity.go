package excess

import (
	"fmt"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/excess/internal/domain/calendar"
)

// Granularity is a display bucket size.
type Granularity string

const (
	Week     Granularity = "week"
	Month    Granularity = "month"
	Quarter  Granularity = "quarter"
	HalfYear Granularity = "6month"
	Year     Granularity = "year"
)

// ParseGranularity accepts the bucket names above; the empty string means Week
// and "half" is read as HalfYear.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case "":
		return Week, nil
	case "half":
		return HalfYear, nil
	case Week, Month, Quarter, HalfYear, Year:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
	}
}

// bucketStart returns the first day of the bucket containing t.
func (g Granularity) bucketStart(t time.Time) time.Time {
	t = t.UTC()
	switch g {
	case Month:
		return calendar.Date(t.Year(), t.Month(), 1)
	case Quarter:
		return calendar.Date(t.Year(), time.Month((int(t.Month())-1)/3*3+1), 1)
	case HalfYear:
		return calendar.Date(t.Year(), time.Month((int(t.Month())-1)/6*6+1), 1)
	case Year:
		return calendar.Date(t.Year(), time.January, 1)
	default:
		return t
	}
}

// Resample averages the present values of each bucket. Buckets are labelled by
// their first day and returned in date order; empty buckets are dropped.
// Week granularity returns the points unchanged.
func Resample(points []Point, g Granularity) []Point {
	if g == Week || g == "" {
		return points
	}
	buckets := make(map[time.Time][]float64)
	for _, p := range points {
		if !p.Present() || !finite(*p.Value) {
			continue
		}
		k := g.bucketStart(p.Date)
		buckets[k] = append(buckets[k], *p.Value)
	}
	keys := make([]time.Time, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b time.Time) int { return a.Compare(b) })

	out := make([]Point, len(keys))
	for i, k := range keys {
		out[i] = Point{Date: k, Value: some(stat.Mean(buckets[k], nil))}
	}
	return out
}
