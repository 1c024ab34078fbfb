package excess

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/excess/internal/domain/baseline"
	"github.com/okian/excess/internal/domain/model"
)

// RMSE is the root mean squared error over index-aligned pairs where both
// values are finite. It is +Inf when no pair qualifies.
func RMSE(observed, predicted []float64) float64 {
	var sum float64
	var n int
	for i := range min(len(observed), len(predicted)) {
		o, p := observed[i], predicted[i]
		if !finite(o) || !finite(p) {
			continue
		}
		sum += (o - p) * (o - p)
		n++
	}
	if n == 0 {
		return math.Inf(1)
	}
	return math.Sqrt(sum / float64(n))
}

// Pairs collects observed and projected values over [from, to] where both exist.
func Pairs(observed []model.Point, proj baseline.Projector, from, to time.Time) (obs, pred []float64) {
	for _, o := range observed {
		if !o.InRange(from, to) || !finite(o.Value) {
			continue
		}
		b, ok := proj(o.ISO)
		if !ok || !finite(b) {
			continue
		}
		obs = append(obs, o.Value)
		pred = append(pred, b)
	}
	return obs, pred
}

// Metrics describes baseline accuracy over a period.
type Metrics struct {
	RMSE         float64
	RelativeRMSE float64
	MeanObserved float64
	Pairs        int
}

// PeriodMetrics computes RMSE and RMSE relative to the mean observation, in
// percent, over [from, to]. ok is false when no pair is available.
func PeriodMetrics(observed []model.Point, proj baseline.Projector, from, to time.Time) (Metrics, bool) {
	obs, pred := Pairs(observed, proj, from, to)
	if len(obs) == 0 {
		return Metrics{}, false
	}
	m := Metrics{
		RMSE:         RMSE(obs, pred),
		MeanObserved: stat.Mean(obs, nil),
		Pairs:        len(obs),
	}
	if m.MeanObserved > 0 {
		m.RelativeRMSE = m.RMSE / m.MeanObserved * 100
	}
	return m, true
}
