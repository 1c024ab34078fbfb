package baseline

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/okian/excess/internal/domain/model"
)

// Summary reports goodness of fit on the log scale.
type Summary struct {
	StdErrIntercept  float64
	StdErrSlope      float64
	ResidualVariance float64
	RSquared         float64
}

// Summarize computes coefficient standard errors as sqrt(diag(s^2 (X'X)^-1)),
// using the same sample Fit used for m.
func Summarize(points []model.Point, m Model) (Summary, error) {
	s := collect(points, m.Window)
	n := len(s.xs)
	if n <= 2 {
		return Summary{}, fmt.Errorf("%w: %d points in %s", ErrInsufficientData, n, m.Window.Label())
	}

	X := mat.NewDense(n, 2, nil)
	for i, x := range s.xs {
		X.Set(i, 0, 1)
		X.Set(i, 1, x)
	}

	var rss float64
	for i, x := range s.xs {
		r := s.ys[i] - (m.Intercept + m.Slope*x)
		rss += r * r
	}
	sigma2 := rss / float64(n-2)

	cov, err := unscaledCovariance(X)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		StdErrIntercept:  math.Sqrt(sigma2 * cov.At(0, 0)),
		StdErrSlope:      math.Sqrt(sigma2 * cov.At(1, 1)),
		ResidualVariance: sigma2,
		RSquared:         stat.RSquared(s.xs, s.ys, nil, m.Intercept, m.Slope),
	}, nil
}

// unscaledCovariance returns (X'X)^-1, falling back to the SVD pseudo-inverse
// when X'X cannot be inverted.
func unscaledCovariance(X *mat.Dense) (*mat.Dense, error) {
	var xtx mat.Dense
	xtx.Mul(X.T(), X)

	var inv mat.Dense
	if err := inv.Inverse(&xtx); err == nil {
		return &inv, nil
	}

	var svd mat.SVD
	if ok := svd.Factorize(X, mat.SVDThinV); !ok {
		return nil, fmt.Errorf("%w: svd factorization failed", ErrDegenerate)
	}
	rank := svd.Rank(1e-12)
	values := svd.Values(nil)
	var v mat.Dense
	svd.VTo(&v)

	_, c := X.Dims()
	pinv := mat.NewDense(c, c, nil)
	for i := 0; i < c; i++ {
		for j := 0; j < c; j++ {
			var sum float64
			for k := 0; k < rank; k++ {
				sum += v.At(i, k) * v.At(j, k) / (values[k] * values[k])
			}
			pinv.Set(i, j, sum)
		}
	}
	return pinv, nil
}
