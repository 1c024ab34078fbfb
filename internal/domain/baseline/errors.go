package baseline

import "errors"

var (
	// ErrInsufficientData is returned when a window holds fewer than MinPoints usable points.
	ErrInsufficientData = errors.New("insufficient data for baseline")
	// ErrDegenerate is returned when the regression has no unique solution.
	ErrDegenerate = errors.New("degenerate regression")
)
