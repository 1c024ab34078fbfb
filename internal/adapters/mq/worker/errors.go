package worker

import "errors"

var (
	// ErrNotStarted is returned when evaluating on a pool that was never started.
	ErrNotStarted = errors.New("worker pool not started")
	// ErrStopped is returned when workers fail to stop in time.
	ErrStopped = errors.New("worker stopped")
)
