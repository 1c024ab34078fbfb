package model

import "errors"

var (
	// ErrNotFound is returned when a country, window or baseline is unknown.
	ErrNotFound = errors.New("not found")
	// ErrNoBaseline is returned when no candidate window produced a model.
	ErrNoBaseline = errors.New("no baseline available")
	// ErrInvalidWindow is returned for malformed window expressions.
	ErrInvalidWindow = errors.New("invalid window")
	// ErrInvalidArgument is returned for query parameters outside their domain.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotReady is returned before the first analysis has completed.
	ErrNotReady = errors.New("analysis not ready")
)
