package asmr

import "errors"

var (
	ErrInvalidSex      = errors.New("invalid sex code")
	ErrInvalidWeek     = errors.New("invalid iso week")
	ErrNonPositiveRate = errors.New("asmr is not a positive finite number")
)
