package source

import "errors"

var (
	ErrNoSource      = errors.New("unable to load data from known paths")
	ErrNoHeader      = errors.New("csv has no header")
	ErrMissingColumn = errors.New("csv is missing a required column")
)
