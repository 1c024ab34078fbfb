package api

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// dateParam parses an optional YYYY-MM-DD parameter; absent yields the zero time.
func dateParam(q url.Values, key string) (time.Time, error) {
	s := q.Get(key)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrBadRequest, key)
	}
	return t, nil
}

// intParam parses an optional integer parameter; absent yields 0.
func intParam(q url.Values, key string) (int, error) {
	s := q.Get(key)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrBadRequest, key)
	}
	return n, nil
}

// boolParam parses an optional boolean parameter; absent yields false.
func boolParam(q url.Values, key string) (bool, error) {
	s := q.Get(key)
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", ErrBadRequest, key)
	}
	return b, nil
}
