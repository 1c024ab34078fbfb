package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okian/excess/internal/domain/calendar"
)

// Window is an inclusive date range used to fit a baseline.
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowKey is a comparable identity for a Window, suitable as a map key.
type WindowKey struct {
	Start int64
	End   int64
}

// YearWindow spans January 1st of startYear to December 31st of endYear.
func YearWindow(startYear, endYear int) Window {
	return Window{
		Start: calendar.Date(startYear, time.January, 1),
		End:   calendar.Date(endYear, time.December, 31),
	}
}

// ParseWindow parses "YYYY-YYYY" into a YearWindow.
func ParseWindow(s string) (Window, error) {
	from, to, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Window{}, fmt.Errorf("%w: %q", ErrInvalidWindow, s)
	}
	startYear, err := strconv.Atoi(from)
	if err != nil {
		return Window{}, fmt.Errorf("%w: %q", ErrInvalidWindow, s)
	}
	endYear, err := strconv.Atoi(to)
	if err != nil {
		return Window{}, fmt.Errorf("%w: %q", ErrInvalidWindow, s)
	}
	if endYear < startYear {
		return Window{}, fmt.Errorf("%w: %q ends before it starts", ErrInvalidWindow, s)
	}
	return YearWindow(startYear, endYear), nil
}

// Key returns the window identity.
func (w Window) Key() WindowKey {
	return WindowKey{Start: w.Start.Unix(), End: w.End.Unix()}
}

// Label formats the window as "YYYY-YYYY".
func (w Window) Label() string {
	return fmt.Sprintf("%d-%d", w.Start.Year(), w.End.Year())
}

// Contains reports whether t lies in the inclusive range.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Overlaps reports whether the two inclusive ranges intersect.
func (w Window) Overlaps(o Window) bool {
	return !w.End.Before(o.Start) && !w.Start.After(o.End)
}

// Years returns the number of calendar years the window touches.
func (w Window) Years() int {
	return w.End.Year() - w.Start.Year() + 1
}

func (w Window) String() string {
	return fmt.Sprintf("%s..%s", w.Start.Format(time.DateOnly), w.End.Format(time.DateOnly))
}
