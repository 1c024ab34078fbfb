// Package calendar converts between ISO-8601 (year, week) pairs and UTC dates.
package calendar

import (
	"fmt"
	"time"
)

const (
	// MinWeek is the first ISO week of a year.
	MinWeek = 1
	// MaxWeek is the last ISO week a long year can have.
	MaxWeek = 53
)

// Week identifies an ISO-8601 week.
type Week struct {
	Year int
	Week int
}

// Index returns the monotonically increasing numeric index year*100 + week.
func (w Week) Index() float64 {
	return float64(w.Year*100 + w.Week)
}

// Key returns the seasonal key of the week, e.g. "W07".
func (w Week) Key() string {
	return Key(w.Week)
}

// Date returns the Monday that starts the week.
func (w Week) Date() time.Time {
	return WeekToDate(w.Year, w.Week)
}

// Valid reports whether the week exists in its ISO year.
func (w Week) Valid() bool {
	return w.Week >= MinWeek && w.Week <= WeeksInYear(w.Year)
}

func (w Week) String() string {
	return fmt.Sprintf("%04d-%s", w.Year, w.Key())
}

// Key formats a week number as a two-digit seasonal key.
func Key(week int) string {
	return fmt.Sprintf("W%02d", week)
}

// WeekToDate returns the Monday of the given ISO week at UTC midnight.
// Week 1 is the week containing January 4th.
func WeekToDate(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	firstMonday := jan4.AddDate(0, 0, 1-weekday)
	return firstMonday.AddDate(0, 0, (week-1)*7)
}

// ISOWeekOf returns the ISO week containing t, evaluated in UTC.
func ISOWeekOf(t time.Time) Week {
	year, week := t.UTC().ISOWeek()
	return Week{Year: year, Week: week}
}

// WeekKey returns the seasonal key of the ISO week containing t.
func WeekKey(t time.Time) string {
	return ISOWeekOf(t).Key()
}

// WeeksInYear returns 52 or 53. December 28th always falls in the last ISO week.
func WeeksInYear(year int) int {
	_, week := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return week
}

// Day truncates t to UTC midnight.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Date builds a UTC midnight date.
func Date(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}
