package calendar_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/excess/internal/domain/calendar"
)

func TestWeekToDate(t *testing.T) {
	Convey("Given known ISO week boundaries", t, func() {
		Convey("When week 1 of 2015 is converted", func() {
			d := calendar.WeekToDate(2015, 1)

			Convey("Then it starts on the Monday before January 4th", func() {
				So(d, ShouldEqual, time.Date(2014, time.December, 29, 0, 0, 0, 0, time.UTC))
			})
		})

		Convey("When week 53 of 2020 is converted", func() {
			d := calendar.WeekToDate(2020, 53)

			Convey("Then it is the last Monday of 2020", func() {
				So(d, ShouldEqual, time.Date(2020, time.December, 28, 0, 0, 0, 0, time.UTC))
			})
		})

		Convey("When week 1 of 2021 is converted", func() {
			d := calendar.WeekToDate(2021, 1)

			Convey("Then it starts on January 4th", func() {
				So(d, ShouldEqual, time.Date(2021, time.January, 4, 0, 0, 0, 0, time.UTC))
				So(d.Weekday(), ShouldEqual, time.Monday)
			})
		})
	})
}

func TestRoundTrip(t *testing.T) {
	Convey("Given every valid week between 1990 and 2030", t, func() {
		mismatches := 0
		for year := 1990; year <= 2030; year++ {
			for week := 1; week <= calendar.WeeksInYear(year); week++ {
				got := calendar.ISOWeekOf(calendar.WeekToDate(year, week))
				if got.Year != year || got.Week != week {
					mismatches++
				}
			}
		}

		Convey("Then converting to a date and back is the identity", func() {
			So(mismatches, ShouldEqual, 0)
		})
	})
}

func TestWeeksInYear(t *testing.T) {
	Convey("Given years with and without a 53rd week", t, func() {
		So(calendar.WeeksInYear(2015), ShouldEqual, 53)
		So(calendar.WeeksInYear(2020), ShouldEqual, 53)
		So(calendar.WeeksInYear(2021), ShouldEqual, 52)
		So(calendar.WeeksInYear(2019), ShouldEqual, 52)
	})
}

func TestWeekKeys(t *testing.T) {
	Convey("Given weeks and dates", t, func() {
		So(calendar.Key(7), ShouldEqual, "W07")
		So(calendar.Key(53), ShouldEqual, "W53")
		So(calendar.Week{Year: 2020, Week: 3}.Key(), ShouldEqual, "W03")
		So(calendar.WeekKey(time.Date(2021, time.January, 1, 12, 0, 0, 0, time.UTC)), ShouldEqual, "W53")
		So(calendar.Week{Year: 2020, Week: 12}.Index(), ShouldEqual, 202012)
	})

	Convey("Given week validity rules", t, func() {
		So(calendar.Week{Year: 2020, Week: 53}.Valid(), ShouldBeTrue)
		So(calendar.Week{Year: 2021, Week: 53}.Valid(), ShouldBeFalse)
		So(calendar.Week{Year: 2021, Week: 0}.Valid(), ShouldBeFalse)
	})
}
