package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/excess/internal/domain/calendar"
	"github.com/okian/excess/internal/domain/model"
)

func TestWindow(t *testing.T) {
	convey.Convey("Given a year window expression", t, func() {
		convey.Convey("When it is well formed", func() {
			w, err := model.ParseWindow("2015-2019")

			convey.Convey("Then it spans whole calendar years", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w.Start, convey.ShouldEqual, calendar.Date(2015, time.January, 1))
				convey.So(w.End, convey.ShouldEqual, calendar.Date(2019, time.December, 31))
				convey.So(w.Label(), convey.ShouldEqual, "2015-2019")
				convey.So(w.Years(), convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When it is malformed", func() {
			for _, s := range []string{"", "2015", "abcd-2019", "2019-2015", "2015-x"} {
				_, err := model.ParseWindow(s)
				convey.So(errors.Is(err, model.ErrInvalidWindow), convey.ShouldBeTrue)
			}
		})
	})

	convey.Convey("Given two windows", t, func() {
		a := model.YearWindow(2015, 2019)
		b := model.YearWindow(2019, 2022)
		c := model.YearWindow(2020, 2022)

		convey.So(a.Overlaps(b), convey.ShouldBeTrue)
		convey.So(a.Overlaps(c), convey.ShouldBeFalse)
		convey.So(a.Contains(calendar.Date(2019, time.December, 31)), convey.ShouldBeTrue)
		convey.So(a.Contains(calendar.Date(2020, time.January, 1)), convey.ShouldBeFalse)
		convey.So(a.Key(), convey.ShouldEqual, model.YearWindow(2015, 2019).Key())
		convey.So(a.Key(), convey.ShouldNotEqual, b.Key())
	})
}

func TestSeries(t *testing.T) {
	convey.Convey("Given a series with two rows", t, func() {
		first := calendar.WeekToDate(2019, 1)
		last := calendar.WeekToDate(2019, 2)
		s := model.Series{CountryCode: "SWE", Sex: model.SexBoth, Rows: []model.Observation{
			{Date: first, ISO: calendar.Week{Year: 2019, Week: 1}, ASMR100k: 100},
			{Date: last, ISO: calendar.Week{Year: 2019, Week: 2}, ASMR100k: 110},
		}}

		convey.Convey("Then its span and points reflect the rows", func() {
			earliest, latest, ok := s.Span()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(earliest, convey.ShouldEqual, first)
			convey.So(latest, convey.ShouldEqual, last)

			pts := s.Points()
			convey.So(len(pts), convey.ShouldEqual, 2)
			convey.So(pts[1].Value, convey.ShouldEqual, 110)
			convey.So(pts[1].Countries, convey.ShouldEqual, 1)
		})

		convey.Convey("Then an empty series has no span", func() {
			_, _, ok := model.Series{}.Span()
			convey.So(ok, convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given an aggregate point", t, func() {
		p := model.Point{Value: 300, Countries: 3}
		convey.So(p.Mean(), convey.ShouldEqual, 100)
		convey.So(model.Point{}.Mean(), convey.ShouldEqual, 0)
	})
}

func TestLookups(t *testing.T) {
	convey.Convey("Given country codes and sex codes", t, func() {
		convey.So(model.CountryName("GBRTENW"), convey.ShouldEqual, "England & Wales")
		convey.So(model.CountryName("XYZ"), convey.ShouldEqual, "XYZ")

		sex, ok := model.ParseSex("b")
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(sex, convey.ShouldEqual, model.SexBoth)
		_, ok = model.ParseSex("x")
		convey.So(ok, convey.ShouldBeFalse)
	})
}
