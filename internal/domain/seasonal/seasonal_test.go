package seasonal_test

import (
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/excess/internal/domain/baseline"
	"github.com/okian/excess/internal/domain/calendar"
	"github.com/okian/excess/internal/domain/model"
	"github.com/okian/excess/internal/domain/seasonal"
)

func weekly(fromYear, toYear int, f func(calendar.Week) float64) []model.Point {
	var out []model.Point
	for year := fromYear; year <= toYear; year++ {
		for week := 1; week <= calendar.WeeksInYear(year); week++ {
			iso := calendar.Week{Year: year, Week: week}
			out = append(out, model.Point{Date: iso.Date(), ISO: iso, Value: f(iso), Countries: 1})
		}
	}
	return out
}

func flat(calendar.Week) float64 { return 100 }

func wave(iso calendar.Week) float64 {
	return 100 * (1 + 0.2*math.Cos(2*math.Pi*float64(iso.Week-1)/52))
}

func TestLookup(t *testing.T) {
	Convey("Given deviations without week 53", t, func() {
		d := seasonal.Deviations{"W01": 5, "W52": -2}

		So(d.Lookup("W01"), ShouldEqual, 5)
		So(d.Lookup("W53"), ShouldEqual, -2)
		So(d.Lookup("W10"), ShouldEqual, 0)
	})

	Convey("Given deviations without weeks 52 and 53", t, func() {
		d := seasonal.Deviations{"W01": 5}
		So(d.Lookup("W53"), ShouldEqual, 0)
	})

	Convey("Given deviations with week 53", t, func() {
		d := seasonal.Deviations{"W52": -2, "W53": 7}
		So(d.Lookup("W53"), ShouldEqual, 7)
	})
}

func TestMeans(t *testing.T) {
	Convey("Given a window with a single week 53", t, func() {
		means := seasonal.Means(weekly(2015, 2019, flat), model.YearWindow(2015, 2019))

		Convey("Then week 53 has no seasonal mean", func() {
			_, ok := means["W53"]
			So(ok, ShouldBeFalse)
			So(means["W10"], ShouldEqual, 100)
		})
	})

	Convey("Given a window with two weeks 53", t, func() {
		means := seasonal.Means(weekly(2009, 2016, flat), model.YearWindow(2009, 2016))

		Convey("Then week 53 gets its own mean", func() {
			v, ok := means["W53"]
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 100)
		})
	})
}

func TestFit(t *testing.T) {
	Convey("Given a flat series", t, func() {
		points := weekly(2015, 2019, flat)
		b, err := seasonal.Fit(points, model.YearWindow(2015, 2019))

		Convey("Then deviations vanish and the baseline is the level", func() {
			So(err, ShouldBeNil)
			for _, v := range b.Deviations {
				So(v, ShouldAlmostEqual, 0, 1e-9)
			}
			v, ok := b.Project(calendar.Week{Year: 2023, Week: 53})
			So(ok, ShouldBeTrue)
			So(v, ShouldAlmostEqual, 100, 1e-6)
		})
	})

	Convey("Given a series with a yearly wave", t, func() {
		window := model.YearWindow(2010, 2019)
		points := weekly(2010, 2019, wave)
		b, err := seasonal.Fit(points, window)
		So(err, ShouldBeNil)

		Convey("Then winter weeks sit above the trend and summer weeks below", func() {
			So(b.Deviations.Lookup("W01"), ShouldBeGreaterThan, 10)
			So(b.Deviations.Lookup("W27"), ShouldBeLessThan, -10)
		})

		Convey("Then the adjusted baseline tracks the wave", func() {
			iso := calendar.Week{Year: 2018, Week: 1}
			v, ok := b.Projector()(iso)
			So(ok, ShouldBeTrue)
			So(math.Abs(v-wave(iso)), ShouldBeLessThan, 5)
		})

		Convey("Then Apply is trend plus deviation", func() {
			iso := calendar.Week{Year: 2022, Week: 30}
			trend, ok := b.Model.Project(iso)
			So(ok, ShouldBeTrue)
			v, ok := seasonal.Apply(&b.Model, b.Deviations, iso)
			So(ok, ShouldBeTrue)
			So(v, ShouldAlmostEqual, trend+b.Deviations.Lookup("W30"), 1e-12)
		})
	})

	Convey("Given an empty window", t, func() {
		_, err := seasonal.Fit(nil, model.YearWindow(2015, 2019))

		Convey("Then no baseline is produced", func() {
			So(errors.Is(err, baseline.ErrInsufficientData), ShouldBeTrue)
		})
	})

	Convey("Given no baseline", t, func() {
		var b *seasonal.Baseline
		_, ok := b.Project(calendar.Week{Year: 2020, Week: 1})
		So(ok, ShouldBeFalse)
	})
}
