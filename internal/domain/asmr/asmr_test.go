package asmr_test

import (
	"errors"
	"math"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/excess/internal/domain/asmr"
	"github.com/okian/excess/internal/domain/model"
)

func record(rates model.AgeBandRates) model.Record {
	return model.Record{CountryCode: "SWE", Sex: "b", Year: 2019, Week: 10, Rates: rates}
}

func TestCompute(t *testing.T) {
	Convey("Given the ESP2013 weights", t, func() {
		Convey("Then they sum to one", func() {
			So(asmr.ESP2013.Sum(), ShouldAlmostEqual, 1.0, 1e-12)
		})
	})

	Convey("Given a row with all age bands", t, func() {
		rates := model.AgeBandRates{
			R0_14:  model.Rate(0.0001),
			R15_64: model.Rate(0.001),
			R65_74: model.Rate(0.01),
			R75_84: model.Rate(0.03),
			R85p:   model.Rate(0.1),
		}

		Convey("When the ASMR is computed", func() {
			v := asmr.Compute(rates)

			Convey("Then it is the weighted sum per 100k", func() {
				So(v, ShouldAlmostEqual, 784.96, 1e-9)
			})
		})
	})

	Convey("Given a typical high-mortality week", t, func() {
		rates := model.AgeBandRates{
			R0_14:  model.Rate(0.0001),
			R15_64: model.Rate(0.0008),
			R65_74: model.Rate(0.02),
			R75_84: model.Rate(0.06),
			R85p:   model.Rate(0.15),
		}
		So(asmr.Compute(rates), ShouldAlmostEqual, 1269.88, 1e-9)
	})

	Convey("Given a row with missing bands", t, func() {
		rates := model.AgeBandRates{R85p: model.Rate(0.1)}

		Convey("Then missing bands contribute zero", func() {
			So(asmr.Compute(rates), ShouldAlmostEqual, 440, 1e-9)
		})
	})
}

func TestNewObservation(t *testing.T) {
	Convey("Given a valid record", t, func() {
		obs, err := asmr.NewObservation(record(model.AgeBandRates{R85p: model.Rate(0.1)}))

		Convey("Then it carries its ISO Monday and rate", func() {
			So(err, ShouldBeNil)
			So(obs.Sex, ShouldEqual, model.SexBoth)
			So(obs.Date, ShouldEqual, time.Date(2019, time.March, 4, 0, 0, 0, 0, time.UTC))
			So(obs.ASMR100k, ShouldAlmostEqual, 440, 1e-9)
		})
	})

	Convey("Given records that cannot be standardized", t, func() {
		Convey("When every band is missing", func() {
			_, err := asmr.NewObservation(record(model.AgeBandRates{}))
			So(errors.Is(err, asmr.ErrNonPositiveRate), ShouldBeTrue)
		})

		Convey("When the rate is negative", func() {
			_, err := asmr.NewObservation(record(model.AgeBandRates{R85p: model.Rate(-0.1)}))
			So(errors.Is(err, asmr.ErrNonPositiveRate), ShouldBeTrue)
		})

		Convey("When the rate is infinite", func() {
			_, err := asmr.NewObservation(record(model.AgeBandRates{R85p: model.Rate(math.Inf(1))}))
			So(errors.Is(err, asmr.ErrNonPositiveRate), ShouldBeTrue)
		})

		Convey("When the week does not exist", func() {
			r := record(model.AgeBandRates{R85p: model.Rate(0.1)})
			r.Year, r.Week = 2021, 53
			_, err := asmr.NewObservation(r)
			So(errors.Is(err, asmr.ErrInvalidWeek), ShouldBeTrue)
		})

		Convey("When the sex code is unknown", func() {
			r := record(model.AgeBandRates{R85p: model.Rate(0.1)})
			r.Sex = "x"
			_, err := asmr.NewObservation(r)
			So(errors.Is(err, asmr.ErrInvalidSex), ShouldBeTrue)
		})
	})
}

func TestStandardize(t *testing.T) {
	Convey("Given a mix of valid and invalid records", t, func() {
		good := record(model.AgeBandRates{R85p: model.Rate(0.1)})
		empty := record(model.AgeBandRates{})
		badWeek := good
		badWeek.Week = 60

		obs, rejected := asmr.Standardize([]model.Record{good, empty, badWeek, good})

		Convey("Then valid ones are kept and the rest are tallied", func() {
			So(len(obs), ShouldEqual, 2)
			So(rejected["non_positive_rate"], ShouldEqual, 1)
			So(rejected["invalid_week"], ShouldEqual, 1)
			So(rejected.Total(), ShouldEqual, 2)
		})
	})
}
