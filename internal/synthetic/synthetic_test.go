package synthetic_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/excess/internal/adapters/source"
	"github.com/okian/excess/internal/domain/asmr"
	"github.com/okian/excess/internal/synthetic"
	"github.com/okian/excess/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func small() synthetic.Config {
	cfg := synthetic.DefaultConfig()
	cfg.Countries = []synthetic.Country{
		{Code: "SWE", FromYear: 2019, ToYear: 2020, LastWeek: 10, Scale: 1},
		{Code: "NOR", FromYear: 2020, ToYear: 2020},
	}
	return cfg
}

func TestGenerate(t *testing.T) {
	Convey("Given a small configuration", t, func() {
		records := synthetic.Generate(small())

		Convey("Then every ISO week up to the last one is produced", func() {
			// 2019 has 52 weeks, 2020 has 53.
			So(len(records), ShouldEqual, 52+10+53)
			So(records[0].Year, ShouldEqual, 2019)
			So(records[0].Week, ShouldEqual, 1)
		})

		Convey("Then every record standardizes", func() {
			obs, rejected := asmr.Standardize(records)
			So(rejected.Total(), ShouldEqual, 0)
			So(len(obs), ShouldEqual, len(records))
		})

		Convey("Then generation is deterministic", func() {
			So(synthetic.Generate(small()), ShouldResemble, records)
		})
	})

	Convey("Given a shock year", t, func() {
		cfg := small()
		cfg.Noise = 0
		cfg.Trend = 0
		records := synthetic.Generate(cfg)
		before := asmr.Compute(records[9].Rates)  // SWE 2019-W10
		during := asmr.Compute(records[61].Rates) // SWE 2020-W10

		Convey("Then rates are multiplied by the shock", func() {
			So(during/before, ShouldAlmostEqual, cfg.Shock, 1e-9)
		})
	})
}

func TestWriteCSV(t *testing.T) {
	Convey("Given generated records written as CSV", t, func() {
		records := synthetic.Generate(small())
		var buf bytes.Buffer
		So(synthetic.WriteCSV(&buf, records), ShouldBeNil)

		Convey("Then the source parser reads them back", func() {
			parsed, stats, err := source.Parse(&buf)
			So(err, ShouldBeNil)
			So(stats.Records, ShouldEqual, len(records))
			So(stats.Malformed, ShouldEqual, 0)
			So(parsed, ShouldResemble, records)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given an output path in a fresh directory", t, func() {
		cfg := small()
		cfg.Output = filepath.Join(t.TempDir(), "data", "HMD.csv")

		err := synthetic.Run(context.Background(), cfg)

		Convey("Then the file is written", func() {
			So(err, ShouldBeNil)
			info, statErr := os.Stat(cfg.Output)
			So(statErr, ShouldBeNil)
			So(info.Size(), ShouldBeGreaterThan, 0)
		})
	})
}

func TestLoader(t *testing.T) {
	Convey("Given a loader", t, func() {
		l := synthetic.NewLoader(small())

		Convey("Then it returns the generated records", func() {
			records, err := l.Load(context.Background())
			So(err, ShouldBeNil)
			So(len(records), ShouldEqual, len(l.Records))
		})

		Convey("Then a configured error is returned", func() {
			l.Err = errors.New("boom")
			_, err := l.Load(context.Background())
			So(err, ShouldEqual, l.Err)
		})
	})
}
