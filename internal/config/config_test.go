package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/excess/internal/config"
	"github.com/okian/excess/internal/domain/selection"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.CoverageThreshold, convey.ShouldEqual, 0.8)
			convey.So(cfg.FixedBaselines, convey.ShouldResemble, []string{
				"2014-2019", "2015-2019", "2010-2019", "2016-2019", "2001-2019",
				"2011-2019", "2012-2019", "2013-2019",
			})
			convey.So(cfg.BaselineLabels["2015-2019"], convey.ShouldContain, "Our World in Data")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the selection grid matches the built-in default", func() {
			sel, err := cfg.Selection()
			convey.So(err, convey.ShouldBeNil)
			convey.So(sel, convey.ShouldResemble, selection.DefaultConfig())
		})

		convey.Convey("Then the fixed windows are the built-in defaults", func() {
			windows, err := cfg.Windows()
			convey.So(err, convey.ShouldBeNil)
			convey.So(windows, convey.ShouldResemble, selection.DefaultFixedWindows())
		})

		convey.Convey("Then date keys parse", func() {
			ref, err := cfg.Reference()
			convey.So(err, convey.ShouldBeNil)
			convey.So(ref, convey.ShouldEqual, time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC))

			windows, err := cfg.Windows()
			convey.So(err, convey.ShouldBeNil)
			convey.So(windows[0].Label(), convey.ShouldEqual, "2014-2019")
		})
	})

	convey.Convey("Given a config with a malformed fixed baseline", t, func() {
		cfg := config.New(context.Background())
		cfg.FixedBaselines = append(cfg.FixedBaselines, "2019")

		convey.Convey("Then validation rejects it", func() {
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
