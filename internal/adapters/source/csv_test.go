package source_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/excess/internal/adapters/source"
	logging "github.com/okian/excess/pkg/logger"
)

func init() {
	if err := logging.Init(); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

const sample = `# Short-term mortality fluctuations
# generated for tests

CountryCode,Year,Week,Sex,R0_14,R15_64,R65_74,R75_84,R85p,Split,SplitSex,Forecast
SWE,2019,1,b,0.0001,0.001,0.01,0.03,0.1,0,0,0
SWE,2019,2,b,,0.001,0.01,0.03,0.1,0,0,0
SWE,2019,3,b,0.0001,0.001
# trailing comment
SWE,x,4,b,0.0001,0.001,0.01,0.03,0.1,0,0,0
NOR,2019,1,m,0.0001,NA,0.01,0.03,0.1,1,1,1
`

func TestParse(t *testing.T) {
	Convey("Given an HMD-style file with comments and bad rows", t, func() {
		records, stats, err := source.Parse(strings.NewReader(sample))

		Convey("Then well formed rows are returned", func() {
			So(err, ShouldBeNil)
			So(len(records), ShouldEqual, 3)
			So(stats.Records, ShouldEqual, 3)
			So(records[0].CountryCode, ShouldEqual, "SWE")
			So(records[0].Year, ShouldEqual, 2019)
			So(records[0].Week, ShouldEqual, 1)
			So(*records[0].Rates.R85p, ShouldEqual, 0.1)
		})

		Convey("Then empty and non-numeric cells are missing", func() {
			So(records[1].Rates.R0_14, ShouldBeNil)
			So(records[2].Rates.R15_64, ShouldBeNil)
			So(records[2].Sex, ShouldEqual, "m")
		})

		Convey("Then short and malformed rows are counted", func() {
			So(stats.Skipped, ShouldEqual, 1)
			So(stats.Malformed, ShouldEqual, 1)
		})
	})

	Convey("Given a file with only comments", t, func() {
		_, _, err := source.Parse(strings.NewReader("# nothing\n\n"))
		So(errors.Is(err, source.ErrNoHeader), ShouldBeTrue)
	})

	Convey("Given a header without the week column", t, func() {
		_, _, err := source.Parse(strings.NewReader("CountryCode,Year,Sex\nSWE,2019,b\n"))
		So(errors.Is(err, source.ErrMissingColumn), ShouldBeTrue)
	})
}

func TestCSVLoader(t *testing.T) {
	ctx := context.Background()

	Convey("Given a missing path followed by a valid file", t, func() {
		dir := t.TempDir()
		good := filepath.Join(dir, "HMD.csv")
		So(os.WriteFile(good, []byte(sample), 0o600), ShouldBeNil)

		loader := source.NewCSVLoader([]string{filepath.Join(dir, "missing.csv"), good})
		records, err := loader.Load(ctx)

		Convey("Then the first readable file is used", func() {
			So(err, ShouldBeNil)
			So(len(records), ShouldEqual, 3)
		})
	})

	Convey("Given only missing paths", t, func() {
		loader := source.NewCSVLoader([]string{filepath.Join(t.TempDir(), "nope.csv")})
		_, err := loader.Load(ctx)

		Convey("Then loading fails", func() {
			So(errors.Is(err, source.ErrNoSource), ShouldBeTrue)
		})
	})

	Convey("Given a cancelled context", t, func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := source.NewCSVLoader(nil).Load(cancelled)
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}
