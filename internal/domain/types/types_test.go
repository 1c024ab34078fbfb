package types_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	types "github.com/okian/excess/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFloat(t *testing.T) {
	Convey("Given finite and non-finite values", t, func() {
		Convey("Then finite values are kept", func() {
			v := types.Float(1.5)
			So(v, ShouldNotBeNil)
			So(*v, ShouldEqual, 1.5)
		})

		Convey("Then NaN and infinities become nil", func() {
			So(types.Float(math.NaN()), ShouldBeNil)
			So(types.Float(math.Inf(1)), ShouldBeNil)
			So(types.Float(math.Inf(-1)), ShouldBeNil)
		})
	})
}

func TestDay(t *testing.T) {
	Convey("Given dates", t, func() {
		So(types.Day(time.Date(2020, time.March, 2, 0, 0, 0, 0, time.UTC)), ShouldEqual, "2020-03-02")
		So(types.Day(time.Time{}), ShouldEqual, "")
	})
}

func TestValueEncoding(t *testing.T) {
	Convey("Given a value without a baseline", t, func() {
		b, err := json.Marshal(types.Value{Date: "2020-01-06", Value: types.Float(math.Inf(1))})

		Convey("Then it is encoded as null", func() {
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, `{"date":"2020-01-06","value":null}`)
		})
	})
}
