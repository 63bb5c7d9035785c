package network

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGradeFor(t *testing.T) {
	Convey("GradeFor", t, func() {
		Convey("Should grade below 3 Mbit/s as low", func() {
			So(GradeFor(0), ShouldEqual, GradeLow)
			So(GradeFor(2.9), ShouldEqual, GradeLow)
		})

		Convey("Should grade below 10 Mbit/s as medium", func() {
			So(GradeFor(3), ShouldEqual, GradeMedium)
			So(GradeFor(9.9), ShouldEqual, GradeMedium)
		})

		Convey("Should grade everything else as high", func() {
			So(GradeFor(10), ShouldEqual, GradeHigh)
			So(GradeFor(250), ShouldEqual, GradeHigh)
		})
	})
}

func TestMeter(t *testing.T) {
	Convey("Meter", t, func() {
		m := NewMeter(nil)

		Convey("Should fall back to the configured default without samples", func() {
			// No viper setup here, so the default default (zero) grades low.
			So(m.DownlinkMbps(), ShouldEqual, 0)
		})

		Convey("Should ignore samples below the minimum size", func() {
			m.record(128, 10*time.Millisecond)
			So(m.hasValue, ShouldBeFalse)
		})

		Convey("Should compute Mbit/s from a usable sample", func() {
			// 1 MiB over one second is ~8.39 Mbit/s.
			m.record(1<<20, time.Second)
			So(m.hasValue, ShouldBeTrue)
			So(m.DownlinkMbps(), ShouldAlmostEqual, 8.388608, 0.001)
			So(m.CurrentGrade(), ShouldEqual, GradeMedium)
		})
	})
}
