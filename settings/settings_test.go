package settings

import (
	"testing"

	"github.com/lumen-cli/lumen/filesystem"
	"github.com/lumen-cli/lumen/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
	viper.Set(key.PlaybackMode, "auto")
	viper.Set(key.PlaybackQuality, "medium")
	viper.Set(key.PlaybackScale, "source")
	viper.Set(key.PlaybackSubtitlePolicy, "soft")
}

func TestSettings(t *testing.T) {
	Convey("Given playback settings", t, func() {
		Convey("Load without a saved file returns configured defaults", func() {
			p := Load()
			So(p.Mode, ShouldEqual, ModeAuto)
			So(p.Quality, ShouldEqual, "medium")
			So(p.Scale, ShouldEqual, "source")
			So(p.SubtitlePolicy, ShouldEqual, SubtitlesSoft)
		})

		Convey("When saving preferences", func() {
			err := Save(Playback{Mode: ModeTranscode, Quality: "low", Scale: "720p", SubtitlePolicy: SubtitlesBurn})
			So(err, ShouldBeNil)

			Convey("Then Load returns them", func() {
				p := Load()
				So(p.Mode, ShouldEqual, ModeTranscode)
				So(p.Quality, ShouldEqual, "low")
				So(p.Scale, ShouldEqual, "720p")
				So(p.SubtitlePolicy, ShouldEqual, SubtitlesBurn)
			})
		})

		Convey("Unknown enum values fall back to defaults on save", func() {
			err := Save(Playback{Mode: "turbo", Quality: "4k", Scale: "720p", SubtitlePolicy: SubtitlesSoft})
			So(err, ShouldBeNil)

			p := Load()
			So(p.Mode, ShouldEqual, ModeAuto)
			So(p.Quality, ShouldEqual, "medium")
			So(p.Scale, ShouldEqual, "720p")
		})
	})
}
