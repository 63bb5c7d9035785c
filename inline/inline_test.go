package inline

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/lumen-cli/lumen/api"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWriteJson(t *testing.T) {
	Convey("writeJson", t, func() {
		Convey("Should produce a valid document for an empty library", func() {
			var buf bytes.Buffer
			err := writeJson(&buf, &Output{Query: "dune"})
			So(err, ShouldBeNil)

			var output Output
			So(json.Unmarshal(buf.Bytes(), &output), ShouldBeNil)
			So(output.Query, ShouldEqual, "dune")
			So(output.Movies, ShouldHaveLength, 0)
		})
	})
}

func TestWritePlain(t *testing.T) {
	Convey("writePlain", t, func() {
		Convey("Should print one title per line", func() {
			var buf bytes.Buffer
			err := writePlain(&buf, &Output{
				Movies: []api.MovieEntry{{ID: 1, Title: "Dune"}},
				Episodes: []api.EpisodeEntry{
					{ID: 2, Season: 1, Episode: 3, Title: "The Long Night"},
				},
			})
			So(err, ShouldBeNil)
			So(buf.String(), ShouldEqual, "Dune\nS01E03 The Long Night\n")
		})
	})
}

func TestParseSection(t *testing.T) {
	Convey("ParseSection", t, func() {
		Convey("Should accept the known sections", func() {
			for _, name := range []string{"movies", "series", "continue"} {
				section, err := ParseSection(name)
				So(err, ShouldBeNil)
				So(string(section), ShouldEqual, name)
			}
		})

		Convey("Should reject anything else", func() {
			_, err := ParseSection("music")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestMatches(t *testing.T) {
	Convey("matches", t, func() {
		So(matches("", "anything"), ShouldBeTrue)
		So(matches("dne", "Dune"), ShouldBeTrue)
		So(matches("breaking", "Dune"), ShouldBeFalse)
	})
}
