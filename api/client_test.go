package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

// recorded captures what the server saw. Handlers run on the server's
// goroutine, so assertions on the request happen after the call returns.
type recorded struct {
	method string
	path   string
	auth   string
	query  map[string][]string
	body   []byte
}

func testClient(reply string, status int) (*Client, *recorded, *httptest.Server) {
	rec := &recorded{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.auth = r.Header.Get("Authorization")
		rec.query = r.URL.Query()
		rec.body, _ = io.ReadAll(r.Body)
		if status != http.StatusOK {
			http.Error(w, reply, status)
			return
		}
		_, _ = w.Write([]byte(reply))
	}))
	return NewWith(server.URL, server.Client(), "test-token"), rec, server
}

func TestNegotiate(t *testing.T) {
	movie := MediaItem{ID: 42, Kind: Movie, Title: "Testfilm", DurationSeconds: 3600}

	Convey("Negotiate", t, func() {
		Convey("Should map a transcode reply to a segmented descriptor", func() {
			client, rec, server := testClient(`{
				"hls_playlist_url": "/static/hls/42/1/stream.m3u8",
				"duration_seconds": 3600,
				"soft_sub_url": "/static/subtitles/movie/42/7.vtt"
			}`, http.StatusOK)
			defer server.Close()

			desc, err := client.Negotiate(context.Background(), movie, StreamRequest{
				SeekTime:       120,
				ForceTranscode: true,
				Quality:        "medium",
				Scale:          "source",
				SubtitleID:     mo.Some(7),
			})

			So(err, ShouldBeNil)
			So(desc.Kind, ShouldEqual, Segmented)
			So(desc.URL, ShouldEqual, server.URL+"/static/hls/42/1/stream.m3u8")
			So(desc.SoftSubURL, ShouldEqual, server.URL+"/static/subtitles/movie/42/7.vtt")
			So(rec.path, ShouldEqual, "/stream/42")
			So(rec.auth, ShouldEqual, "Bearer test-token")
			So(rec.query["seek_time"], ShouldResemble, []string{"120"})
			So(rec.query["force_transcode"], ShouldResemble, []string{"true"})
			So(rec.query["subtitle_id"], ShouldResemble, []string{"7"})
			So(rec.query["prefer_direct"], ShouldBeEmpty)
		})

		Convey("Should map a direct reply to a progressive descriptor", func() {
			client, rec, server := testClient(`{
				"mode": "direct",
				"direct_url": "http://cdn.example/direct/42?token=x",
				"duration_seconds": 3600
			}`, http.StatusOK)
			defer server.Close()

			desc, err := client.Negotiate(context.Background(), movie, StreamRequest{PreferDirect: true, Quality: "medium", Scale: "source"})

			So(err, ShouldBeNil)
			So(desc.Kind, ShouldEqual, Progressive)
			So(desc.URL, ShouldEqual, "http://cdn.example/direct/42?token=x")
			So(rec.query["prefer_direct"], ShouldResemble, []string{"true"})
		})

		Convey("Should surface server failures", func() {
			client, _, server := testClient(`{"detail": "Movie not found"}`, http.StatusNotFound)
			defer server.Close()

			_, err := client.Negotiate(context.Background(), movie, StreamRequest{Quality: "medium", Scale: "source"})

			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "404")
		})
	})
}

func TestHistory(t *testing.T) {
	episode := MediaItem{ID: 7, Kind: Episode, Title: "Pilot"}

	Convey("History", t, func() {
		Convey("Progress should decode a saved position", func() {
			client, rec, server := testClient(`{"position_seconds": 120, "duration_seconds": 3600}`, http.StatusOK)
			defer server.Close()

			snap, err := client.Progress(context.Background(), episode)
			So(err, ShouldBeNil)
			So(snap.PositionSeconds, ShouldEqual, 120)
			So(rec.method, ShouldEqual, "GET")
			So(rec.path, ShouldEqual, "/history/7")
			So(rec.query["item_type"], ShouldResemble, []string{"episode"})
		})

		Convey("Progress should return a zero snapshot for empty history", func() {
			client, _, server := testClient(`{}`, http.StatusOK)
			defer server.Close()

			snap, err := client.Progress(context.Background(), episode)
			So(err, ShouldBeNil)
			So(snap, ShouldResemble, ProgressSnapshot{})
		})

		Convey("SaveProgress should PUT the snapshot body", func() {
			client, rec, server := testClient(`{"status":"ok"}`, http.StatusOK)
			defer server.Close()

			err := client.SaveProgress(context.Background(), episode, ProgressSnapshot{PositionSeconds: 300, DurationSeconds: 3600})
			So(err, ShouldBeNil)
			So(rec.method, ShouldEqual, "PUT")

			var got ProgressSnapshot
			So(json.Unmarshal(rec.body, &got), ShouldBeNil)
			So(got.PositionSeconds, ShouldEqual, 300)
		})

		Convey("ClearProgress should DELETE the record", func() {
			client, rec, server := testClient(`{"status":"ok"}`, http.StatusOK)
			defer server.Close()

			So(client.ClearProgress(context.Background(), episode), ShouldBeNil)
			So(rec.method, ShouldEqual, "DELETE")
		})
	})
}

func TestSubtitles(t *testing.T) {
	movie := MediaItem{ID: 42, Kind: Movie, Title: "Testfilm"}

	Convey("Subtitles", t, func() {
		Convey("CurrentSubtitle should return None when nothing is selected", func() {
			client, _, server := testClient(`{"subtitle_id": null}`, http.StatusOK)
			defer server.Close()

			choice, err := client.CurrentSubtitle(context.Background(), movie)
			So(err, ShouldBeNil)
			So(choice.IsAbsent(), ShouldBeTrue)
		})

		Convey("CurrentSubtitle should decode a selection", func() {
			client, _, server := testClient(`{"subtitle_id": 7, "lang": "fr"}`, http.StatusOK)
			defer server.Close()

			choice, err := client.CurrentSubtitle(context.Background(), movie)
			So(err, ShouldBeNil)
			So(choice.MustGet(), ShouldResemble, SubtitleChoice{ID: 7, Lang: "fr"})
		})

		Convey("SelectSubtitle should PUT the chosen id", func() {
			client, rec, server := testClient(`{"status":"ok"}`, http.StatusOK)
			defer server.Close()

			err := client.SelectSubtitle(context.Background(), movie, mo.Some(SubtitleChoice{ID: 7, Lang: "fr"}))
			So(err, ShouldBeNil)
			So(rec.method, ShouldEqual, "PUT")
			So(rec.path, ShouldEqual, "/subtitles/42/select")

			var body map[string]*int
			So(json.Unmarshal(rec.body, &body), ShouldBeNil)
			So(*body["subtitle_id"], ShouldEqual, 7)
		})
	})
}

func TestLibrary(t *testing.T) {
	Convey("Library", t, func() {
		Convey("Movies should decode listing rows", func() {
			client, rec, server := testClient(`[{"id": 1, "title": "A", "duration_seconds": 60}]`, http.StatusOK)
			defer server.Close()

			movies, err := client.Movies(context.Background())
			So(err, ShouldBeNil)
			So(movies, ShouldHaveLength, 1)
			So(movies[0].Item().Kind, ShouldEqual, Movie)
			So(rec.path, ShouldEqual, "/library/movies")
		})

		Convey("ContinueWatching should merge movies and episodes", func() {
			client, rec, server := testClient(`{
				"movies": [{"id": 1, "title": "A", "duration_seconds": 600, "position_seconds": 60}],
				"episodes": [{"id": 2, "season": 1, "episode": 3, "title": "B", "series_title": "S", "duration_seconds": 1200, "position_seconds": 100}]
			}`, http.StatusOK)
			defer server.Close()

			entries, err := client.ContinueWatching(context.Background())
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 2)
			So(entries[0].Item.Kind, ShouldEqual, Movie)
			So(entries[1].Item.Kind, ShouldEqual, Episode)
			So(entries[1].Item.Title, ShouldContainSubstring, "S01E03")
			So(rec.path, ShouldEqual, "/history/continue/")
		})
	})
}
