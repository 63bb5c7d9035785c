package session

import (
	"errors"
	"testing"
	"time"

	"github.com/lumen-cli/lumen/api"
	"github.com/lumen-cli/lumen/key"
	"github.com/lumen-cli/lumen/network"
	"github.com/lumen-cli/lumen/settings"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	viper.Set(key.SessionSeekDebounceMs, 800)
	viper.Set(key.SessionProgressIntervalSec, 15)
	viper.Set(key.SessionResumeThresholdSec, 5)
	viper.Set(key.SessionHistorySaveOnPlayback, true)
}

var testItem = api.MediaItem{ID: 1, Kind: api.Movie, Title: "Testfilm", DurationSeconds: 3600}

func testPrefs(mode settings.Mode, policy settings.SubtitlePolicy) func() settings.Playback {
	return func() settings.Playback {
		return settings.Playback{Mode: mode, Quality: "medium", Scale: "source", SubtitlePolicy: policy}
	}
}

func fixedGrade(g network.Grade) func() network.Grade {
	return func() network.Grade { return g }
}

func newController(opts ...Option) *Controller {
	base := []Option{
		WithPreferences(testPrefs(settings.ModeAuto, settings.SubtitlesSoft)),
		WithGrade(fixedGrade(network.GradeHigh)),
	}
	return New(testItem, append(base, opts...)...)
}

// playFrom walks a fresh controller through history, negotiation and stream
// start so tests can begin from a live Playing state.
func playFrom(c *Controller, offset float64) NegotiateStream {
	c.Start()
	var cmds []Command
	if offset > 0 {
		c.Handle(HistoryLoaded{Snap: api.ProgressSnapshot{PositionSeconds: int(offset), DurationSeconds: 3600}})
		cmds = c.Handle(ResumeChosen{FromStart: false})
	} else {
		cmds = c.Handle(HistoryLoaded{})
	}
	neg := cmds[0].(NegotiateStream)

	c.Handle(NegotiationDone{
		Seq:  neg.Seq,
		Desc: api.StreamDescriptor{Kind: api.Segmented, URL: "http://s/playlist.m3u8", DurationSeconds: 3600},
	})
	c.Handle(StreamStarted{})
	return neg
}

func negotiationOf(cmds []Command) (NegotiateStream, bool) {
	for _, cmd := range cmds {
		if neg, ok := cmd.(NegotiateStream); ok {
			return neg, true
		}
	}
	return NegotiateStream{}, false
}

func hasCommand[T Command](cmds []Command) bool {
	for _, cmd := range cmds {
		if _, ok := cmd.(T); ok {
			return true
		}
	}
	return false
}

func TestSessionStartup(t *testing.T) {
	Convey("Session startup", t, func() {
		Convey("Start requests history and subtitle selection", func() {
			c := newController()
			cmds := c.Start()
			So(cmds, ShouldResemble, []Command{LoadHistory{}, LoadSubtitle{}})
			So(c.State(), ShouldEqual, Loading)
		})

		Convey("No meaningful history starts from the beginning", func() {
			c := newController()
			c.Start()
			cmds := c.Handle(HistoryLoaded{})

			neg, ok := negotiationOf(cmds)
			So(ok, ShouldBeTrue)
			So(neg.Req.SeekTime, ShouldEqual, 0)
			So(c.State(), ShouldEqual, Loading)
		})

		Convey("A position inside the start threshold does not prompt", func() {
			c := newController()
			c.Start()
			cmds := c.Handle(HistoryLoaded{Snap: api.ProgressSnapshot{PositionSeconds: 4, DurationSeconds: 3600}})

			_, ok := negotiationOf(cmds)
			So(ok, ShouldBeTrue)
			So(c.State(), ShouldEqual, Loading)
		})

		Convey("A position near the end does not prompt", func() {
			c := newController()
			c.Start()
			cmds := c.Handle(HistoryLoaded{Snap: api.ProgressSnapshot{PositionSeconds: 3598, DurationSeconds: 3600}})

			_, ok := negotiationOf(cmds)
			So(ok, ShouldBeTrue)
			So(c.State(), ShouldEqual, Loading)
		})

		Convey("Meaningful history awaits a resume decision", func() {
			c := newController()
			c.Start()
			cmds := c.Handle(HistoryLoaded{Snap: api.ProgressSnapshot{PositionSeconds: 1200, DurationSeconds: 3600}})

			So(cmds, ShouldBeEmpty)
			So(c.State(), ShouldEqual, AwaitingResumeDecision)
			So(c.ResumePosition(), ShouldEqual, 1200)

			Convey("Resuming negotiates at the saved position", func() {
				neg, ok := negotiationOf(c.Handle(ResumeChosen{FromStart: false}))
				So(ok, ShouldBeTrue)
				So(neg.Req.SeekTime, ShouldEqual, 1200)
			})

			Convey("Starting over clears the saved position and negotiates at zero", func() {
				cmds := c.Handle(ResumeChosen{FromStart: true})
				So(hasCommand[ClearHistory](cmds), ShouldBeTrue)
				neg, ok := negotiationOf(cmds)
				So(ok, ShouldBeTrue)
				So(neg.Req.SeekTime, ShouldEqual, 0)
			})

			Convey("Resuming does not clear the saved position", func() {
				cmds := c.Handle(ResumeChosen{FromStart: false})
				So(hasCommand[ClearHistory](cmds), ShouldBeFalse)
			})
		})

		Convey("A history fetch failure starts from the beginning", func() {
			c := newController()
			c.Start()
			_, ok := negotiationOf(c.Handle(HistoryFailed{}))
			So(ok, ShouldBeTrue)
		})
	})
}

func TestStreamRequestModes(t *testing.T) {
	Convey("Stream request modes", t, func() {
		Convey("Auto mode on a high grade prefers direct play", func() {
			c := newController(WithGrade(fixedGrade(network.GradeHigh)))
			c.Start()
			neg, _ := negotiationOf(c.Handle(HistoryLoaded{}))
			So(neg.Req.PreferDirect, ShouldBeTrue)
			So(neg.Req.ForceTranscode, ShouldBeFalse)
		})

		Convey("Auto mode on low and medium grades forces a transcode", func() {
			for _, g := range []network.Grade{network.GradeLow, network.GradeMedium} {
				c := newController(WithGrade(fixedGrade(g)))
				c.Start()
				neg, _ := negotiationOf(c.Handle(HistoryLoaded{}))
				So(neg.Req.ForceTranscode, ShouldBeTrue)
				So(neg.Req.PreferDirect, ShouldBeFalse)
			}
		})

		Convey("A burn subtitle policy forces a transcode in auto mode", func() {
			c := newController(
				WithGrade(fixedGrade(network.GradeHigh)),
				WithPreferences(testPrefs(settings.ModeAuto, settings.SubtitlesBurn)),
			)
			c.Start()
			c.Handle(SubtitleLoaded{Choice: mo.Some(api.SubtitleChoice{ID: 3, Lang: "en"})})
			neg, _ := negotiationOf(c.Handle(HistoryLoaded{}))

			So(neg.Req.ForceTranscode, ShouldBeTrue)
			So(neg.Req.Burn, ShouldBeTrue)
			So(neg.Req.SubtitleID.MustGet(), ShouldEqual, 3)
		})

		Convey("Pinned modes pass through regardless of grade", func() {
			direct := newController(
				WithGrade(fixedGrade(network.GradeLow)),
				WithPreferences(testPrefs(settings.ModeDirect, settings.SubtitlesSoft)),
			)
			direct.Start()
			neg, _ := negotiationOf(direct.Handle(HistoryLoaded{}))
			So(neg.Req.PreferDirect, ShouldBeTrue)

			transcode := newController(
				WithGrade(fixedGrade(network.GradeHigh)),
				WithPreferences(testPrefs(settings.ModeTranscode, settings.SubtitlesSoft)),
			)
			transcode.Start()
			neg, _ = negotiationOf(transcode.Handle(HistoryLoaded{}))
			So(neg.Req.ForceTranscode, ShouldBeTrue)
		})

		Convey("An off subtitle policy omits the subtitle from the request", func() {
			c := newController(WithPreferences(testPrefs(settings.ModeAuto, settings.SubtitlesOff)))
			c.Start()
			c.Handle(SubtitleLoaded{Choice: mo.Some(api.SubtitleChoice{ID: 3, Lang: "en"})})
			neg, _ := negotiationOf(c.Handle(HistoryLoaded{}))
			So(neg.Req.SubtitleID.IsAbsent(), ShouldBeTrue)
		})
	})
}

func TestNegotiationHandling(t *testing.T) {
	Convey("Negotiation handling", t, func() {
		Convey("A stale reply is discarded", func() {
			c := newController()
			playFrom(c, 0)

			// A seek restart supersedes the original negotiation.
			c.Handle(StreamSeeked{Pos: 500})
			cmds := c.Handle(DebounceElapsed{Gen: 1})
			fresh, _ := negotiationOf(cmds)

			stale := c.Handle(NegotiationDone{
				Seq:  fresh.Seq - 1,
				Desc: api.StreamDescriptor{Kind: api.Progressive, URL: "http://s/old"},
			})
			So(stale, ShouldBeEmpty)
			So(c.State(), ShouldEqual, Loading)

			current := c.Handle(NegotiationDone{
				Seq:  fresh.Seq,
				Desc: api.StreamDescriptor{Kind: api.Segmented, URL: "http://s/new.m3u8"},
			})
			So(hasCommand[AttachStream](current), ShouldBeTrue)
		})

		Convey("A successful reply attaches at the requested offset", func() {
			c := newController()
			c.Start()
			neg, _ := negotiationOf(c.Handle(HistoryLoaded{Snap: api.ProgressSnapshot{PositionSeconds: 900, DurationSeconds: 3600}}))
			if neg.Seq == 0 {
				neg, _ = negotiationOf(c.Handle(ResumeChosen{FromStart: false}))
			}

			cmds := c.Handle(NegotiationDone{
				Seq:  neg.Seq,
				Desc: api.StreamDescriptor{Kind: api.Segmented, URL: "http://s/p.m3u8", DurationSeconds: 3600},
			})
			attach := cmds[0].(AttachStream)
			So(attach.Offset, ShouldEqual, 900)
			So(c.Transport(), ShouldEqual, api.Segmented)
		})

		Convey("A failed negotiation lands in Error", func() {
			c := newController()
			c.Start()
			neg, _ := negotiationOf(c.Handle(HistoryLoaded{}))

			cmds := c.Handle(NegotiationDone{Seq: neg.Seq, Err: errors.New("boom")})
			So(cmds, ShouldBeEmpty)
			So(c.State(), ShouldEqual, Error)
			So(c.Err(), ShouldNotBeNil)
		})
	})
}

func TestSeekDebounce(t *testing.T) {
	Convey("Seek debounce", t, func() {
		Convey("A burst of seeks yields one restart at the final position", func() {
			c := newController()
			playFrom(c, 0)

			first := c.Handle(StreamSeeked{Pos: 100})
			second := c.Handle(StreamSeeked{Pos: 200})
			third := c.Handle(StreamSeeked{Pos: 300})

			So(first[0].(StartDebounce).Delay, ShouldEqual, 800*time.Millisecond)
			gen1 := first[0].(StartDebounce).Gen
			gen3 := third[0].(StartDebounce).Gen
			So(second[0].(StartDebounce).Gen, ShouldBeGreaterThan, gen1)

			// Timers for superseded bursts do nothing.
			So(c.Handle(DebounceElapsed{Gen: gen1}), ShouldBeEmpty)

			cmds := c.Handle(DebounceElapsed{Gen: gen3})
			So(hasCommand[DetachStream](cmds), ShouldBeTrue)
			neg, ok := negotiationOf(cmds)
			So(ok, ShouldBeTrue)
			So(neg.Req.SeekTime, ShouldEqual, 300)

			// The timer is one-shot.
			So(c.Handle(DebounceElapsed{Gen: gen3}), ShouldBeEmpty)
		})

		Convey("Seeks while a stream is starting are suppressed", func() {
			c := newController()
			c.Start()
			neg, _ := negotiationOf(c.Handle(HistoryLoaded{}))
			c.Handle(NegotiationDone{
				Seq:  neg.Seq,
				Desc: api.StreamDescriptor{Kind: api.Segmented, URL: "http://s/p.m3u8"},
			})

			// StreamStarted has not arrived yet: positioning noise.
			So(c.Handle(StreamSeeked{Pos: 555}), ShouldBeEmpty)

			c.Handle(StreamStarted{})
			So(c.Handle(StreamSeeked{Pos: 555}), ShouldNotBeEmpty)
		})

		Convey("A stream restart cancels a pending debounce", func() {
			c := newController()
			playFrom(c, 0)

			armed := c.Handle(StreamSeeked{Pos: 500})
			gen := armed[0].(StartDebounce).Gen

			// A subtitle change restarts the stream inside the window.
			cmds := c.Handle(SubtitleSelected{Choice: mo.Some(api.SubtitleChoice{ID: 7, Lang: "fr"})})
			neg, ok := negotiationOf(cmds)
			So(ok, ShouldBeTrue)

			// The old timer belongs to the superseded stream.
			So(c.Handle(DebounceElapsed{Gen: gen}), ShouldBeEmpty)

			// Even a matching timer must not renegotiate out of Error.
			c.Handle(NegotiationDone{Seq: neg.Seq, Err: errors.New("boom")})
			So(c.Handle(DebounceElapsed{Gen: gen}), ShouldBeEmpty)
			So(c.State(), ShouldEqual, Error)
		})

		Convey("Seeks on a progressive stream never renegotiate", func() {
			c := newController()
			c.Start()
			neg, _ := negotiationOf(c.Handle(HistoryLoaded{}))
			c.Handle(NegotiationDone{
				Seq:  neg.Seq,
				Desc: api.StreamDescriptor{Kind: api.Progressive, URL: "http://s/file.mkv"},
			})
			c.Handle(StreamStarted{})

			So(c.Handle(StreamSeeked{Pos: 555}), ShouldBeEmpty)
		})
	})
}

func TestProgressThrottle(t *testing.T) {
	Convey("Progress throttle", t, func() {
		Convey("Saves at most once per interval of playback", func() {
			c := newController()
			playFrom(c, 0)

			var saves []SaveProgress
			for pos := 1; pos <= 40; pos++ {
				for _, cmd := range c.Handle(StreamTick{Pos: float64(pos), Dur: 3600}) {
					if s, ok := cmd.(SaveProgress); ok {
						saves = append(saves, s)
					}
				}
			}

			So(saves, ShouldHaveLength, 2)
			So(saves[0].Snap.PositionSeconds, ShouldEqual, 15)
			So(saves[1].Snap.PositionSeconds, ShouldEqual, 30)
		})

		Convey("Positions outside the validity window are not saved", func() {
			c := newController()
			playFrom(c, 0)

			// Inside the start threshold even though the interval elapsed.
			c.lastSent = -20
			So(hasCommand[SaveProgress](c.Handle(StreamTick{Pos: 4, Dur: 3600})), ShouldBeFalse)

			// Too close to the end.
			c.lastSent = 3500
			So(hasCommand[SaveProgress](c.Handle(StreamTick{Pos: 3597, Dur: 3600})), ShouldBeFalse)
		})

		Convey("Paused playback is never saved", func() {
			c := newController()
			playFrom(c, 0)

			So(hasCommand[SaveProgress](c.Handle(StreamTick{Pos: 100, Dur: 3600, Paused: true})), ShouldBeFalse)
		})

		Convey("No saves while a seek is pending", func() {
			c := newController()
			playFrom(c, 0)
			c.Handle(StreamSeeked{Pos: 200})

			So(hasCommand[SaveProgress](c.Handle(StreamTick{Pos: 100, Dur: 3600})), ShouldBeFalse)
		})

		Convey("The throttle baseline starts at the resume offset", func() {
			c := newController()
			playFrom(c, 1200)

			So(hasCommand[SaveProgress](c.Handle(StreamTick{Pos: 1210, Dur: 3600})), ShouldBeFalse)
			So(hasCommand[SaveProgress](c.Handle(StreamTick{Pos: 1215, Dur: 3600})), ShouldBeTrue)
		})

		Convey("Disabling history saving suppresses all saves", func() {
			viper.Set(key.SessionHistorySaveOnPlayback, false)
			defer viper.Set(key.SessionHistorySaveOnPlayback, true)

			c := newController()
			playFrom(c, 0)
			So(hasCommand[SaveProgress](c.Handle(StreamTick{Pos: 100, Dur: 3600})), ShouldBeFalse)
		})
	})
}

func TestBufferingStates(t *testing.T) {
	Convey("Buffering", t, func() {
		Convey("Segmented buffering goes back through Loading", func() {
			c := newController()
			playFrom(c, 0)

			c.Handle(StreamBuffering{})
			So(c.State(), ShouldEqual, Loading)

			c.Handle(StreamResumed{})
			So(c.State(), ShouldEqual, Playing)
		})

		Convey("Progressive buffering stalls in place", func() {
			c := newController()
			c.Start()
			neg, _ := negotiationOf(c.Handle(HistoryLoaded{}))
			c.Handle(NegotiationDone{
				Seq:  neg.Seq,
				Desc: api.StreamDescriptor{Kind: api.Progressive, URL: "http://s/file.mkv"},
			})
			c.Handle(StreamStarted{})

			c.Handle(StreamBuffering{})
			So(c.State(), ShouldEqual, Stalled)

			c.Handle(StreamResumed{})
			So(c.State(), ShouldEqual, Playing)
		})
	})
}

func TestSessionEnd(t *testing.T) {
	Convey("Session end", t, func() {
		Convey("Playing through to the end clears history and finishes", func() {
			c := newController()
			playFrom(c, 0)
			c.Handle(StreamTick{Pos: 3590, Dur: 3600})

			cmds := c.Handle(StreamEnded{})
			So(hasCommand[ClearHistory](cmds), ShouldBeTrue)
			So(hasCommand[StopStream](cmds), ShouldBeTrue)
			So(hasCommand[SaveProgress](cmds), ShouldBeFalse)
			So(c.State(), ShouldEqual, Finished)
		})

		Convey("Teardown saves the final position and stops the stream", func() {
			c := newController()
			playFrom(c, 0)
			c.Handle(StreamTick{Pos: 1234, Dur: 3600})

			cmds := c.Teardown()
			So(hasCommand[SaveProgress](cmds), ShouldBeTrue)
			So(hasCommand[StopStream](cmds), ShouldBeTrue)
			So(c.State(), ShouldEqual, Idle)
		})

		Convey("Teardown near the start skips the save but still stops the stream", func() {
			c := newController()
			playFrom(c, 0)
			c.Handle(StreamTick{Pos: 3, Dur: 3600})

			cmds := c.Teardown()
			So(hasCommand[SaveProgress](cmds), ShouldBeFalse)
			So(hasCommand[StopStream](cmds), ShouldBeTrue)
		})

		Convey("The player going away tears the session down", func() {
			c := newController()
			playFrom(c, 0)
			c.Handle(StreamTick{Pos: 1234, Dur: 3600})

			cmds := c.Handle(StreamClosed{})
			So(hasCommand[SaveProgress](cmds), ShouldBeTrue)
			So(hasCommand[StopStream](cmds), ShouldBeTrue)
			So(c.State(), ShouldEqual, Idle)
		})

		Convey("A fatal transport error lands in Error with a final save", func() {
			c := newController()
			playFrom(c, 0)
			c.Handle(StreamTick{Pos: 1234, Dur: 3600})

			cmds := c.Handle(StreamFatal{Err: errors.New("stream died")})
			So(hasCommand[SaveProgress](cmds), ShouldBeTrue)
			So(hasCommand[StopStream](cmds), ShouldBeTrue)
			So(c.State(), ShouldEqual, Error)
			So(c.Err(), ShouldNotBeNil)
		})
	})
}

func TestSubtitleLifecycle(t *testing.T) {
	Convey("Subtitle lifecycle", t, func() {
		Convey("Changing the subtitle persists and restarts at the current position", func() {
			c := newController()
			playFrom(c, 0)
			c.Handle(StreamTick{Pos: 420, Dur: 3600})

			cmds := c.Handle(SubtitleSelected{Choice: mo.Some(api.SubtitleChoice{ID: 9, Lang: "de"})})

			So(hasCommand[PersistSubtitle](cmds), ShouldBeTrue)
			So(hasCommand[DetachStream](cmds), ShouldBeTrue)
			neg, ok := negotiationOf(cmds)
			So(ok, ShouldBeTrue)
			So(neg.Req.SeekTime, ShouldEqual, 420)
			So(neg.Req.SubtitleID.MustGet(), ShouldEqual, 9)
		})

		Convey("Reselecting the identical subtitle is a no-op", func() {
			c := newController()
			c.Start()
			c.Handle(SubtitleLoaded{Choice: mo.Some(api.SubtitleChoice{ID: 9, Lang: "de"})})
			c.Handle(HistoryLoaded{})

			So(c.Handle(SubtitleSelected{Choice: mo.Some(api.SubtitleChoice{ID: 9, Lang: "de"})}), ShouldBeEmpty)
		})

		Convey("Clearing the subtitle also restarts", func() {
			c := newController()
			c.Start()
			c.Handle(SubtitleLoaded{Choice: mo.Some(api.SubtitleChoice{ID: 9, Lang: "de"})})
			playAfterLoad(c)
			c.Handle(StreamTick{Pos: 100, Dur: 3600})

			cmds := c.Handle(SubtitleSelected{Choice: mo.None[api.SubtitleChoice]()})
			So(hasCommand[PersistSubtitle](cmds), ShouldBeTrue)
			neg, ok := negotiationOf(cmds)
			So(ok, ShouldBeTrue)
			So(neg.Req.SubtitleID.IsAbsent(), ShouldBeTrue)
		})
	})
}

// playAfterLoad finishes the startup sequence for a controller whose Start
// and SubtitleLoaded steps already ran.
func playAfterLoad(c *Controller) {
	cmds := c.Handle(HistoryLoaded{})
	neg, _ := negotiationOf(cmds)
	c.Handle(NegotiationDone{
		Seq:  neg.Seq,
		Desc: api.StreamDescriptor{Kind: api.Segmented, URL: "http://s/p.m3u8", DurationSeconds: 3600},
	})
	c.Handle(StreamStarted{})
}
