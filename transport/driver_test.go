package transport

import (
	"testing"

	"github.com/lumen-cli/lumen/api"
	"github.com/lumen-cli/lumen/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

// fakePlayer records calls instead of driving a real process.
type fakePlayer struct {
	played    []string
	seeks     []float64
	subs      []string
	timePos   float64
	paused    bool
	playErr   error
	exited    chan struct{}
	tickerOn  bool
	tickerOff bool
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{exited: make(chan struct{})}
}

func (f *fakePlayer) Play(url string, title string, headers map[string]string) error {
	if f.playErr != nil {
		return f.playErr
	}
	f.played = append(f.played, url)
	return nil
}
func (f *fakePlayer) LoadFile(url string, title string) error { return f.Play(url, title, nil) }
func (f *fakePlayer) AddSubtitle(url string) error            { f.subs = append(f.subs, url); return nil }
func (f *fakePlayer) TogglePause() error                      { f.paused = !f.paused; return nil }
func (f *fakePlayer) GetTimePos() (float64, error)            { return f.timePos, nil }
func (f *fakePlayer) GetDuration() (float64, error)           { return 0, nil }
func (f *fakePlayer) GetPercentWatched() (float64, error)     { return 0, nil }
func (f *fakePlayer) GetPausedStatus() (bool, error)          { return f.paused, nil }
func (f *fakePlayer) HasActivePlayback() (bool, error)        { return true, nil }
func (f *fakePlayer) Seek(seconds float64) error              { f.seeks = append(f.seeks, seconds); return nil }
func (f *fakePlayer) IsRunning() bool                         { return true }
func (f *fakePlayer) Close() error                            { return nil }
func (f *fakePlayer) Socket() string                          { return "" }
func (f *fakePlayer) StartIPCTicker(func(int, int))           { f.tickerOn = true }
func (f *fakePlayer) StopIPCTicker()                          { f.tickerOff = true }
func (f *fakePlayer) Wait() <-chan struct{}                   { return f.exited }

func newTestDriver(p *fakePlayer, kind api.TransportKind) *Driver {
	return &Driver{
		desc:   api.StreamDescriptor{Kind: kind, URL: "http://server/stream.m3u8"},
		title:  "Test",
		p:      p,
		events: make(chan Event, eventBuffer),
	}
}

func drain(d *Driver) []Event {
	var got []Event
	for {
		select {
		case e := <-d.events:
			got = append(got, e)
		default:
			return got
		}
	}
}

func TestDriver(t *testing.T) {
	viper.Set(key.SessionTransportReloadTries, 2)

	Convey("Driver", t, func() {
		Convey("load seeks to the start offset and attaches soft subtitles", func() {
			p := newFakePlayer()
			d := newTestDriver(p, api.Segmented)
			d.desc.SoftSubURL = "http://server/sub.vtt"

			So(d.load(120), ShouldBeNil)
			So(p.played, ShouldResemble, []string{"http://server/stream.m3u8"})
			So(p.seeks, ShouldResemble, []float64{120})
			So(p.subs, ShouldResemble, []string{"http://server/sub.vtt"})
			So(d.Position(), ShouldEqual, 120)
		})

		Convey("load skips the seek for a zero offset", func() {
			p := newFakePlayer()
			d := newTestDriver(p, api.Progressive)

			So(d.load(0), ShouldBeNil)
			So(p.seeks, ShouldBeEmpty)
		})

		Convey("playback-restart emits Started exactly once", func() {
			d := newTestDriver(newFakePlayer(), api.Segmented)

			d.onPlayerEvent("playback-restart", map[string]interface{}{})
			d.onPlayerEvent("playback-restart", map[string]interface{}{})

			events := drain(d)
			So(events, ShouldResemble, []Event{Started{}})
		})

		Convey("paused-for-cache transitions map to Buffering and Resumed", func() {
			d := newTestDriver(newFakePlayer(), api.Segmented)

			d.onPlayerEvent("paused-for-cache", true)
			d.onPlayerEvent("paused-for-cache", true) // repeated, no extra event
			d.onPlayerEvent("paused-for-cache", false)

			So(drain(d), ShouldResemble, []Event{Buffering{}, Resumed{}})
		})

		Convey("a finished seek emits SeekObserved on segmented streams only", func() {
			p := newFakePlayer()
			p.timePos = 321

			seg := newTestDriver(p, api.Segmented)
			seg.onPlayerEvent("seeking", true)
			seg.onPlayerEvent("seeking", false)
			So(drain(seg), ShouldResemble, []Event{SeekObserved{Pos: 321}})

			prog := newTestDriver(p, api.Progressive)
			prog.onPlayerEvent("seeking", true)
			prog.onPlayerEvent("seeking", false)
			So(drain(prog), ShouldBeEmpty)
		})

		Convey("eof-reached and end-file eof emit a single Ended", func() {
			d := newTestDriver(newFakePlayer(), api.Segmented)

			d.onPlayerEvent("eof-reached", true)
			d.onPlayerEvent("end-file", map[string]interface{}{"reason": "eof"})

			So(drain(d), ShouldResemble, []Event{Ended{}})
		})

		Convey("segmented playback errors reload from the last position", func() {
			p := newFakePlayer()
			d := newTestDriver(p, api.Segmented)
			d.lastPos = 250

			d.onPlayerEvent("end-file", map[string]interface{}{"reason": "error"})

			So(drain(d), ShouldBeEmpty)
			So(p.played, ShouldHaveLength, 1)
			So(p.seeks, ShouldResemble, []float64{250})
		})

		Convey("the reload's own repositioning is not reported as a seek", func() {
			p := newFakePlayer()
			p.timePos = 300
			d := newTestDriver(p, api.Segmented)
			d.lastPos = 300

			d.onPlayerEvent("end-file", map[string]interface{}{"reason": "error"})
			So(p.seeks, ShouldResemble, []float64{300})

			d.onPlayerEvent("seeking", true)
			d.onPlayerEvent("seeking", false)
			So(drain(d), ShouldBeEmpty)

			// The suppression is one-shot; later seeks are the user's.
			p.timePos = 500
			d.onPlayerEvent("seeking", true)
			d.onPlayerEvent("seeking", false)
			So(drain(d), ShouldResemble, []Event{SeekObserved{Pos: 500}})
		})

		Convey("a zero-offset reload stops suppressing once the clock ticks", func() {
			p := newFakePlayer()
			d := newTestDriver(p, api.Segmented)

			d.onPlayerEvent("end-file", map[string]interface{}{"reason": "error"})
			So(p.seeks, ShouldBeEmpty) // reload at 0 issues no seek

			d.onTick(1, 3600)
			drain(d)

			p.timePos = 77
			d.onPlayerEvent("seeking", true)
			d.onPlayerEvent("seeking", false)
			So(drain(d), ShouldResemble, []Event{SeekObserved{Pos: 77}})
		})

		Convey("reload attempts are bounded and then fatal", func() {
			p := newFakePlayer()
			d := newTestDriver(p, api.Segmented)

			for i := 0; i < 3; i++ {
				d.onPlayerEvent("end-file", map[string]interface{}{"reason": "error"})
			}

			events := drain(d)
			So(events, ShouldHaveLength, 1)
			_, fatal := events[0].(Fatal)
			So(fatal, ShouldBeTrue)
			So(p.played, ShouldHaveLength, 2)
		})

		Convey("progressive playback errors are immediately fatal", func() {
			p := newFakePlayer()
			d := newTestDriver(p, api.Progressive)

			d.onPlayerEvent("end-file", map[string]interface{}{"reason": "error"})

			events := drain(d)
			So(events, ShouldHaveLength, 1)
			_, fatal := events[0].(Fatal)
			So(fatal, ShouldBeTrue)
			So(p.played, ShouldBeEmpty)
		})

		Convey("ticks carry position, duration and pause state", func() {
			p := newFakePlayer()
			p.paused = true
			d := newTestDriver(p, api.Segmented)

			d.onTick(42, 3600)

			So(drain(d), ShouldResemble, []Event{Tick{Pos: 42, Dur: 3600, Paused: true}})
			So(d.Position(), ShouldEqual, 42)
		})

		Convey("Close stops delivery", func() {
			p := newFakePlayer()
			d := newTestDriver(p, api.Segmented)

			d.Close()
			d.onTick(10, 100)

			_, open := <-d.events
			So(open, ShouldBeFalse)
			So(p.tickerOff, ShouldBeTrue)
		})
	})
}
