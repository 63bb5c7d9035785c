// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"bufio"
	"net"
	"path/filepath"
	"testing"

	"github.com/lumen-cli/lumen/api"
	"github.com/lumen-cli/lumen/internal/ui"
	"github.com/lumen-cli/lumen/session"
	"github.com/lumen-cli/lumen/transport"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeSocket answers every IPC command with success so an event listener can
// attach without a real mpv process.
func fakeSocket(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mpv.sock")

	listener, err := net.Listen("unix", path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				scanner := bufio.NewScanner(c)
				for scanner.Scan() {
					_, _ = c.Write([]byte(`{"error":"success"}` + "\n"))
				}
			}(conn)
		}
	}()
	return path
}

type socketPlayer struct {
	socket string
	exited chan struct{}
}

func newSocketPlayer(socket string) *socketPlayer {
	return &socketPlayer{socket: socket, exited: make(chan struct{})}
}

func (f *socketPlayer) Play(url string, title string, headers map[string]string) error { return nil }
func (f *socketPlayer) LoadFile(url string, title string) error                        { return nil }
func (f *socketPlayer) AddSubtitle(url string) error                                   { return nil }
func (f *socketPlayer) TogglePause() error                                             { return nil }
func (f *socketPlayer) GetTimePos() (float64, error)                                   { return 0, nil }
func (f *socketPlayer) GetDuration() (float64, error)                                  { return 0, nil }
func (f *socketPlayer) GetPercentWatched() (float64, error)                            { return 0, nil }
func (f *socketPlayer) GetPausedStatus() (bool, error)                                 { return false, nil }
func (f *socketPlayer) HasActivePlayback() (bool, error)                               { return true, nil }
func (f *socketPlayer) Seek(seconds float64) error                                     { return nil }
func (f *socketPlayer) IsRunning() bool                                                { return true }
func (f *socketPlayer) Close() error                                                   { return nil }
func (f *socketPlayer) Socket() string                                                 { return f.socket }
func (f *socketPlayer) StartIPCTicker(func(int, int))                                  {}
func (f *socketPlayer) StopIPCTicker()                                                 {}
func (f *socketPlayer) Wait() <-chan struct{}                                          { return f.exited }

func attachTestDriver(t *testing.T, socket string) *transport.Driver {
	t.Helper()
	desc := api.StreamDescriptor{Kind: api.Segmented, URL: "http://server/stream.m3u8"}
	driver, err := transport.Attach(newSocketPlayer(socket), desc, "Test", 0)
	if err != nil {
		t.Fatal(err)
	}
	return driver
}

func closed(d *transport.Driver) bool {
	select {
	case _, open := <-d.Events():
		return !open
	default:
		return false
	}
}

func TestDriverAttachment(t *testing.T) {
	item := api.MediaItem{ID: 1, Kind: api.Movie, Title: "Testfilm", DurationSeconds: 3600}
	socket := fakeSocket(t)

	Convey("Driver attachment", t, func() {
		Convey("An attach landing after the session ended is released", func() {
			b := &statefulBubble{notifier: &ui.Model{}}
			driver := attachTestDriver(t, socket)

			_, _ = b.Update(attachedMsg{driver: driver})

			So(b.driver, ShouldBeNil)
			So(closed(driver), ShouldBeTrue)
		})

		Convey("A newer attach releases the driver it replaces", func() {
			b := &statefulBubble{notifier: &ui.Model{}, controller: session.New(item)}
			first := attachTestDriver(t, socket)
			second := attachTestDriver(t, socket)
			b.driver = first

			_, _ = b.Update(attachedMsg{driver: second})

			So(b.driver, ShouldEqual, second)
			So(closed(first), ShouldBeTrue)
			So(closed(second), ShouldBeFalse)
		})
	})
}
