// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"context"
	"runtime"
	"time"

	"github.com/lumen-cli/lumen/api"
	"github.com/lumen-cli/lumen/internal/cache"
	"github.com/lumen-cli/lumen/internal/ui"
	"github.com/lumen-cli/lumen/key"
	"github.com/lumen-cli/lumen/log"
	"github.com/lumen-cli/lumen/player"
	"github.com/lumen-cli/lumen/session"
	"github.com/lumen-cli/lumen/transport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// Messages produced by the asynchronous tea.Cmd handlers below.
type (
	moviesMsg   []api.MovieEntry
	seriesMsg   []api.SeriesEntry
	episodesMsg struct {
		series  api.SeriesEntry
		entries []api.EpisodeEntry
	}
	continueMsg  []api.ContinueEntry
	subtitlesMsg []api.Subtitle

	// sessionMsg feeds one event into the playback session controller.
	sessionMsg struct {
		ev session.Event
	}

	// attachedMsg reports a transport driver successfully attached.
	attachedMsg struct {
		driver *transport.Driver
	}

	// driverMsg carries one transport event off the driver's channel.
	driverMsg struct {
		ev transport.Event
		ok bool
	}
)

func (b *statefulBubble) loadMovies() tea.Cmd {
	return func() tea.Msg {
		var movies []api.MovieEntry

		cacheKey := cache.GenerateKey("movies", b.client.BaseURL())
		if cache.Read(cacheKey, &movies) {
			log.Info("movie library served from cache")
			return moviesMsg(movies)
		}

		movies, err := b.client.Movies(context.Background())
		if err != nil {
			return err
		}
		_ = cache.Write(cacheKey, movies)
		return moviesMsg(movies)
	}
}

func (b *statefulBubble) loadSeries() tea.Cmd {
	return func() tea.Msg {
		var series []api.SeriesEntry

		cacheKey := cache.GenerateKey("series", b.client.BaseURL())
		if cache.Read(cacheKey, &series) {
			log.Info("series library served from cache")
			return seriesMsg(series)
		}

		series, err := b.client.Series(context.Background())
		if err != nil {
			return err
		}
		_ = cache.Write(cacheKey, series)
		return seriesMsg(series)
	}
}

func (b *statefulBubble) loadEpisodes(series api.SeriesEntry) tea.Cmd {
	return func() tea.Msg {
		entries, err := b.client.Episodes(context.Background(), series.ID, 0)
		if err != nil {
			return err
		}
		return episodesMsg{series: series, entries: entries}
	}
}

func (b *statefulBubble) loadContinue() tea.Cmd {
	return func() tea.Msg {
		entries, err := b.client.ContinueWatching(context.Background())
		if err != nil {
			return err
		}
		return continueMsg(entries)
	}
}

func (b *statefulBubble) loadSubtitles(item api.MediaItem) tea.Cmd {
	return func() tea.Msg {
		subs, err := b.client.Subtitles(context.Background(), item)
		if err != nil {
			return err
		}
		return subtitlesMsg(subs)
	}
}

// startSession creates a fresh playback session for the item and enters the
// watch view. All further playback behavior flows through the controller.
func (b *statefulBubble) startSession(item api.MediaItem) tea.Cmd {
	log.Infof("starting playback session for %s", item)
	b.controller = session.New(item)
	b.progressStatus = "Preparing stream"
	b.newState(watchState)
	return tea.Batch(b.startLoading(), b.execute(b.controller.Start()))
}

// execute turns the controller's commands into scheduled tea.Cmds. Purely
// local commands (detaching the driver) run inline.
func (b *statefulBubble) execute(cmds []session.Command) tea.Cmd {
	if b.controller == nil {
		return nil
	}

	item := b.controller.Item()
	var out []tea.Cmd

	for _, c := range cmds {
		switch c := c.(type) {
		case session.LoadHistory:
			out = append(out, func() tea.Msg {
				snap, err := b.client.Progress(context.Background(), item)
				if err != nil {
					if api.IsNotFound(err) {
						return sessionMsg{ev: session.HistoryLoaded{}}
					}
					log.Warnf("history fetch failed: %v", err)
					return sessionMsg{ev: session.HistoryFailed{}}
				}
				return sessionMsg{ev: session.HistoryLoaded{Snap: snap}}
			})

		case session.LoadSubtitle:
			out = append(out, func() tea.Msg {
				choice, err := b.client.CurrentSubtitle(context.Background(), item)
				if err != nil {
					// Best-effort: playback proceeds without a selection.
					log.Warnf("subtitle selection fetch failed: %v", err)
					choice = mo.None[api.SubtitleChoice]()
				}
				return sessionMsg{ev: session.SubtitleLoaded{Choice: choice}}
			})

		case session.NegotiateStream:
			seq, req := c.Seq, c.Req
			out = append(out, func() tea.Msg {
				desc, err := b.client.Negotiate(context.Background(), item, req)
				if err != nil {
					return sessionMsg{ev: session.NegotiationDone{Seq: seq, Err: err}}
				}
				return sessionMsg{ev: session.NegotiationDone{Seq: seq, Desc: *desc}}
			})

		case session.AttachStream:
			out = append(out, b.attachStream(c))

		case session.DetachStream:
			if b.driver != nil {
				b.driver.Close()
				b.driver = nil
			}

		case session.SaveProgress:
			snap := c.Snap
			out = append(out, func() tea.Msg {
				if err := b.client.SaveProgress(context.Background(), item, snap); err != nil {
					log.Warnf("progress save failed: %v", err)
					return ui.NotifyPersistenceFailure("saving progress")()
				}
				return nil
			})

		case session.ClearHistory:
			out = append(out, func() tea.Msg {
				if err := b.client.ClearProgress(context.Background(), item); err != nil && !api.IsNotFound(err) {
					log.Warnf("history clear failed: %v", err)
				}
				return nil
			})

		case session.StopStream:
			out = append(out, func() tea.Msg {
				if err := b.client.StopStream(context.Background(), item); err != nil {
					log.Warnf("stream stop failed: %v", err)
				}
				return nil
			})

		case session.StartDebounce:
			gen := c.Gen
			out = append(out, tea.Tick(c.Delay, func(time.Time) tea.Msg {
				return sessionMsg{ev: session.DebounceElapsed{Gen: gen}}
			}))

		case session.PersistSubtitle:
			choice := c.Choice
			out = append(out, func() tea.Msg {
				if err := b.client.SelectSubtitle(context.Background(), item, choice); err != nil {
					log.Warnf("subtitle save failed: %v", err)
					return ui.NotifyPersistenceFailure("saving subtitle selection")()
				}
				return nil
			})
		}
	}

	return tea.Batch(out...)
}

// attachStream launches (or reuses) the player and hands it the negotiated
// stream. The resulting driver's events are pumped back as driverMsg.
func (b *statefulBubble) attachStream(cmd session.AttachStream) tea.Cmd {
	title := b.controller.Item().Title

	return func() tea.Msg {
		if b.mpvPlayer == nil || !b.mpvPlayer.IsRunning() {
			if viper.GetString(key.Player) == "iina" && runtime.GOOS == "darwin" {
				b.mpvPlayer = player.NewIINA()
			} else {
				b.mpvPlayer = player.NewMPV()
			}
		}

		driver, err := transport.Attach(b.mpvPlayer, cmd.Desc, title, cmd.Offset)
		if err != nil {
			return sessionMsg{ev: session.StreamFatal{Err: err}}
		}

		log.Infof("attached %s stream on socket %s", cmd.Desc.Kind, b.mpvPlayer.Socket())
		return attachedMsg{driver: driver}
	}
}

// pumpDriver waits for the next transport event. Each delivery re-arms the
// pump from Update, so exactly one reader drains the channel.
func (b *statefulBubble) pumpDriver() tea.Cmd {
	driver := b.driver
	if driver == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-driver.Events()
		return driverMsg{ev: ev, ok: ok}
	}
}

// sessionEvent translates a transport event into its controller event.
func sessionEvent(ev transport.Event) session.Event {
	switch ev := ev.(type) {
	case transport.Started:
		return session.StreamStarted{}
	case transport.Buffering:
		return session.StreamBuffering{}
	case transport.Resumed:
		return session.StreamResumed{}
	case transport.Tick:
		return session.StreamTick{Pos: ev.Pos, Dur: ev.Dur, Paused: ev.Paused}
	case transport.SeekObserved:
		return session.StreamSeeked{Pos: ev.Pos}
	case transport.Ended:
		return session.StreamEnded{}
	case transport.Closed:
		return session.StreamClosed{}
	case transport.Fatal:
		return session.StreamFatal{Err: ev.Err}
	default:
		return nil
	}
}

// endSession tears the active session down and releases the player.
func (b *statefulBubble) endSession() tea.Cmd {
	if b.controller == nil {
		return nil
	}

	cmd := b.execute(b.controller.Teardown())
	b.controller = nil

	if b.mpvPlayer != nil {
		_ = b.mpvPlayer.Close()
		b.mpvPlayer = nil
	}
	return cmd
}
