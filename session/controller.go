package session

import (
	"time"

	"github.com/lumen-cli/lumen/api"
	"github.com/lumen-cli/lumen/key"
	"github.com/lumen-cli/lumen/network"
	"github.com/lumen-cli/lumen/settings"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// Controller drives the playback session for exactly one media item. A new
// item means a new Controller; nothing is reused across items.
type Controller struct {
	item  api.MediaItem
	prefs func() settings.Playback
	grade func() network.Grade

	state State
	err   error

	// seq identifies the latest negotiation; replies carrying an older
	// value are stale and ignored.
	seq           int
	pendingOffset float64

	// streamStarting suppresses observed seeks between the start of a
	// negotiation and the first confirmed playback (or failure). The
	// player's own positioning during startup must not re-trigger a
	// negotiation.
	streamStarting bool

	transport api.TransportKind
	position  float64
	duration  float64
	paused    bool

	// seekGen identifies the latest seek burst; only the timer armed for
	// it may restart the stream.
	seekGen     int
	seekPending bool
	pendingSeek float64

	// lastSent is the playback position of the most recent progress save,
	// initialized to the stream's start offset.
	lastSent float64

	subtitle mo.Option[api.SubtitleChoice]
	resume   api.ProgressSnapshot
}

// Option configures a Controller.
type Option func(*Controller)

// WithPreferences overrides where playback preferences are read from.
func WithPreferences(prefs func() settings.Playback) Option {
	return func(c *Controller) { c.prefs = prefs }
}

// WithGrade overrides where the network grade is read from.
func WithGrade(grade func() network.Grade) Option {
	return func(c *Controller) { c.grade = grade }
}

// New constructs an idle controller for the item.
func New(item api.MediaItem, opts ...Option) *Controller {
	c := &Controller{
		item:  item,
		prefs: settings.Load,
		grade: network.Downlink.CurrentGrade,
		state: Idle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Item() api.MediaItem                     { return c.item }
func (c *Controller) State() State                            { return c.state }
func (c *Controller) Err() error                              { return c.err }
func (c *Controller) Position() float64                       { return c.position }
func (c *Controller) Duration() float64                       { return c.duration }
func (c *Controller) Paused() bool                            { return c.paused }
func (c *Controller) Transport() api.TransportKind            { return c.transport }
func (c *Controller) Subtitle() mo.Option[api.SubtitleChoice] { return c.subtitle }

// ResumePosition returns the saved position backing the resume prompt.
func (c *Controller) ResumePosition() float64 {
	return float64(c.resume.PositionSeconds)
}

// Start kicks off the session by requesting the item's saved history and
// subtitle selection.
func (c *Controller) Start() []Command {
	if c.state != Idle {
		return nil
	}
	c.state = Loading
	return []Command{LoadHistory{}, LoadSubtitle{}}
}

// Handle advances the state machine by one event and returns the commands
// the shell must execute. It never blocks.
func (c *Controller) Handle(ev Event) []Command {
	switch e := ev.(type) {
	case HistoryLoaded:
		return c.onHistoryLoaded(e)
	case HistoryFailed:
		return c.startStream(0)
	case SubtitleLoaded:
		if c.state == Loading || c.state == AwaitingResumeDecision {
			c.subtitle = e.Choice
		}
		return nil
	case ResumeChosen:
		return c.onResumeChosen(e)
	case NegotiationDone:
		return c.onNegotiationDone(e)
	case StreamStarted:
		c.streamStarting = false
		if c.state == Loading {
			c.state = Playing
		}
		return nil
	case StreamBuffering:
		return c.onBuffering()
	case StreamResumed:
		if !c.streamStarting && (c.state == Loading || c.state == Stalled) {
			c.state = Playing
		}
		return nil
	case StreamTick:
		return c.onTick(e)
	case StreamSeeked:
		return c.onSeeked(e)
	case DebounceElapsed:
		return c.onDebounceElapsed(e)
	case StreamEnded:
		return c.onEnded()
	case StreamClosed:
		return c.Teardown()
	case StreamFatal:
		return c.onFatal(e)
	case SubtitleSelected:
		return c.onSubtitleSelected(e)
	default:
		return nil
	}
}

// Teardown ends the session: a final best-effort progress save when the
// position is meaningful, then an unconditional server-side stream stop.
func (c *Controller) Teardown() []Command {
	if c.state == Idle {
		return nil
	}
	active := c.state == Playing || c.state == Stalled || c.state == Loading

	cmds := []Command{DetachStream{}}
	if active {
		if snap, ok := c.snapshot(c.position); ok {
			cmds = append(cmds, SaveProgress{Snap: snap})
		}
	}
	cmds = append(cmds, StopStream{})

	c.state = Idle
	c.streamStarting = false
	c.seekPending = false
	return cmds
}

func (c *Controller) onHistoryLoaded(e HistoryLoaded) []Command {
	if c.state != Loading {
		return nil
	}

	threshold := viper.GetFloat64(key.SessionResumeThresholdSec)
	pos := float64(e.Snap.PositionSeconds)
	dur := float64(e.Snap.DurationSeconds)

	if pos > threshold && (dur == 0 || pos < dur-threshold) {
		c.resume = e.Snap
		c.state = AwaitingResumeDecision
		return nil
	}
	return c.startStream(0)
}

func (c *Controller) onResumeChosen(e ResumeChosen) []Command {
	if c.state != AwaitingResumeDecision {
		return nil
	}
	if e.FromStart {
		// Starting over discards the saved position, otherwise the
		// resume prompt would come back after a quick quit.
		cmds := []Command{ClearHistory{}}
		return append(cmds, c.startStream(0)...)
	}
	return c.startStream(float64(c.resume.PositionSeconds))
}

// startStream begins a new negotiation at the given offset, superseding any
// stream that came before it.
func (c *Controller) startStream(offset float64) []Command {
	c.seq++
	c.state = Loading
	c.streamStarting = true
	c.seekPending = false // a pending debounce belongs to the old stream
	c.pendingOffset = offset
	c.position = offset
	c.lastSent = offset
	c.err = nil

	return []Command{NegotiateStream{Seq: c.seq, Req: c.buildRequest(offset)}}
}

// buildRequest snapshots the current preferences into a negotiation request.
// Preferences are re-read at every stream start, so settings edits take
// effect on the next negotiation.
func (c *Controller) buildRequest(offset float64) api.StreamRequest {
	prefs := c.prefs()

	req := api.StreamRequest{
		SeekTime: offset,
		Quality:  prefs.Quality,
		Scale:    prefs.Scale,
	}

	if choice, ok := c.subtitle.Get(); ok && prefs.SubtitlePolicy != settings.SubtitlesOff {
		req.SubtitleID = mo.Some(choice.ID)
		req.Burn = prefs.SubtitlePolicy == settings.SubtitlesBurn
	}

	switch prefs.Mode {
	case settings.ModeDirect:
		req.PreferDirect = true
	case settings.ModeTranscode:
		req.ForceTranscode = true
	default:
		// Auto: direct play only pays off on a fast link, and burned
		// subtitles need the transcoder regardless.
		if c.grade() == network.GradeHigh && !req.Burn {
			req.PreferDirect = true
		} else {
			req.ForceTranscode = true
		}
	}
	return req
}

func (c *Controller) onNegotiationDone(e NegotiationDone) []Command {
	if e.Seq != c.seq {
		return nil // superseded negotiation, result no longer wanted
	}
	if c.state != Loading {
		return nil
	}

	if e.Err != nil {
		c.state = Error
		c.err = e.Err
		c.streamStarting = false
		return nil
	}

	c.transport = e.Desc.Kind
	if e.Desc.DurationSeconds > 0 {
		c.duration = e.Desc.DurationSeconds
	}
	return []Command{AttachStream{Desc: e.Desc, Offset: c.pendingOffset}}
}

func (c *Controller) onBuffering() []Command {
	if c.state != Playing {
		return nil
	}
	// Segmented underruns go back through Loading; a progressive stream
	// buffers natively inside the player.
	if c.transport == api.Segmented {
		c.state = Loading
	} else {
		c.state = Stalled
	}
	return nil
}

func (c *Controller) onTick(e StreamTick) []Command {
	if c.state != Playing && c.state != Stalled {
		return nil
	}

	c.position = e.Pos
	c.paused = e.Paused
	if e.Dur > 0 {
		c.duration = e.Dur
	}

	if c.state != Playing || e.Paused || c.seekPending || c.streamStarting {
		return nil
	}

	interval := viper.GetFloat64(key.SessionProgressIntervalSec)
	if e.Pos-c.lastSent < interval {
		return nil
	}
	snap, ok := c.snapshot(e.Pos)
	if !ok {
		return nil
	}

	c.lastSent = e.Pos
	return []Command{SaveProgress{Snap: snap}}
}

// snapshot validates a position against the save window. Saves near the very
// start or end are useless noise: one would resume at the beginning anyway,
// the other marks a finished item as in progress.
func (c *Controller) snapshot(pos float64) (api.ProgressSnapshot, bool) {
	if !viper.GetBool(key.SessionHistorySaveOnPlayback) {
		return api.ProgressSnapshot{}, false
	}
	threshold := viper.GetFloat64(key.SessionResumeThresholdSec)
	if pos <= threshold || c.duration <= 0 || pos >= c.duration-threshold {
		return api.ProgressSnapshot{}, false
	}
	return api.ProgressSnapshot{
		PositionSeconds: int(pos),
		DurationSeconds: int(c.duration),
	}, true
}

func (c *Controller) onSeeked(e StreamSeeked) []Command {
	if c.state != Playing && c.state != Loading && c.state != Stalled {
		return nil
	}
	// The player repositions itself while a stream starts up; those are
	// not user seeks.
	if c.streamStarting {
		return nil
	}
	if c.transport != api.Segmented {
		return nil
	}

	c.seekGen++
	c.seekPending = true
	c.pendingSeek = e.Pos

	delay := time.Duration(viper.GetInt(key.SessionSeekDebounceMs)) * time.Millisecond
	return []Command{StartDebounce{Gen: c.seekGen, Delay: delay}}
}

func (c *Controller) onDebounceElapsed(e DebounceElapsed) []Command {
	if !c.seekPending || e.Gen != c.seekGen {
		return nil // a newer seek superseded this timer
	}
	if c.state != Playing && c.state != Stalled && c.state != Loading {
		c.seekPending = false
		return nil
	}
	c.seekPending = false

	cmds := []Command{DetachStream{}}
	return append(cmds, c.startStream(c.pendingSeek)...)
}

func (c *Controller) onEnded() []Command {
	if c.state == Idle || c.state == Finished {
		return nil
	}
	c.state = Finished
	c.streamStarting = false
	c.seekPending = false
	return []Command{DetachStream{}, ClearHistory{}, StopStream{}}
}

func (c *Controller) onFatal(e StreamFatal) []Command {
	if c.state == Idle || c.state == Finished {
		return nil
	}
	c.state = Error
	c.err = e.Err
	c.streamStarting = false
	c.seekPending = false

	cmds := []Command{DetachStream{}}
	if snap, ok := c.snapshot(c.position); ok {
		cmds = append(cmds, SaveProgress{Snap: snap})
	}
	return append(cmds, StopStream{})
}

func (c *Controller) onSubtitleSelected(e SubtitleSelected) []Command {
	if sameChoice(c.subtitle, e.Choice) {
		return nil
	}
	c.subtitle = e.Choice

	cmds := []Command{PersistSubtitle{Choice: e.Choice}}
	if c.state == Playing || c.state == Stalled || c.state == Loading {
		// Subtitle changes take effect through a fresh negotiation that
		// restarts the stream at the current position.
		cmds = append(cmds, DetachStream{})
		cmds = append(cmds, c.startStream(c.position)...)
	}
	return cmds
}

func sameChoice(a, b mo.Option[api.SubtitleChoice]) bool {
	av, aok := a.Get()
	bv, bok := b.Get()
	if aok != bok {
		return false
	}
	return !aok || av.ID == bv.ID
}
