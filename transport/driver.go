package transport

import (
	"fmt"
	"sync"

	"github.com/lumen-cli/lumen/api"
	"github.com/lumen-cli/lumen/key"
	"github.com/lumen-cli/lumen/log"
	"github.com/lumen-cli/lumen/player"
	"github.com/spf13/viper"
)

const eventBuffer = 128

// Driver owns one stream-to-player attachment. It loads the descriptor's URL,
// positions playback at the start offset, wires up the soft subtitle track and
// then streams typed Events until Close. A new attachment always means a new
// Driver; the previous one must be closed first.
type Driver struct {
	desc   api.StreamDescriptor
	title  string
	p      player.Player
	events chan Event

	mu        sync.Mutex
	closed    bool
	started   bool
	ended     bool
	buffering bool
	seeking   bool
	reloading bool
	lastPos   float64
	reloads   int

	listener *player.EventListener
}

// Attach loads the stream into the player starting at offset seconds and
// begins emitting events. The caller owns the returned driver and must
// Close it before attaching another.
func Attach(p player.Player, desc api.StreamDescriptor, title string, offset float64) (*Driver, error) {
	d := &Driver{
		desc:   desc,
		title:  title,
		p:      p,
		events: make(chan Event, eventBuffer),
	}

	if err := d.load(offset); err != nil {
		return nil, err
	}

	d.listener = player.NewEventListener(p.Socket(), d.onPlayerEvent)
	if err := d.listener.Start(); err != nil {
		return nil, fmt.Errorf("attach event listener: %w", err)
	}

	p.StartIPCTicker(d.onTick)

	go func() {
		<-p.Wait()
		d.mu.Lock()
		ended := d.ended
		d.mu.Unlock()
		if !ended {
			d.emit(Closed{})
		}
	}()

	return d, nil
}

// load points the player at the stream URL and seeks to the start offset.
func (d *Driver) load(offset float64) error {
	if err := d.p.Play(d.desc.URL, d.title, nil); err != nil {
		return fmt.Errorf("load stream: %w", err)
	}

	if offset > 0 {
		if err := d.p.Seek(offset); err != nil {
			log.Warnf("seek to start offset %.1fs failed: %v", offset, err)
		}
	}

	if d.desc.SoftSubURL != "" {
		if err := d.p.AddSubtitle(d.desc.SoftSubURL); err != nil {
			log.Warnf("attach soft subtitle failed: %v", err)
		}
	}

	d.mu.Lock()
	d.lastPos = offset
	d.mu.Unlock()
	return nil
}

// Events returns the channel the driver emits on. The channel is closed by Close.
func (d *Driver) Events() <-chan Event {
	return d.events
}

// Kind returns the transport kind of the attached stream.
func (d *Driver) Kind() api.TransportKind {
	return d.desc.Kind
}

// Position returns the last playback position the driver observed.
func (d *Driver) Position() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastPos
}

// Close detaches from the player and stops all event delivery. The player
// process itself is left alone; the session decides when to close it.
func (d *Driver) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	if d.listener != nil {
		d.listener.Stop()
	}
	d.p.StopIPCTicker()

	d.mu.Lock()
	close(d.events)
	d.mu.Unlock()
}

// emit delivers an event unless the driver is closed. Delivery never blocks;
// if the consumer has fallen behind by a full buffer the event is dropped.
func (d *Driver) emit(e Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	select {
	case d.events <- e:
	default:
		log.Warnf("transport event buffer full, dropping %T", e)
	}
}

// onTick is the 1 Hz playback clock callback.
func (d *Driver) onTick(pos int, dur int) {
	paused, err := d.p.GetPausedStatus()
	if err != nil {
		paused = false
	}

	d.mu.Lock()
	d.lastPos = float64(pos)
	// A reload at offset zero issues no seek, so the suppression would
	// never be consumed; once the clock ticks the reload is over.
	d.reloading = false
	d.mu.Unlock()

	d.emit(Tick{Pos: float64(pos), Dur: float64(dur), Paused: paused})
}

// onPlayerEvent translates raw mpv property changes and events.
func (d *Driver) onPlayerEvent(property string, data interface{}) {
	switch property {
	case "time-pos":
		if pos, ok := data.(float64); ok {
			d.mu.Lock()
			d.lastPos = pos
			d.mu.Unlock()
		}

	case "playback-restart":
		d.mu.Lock()
		first := !d.started
		d.started = true
		d.mu.Unlock()
		if first {
			d.emit(Started{})
		}

	case "paused-for-cache":
		stalled, ok := data.(bool)
		if !ok {
			return
		}
		d.mu.Lock()
		changed := stalled != d.buffering
		d.buffering = stalled
		d.mu.Unlock()
		if !changed {
			return
		}
		if stalled {
			d.emit(Buffering{})
		} else {
			d.emit(Resumed{})
		}

	case "seeking":
		active, ok := data.(bool)
		if !ok {
			return
		}
		d.mu.Lock()
		finished := d.seeking && !active
		d.seeking = active
		suppressed := d.reloading
		if finished && suppressed {
			// The reload's own repositioning, not a user seek.
			d.reloading = false
		}
		d.mu.Unlock()
		if finished && !suppressed && d.desc.Kind == api.Segmented {
			if pos, err := d.p.GetTimePos(); err == nil {
				d.emit(SeekObserved{Pos: pos})
			}
		}

	case "eof-reached":
		if reached, ok := data.(bool); ok && reached {
			d.finish()
		}

	case "end-file":
		ev, ok := data.(map[string]interface{})
		if !ok {
			return
		}
		switch reason, _ := ev["reason"].(string); reason {
		case "eof":
			d.finish()
		case "error":
			d.recover()
		}
	}
}

// finish emits Ended exactly once.
func (d *Driver) finish() {
	d.mu.Lock()
	already := d.ended
	d.ended = true
	d.mu.Unlock()
	if !already {
		d.emit(Ended{})
	}
}

// recover reloads a segmented stream from the last known position after a
// playback error. Reloads are bounded; past the limit the error is fatal.
// Progressive streams are never reloaded: the player handles its own retries
// against the source file, so an error there is already fatal.
func (d *Driver) recover() {
	if d.desc.Kind != api.Segmented {
		d.emit(Fatal{Err: fmt.Errorf("playback failed on progressive stream")})
		return
	}

	d.mu.Lock()
	d.reloads++
	attempt := d.reloads
	pos := d.lastPos
	d.mu.Unlock()

	limit := viper.GetInt(key.SessionTransportReloadTries)
	if attempt > limit {
		d.emit(Fatal{Err: fmt.Errorf("playback failed after %d reload attempts", limit)})
		return
	}

	d.mu.Lock()
	d.reloading = true
	d.mu.Unlock()

	log.Warnf("segmented stream error, reloading at %.1fs (attempt %d/%d)", pos, attempt, limit)
	if err := d.load(pos); err != nil {
		d.emit(Fatal{Err: fmt.Errorf("reload stream: %w", err)})
	}
}
