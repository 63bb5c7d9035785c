package session

import (
	"github.com/lumen-cli/lumen/api"
	"github.com/samber/mo"
)

// Event is an input to the controller: a command outcome, a transport signal
// or a user decision. Events are handled strictly in arrival order.
type Event interface {
	isEvent()
}

// HistoryLoaded carries the saved watch position. A zero snapshot means the
// item has no meaningful history.
type HistoryLoaded struct {
	Snap api.ProgressSnapshot
}

// HistoryFailed reports that history could not be fetched; playback starts
// from the beginning.
type HistoryFailed struct{}

// SubtitleLoaded carries the persisted subtitle selection for the item.
type SubtitleLoaded struct {
	Choice mo.Option[api.SubtitleChoice]
}

// ResumeChosen is the user's answer to the resume prompt.
type ResumeChosen struct {
	FromStart bool
}

// NegotiationDone is the outcome of a NegotiateStream command. Seq ties it to
// the negotiation that issued it; replies from superseded negotiations are
// discarded.
type NegotiationDone struct {
	Seq  int
	Desc api.StreamDescriptor
	Err  error
}

// StreamStarted reports that the attached media began rendering.
type StreamStarted struct{}

// StreamBuffering reports that the player paused itself waiting for data.
type StreamBuffering struct{}

// StreamResumed reports that a buffering condition cleared.
type StreamResumed struct{}

// StreamTick is the 1 Hz playback clock.
type StreamTick struct {
	Pos    float64
	Dur    float64
	Paused bool
}

// StreamSeeked reports a user seek observed inside the player.
type StreamSeeked struct {
	Pos float64
}

// StreamEnded reports the media played through to its end.
type StreamEnded struct{}

// StreamClosed reports the player went away without reaching the end.
type StreamClosed struct{}

// StreamFatal reports an unrecoverable playback failure.
type StreamFatal struct {
	Err error
}

// DebounceElapsed reports that a StartDebounce timer fired. Gen ties it to
// the seek burst that armed it; a newer burst invalidates older timers.
type DebounceElapsed struct {
	Gen int
}

// SubtitleSelected is the user picking a subtitle track (or None) in the UI.
type SubtitleSelected struct {
	Choice mo.Option[api.SubtitleChoice]
}

func (HistoryLoaded) isEvent()    {}
func (HistoryFailed) isEvent()    {}
func (SubtitleLoaded) isEvent()   {}
func (ResumeChosen) isEvent()     {}
func (NegotiationDone) isEvent()  {}
func (StreamStarted) isEvent()    {}
func (StreamBuffering) isEvent()  {}
func (StreamResumed) isEvent()    {}
func (StreamTick) isEvent()       {}
func (StreamSeeked) isEvent()     {}
func (StreamEnded) isEvent()      {}
func (StreamClosed) isEvent()     {}
func (StreamFatal) isEvent()      {}
func (DebounceElapsed) isEvent()  {}
func (SubtitleSelected) isEvent() {}
