package session

import (
	"time"

	"github.com/lumen-cli/lumen/api"
	"github.com/samber/mo"
)

// Command is an effect the shell must execute on the controller's behalf.
// Commands within one Handle result are executed in order.
type Command interface {
	isCommand()
}

// LoadHistory asks for the item's saved watch position; the shell answers
// with HistoryLoaded or HistoryFailed.
type LoadHistory struct{}

// LoadSubtitle asks for the item's persisted subtitle selection; the shell
// answers with SubtitleLoaded (best-effort, failure maps to None).
type LoadSubtitle struct{}

// NegotiateStream asks the server for a stream. The shell answers with
// NegotiationDone carrying the same Seq.
type NegotiateStream struct {
	Seq int
	Req api.StreamRequest
}

// AttachStream hands a negotiated descriptor to the transport driver,
// starting playback at Offset seconds. Transport events come back as
// Stream* events.
type AttachStream struct {
	Desc   api.StreamDescriptor
	Offset float64
}

// DetachStream closes the active transport driver, if any.
type DetachStream struct{}

// SaveProgress persists the watch position (best-effort).
type SaveProgress struct {
	Snap api.ProgressSnapshot
}

// ClearHistory removes the item from the continue-watching list.
type ClearHistory struct{}

// StopStream releases the server-side stream resources (best-effort).
type StopStream struct{}

// StartDebounce arms a timer; the shell answers with DebounceElapsed
// carrying the same Gen after Delay.
type StartDebounce struct {
	Gen   int
	Delay time.Duration
}

// PersistSubtitle saves the subtitle selection on the server.
type PersistSubtitle struct {
	Choice mo.Option[api.SubtitleChoice]
}

func (LoadHistory) isCommand()     {}
func (LoadSubtitle) isCommand()    {}
func (NegotiateStream) isCommand() {}
func (AttachStream) isCommand()    {}
func (DetachStream) isCommand()    {}
func (SaveProgress) isCommand()    {}
func (ClearHistory) isCommand()    {}
func (StopStream) isCommand()      {}
func (StartDebounce) isCommand()   {}
func (PersistSubtitle) isCommand() {}
