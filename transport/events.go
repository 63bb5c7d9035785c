// Package transport attaches a negotiated stream to the media player and
// translates the player's raw IPC signals into typed playback events.
package transport

// Event is a typed playback signal emitted by a Driver. Events carry no
// interpretation: deciding what a buffer stall or an observed seek means
// is the session controller's job.
type Event interface {
	isEvent()
}

// Started fires once, when the attached media begins rendering.
type Started struct{}

// Buffering fires when the player pauses itself waiting for data.
type Buffering struct{}

// Resumed fires when a Buffering condition clears.
type Resumed struct{}

// Tick carries the playback clock, sampled at 1 Hz.
type Tick struct {
	Pos    float64
	Dur    float64
	Paused bool
}

// SeekObserved fires when the user repositions playback inside the player.
// Only emitted for segmented streams; progressive streams seek natively.
type SeekObserved struct {
	Pos float64
}

// Ended fires when the media plays through to its end.
type Ended struct{}

// Closed fires when the player process goes away without reaching the end,
// typically because the user quit it.
type Closed struct{}

// Fatal fires when playback cannot continue and reload attempts are exhausted.
type Fatal struct {
	Err error
}

func (Started) isEvent()      {}
func (Buffering) isEvent()    {}
func (Resumed) isEvent()      {}
func (Tick) isEvent()         {}
func (SeekObserved) isEvent() {}
func (Ended) isEvent()        {}
func (Closed) isEvent()       {}
func (Fatal) isEvent()        {}
