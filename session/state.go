// Package session implements the playback session controller: a synchronous
// state machine that turns playback events into the commands required to keep
// one media item playing, resumable and recorded.
//
// The controller performs no I/O and starts no goroutines. The presentation
// shell executes the returned commands and feeds their outcomes back in as
// events, so the whole session runs on a single actor and every behavior is
// testable without a media sink.
package session

// State is the lifecycle phase of one playback session.
type State int

const (
	// Idle means no stream activity; before start and after teardown.
	Idle State = iota
	// AwaitingResumeDecision means saved progress exists and the user has
	// not yet chosen between resuming and starting over.
	AwaitingResumeDecision
	// Loading covers stream negotiation and segmented rebuffering.
	Loading
	// Playing means media is rendering.
	Playing
	// Stalled means a progressive stream is buffering natively.
	Stalled
	// Error means playback cannot continue without user action.
	Error
	// Finished means the media played through to its end.
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingResumeDecision:
		return "awaiting resume decision"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Stalled:
		return "stalled"
	case Error:
		return "error"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}
