// Package analyzer runs single-item analyses: a streamed photo analysis and
// a live camera session with alignment polling and auto-capture.
package analyzer

// State is a step in a single-item analysis.
type State int

// Analysis states.
const (
	StateIdle State = iota
	StateCapturing
	StateSubmitted
	StateStreaming
	StateAwaiting
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateSubmitted:
		return "submitted"
	case StateStreaming:
		return "streaming"
	case StateAwaiting:
		return "awaiting"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
