package tui

import (
	"github.com/aswin0605itsme-droid/Eggai/internal/analyzer"
)

// liveEventMsg carries a session event into the update loop.
type liveEventMsg struct {
	event analyzer.LiveEvent
}

// cameraMsg reports the outcome of a start or stop request.
type cameraMsg struct {
	err     error
	started bool
}

// captureMsg reports the outcome of a manual capture. Successful captures
// are also delivered as a liveEventMsg.
type captureMsg struct {
	err error
}

// eventsClosedMsg is sent once the event channel is closed.
type eventsClosedMsg struct{}
