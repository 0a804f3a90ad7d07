// Package tui implements the live scan screen: camera status, the alignment
// meter, auto-capture and the recent prediction log.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aswin0605itsme-droid/Eggai/internal/analyzer"
	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
	"github.com/aswin0605itsme-droid/Eggai/internal/tui/themes"
)

// LogView is the part of the prediction log the screen shows and clears.
type LogView interface {
	Entries() []model.LogEntry
	Len() int
	Clear()
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const recentEntries = 5

// Model holds the live scan screen state.
type Model struct {
	ctx          context.Context
	session      *analyzer.LiveSession
	log          LogView
	events       <-chan analyzer.LiveEvent
	last         *analyzer.CaptureResult
	theme        themes.Theme
	keymap       KeyMap
	help         help.Model
	meter        progress.Model
	status       string
	alignment    model.AlignmentScore
	statusKind   statusKind
	width        int
	height       int
	running      bool
	analyzing    bool
	confirmClear bool
	quitting     bool
}

// NewModel creates the screen for session. Session events must be forwarded
// into events.
func NewModel(ctx context.Context, session *analyzer.LiveSession, log LogView, events <-chan analyzer.LiveEvent, theme themes.Theme) Model {
	return Model{
		ctx:     ctx,
		session: session,
		log:     log,
		events:  events,
		theme:   theme,
		keymap:  DefaultKeyMap(),
		help:    help.New(),
		meter:   progress.New(progress.WithSolidFill(string(theme.Error)), progress.WithoutPercentage(), progress.WithWidth(40)),
		width:   80,
		height:  24,
		status:  "Starting camera...",
	}
}

// Init starts the camera and begins listening for session events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.startCamera(), m.waitForEvent())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.meter.Width = clampWidth(msg.Width - 30)
		return m, nil

	case cameraMsg:
		m.running = m.session.Running()
		switch {
		case msg.err != nil:
			m.setStatus(statusError, common.UserMessage(msg.err))
		case msg.started:
			m.setStatus(statusInfo, "Camera started. Position the egg in the frame.")
		default:
			m.alignment = model.AlignmentScore{}
			m.setStatus(statusInfo, "Camera stopped.")
		}
		return m, nil

	case captureMsg:
		if msg.err != nil && !errors.Is(msg.err, analyzer.ErrStale) {
			m.analyzing = false
			m.setStatus(statusError, common.UserMessage(msg.err))
		}
		return m, nil

	case liveEventMsg:
		m.handleEvent(msg.event)
		return m, m.waitForEvent()

	case eventsClosedMsg:
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.confirmClear {
		switch {
		case key.Matches(msg, m.keymap.Confirm):
			n := m.log.Len()
			m.log.Clear()
			m.confirmClear = false
			m.setStatus(statusOK, fmt.Sprintf("Cleared %d log entries.", n))
		case key.Matches(msg, m.keymap.Cancel):
			m.confirmClear = false
			m.setStatus(statusInfo, "Log kept.")
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keymap.ToggleCamera):
		if m.session.Running() {
			return m, m.stopCamera()
		}
		return m, m.startCamera()

	case key.Matches(msg, m.keymap.ToggleAuto):
		enabled, threshold := m.session.AutoCapture()
		m.session.SetAutoCapture(!enabled, threshold)
		if enabled {
			m.setStatus(statusInfo, "Auto-capture off.")
		} else {
			m.setStatus(statusInfo, fmt.Sprintf("Auto-capture armed at %.0f%% alignment.", threshold*100))
		}

	case key.Matches(msg, m.keymap.Capture):
		return m.capture()

	case key.Matches(msg, m.keymap.ClearLog):
		if m.log.Len() == 0 {
			m.setStatus(statusInfo, "The log is already empty.")
			return m, nil
		}
		m.confirmClear = true
		m.setStatus(statusWarn, "Are you sure you want to clear the entire log? (y/n)")
	}
	return m, nil
}

func (m Model) capture() (tea.Model, tea.Cmd) {
	switch {
	case !m.session.Running():
		m.setStatus(statusWarn, "Start the camera before capturing a frame.")
		return m, nil
	case m.analyzing:
		return m, nil
	case m.alignment.Confidence < m.session.Gate():
		m.setStatus(statusWarn, "Improve alignment to analyze.")
		return m, nil
	}

	m.analyzing = true
	m.setStatus(statusInfo, "Analyzing frame...")
	session, ctx := m.session, m.ctx
	return m, func() tea.Msg {
		_, err := session.Capture(ctx)
		return captureMsg{err: err}
	}
}

func (m *Model) handleEvent(ev analyzer.LiveEvent) {
	switch ev.Kind {
	case analyzer.EventStarted:
		m.running = true
	case analyzer.EventStopped:
		m.running = false
		m.analyzing = false
		m.alignment = model.AlignmentScore{}
	case analyzer.EventAlignment:
		m.alignment = ev.Alignment
	case analyzer.EventCaptureStarted:
		m.analyzing = true
		m.alignment = model.AlignmentScore{}
		if ev.Auto {
			m.setStatus(statusInfo, "Egg aligned. Auto-capturing...")
		}
	case analyzer.EventCaptureDone:
		m.analyzing = false
		m.last = ev.Capture
		prefix := "Prediction"
		if ev.Auto {
			prefix = "Auto-capture prediction"
		}
		m.setStatus(statusOK, fmt.Sprintf("%s: %s", prefix, ev.Capture.Analysis.Prediction.Title()))
	case analyzer.EventCaptureFailed:
		m.analyzing = false
		m.setStatus(statusError, common.UserMessage(ev.Err))
	}
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.statusKind = kind
	m.status = text
}

func (m Model) startCamera() tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		return cameraMsg{err: session.Start(ctx), started: true}
	}
}

func (m Model) stopCamera() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		return cameraMsg{err: session.Stop()}
	}
}

func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return liveEventMsg{event: ev}
	}
}

func clampWidth(w int) int {
	switch {
	case w < 10:
		return 10
	case w > 60:
		return 60
	default:
		return w
	}
}
