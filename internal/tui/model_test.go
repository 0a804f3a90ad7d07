package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aswin0605itsme-droid/Eggai/internal/analyzer"
	"github.com/aswin0605itsme-droid/Eggai/internal/camera"
	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/llm"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
	"github.com/aswin0605itsme-droid/Eggai/internal/predlog"
	"github.com/aswin0605itsme-droid/Eggai/internal/service"
	"github.com/aswin0605itsme-droid/Eggai/internal/tui/themes"
)

type stubFrames struct {
	err        error
	confidence float64
}

func (s stubFrames) AnalyzeFrame(_ context.Context, _ model.Image) (llm.FrameAnalysis, error) {
	if s.err != nil {
		return llm.FrameAnalysis{}, s.err
	}
	return llm.FrameAnalysis{Prediction: model.LabelFemale, AnalysisText: "Rounded profile."}, nil
}

func (s stubFrames) CheckAlignment(_ context.Context, _ model.Image) (model.AlignmentScore, error) {
	return model.AlignmentScore{Confidence: s.confidence, Aligned: s.confidence > 0.8}, nil
}

func newTestModel(t *testing.T, p analyzer.FramePredictor) (Model, *analyzer.LiveSession, *predlog.Store) {
	t.Helper()
	log := predlog.New()
	src := camera.NewStaticSource(model.Image{MIMEType: "image/jpeg", Data: []byte{1, 2, 3}})
	session := analyzer.NewLiveSession(src, p, log,
		analyzer.LiveConfig{Interval: 5 * time.Millisecond, Gate: 0.8, Threshold: 0.9}, nil)
	session.SetBatchNumber("B-7")
	t.Cleanup(func() { _ = session.Stop() })

	events := make(chan analyzer.LiveEvent, 8)
	return NewModel(context.Background(), session, log, events, themes.Default), session, log
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestModel_ToggleAutoCapture(t *testing.T) {
	m, session, _ := newTestModel(t, stubFrames{confidence: 0.2})

	m, _ = update(t, m, runes("a"))
	enabled, threshold := session.AutoCapture()
	assert.True(t, enabled)
	assert.InDelta(t, 0.9, threshold, 1e-9)
	assert.Contains(t, m.status, "armed at 90%")

	m, _ = update(t, m, runes("a"))
	enabled, _ = session.AutoCapture()
	assert.False(t, enabled)
	assert.Equal(t, "Auto-capture off.", m.status)
}

func TestModel_CaptureGating(t *testing.T) {
	tests := []struct {
		name      string
		running   bool
		alignment float64
		want      string
	}{
		{name: "camera stopped", running: false, alignment: 0.95, want: "Start the camera before capturing a frame."},
		{name: "poor alignment", running: true, alignment: 0.3, want: "Improve alignment to analyze."},
		{name: "just below gate", running: true, alignment: 0.79, want: "Improve alignment to analyze."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, session, log := newTestModel(t, stubFrames{confidence: 0.2})
			if tt.running {
				require.NoError(t, session.Start(context.Background()))
			}
			m.alignment = model.AlignmentScore{Confidence: tt.alignment}

			m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
			assert.Nil(t, cmd)
			assert.Equal(t, tt.want, m.status)
			assert.Equal(t, statusWarn, m.statusKind)
			assert.False(t, m.analyzing)
			assert.Zero(t, log.Len())
		})
	}
}

func TestModel_CaptureRecordsPrediction(t *testing.T) {
	m, session, log := newTestModel(t, stubFrames{confidence: 0.95})
	require.NoError(t, session.Start(context.Background()))
	require.Eventually(t, func() bool {
		return session.Latest().Confidence >= 0.8
	}, time.Second, 5*time.Millisecond)

	m, _ = update(t, m, liveEventMsg{event: analyzer.LiveEvent{
		Kind:      analyzer.EventAlignment,
		Alignment: model.AlignmentScore{Confidence: 0.95, Aligned: true},
	}})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.analyzing)
	assert.Equal(t, "Analyzing frame...", m.status)

	msg := cmd()
	cm, ok := msg.(captureMsg)
	require.True(t, ok)
	require.NoError(t, cm.err)
	assert.Equal(t, 1, log.Len())
	assert.Equal(t, model.LabelFemale, log.Entries()[0].Prediction)
	assert.Equal(t, model.SourceLiveScan, log.Entries()[0].Source)
}

func TestModel_SessionEvents(t *testing.T) {
	m, _, _ := newTestModel(t, stubFrames{})

	m, cmd := update(t, m, liveEventMsg{event: analyzer.LiveEvent{
		Kind:      analyzer.EventAlignment,
		Alignment: model.AlignmentScore{Confidence: 0.6},
	}})
	assert.NotNil(t, cmd, "keeps listening for events")
	assert.InDelta(t, 0.6, m.alignment.Confidence, 1e-9)

	m, _ = update(t, m, liveEventMsg{event: analyzer.LiveEvent{Kind: analyzer.EventCaptureStarted, Auto: true}})
	assert.True(t, m.analyzing)
	assert.Zero(t, m.alignment.Confidence)
	assert.Equal(t, "Egg aligned. Auto-capturing...", m.status)

	result := &analyzer.CaptureResult{Analysis: llm.FrameAnalysis{Prediction: model.LabelMale, AnalysisText: "Pointed end."}}
	m, _ = update(t, m, liveEventMsg{event: analyzer.LiveEvent{Kind: analyzer.EventCaptureDone, Capture: result, Auto: true}})
	assert.False(t, m.analyzing)
	assert.Same(t, result, m.last)
	assert.Equal(t, "Auto-capture prediction: Male", m.status)
	assert.Equal(t, statusOK, m.statusKind)

	m, _ = update(t, m, liveEventMsg{event: analyzer.LiveEvent{
		Kind: analyzer.EventCaptureFailed,
		Err:  common.NewUserError("Failed to analyze the frame.", errors.New("boom")),
	}})
	assert.Equal(t, statusError, m.statusKind)
	assert.Equal(t, "Failed to analyze the frame.", m.status)
}

func TestModel_StaleCaptureIgnored(t *testing.T) {
	m, _, _ := newTestModel(t, stubFrames{})
	m.analyzing = true
	m.status = "Analyzing frame..."

	m, _ = update(t, m, captureMsg{err: analyzer.ErrStale})
	assert.Equal(t, "Analyzing frame...", m.status)

	m, _ = update(t, m, captureMsg{err: errors.New("device lost")})
	assert.False(t, m.analyzing)
	assert.Equal(t, statusError, m.statusKind)
}

func TestModel_ClearLog(t *testing.T) {
	tests := []struct {
		name    string
		answer  tea.KeyMsg
		wantLen int
	}{
		{name: "confirmed", answer: runes("y"), wantLen: 0},
		{name: "declined", answer: runes("n"), wantLen: 2},
		{name: "escaped", answer: tea.KeyMsg{Type: tea.KeyEsc}, wantLen: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, log := newTestModel(t, stubFrames{})
			log.Append(service.LogInput{BatchNumber: "B-1", Prediction: model.LabelMale, Source: model.SourceImage})
			log.Append(service.LogInput{BatchNumber: "B-2", Prediction: model.LabelFemale, Source: model.SourceLiveScan})

			m, _ = update(t, m, runes("c"))
			require.True(t, m.confirmClear)
			assert.Equal(t, 2, log.Len(), "nothing is cleared before confirmation")

			m, _ = update(t, m, tt.answer)
			assert.False(t, m.confirmClear)
			assert.Equal(t, tt.wantLen, log.Len())
		})
	}
}

func TestModel_ClearEmptyLog(t *testing.T) {
	m, _, _ := newTestModel(t, stubFrames{})
	m, _ = update(t, m, runes("c"))
	assert.False(t, m.confirmClear)
	assert.Equal(t, "The log is already empty.", m.status)
}

func TestModel_Quit(t *testing.T) {
	for _, msg := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		m, _, _ := newTestModel(t, stubFrames{})
		m, cmd := update(t, m, msg)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.True(t, m.quitting)
		assert.Empty(t, m.View())
	}
}

func TestModel_View(t *testing.T) {
	m, _, log := newTestModel(t, stubFrames{})
	log.Append(service.LogInput{BatchNumber: "B-3", Prediction: model.LabelMale, Source: model.SourceImage})
	m.alignment = model.AlignmentScore{Confidence: 0.85}
	m.last = &analyzer.CaptureResult{Analysis: llm.FrameAnalysis{Prediction: model.LabelFemale, AnalysisText: "Broad air cell."}}

	view := m.View()
	assert.Contains(t, view, "Live Scan")
	assert.Contains(t, view, "B-7")
	assert.Contains(t, view, "85% good")
	assert.Contains(t, view, "Broad air cell.")
	assert.Contains(t, view, "B-3")
	assert.Contains(t, view, "Auto-capture off")
}

func TestRunLiveScan_Validation(t *testing.T) {
	log := predlog.New()
	session := analyzer.NewLiveSession(camera.NewStaticSource(model.Image{}), stubFrames{}, log, analyzer.LiveConfig{}, nil)

	err := RunLiveScan(context.Background(), ScanConfig{Log: log})
	require.Error(t, err)

	err = RunLiveScan(context.Background(), ScanConfig{Session: session, Log: log})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch number is required")
}

func TestForwardEvents(t *testing.T) {
	t.Run("alignment ticks are dropped when full", func(t *testing.T) {
		events := make(chan analyzer.LiveEvent, 1)
		forward := forwardEvents(events, make(chan struct{}))

		forward(analyzer.LiveEvent{Kind: analyzer.EventAlignment, Alignment: model.AlignmentScore{Confidence: 0.4}})
		forward(analyzer.LiveEvent{Kind: analyzer.EventAlignment, Alignment: model.AlignmentScore{Confidence: 0.6}})

		require.Len(t, events, 1)
		assert.InDelta(t, 0.4, (<-events).Alignment.Confidence, 1e-9)
	})

	t.Run("capture results wait for room", func(t *testing.T) {
		events := make(chan analyzer.LiveEvent, 1)
		forward := forwardEvents(events, make(chan struct{}))
		forward(analyzer.LiveEvent{Kind: analyzer.EventAlignment})

		sent := make(chan struct{})
		go func() {
			forward(analyzer.LiveEvent{Kind: analyzer.EventCaptureDone})
			close(sent)
		}()

		select {
		case <-sent:
			t.Fatal("capture event must not be dropped while the buffer is full")
		case <-time.After(20 * time.Millisecond):
		}

		assert.Equal(t, analyzer.EventAlignment, (<-events).Kind)
		<-sent
		assert.Equal(t, analyzer.EventCaptureDone, (<-events).Kind)
	})

	t.Run("done releases a blocked send", func(t *testing.T) {
		events := make(chan analyzer.LiveEvent)
		done := make(chan struct{})
		close(done)

		forwardEvents(events, done)(analyzer.LiveEvent{Kind: analyzer.EventStopped})
		assert.Empty(t, events)
	})
}
