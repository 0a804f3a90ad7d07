package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/llm"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
	"github.com/aswin0605itsme-droid/Eggai/internal/service"
)

// ErrStale is returned when a result arrives after the session it belongs to
// was stopped. Such results are discarded and never logged.
var ErrStale = errors.New("result discarded: session was stopped")

// FrameSource is an exclusively owned camera.
type FrameSource interface {
	Open(ctx context.Context) error
	Snapshot(ctx context.Context) (model.Image, error)
	Close() error
}

// FramePredictor analyzes and scores live frames.
type FramePredictor interface {
	AnalyzeFrame(ctx context.Context, img model.Image) (llm.FrameAnalysis, error)
	CheckAlignment(ctx context.Context, img model.Image) (model.AlignmentScore, error)
}

// LiveConfig tunes the live session.
type LiveConfig struct {
	// Interval between alignment polls.
	Interval time.Duration
	// Gate is the minimum alignment confidence for a manual capture.
	Gate float64
	// Threshold is the confidence that triggers an automatic capture.
	Threshold float64
}

// DefaultLiveConfig returns the standard polling cadence and thresholds.
func DefaultLiveConfig() LiveConfig {
	return LiveConfig{Interval: 1500 * time.Millisecond, Gate: 0.8, Threshold: 0.9}
}

// EventKind identifies a LiveEvent.
type EventKind int

// Live event kinds.
const (
	EventStarted EventKind = iota
	EventStopped
	EventAlignment
	EventCaptureStarted
	EventCaptureDone
	EventCaptureFailed
)

// LiveEvent is published to the session observer.
type LiveEvent struct {
	Err       error
	Capture   *CaptureResult
	Alignment model.AlignmentScore
	Kind      EventKind
	Auto      bool
}

// CaptureResult is a completed frame analysis.
type CaptureResult struct {
	Entry    model.LogEntry
	Analysis llm.FrameAnalysis
}

// LiveSession drives one camera: it polls alignment in the background,
// captures frames on demand or automatically, and records results.
type LiveSession struct {
	source    FrameSource
	predictor FramePredictor
	log       service.LogAppender
	logger    *slog.Logger
	onEvent   func(LiveEvent)

	pollCancel context.CancelFunc
	pollDone   chan struct{}

	batchNumber string
	latest      model.AlignmentScore
	cfg         LiveConfig
	epoch       uint64
	state       State
	running     bool
	capturing   bool
	auto        bool

	// lifecycle serializes Start and Stop so a slow Open cannot race a
	// second Start into a second poller.
	lifecycle sync.Mutex
	mu        sync.Mutex
}

// NewLiveSession creates a stopped session.
func NewLiveSession(source FrameSource, p FramePredictor, log service.LogAppender, cfg LiveConfig, logger *slog.Logger) *LiveSession {
	def := DefaultLiveConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Gate <= 0 {
		cfg.Gate = def.Gate
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = def.Threshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LiveSession{
		source:    source,
		predictor: p,
		log:       log,
		logger:    logger,
		cfg:       cfg,
		state:     StateIdle,
	}
}

// OnEvent registers the observer. It is called from the polling and capture
// goroutines and should return promptly.
func (s *LiveSession) OnEvent(fn func(LiveEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvent = fn
}

// SetBatchNumber sets the batch recorded with captures.
func (s *LiveSession) SetBatchNumber(batch string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batchNumber = strings.TrimSpace(batch)
}

// BatchNumber returns the current batch number.
func (s *LiveSession) BatchNumber() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batchNumber
}

// SetAutoCapture arms or disarms automatic capture. A threshold outside
// (0,1] keeps the current one.
func (s *LiveSession) SetAutoCapture(enabled bool, threshold float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auto = enabled
	if threshold > 0 && threshold <= 1 {
		s.cfg.Threshold = threshold
	}
}

// AutoCapture reports whether auto-capture is armed and its threshold.
func (s *LiveSession) AutoCapture() (bool, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auto, s.cfg.Threshold
}

// Latest returns the most recent alignment score.
func (s *LiveSession) Latest() model.AlignmentScore {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Running reports whether the camera is on.
func (s *LiveSession) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// State returns the current analysis state.
func (s *LiveSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Gate returns the manual capture confidence gate.
func (s *LiveSession) Gate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Gate
}

// Start opens the camera and begins alignment polling. A batch number is
// required. Concurrent calls open the camera once.
func (s *LiveSession) Start(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	if s.batchNumber == "" {
		s.mu.Unlock()
		return common.InvalidInput("Please enter a batch number before starting the camera.")
	}
	s.mu.Unlock()

	if err := s.source.Open(ctx); err != nil {
		s.logger.Warn("Camera open failed", "error", err)
		if !errors.Is(err, common.ErrDeviceAccess) {
			err = fmt.Errorf("%w: %w", common.ErrDeviceAccess, err)
		}
		return common.NewUserError("Could not access camera. Please check permissions and try again.", err)
	}

	pollCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	s.mu.Lock()
	s.running = true
	s.epoch++
	s.latest = model.AlignmentScore{}
	s.state = StateCapturing
	s.pollCancel = cancel
	s.pollDone = done
	epoch := s.epoch
	s.mu.Unlock()

	go s.poll(pollCtx, epoch, done)

	s.logger.Info("Live session started", "batch", s.BatchNumber(), "interval", s.cfg.Interval)
	s.emit(LiveEvent{Kind: EventStarted})
	return nil
}

// Stop cancels polling, waits for it to exit and releases the camera. Any
// analysis still in flight is discarded when it returns. A Stop that overlaps
// a Start waits for the camera to open and then closes it.
func (s *LiveSession) Stop() error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.epoch++
	s.latest = model.AlignmentScore{}
	s.capturing = false
	s.state = StateIdle
	cancel, done := s.pollCancel, s.pollDone
	s.pollCancel, s.pollDone = nil, nil
	s.mu.Unlock()

	cancel()
	<-done

	err := s.source.Close()
	s.logger.Info("Live session stopped")
	s.emit(LiveEvent{Kind: EventStopped})
	return err
}

// Capture analyzes the current frame. It is refused while the latest
// alignment confidence is below the gate.
func (s *LiveSession) Capture(ctx context.Context) (*CaptureResult, error) {
	return s.capture(ctx, false)
}

func (s *LiveSession) capture(ctx context.Context, auto bool) (*CaptureResult, error) {
	s.mu.Lock()
	switch {
	case !s.running:
		s.mu.Unlock()
		return nil, common.InvalidInput("Start the camera before capturing a frame.")
	case s.batchNumber == "":
		s.mu.Unlock()
		return nil, common.InvalidInput("Please enter a batch number first.")
	case s.capturing:
		s.mu.Unlock()
		return nil, common.NewUserError("A frame is already being analyzed.", common.ErrBusy)
	case !auto && s.latest.Confidence < s.cfg.Gate:
		s.mu.Unlock()
		return nil, common.InvalidInput("Improve alignment to analyze.")
	}
	s.capturing = true
	s.latest = model.AlignmentScore{}
	s.state = StateSubmitted
	epoch := s.epoch
	batch := s.batchNumber
	s.mu.Unlock()

	s.emit(LiveEvent{Kind: EventCaptureStarted, Auto: auto})

	img, err := s.source.Snapshot(ctx)
	if err != nil {
		s.finishCapture(epoch, StateFailed)
		err = common.NewUserError("Failed to capture frame from camera.", err)
		s.emit(LiveEvent{Kind: EventCaptureFailed, Err: err, Auto: auto})
		return nil, err
	}

	s.setState(epoch, StateAwaiting)
	analysis, err := s.predictor.AnalyzeFrame(ctx, img)

	if stale := s.finishCapture(epoch, resultState(err)); stale {
		s.logger.Debug("Discarding stale frame result", "batch", batch)
		return nil, ErrStale
	}
	if err != nil {
		s.logger.Warn("Frame analysis failed", "batch", batch, "error", err)
		err = common.NewUserError("Frame analysis failed. The AI couldn't determine a result. Please try again with a clearer image.", err)
		s.emit(LiveEvent{Kind: EventCaptureFailed, Err: err, Auto: auto})
		return nil, err
	}

	prediction := analysis.Prediction
	if prediction == "" {
		prediction = model.LabelUnknown
	}
	entry := s.log.Append(service.LogInput{BatchNumber: batch, Prediction: prediction, Source: model.SourceLiveScan})
	result := &CaptureResult{Entry: entry, Analysis: analysis}

	s.logger.Info("Frame analyzed", "batch", batch, "prediction", prediction, "auto", auto)
	s.emit(LiveEvent{Kind: EventCaptureDone, Capture: result, Auto: auto})
	return result, nil
}

// finishCapture clears the in-flight flag and reports whether the capture
// belongs to a previous session.
func (s *LiveSession) finishCapture(epoch uint64, next State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return true
	}
	s.capturing = false
	s.state = next
	return false
}

func (s *LiveSession) setState(epoch uint64, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch == s.epoch {
		s.state = st
	}
}

func (s *LiveSession) poll(ctx context.Context, epoch uint64, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollOnce(ctx, epoch)
		}
	}
}

func (s *LiveSession) pollOnce(ctx context.Context, epoch uint64) {
	s.mu.Lock()
	busy := s.capturing
	s.mu.Unlock()
	if busy {
		return
	}

	img, err := s.source.Snapshot(ctx)
	if err != nil {
		s.logger.Debug("Alignment snapshot failed", "error", err)
		return
	}
	score, err := s.predictor.CheckAlignment(ctx, img)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Debug("Alignment check failed", "error", err)
		}
		return
	}

	s.mu.Lock()
	if epoch != s.epoch || s.capturing {
		s.mu.Unlock()
		return
	}
	s.latest = score
	trigger := s.auto && score.Confidence >= s.cfg.Threshold
	if trigger {
		s.auto = false
	}
	s.mu.Unlock()

	s.emit(LiveEvent{Kind: EventAlignment, Alignment: score})

	if trigger {
		s.logger.Info("Auto-capture triggered", "confidence", score.Confidence)
		_, _ = s.capture(ctx, true)
	}
}

func (s *LiveSession) emit(ev LiveEvent) {
	s.mu.Lock()
	fn := s.onEvent
	s.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

func resultState(err error) State {
	if err != nil {
		return StateFailed
	}
	return StateCompleted
}
