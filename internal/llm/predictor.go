package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
	"github.com/aswin0605itsme-droid/Eggai/internal/service"
)

// Observer receives per-call outcomes, typically for metrics.
type Observer interface {
	ObserveCall(operation, status string, elapsed time.Duration)
}

// FrameAnalysis is the structured result of a live frame analysis.
type FrameAnalysis struct {
	Prediction   model.Label `json:"prediction"`
	AnalysisText string      `json:"analysis_text"`
}

// SimulatedPrediction is the emulated classifier output for a feature vector.
type SimulatedPrediction struct {
	Prediction model.Label `json:"prediction"`
	Confidence float64     `json:"confidence"`
}

// Predictor exposes typed prediction calls on top of a Provider, adding
// rate limiting, retries and call observation.
type Predictor struct {
	provider    Provider
	logger      *slog.Logger
	rateLimiter *rateLimiter
	observer    Observer
	retryOpts   service.RetryOptions
}

// Option customizes a Predictor.
type Option func(*Predictor)

// WithObserver attaches a call observer.
func WithObserver(o Observer) Option {
	return func(p *Predictor) { p.observer = o }
}

// NewPredictor wraps provider.
func NewPredictor(provider Provider, cfg Config, logger *slog.Logger, opts ...Option) *Predictor {
	if logger == nil {
		logger = slog.Default()
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	p := &Predictor{
		provider:    provider,
		logger:      logger,
		rateLimiter: newRateLimiter(cfg.RateLimit),
		retryOpts:   retryOpts,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PredictMeasurement predicts chick sex from raw measurements. A missing or
// unrecognized label yields LabelUnknown; provider failures and malformed
// output are returned as errors.
func (p *Predictor) PredictMeasurement(ctx context.Context, m model.Measurement) (model.Label, error) {
	var out struct {
		PredictedSex string `json:"predicted_sex"`
	}
	err := p.structured(ctx, "predict_measurement", StructuredRequest{
		Profile: ProfileFast,
		Parts:   []Part{TextPart(measurementPrompt(m))},
		Schema:  measurementSchema,
	}, &out)
	if err != nil {
		return model.LabelError, err
	}

	label := decided(out.PredictedSex)
	p.logger.Debug("measurement predicted", "id", m.ID, "label", label)
	return label, nil
}

// AnalyzeFrame runs the structured live-frame analysis.
func (p *Predictor) AnalyzeFrame(ctx context.Context, img model.Image) (FrameAnalysis, error) {
	var out struct {
		Prediction   string `json:"prediction"`
		AnalysisText string `json:"analysis_text"`
	}
	err := p.structured(ctx, "analyze_frame", StructuredRequest{
		Profile: ProfileFast,
		Parts:   []Part{ImagePart(img), TextPart(framePrompt)},
		Schema:  frameSchema,
	}, &out)
	if err != nil {
		return FrameAnalysis{}, err
	}
	return FrameAnalysis{Prediction: decided(out.Prediction), AnalysisText: out.AnalysisText}, nil
}

// CheckAlignment scores how well a frame is set up for analysis.
func (p *Predictor) CheckAlignment(ctx context.Context, img model.Image) (model.AlignmentScore, error) {
	var out struct {
		Confidence float64 `json:"confidence"`
		Aligned    bool    `json:"is_aligned"`
	}
	err := p.structured(ctx, "check_alignment", StructuredRequest{
		Profile: ProfileFast,
		Parts:   []Part{ImagePart(img), TextPart(alignmentPrompt)},
		Schema:  alignmentSchema,
	}, &out)
	if err != nil {
		return model.AlignmentScore{}, err
	}
	return model.AlignmentScore{Confidence: clamp01(out.Confidence), Aligned: out.Aligned}, nil
}

// Simulate asks the provider to emulate a boosted-trees classifier over the
// derived features.
func (p *Predictor) Simulate(ctx context.Context, m model.Measurement, f model.DerivedFeatures) (SimulatedPrediction, error) {
	var out struct {
		Prediction string  `json:"prediction"`
		Confidence float64 `json:"confidence"`
	}
	err := p.structured(ctx, "simulate", StructuredRequest{
		Profile: ProfileFast,
		Parts:   []Part{TextPart(simulationPrompt(m, f))},
		Schema:  simulationSchema,
	}, &out)
	if err != nil {
		return SimulatedPrediction{}, err
	}
	return SimulatedPrediction{Prediction: decided(out.Prediction), Confidence: clamp01(out.Confidence)}, nil
}

// StreamImageAnalysis streams a prose analysis of an egg photo.
func (p *Predictor) StreamImageAnalysis(ctx context.Context, img model.Image) (Stream, error) {
	return p.stream(ctx, "analyze_image", StreamRequest{
		Profile: ProfileFast,
		Parts:   []Part{ImagePart(img), TextPart(imageAnalysisPrompt)},
	})
}

// Ask streams an answer to a free-form question, using the deep profile when deep is set.
func (p *Predictor) Ask(ctx context.Context, prompt string, deep bool) (Stream, error) {
	profile := ProfileFast
	if deep {
		profile = ProfileDeep
	}
	return p.stream(ctx, "ask", StreamRequest{Profile: profile, Parts: []Part{TextPart(prompt)}})
}

// DescribeVideo streams a conceptual summary for a video title or topic.
func (p *Predictor) DescribeVideo(ctx context.Context, topic string) (Stream, error) {
	return p.stream(ctx, "describe_video", StreamRequest{Profile: ProfileFast, Parts: []Part{TextPart(videoPrompt(topic))}})
}

// SearchWeb answers prompt with web-search grounding.
func (p *Predictor) SearchWeb(ctx context.Context, prompt string) (model.GroundedAnswer, error) {
	var answer model.GroundedAnswer
	err := p.call(ctx, "search_web", func() error {
		var err error
		answer, err = p.provider.GenerateGrounded(ctx, GroundedRequest{Prompt: prompt, Source: GroundWeb})
		return err
	})
	return answer, err
}

// SearchPlaces answers prompt with maps grounding around loc.
func (p *Predictor) SearchPlaces(ctx context.Context, prompt string, loc model.Coordinate) (model.GroundedAnswer, error) {
	var answer model.GroundedAnswer
	err := p.call(ctx, "search_places", func() error {
		var err error
		answer, err = p.provider.GenerateGrounded(ctx, GroundedRequest{Prompt: prompt, Source: GroundMaps, Location: &loc})
		return err
	})
	return answer, err
}

// GenerateImage renders one square JPEG for prompt.
func (p *Predictor) GenerateImage(ctx context.Context, prompt string) (model.Image, error) {
	var img model.Image
	err := p.call(ctx, "generate_image", func() error {
		var err error
		img, err = p.provider.GenerateImage(ctx, prompt)
		return err
	})
	return img, err
}

// Close releases the underlying provider.
func (p *Predictor) Close() error {
	return p.provider.Close()
}

func (p *Predictor) structured(ctx context.Context, op string, req StructuredRequest, out any) error {
	return p.call(ctx, op, func() error {
		raw, err := p.provider.GenerateStructured(ctx, req)
		if err != nil {
			return err
		}
		return decodeStructured(raw, out)
	})
}

// call runs operation under the rate limiter and retry policy.
func (p *Predictor) call(ctx context.Context, op string, operation func() error) error {
	start := time.Now()
	err := common.WithRetry(ctx, func() error {
		if err := p.rateLimiter.wait(ctx); err != nil {
			return &common.RetryableError{Err: err, Retryable: false}
		}
		return operation()
	}, p.retryOpts)
	p.observe(op, err, time.Since(start))

	if err != nil {
		p.logger.Warn("provider call failed", "operation", op, "error", err)
		return wrapProviderErr(err)
	}
	return nil
}

func (p *Predictor) stream(ctx context.Context, op string, req StreamRequest) (Stream, error) {
	if err := p.rateLimiter.wait(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	s, err := p.provider.GenerateStream(ctx, req)
	if err != nil {
		p.observe(op, err, time.Since(start))
		return nil, wrapProviderErr(err)
	}
	return &observedStream{Stream: s, done: func(err error) {
		p.observe(op, err, time.Since(start))
	}}, nil
}

func (p *Predictor) observe(op string, err error, elapsed time.Duration) {
	if p.observer == nil {
		return
	}
	p.observer.ObserveCall(op, callStatus(err), elapsed)
}

func callStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, common.ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

// observedStream reports the stream outcome once, on EOF or first error.
type observedStream struct {
	Stream
	done     func(error)
	reported bool
}

func (s *observedStream) Next() (string, error) {
	frag, err := s.Stream.Next()
	if err != nil && !s.reported {
		s.reported = true
		if errors.Is(err, io.EOF) {
			s.done(nil)
		} else {
			s.done(err)
		}
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return frag, wrapProviderErr(err)
	}
	return frag, err
}

// wrapProviderErr ensures provider failures match ErrProviderFailure unless
// they are already classified.
func wrapProviderErr(err error) error {
	switch {
	case errors.Is(err, common.ErrProviderFailure),
		errors.Is(err, common.ErrMalformedResponse),
		errors.Is(err, common.ErrGeolocation),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", common.ErrProviderFailure, err)
	}
}

// decided keeps male and female and maps anything else to unknown.
func decided(s string) model.Label {
	label := model.ParseLabel(s)
	if !label.IsDecided() {
		return model.LabelUnknown
	}
	return label
}
