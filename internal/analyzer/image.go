package analyzer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/llm"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
	"github.com/aswin0605itsme-droid/Eggai/internal/service"
)

// ImagePredictor streams a prose analysis of a photo.
type ImagePredictor interface {
	StreamImageAnalysis(ctx context.Context, img model.Image) (llm.Stream, error)
}

// ImageResult is a completed photo analysis.
type ImageResult struct {
	Entry model.LogEntry
	Text  string
	Label model.Label
}

// ImageAnalyzer analyzes uploaded egg photos.
type ImageAnalyzer struct {
	predictor ImagePredictor
	log       service.LogAppender
	logger    *slog.Logger
	onState   func(State)
}

// NewImageAnalyzer creates an analyzer that records results in log.
func NewImageAnalyzer(p ImagePredictor, log service.LogAppender, logger *slog.Logger) *ImageAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageAnalyzer{predictor: p, log: log, logger: logger}
}

// OnState registers an observer for state transitions.
func (a *ImageAnalyzer) OnState(fn func(State)) {
	a.onState = fn
}

// Analyze streams an analysis of img, calling onFragment for each piece of
// text as it arrives. On success exactly one log entry is appended; on
// failure nothing is logged.
func (a *ImageAnalyzer) Analyze(ctx context.Context, batchNumber string, img model.Image, onFragment func(string)) (*ImageResult, error) {
	batchNumber = strings.TrimSpace(batchNumber)
	if batchNumber == "" {
		return nil, common.InvalidInput("Please enter a batch number.")
	}
	if img.Empty() {
		return nil, common.InvalidInput("Please select an image to analyze.")
	}

	a.setState(StateCapturing)
	a.setState(StateSubmitted)

	stream, err := a.predictor.StreamImageAnalysis(ctx, img)
	if err != nil {
		return nil, a.fail(batchNumber, err)
	}
	defer func() { _ = stream.Close() }()

	a.setState(StateStreaming)

	var text strings.Builder
	for {
		frag, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, a.fail(batchNumber, err)
		}
		text.WriteString(frag)
		if onFragment != nil {
			onFragment(frag)
		}
	}

	full := text.String()
	label := ScrapeLabel(full)
	entry := a.log.Append(service.LogInput{BatchNumber: batchNumber, Prediction: label, Source: model.SourceImage})
	a.setState(StateCompleted)

	a.logger.Info("Image analyzed", "batch", batchNumber, "prediction", label, "chars", len(full))
	return &ImageResult{Entry: entry, Text: full, Label: label}, nil
}

func (a *ImageAnalyzer) fail(batchNumber string, err error) error {
	a.setState(StateFailed)
	a.logger.Warn("Image analysis failed", "batch", batchNumber, "error", err)
	return common.NewUserError("Failed to analyze the image. Please try again.", err)
}

func (a *ImageAnalyzer) setState(s State) {
	if a.onState != nil {
		a.onState(s)
	}
}
