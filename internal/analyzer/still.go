package analyzer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
	"github.com/aswin0605itsme-droid/Eggai/internal/service"
)

// StillScanner handles frames submitted one at a time, without a camera
// session. A capture scores the frame first and applies the same gate as a
// manual live capture.
type StillScanner struct {
	predictor FramePredictor
	log       service.LogAppender
	logger    *slog.Logger
	gate      float64
}

// NewStillScanner creates a scanner. A non-positive gate uses the live default.
func NewStillScanner(p FramePredictor, log service.LogAppender, gate float64, logger *slog.Logger) *StillScanner {
	if gate <= 0 {
		gate = DefaultLiveConfig().Gate
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StillScanner{predictor: p, log: log, gate: gate, logger: logger}
}

// Alignment scores how well the egg in img is positioned.
func (s *StillScanner) Alignment(ctx context.Context, img model.Image) (model.AlignmentScore, error) {
	if img.Empty() {
		return model.AlignmentScore{}, common.InvalidInput("Please provide a frame.")
	}
	score, err := s.predictor.CheckAlignment(ctx, img)
	if err != nil {
		return model.AlignmentScore{}, common.NewUserError("Alignment check failed. Please try again.", err)
	}
	return score, nil
}

// Capture scores img, refuses it below the gate, and otherwise analyzes and
// logs it as a live scan.
func (s *StillScanner) Capture(ctx context.Context, batchNumber string, img model.Image) (*CaptureResult, model.AlignmentScore, error) {
	batchNumber = strings.TrimSpace(batchNumber)
	if batchNumber == "" {
		return nil, model.AlignmentScore{}, common.InvalidInput("Please enter a batch number first.")
	}

	score, err := s.Alignment(ctx, img)
	if err != nil {
		return nil, score, err
	}
	if score.Confidence < s.gate {
		return nil, score, common.InvalidInput("Improve alignment to analyze.")
	}

	analysis, err := s.predictor.AnalyzeFrame(ctx, img)
	if err != nil {
		s.logger.Warn("Frame analysis failed", "batch", batchNumber, "error", err)
		return nil, score, common.NewUserError("Frame analysis failed. The AI couldn't determine a result. Please try again with a clearer image.", err)
	}

	prediction := analysis.Prediction
	if prediction == "" {
		prediction = model.LabelUnknown
	}
	entry := s.log.Append(service.LogInput{BatchNumber: batchNumber, Prediction: prediction, Source: model.SourceLiveScan})
	s.logger.Info("Frame analyzed", "batch", batchNumber, "prediction", prediction, "confidence", score.Confidence)
	return &CaptureResult{Entry: entry, Analysis: analysis}, score, nil
}
