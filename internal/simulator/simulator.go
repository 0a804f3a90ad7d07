// Package simulator runs the boosted-trees model emulation: measurements are
// turned into derived features and the provider is asked to play the part of
// the trained classifier.
package simulator

import (
	"context"
	"log/slog"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/llm"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
	"github.com/aswin0605itsme-droid/Eggai/internal/morphometry"
)

// Predictor is the subset of llm.Predictor the simulator uses.
type Predictor interface {
	Simulate(ctx context.Context, m model.Measurement, f model.DerivedFeatures) (llm.SimulatedPrediction, error)
}

// Report is a simulated classification with the features it was based on.
type Report struct {
	Measurement model.Measurement     `json:"measurement"`
	Features    model.DerivedFeatures `json:"features"`
	Prediction  model.Label           `json:"prediction"`
	Confidence  float64               `json:"confidence"`
}

// Simulator produces simulated classifier reports.
type Simulator struct {
	predictor Predictor
	logger    *slog.Logger
}

// New creates a Simulator.
func New(p Predictor, logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{predictor: p, logger: logger}
}

// Predict derives features for m and returns the simulated prediction.
// Measurements without a positive long axis and mass are rejected before
// any provider call.
func (s *Simulator) Predict(ctx context.Context, m model.Measurement) (*Report, error) {
	features, ok := morphometry.Compute(m)
	if !ok {
		return nil, common.InvalidInput("long axis and mass cannot be zero")
	}

	sim, err := s.predictor.Simulate(ctx, m, features)
	if err != nil {
		s.logger.Warn("Simulation failed", "mass", m.Mass, "long_axis", m.LongAxis, "error", err)
		return nil, common.NewUserError("Failed to get a prediction from the model. Please try again.", err)
	}

	s.logger.Debug("Simulation complete", "prediction", sim.Prediction, "confidence", sim.Confidence)
	return &Report{
		Measurement: m,
		Features:    features,
		Prediction:  sim.Prediction,
		Confidence:  sim.Confidence,
	}, nil
}
