// Package service defines the interfaces shared between application services.
package service

import (
	"io"
	"time"

	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

// LogInput is what an entry point supplies when recording an analysis.
type LogInput struct {
	BatchNumber string
	Prediction  model.Label
	Source      model.Source
}

// LogAppender records analyses. Entry points only ever see this side of the log.
type LogAppender interface {
	Append(in LogInput) model.LogEntry
}

// LogReader exposes the log for display and export.
type LogReader interface {
	Entries() []model.LogEntry
	Len() int
	WriteCSV(w io.Writer) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
