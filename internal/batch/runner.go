// Package batch runs measurement predictions over CSV input, one row at a time.
package batch

import (
	"context"
	"log/slog"
	"time"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

// DefaultDelay is the pause between consecutive provider calls.
const DefaultDelay = 3100 * time.Millisecond

// Predictor predicts a label for one measurement row.
type Predictor interface {
	PredictMeasurement(ctx context.Context, m model.Measurement) (model.Label, error)
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// RowObserver is notified of every settled row.
type RowObserver interface {
	ObserveBatchRow(label model.Label)
}

// Progress is published after each row settles.
type Progress struct {
	Results []model.ResultRow
	Done    int
	Total   int
}

// Summary describes a finished or canceled run.
type Summary struct {
	Counts   map[model.Label]int
	Results  []model.ResultRow
	Elapsed  time.Duration
	Canceled bool
}

// Runner processes rows strictly sequentially with a fixed inter-call delay.
type Runner struct {
	predictor Predictor
	sleep     Sleeper
	logger    *slog.Logger
	observer  RowObserver
	delay     time.Duration
}

// Option customizes a Runner.
type Option func(*Runner)

// WithDelay sets the pause between consecutive calls.
func WithDelay(d time.Duration) Option {
	return func(r *Runner) { r.delay = d }
}

// WithSleeper replaces the wall-clock sleeper.
func WithSleeper(s Sleeper) Option {
	return func(r *Runner) { r.sleep = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithObserver attaches a row observer.
func WithObserver(o RowObserver) Option {
	return func(r *Runner) { r.observer = o }
}

// NewRunner creates a batch runner.
func NewRunner(p Predictor, opts ...Option) *Runner {
	r := &Runner{
		predictor: p,
		sleep:     sleepCtx,
		logger:    slog.Default(),
		delay:     DefaultDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run predicts every row in order. At most one call is in flight, and the
// configured delay elapses after each call settles before the next begins.
// A failed row is recorded as LabelError and the run continues. Cancellation
// is checked between rows; a canceled run returns the rows settled so far
// together with the context error.
func (r *Runner) Run(ctx context.Context, rows []model.Measurement, onProgress func(Progress)) (*Summary, error) {
	if len(rows) == 0 {
		return nil, common.InvalidInput("No data to process. Please upload a valid CSV file.")
	}

	start := time.Now()
	summary := &Summary{
		Counts:  make(map[model.Label]int, 4),
		Results: make([]model.ResultRow, 0, len(rows)),
	}

	r.logger.Info("Starting batch run", "rows", len(rows), "delay", r.delay)

	for i, row := range rows {
		if i > 0 && r.delay > 0 {
			if err := r.sleep(ctx, r.delay); err != nil {
				return r.canceled(summary, start, err)
			}
		}
		if err := ctx.Err(); err != nil {
			return r.canceled(summary, start, err)
		}

		label, err := r.predictor.PredictMeasurement(ctx, row)
		if err != nil {
			if ctx.Err() != nil {
				// The call was cut short by cancellation, not settled by the provider.
				return r.canceled(summary, start, ctx.Err())
			}
			r.logger.Warn("Failed to predict row", "index", i, "id", row.ID, "error", err)
			label = model.LabelError
		}

		summary.Results = append(summary.Results, model.ResultRow{Measurement: row, PredictedSex: label})
		summary.Counts[label]++
		if r.observer != nil {
			r.observer.ObserveBatchRow(label)
		}

		if onProgress != nil {
			snapshot := make([]model.ResultRow, len(summary.Results))
			copy(snapshot, summary.Results)
			onProgress(Progress{Results: snapshot, Done: i + 1, Total: len(rows)})
		}
	}

	summary.Elapsed = time.Since(start)
	r.logger.Info("Batch run complete",
		"rows", len(rows),
		"male", summary.Counts[model.LabelMale],
		"female", summary.Counts[model.LabelFemale],
		"unknown", summary.Counts[model.LabelUnknown],
		"error", summary.Counts[model.LabelError],
		"elapsed", summary.Elapsed)
	return summary, nil
}

func (r *Runner) canceled(summary *Summary, start time.Time, err error) (*Summary, error) {
	summary.Canceled = true
	summary.Elapsed = time.Since(start)
	r.logger.Info("Batch run canceled", "completed", len(summary.Results))
	return summary, err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
