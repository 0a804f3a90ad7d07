// Package main provides a demo program for the live scan TUI. It needs no
// camera or API key: alignment sweeps up and down and predictions alternate.
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sync/atomic"
	"time"

	"github.com/aswin0605itsme-droid/Eggai/internal/analyzer"
	"github.com/aswin0605itsme-droid/Eggai/internal/camera"
	"github.com/aswin0605itsme-droid/Eggai/internal/llm"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
	"github.com/aswin0605itsme-droid/Eggai/internal/predlog"
	"github.com/aswin0605itsme-droid/Eggai/internal/tui"
)

// demoPredictor sweeps alignment along a slow sine wave.
type demoPredictor struct {
	start    time.Time
	captures atomic.Int64
}

func (d *demoPredictor) CheckAlignment(ctx context.Context, _ model.Image) (model.AlignmentScore, error) {
	select {
	case <-ctx.Done():
		return model.AlignmentScore{}, ctx.Err()
	case <-time.After(150 * time.Millisecond):
	}
	phase := time.Since(d.start).Seconds() / 3
	c := 0.5 + 0.48*math.Sin(phase)
	return model.AlignmentScore{Confidence: c, Aligned: c > 0.8}, nil
}

func (d *demoPredictor) AnalyzeFrame(ctx context.Context, _ model.Image) (llm.FrameAnalysis, error) {
	select {
	case <-ctx.Done():
		return llm.FrameAnalysis{}, ctx.Err()
	case <-time.After(time.Second):
	}
	if d.captures.Add(1)%2 == 0 {
		return llm.FrameAnalysis{Prediction: model.LabelFemale, AnalysisText: "Rounded outline with a shape index near 0.78; both ends are similar in curvature."}, nil
	}
	return llm.FrameAnalysis{Prediction: model.LabelMale, AnalysisText: "Elongated outline with a pointed narrow end; shape index near 0.72."}, nil
}

func main() {
	ctx := context.Background()

	log := predlog.New()
	source := camera.NewStaticSource(model.Image{MIMEType: "image/jpeg", Data: []byte{0xFF, 0xD8}})
	session := analyzer.NewLiveSession(source, &demoPredictor{start: time.Now()}, log, analyzer.LiveConfig{
		Interval:  500 * time.Millisecond,
		Gate:      0.8,
		Threshold: 0.95,
	}, nil)
	session.SetBatchNumber("DEMO-1")

	theme := "default"
	if len(os.Args) > 1 {
		theme = os.Args[1]
	}

	if err := tui.RunLiveScan(ctx, tui.ScanConfig{Session: session, Log: log, Theme: theme}); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
