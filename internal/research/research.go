// Package research routes free-text questions to the provider call shape
// selected by a mode: deep reasoning, web search, places search or a video
// concept summary.
package research

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/llm"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

// Mode selects how a query is answered.
type Mode string

// Research modes.
const (
	ModeThink Mode = "think"
	ModeWeb   Mode = "web"
	ModeMaps  Mode = "maps"
	ModeVideo Mode = "video"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeThink, ModeWeb, ModeMaps, ModeVideo}

// ParseMode resolves a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown research mode %q", common.ErrInvalidInput, s)
}

// Streams reports whether answers in this mode arrive as text fragments.
func (m Mode) Streams() bool {
	return m == ModeThink || m == ModeVideo
}

// Predictor is the subset of llm.Predictor the orchestrator uses.
type Predictor interface {
	Ask(ctx context.Context, prompt string, deep bool) (llm.Stream, error)
	DescribeVideo(ctx context.Context, topic string) (llm.Stream, error)
	SearchWeb(ctx context.Context, prompt string) (model.GroundedAnswer, error)
	SearchPlaces(ctx context.Context, prompt string, loc model.Coordinate) (model.GroundedAnswer, error)
}

// Result is the answer to one query.
type Result struct {
	Mode      Mode             `json:"mode"`
	Prompt    string           `json:"prompt"`
	Text      string           `json:"text"`
	Citations []model.Citation `json:"citations,omitempty"`
}

// Orchestrator answers one query at a time in its current mode.
type Orchestrator struct {
	predictor Predictor
	locator   Locator
	logger    *slog.Logger
	last      *Result
	mode      Mode
	gen       uint64
	inFlight  bool
	mu        sync.Mutex
}

// New creates an orchestrator in think mode. A nil locator disables maps queries.
func New(p Predictor, locator Locator, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if locator == nil {
		locator = StaticLocator{}
	}
	return &Orchestrator{predictor: p, locator: locator, logger: logger, mode: ModeThink}
}

// Mode returns the current mode.
func (o *Orchestrator) Mode() Mode {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mode
}

// SetMode switches mode and discards the previous result.
func (o *Orchestrator) SetMode(m Mode) error {
	if _, err := ParseMode(string(m)); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.mode = m
	o.last = nil
	o.gen++
	return nil
}

// Last returns the most recent result in the current mode, or nil.
func (o *Orchestrator) Last() *Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

// Query answers prompt in the current mode. Streaming modes call onFragment
// for each piece of text as it arrives. A second query while one is running
// returns ErrBusy.
func (o *Orchestrator) Query(ctx context.Context, prompt string, onFragment func(string)) (*Result, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, common.InvalidInput("Please enter a prompt.")
	}

	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return nil, common.NewUserError("A query is already running.", common.ErrBusy)
	}
	o.inFlight = true
	o.last = nil
	mode, gen := o.mode, o.gen
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.inFlight = false
		o.mu.Unlock()
	}()

	res, err := o.dispatch(ctx, mode, prompt, onFragment)
	if err != nil {
		o.logger.Warn("Research query failed", "mode", mode, "error", err)
		return nil, err
	}

	o.mu.Lock()
	if gen == o.gen {
		o.last = res
	}
	o.mu.Unlock()

	o.logger.Info("Research query answered", "mode", mode, "chars", len(res.Text), "citations", len(res.Citations))
	return res, nil
}

func (o *Orchestrator) dispatch(ctx context.Context, mode Mode, prompt string, onFragment func(string)) (*Result, error) {
	res := &Result{Mode: mode, Prompt: prompt}

	switch mode {
	case ModeThink, ModeVideo:
		var stream llm.Stream
		var err error
		if mode == ModeThink {
			stream, err = o.predictor.Ask(ctx, prompt, true)
		} else {
			stream, err = o.predictor.DescribeVideo(ctx, prompt)
		}
		if err != nil {
			return nil, queryFailed(err)
		}
		text, err := drain(stream, onFragment)
		if err != nil {
			return nil, queryFailed(err)
		}
		res.Text = text

	case ModeWeb:
		answer, err := o.predictor.SearchWeb(ctx, prompt)
		if err != nil {
			return nil, queryFailed(err)
		}
		res.Text, res.Citations = answer.Text, answer.Citations

	case ModeMaps:
		loc, err := o.locator.Locate(ctx)
		if err != nil {
			if !errors.Is(err, common.ErrGeolocation) {
				err = fmt.Errorf("%w: %w", common.ErrGeolocation, err)
			}
			return nil, common.NewUserError("Location access denied. Please enable location access and try again.", err)
		}
		answer, err := o.predictor.SearchPlaces(ctx, prompt, loc)
		if err != nil {
			return nil, common.NewUserError("Could not retrieve map data. Please try again.", err)
		}
		res.Text, res.Citations = answer.Text, answer.Citations

	default:
		return nil, fmt.Errorf("%w: unknown research mode %q", common.ErrInvalidInput, mode)
	}
	return res, nil
}

func drain(stream llm.Stream, onFragment func(string)) (string, error) {
	defer func() { _ = stream.Close() }()

	var text strings.Builder
	for {
		frag, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return text.String(), nil
		}
		if err != nil {
			return "", err
		}
		text.WriteString(frag)
		if onFragment != nil {
			onFragment(frag)
		}
	}
}

func queryFailed(err error) error {
	return common.NewUserError("An error occurred. Please try again.", err)
}
