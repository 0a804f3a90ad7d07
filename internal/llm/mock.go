package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"strings"
	"sync"

	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

// MockCall records one request made to a MockProvider.
type MockCall struct {
	Kind     string
	Profile  Profile
	Prompt   string
	Source   GroundingSource
	HasImage bool
}

// MockProvider is a deterministic Provider for tests and offline use.
// Answers are derived from a hash of the request so repeated inputs agree.
// Any of the function fields may be set to script specific behavior.
type MockProvider struct {
	StructuredFunc func(ctx context.Context, req StructuredRequest) (json.RawMessage, error)
	StreamFunc     func(ctx context.Context, req StreamRequest) ([]string, error)
	GroundedFunc   func(ctx context.Context, req GroundedRequest) (model.GroundedAnswer, error)
	ImageFunc      func(ctx context.Context, prompt string) (model.Image, error)

	calls       []MockCall
	inFlight    int
	maxInFlight int
	mu          sync.Mutex
}

// NewMockProvider creates a mock with default behavior.
func NewMockProvider() *MockProvider {
	return &MockProvider{calls: make([]MockCall, 0)}
}

// Calls returns a copy of the recorded calls.
func (m *MockProvider) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many calls of kind were made; an empty kind counts all.
func (m *MockProvider) CallCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if kind == "" {
		return len(m.calls)
	}
	n := 0
	for _, c := range m.calls {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// MaxInFlight reports the highest number of concurrently running calls observed.
func (m *MockProvider) MaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}

func (m *MockProvider) enter(call MockCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
}

func (m *MockProvider) leave() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight--
}

// GenerateStructured returns scripted or hash-derived JSON for the request schema.
func (m *MockProvider) GenerateStructured(ctx context.Context, req StructuredRequest) (json.RawMessage, error) {
	prompt, hasImage := flatten(req.Parts)
	m.enter(MockCall{Kind: "structured", Profile: req.Profile, Prompt: prompt, HasImage: hasImage})
	defer m.leave()

	if m.StructuredFunc != nil {
		return m.StructuredFunc(ctx, req)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h := hashParts(req.Parts)
	female := h%2 == 0
	switch req.Schema {
	case measurementSchema:
		return jsonf(`{"predicted_sex":%q}`, pick(female, "female", "male")), nil
	case frameSchema:
		return jsonf(`{"prediction":%q,"analysis_text":"Mock morphological analysis of the aligned egg."}`, pick(female, "Female", "Male")), nil
	case alignmentSchema:
		return json.RawMessage(`{"confidence":0.9,"is_aligned":true}`), nil
	case simulationSchema:
		return jsonf(`{"prediction":%q,"confidence":%.2f}`, pick(female, "female", "male"), 0.55+float64(h%40)/100), nil
	default:
		return json.RawMessage(`{}`), nil
	}
}

// GenerateStream returns scripted or canned fragments.
func (m *MockProvider) GenerateStream(ctx context.Context, req StreamRequest) (Stream, error) {
	prompt, hasImage := flatten(req.Parts)
	m.enter(MockCall{Kind: "stream", Profile: req.Profile, Prompt: prompt, HasImage: hasImage})
	defer m.leave()

	if m.StreamFunc != nil {
		frags, err := m.StreamFunc(ctx, req)
		if err != nil {
			return nil, err
		}
		return NewSliceStream(frags...), nil
	}

	verdict := pick(hashParts(req.Parts)%2 == 0, "Female", "Male")
	return NewSliceStream(
		"Mock analysis: the egg outline was measured for shape index and ovality. ",
		"Based on these features the most likely outcome is ",
		verdict+".",
	), nil
}

// GenerateGrounded returns a scripted or canned grounded answer.
func (m *MockProvider) GenerateGrounded(ctx context.Context, req GroundedRequest) (model.GroundedAnswer, error) {
	m.enter(MockCall{Kind: "grounded", Prompt: req.Prompt, Source: req.Source})
	defer m.leave()

	if m.GroundedFunc != nil {
		return m.GroundedFunc(ctx, req)
	}
	return model.GroundedAnswer{
		Text: fmt.Sprintf("Mock %s results for %q.", req.Source, req.Prompt),
		Citations: []model.Citation{
			{URI: "https://example.org/egg-morphology", Title: "Egg morphology and chick sex"},
		},
	}, nil
}

// GenerateImage returns a scripted image or a tiny solid JPEG.
func (m *MockProvider) GenerateImage(ctx context.Context, prompt string) (model.Image, error) {
	m.enter(MockCall{Kind: "image", Prompt: prompt})
	defer m.leave()

	if m.ImageFunc != nil {
		return m.ImageFunc(ctx, prompt)
	}
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: 0xF5, G: 0xE6, B: 0xC8, A: 0xFF})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return model.Image{}, err
	}
	return model.Image{MIMEType: "image/jpeg", Data: buf.Bytes()}, nil
}

// Close is a no-op.
func (m *MockProvider) Close() error { return nil }

// SliceStream is a Stream over a fixed list of fragments.
type SliceStream struct {
	frags []string
	pos   int
}

// NewSliceStream creates a stream yielding frags in order.
func NewSliceStream(frags ...string) *SliceStream {
	return &SliceStream{frags: frags}
}

// Next returns the next fragment or io.EOF.
func (s *SliceStream) Next() (string, error) {
	if s.pos >= len(s.frags) {
		return "", io.EOF
	}
	f := s.frags[s.pos]
	s.pos++
	return f, nil
}

// Close is a no-op.
func (s *SliceStream) Close() error { return nil }

func flatten(parts []Part) (string, bool) {
	var texts []string
	hasImage := false
	for _, p := range parts {
		if p.Image != nil {
			hasImage = true
			continue
		}
		texts = append(texts, p.Text)
	}
	return strings.Join(texts, "\n"), hasImage
}

func hashParts(parts []Part) uint32 {
	h := fnv.New32a()
	for _, p := range parts {
		if p.Image != nil {
			_, _ = h.Write(p.Image.Data)
			continue
		}
		_, _ = h.Write([]byte(p.Text))
	}
	return h.Sum32()
}

func jsonf(format string, args ...any) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(format, args...))
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
