package llm

import (
	"context"
	"encoding/json"

	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

// Profile selects the model tier a call runs against.
type Profile string

// Profiles.
const (
	ProfileFast Profile = "fast"
	ProfileDeep Profile = "deep"
)

// GroundingSource selects the retrieval tool for a grounded call.
type GroundingSource string

// Grounding sources.
const (
	GroundWeb  GroundingSource = "web"
	GroundMaps GroundingSource = "maps"
)

// Part is one piece of multimodal request content. Exactly one of Text or
// Image is set.
type Part struct {
	Image *model.Image
	Text  string
}

// TextPart wraps a prompt string.
func TextPart(s string) Part { return Part{Text: s} }

// ImagePart wraps an encoded image.
func ImagePart(img model.Image) Part { return Part{Image: &img} }

// StructuredRequest asks for a single JSON document matching Schema.
type StructuredRequest struct {
	Schema  *Schema
	Profile Profile
	Parts   []Part
}

// StreamRequest asks for free text delivered incrementally.
type StreamRequest struct {
	Profile Profile
	Parts   []Part
}

// GroundedRequest asks for text grounded in web or maps retrieval.
// Location is required for GroundMaps.
type GroundedRequest struct {
	Location *model.Coordinate
	Prompt   string
	Source   GroundingSource
}

// Stream yields text fragments. Next returns io.EOF once the stream is exhausted.
type Stream interface {
	Next() (string, error)
	Close() error
}

// Provider is a generative model backend. Implementations must be safe for
// concurrent use.
type Provider interface {
	GenerateStructured(ctx context.Context, req StructuredRequest) (json.RawMessage, error)
	GenerateStream(ctx context.Context, req StreamRequest) (Stream, error)
	GenerateGrounded(ctx context.Context, req GroundedRequest) (model.GroundedAnswer, error)
	GenerateImage(ctx context.Context, prompt string) (model.Image, error)
	Close() error
}
