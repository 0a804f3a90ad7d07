package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

// geminiProvider implements Provider on the Gemini API. Structured and
// streaming calls go through the genai SDK; grounded search and image
// generation go through the REST surface.
type geminiProvider struct {
	client *genai.Client
	rest   *restClient
	logger *slog.Logger
	models map[Profile]string
}

func newGeminiProvider(ctx context.Context, cfg Config, logger *slog.Logger) (Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: Gemini API key is required (set llm.api_key or GEMINI_API_KEY)", common.ErrMissingConfig)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiProvider{
		client: client,
		rest:   newRESTClient(cfg, nil),
		logger: logger,
		models: map[Profile]string{
			ProfileFast: cfg.Model,
			ProfileDeep: cfg.DeepModel,
		},
	}, nil
}

func (p *geminiProvider) modelFor(profile Profile) *genai.GenerativeModel {
	name, ok := p.models[profile]
	if !ok || name == "" {
		name = p.models[ProfileFast]
	}
	return p.client.GenerativeModel(name)
}

func (p *geminiProvider) GenerateStructured(ctx context.Context, req StructuredRequest) (json.RawMessage, error) {
	m := p.modelFor(req.Profile)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
		ResponseSchema:   toGenaiSchema(req.Schema),
	}

	resp, err := m.GenerateContent(ctx, toGenaiParts(req.Parts)...)
	if err != nil {
		return nil, classifySDKError(err)
	}

	txt := responseText(resp)
	p.logger.Debug("gemini structured response", "profile", req.Profile, "bytes", len(txt))
	return toRawJSON(txt)
}

func (p *geminiProvider) GenerateStream(ctx context.Context, req StreamRequest) (Stream, error) {
	m := p.modelFor(req.Profile)
	return &genaiStream{iter: m.GenerateContentStream(ctx, toGenaiParts(req.Parts)...)}, nil
}

func (p *geminiProvider) GenerateGrounded(ctx context.Context, req GroundedRequest) (model.GroundedAnswer, error) {
	return p.rest.grounded(ctx, p.models[ProfileFast], req)
}

func (p *geminiProvider) GenerateImage(ctx context.Context, prompt string) (model.Image, error) {
	return p.rest.image(ctx, prompt)
}

func (p *geminiProvider) Close() error {
	return p.client.Close()
}

// genaiStream adapts the SDK iterator to Stream.
type genaiStream struct {
	iter *genai.GenerateContentResponseIterator
	done bool
}

func (s *genaiStream) Next() (string, error) {
	for !s.done {
		resp, err := s.iter.Next()
		if errors.Is(err, iterator.Done) {
			s.done = true
			break
		}
		if err != nil {
			s.done = true
			return "", classifySDKError(err)
		}
		if txt := responseText(resp); txt != "" {
			return txt, nil
		}
	}
	return "", io.EOF
}

func (s *genaiStream) Close() error {
	s.done = true
	return nil
}

func toGenaiParts(parts []Part) []genai.Part {
	out := make([]genai.Part, 0, len(parts))
	for _, part := range parts {
		if part.Image != nil {
			out = append(out, genai.Blob{MIMEType: part.Image.MIMEType, Data: part.Image.Data})
			continue
		}
		out = append(out, genai.Text(part.Text))
	}
	return out
}

func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
	}
	switch s.Type {
	case TypeObject:
		out.Type = genai.TypeObject
	case TypeNumber:
		out.Type = genai.TypeNumber
	case TypeBoolean:
		out.Type = genai.TypeBoolean
	default:
		out.Type = genai.TypeString
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	return out
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		// Only the first candidate is used.
		break
	}
	return b.String()
}

// classifySDKError marks transient gRPC failures as retryable.
func classifySDKError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	switch status.Code(err) {
	case codes.ResourceExhausted:
		return &common.RetryableError{Err: fmt.Errorf("%w: %w", common.ErrRateLimit, err), Retryable: true}
	case codes.Unavailable, codes.Internal, codes.DeadlineExceeded, codes.Aborted:
		return &common.RetryableError{Err: fmt.Errorf("%w: %w", common.ErrProviderFailure, err), Retryable: true}
	default:
		return fmt.Errorf("%w: %w", common.ErrProviderFailure, err)
	}
}

func ptrFloat32(f float32) *float32 { return &f }
