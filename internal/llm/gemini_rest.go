package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

// restClient calls the Gemini REST endpoints the SDK does not cover:
// search/maps grounding tools and Imagen prediction.
type restClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	imageModel string
}

func newRESTClient(cfg Config, httpClient *http.Client) *restClient {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &restClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		imageModel: cfg.ImageModel,
	}
}

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type restPart struct {
	Text string `json:"text,omitempty"`
}

type restContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []restPart `json:"parts"`
}

type restLatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type restToolConfig struct {
	RetrievalConfig struct {
		LatLng restLatLng `json:"latLng"`
	} `json:"retrievalConfig"`
}

type generateRequest struct {
	ToolConfig *restToolConfig  `json:"toolConfig,omitempty"`
	Contents   []restContent    `json:"contents"`
	Tools      []map[string]any `json:"tools,omitempty"`
}

type groundingSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type generateResponse struct {
	Candidates []struct {
		Content           restContent `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web  *groundingSource `json:"web,omitempty"`
				Maps *groundingSource `json:"maps,omitempty"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata,omitempty"`
	} `json:"candidates"`
}

func (c *restClient) grounded(ctx context.Context, modelName string, req GroundedRequest) (model.GroundedAnswer, error) {
	body := generateRequest{
		Contents: []restContent{{Role: "user", Parts: []restPart{{Text: req.Prompt}}}},
	}

	switch req.Source {
	case GroundMaps:
		if req.Location == nil {
			return model.GroundedAnswer{}, fmt.Errorf("%w: maps grounding requires a location", common.ErrGeolocation)
		}
		body.Tools = []map[string]any{{"googleMaps": map[string]any{}}}
		tc := &restToolConfig{}
		tc.RetrievalConfig.LatLng = restLatLng{Latitude: req.Location.Latitude, Longitude: req.Location.Longitude}
		body.ToolConfig = tc
	default:
		body.Tools = []map[string]any{{"google_search": map[string]any{}}}
	}

	var resp generateResponse
	if err := c.post(ctx, fmt.Sprintf("/models/%s:generateContent", modelName), body, &resp); err != nil {
		return model.GroundedAnswer{}, err
	}
	if len(resp.Candidates) == 0 {
		return model.GroundedAnswer{}, fmt.Errorf("%w: no candidates returned", common.ErrMalformedResponse)
	}

	cand := resp.Candidates[0]
	var text strings.Builder
	for _, part := range cand.Content.Parts {
		text.WriteString(part.Text)
	}

	answer := model.GroundedAnswer{Text: text.String(), Citations: []model.Citation{}}
	if cand.GroundingMetadata != nil {
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			src := chunk.Web
			if src == nil {
				src = chunk.Maps
			}
			if src == nil {
				continue
			}
			answer.Citations = append(answer.Citations, model.Citation{URI: src.URI, Title: src.Title})
		}
	}
	return answer, nil
}

type imagenRequest struct {
	Instances  []map[string]string `json:"instances"`
	Parameters map[string]any      `json:"parameters"`
}

type imagenResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
}

func (c *restClient) image(ctx context.Context, prompt string) (model.Image, error) {
	body := imagenRequest{
		Instances: []map[string]string{{"prompt": prompt}},
		Parameters: map[string]any{
			"sampleCount":    1,
			"aspectRatio":    "1:1",
			"outputMimeType": "image/jpeg",
		},
	}

	var resp imagenResponse
	if err := c.post(ctx, fmt.Sprintf("/models/%s:predict", c.imageModel), body, &resp); err != nil {
		return model.Image{}, err
	}
	if len(resp.Predictions) == 0 || resp.Predictions[0].BytesBase64Encoded == "" {
		return model.Image{}, fmt.Errorf("%w: no image returned", common.ErrMalformedResponse)
	}

	data, err := base64.StdEncoding.DecodeString(resp.Predictions[0].BytesBase64Encoded)
	if err != nil {
		return model.Image{}, fmt.Errorf("%w: bad image payload: %v", common.ErrMalformedResponse, err)
	}
	mime := resp.Predictions[0].MimeType
	if mime == "" {
		mime = "image/jpeg"
	}
	return model.Image{MIMEType: mime, Data: data}, nil
}

func (c *restClient) post(ctx context.Context, path string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &common.RetryableError{Err: fmt.Errorf("%w: request failed: %w", common.ErrProviderFailure, err), Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", common.ErrProviderFailure, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &common.RetryableError{Err: fmt.Errorf("%w: %s", common.ErrRateLimit, truncate(respBody)), Retryable: true}
	case resp.StatusCode >= 500:
		return &common.RetryableError{
			Err:       fmt.Errorf("%w: gemini API error (status %d): %s", common.ErrProviderFailure, resp.StatusCode, truncate(respBody)),
			Retryable: true,
		}
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: gemini API error (status %d): %s", common.ErrProviderFailure, resp.StatusCode, truncate(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: failed to parse response: %v", common.ErrMalformedResponse, err)
	}
	return nil
}

func truncate(b []byte) string {
	const limit = 200
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
