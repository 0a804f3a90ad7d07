package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Config holds configuration for the prediction provider.
type Config struct {
	Provider   string
	APIKey     string
	Model      string
	DeepModel  string
	ImageModel string
	BaseURL    string
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
	RateLimit  int
}

// NewProvider creates a provider based on the configured name.
// The "mock" provider answers deterministically without network access.
func NewProvider(ctx context.Context, cfg Config, logger *slog.Logger) (Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch strings.ToLower(cfg.Provider) {
	case "gemini", "":
		return newGeminiProvider(ctx, cfg, logger)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
