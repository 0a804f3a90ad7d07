package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
)

// LLMSettings configures the prediction provider.
type LLMSettings struct {
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

// ScanSettings configures the live scan session.
type ScanSettings struct {
	FramesDir string
	Interval  time.Duration
	Gate      float64
	Threshold float64
}

// Settings is the resolved application configuration.
type Settings struct {
	LLM         LLMSettings
	Scan        ScanSettings
	ServerAddr  string
	BatchDelay  time.Duration
	Location    *Location
	LogLevel    string
	LogFormat   string
	MetricsPath string
}

// Location is a fixed research location used in place of device geolocation.
type Location struct {
	Latitude  float64
	Longitude float64
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.model", "gemini-2.5-flash")
	v.SetDefault("llm.deep_model", "gemini-2.5-pro")
	v.SetDefault("llm.image_model", "imagen-4.0-generate-001")
	v.SetDefault("llm.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay", "1s")
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.rate_limit", 20)
	v.SetDefault("batch.delay", "3100ms")
	v.SetDefault("scan.frames_dir", "~/.cache/eggai/frames")
	v.SetDefault("scan.interval", "1500ms")
	v.SetDefault("scan.gate", 0.8)
	v.SetDefault("scan.threshold", 0.9)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.metrics_path", "/metrics")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load resolves Settings from v. It follows this precedence:
// 1. Viper configuration (from config file or EGGAI_ env vars)
// 2. Direct environment variables (GEMINI_API_KEY, API_KEY)
// 3. Default values
func Load(v *viper.Viper) (*Settings, error) {
	SetDefaults(v)

	s := &Settings{
		LLM: LLMSettings{
			Provider:   strings.ToLower(v.GetString("llm.provider")),
			APIKey:     v.GetString("llm.api_key"),
			Model:      v.GetString("llm.model"),
			DeepModel:  v.GetString("llm.deep_model"),
			ImageModel: v.GetString("llm.image_model"),
			BaseURL:    strings.TrimRight(v.GetString("llm.base_url"), "/"),
			MaxRetries: v.GetInt("llm.max_retries"),
			RetryDelay: v.GetDuration("llm.retry_delay"),
			Timeout:    v.GetDuration("llm.timeout"),
			RateLimit:  v.GetInt("llm.rate_limit"),
		},
		Scan: ScanSettings{
			FramesDir: ExpandPath(v.GetString("scan.frames_dir")),
			Interval:  v.GetDuration("scan.interval"),
			Gate:      v.GetFloat64("scan.gate"),
			Threshold: v.GetFloat64("scan.threshold"),
		},
		ServerAddr:  v.GetString("server.addr"),
		MetricsPath: v.GetString("server.metrics_path"),
		BatchDelay:  v.GetDuration("batch.delay"),
		LogLevel:    v.GetString("logging.level"),
		LogFormat:   v.GetString("logging.format"),
	}

	if s.LLM.APIKey == "" {
		s.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if s.LLM.APIKey == "" {
		s.LLM.APIKey = os.Getenv("API_KEY")
	}

	if v.IsSet("research.latitude") && v.IsSet("research.longitude") {
		s.Location = &Location{
			Latitude:  v.GetFloat64("research.latitude"),
			Longitude: v.GetFloat64("research.longitude"),
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks value ranges. A missing API key is not an error here;
// it is reported when a provider is constructed.
func (s *Settings) Validate() error {
	if s.BatchDelay < 0 {
		return fmt.Errorf("%w: batch.delay must not be negative", common.ErrInvalidConfig)
	}
	if s.Scan.Interval <= 0 {
		return fmt.Errorf("%w: scan.interval must be positive", common.ErrInvalidConfig)
	}
	for name, val := range map[string]float64{"scan.gate": s.Scan.Gate, "scan.threshold": s.Scan.Threshold} {
		if val < 0 || val > 1 {
			return fmt.Errorf("%w: %s must be between 0 and 1", common.ErrInvalidConfig, name)
		}
	}
	return nil
}
