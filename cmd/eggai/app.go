package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"

	"github.com/aswin0605itsme-droid/Eggai/internal/batch"
	"github.com/aswin0605itsme-droid/Eggai/internal/config"
	"github.com/aswin0605itsme-droid/Eggai/internal/llm"
	"github.com/aswin0605itsme-droid/Eggai/internal/metrics"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
	"github.com/aswin0605itsme-droid/Eggai/internal/predlog"
)

// app holds the services shared by every command for one process.
type app struct {
	settings  *config.Settings
	logger    *slog.Logger
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	predictor *llm.Predictor
	log       *predlog.Store
}

// newApp loads settings and builds the provider, predictor and session log.
func newApp(ctx context.Context) (*app, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := slog.Default()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	cfg := llmConfig(settings.LLM)
	provider, err := llm.NewProvider(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	return &app{
		settings:  settings,
		logger:    logger,
		registry:  registry,
		metrics:   m,
		predictor: llm.NewPredictor(provider, cfg, logger, llm.WithObserver(m)),
		log:       predlog.New(predlog.WithObserver(m)),
	}, nil
}

func llmConfig(s config.LLMSettings) llm.Config {
	return llm.Config{
		Provider:   s.Provider,
		APIKey:     s.APIKey,
		Model:      s.Model,
		DeepModel:  s.DeepModel,
		ImageModel: s.ImageModel,
		BaseURL:    s.BaseURL,
		MaxRetries: s.MaxRetries,
		RetryDelay: s.RetryDelay,
		Timeout:    s.Timeout,
		RateLimit:  s.RateLimit,
	}
}

func (a *app) newRunner() *batch.Runner {
	return batch.NewRunner(a.predictor,
		batch.WithDelay(a.settings.BatchDelay),
		batch.WithLogger(a.logger),
		batch.WithObserver(a.metrics),
	)
}

// location returns the configured research location, if any.
func (a *app) location() *model.Coordinate {
	if a.settings.Location == nil {
		return nil
	}
	return &model.Coordinate{Latitude: a.settings.Location.Latitude, Longitude: a.settings.Location.Longitude}
}

func (a *app) Close() {
	if err := a.predictor.Close(); err != nil {
		a.logger.Error("Failed to close LLM client", "error", err)
	}
}
