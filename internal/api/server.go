// Package api serves the prediction workflows over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aswin0605itsme-droid/Eggai/internal/analyzer"
	"github.com/aswin0605itsme-droid/Eggai/internal/batch"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
	"github.com/aswin0605itsme-droid/Eggai/internal/predlog"
	"github.com/aswin0605itsme-droid/Eggai/internal/research"
	"github.com/aswin0605itsme-droid/Eggai/internal/simulator"
)

const (
	maxUploadBytes  = 20 << 20
	shutdownTimeout = 10 * time.Second
)

// ImageGenerator renders an image from a text prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (model.Image, error)
}

// Deps are the services the API exposes.
type Deps struct {
	Log       *predlog.Store
	Images    *analyzer.ImageAnalyzer
	Scanner   *analyzer.StillScanner
	Simulator *simulator.Simulator
	Imager    ImageGenerator
	// Research answers research queries; each request gets its own orchestrator.
	Research research.Predictor
	// Location is used for maps queries that do not supply coordinates.
	Location *model.Coordinate
	// NewRunner builds the runner for one batch job.
	NewRunner func() *batch.Runner
	Gatherer  prometheus.Gatherer
	Logger    *slog.Logger
	// MetricsPath defaults to /metrics.
	MetricsPath string
	Version     string
}

// Server is the HTTP front end.
type Server struct {
	echo      *echo.Echo
	deps      Deps
	jobs      *JobRegistry
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// New creates a server with all routes registered.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.MetricsPath == "" {
		deps.MetricsPath = "/metrics"
	}
	ctx, cancel := context.WithCancel(context.Background())

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		deps:      deps,
		jobs:      NewJobRegistry(),
		logger:    deps.Logger.With("component", "api"),
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
	s.setupMiddleware()
	s.initRoutes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Jobs returns the batch job registry.
func (s *Server) Jobs() *JobRegistry {
	return s.jobs
}

func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.BodyLimit(fmt.Sprintf("%dM", maxUploadBytes>>20)))
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			s.logger.LogAttrs(c.Request().Context(), slog.LevelDebug, "request", attrs...)
			return nil
		},
	}))
}

func (s *Server) initRoutes() {
	s.echo.GET("/healthz", s.healthCheck)
	if s.deps.Gatherer != nil {
		s.echo.GET(s.deps.MetricsPath, echo.WrapHandler(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{
			ErrorHandling: promhttp.HTTPErrorOnError,
		})))
	}

	g := s.echo.Group("/api/v1")

	g.POST("/analyze", s.analyzeImage)
	g.POST("/scan/alignment", s.scanAlignment)
	g.POST("/scan/capture", s.scanCapture)

	g.POST("/batch", s.startBatch)
	g.GET("/batch/sample.csv", s.sampleCSV)
	g.GET("/batch/:id", s.getBatch)
	g.GET("/batch/:id/csv", s.batchCSV)
	g.DELETE("/batch/:id", s.cancelBatch)

	g.GET("/log", s.listLog)
	g.GET("/log/csv", s.logCSV)
	g.DELETE("/log", s.clearLog)

	g.POST("/research", s.researchQuery)
	g.POST("/simulate", s.simulate)
	g.POST("/features", s.features)
	g.POST("/images", s.generateImage)
}

func (s *Server) healthCheck(c echo.Context) error {
	uptime := time.Since(s.startTime)
	return c.JSON(http.StatusOK, map[string]any{
		"status":         "healthy",
		"version":        s.deps.Version,
		"uptime":         uptime.String(),
		"uptime_seconds": uptime.Seconds(),
		"log_entries":    s.deps.Log.Len(),
	})
}

// ListenAndServe serves HTTP on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.logger.Info("Starting HTTP server", "address", addr)
	return s.serve(ctx, func() error { return s.echo.Start(addr) })
}

// ListenAndServeTLS is ListenAndServe over HTTPS with the given key pair.
func (s *Server) ListenAndServeTLS(ctx context.Context, addr, certFile, keyFile string) error {
	s.logger.Info("Starting HTTPS server", "address", addr, "cert", certFile)
	return s.serve(ctx, func() error { return s.echo.StartTLS(addr, certFile, keyFile) })
}

func (s *Server) serve(ctx context.Context, start func() error) error {
	errCh := make(chan error, 1)
	go func() {
		if err := start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		s.jobs.Shutdown()
		return err
	case <-ctx.Done():
		s.logger.Info("Shutdown signal received, stopping HTTP server")
		if err := s.Shutdown(); err != nil {
			return err
		}
		return <-errCh
	}
}

// Shutdown cancels running batch jobs and stops the server.
func (s *Server) Shutdown() error {
	s.cancel()
	s.jobs.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}
