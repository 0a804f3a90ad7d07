package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/aswin0605itsme-droid/Eggai/internal/analyzer"
	"github.com/aswin0605itsme-droid/Eggai/internal/api"
	"github.com/aswin0605itsme-droid/Eggai/internal/certs"
	"github.com/aswin0605itsme-droid/Eggai/internal/config"
	"github.com/aswin0605itsme-droid/Eggai/internal/simulator"
)

const logSummaryInterval = 10 * time.Minute

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the prediction API over HTTP",
		Long: `Serve every analysis over HTTP under /api/v1, with /healthz and Prometheus
metrics. The prediction log lives for the lifetime of the server process.

Examples:
  eggai serve                  # Listen on :8080
  eggai serve --addr :9090     # Listen on a different port
  eggai serve --tls --host incubator.local
                               # HTTPS with a self-signed certificate`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":8080", "Address to listen on")
	cmd.Flags().Bool("tls", false, "Serve HTTPS with a self-signed certificate")
	cmd.Flags().StringSlice("host", nil, "Extra host names or IPs the certificate must cover")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.tls", cmd.Flags().Lookup("tls"))
	_ = viper.BindPFlag("server.hosts", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	server := api.New(api.Deps{
		Log:         a.log,
		Images:      analyzer.NewImageAnalyzer(a.predictor, a.log, a.logger),
		Scanner:     analyzer.NewStillScanner(a.predictor, a.log, a.settings.Scan.Gate, a.logger),
		Simulator:   simulator.New(a.predictor, a.logger),
		Imager:      a.predictor,
		Research:    a.predictor,
		Location:    a.location(),
		NewRunner:   a.newRunner,
		Gatherer:    a.registry,
		Logger:      a.logger,
		MetricsPath: a.settings.MetricsPath,
		Version:     version,
	})

	listen := func(ctx context.Context) error {
		return server.ListenAndServe(ctx, a.settings.ServerAddr)
	}
	if viper.GetBool("server.tls") {
		certDir := config.CertDir()
		certFile, keyFile, err := certs.NewFileManager(certDir, viper.GetStringSlice("server.hosts")...).Ensure()
		if err != nil {
			return fmt.Errorf("failed to prepare certificate: %w", err)
		}
		slog.Warn("Serving with a self-signed certificate; clients must trust it explicitly", "cert", certFile)
		listen = func(ctx context.Context) error {
			return server.ListenAndServeTLS(ctx, a.settings.ServerAddr, certFile, keyFile)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return listen(gctx)
	})
	g.Go(func() error {
		reportLogSize(gctx, a)
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	slog.Info("Server stopped")
	return nil
}

// reportLogSize periodically logs the size of the in-memory prediction log.
func reportLogSize(ctx context.Context, a *app) {
	ticker := time.NewTicker(logSummaryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.logger.Info("Prediction log summary", "entries", a.log.Len())
		}
	}
}
