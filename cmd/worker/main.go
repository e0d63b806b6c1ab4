package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/kirillkom/shape-stylist/internal/bootstrap"
	"github.com/kirillkom/shape-stylist/internal/config"
	"github.com/kirillkom/shape-stylist/internal/observability/logging"
	"github.com/kirillkom/shape-stylist/internal/observability/metrics"
)

const service = "worker"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(service, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(service)
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		Logger: logger,
		BreakerState: func(operation string, state int) {
			workerMetrics.SetBreakerState(service, operation, state)
		},
	})
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	timeout := time.Duration(cfg.AnalysisTimeoutMinutes) * time.Minute
	logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeAnalysisRequested(ctx, func(handlerCtx context.Context, shop string) error {
		jobCtx, cancel := context.WithTimeout(handlerCtx, timeout)
		defer cancel()

		start := time.Now()
		workerMetrics.StartJob()
		summary, err := app.AnalysisUC.AnalyzeCatalog(jobCtx, shop)
		workerMetrics.FinishJob(service, time.Since(start), err)
		if err != nil {
			return err
		}
		workerMetrics.RecordProducts(service, summary.AICalls-summary.FallbackCalls, summary.FallbackCalls)
		logger.Info("catalog_analysis_completed",
			"shop", shop,
			"products", summary.Products,
			"rows", summary.Rows,
			"ai_calls", summary.AICalls,
			"fallback_calls", summary.FallbackCalls,
			"duration_ms", summary.Duration.Milliseconds(),
		)

		if cfg.ReportPath != "" {
			if err := writeReport(jobCtx, app, cfg.ReportPath, shop); err != nil {
				logger.Warn("analysis_report_write_failed", "shop", shop, "error", err)
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}

func writeReport(ctx context.Context, app *bootstrap.App, dir, shop string) error {
	data, err := app.AnalysisUC.Export(ctx, shop)
	if err != nil {
		return fmt.Errorf("export analysis: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	name := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(shop) + "-analysis.xlsx"
	return os.WriteFile(filepath.Join(dir, name), data, 0o644)
}
