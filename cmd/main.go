package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/0xJagger/poc-geo-tier-list/internal/adapters/http/api"
	"github.com/0xJagger/poc-geo-tier-list/internal/adapters/http/swagger"
	"github.com/0xJagger/poc-geo-tier-list/internal/adapters/prepare"
	app "github.com/0xJagger/poc-geo-tier-list/internal/app"
	"github.com/0xJagger/poc-geo-tier-list/internal/catalog"
	"github.com/0xJagger/poc-geo-tier-list/internal/config"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/scoring"
	"github.com/0xJagger/poc-geo-tier-list/pkg/logger"
	"github.com/0xJagger/poc-geo-tier-list/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := buildService(cfg, loggerInstance)
	if err != nil {
		loggerInstance.Error(ctx, "failed to build service", logger.Error(err))
		return
	}
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop(context.Background())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		startSystemMetricsUpdater(gctx)
		return nil
	})
	g.Go(func() error {
		startServiceMetricsUpdater(gctx, svc)
		return nil
	})
	g.Go(func() error {
		loggerInstance.Info(gctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("preparer", cfg.PreparerMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		loggerInstance.Info(context.Background(), "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		loggerInstance.Error(context.Background(), "server stopped with error", logger.Error(err))
		return
	}
	loggerInstance.Info(context.Background(), "server stopped")
}

// buildService assembles the ranking service from configuration.
func buildService(cfg *config.Config, log logger.Logger) (*app.Service, error) {
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	mode, err := scoring.ParseMode(cfg.ScoreMode)
	if err != nil {
		return nil, err
	}
	preparer, err := newPreparer(cfg)
	if err != nil {
		return nil, err
	}
	return app.New(cat,
		app.WithLogger(log),
		app.WithScorePolicy(scoring.NewPolicy(scoring.WithMode(mode))),
		app.WithPreparer(preparer),
		app.WithQueueSize(cfg.PrepareQueueSize),
		app.WithPrepareTimeout(time.Duration(cfg.PreparerTimeoutMS)*time.Millisecond),
	), nil
}

// newPreparer selects the edit preparation backend.
func newPreparer(cfg *config.Config) (prepare.Preparer, error) {
	switch cfg.PreparerMode {
	case config.PreparerLocal:
		return prepare.NewLocalPreparer(prepare.WithLatencyRange(
			time.Duration(cfg.PreparerLatencyMinMS)*time.Millisecond,
			time.Duration(cfg.PreparerLatencyMaxMS)*time.Millisecond,
		)), nil
	case config.PreparerHTTP:
		client := &http.Client{Timeout: time.Duration(cfg.PreparerTimeoutMS) * time.Millisecond}
		return prepare.NewHTTPPreparer(cfg.PreparerURL, prepare.WithHTTPClient(client)), nil
	default:
		return nil, fmt.Errorf("%w: unknown preparer_mode %q", config.ErrInvalidConfig, cfg.PreparerMode)
	}
}

// newMux registers documentation and API routes.
func newMux(ctx context.Context, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater refreshes runtime gauges until ctx ends.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater refreshes service gauges until ctx ends.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if total, ok := stats["totalItems"].(int); ok {
		metrics.UpdateTotalItems(total)
	}
	if ranked, ok := stats["rankedItems"].(int); ok {
		metrics.UpdateRankedItems(ranked)
	}
	if frozen, ok := stats["frozen"].(bool); ok {
		metrics.UpdateFrozen(frozen)
	}
	workers := 0
	if started, ok := stats["started"].(bool); ok && started {
		workers = 1
	}
	metrics.UpdateWorkerCount(workers)
}
