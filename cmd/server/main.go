package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/light-bringer/promo-engine/internal/pkg/config"
	"github.com/light-bringer/promo-engine/internal/pkg/logger"
	"github.com/light-bringer/promo-engine/internal/pkg/telemetry"
	"github.com/light-bringer/promo-engine/internal/services"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load configuration (config.toml + PROMO_* env)
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// 2. Logger and tracing
	zl, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.App.Name,
		Insecure:          cfg.Telemetry.Insecure,
	}, zl)
	if err != nil {
		return err
	}

	zl.Info("starting promotion engine",
		zap.String("env", cfg.App.Env),
		zap.String("spanner_database", cfg.Spanner.Database),
		zap.String("http_port", cfg.HTTP.Port),
		zap.Bool("redis_cache", cfg.Redis.Enabled()),
		zap.Bool("kafka_queue", cfg.Kafka.Enabled()),
		zap.Int("recalc_workers", cfg.Recalc.Workers),
	)

	// 3. Initialize service dependencies (DI container)
	serviceOpts, err := services.NewServiceOptions(ctx, cfg, zl)
	if err != nil {
		return fmt.Errorf("failed to initialize service: %w", err)
	}
	defer serviceOpts.Close()

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      serviceOpts.Router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	// 4. HTTP server, recalculation worker, outbox relay and shutdown run together
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zl.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return serviceOpts.Worker.Run(gctx)
	})

	if serviceOpts.Relay != nil {
		g.Go(func() error {
			return serviceOpts.Relay.Run(gctx)
		})
	}

	g.Go(func() error {
		return serviceOpts.Repairer.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		zl.Info("shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			zl.Error("HTTP server shutdown error", zap.Error(err))
		}
		if err := tp.Shutdown(shutdownCtx); err != nil {
			zl.Error("tracer provider shutdown error", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
