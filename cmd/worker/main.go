// Package main はジョブワーカーのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/axelbunt54/calculate-pi-app/internal/bootstrap"
	"github.com/axelbunt54/calculate-pi-app/internal/config"
	"github.com/axelbunt54/calculate-pi-app/internal/jobs"
	"github.com/axelbunt54/calculate-pi-app/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, closer, err := bootstrap.Logger(cfg, "worker")
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closer.Close()

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("worker stopped with error")
		closer.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := bootstrap.RedisClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	runner := jobs.NewRunner(bootstrap.Store(redisClient, cfg), logger)
	worker, err := jobs.NewWorker(
		bootstrap.RedisConnOpt(cfg),
		jobs.WorkerConfig{Queue: cfg.QueueName, Concurrency: cfg.WorkerConcurrency},
		runner,
		logger,
		logging.NewAsynqLogger(logger),
	)
	if err != nil {
		return err
	}

	if err := worker.Start(); err != nil {
		return err
	}
	logger.Info().
		Str("queue", cfg.QueueName).
		Int("concurrency", cfg.WorkerConcurrency).
		Msg("worker started")

	g, gctx := errgroup.WithContext(ctx)
	if metrics := bootstrap.MetricsServer(cfg); metrics != nil {
		g.Go(func() error {
			logger.Info().Str("addr", metrics.Addr).Msg("serving worker metrics")
			if err := metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			return metrics.Shutdown(shutdownCtx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down worker")
		worker.Shutdown()
		return nil
	})
	return g.Wait()
}
