// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/axelbunt54/calculate-pi-app/internal/api"
	"github.com/axelbunt54/calculate-pi-app/internal/bootstrap"
	"github.com/axelbunt54/calculate-pi-app/internal/config"
	"github.com/axelbunt54/calculate-pi-app/internal/jobs"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, closer, err := bootstrap.Logger(cfg, "api")
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closer.Close()

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("api server stopped with error")
		closer.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	redisClient, err := bootstrap.RedisClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	enqueuer := jobs.NewAsynqEnqueuer(bootstrap.RedisConnOpt(cfg), cfg.QueueName)
	defer enqueuer.Close()

	svc := jobs.NewService(enqueuer, bootstrap.Store(redisClient, cfg), logger)
	router := api.NewRouter(svc, api.Options{
		MaxDigits:       cfg.MaxDigits,
		AllowOrigins:    cfg.CORSAllowedOrigins,
		AllowAllOrigins: cfg.AllowAllOrigins(),
		Logger:          logger,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Str("mode", cfg.GinMode).Msg("starting api server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
