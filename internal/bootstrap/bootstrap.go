// Package bootstrap は API とワーカーで共有する依存の組み立てを行います。
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/axelbunt54/calculate-pi-app/internal/config"
	"github.com/axelbunt54/calculate-pi-app/internal/jobs"
	"github.com/axelbunt54/calculate-pi-app/internal/logging"
)

// Logger は設定からロガーを作成します。
func Logger(cfg *config.Config, service string) (zerolog.Logger, io.Closer, error) {
	logger, closer, err := logging.New(logging.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		RotationMB: cfg.Log.RotationMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	return logger.With().Str("service", service).Logger(), closer, nil
}

// RedisConnOpt は asynq 用の接続設定を返します。
func RedisConnOpt(cfg *config.Config) asynq.RedisConnOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
}

// RedisClient はジョブ状態ストア用の Redis クライアントを作成し、疎通を確認します。
func RedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr(), err)
	}
	return client, nil
}

// Store はジョブ状態ストアを作成します。
func Store(client redis.UniversalClient, cfg *config.Config) *jobs.RedisStore {
	return jobs.NewRedisStore(client, cfg.JobTTL())
}

// MetricsServer はワーカーのメトリクスを /metrics で公開する http.Server を返します。
// METRICS_PORT が空の場合は nil を返します。
func MetricsServer(cfg *config.Config) *http.Server {
	if cfg.MetricsPort == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
