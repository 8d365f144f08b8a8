// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port            string        `env:"PORT" envDefault:"8080"`
	GinMode         string        `env:"GIN_MODE" envDefault:"debug"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// ワーカーのメトリクス公開ポート（空の場合は公開しない）
	MetricsPort string `env:"METRICS_PORT" envDefault:"9091"`

	// CORS設定（カンマ区切り、"*" で全許可）
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Redis（キューとジョブ状態の共通バックエンド）
	Redis RedisConfig `envPrefix:"REDIS_"`

	// ジョブ/キュー設定
	QueueName         string `env:"QUEUE_NAME" envDefault:"calculation"`
	WorkerConcurrency int    `env:"WORKER_CONCURRENCY" envDefault:"4"`
	JobExpireMinutes  int    `env:"JOB_EXPIRE_MINUTES" envDefault:"1440"`
	MaxDigits         int    `env:"MAX_DIGITS" envDefault:"100000"`

	// ログ設定
	Log LogConfig `envPrefix:"LOG_"`
}

// RedisConfig は Redis 接続情報です。
type RedisConfig struct {
	Host     string `env:"HOST" envDefault:"redis"`
	Port     int    `env:"PORT" envDefault:"6379"`
	DB       int    `env:"DB" envDefault:"0"`
	Password string `env:"PASSWORD"`
}

// LogConfig はログ出力の設定です。
type LogConfig struct {
	Level      string `env:"LEVEL" envDefault:"info"`
	Format     string `env:"FORMAT" envDefault:"text"`
	File       string `env:"FILE" envDefault:"log.txt"`
	RotationMB int    `env:"ROTATION_MB" envDefault:"10"`
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"5"`
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	var errs []error

	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a valid port number, got %q", c.Port))
	}
	if c.MetricsPort != "" {
		if p, err := strconv.Atoi(c.MetricsPort); err != nil || p <= 0 || p > 65535 {
			errs = append(errs, fmt.Errorf("METRICS_PORT must be a valid port number, got %q", c.MetricsPort))
		}
	}
	if c.Redis.Host == "" {
		errs = append(errs, errors.New("REDIS_HOST is required"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port number, got %d", c.Redis.Port))
	}
	if c.Redis.DB < 0 {
		errs = append(errs, fmt.Errorf("REDIS_DB must not be negative, got %d", c.Redis.DB))
	}
	if strings.TrimSpace(c.QueueName) == "" {
		errs = append(errs, errors.New("QUEUE_NAME is required"))
	}
	if c.WorkerConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("WORKER_CONCURRENCY must be positive, got %d", c.WorkerConcurrency))
	}
	if c.JobExpireMinutes < 0 {
		errs = append(errs, fmt.Errorf("JOB_EXPIRE_MINUTES must not be negative, got %d", c.JobExpireMinutes))
	}
	if c.MaxDigits < 0 {
		errs = append(errs, fmt.Errorf("MAX_DIGITS must not be negative, got %d", c.MaxDigits))
	}
	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL is not a known level, got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.Log.Format))
	}
	if c.Log.File != "" && c.Log.RotationMB <= 0 {
		errs = append(errs, fmt.Errorf("LOG_ROTATION_MB must be positive, got %d", c.Log.RotationMB))
	}

	return errors.Join(errs...)
}

// RedisAddr は host:port 形式のアドレスを返します。
func (c *Config) RedisAddr() string {
	return net.JoinHostPort(c.Redis.Host, strconv.Itoa(c.Redis.Port))
}

// RedisURL は redis:// 形式の接続URLを返します。パスワードはエスケープされます。
func (c *Config) RedisURL() string {
	u := url.URL{
		Scheme: "redis",
		Host:   c.RedisAddr(),
		Path:   "/" + strconv.Itoa(c.Redis.DB),
	}
	if c.Redis.Password != "" {
		u.User = url.UserPassword("", c.Redis.Password)
	}
	return u.String()
}

// JobTTL はジョブ状態レコードの保持期間です。0 は無期限を意味します。
func (c *Config) JobTTL() time.Duration {
	return time.Duration(c.JobExpireMinutes) * time.Minute
}

// AllowAllOrigins は CORS で全オリジンを許可するかを返します。
func (c *Config) AllowAllOrigins() bool {
	for _, o := range c.CORSAllowedOrigins {
		if strings.TrimSpace(o) == "*" {
			return true
		}
	}
	return false
}
