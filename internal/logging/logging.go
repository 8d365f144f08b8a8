// Package logging は zerolog ベースのロガーを構築します。
// 標準出力へのコンソール出力に加え、ローテーション付きのファイル出力を行えます。
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// TimeFormat はログのタイムスタンプ形式です。
const TimeFormat = "2006-01-02 15:04:05"

// Config はロガーの設定です。
type Config struct {
	Level      string
	Format     string // text または json
	File       string // 空の場合はファイル出力しない
	RotationMB int
	MaxBackups int

	// Console は標準出力の代わりに使う出力先です（主にテスト用）。
	Console io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New は設定に従ってロガーを作成します。
// 返される io.Closer はファイル出力を閉じるために呼び出してください。
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	console := cfg.Console
	if console == nil {
		console = os.Stdout
	}

	writers := []io.Writer{formatWriter(console, cfg.Format)}
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.RotationMB,
			MaxBackups: cfg.MaxBackups,
		}
		writers = append(writers, formatWriter(rotating, cfg.Format))
		closer = rotating
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return logger, closer, nil
}

func formatWriter(out io.Writer, format string) io.Writer {
	if format == "json" {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: TimeFormat,
		NoColor:    true,
		FormatLevel: func(i interface{}) string {
			return "| " + strings.ToUpper(fmt.Sprintf("%-5s", i)) + " |"
		},
	}
}
