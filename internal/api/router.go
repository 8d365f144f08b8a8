package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/axelbunt54/calculate-pi-app/internal/logging"
)

const (
	serviceName = "calculate-pi-api"
	// Version は /health と OpenAPI ドキュメントで公開するバージョンです。
	Version = "1.0.0"
)

// Options はルーター構築時の設定です。
// AllowOrigins が空、または AllowAllOrigins が true の場合は全オリジンを許可します。
type Options struct {
	MaxDigits       int
	AllowOrigins    []string
	AllowAllOrigins bool
	Logger          zerolog.Logger
}

// NewRouter はミドルウェアとエンドポイントを登録した gin.Engine を返します。
func NewRouter(svc JobService, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), logging.GinMiddleware(opts.Logger))
	router.Use(cors.New(corsConfig(opts)))

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusTemporaryRedirect, "/docs")
	})
	router.GET("/docs", DocsHandler)
	router.GET("/redoc", RedocHandler)
	router.GET("/openapi.json", OpenAPIHandler)
	router.GET("/health", handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/calculate_pi", CalculateHandler(svc, opts.MaxDigits))
	router.POST("/check_progress", CheckProgressHandler(svc))
	router.GET("/jobs/:id", JobStatusHandler(svc))

	return router
}

func corsConfig(opts Options) cors.Config {
	cfg := cors.DefaultConfig()
	if opts.AllowAllOrigins || len(opts.AllowOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = opts.AllowOrigins
	}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": serviceName,
		"version": Version,
	})
}
