package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gnmanager/casting/internal/config"
	"github.com/gnmanager/casting/pkg/core/casting"
	"github.com/gnmanager/casting/pkg/core/services"
)

const requestIDHeader = "X-Request-ID"

// defaultAllowedOrigin is used when corsAllowedOrigins is empty
const defaultAllowedOrigin = "http://localhost:5000"

// NewRouter builds the HTTP API of the casting engine
func NewRouter(cfg *config.Config, store services.CastingStore, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(zapLogger(logger))
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg, logger)))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	options := casting.Options{DropUnscoredPairs: cfg.AutoAssign.DropUnscoredPairs}
	NewCastingHandler(store, options, logger).RegisterRoutes(router)

	return router
}

func corsConfig(cfg *config.Config, logger *zap.Logger) cors.Config {
	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	} else {
		corsConfig.AllowOrigins = []string{defaultAllowedOrigin}
		logger.Info("corsAllowedOrigins not set, allowing default", zap.String("origin", defaultAllowedOrigin))
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", requestIDHeader}
	corsConfig.ExposeHeaders = []string{requestIDHeader}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

// zapLogger logs every request except health checks and metric scrapes.
// The request ID is taken from the request or generated, and echoed back.
func zapLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/health" || path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		c.Next()

		if rawQuery := c.Request.URL.RawQuery; rawQuery != "" {
			path = path + "?" + rawQuery
		}
		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", requestID),
		}

		status := c.Writer.Status()
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("Server error", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("Client error", fields...)
		default:
			logger.Info("Request completed", fields...)
		}
	}
}
