// Package api assembles the HTTP router for the event pool service.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	crawlapi "github.com/kirkpatrick8/eventpool/internal/api/crawl"
	poolapi "github.com/kirkpatrick8/eventpool/internal/api/pool"
	"github.com/kirkpatrick8/eventpool/internal/config"
	"github.com/kirkpatrick8/eventpool/pkg/logger"
)

// NewRouter wires all handlers into a gin engine.
func NewRouter(cfg *config.Config, poolHandler *poolapi.Handler, crawlHandler *crawlapi.Handler, log *logger.Logger) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/predictions", poolHandler.SubmitPrediction)
		v1.GET("/predictions", poolHandler.ListPredictions)
		v1.GET("/predictions/export", poolHandler.ExportCSV)

		// Crawl endpoints are absent when the document store is not configured.
		if crawlHandler != nil {
			crawl := v1.Group("/crawl")
			{
				crawl.POST("/participants", crawlHandler.Register)
				crawl.GET("/participants/:name", crawlHandler.GetParticipant)
				crawl.POST("/participants/:name/advance", crawlHandler.Advance)
				crawl.POST("/participants/:name/punishment", crawlHandler.SpinPunishment)
				crawl.GET("/leaderboard", crawlHandler.GetLeaderboard)
			}
		}
	}

	return router
}

// requestLogger logs one line per request through the structured logger.
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	}
}
