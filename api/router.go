package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/D-artisan/dartisan-ai-webscraper/api/handler"
	"github.com/D-artisan/dartisan-ai-webscraper/api/middleware"
	"github.com/D-artisan/dartisan-ai-webscraper/config"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger → CORS
//	/api:    RateLimit (health excluded so monitoring probes always work)
func NewRouter(pf handler.PageFetcher, ex handler.Extractor, ow handler.OutputWriter, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", handler.Root())

	api := r.Group("/api")

	// Health — fast, no dependency checks.
	api.GET("/health", handler.Health(startTime))

	limited := api.Group("")
	limited.Use(middleware.RateLimit(cfg.RateLimit))

	limited.POST("/scrape", handler.Scrape(pf, ex, ow))
	limited.GET("/status", handler.Status(ex))
	limited.GET("/download/:filename", handler.Download(ow))

	return r
}
