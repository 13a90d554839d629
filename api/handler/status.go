package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/D-artisan/dartisan-ai-webscraper/models"
)

// Status returns a handler for GET /api/status.
//
// The llm_available flag is a cheap reachability probe of the configured
// provider; it does not guarantee that a subsequent extraction will succeed.
func Status(ex Extractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		available := ex.CheckAvailability(c.Request.Context())

		c.JSON(http.StatusOK, models.StatusResponse{
			Status:       "healthy",
			LLMProvider:  ex.Provider(),
			LLMAvailable: available,
			Version:      Version,
		})
	}
}

// Health returns a handler for GET /api/health. It performs no dependency
// checks so monitoring probes always get a fast answer.
func Health(startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  "healthy",
			Message: "AI Web Scraper API is running",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: Version,
		})
	}
}

// Root returns a handler for GET / with basic service information.
func Root() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "AI Web Scraper API",
			"version": Version,
			"status":  "/api/status",
		})
	}
}
