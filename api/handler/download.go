package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/D-artisan/dartisan-ai-webscraper/models"
	"github.com/D-artisan/dartisan-ai-webscraper/output"
)

// Download returns a handler for GET /api/download/:filename.
//
// The filename is resolved against the output directory only; traversal
// attempts and unknown files both answer 404.
func Download(ow OutputWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		filename := c.Param("filename")

		path, err := ow.Resolve(filename)
		if err != nil {
			slog.Warn("download: file not found", "filename", filename)
			scrapeErr := models.AsScrapeError(err)
			c.JSON(http.StatusNotFound, models.ScrapeResponse{
				Success: false,
				Message: scrapeErr.Message,
				Error:   scrapeErr.ToDetail(),
			})
			return
		}

		slog.Info("serving download", "filename", filename)
		c.Header("Content-Type", output.ContentType(filename))
		c.FileAttachment(path, filename)
	}
}
