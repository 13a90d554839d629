package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/D-artisan/dartisan-ai-webscraper/models"
)

// Scrape returns a handler for POST /api/scrape.
//
// Pipeline per request:
//  1. Parse & validate request, apply defaults.
//  2. Fetcher  → cleaned page text        (records fetch_ms)
//  3. Extractor → structured data          (records extraction_ms)
//  4. OutputWriter → downloadable file     (records output_ms)
//  5. Respond with data + download link; sweep expired output files.
//
// Any stage failure short-circuits the rest and maps to a structured error
// response. No partial results are returned.
func Scrape(pf PageFetcher, ex Extractor, ow OutputWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ScrapeResponse{
				Success: false,
				Message: "invalid request",
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		slog.Info("starting scrape", "url", req.URL, "format", req.OutputFormat)

		// ── 2. Fetch & clean ────────────────────────────────────────
		fetchStart := time.Now()
		page, err := pf.Fetch(c.Request.Context(), req.URL)
		fetchMs := time.Since(fetchStart).Milliseconds()

		if err != nil {
			respondError(c, err, models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
				FetchMs: fetchMs,
			})
			return
		}

		// ── 3. LLM extraction ───────────────────────────────────────
		extractStart := time.Now()
		data, err := ex.Extract(c.Request.Context(), page.Text, req.Prompt)
		extractionMs := time.Since(extractStart).Milliseconds()

		if err != nil {
			respondError(c, err, models.TimingInfo{
				TotalMs:      time.Since(totalStart).Milliseconds(),
				FetchMs:      fetchMs,
				ExtractionMs: extractionMs,
			})
			return
		}

		// ── 4. Output generation ────────────────────────────────────
		outputStart := time.Now()
		filename, err := ow.Generate(data, req.OutputFormat, req.Prompt, page.Title)
		outputMs := time.Since(outputStart).Milliseconds()

		if err != nil {
			respondError(c, err, models.TimingInfo{
				TotalMs:      time.Since(totalStart).Milliseconds(),
				FetchMs:      fetchMs,
				ExtractionMs: extractionMs,
				OutputMs:     outputMs,
			})
			return
		}

		// ── 5. Respond + retention sweep ────────────────────────────
		go ow.CleanupOld()

		slog.Info("scrape completed", "url", req.URL, "filename", filename)

		c.JSON(http.StatusOK, models.ScrapeResponse{
			Success:     true,
			Message:     "Scraping completed successfully",
			Data:        data,
			Filename:    filename,
			DownloadURL: "/api/download/" + filename,
			Timing: models.TimingInfo{
				TotalMs:      time.Since(totalStart).Milliseconds(),
				FetchMs:      fetchMs,
				ExtractionMs: extractionMs,
				OutputMs:     outputMs,
			},
		})
	}
}

// respondError maps a ScrapeError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	scrapeErr := models.AsScrapeError(err)
	slog.Error("scrape failed", "code", scrapeErr.Code, "error", err)

	c.JSON(mapErrorToStatus(scrapeErr), models.ScrapeResponse{
		Success: false,
		Message: scrapeErr.Message,
		Error:   scrapeErr.ToDetail(),
		Timing:  timing,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeInvalidURL, models.ErrCodeInvalidInput, models.ErrCodeBadFormat:
		return http.StatusBadRequest // 400
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeFetchFailed, models.ErrCodeLLMFailure:
		return http.StatusBadGateway // 502
	case models.ErrCodeNoProvider:
		return http.StatusServiceUnavailable // 503
	default:
		return http.StatusInternalServerError // 500
	}
}
