package handler

import (
	"context"

	"github.com/D-artisan/dartisan-ai-webscraper/fetcher"
	"github.com/D-artisan/dartisan-ai-webscraper/models"
)

// Version is reported by the status and health endpoints.
const Version = "1.0.0"

// PageFetcher fetches a page and reduces it to readable text.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetcher.Result, error)
}

// Extractor turns page text plus a natural-language instruction into
// structured data via the configured LLM provider.
type Extractor interface {
	Extract(ctx context.Context, content, prompt string) (*models.ExtractedData, error)
	Provider() string
	CheckAvailability(ctx context.Context) bool
}

// OutputWriter generates output documents and resolves them for download.
type OutputWriter interface {
	Generate(data *models.ExtractedData, format, prompt, title string) (string, error)
	Resolve(filename string) (string, error)
	CleanupOld()
}
