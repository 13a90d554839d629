package output

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/D-artisan/dartisan-ai-webscraper/config"
	"github.com/D-artisan/dartisan-ai-webscraper/models"
)

// Writer generates output documents on transient storage.
type Writer struct {
	dir       string
	retention time.Duration
}

// extensions maps output format tags to file extensions.
var extensions = map[string]string{
	models.FormatText:  "txt",
	models.FormatWord:  "docx",
	models.FormatPDF:   "pdf",
	models.FormatExcel: "xlsx",
}

// contentTypes maps file extensions to download MIME types.
var contentTypes = map[string]string{
	".txt":  "text/plain",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".pdf":  "application/pdf",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// NewWriter creates a Writer rooted at cfg.Dir, creating the directory if
// needed.
func NewWriter(cfg config.OutputConfig) (*Writer, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Writer{dir: cfg.Dir, retention: cfg.Retention}, nil
}

// Generate writes the extracted data to a new file in the requested format
// and returns its filename. The page title becomes the document heading;
// when empty a generic heading is used.
//
// Failure modes:
//
//	UNSUPPORTED_FORMAT — format is not one of text/word/pdf/excel
//	OUTPUT_FAILED      — the underlying document write failed
func (w *Writer) Generate(data *models.ExtractedData, format, prompt, title string) (string, error) {
	ext, ok := extensions[format]
	if !ok {
		return "", models.NewScrapeError(models.ErrCodeBadFormat,
			fmt.Sprintf("unsupported output format %q", format), nil)
	}

	heading := title
	if heading == "" {
		heading = "Web Scraping Results"
	}

	filename := fmt.Sprintf("scrape_result_%s_%s.%s",
		time.Now().Format("20060102_150405"),
		uuid.NewString()[:8],
		ext,
	)
	path := filepath.Join(w.dir, filename)

	var err error
	switch format {
	case models.FormatText:
		err = writeText(path, data, prompt, heading)
	case models.FormatWord:
		err = writeWord(path, data, prompt, heading)
	case models.FormatPDF:
		err = writePDF(path, data, prompt, heading)
	case models.FormatExcel:
		err = writeExcel(path, data, prompt, heading)
	}
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeOutputFailed,
			fmt.Sprintf("failed to generate %s output", format), err)
	}

	slog.Info("generated output file", "format", format, "filename", filename)
	return filename, nil
}

// Resolve maps a download filename to its path on disk. Path traversal
// attempts and missing files fail with NOT_FOUND.
func (w *Writer) Resolve(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", models.NewScrapeError(models.ErrCodeNotFound, "file not found", nil)
	}

	path := filepath.Join(w.dir, filename)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", models.NewScrapeError(models.ErrCodeNotFound, "file not found", err)
	}
	return path, nil
}

// ContentType returns the download MIME type for a generated filename.
func ContentType(filename string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// CleanupOld removes generated files older than the configured retention.
// Called opportunistically after successful requests; errors are logged, not
// surfaced.
func (w *Writer) CleanupOld() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		slog.Error("output cleanup: read dir", "error", err)
		return
	}

	cutoff := time.Now().Add(-w.retention)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(w.dir, e.Name())); err == nil {
				slog.Info("cleaned up old output file", "filename", e.Name())
			}
		}
	}
}
