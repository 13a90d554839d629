package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/D-artisan/dartisan-ai-webscraper/config"
	"github.com/D-artisan/dartisan-ai-webscraper/models"
)

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 * 1024 * 1024

// Fetcher retrieves a page over HTTP and reduces it to readable text.
type Fetcher struct {
	httpClient       *http.Client
	maxContentLength int
	allowLocal       bool
}

// Result holds the cleaned page content.
type Result struct {
	// Text is the cleaned, whitespace-collapsed, truncated page text.
	Text string

	// Title is the page <title> content, if any.
	Title string

	// Truncated reports whether Text was cut at the configured limit.
	Truncated bool
}

// New creates a Fetcher from config. Pass a nil httpClient to use a default
// client bounded by cfg.Timeout.
func New(cfg config.FetcherConfig, httpClient *http.Client) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Fetcher{
		httpClient:       httpClient,
		maxContentLength: cfg.MaxContentLength,
		allowLocal:       cfg.AllowLocal,
	}
}

// Validate checks that rawURL is an absolute http/https URL pointing at a
// non-local host. It performs no network I/O.
func (f *Fetcher) Validate(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return models.NewScrapeError(models.ErrCodeInvalidURL,
			"invalid URL: please provide a valid HTTP/HTTPS URL", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return models.NewScrapeError(models.ErrCodeInvalidURL,
			fmt.Sprintf("unsupported URL scheme %q: only http and https are allowed", u.Scheme), nil)
	}
	if u.Host == "" {
		return models.NewScrapeError(models.ErrCodeInvalidURL,
			"invalid URL: missing host", nil)
	}

	if !f.allowLocal {
		host := u.Hostname()
		if strings.EqualFold(host, "localhost") {
			return models.NewScrapeError(models.ErrCodeInvalidURL,
				"invalid URL: local addresses are not allowed", nil)
		}
		if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
			return models.NewScrapeError(models.ErrCodeInvalidURL,
				"invalid URL: loopback addresses are not allowed", nil)
		}
	}
	return nil
}

// Fetch validates the URL, GETs the page and returns its cleaned text.
//
// Failure modes:
//
//	INVALID_URL  — URL fails Validate (no network call is made)
//	FETCH_FAILED — transport error, timeout, non-2xx status, or a page
//	               with no readable text
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	if err := f.Validate(rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInvalidURL, "invalid URL", err)
	}
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	slog.Info("fetching content", "url", rawURL)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil || isTimeout(err) {
			return nil, models.NewScrapeError(models.ErrCodeFetchFailed,
				"request timeout: the website took too long to respond", err)
		}
		return nil, models.NewScrapeError(models.ErrCodeFetchFailed,
			"failed to fetch URL", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, models.NewScrapeError(models.ErrCodeFetchFailed,
			fmt.Sprintf("failed to fetch URL: HTTP %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeFetchFailed,
			"failed to read response body", err)
	}

	text := CleanHTML(string(body))
	truncated := false
	if runes := []rune(text); len(runes) > f.maxContentLength {
		text = string(runes[:f.maxContentLength]) + "..."
		truncated = true
		slog.Warn("content truncated", "url", rawURL, "limit", f.maxContentLength)
	}

	if strings.TrimSpace(text) == "" {
		return nil, models.NewScrapeError(models.ErrCodeFetchFailed,
			"no readable content found on the webpage", nil)
	}

	slog.Info("fetched content", "url", rawURL, "chars", len(text), "truncated", truncated)

	return &Result{
		Text:      text,
		Title:     ExtractTitle(body),
		Truncated: truncated,
	}, nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
