package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/D-artisan/dartisan-ai-webscraper/config"
	"github.com/D-artisan/dartisan-ai-webscraper/fetcher"
	"github.com/D-artisan/dartisan-ai-webscraper/llm"
	"github.com/D-artisan/dartisan-ai-webscraper/models"
	"github.com/D-artisan/dartisan-ai-webscraper/output"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// stubExtractor satisfies handler.Extractor without touching the network.
type stubExtractor struct {
	data      *models.ExtractedData
	err       error
	available bool
	calls     int
}

func (s *stubExtractor) Extract(ctx context.Context, content, prompt string) (*models.ExtractedData, error) {
	s.calls++
	return s.data, s.err
}

func (s *stubExtractor) Provider() string { return "openai" }

func (s *stubExtractor) CheckAvailability(ctx context.Context) bool { return s.available }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{
			Mode:           gin.TestMode,
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		Fetcher: config.FetcherConfig{
			Timeout:          5 * time.Second,
			MaxContentLength: 100000,
			AllowLocal:       true, // page stubs listen on 127.0.0.1
		},
		Output: config.OutputConfig{
			Dir:       t.TempDir(),
			Retention: time.Hour,
		},
		RateLimit: config.RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             100,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config, ex *stubExtractor) (*gin.Engine, *output.Writer) {
	t.Helper()
	pf := fetcher.New(cfg.Fetcher, nil)
	ow, err := output.NewWriter(cfg.Output)
	require.NoError(t, err)
	return NewRouter(pf, ex, ow, cfg, time.Now()), ow
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestScrapeEndToEnd(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><head><title>Example Domain</title></head><body><h1>Example Domain</h1></body></html>"))
	}))
	defer page.Close()

	cfg := testConfig(t)
	data, err := models.ParseExtractedData([]byte(`{"title": "Example Domain"}`))
	require.NoError(t, err)
	ex := &stubExtractor{data: data}
	r, ow := newTestRouter(t, cfg, ex)

	body, _ := json.Marshal(map[string]string{
		"url":           page.URL,
		"prompt":        "Extract the page title",
		"output_format": "text",
	})
	w := doJSON(r, http.MethodPost, "/api/scrape", string(body))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.ScrapeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, "Scraping completed successfully", resp.Message)
	assert.True(t, strings.HasSuffix(resp.Filename, ".txt"))
	assert.Equal(t, "/api/download/"+resp.Filename, resp.DownloadURL)
	assert.Equal(t, 1, ex.calls)

	path, err := ow.Resolve(resp.Filename)
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Example Domain")
	assert.Contains(t, string(content), "EXAMPLE DOMAIN",
		"the page title should become the document heading")

	// The generated file is retrievable through the download endpoint.
	dl := doJSON(r, http.MethodGet, resp.DownloadURL, "")
	require.Equal(t, http.StatusOK, dl.Code)
	assert.Contains(t, dl.Body.String(), "Example Domain")
	assert.Equal(t, "text/plain", dl.Header().Get("Content-Type"))
	assert.Contains(t, dl.Header().Get("Content-Disposition"), resp.Filename)
}

func TestScrapeInvalidURL(t *testing.T) {
	cfg := testConfig(t)
	ex := &stubExtractor{}
	r, _ := newTestRouter(t, cfg, ex)

	w := doJSON(r, http.MethodPost, "/api/scrape",
		`{"url": "not-a-url", "prompt": "Extract data", "output_format": "text"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ScrapeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, models.ErrCodeInvalidURL, resp.Error.Code)
	assert.Zero(t, ex.calls, "the pipeline must short-circuit before extraction")
}

func TestScrapeProviderUnavailable(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>content</p></body></html>"))
	}))
	defer page.Close()

	cfg := testConfig(t)
	cfg.LLM = config.LLMConfig{Provider: config.ProviderOpenAI, Timeout: time.Second}

	pf := fetcher.New(cfg.Fetcher, nil)
	ex := llm.NewClient(cfg.LLM, nil) // no API key configured
	ow, err := output.NewWriter(cfg.Output)
	require.NoError(t, err)
	r := NewRouter(pf, ex, ow, cfg, time.Now())

	body, _ := json.Marshal(map[string]string{
		"url":    page.URL,
		"prompt": "Extract data",
	})
	w := doJSON(r, http.MethodPost, "/api/scrape", string(body))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp models.ScrapeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, models.ErrCodeNoProvider, resp.Error.Code)
}

func TestScrapeValidation(t *testing.T) {
	cfg := testConfig(t)
	r, _ := newTestRouter(t, cfg, &stubExtractor{})

	tests := []struct {
		name string
		body string
	}{
		{"missing url", `{"prompt": "x"}`},
		{"missing prompt", `{"url": "https://example.com"}`},
		{"unknown format", `{"url": "https://example.com", "prompt": "x", "output_format": "csv"}`},
		{"malformed json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/api/scrape", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp models.ScrapeResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, models.ErrCodeInvalidInput, resp.Error.Code)
		})
	}
}

func TestStatusEndpoint(t *testing.T) {
	cfg := testConfig(t)
	r, _ := newTestRouter(t, cfg, &stubExtractor{available: true})

	w := doJSON(r, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "openai", resp.LLMProvider)
	assert.True(t, resp.LLMAvailable)
	assert.NotEmpty(t, resp.Version)
}

func TestHealthEndpoint(t *testing.T) {
	cfg := testConfig(t)
	r, _ := newTestRouter(t, cfg, &stubExtractor{})

	w := doJSON(r, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.NotEmpty(t, resp.Uptime)
}

func TestDownloadNotFound(t *testing.T) {
	cfg := testConfig(t)
	r, _ := newTestRouter(t, cfg, &stubExtractor{})

	for _, name := range []string{"missing.txt", "..%2Fsecret.txt"} {
		w := doJSON(r, http.MethodGet, "/api/download/"+name, "")
		require.Equal(t, http.StatusNotFound, w.Code, name)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1}
	r, _ := newTestRouter(t, cfg, &stubExtractor{available: true})

	first := doJSON(r, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, first.Code)

	second := doJSON(r, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusTooManyRequests, second.Code)

	var resp models.ScrapeResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, models.ErrCodeRateLimited, resp.Error.Code)
}

func TestRootEndpoint(t *testing.T) {
	cfg := testConfig(t)
	r, _ := newTestRouter(t, cfg, &stubExtractor{})

	w := doJSON(r, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "AI Web Scraper API")
}
