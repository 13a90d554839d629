package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/D-artisan/dartisan-ai-webscraper/config"
	"github.com/D-artisan/dartisan-ai-webscraper/models"
)

// Provider base URLs. Both providers speak the OpenAI chat-completions wire
// format, so a single client covers them with net/http — no SDK needed.
const (
	openAIBaseURL     = "https://api.openai.com/v1"
	openRouterBaseURL = "https://openrouter.ai/api/v1"
)

// maxAttempts bounds the retry loop around transient LLM failures.
const maxAttempts = 3

// retryBackoff is the linear backoff unit between attempts.
const retryBackoff = time.Second

// Client performs structured extraction against the configured LLM provider.
type Client struct {
	cfg        config.LLMConfig
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Client for the provider selected in cfg. Pass a nil
// httpClient to use a default client bounded by cfg.Timeout.
func NewClient(cfg config.LLMConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	base := openAIBaseURL
	if cfg.Provider == config.ProviderOpenRouter {
		base = openRouterBaseURL
	}
	if cfg.BaseURL != "" {
		base = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &Client{cfg: cfg, httpClient: httpClient, baseURL: base}
}

// Provider returns the configured provider name.
func (c *Client) Provider() string {
	return c.cfg.Provider
}

// chatRequest is the OpenAI-style chat completion request body.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// responseFormat asks the provider for a JSON-object reply. Fence stripping
// and the text fallback still apply for models that ignore it.
type responseFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the minimal chat completion response we need.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// chatErrorResponse captures an API error from the LLM provider.
type chatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

const systemPrompt = `You are an expert web scraper. Extract data from the provided web content according to the user's instructions. Return the result as a JSON object with clear structure. If you cannot extract the requested data, return an empty result with an explanation.`

// Extract sends the cleaned page content plus the user's instruction to the
// provider and parses the reply into structured data.
//
// Failure modes:
//
//	PROVIDER_UNAVAILABLE — no API key configured for the provider
//	                       (no network call is made)
//	LLM_FAILURE          — transport/API failure after the retry budget
//
// A syntactically invalid reply is not an error: the raw text is wrapped
// under a single fallback field instead.
func (c *Client) Extract(ctx context.Context, content, prompt string) (*models.ExtractedData, error) {
	key := c.cfg.APIKey()
	if key == "" {
		return nil, models.NewScrapeError(models.ErrCodeNoProvider,
			fmt.Sprintf("%s API key not configured", c.cfg.Provider), nil)
	}

	userMessage := fmt.Sprintf(
		"User Instructions: %s\n\nWeb Content:\n%s\n\nPlease extract the requested data and return it as a structured JSON object.",
		prompt, content,
	)

	reqBody := chatRequest{
		Model: c.cfg.Model(),
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
		Temperature:    0.1,
		MaxTokens:      2000,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeLLMFailure, "marshal LLM request", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		reply, retryable, err := c.complete(ctx, key, bodyBytes)
		if err == nil {
			return parseReply(reply), nil
		}
		lastErr = err
		if !retryable {
			break
		}
		if attempt < maxAttempts {
			slog.Warn("LLM request failed, retrying",
				"provider", c.cfg.Provider, "attempt", attempt, "error", err)
			select {
			case <-ctx.Done():
				return nil, models.NewScrapeError(models.ErrCodeLLMFailure,
					"LLM request cancelled", ctx.Err())
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
		}
	}

	if se, ok := lastErr.(*models.ScrapeError); ok {
		return nil, se
	}
	return nil, models.NewScrapeError(models.ErrCodeLLMFailure, "LLM request failed", lastErr)
}

// complete performs one chat-completion round trip. The second return value
// reports whether the failure is worth retrying (transport errors, 429, 5xx).
func (c *Client) complete(ctx context.Context, key string, body []byte) (string, bool, error) {
	endpoint := c.baseURL + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)
	if c.cfg.Provider == config.ProviderOpenRouter {
		// OpenRouter attribution headers.
		req.Header.Set("HTTP-Referer", "http://localhost:8000")
		req.Header.Set("X-Title", "AI Web Scraper")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, err
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", retryable, apiError(resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", false, models.NewScrapeError(models.ErrCodeLLMFailure,
			"failed to parse LLM response", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", false, models.NewScrapeError(models.ErrCodeLLMFailure,
			"LLM returned no choices", nil)
	}

	return chatResp.Choices[0].Message.Content, false, nil
}

// apiError turns a non-200 provider response into a ScrapeError.
func apiError(statusCode int, body []byte) *models.ScrapeError {
	msg := fmt.Sprintf("LLM API returned %d", statusCode)
	var errResp chatErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		msg = fmt.Sprintf("LLM API returned %d: %s", statusCode, errResp.Error.Message)
	}
	return models.NewScrapeError(models.ErrCodeLLMFailure, msg, nil)
}

// parseReply parses the model reply as a JSON object, stripping markdown code
// fences first. Unparseable replies fall back to a single-field wrapper.
func parseReply(reply string) *models.ExtractedData {
	cleaned := stripCodeFences(reply)
	data, err := models.ParseExtractedData([]byte(cleaned))
	if err != nil {
		slog.Warn("LLM reply is not structured JSON, wrapping as text", "error", err)
		return models.TextData(strings.TrimSpace(reply))
	}
	return data
}

// stripCodeFences removes a surrounding ```json ... ``` block, which some
// models emit even when asked for bare JSON.
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if i := strings.Index(trimmed, "\n"); i >= 0 {
		trimmed = trimmed[i+1:] // drop the language tag line
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// CheckAvailability reports whether the provider looks reachable: the key
// must be configured and a lightweight models listing must succeed. It is a
// cheap status probe, not a guarantee that extraction will succeed.
func (c *Client) CheckAvailability(ctx context.Context) bool {
	key := c.cfg.APIKey()
	if key == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("LLM availability probe failed", "provider", c.cfg.Provider, "error", err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return resp.StatusCode == http.StatusOK
}
