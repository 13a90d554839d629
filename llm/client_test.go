package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/D-artisan/dartisan-ai-webscraper/config"
	"github.com/D-artisan/dartisan-ai-webscraper/models"
)

func testLLMConfig(key, baseURL string) config.LLMConfig {
	return config.LLMConfig{
		Provider:    config.ProviderOpenAI,
		OpenAIKey:   key,
		OpenAIModel: "gpt-3.5-turbo",
		BaseURL:     baseURL,
		Timeout:     5 * time.Second,
	}
}

// chatReply builds a chat-completions response whose message content is body.
func chatReply(body string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": body}},
		},
	}
	out, _ := json.Marshal(resp)
	return string(out)
}

func TestExtractMissingKeyNoNetworkCall(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	c := NewClient(testLLMConfig("", srv.URL), nil)

	_, err := c.Extract(context.Background(), "content", "prompt")
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeNoProvider, models.AsScrapeError(err).Code)
	assert.Zero(t, calls, "no network call should be made without an API key")
}

func TestExtractParsesStructuredReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Model          string  `json:"model"`
			Temperature    float64 `json:"temperature"`
			MaxTokens      int     `json:"max_tokens"`
			ResponseFormat struct {
				Type string `json:"type"`
			} `json:"response_format"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-3.5-turbo", req.Model)
		assert.Equal(t, 0.1, req.Temperature)
		assert.Equal(t, 2000, req.MaxTokens)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)

		w.Write([]byte(chatReply(`{"title": "Example Domain"}`)))
	}))
	defer srv.Close()

	c := NewClient(testLLMConfig("test-key", srv.URL), nil)

	data, err := c.Extract(context.Background(), "page text", "Extract the page title")
	require.NoError(t, err)
	require.Len(t, data.Fields, 1)
	assert.Equal(t, "title", data.Fields[0].Key)
	assert.Equal(t, "Example Domain", data.Fields[0].Value.Text)
}

func TestExtractStripsCodeFences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply("```json\n{\"title\": \"Fenced\"}\n```")))
	}))
	defer srv.Close()

	c := NewClient(testLLMConfig("test-key", srv.URL), nil)

	data, err := c.Extract(context.Background(), "page text", "prompt")
	require.NoError(t, err)
	v, ok := (models.Value{Kind: models.KindMap, Fields: data.Fields}).FieldByKey("title")
	require.True(t, ok)
	assert.Equal(t, "Fenced", v.Text)
}

func TestExtractFallsBackOnUnparseableReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply("I could not find any structured data on the page.")))
	}))
	defer srv.Close()

	c := NewClient(testLLMConfig("test-key", srv.URL), nil)

	data, err := c.Extract(context.Background(), "page text", "prompt")
	require.NoError(t, err, "malformed replies must not error past the boundary")
	require.Len(t, data.Fields, 1)
	assert.Equal(t, models.FallbackField, data.Fields[0].Key)
	assert.Contains(t, data.Fields[0].Value.Text, "could not find")
}

func TestExtractRetriesTransientFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(chatReply(`{"ok": "yes"}`)))
	}))
	defer srv.Close()

	c := NewClient(testLLMConfig("test-key", srv.URL), nil)

	data, err := c.Extract(context.Background(), "page text", "prompt")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "ok", data.Fields[0].Key)
}

func TestExtractDoesNotRetryAuthFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error":{"message":"bad key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(testLLMConfig("test-key", srv.URL), nil)

	_, err := c.Extract(context.Background(), "page text", "prompt")
	require.Error(t, err)
	assert.Equal(t, 1, calls, "4xx failures must not be retried")

	se := models.AsScrapeError(err)
	assert.Equal(t, models.ErrCodeLLMFailure, se.Code)
	assert.Contains(t, se.Message, "bad key")
}

func TestExtractExhaustsRetryBudget(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(testLLMConfig("test-key", srv.URL), nil)

	_, err := c.Extract(context.Background(), "page text", "prompt")
	require.Error(t, err)
	assert.Equal(t, maxAttempts, calls)
	assert.Equal(t, models.ErrCodeLLMFailure, models.AsScrapeError(err).Code)
}

func TestCheckAvailability(t *testing.T) {
	t.Run("false without key", func(t *testing.T) {
		c := NewClient(testLLMConfig("", ""), nil)
		assert.False(t, c.CheckAvailability(context.Background()))
	})

	t.Run("true when models listing succeeds", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/models", r.URL.Path)
			w.Write([]byte(`{"data":[]}`))
		}))
		defer srv.Close()

		c := NewClient(testLLMConfig("test-key", srv.URL), nil)
		assert.True(t, c.CheckAvailability(context.Background()))
	})

	t.Run("false when provider rejects the key", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no", http.StatusUnauthorized)
		}))
		defer srv.Close()

		c := NewClient(testLLMConfig("test-key", srv.URL), nil)
		assert.False(t, c.CheckAvailability(context.Background()))
	})
}

func TestProviderSelection(t *testing.T) {
	cfg := config.LLMConfig{
		Provider:      config.ProviderOpenRouter,
		OpenRouterKey: "or-key",
	}
	c := NewClient(cfg, nil)
	assert.Equal(t, config.ProviderOpenRouter, c.Provider())
	assert.Equal(t, openRouterBaseURL, c.baseURL)
}
