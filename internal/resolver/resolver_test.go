package resolver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newServer(t *testing.T, status int, body string, seen *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(Config{})

	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestResolveCountry(t *testing.T) {
	var req chatRequest
	srv := newServer(t, http.StatusOK, `{
		"id": "chatcmpl-1", "object": "chat.completion", "model": "gpt-4o-mini",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "DE"}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 17, "completion_tokens": 1, "total_tokens": 18}
	}`, &req)

	r, err := New(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	answer, tokens, err := r.ResolveCountry(context.Background(), "Allemagne")

	require.NoError(t, err)
	assert.Equal(t, "DE", answer)
	assert.Equal(t, 18, tokens)
	assert.Equal(t, DefaultModel, req.Model)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, `ISO country code of "Allemagne", nothing else`, req.Messages[0].Content)
}

func TestResolveCountry_NoChoices(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"choices": [], "usage": {"total_tokens": 9}}`, nil)
	r, err := New(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "gpt-4o"})
	require.NoError(t, err)

	answer, tokens, err := r.ResolveCountry(context.Background(), "Neverland")

	require.NoError(t, err)
	assert.Empty(t, answer)
	assert.Equal(t, 9, tokens)
}

func TestResolveCountry_APIError(t *testing.T) {
	srv := newServer(t, http.StatusUnauthorized, `{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`, nil)
	r, err := New(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, _, err = r.ResolveCountry(context.Background(), "France")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key")
}
