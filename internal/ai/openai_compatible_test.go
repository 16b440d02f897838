package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAICompatibleClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAICompatibleClient(ChatConfig{
		BaseURL:             srv.URL + "/v1",
		APIKey:              "test-key",
		Model:               "klusterai/Meta-Llama-3.3-70B-Instruct-Turbo",
		MaxCompletionTokens: 1000,
		Temperature:         0.8,
		TopP:                1,
	})
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "klusterai/Meta-Llama-3.3-70B-Instruct-Turbo",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
}

func TestCompleteSendsPayloadAndParsesContent(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeCompletion(w, "Se escribe «sino» cuando contrapone.")
	})

	got, err := client.Complete(context.Background(), []ChatMessage{
		{Role: RoleSystem, Content: "Eres un lingüista."},
		{Role: RoleUser, Content: "¿sino o si no?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Se escribe «sino» cuando contrapone.", got)

	assert.Equal(t, "klusterai/Meta-Llama-3.3-70B-Instruct-Turbo", body["model"])
	assert.EqualValues(t, 1000, body["max_completion_tokens"])
	assert.EqualValues(t, 0.8, body["temperature"])
	assert.EqualValues(t, 1, body["top_p"])

	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
	assert.Equal(t, "¿sino o si no?", msgs[1].(map[string]any)["content"])
}

func TestCompleteNon2xxReturnsStatusErrorWithoutRetry(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
	}{
		{"openai error", http.StatusServiceUnavailable, "application/json", `{"error":{"message":"overloaded"}}`},
		{"flat json", http.StatusUnauthorized, "application/json", `{"detail":"invalid api key"}`},
		{"plain text", http.StatusBadGateway, "text/plain", "upstream connect error"},
		{"html", http.StatusServiceUnavailable, "text/html", "<html><body><h1>503 Service Temporarily Unavailable</h1></body></html>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Complete(context.Background(), []ChatMessage{{Role: RoleUser, Content: "hola"}})
			require.Error(t, err)

			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tt.status, statusErr.StatusCode)
			assert.Equal(t, tt.body, strings.TrimSpace(statusErr.Body))
			assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
		})
	}
}

func TestCompleteNon200SuccessIsStatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"hola"}}]}`))
	})

	_, err := client.Complete(context.Background(), []ChatMessage{{Role: RoleUser, Content: "hola"}})

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusCreated, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, `"content":"hola"`)
}

func TestCompleteEmptyContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(w, "")
	})

	_, err := client.Complete(context.Background(), []ChatMessage{{Role: RoleUser, Content: "hola"}})
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestCompleteNoChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`))
	})

	_, err := client.Complete(context.Background(), []ChatMessage{{Role: RoleUser, Content: "hola"}})
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestCompleteTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewOpenAICompatibleClient(ChatConfig{BaseURL: url, APIKey: "k", Model: "m", TopP: 1})
	_, err := client.Complete(context.Background(), []ChatMessage{{Role: RoleUser, Content: "hola"}})
	require.Error(t, err)

	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr))
}
