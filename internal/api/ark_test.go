package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"misfit-alliance/internal/config"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *ArkClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewArkClient(&config.Config{
		AIAPIKey:  "test-key",
		AIBaseURL: srv.URL + "/",
		AIModel:   "test-model",
	}, zerolog.Nop())
}

func TestArkClient_Complete(t *testing.T) {
	var got ChatCompletionRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"choices":[{"index":0,"message":{"role":"assistant","content":"hello"}}]}`)
	})

	text, err := client.Complete(context.Background(), []Message{
		SystemMessage("be brief"),
		UserMessage("hi"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "be brief", got.Messages[0].Content)
}

func TestArkClient_CompleteEncodesVisionParts(t *testing.T) {
	var raw map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		io.WriteString(w, `{"choices":[]}`)
	})

	text, err := client.Complete(context.Background(), []Message{VisionMessage("data:image/png;base64,AAAA", "read it")})
	require.NoError(t, err)
	assert.Empty(t, text)

	parts := raw["messages"].([]any)[0].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	assert.Equal(t, "image_url", parts[0].(map[string]any)["type"])
	assert.Equal(t, "data:image/png;base64,AAAA", parts[0].(map[string]any)["image_url"].(map[string]any)["url"])
	assert.Equal(t, "read it", parts[1].(map[string]any)["text"])
}

func TestArkClient_StatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":"slow down"}`)
	})

	_, err := client.Complete(context.Background(), []Message{UserMessage("hi")})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "slow down")
}

func TestArkClient_NotConfigured(t *testing.T) {
	for _, key := range []string{"", "your_api_key_here"} {
		client := NewArkClient(&config.Config{AIAPIKey: key, AIBaseURL: "http://127.0.0.1:1"}, zerolog.Nop())
		assert.False(t, client.Enabled())

		_, err := client.Complete(context.Background(), []Message{UserMessage("hi")})
		assert.ErrorIs(t, err, ErrNotConfigured)

		_, err = client.Forward(context.Background(), http.MethodPost, "chat/completions", nil)
		assert.ErrorIs(t, err, ErrNotConfigured)
	}
}

func TestArkClient_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for range 5 {
		_, err := client.Complete(context.Background(), []Message{UserMessage("hi")})
		require.Error(t, err)
	}
	assert.Equal(t, circuitbreaker.OpenState, client.BreakerState())

	_, err := client.Complete(context.Background(), []Message{UserMessage("hi")})
	assert.True(t, errors.Is(err, circuitbreaker.ErrOpen))
	assert.Equal(t, int32(5), calls.Load())
}

func TestArkClient_Forward(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, "no such model")
	})

	resp, err := client.Forward(context.Background(), http.MethodGet, "/models", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "text/plain", resp.ContentType)
	assert.Equal(t, "no such model", string(resp.Body))
}
