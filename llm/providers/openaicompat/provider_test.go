package openaicompat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/microcrowd/engine/llm"
	"github.com/microcrowd/engine/llm/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*Provider, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := New(Config{
		ProviderName: "testprov",
		APIKey:       "sk-test",
		BaseURL:      srv.URL,
		DefaultModel: "test-model",
		Timeout:      5 * time.Second,
	}, zap.NewNop())
	// httptest uses plain HTTP; the hardened transport is unnecessary here.
	p.Client = srv.Client()
	return p, srv
}

func TestCompletion_Success(t *testing.T) {
	var gotAuth string
	var gotBody providers.OpenAICompatRequest

	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		resp := providers.OpenAICompatResponse{
			ID:    "cmpl-1",
			Model: "test-model",
			Choices: []providers.OpenAICompatChoice{{
				Index:        0,
				FinishReason: "stop",
				Message:      providers.OpenAICompatMessage{Role: "assistant", Content: "hello there"},
			}},
			Usage:   &providers.OpenAICompatUsage{PromptTokens: 10, CompletionTokens: 3, TotalTokens: 13},
			Created: time.Now().Unix(),
		}
		json.NewEncoder(w).Encode(resp)
	})

	resp, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "you are a tester"},
			{Role: llm.RoleUser, Content: "say hello"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "test-model", gotBody.Model) // default model applied
	assert.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "hello there", resp.Text())
	assert.Equal(t, "testprov", resp.Provider)
	assert.Equal(t, 13, resp.Usage.TotalTokens)
}

func TestCompletion_RequestModelWins(t *testing.T) {
	var gotBody providers.OpenAICompatRequest
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(providers.OpenAICompatResponse{
			Choices: []providers.OpenAICompatChoice{{Message: providers.OpenAICompatMessage{Content: "ok"}}},
		})
	})

	_, err := p.Completion(context.Background(), &llm.ChatRequest{
		Model:    "override-model",
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "override-model", gotBody.Model)
}

func TestCompletion_ErrorMapping(t *testing.T) {
	cases := []struct {
		status    int
		wantCode  llm.ErrorCode
		retryable bool
	}{
		{http.StatusUnauthorized, llm.ErrUnauthorized, false},
		{http.StatusTooManyRequests, llm.ErrRateLimited, true},
		{http.StatusBadGateway, llm.ErrUpstreamError, true},
		{http.StatusGatewayTimeout, llm.ErrUpstreamTimeout, true},
	}

	for _, tc := range cases {
		p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(`{"error":{"message":"nope"}}`))
		})

		_, err := p.Completion(context.Background(), &llm.ChatRequest{
			Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		})
		require.Error(t, err)

		llmErr, ok := err.(*llm.Error)
		require.True(t, ok, "status %d", tc.status)
		assert.Equal(t, tc.wantCode, llmErr.Code)
		assert.Equal(t, tc.retryable, llmErr.Retryable)
		assert.Equal(t, "testprov", llmErr.Provider)
	}
}

func TestCompletion_ContextCancelled(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Completion(ctx, &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)

	llmErr, ok := err.(*llm.Error)
	require.True(t, ok)
	assert.Equal(t, llm.ErrUpstreamError, llmErr.Code)
	assert.True(t, llmErr.Retryable)
}

func TestHealthCheck(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		w.Write([]byte(`{"data":[]}`))
	})

	status, err := p.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	assert.Greater(t, status.Latency, time.Duration(0))
}

func TestHealthCheck_Unhealthy(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	status, err := p.HealthCheck(context.Background())
	require.Error(t, err)
	assert.False(t, status.Healthy)
}
