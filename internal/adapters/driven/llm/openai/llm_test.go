package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldtlabs/quarry/internal/core/domain"
)

func TestNewCompletionService(t *testing.T) {
	t.Run("requires API key", func(t *testing.T) {
		_, err := NewCompletionService(Config{})
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})

	t.Run("applies defaults", func(t *testing.T) {
		svc, err := NewCompletionService(Config{APIKey: "sk-test"})
		require.NoError(t, err)
		assert.Equal(t, DefaultModel, svc.ModelName())
	})
}

func TestCompletionService_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "The clinic offers physiotherapy."}},
			},
		})
	}))
	defer srv.Close()

	svc, err := NewCompletionService(Config{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	answer, err := svc.Complete(context.Background(), "What does the clinic offer?")

	require.NoError(t, err)
	assert.Equal(t, "The clinic offers physiotherapy.", answer)
}

func TestCompletionService_Complete_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	svc, err := NewCompletionService(Config{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), "question")

	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestCompletionService_Complete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	svc, err := NewCompletionService(Config{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), "question")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no completion")
}
