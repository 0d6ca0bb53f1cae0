package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmirror/internal/core/domain"
)

func TestNewSummaryService_RequiresKey(t *testing.T) {
	_, err := NewSummaryService(Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSummarise(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.System)
		require.Len(t, req.Messages, 1)
		assert.Contains(t, req.Messages[0].Content, "quarterly figures")
		assert.Equal(t, 64, req.MaxTokens)

		_, _ = w.Write([]byte(`{"content":[
			{"type":"text","text":"  Revenue rose. "},
			{"type":"tool_use","text":"ignored"}]}`))
	}))
	defer srv.Close()

	s, err := NewSummaryService(Config{APIKey: "key", BaseURL: srv.URL})
	require.NoError(t, err)

	got, err := s.Summarise(context.Background(), "quarterly figures", 100)
	require.NoError(t, err)
	assert.Equal(t, "Revenue rose.", got)
	assert.Equal(t, DefaultModel, s.ModelName())
}

func TestSummarise_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	s, _ := NewSummaryService(Config{APIKey: "key", BaseURL: srv.URL})
	_, err := s.Summarise(context.Background(), "x", 100)
	assert.ErrorContains(t, err, "no text content")
}

func TestSummarise_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad"}}`))
	}))
	defer srv.Close()

	s, _ := NewSummaryService(Config{APIKey: "key", BaseURL: srv.URL})
	_, err := s.Summarise(context.Background(), "x", 100)
	assert.ErrorContains(t, err, "status 400")
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	s, _ := NewSummaryService(Config{APIKey: "key", BaseURL: srv.URL})
	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, s.Close())
}
