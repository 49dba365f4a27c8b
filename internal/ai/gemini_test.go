package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiChunk(texts ...string) string {
	parts := make([]map[string]string, 0, len(texts))
	for _, text := range texts {
		parts = append(parts, map[string]string{"text": text})
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{"parts": parts}},
		},
	})
	return "data: " + string(payload) + "\n\n"
}

func TestGeminiStreamGenerate(t *testing.T) {
	var gotBody map[string]interface{}
	var gotKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models/gemini-pro:streamGenerateContent", r.URL.Path)
		require.Equal(t, "sse", r.URL.Query().Get("alt"))
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = fmt.Fprint(w, geminiChunk("Hello"))
		_, _ = fmt.Fprint(w, geminiChunk(" world", "!"))
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "g-key", "gemini-pro", 0.7)
	stream, err := client.StreamGenerate(context.Background(), "You are a helpful AI assistant. Hi")
	require.NoError(t, err)
	defer stream.Close()

	var texts []string
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		assert.IsType(t, TextChunk(""), chunk)
		texts = append(texts, chunk.Text())
	}
	assert.Equal(t, []string{"Hello", " world!"}, texts)

	assert.Equal(t, "g-key", gotKey)
	generationConfig, ok := gotBody["generationConfig"].(map[string]interface{})
	require.True(t, ok)
	assert.InDelta(t, 0.7, generationConfig["temperature"].(float64), 1e-9)
}

func TestGeminiErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"invalid key"}}`, http.StatusForbidden)
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "bad-key", "gemini-pro", 0.7)
	_, err := client.StreamGenerate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
