package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAICompatClient streams chat completions from any backend speaking the
// OpenAI wire format (OpenAI, DeepSeek, NVIDIA AI Endpoints).
type OpenAICompatClient struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
}

func NewOpenAICompatClient(baseURL, apiKey, model string, temperature float64) *OpenAICompatClient {
	return &OpenAICompatClient{
		httpClient:  &http.Client{Timeout: 90 * time.Second},
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
	}
}

func (c *OpenAICompatClient) Model() string { return c.model }

func (c *OpenAICompatClient) StreamGenerate(ctx context.Context, prompt string) (Stream, error) {
	reqBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": c.temperature,
		"stream":      true,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal llm stream request failed: %w", err)
	}

	url := strings.TrimRight(c.baseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build llm stream request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm stream request failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("llm stream status %d: %s", resp.StatusCode, string(raw))
	}

	return newOpenAIStream(resp), nil
}

type openAIStream struct {
	resp    *http.Response
	scanner *bufio.Scanner
	done    bool
}

func newOpenAIStream(resp *http.Response) *openAIStream {
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)
	return &openAIStream{resp: resp, scanner: scanner}
}

func (s *openAIStream) Recv() (Chunk, error) {
	if s.done {
		return nil, io.EOF
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			s.done = true
			return nil, io.EOF
		}

		var chunk struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
			} `json:"choices"`
		}
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		return DeltaChunk{Content: chunk.Choices[0].Delta.Content}, nil
	}

	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan llm stream failed: %w", err)
	}
	// Some backends close the connection without sending [DONE].
	s.done = true
	return nil, io.EOF
}

func (s *openAIStream) Close() error {
	return s.resp.Body.Close()
}
