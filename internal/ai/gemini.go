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

// GeminiClient streams content from the Google Generative Language API, which
// uses its own request shape rather than the OpenAI wire format. With alt=sse
// the endpoint emits SSE data lines carrying GenerateContentResponse objects.
type GeminiClient struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
}

func NewGeminiClient(baseURL, apiKey, model string, temperature float64) *GeminiClient {
	return &GeminiClient{
		httpClient:  &http.Client{Timeout: 90 * time.Second},
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
	}
}

func (c *GeminiClient) Model() string { return c.model }

func (c *GeminiClient) StreamGenerate(ctx context.Context, prompt string) (Stream, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role":  "user",
				"parts": []map[string]string{{"text": prompt}},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature": c.temperature,
		},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal gemini request failed: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse",
		strings.TrimRight(c.baseURL, "/"), c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build gemini request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("gemini status %d: %s", resp.StatusCode, string(raw))
	}

	return newGeminiStream(resp), nil
}

type geminiStream struct {
	resp    *http.Response
	scanner *bufio.Scanner
	done    bool
}

func newGeminiStream(resp *http.Response) *geminiStream {
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)
	return &geminiStream{resp: resp, scanner: scanner}
}

func (s *geminiStream) Recv() (Chunk, error) {
	if s.done {
		return nil, io.EOF
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

		var chunk struct {
			Candidates []struct {
				Content struct {
					Parts []struct {
						Text string `json:"text"`
					} `json:"parts"`
				} `json:"content"`
			} `json:"candidates"`
		}
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			continue
		}
		if len(chunk.Candidates) == 0 {
			continue
		}
		var text strings.Builder
		for _, part := range chunk.Candidates[0].Content.Parts {
			text.WriteString(part.Text)
		}
		return TextChunk(text.String()), nil
	}

	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan gemini stream failed: %w", err)
	}
	s.done = true
	return nil, io.EOF
}

func (s *geminiStream) Close() error {
	return s.resp.Body.Close()
}
