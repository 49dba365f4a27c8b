package app

import (
	"context"
	"fmt"

	"mcp-chat/internal/ai"
	"mcp-chat/internal/config"
)

const (
	defaultTemperature = 0.7
	defaultPrompt      = "You are a helpful AI assistant. {input}"
)

// Pipeline couples the fixed system prompt with one configured streaming
// client. The model id is the identifier the caller requested, and is what
// gets recorded on both messages of a turn.
type Pipeline struct {
	model  string
	prompt ai.PromptTemplate
	client ai.StreamClient
}

func (p *Pipeline) Model() string { return p.model }

func (p *Pipeline) Stream(ctx context.Context, input string) (ai.Stream, error) {
	return p.client.StreamGenerate(ctx, p.prompt.Render(input))
}

// ModelFactory resolves a model identifier to a generation pipeline. The set
// of supported identifiers is closed; anything else fails with
// ErrUnsupportedModel before any network or storage call. Clients are built
// fresh on every resolution, nothing is pooled.
type ModelFactory struct {
	builders map[string]func() ai.StreamClient
}

func NewModelFactory(cfg config.ProviderConfig) *ModelFactory {
	return &ModelFactory{
		builders: map[string]func() ai.StreamClient{
			"gpt-3.5-turbo": func() ai.StreamClient {
				return ai.NewOpenAICompatClient(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, "gpt-3.5-turbo", defaultTemperature)
			},
			"gemini-pro": func() ai.StreamClient {
				return ai.NewGeminiClient(cfg.Google.BaseURL, cfg.Google.APIKey, "gemini-pro", defaultTemperature)
			},
			"deepseek-r1": func() ai.StreamClient {
				return ai.NewOpenAICompatClient(cfg.DeepSeek.BaseURL, cfg.DeepSeek.APIKey, "deepseek-r1", defaultTemperature)
			},
			"nvidia-ai": func() ai.StreamClient {
				// NVIDIA AI Endpoints serve deepseek-r1 behind the OpenAI wire format.
				return ai.NewOpenAICompatClient(cfg.NVIDIA.BaseURL, cfg.NVIDIA.APIKey, "deepseek-ai/deepseek-r1", defaultTemperature)
			},
		},
	}
}

func (f *ModelFactory) Resolve(model string) (*Pipeline, error) {
	build, ok := f.builders[model]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, model)
	}
	return &Pipeline{
		model:  model,
		prompt: ai.NewPromptTemplate(defaultPrompt),
		client: build(),
	}, nil
}
