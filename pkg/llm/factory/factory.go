package factory

import (
	"context"
	"fmt"

	"prime-research/pkg/llm"
	"prime-research/pkg/llm/gemini"
	"prime-research/pkg/llm/ollama"
)

type Config struct {
	Provider string // "gemini" or "ollama"
	Model    string
	BaseURL  string // ollama only
	APIKey   string // gemini only
}

func NewLLMProvider(ctx context.Context, cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.NewGeminiProvider(ctx, cfg.APIKey, cfg.Model)
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
