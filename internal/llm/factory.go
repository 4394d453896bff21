package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/cartographer/internal/model"
)

// DefaultOllamaURL is the OpenAI-compatible endpoint of a local Ollama server
const DefaultOllamaURL = "http://localhost:11434/v1"

// NewProvider creates a new LLM provider based on configuration.
// An empty provider name disables summaries and returns nil.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(config.Provider)) {
	case "openai":
		return NewOpenAIProvider(config)

	case "ollama":
		// Ollama speaks the OpenAI chat API and ignores the key
		if config.BaseURL == "" {
			config.BaseURL = DefaultOllamaURL
		}
		if config.APIKey == "" {
			config.APIKey = "ollama"
		}
		p, err := NewOpenAIProvider(config)
		if err != nil {
			return nil, err
		}
		p.name = "ollama"
		return p, nil

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(c model.LLMConfig, api model.APIConfig) Config {
	return Config{
		Provider:   c.Provider,
		Model:      c.Model,
		APIKey:     c.APIKey,
		BaseURL:    c.BaseURL,
		Timeout:    c.Timeout,
		MaxTokens:  c.MaxTokens,
		HTTPProxy:  api.HTTPProxy,
		HTTPSProxy: api.HTTPSProxy,
	}
}
