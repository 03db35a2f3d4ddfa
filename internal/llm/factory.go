package llm

import (
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/thomashgnt/driverjobpost/internal/source"
)

// NewExtractor creates a structured extractor based on configuration
func NewExtractor(config Config, searcher source.DocumentSearcher, doer openai.HTTPDoer, logger *zap.Logger) (*Extractor, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIExtractor(config, searcher, doer, logger)

	case "ollama":
		// Ollama serves the OpenAI chat API and ignores the key
		if config.BaseURL == "" {
			config.BaseURL = defaultOllamaBaseURL
		}
		if config.APIKey == "" {
			config.APIKey = "ollama"
		}
		return NewOpenAIExtractor(config, searcher, doer, logger)

	default:
		return nil, fmt.Errorf("%w: %q (supported: openai, ollama)", ErrUnknownProvider, config.Provider)
	}
}
