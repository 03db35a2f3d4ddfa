// Package llm implements structured extraction on top of an OpenAI-compatible
// chat model: documents from a search are handed to the model, which fills a
// source.Shape as a JSON object.
package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/thomashgnt/driverjobpost/internal/model"
	"github.com/thomashgnt/driverjobpost/internal/source"
)

const (
	// maxDocChars bounds the content of one document inside the prompt
	maxDocChars = 2000

	defaultOllamaBaseURL = "http://localhost:11434/v1"
)

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for one completion
	Timeout int // seconds

	// StrictEvidence drops extracted people whose name appears in no document
	StrictEvidence bool

	MaxTokens int

	// MaxDocuments is the number of search documents given to the model
	MaxDocuments int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:       "", // Disabled by default
		Model:          "",
		Timeout:        60,
		StrictEvidence: true,
		MaxTokens:      1000,
		MaxDocuments:   8,
	}
}

// CompletionTimeout returns the timeout for one completion attempt
func (c Config) CompletionTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

// ConfigFromModel converts the runtime configuration to llm.Config
func ConfigFromModel(cfg *model.Config) Config {
	c := DefaultConfig()
	c.Provider = cfg.LLM.Provider
	c.Model = cfg.LLM.Model
	c.APIKey = cfg.LLM.APIKey
	c.BaseURL = cfg.LLM.BaseURL
	if cfg.LLM.Timeout > 0 {
		c.Timeout = cfg.LLM.Timeout
	}
	if cfg.LLM.MaxTokens > 0 {
		c.MaxTokens = cfg.LLM.MaxTokens
	}
	c.HTTPProxy = cfg.HTTP.HTTPProxy
	c.HTTPSProxy = cfg.HTTP.HTTPSProxy
	c.NoProxy = cfg.HTTP.NoProxy
	return c
}

const systemPrompt = "You extract facts about companies from web search results. " +
	"You answer with a single JSON object and nothing else."

// BuildPrompt constructs the extraction prompt for a query, its result schema
// and the documents the answer must come from
func BuildPrompt(query string, shape source.Shape, docs []model.Document) (string, error) {
	schema, err := shape.JSON()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\n", query)
	b.WriteString(`RULES:
1. Use ONLY the search results below. Do not add people or facts that are not in them.
2. Answer with one JSON object that matches this JSON Schema:
`)
	b.WriteString(schema)
	b.WriteString(`
3. If the results do not answer the question, use an empty list or an empty string.
4. Copy names exactly as written in the results.

Search results:
`)
	for i, doc := range docs {
		fmt.Fprintf(&b, "\n[%d] %s\n%s\n%s\n", i+1, doc.Name, doc.URL, clip(doc.Content, maxDocChars))
	}
	return b.String(), nil
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
