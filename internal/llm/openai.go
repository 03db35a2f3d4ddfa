package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/thomashgnt/driverjobpost/internal/model"
	"github.com/thomashgnt/driverjobpost/internal/source"
	"github.com/thomashgnt/driverjobpost/internal/util"
)

// Extractor implements source.StructuredSearcher: it runs a document search
// for the query and asks a chat model to fill the shape from the results.
type Extractor struct {
	client   *openai.Client
	config   Config
	searcher source.DocumentSearcher
	logger   *zap.Logger
}

// NewOpenAIExtractor creates an extractor talking to an OpenAI-compatible API.
// Completions are sent through doer; a nil doer gets a plain HTTP client.
func NewOpenAIExtractor(config Config, searcher source.DocumentSearcher, doer openai.HTTPDoer, logger *zap.Logger) (*Extractor, error) {
	if config.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if searcher == nil {
		return nil, ErrNoSearcher
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if doer == nil {
		doer = &http.Client{
			Timeout: config.CompletionTimeout(),
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
			},
		}
	}
	clientConfig.HTTPClient = doer

	return &Extractor{
		client:   openai.NewClientWithConfig(clientConfig),
		config:   config,
		searcher: searcher,
		logger:   logger,
	}, nil
}

// Name returns the provider name
func (e *Extractor) Name() string {
	if e.config.Provider == "" {
		return "openai"
	}
	return e.config.Provider
}

// SearchStructured fills out from the documents found for query. It reports
// false when the search found nothing or the model returned an empty answer.
// Search errors are returned unchanged so rate limit exhaustion propagates.
func (e *Extractor) SearchStructured(ctx context.Context, query string, shape source.Shape, depth model.Depth, out any) (bool, error) {
	maxDocs := e.config.MaxDocuments
	if maxDocs <= 0 {
		maxDocs = DefaultConfig().MaxDocuments
	}

	docs, err := e.searcher.Search(ctx, query, maxDocs, depth)
	if err != nil {
		return false, err
	}
	if len(docs) == 0 {
		e.logger.Debug("no documents to extract from", zap.String("query", query))
		return false, nil
	}

	prompt, err := BuildPrompt(query, shape, docs)
	if err != nil {
		return false, err
	}

	raw, err := e.complete(ctx, prompt)
	if err != nil {
		return false, err
	}

	if e.config.StrictEvidence {
		var dropped []string
		raw, dropped, err = groundNames(raw, docs)
		if err != nil {
			e.logger.Warn("model answer is not a JSON object", zap.String("query", query), zap.Error(err))
			return false, nil
		}
		for _, name := range dropped {
			e.logger.Debug("dropped name absent from evidence",
				zap.String("query", query),
				zap.String("name", name))
		}
	}

	if isEmptyAnswer(raw) {
		e.logger.Debug("model found no answer", zap.String("query", query))
		return false, nil
	}

	ok, err := shape.Decode(raw, out)
	if err != nil {
		e.logger.Warn("model answer does not match shape", zap.String("query", query), zap.Error(err))
		return false, nil
	}
	return ok, nil
}

// complete sends one chat completion in JSON mode and returns the raw answer
func (e *Extractor) complete(ctx context.Context, prompt string) ([]byte, error) {
	modelName := e.config.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	maxTokens := e.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s completion: %w", e.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w from %s", ErrNoChoices, e.Name())
	}

	e.logger.Debug("model answered",
		zap.String("model", modelName),
		zap.Int("tokens", resp.Usage.TotalTokens))

	return []byte(stripFence(resp.Choices[0].Message.Content)), nil
}

// stripFence removes a markdown code fence some local models wrap JSON in
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// isEmptyAnswer reports whether every top-level value is null, an empty
// string, an empty list or an empty object
func isEmptyAnswer(raw []byte) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return true
	}
	for _, v := range obj {
		switch strings.TrimSpace(string(v)) {
		case "null", `""`, "[]", "{}":
			continue
		}
		return false
	}
	return true
}
