package llm

import "errors"

var (
	// ErrNoAPIKey is returned when a hosted provider has no credentials
	ErrNoAPIKey = errors.New("llm api key not set")

	// ErrNoSearcher is returned when an extractor has no document source
	ErrNoSearcher = errors.New("llm extractor needs a document searcher")

	// ErrUnknownProvider is returned for an unsupported provider name
	ErrUnknownProvider = errors.New("unknown llm provider")

	// ErrNoChoices is returned when the model sends an empty completion
	ErrNoChoices = errors.New("no completion choices")
)
