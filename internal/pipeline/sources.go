package pipeline

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/thomashgnt/driverjobpost/internal/cache"
	"github.com/thomashgnt/driverjobpost/internal/llm"
	"github.com/thomashgnt/driverjobpost/internal/model"
	"github.com/thomashgnt/driverjobpost/internal/persona"
	"github.com/thomashgnt/driverjobpost/internal/query"
	"github.com/thomashgnt/driverjobpost/internal/source"
	"github.com/thomashgnt/driverjobpost/internal/util"
	"github.com/thomashgnt/driverjobpost/internal/worker"
)

// SourceFactory builds a fresh set of evidence sources on top of a new
// query client. Concurrent tasks each call it once so that no connection
// state is shared between them.
type SourceFactory func(logger *zap.Logger) (persona.Deps, error)

// Shared is the process-wide state every source set reports to
type Shared struct {
	Counter *query.OverloadCounter
	Limiter *worker.Limiter
	Cache   cache.Cache
	Robots  *util.RobotsChecker
	Browser source.PageFetcher // Script rendering for the local fetch backend
}

// NewShared builds the shared state described by cfg
func NewShared(cfg *model.Config, logger *zap.Logger) *Shared {
	shared := &Shared{
		Counter: query.NewOverloadCounter(cfg.Retry.OverloadThreshold),
		Limiter: worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		Cache:   cache.New(cfg.Cache),
	}
	if cfg.Fetch.Backend == "local" {
		if cfg.Fetch.RespectRobots {
			shared.Robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, 10*time.Second)
		}
		shared.Browser = source.NewBrowserFetcher(cfg.Fetch.BrowserBin, cfg.HTTP.FetchTimeout, logger)
	}
	return shared
}

// Close releases the browser, if one was started
func (s *Shared) Close() error {
	if b, ok := s.Browser.(*source.BrowserFetcher); ok {
		return b.Close()
	}
	return nil
}

// NewSourceFactory returns a factory wiring the configured backends:
// Linkup for search, Linkup or an LLM for structured extraction, and
// Linkup or a local fetcher for pages, all behind the evidence cache.
func NewSourceFactory(cfg *model.Config, shared *Shared) SourceFactory {
	return func(logger *zap.Logger) (persona.Deps, error) {
		if logger == nil {
			logger = zap.NewNop()
		}
		client := query.NewClient(query.OptionsFromConfig(cfg), shared.Counter, shared.Limiter, logger)

		linkup, err := source.NewLinkup(client, source.LinkupOptionsFromConfig(cfg), logger)
		if err != nil {
			return persona.Deps{}, err
		}

		var search source.DocumentSearcher = linkup
		var structured source.StructuredSearcher = linkup
		var fetcher source.PageFetcher = linkup

		switch cfg.Structured.Backend {
		case "", "linkup":
		case "llm":
			llmConfig := llm.ConfigFromModel(cfg)
			doer := &query.Doer{Client: client, Label: "llm completion", Timeout: llmConfig.CompletionTimeout()}
			extractor, err := llm.NewExtractor(llmConfig, linkup, doer, logger)
			if err != nil {
				return persona.Deps{}, fmt.Errorf("structured backend: %w", err)
			}
			structured = extractor
		default:
			return persona.Deps{}, fmt.Errorf("%w: structured backend %q", ErrUnknownBackend, cfg.Structured.Backend)
		}

		switch cfg.Fetch.Backend {
		case "", "linkup":
		case "local":
			fetcher = source.NewHTTPFetcher(client, shared.Robots, shared.Browser, cfg.HTTP.FetchTimeout, logger)
		default:
			return persona.Deps{}, fmt.Errorf("%w: fetch backend %q", ErrUnknownBackend, cfg.Fetch.Backend)
		}

		if shared.Cache != nil {
			cached := source.NewCached(search, structured, fetcher, shared.Cache, cfg.Cache.MemoryTTL, logger)
			search, structured, fetcher = cached, cached, cached
		}

		return persona.Deps{
			Search:         search,
			Structured:     structured,
			Fetcher:        fetcher,
			Logger:         logger,
			NetworkResults: cfg.Resolve.NetworkResults,
		}, nil
	}
}
