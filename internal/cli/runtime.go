package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thomashgnt/driverjobpost/internal/model"
	"github.com/thomashgnt/driverjobpost/internal/notify"
	"github.com/thomashgnt/driverjobpost/internal/pipeline"
	"github.com/thomashgnt/driverjobpost/internal/resolve"
)

// runFlags are the flags shared by resolve and batch
type runFlags struct {
	timeout           time.Duration
	noCache           bool
	noNotify          bool
	noFallback        bool
	noWebsite         bool
	noEnrich          bool
	maxPeople         int
	structuredBackend string
	fetchBackend      string
	llmProvider       string
	llmModel          string
	outputDir         string
	httpProxy         string
	httpsProxy        string
}

func addRunFlags(cmd *cobra.Command, f *runFlags, defaultTimeout time.Duration) {
	cmd.Flags().DurationVar(&f.timeout, "timeout", defaultTimeout, "overall timeout")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the evidence cache")
	cmd.Flags().BoolVar(&f.noNotify, "no-notify", false, "do not send results to the webhooks")
	cmd.Flags().BoolVar(&f.noFallback, "no-fallback", false, "skip the broad fallback search")
	cmd.Flags().BoolVar(&f.noWebsite, "no-website", false, "skip the company website step")
	cmd.Flags().BoolVar(&f.noEnrich, "no-enrich", false, "skip profile link lookups")
	cmd.Flags().IntVar(&f.maxPeople, "max-people", 0, "people per company (at most 5)")
	cmd.Flags().StringVar(&f.structuredBackend, "structured", "", "structured extraction backend (linkup, llm)")
	cmd.Flags().StringVar(&f.fetchBackend, "fetch", "", "page fetch backend (linkup, local)")
	cmd.Flags().StringVar(&f.llmProvider, "llm-provider", "", "LLM provider for --structured llm (openai, ollama)")
	cmd.Flags().StringVar(&f.llmModel, "llm-model", "", "LLM model name")
	cmd.Flags().StringVar(&f.outputDir, "output-dir", "", "report directory (default from config)")
	cmd.Flags().StringVar(&f.httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	cmd.Flags().StringVar(&f.httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
}

// configure loads the configuration and applies flag overrides
func (f *runFlags) configure() (*model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if f.noCache {
		cfg.Cache.Enabled = false
	}
	if f.noNotify {
		cfg.Notify.Enabled = false
	}
	if f.noFallback {
		cfg.Resolve.Fallback = false
	}
	if f.noWebsite {
		cfg.Resolve.CrawlWebsite = false
	}
	if f.noEnrich {
		cfg.Resolve.EnrichProfiles = false
	}
	if f.maxPeople > 0 {
		cfg.Resolve.MaxPeople = f.maxPeople
	}
	if f.structuredBackend != "" {
		cfg.Structured.Backend = f.structuredBackend
	}
	if f.fetchBackend != "" {
		cfg.Fetch.Backend = f.fetchBackend
	}
	if f.llmProvider != "" || f.llmModel != "" {
		if f.llmProvider != "" {
			cfg.LLM.Provider = f.llmProvider
		}
		if f.llmModel != "" {
			cfg.LLM.Model = f.llmModel
		}
		// Provider credentials depend on the provider
		secrets, err := model.LoadSecrets()
		if err != nil {
			return nil, err
		}
		secrets.Apply(cfg)
	}
	if f.outputDir != "" {
		cfg.Output.Dir = f.outputDir
	}
	if f.httpProxy != "" {
		cfg.HTTP.HTTPProxy = f.httpProxy
	}
	if f.httpsProxy != "" {
		cfg.HTTP.HTTPSProxy = f.httpsProxy
	}
	if verbose {
		cfg.Output.Verbose = true
	}

	if cfg.Linkup.APIKey == "" {
		return nil, fmt.Errorf("LINKUP_API_KEY environment variable not set")
	}
	if cfg.Structured.Backend == "llm" && cfg.LLM.Provider == "openai" && cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	return cfg, nil
}

// runtime is everything a resolution run needs
type runtime struct {
	cfg      *model.Config
	logger   *zap.Logger
	shared   *pipeline.Shared
	resolver *pipeline.Resolver
	notifier *notify.Notifier
	renderer *pipeline.Renderer
}

func newRuntime(cfg *model.Config) (*runtime, error) {
	logger, err := newLogger(cfg.Output.Verbose)
	if err != nil {
		return nil, err
	}

	policy, err := resolve.PolicyFromConfig(cfg.Resolve)
	if err != nil {
		return nil, fmt.Errorf("resolve config: %w", err)
	}

	shared := pipeline.NewShared(cfg, logger)
	sources := pipeline.NewSourceFactory(cfg, shared)

	// Surface backend misconfiguration before any query is sent
	if _, err := sources(logger); err != nil {
		_ = shared.Close()
		return nil, err
	}

	return &runtime{
		cfg:      cfg,
		logger:   logger,
		shared:   shared,
		resolver: pipeline.NewResolver(sources, policy, pipeline.OptionsFromConfig(cfg), logger),
		notifier: notify.NewNotifier(cfg.Notify, logger),
		renderer: pipeline.NewRenderer(os.Stdout, cfg.Output.Verbose),
	}, nil
}

// publisher returns the notifier as a Publisher, or nil when disabled
func (r *runtime) publisher() pipeline.Publisher {
	if r.notifier == nil {
		return nil
	}
	return r.notifier
}

// Close waits for pending webhook deliveries and releases shared state
func (r *runtime) Close() {
	if r.notifier != nil {
		r.notifier.Wait()
		if r.cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "✓ Webhooks: %s\n", r.notifier.Summary())
		}
	}
	if err := r.shared.Close(); err != nil {
		r.logger.Warn("close shared state", zap.Error(err))
	}
	_ = r.logger.Sync()
}
