package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/thomashgnt/driverjobpost/internal/model"
	"github.com/thomashgnt/driverjobpost/internal/persona"
	"github.com/thomashgnt/driverjobpost/internal/query"
	"github.com/thomashgnt/driverjobpost/internal/resolve"
	"github.com/thomashgnt/driverjobpost/internal/worker"
)

var tracer = otel.Tracer("github.com/thomashgnt/driverjobpost/internal/pipeline")

// Options tunes one resolution
type Options struct {
	MaxPeople      int
	Fallback       bool
	DiscoverDomain bool
	CrawlWebsite   bool
	EnrichProfiles bool
	EnrichWorkers  int
}

// DefaultOptions enables every step
func DefaultOptions() Options {
	return Options{
		MaxPeople:      model.MaxPeoplePerCompany,
		Fallback:       true,
		DiscoverDomain: true,
		CrawlWebsite:   true,
		EnrichProfiles: true,
		EnrichWorkers:  3,
	}
}

// OptionsFromConfig builds resolver options from the runtime configuration
func OptionsFromConfig(cfg *model.Config) Options {
	opts := DefaultOptions()
	if cfg.Resolve.MaxPeople > 0 && cfg.Resolve.MaxPeople < opts.MaxPeople {
		opts.MaxPeople = cfg.Resolve.MaxPeople
	}
	opts.Fallback = cfg.Resolve.Fallback
	opts.DiscoverDomain = cfg.Resolve.DiscoverDomain
	opts.CrawlWebsite = cfg.Resolve.CrawlWebsite
	opts.EnrichProfiles = cfg.Resolve.EnrichProfiles
	return opts
}

// Resolver turns a job posting into a ranked list of decision makers
type Resolver struct {
	sources SourceFactory
	units   []persona.Unit
	website persona.WebsiteUnit
	policy  resolve.ConfidencePolicy
	opts    Options
	logger  *zap.Logger
}

// NewResolver creates a resolver running the default persona units
func NewResolver(sources SourceFactory, policy resolve.ConfidencePolicy, opts Options, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxPeople <= 0 || opts.MaxPeople > model.MaxPeoplePerCompany {
		opts.MaxPeople = model.MaxPeoplePerCompany
	}
	if opts.EnrichWorkers <= 0 {
		opts.EnrichWorkers = 1
	}
	return &Resolver{
		sources: sources,
		units:   persona.Defaults(),
		website: persona.DefaultWebsiteUnit(),
		policy:  policy,
		opts:    opts,
		logger:  logger,
	}
}

// run is the mutable state of one resolution
type run struct {
	result *model.ResolutionResult
	pool   *resolve.Pool
	logger *zap.Logger
}

func (r *run) record(f persona.Findings) {
	for _, c := range f.Candidates {
		r.pool.AddOrMerge(c)
	}
	r.result.Errors = append(r.result.Errors, f.Failures...)
}

// Resolve runs every step for one posting. Missing evidence is not an
// error: the result may be empty. Only rate limit exhaustion is returned,
// so the caller can cool down and retry.
func (r *Resolver) Resolve(ctx context.Context, posting model.JobPosting) (*model.ResolutionResult, error) {
	company := posting.CompanyName
	if company == "" {
		return nil, ErrNoCompany
	}

	runID := uuid.NewString()
	logger := r.logger.With(zap.String("run_id", runID), zap.String("company", company))

	ctx, span := tracer.Start(ctx, "pipeline.Resolve")
	span.SetAttributes(attribute.String("run.id", runID), attribute.String("company", company))
	defer span.End()

	started := time.Now()
	state := &run{
		result: &model.ResolutionResult{
			RunID:     runID,
			Company:   company,
			Domain:    posting.CompanyDomain,
			JobURL:    posting.JobURL,
			StartedAt: started.UTC(),
		},
		pool:   resolve.NewPool(r.policy, logger),
		logger: logger,
	}

	err := r.resolve(ctx, posting, state)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("resolution aborted", zap.Error(err))
		return nil, fmt.Errorf("resolve %s: %w", company, err)
	}

	state.result.Candidates = state.pool.Len()
	state.result.Duration = time.Since(started)
	span.SetAttributes(
		attribute.Int("people", len(state.result.People)),
		attribute.Bool("fallback", state.result.Fallback))

	logger.Info("resolution complete",
		zap.Int("people", len(state.result.People)),
		zap.Int("high", state.result.HighConfidence()),
		zap.Int("candidates", state.result.Candidates),
		zap.Bool("fallback", state.result.Fallback),
		zap.Duration("duration", state.result.Duration))
	return state.result, nil
}

func (r *Resolver) resolve(ctx context.Context, posting model.JobPosting, state *run) error {
	deps, err := r.sources(state.logger)
	if err != nil {
		return err
	}
	target := persona.Target{Company: posting.CompanyName, Domain: posting.CompanyDomain}

	// Domain discovery
	if target.Domain == "" && r.opts.DiscoverDomain {
		domain, err := persona.FindCompanyDomain(ctx, deps.Search, target.Company, state.logger)
		if err != nil {
			return err
		}
		target.Domain = domain
		state.result.Domain = domain
	}

	// Contact named in the posting
	if posting.HasContact() {
		title, findings, err := persona.ContactTitle(ctx, deps, posting.ContactName, target.Company)
		if err != nil {
			return err
		}
		state.record(findings)
		state.pool.AddOrMerge(resolve.Candidate{
			Name:               posting.ContactName,
			Title:              resolve.PostingTitle(title),
			SourceKind:         model.SourceWebSearch,
			Company:            target.Company,
			MentionedInPosting: true,
			FromPosting:        true,
		})
	}

	// Persona units, concurrently, merged in persona order
	if err := r.runPersonas(ctx, target, state); err != nil {
		return err
	}

	// Company website
	if target.Domain != "" && r.opts.CrawlWebsite {
		findings, err := r.website.Run(ctx, deps, target)
		if err != nil {
			return err
		}
		state.record(findings)
	}

	// Fallback broadener, only without any High record
	if r.opts.Fallback && state.pool.CountHigh() == 0 {
		state.logger.Info("no high confidence contacts, running fallback search")
		findings, err := persona.Fallback(ctx, deps, target)
		if err != nil {
			return err
		}
		state.record(findings)
		state.result.Fallback = true
	}

	state.result.People = state.pool.Ranked(r.opts.MaxPeople)

	if r.opts.EnrichProfiles {
		if err := r.enrich(ctx, target, state); err != nil {
			return err
		}
	}
	return nil
}

type personaJob struct {
	unit    persona.Unit
	target  persona.Target
	sources SourceFactory
	logger  *zap.Logger
}

type personaResult struct {
	findings persona.Findings
	err      error
}

func (r *personaResult) GetError() error {
	return r.err
}

// Execute runs the unit on its own source set
func (j *personaJob) Execute(ctx context.Context) worker.Result {
	deps, err := j.sources(j.logger)
	if err != nil {
		return &personaResult{err: err}
	}
	findings, err := j.unit.Run(ctx, deps, j.target)
	return &personaResult{findings: findings, err: err}
}

func (r *Resolver) runPersonas(ctx context.Context, target persona.Target, state *run) error {
	jobs := make([]worker.Job, 0, len(r.units))
	for _, unit := range r.units {
		jobs = append(jobs, &personaJob{
			unit:    unit,
			target:  target,
			sources: r.sources,
			logger:  state.logger.With(zap.String("persona", string(unit.Category))),
		})
	}

	var rateLimited error
	for i, res := range worker.RunAll(ctx, len(jobs), jobs) {
		if res == nil {
			continue
		}
		if pr, ok := res.(*personaResult); ok {
			state.record(pr.findings)
		}
		err := res.GetError()
		if err == nil {
			continue
		}
		if errors.Is(err, query.ErrRateLimitExhausted) {
			rateLimited = err
			continue
		}
		category := r.units[i].Category
		state.logger.Warn("persona unit failed", zap.String("persona", string(category)), zap.Error(err))
		state.result.Errors = append(state.result.Errors, fmt.Sprintf("persona %s: %v", category, err))
	}
	return rateLimited
}

// enrich looks up profile links for ranked records that lack one, then
// ranks again. Fallback-only records are never enriched.
func (r *Resolver) enrich(ctx context.Context, target persona.Target, state *run) error {
	var missing []model.PersonRecord
	for _, p := range state.result.People {
		if p.ProfileURL == "" && !state.pool.FallbackOnly(p.Name) {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	urls := make([]string, len(missing))
	var (
		mu       sync.Mutex
		failures []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.EnrichWorkers)
	for i, p := range missing {
		g.Go(func() error {
			url, err := r.findProfile(gctx, p, target.Company, state.logger)
			if err != nil {
				if errors.Is(err, query.ErrRateLimitExhausted) {
					return err
				}
				mu.Lock()
				failures = append(failures, fmt.Sprintf("profile lookup %s: %v", p.Name, err))
				mu.Unlock()
				return nil
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	state.result.Errors = append(state.result.Errors, failures...)
	enriched := 0
	for i, p := range missing {
		if state.pool.AttachProfile(p.Name, urls[i]) {
			enriched++
		}
	}
	if enriched > 0 {
		state.logger.Debug("attached profile links", zap.Int("count", enriched))
		state.result.People = state.pool.Ranked(r.opts.MaxPeople)
	}
	return nil
}

func (r *Resolver) findProfile(ctx context.Context, p model.PersonRecord, company string, logger *zap.Logger) (string, error) {
	deps, err := r.sources(logger)
	if err != nil {
		return "", err
	}
	return persona.FindProfileURL(ctx, deps.Search, p.Name, p.Title, company)
}
