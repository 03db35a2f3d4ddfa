package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/thomashgnt/driverjobpost/internal/model"
	"github.com/thomashgnt/driverjobpost/internal/query"
)

// batchSleep pauses between postings (injectable for tests)
var batchSleep = func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// PostingResolver resolves one posting
type PostingResolver interface {
	Resolve(ctx context.Context, posting model.JobPosting) (*model.ResolutionResult, error)
}

// Publisher receives every successful resolution
type Publisher interface {
	Publish(ctx context.Context, posting model.JobPosting, result *model.ResolutionResult)
}

// BatchOptions paces a batch run
type BatchOptions struct {
	Delay                  time.Duration // Between postings
	MaxConsecutiveFailures int
	FailurePause           time.Duration // After MaxConsecutiveFailures failures in a row
	RateLimitPause         time.Duration // Before the single retry of a rate-limited posting
}

// BatchOptionsFromConfig builds batch options from the runtime configuration
func BatchOptionsFromConfig(cfg *model.Config) BatchOptions {
	return BatchOptions{
		Delay:                  cfg.Batch.Delay,
		MaxConsecutiveFailures: cfg.Batch.MaxConsecutiveFailures,
		FailurePause:           cfg.Batch.FailurePause,
		RateLimitPause:         cfg.Batch.RateLimitPause,
	}
}

// BatchOutcome is the result of one posting in a batch
type BatchOutcome struct {
	Index   int
	Posting model.JobPosting
	Result  *model.ResolutionResult
	Err     error
}

// BatchRunner resolves postings one after another
type BatchRunner struct {
	resolver  PostingResolver
	counter   *query.OverloadCounter
	publisher Publisher
	opts      BatchOptions
	logger    *zap.Logger

	// OnOutcome, when set, is called after each posting
	OnOutcome func(BatchOutcome)
}

// NewBatchRunner creates a batch runner. counter is the overload counter
// shared by the resolver's clients; publisher may be nil.
func NewBatchRunner(resolver PostingResolver, counter *query.OverloadCounter, publisher Publisher, opts BatchOptions, logger *zap.Logger) *BatchRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchRunner{
		resolver:  resolver,
		counter:   counter,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
	}
}

// Run resolves every posting in order. A failed posting is recorded and
// skipped. After MaxConsecutiveFailures failures in a row the batch pauses
// for FailurePause and then carries on; it does not halt. A posting that
// exhausts the rate limit twice halts the batch with ErrBatchHalted, and
// the outcomes gathered so far are returned with it.
func (b *BatchRunner) Run(ctx context.Context, postings []model.JobPosting) ([]BatchOutcome, error) {
	outcomes := make([]BatchOutcome, 0, len(postings))
	failures := 0

	for i, posting := range postings {
		if i > 0 {
			if err := batchSleep(ctx, b.opts.Delay); err != nil {
				return outcomes, err
			}
		}

		result, err := b.resolveWithCooldown(ctx, posting)
		outcome := BatchOutcome{Index: i, Posting: posting, Result: result, Err: err}
		outcomes = append(outcomes, outcome)
		if b.OnOutcome != nil {
			b.OnOutcome(outcome)
		}

		if err == nil {
			failures = 0
			if b.publisher != nil {
				b.publisher.Publish(ctx, posting, result)
			}
			continue
		}

		if errors.Is(err, query.ErrRateLimitExhausted) {
			return outcomes, fmt.Errorf("%w at posting %d of %d: %w", ErrBatchHalted, i+1, len(postings), err)
		}
		if ctx.Err() != nil {
			return outcomes, ctx.Err()
		}

		failures++
		b.logger.Warn("posting failed",
			zap.String("company", posting.CompanyName),
			zap.Int("consecutive_failures", failures),
			zap.Error(err))

		if b.opts.MaxConsecutiveFailures > 0 && failures >= b.opts.MaxConsecutiveFailures {
			b.logger.Warn("too many consecutive failures, pausing",
				zap.Int("failures", failures),
				zap.Duration("pause", b.opts.FailurePause))
			if err := batchSleep(ctx, b.opts.FailurePause); err != nil {
				return outcomes, err
			}
			failures = 0
		}
	}

	return outcomes, nil
}

// resolveWithCooldown retries a rate-limited posting once after a long
// pause and a counter reset
func (b *BatchRunner) resolveWithCooldown(ctx context.Context, posting model.JobPosting) (*model.ResolutionResult, error) {
	result, err := b.resolver.Resolve(ctx, posting)
	if !errors.Is(err, query.ErrRateLimitExhausted) {
		return result, err
	}

	b.logger.Warn("rate limit exhausted, cooling down before retry",
		zap.String("company", posting.CompanyName),
		zap.Duration("pause", b.opts.RateLimitPause))
	if err := batchSleep(ctx, b.opts.RateLimitPause); err != nil {
		return nil, err
	}
	if b.counter != nil {
		b.counter.Reset()
	}
	return b.resolver.Resolve(ctx, posting)
}
