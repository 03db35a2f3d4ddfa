// Package persona runs the per-category searches that turn evidence into
// unmerged person candidates. Units share no mutable state; each runs on
// the searchers it is handed.
package persona

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/thomashgnt/driverjobpost/internal/model"
	"github.com/thomashgnt/driverjobpost/internal/query"
	"github.com/thomashgnt/driverjobpost/internal/resolve"
	"github.com/thomashgnt/driverjobpost/internal/source"
)

const defaultNetworkResults = 5

// Deps are the evidence sources one unit run may use. Each concurrent run
// gets its own set, backed by its own query client.
type Deps struct {
	Search     source.DocumentSearcher
	Structured source.StructuredSearcher
	Fetcher    source.PageFetcher
	Logger     *zap.Logger

	NetworkResults int // Documents per professional-network search
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Target is the organization a unit searches for
type Target struct {
	Company string
	Domain  string // Optional website, bare host or URL
}

// Findings are the unmerged candidates of one run plus the queries that
// failed and were counted as zero evidence
type Findings struct {
	Candidates []resolve.Candidate
	Failures   []string
}

// absorb records a failed query, or returns err when it must propagate
func (f *Findings) absorb(logger *zap.Logger, what, q string, err error) error {
	if isRateLimit(err) {
		return err
	}
	logger.Warn(what+" failed", zap.String("query", q), zap.Error(err))
	f.Failures = append(f.Failures, fmt.Sprintf("%s %q: %v", what, q, err))
	return nil
}

// merge appends other's candidates and failures
func (f *Findings) merge(other Findings) {
	f.Candidates = append(f.Candidates, other.Candidates...)
	f.Failures = append(f.Failures, other.Failures...)
}

// Unit searches for one category of decision maker
type Unit struct {
	Category     model.Category
	NetworkQuery string // Role terms for the professional-network search
	WebQuery     string // Role terms for the broad structured search
}

// Defaults returns the three persona units in persona order
func Defaults() []Unit {
	return []Unit{
		{
			Category:     model.CategoryOwnership,
			NetworkQuery: "CEO OR owner OR founder",
			WebQuery:     "CEO OR owner OR founder OR president",
		},
		{
			Category:     model.CategoryHiring,
			NetworkQuery: "hiring manager OR recruiter OR HR director OR talent acquisition",
			WebQuery:     "hiring manager OR recruiter OR HR director OR talent acquisition",
		},
		{
			Category:     model.CategoryOperationsFleet,
			NetworkQuery: "fleet manager OR operations OR safety",
			WebQuery:     "fleet manager OR operations manager OR safety director OR dispatch manager",
		},
	}
}

// Run searches the professional network for profiles, and falls back to a
// structured web search when no profile candidate with a usable title
// survives. A failed query
// counts as zero evidence; only rate limit exhaustion is returned.
func (u Unit) Run(ctx context.Context, deps Deps, target Target) (Findings, error) {
	logger := deps.logger().With(zap.String("persona", string(u.Category)))

	findings, err := u.searchNetwork(ctx, deps, target, logger)
	if err != nil {
		return Findings{}, err
	}
	if countCategorized(findings.Candidates) > 0 {
		return findings, nil
	}

	logger.Debug("no profile candidates, falling back to structured search",
		zap.String("company", target.Company))

	q := strings.TrimSpace(fmt.Sprintf("%q %s %s", target.Company, u.WebQuery, siteHint(target.Domain)))
	web, err := structuredCandidates(ctx, deps, q, target.Company, logger)
	if err != nil {
		return Findings{}, err
	}
	findings.merge(web)
	return findings, nil
}

func countCategorized(candidates []resolve.Candidate) int {
	n := 0
	for _, c := range candidates {
		if _, ok := resolve.Categorize(c.Title); ok {
			n++
		}
	}
	return n
}

func (u Unit) searchNetwork(ctx context.Context, deps Deps, target Target, logger *zap.Logger) (Findings, error) {
	var findings Findings
	if deps.Search == nil {
		return findings, nil
	}
	n := deps.NetworkResults
	if n <= 0 {
		n = defaultNetworkResults
	}

	q := fmt.Sprintf("site:linkedin.com/in/ %q %s", target.Company, u.NetworkQuery)
	docs, err := deps.Search.Search(ctx, q, n, model.DepthStandard)
	if err != nil {
		if err := findings.absorb(logger, "network search", q, err); err != nil {
			return Findings{}, err
		}
		return findings, nil
	}

	for _, doc := range docs {
		if !IsProfileURL(doc.URL) {
			continue
		}
		name, title := ParseProfileSnippet(doc.Name)
		if resolve.TokenCount(name) < 2 {
			logger.Debug("skipping profile with short name", zap.String("name", name))
			continue
		}
		if !resolve.CompanyInResult(target.Company, doc.Text(), name) {
			logger.Debug("company not confirmed in profile result",
				zap.String("name", name),
				zap.String("company", target.Company))
			continue
		}
		findings.Candidates = append(findings.Candidates, resolve.Candidate{
			Name:       name,
			Title:      title,
			SourceKind: model.SourceProfessionalNetwork,
			Company:    target.Company,
			ProfileURL: doc.URL,
		})
	}
	return findings, nil
}

// structuredCandidates runs one people extraction and turns every complete
// hit into a web search candidate
func structuredCandidates(ctx context.Context, deps Deps, q, company string, logger *zap.Logger) (Findings, error) {
	var findings Findings
	if deps.Structured == nil {
		return findings, nil
	}

	var hits model.PeopleHits
	found, err := deps.Structured.SearchStructured(ctx, q, source.PeopleShape, model.DepthDeep, &hits)
	if err != nil {
		if err := findings.absorb(logger, "structured search", q, err); err != nil {
			return Findings{}, err
		}
		return findings, nil
	}
	if !found {
		return findings, nil
	}

	for _, hit := range hits.People {
		name := strings.TrimSpace(hit.Name)
		title := strings.TrimSpace(hit.Title)
		if name == "" || title == "" {
			continue
		}
		findings.Candidates = append(findings.Candidates, resolve.Candidate{
			Name:       name,
			Title:      title,
			SourceKind: model.SourceWebSearch,
			Company:    company,
		})
	}
	return findings, nil
}

func isRateLimit(err error) bool {
	return errors.Is(err, query.ErrRateLimitExhausted)
}
