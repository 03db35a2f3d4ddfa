package persona

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/thomashgnt/driverjobpost/internal/model"
	"github.com/thomashgnt/driverjobpost/internal/resolve"
	"github.com/thomashgnt/driverjobpost/internal/source"
)

// FindCompanyDomain returns the organization's own website URL, or "" when
// no search result belongs to it. A result only counts when every
// meaningful word of the cleaned company name appears in its host.
func FindCompanyDomain(ctx context.Context, searcher source.DocumentSearcher, company string, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	clean := resolve.CleanCompanyName(company)
	if clean == "" {
		return "", nil
	}

	queries := []string{
		fmt.Sprintf("%q official website", clean),
		clean + " company homepage",
	}
	for _, q := range queries {
		candidate, err := source.FirstURL(ctx, searcher, q, true)
		if err != nil {
			if isRateLimit(err) {
				return "", err
			}
			logger.Warn("domain search failed", zap.String("query", q), zap.Error(err))
			continue
		}
		if candidate == "" {
			continue
		}
		if resolve.DomainMatchesCompany(candidate, clean) {
			logger.Info("found company domain", zap.String("company", company), zap.String("url", candidate))
			return candidate, nil
		}
		logger.Debug("domain does not match company",
			zap.String("company", clean),
			zap.String("url", candidate))
	}

	logger.Info("no matching domain", zap.String("company", company))
	return "", nil
}

// FindProfileURL returns the first professional-network profile found for
// a person, or "". A hit must name the same person and confirm the company
// outside the person's name.
func FindProfileURL(ctx context.Context, searcher source.DocumentSearcher, name, title, company string) (string, error) {
	q := strings.Join(strings.Fields(fmt.Sprintf("%s %s %s LinkedIn", name, title, company)), " ")
	docs, err := searcher.Search(ctx, q, 5, model.DepthStandard)
	if err != nil {
		return "", err
	}
	key := model.PersonKey(name)
	for _, doc := range docs {
		if !IsProfileURL(doc.URL) {
			continue
		}
		found, _ := ParseProfileSnippet(doc.Name)
		if model.PersonKey(found) != key {
			continue
		}
		if !resolve.CompanyInResult(company, doc.Text(), found) {
			continue
		}
		return doc.URL, nil
	}
	return "", nil
}

// ContactTitle looks up the title of the contact named in a job posting.
// It returns "" when nothing was found; failed lookups are absorbed.
func ContactTitle(ctx context.Context, deps Deps, contact, company string) (string, Findings, error) {
	var findings Findings
	if deps.Structured == nil {
		return "", findings, nil
	}
	logger := deps.logger()

	q := fmt.Sprintf("%q %q job title role", contact, company)
	var hit model.TitleHit
	found, err := deps.Structured.SearchStructured(ctx, q, source.PersonTitleShape, model.DepthStandard, &hit)
	if err != nil {
		if err := findings.absorb(logger, "contact title search", q, err); err != nil {
			return "", Findings{}, err
		}
		return "", findings, nil
	}
	if !found {
		return "", findings, nil
	}
	return strings.TrimSpace(hit.Title), findings, nil
}

// Fallback runs one broad people search with generic role terms. Every
// candidate is forced to Low confidence.
func Fallback(ctx context.Context, deps Deps, target Target) (Findings, error) {
	logger := deps.logger().With(zap.String("persona", "fallback"))

	q := fmt.Sprintf("%q trucking office manager OR coordinator OR dispatch OR assistant OR employee", target.Company)
	findings, err := structuredCandidates(ctx, deps, q, target.Company, logger)
	if err != nil {
		return Findings{}, err
	}
	for i := range findings.Candidates {
		findings.Candidates[i].ForceLow = true
	}
	return findings, nil
}
