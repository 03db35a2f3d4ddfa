package resolve

import (
	"fmt"

	"github.com/thomashgnt/driverjobpost/internal/model"
)

// ConfidencePolicy decides when a record without a profile link or posting
// mention is Medium rather than Low
type ConfidencePolicy struct {
	MediumSources   []model.SourceKind // Source kinds that may reach Medium
	MinMediumTokens int                // Never below two
}

// DefaultConfidencePolicy allows Medium from every known source kind for
// names of two or more tokens
func DefaultConfidencePolicy() ConfidencePolicy {
	return ConfidencePolicy{
		MediumSources:   []model.SourceKind{model.SourceProfessionalNetwork, model.SourceWebSearch},
		MinMediumTokens: minNameTokens,
	}
}

// PolicyFromConfig builds the policy from configured source names
func PolicyFromConfig(cfg model.ResolveConfig) (ConfidencePolicy, error) {
	policy := ConfidencePolicy{MinMediumTokens: cfg.MinMediumTokens}
	for _, name := range cfg.MediumSources {
		kind, err := model.ParseSourceKind(name)
		if err != nil {
			return ConfidencePolicy{}, fmt.Errorf("medium_sources: %w", err)
		}
		policy.MediumSources = append(policy.MediumSources, kind)
	}
	return policy, nil
}

// Confidence computes the tier for a record's evidence
func (p ConfidencePolicy) Confidence(name string, source model.SourceKind, profileURL string, mentioned bool) model.Confidence {
	if profileURL != "" || mentioned {
		return model.ConfidenceHigh
	}

	minTokens := p.MinMediumTokens
	if minTokens < minNameTokens {
		minTokens = minNameTokens
	}
	if !source.Known() || TokenCount(name) < minTokens {
		return model.ConfidenceLow
	}
	for _, kind := range p.MediumSources {
		if kind == source {
			return model.ConfidenceMedium
		}
	}
	return model.ConfidenceLow
}
