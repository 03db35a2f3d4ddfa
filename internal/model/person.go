package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category is the persona a decision maker belongs to
type Category string

const (
	CategoryOwnership       Category = "Owners / Boss"
	CategoryHiring          Category = "Hiring"
	CategoryOperationsFleet Category = "Operations & Fleet Management"
)

// Categories lists every category in persona order
func Categories() []Category {
	return []Category{CategoryOwnership, CategoryHiring, CategoryOperationsFleet}
}

// SourceKind identifies where a person record came from, ordered by trust
type SourceKind int

const (
	SourceUnknown             SourceKind = iota
	SourceWebSearch                      // Broad web / structured search
	SourceProfessionalNetwork            // Professional-network profile result
)

// Trust returns a number that is higher for more trusted sources
func (s SourceKind) Trust() int {
	return int(s)
}

// Known reports whether the source kind is one of the defined kinds
func (s SourceKind) Known() bool {
	return s == SourceWebSearch || s == SourceProfessionalNetwork
}

func (s SourceKind) String() string {
	switch s {
	case SourceProfessionalNetwork:
		return "LinkedIn"
	case SourceWebSearch:
		return "Web Search"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the source kind as its display label
func (s SourceKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ParseSourceKind parses a display label or config name into a SourceKind
func ParseSourceKind(s string) (SourceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linkedin", "professional_network", "professional-network":
		return SourceProfessionalNetwork, nil
	case "web search", "web_search", "web-search", "web":
		return SourceWebSearch, nil
	default:
		return SourceUnknown, fmt.Errorf("unknown source kind: %q", s)
	}
}

// Confidence is the trust tier of a resolved person, Low < Medium < High
type Confidence int

const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "High"
	case ConfidenceMedium:
		return "Medium"
	default:
		return "Low"
	}
}

// MarshalJSON encodes the confidence as its label
func (c Confidence) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// PersonRecord is one resolved decision maker
type PersonRecord struct {
	Name               string     `json:"name"`
	Title              string     `json:"title"`
	Category           Category   `json:"category"`
	SourceKind         SourceKind `json:"source"`
	ProfileURL         string     `json:"linkedin,omitempty"`
	MentionedInPosting bool       `json:"mentioned_in_job_posting"`
	Confidence         Confidence `json:"confidence"`
}

// Key returns the identity key of the record within one resolution run
func (p PersonRecord) Key() string {
	return PersonKey(p.Name)
}

// Status returns the legacy Valid/Invalid label (Valid when a profile link is known)
func (p PersonRecord) Status() string {
	if p.ProfileURL != "" {
		return "Valid"
	}
	return "Invalid"
}

// PersonKey normalizes a name into its pool key
func PersonKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
