package model

import "time"

// MaxPeoplePerCompany caps the number of people returned per organization
const MaxPeoplePerCompany = 5

// ResolutionResult is the ranked outcome of one organization resolution.
// People is sorted by confidence, then source trust, and never longer than
// MaxPeoplePerCompany.
type ResolutionResult struct {
	RunID      string         `json:"run_id"`
	Company    string         `json:"company"`
	Domain     string         `json:"domain,omitempty"`
	JobURL     string         `json:"job_url,omitempty"`
	People     []PersonRecord `json:"people"`
	Fallback   bool           `json:"fallback_used"`     // Fallback broadener ran
	Candidates int            `json:"candidates_merged"` // Pool size before trim
	Errors     []string       `json:"errors,omitempty"`  // Per-query failures absorbed as zero evidence
	StartedAt  time.Time      `json:"started_at"`
	Duration   time.Duration  `json:"duration_ns"`
}

// HighConfidence counts people with High confidence
func (r *ResolutionResult) HighConfidence() int {
	n := 0
	for _, p := range r.People {
		if p.Confidence == ConfidenceHigh {
			n++
		}
	}
	return n
}

// ByCategory groups people by category, keeping rank order inside each group
func (r *ResolutionResult) ByCategory() map[Category][]PersonRecord {
	out := make(map[Category][]PersonRecord)
	for _, p := range r.People {
		out[p.Category] = append(out[p.Category], p)
	}
	return out
}
