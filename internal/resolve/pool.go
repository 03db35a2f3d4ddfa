package resolve

import (
	"strings"

	"go.uber.org/zap"

	"github.com/thomashgnt/driverjobpost/internal/model"
)

// defaultPostingTitle is used for a posting contact whose title could not be found
const defaultPostingTitle = "Recruiter / Contact"

// Candidate is one unmerged person sighting
type Candidate struct {
	Name               string
	Title              string
	SourceKind         model.SourceKind
	Company            string // Target organization, used by the title cross-check
	ProfileURL         string
	MentionedInPosting bool
	FromPosting        bool // Sourced from the job posting itself
	ForceLow           bool // Fallback evidence, never above Low on insert
}

// Outcome reports what AddOrMerge did with a candidate
type Outcome int

const (
	OutcomeInserted Outcome = iota
	OutcomeMerged
	RejectedEmptyName
	RejectedBlocklisted
	RejectedSingleToken
	RejectedWrongCompany
	RejectedUncategorized
)

// Accepted reports whether the candidate ended up in the pool
func (o Outcome) Accepted() bool {
	return o == OutcomeInserted || o == OutcomeMerged
}

func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeMerged:
		return "merged"
	case RejectedEmptyName:
		return "empty name"
	case RejectedBlocklisted:
		return "blocklisted name"
	case RejectedSingleToken:
		return "single-token name"
	case RejectedWrongCompany:
		return "title names another company"
	case RejectedUncategorized:
		return "title matches no category"
	default:
		return "unknown"
	}
}

// Pool holds the merged person records of one resolution run, keyed by
// lowercased name. It owns its records; readers get copies. A Pool is not
// safe for concurrent use.
type Pool struct {
	records  map[string]*model.PersonRecord
	order    []string
	fallback map[string]bool // Keys seen only through forced-Low evidence
	policy   ConfidencePolicy
	logger   *zap.Logger
}

// NewPool creates an empty pool
func NewPool(policy ConfidencePolicy, logger *zap.Logger) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		records:  make(map[string]*model.PersonRecord),
		fallback: make(map[string]bool),
		policy:   policy,
		logger:   logger,
	}
}

// AddOrMerge validates a candidate and inserts it, or merges it into the
// record with the same lowercased name. Merging only ever upgrades: the
// more trusted source kind wins the title, profile links and posting
// mentions accumulate, and confidence never drops.
func (p *Pool) AddOrMerge(c Candidate) Outcome {
	name := strings.TrimSpace(c.Name)
	title := strings.TrimSpace(c.Title)

	if outcome := checkName(name); outcome != OutcomeInserted {
		p.reject(name, title, outcome)
		return outcome
	}

	if c.Company != "" && !TitleCompanyMatches(title, c.Company) {
		p.reject(name, title, RejectedWrongCompany)
		return RejectedWrongCompany
	}

	category, ok := Categorize(title)
	if !ok {
		if !(c.FromPosting && c.MentionedInPosting) {
			p.reject(name, title, RejectedUncategorized)
			return RejectedUncategorized
		}
		category = model.CategoryHiring
	}

	// Forced-Low evidence carries no High signals
	if c.ForceLow {
		c.ProfileURL = ""
		c.MentionedInPosting = false
	}

	confidence := model.ConfidenceLow
	if !c.ForceLow {
		confidence = p.policy.Confidence(name, c.SourceKind, c.ProfileURL, c.MentionedInPosting)
	}

	key := model.PersonKey(name)
	existing, found := p.records[key]
	if !found {
		p.records[key] = &model.PersonRecord{
			Name:               name,
			Title:              title,
			Category:           category,
			SourceKind:         c.SourceKind,
			ProfileURL:         c.ProfileURL,
			MentionedInPosting: c.MentionedInPosting,
			Confidence:         confidence,
		}
		p.order = append(p.order, key)
		if c.ForceLow {
			p.fallback[key] = true
		}
		return OutcomeInserted
	}

	if !c.ForceLow {
		delete(p.fallback, key)
	}

	if c.SourceKind.Trust() > existing.SourceKind.Trust() {
		existing.SourceKind = c.SourceKind
		existing.Title = title
		existing.Category = category
	}
	if existing.ProfileURL == "" && c.ProfileURL != "" {
		existing.ProfileURL = c.ProfileURL
	}
	if c.MentionedInPosting {
		existing.MentionedInPosting = true
	}
	if confidence > existing.Confidence {
		existing.Confidence = confidence
	}
	if existing.ProfileURL != "" || existing.MentionedInPosting {
		existing.Confidence = model.ConfidenceHigh
	}

	return OutcomeMerged
}

func (p *Pool) reject(name, title string, outcome Outcome) {
	p.logger.Debug("candidate rejected",
		zap.String("name", name),
		zap.String("title", title),
		zap.Stringer("reason", outcome))
}

// AttachProfile records a profile link found after the fact. It upgrades
// the record to High and reports whether anything changed. Records known
// only from fallback evidence stay Low and are left untouched.
func (p *Pool) AttachProfile(name, profileURL string) bool {
	key := model.PersonKey(name)
	rec, found := p.records[key]
	if !found || profileURL == "" || rec.ProfileURL != "" || p.fallback[key] {
		return false
	}
	rec.ProfileURL = profileURL
	rec.Confidence = model.ConfidenceHigh
	return true
}

// FallbackOnly reports whether every sighting of name came from fallback
// evidence
func (p *Pool) FallbackOnly(name string) bool {
	return p.fallback[model.PersonKey(name)]
}

// Get returns a copy of the record for name
func (p *Pool) Get(name string) (model.PersonRecord, bool) {
	rec, found := p.records[model.PersonKey(name)]
	if !found {
		return model.PersonRecord{}, false
	}
	return *rec, true
}

// Len returns the number of records
func (p *Pool) Len() int {
	return len(p.records)
}

// CountHigh returns the number of High confidence records
func (p *Pool) CountHigh() int {
	n := 0
	for _, rec := range p.records {
		if rec.Confidence == model.ConfidenceHigh {
			n++
		}
	}
	return n
}

// Records returns copies of every record in first-insertion order
func (p *Pool) Records() []model.PersonRecord {
	out := make([]model.PersonRecord, 0, len(p.order))
	for _, key := range p.order {
		out = append(out, *p.records[key])
	}
	return out
}

// Ranked returns the top records by Rank
func (p *Pool) Ranked(limit int) []model.PersonRecord {
	return Rank(p.Records(), limit)
}

// PostingTitle returns the title to use for a posting contact
func PostingTitle(found string) string {
	if t := strings.TrimSpace(found); t != "" {
		return t
	}
	return defaultPostingTitle
}
