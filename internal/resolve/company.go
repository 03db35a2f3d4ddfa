package resolve

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	legalSuffixRe = regexp.MustCompile(`(?i)\s*,?\s*\b(LLC|L\.?L\.?C\.?|Inc\.?|Corp\.?|Corporation|Ltd\.?|Incorporated|Company|Co\.?|LP|LLP)\b\.?\s*$`)
	atClauseRe    = regexp.MustCompile(`(?i)\bat\s+(.+?)(?:\s*$|\s*,)`)
	punctRe       = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	spaceRe       = regexp.MustCompile(`\s+`)
	domainSepRe   = regexp.MustCompile(`[-_.]`)
)

var stopWords = map[string]bool{
	"the": true, "and": true, "of": true, "a": true, "an": true,
	"for": true, "in": true, "at": true, "by": true, "to": true,
}

// titleCompanyMinOverlap is the share of target company words that an
// "at <Company>" clause must contain
const titleCompanyMinOverlap = 0.75

// CleanCompanyName strips a trailing legal suffix:
// "Next Steps Logistics LLC" becomes "Next Steps Logistics".
func CleanCompanyName(name string) string {
	return strings.TrimSpace(legalSuffixRe.ReplaceAllString(name, ""))
}

// MeaningfulWords returns the lowercased words of a company name, skipping
// single characters and stop words
func MeaningfulWords(name string) []string {
	var words []string
	for _, w := range strings.Fields(name) {
		w = strings.ToLower(w)
		if len(w) > 1 && !stopWords[w] {
			words = append(words, w)
		}
	}
	return words
}

// TitleCompanyMatches checks an "at <Company>" clause in a title against the
// target company. Titles without such a clause cannot disconfirm and match.
func TitleCompanyMatches(title, company string) bool {
	m := atClauseRe.FindStringSubmatch(title)
	if m == nil {
		return true
	}

	target := wordSet(CleanCompanyName(company))
	if len(target) == 0 {
		return true
	}
	found := wordSet(CleanCompanyName(strings.TrimSpace(m[1])))

	common := 0
	for w := range target {
		if found[w] {
			common++
		}
	}

	return float64(common)/float64(len(target)) >= titleCompanyMinOverlap
}

func wordSet(name string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(name)) {
		if stopWords[w] || w == "company" {
			continue
		}
		set[w] = true
	}
	return set
}

// CompanyInResult reports whether text mentions the company once the
// person's own name parts are removed from it, so that a person whose
// surname equals the company name is not taken as confirmation.
//
// The company matches verbatim, without punctuation, or when at least half
// of its words longer than two characters appear.
func CompanyInResult(company, text, personName string) bool {
	lowered := strings.ToLower(text)
	companyLower := strings.ToLower(strings.TrimSpace(company))
	if companyLower == "" {
		return true
	}

	for _, part := range strings.Fields(strings.ToLower(personName)) {
		if len(part) > 1 {
			lowered = strings.ReplaceAll(lowered, part, " ")
		}
	}
	lowered = spaceRe.ReplaceAllString(lowered, " ")

	if strings.Contains(lowered, companyLower) {
		return true
	}

	companyBare := punctRe.ReplaceAllString(companyLower, "")
	textBare := punctRe.ReplaceAllString(lowered, "")
	if companyBare != "" && strings.Contains(textBare, companyBare) {
		return true
	}

	var words []string
	for _, w := range strings.Fields(strings.ToLower(CleanCompanyName(company))) {
		if len(w) > 2 && !stopWords[w] {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return false
	}

	found := 0
	for _, w := range words {
		if strings.Contains(textBare, w) {
			found++
		}
	}
	need := float64(len(words)) * 0.5
	if need < 1 {
		need = 1
	}
	return float64(found) >= need
}

// DomainMatchesCompany reports whether every meaningful word of the cleaned
// company name appears in the URL's host, ignoring www, the TLD, and
// separators. "nexttrucking.com" does not match "Next Steps Logistics".
func DomainMatchesCompany(rawURL, company string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return false
	}
	host = strings.TrimPrefix(host, "www.")
	if i := strings.LastIndex(host, "."); i > 0 {
		host = host[:i]
	}
	flat := domainSepRe.ReplaceAllString(host, "")

	words := MeaningfulWords(CleanCompanyName(company))
	if len(words) == 0 {
		return true
	}
	for _, w := range words {
		if !strings.Contains(flat, w) {
			return false
		}
	}
	return true
}
