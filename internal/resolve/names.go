package resolve

import "strings"

// rejectNames are extraction failures that look like names
var rejectNames = map[string]bool{
	"unknown":       true,
	"n/a":           true,
	"not specified": true,
	"not found":     true,
	"not available": true,
	"none":          true,
	"no name":       true,
	"no contact":    true,
	"the company":   true,
	"the owner":     true,
}

// minNameTokens is the fewest space-separated tokens a person name may have
const minNameTokens = 2

// TokenCount returns the number of whitespace-separated tokens in name
func TokenCount(name string) int {
	return len(strings.Fields(name))
}

// checkName returns the rejection for a trimmed name, or OutcomeInserted
// when the name is acceptable
func checkName(name string) Outcome {
	switch {
	case name == "":
		return RejectedEmptyName
	case rejectNames[strings.ToLower(name)]:
		return RejectedBlocklisted
	case TokenCount(name) < minNameTokens:
		return RejectedSingleToken
	default:
		return OutcomeInserted
	}
}

// ValidName reports whether name would pass the name checks of AddOrMerge
func ValidName(name string) bool {
	return checkName(strings.TrimSpace(name)) == OutcomeInserted
}
