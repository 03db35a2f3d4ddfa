package resolve

import (
	"sort"

	"github.com/thomashgnt/driverjobpost/internal/model"
)

// Rank orders records by confidence, then source trust, both descending,
// keeping input order for ties, and truncates to limit. A non-positive
// limit uses model.MaxPeoplePerCompany.
func Rank(records []model.PersonRecord, limit int) []model.PersonRecord {
	if limit <= 0 {
		limit = model.MaxPeoplePerCompany
	}

	ranked := make([]model.PersonRecord, len(records))
	copy(ranked, records)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Confidence != ranked[j].Confidence {
			return ranked[i].Confidence > ranked[j].Confidence
		}
		return ranked[i].SourceKind.Trust() > ranked[j].SourceKind.Trust()
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
