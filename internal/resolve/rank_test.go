package resolve

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomashgnt/driverjobpost/internal/model"
)

func TestRank_OrderAndStability(t *testing.T) {
	records := []model.PersonRecord{
		{Name: "A One", Confidence: model.ConfidenceMedium, SourceKind: model.SourceWebSearch},
		{Name: "B Two", Confidence: model.ConfidenceHigh, SourceKind: model.SourceWebSearch},
		{Name: "C Three", Confidence: model.ConfidenceMedium, SourceKind: model.SourceProfessionalNetwork},
		{Name: "D Four", Confidence: model.ConfidenceHigh, SourceKind: model.SourceProfessionalNetwork},
		{Name: "E Five", Confidence: model.ConfidenceMedium, SourceKind: model.SourceWebSearch},
	}

	ranked := Rank(records, 5)

	var names []string
	for _, r := range ranked {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"D Four", "B Two", "C Three", "A One", "E Five"}, names)
	assert.Equal(t, "A One", records[0].Name, "input must not be reordered")
}

func TestRank_CapKeepsHighestKeys(t *testing.T) {
	confidences := []model.Confidence{model.ConfidenceLow, model.ConfidenceMedium, model.ConfidenceHigh}
	sources := []model.SourceKind{model.SourceWebSearch, model.SourceProfessionalNetwork}
	rng := rand.New(rand.NewPCG(1, 2))

	key := func(r model.PersonRecord) int {
		return int(r.Confidence)*10 + r.SourceKind.Trust()
	}

	for run := 0; run < 100; run++ {
		n := rng.IntN(12)
		records := make([]model.PersonRecord, n)
		for i := range records {
			records[i] = model.PersonRecord{
				Name:       fmt.Sprintf("Person %d", i),
				Confidence: confidences[rng.IntN(len(confidences))],
				SourceKind: sources[rng.IntN(len(sources))],
			}
		}

		ranked := Rank(records, model.MaxPeoplePerCompany)
		require.LessOrEqual(t, len(ranked), model.MaxPeoplePerCompany)
		if n <= model.MaxPeoplePerCompany {
			require.Len(t, ranked, n)
		}

		keys := make([]int, n)
		for i, r := range records {
			keys[i] = key(r)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(keys)))

		for i, r := range ranked {
			assert.Equal(t, keys[i], key(r), "position %d", i)
		}
	}
}

func TestPool_Ranked(t *testing.T) {
	pool := newTestPool()
	for i := 0; i < 8; i++ {
		pool.AddOrMerge(Candidate{Name: fmt.Sprintf("Driver Boss%c", 'A'+i), Title: "Owner", SourceKind: model.SourceWebSearch})
	}
	pool.AddOrMerge(Candidate{Name: "Top Person", Title: "CEO", SourceKind: model.SourceProfessionalNetwork, ProfileURL: "https://www.linkedin.com/in/top"})

	ranked := pool.Ranked(0)
	require.Len(t, ranked, model.MaxPeoplePerCompany)
	assert.Equal(t, "Top Person", ranked[0].Name)
	assert.Equal(t, "Driver BossA", ranked[1].Name)
}
