package resolve

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomashgnt/driverjobpost/internal/model"
)

func newTestPool() *Pool {
	return NewPool(DefaultConfidencePolicy(), nil)
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		title string
		want  model.Category
		ok    bool
	}{
		{"HR Director", model.CategoryHiring, true},
		{"Talent Acquisition Lead", model.CategoryHiring, true},
		{"Hiring Manager", model.CategoryHiring, true},
		{"CEO", model.CategoryOwnership, true},
		{"Owner-Operator", model.CategoryOwnership, true},
		{"Director of Operations", model.CategoryOwnership, true},
		{"Fleet Manager", model.CategoryOperationsFleet, true},
		{"Dispatch Lead", model.CategoryOperationsFleet, true},
		{"Truck Driver", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got, ok := Categorize(tt.title)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddOrMerge_Rejections(t *testing.T) {
	tests := []struct {
		name string
		c    Candidate
		want Outcome
	}{
		{"empty", Candidate{Name: "  ", Title: "CEO"}, RejectedEmptyName},
		{"blocklisted", Candidate{Name: "Not Specified", Title: "CEO"}, RejectedBlocklisted},
		{"single token", Candidate{Name: "Chris", Title: "CEO", SourceKind: model.SourceProfessionalNetwork, ProfileURL: "https://www.linkedin.com/in/chris"}, RejectedSingleToken},
		{"single token from posting", Candidate{Name: "Chris", Title: "Recruiter", FromPosting: true, MentionedInPosting: true}, RejectedSingleToken},
		{"wrong company", Candidate{Name: "Mary Jones", Title: "CEO at Next Trucking", Company: "Next Steps Logistics LLC"}, RejectedWrongCompany},
		{"uncategorized", Candidate{Name: "Tom Hardy", Title: "Truck Driver", SourceKind: model.SourceWebSearch}, RejectedUncategorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := newTestPool()
			got := pool.AddOrMerge(tt.c)
			assert.Equal(t, tt.want, got)
			assert.False(t, got.Accepted())
			assert.Zero(t, pool.Len())
		})
	}
}

func TestAddOrMerge_CompanyGuardAccepts(t *testing.T) {
	pool := newTestPool()
	got := pool.AddOrMerge(Candidate{
		Name:       "Mary Jones",
		Title:      "CEO at Next Steps Logistics",
		Company:    "Next Steps Logistics LLC",
		SourceKind: model.SourceWebSearch,
	})
	assert.Equal(t, OutcomeInserted, got)
}

func TestAddOrMerge_PostingContactDefaultsToHiring(t *testing.T) {
	pool := newTestPool()
	got := pool.AddOrMerge(Candidate{
		Name:               "Chris Baker",
		Title:              PostingTitle(""),
		SourceKind:         model.SourceWebSearch,
		MentionedInPosting: true,
		FromPosting:        true,
	})
	require.Equal(t, OutcomeInserted, got)

	rec, ok := pool.Get("chris baker")
	require.True(t, ok)
	assert.Equal(t, model.CategoryHiring, rec.Category)
	assert.Equal(t, model.ConfidenceHigh, rec.Confidence)
	assert.Equal(t, "Recruiter / Contact", rec.Title)

	// Unclassifiable titles only default for posting contacts
	got = pool.AddOrMerge(Candidate{Name: "Dana Cole", Title: "Team Member", FromPosting: true, MentionedInPosting: true})
	require.Equal(t, OutcomeInserted, got)
	rec, _ = pool.Get("Dana Cole")
	assert.Equal(t, model.CategoryHiring, rec.Category)

	got = pool.AddOrMerge(Candidate{Name: "Eli Park", Title: "Team Member", MentionedInPosting: true})
	assert.Equal(t, RejectedUncategorized, got)
}

func TestAddOrMerge_CaseInsensitiveIdentity(t *testing.T) {
	pool := newTestPool()
	pool.AddOrMerge(Candidate{Name: "John Doe", Title: "CEO", SourceKind: model.SourceWebSearch})
	got := pool.AddOrMerge(Candidate{Name: "john doe", Title: "Owner", SourceKind: model.SourceWebSearch})

	assert.Equal(t, OutcomeMerged, got)
	assert.Equal(t, 1, pool.Len())
	rec, _ := pool.Get("JOHN DOE")
	assert.Equal(t, "John Doe", rec.Name)
	assert.Equal(t, "CEO", rec.Title)
}

func TestAddOrMerge_UpgradeOnly(t *testing.T) {
	pool := newTestPool()
	pool.AddOrMerge(Candidate{Name: "Jane Doe", Title: "Fleet Manager", SourceKind: model.SourceProfessionalNetwork, ProfileURL: "https://www.linkedin.com/in/janedoe"})
	pool.AddOrMerge(Candidate{Name: "Jane Doe", Title: "Recruiter", SourceKind: model.SourceWebSearch, ProfileURL: "https://www.linkedin.com/in/other"})

	rec, _ := pool.Get("Jane Doe")
	assert.Equal(t, "Fleet Manager", rec.Title)
	assert.Equal(t, model.CategoryOperationsFleet, rec.Category)
	assert.Equal(t, model.SourceProfessionalNetwork, rec.SourceKind)
	assert.Equal(t, "https://www.linkedin.com/in/janedoe", rec.ProfileURL)
	assert.Equal(t, model.ConfidenceHigh, rec.Confidence)
}

func TestAddOrMerge_MoreTrustedSourceWinsTitle(t *testing.T) {
	pool := newTestPool()
	pool.AddOrMerge(Candidate{Name: "Bob Smith", Title: "Owner", SourceKind: model.SourceWebSearch})
	pool.AddOrMerge(Candidate{Name: "Bob Smith", Title: "Fleet Manager", SourceKind: model.SourceProfessionalNetwork, ProfileURL: "https://www.linkedin.com/in/bobsmith"})

	rec, _ := pool.Get("Bob Smith")
	assert.Equal(t, "Fleet Manager", rec.Title)
	assert.Equal(t, model.CategoryOperationsFleet, rec.Category)
	assert.Equal(t, model.ConfidenceHigh, rec.Confidence)
}

func TestAddOrMerge_ForceLow(t *testing.T) {
	pool := newTestPool()
	pool.AddOrMerge(Candidate{Name: "Kim Lee", Title: "Dispatch Coordinator", SourceKind: model.SourceWebSearch, ForceLow: true})
	rec, _ := pool.Get("Kim Lee")
	assert.Equal(t, model.ConfidenceLow, rec.Confidence)

	// Fallback evidence never downgrades an existing record
	pool.AddOrMerge(Candidate{Name: "Ann Ray", Title: "Owner", SourceKind: model.SourceWebSearch})
	pool.AddOrMerge(Candidate{Name: "Ann Ray", Title: "Owner", SourceKind: model.SourceWebSearch, ForceLow: true})
	rec, _ = pool.Get("Ann Ray")
	assert.Equal(t, model.ConfidenceMedium, rec.Confidence)
}

func TestAddOrMerge_Idempotent(t *testing.T) {
	c := Candidate{Name: "Jane Doe", Title: "Fleet Manager", SourceKind: model.SourceProfessionalNetwork, ProfileURL: "https://www.linkedin.com/in/janedoe", Company: "Riverside Transport"}

	once := newTestPool()
	once.AddOrMerge(c)

	twice := newTestPool()
	twice.AddOrMerge(c)
	twice.AddOrMerge(c)

	assert.Equal(t, once.Records(), twice.Records())
}

func TestAddOrMerge_MergeMonotonicity(t *testing.T) {
	titles := []string{"CEO", "Fleet Manager", "Recruiter", "Owner", "Safety Director"}
	sources := []model.SourceKind{model.SourceUnknown, model.SourceWebSearch, model.SourceProfessionalNetwork}
	rng := rand.New(rand.NewPCG(7, 11))

	for run := 0; run < 200; run++ {
		pool := newTestPool()
		var prev *model.PersonRecord

		for step := 0; step < 8; step++ {
			c := Candidate{
				Name:       "Pat Quinn",
				Title:      titles[rng.IntN(len(titles))],
				SourceKind: sources[rng.IntN(len(sources))],
				ForceLow:   rng.IntN(4) == 0,
			}
			if rng.IntN(4) == 0 {
				c.ProfileURL = fmt.Sprintf("https://www.linkedin.com/in/pat-%d", step)
			}
			if rng.IntN(6) == 0 {
				c.MentionedInPosting = true
			}
			pool.AddOrMerge(c)

			rec, ok := pool.Get("Pat Quinn")
			require.True(t, ok)
			assertInvariants(t, rec)
			if prev != nil {
				assert.GreaterOrEqual(t, rec.Confidence, prev.Confidence)
				assert.GreaterOrEqual(t, rec.SourceKind.Trust(), prev.SourceKind.Trust())
				if prev.ProfileURL != "" {
					assert.Equal(t, prev.ProfileURL, rec.ProfileURL)
				}
				if prev.MentionedInPosting {
					assert.True(t, rec.MentionedInPosting)
				}
			}
			prev = &rec
		}
	}
}

func assertInvariants(t *testing.T, rec model.PersonRecord) {
	t.Helper()
	hasHighEvidence := rec.ProfileURL != "" || rec.MentionedInPosting
	assert.Equal(t, hasHighEvidence, rec.Confidence == model.ConfidenceHigh, "High iff profile or posting mention: %+v", rec)
	if rec.Confidence == model.ConfidenceMedium {
		assert.GreaterOrEqual(t, TokenCount(rec.Name), 2)
		assert.True(t, rec.SourceKind.Known())
	}
	assert.NotEmpty(t, rec.Category)
}

func TestAttachProfile(t *testing.T) {
	pool := newTestPool()
	pool.AddOrMerge(Candidate{Name: "Bob Smith", Title: "Owner", SourceKind: model.SourceWebSearch})

	assert.True(t, pool.AttachProfile("bob smith", "https://www.linkedin.com/in/bobsmith"))
	assert.False(t, pool.AttachProfile("bob smith", "https://www.linkedin.com/in/other"))
	assert.False(t, pool.AttachProfile("Nobody Here", "https://www.linkedin.com/in/x"))

	rec, _ := pool.Get("Bob Smith")
	assert.Equal(t, "https://www.linkedin.com/in/bobsmith", rec.ProfileURL)
	assert.Equal(t, model.ConfidenceHigh, rec.Confidence)
	assertInvariants(t, rec)
}

func TestAttachProfile_FallbackStaysLow(t *testing.T) {
	pool := newTestPool()
	pool.AddOrMerge(Candidate{Name: "Pat Lee", Title: "Office Manager", SourceKind: model.SourceWebSearch, ForceLow: true})

	assert.True(t, pool.FallbackOnly("pat lee"))
	assert.False(t, pool.AttachProfile("Pat Lee", "https://www.linkedin.com/in/patlee"))
	rec, _ := pool.Get("Pat Lee")
	assert.Empty(t, rec.ProfileURL)
	assert.Equal(t, model.ConfidenceLow, rec.Confidence)

	// Independent evidence lifts the restriction
	pool.AddOrMerge(Candidate{Name: "Pat Lee", Title: "Office Manager", SourceKind: model.SourceWebSearch})
	assert.False(t, pool.FallbackOnly("Pat Lee"))
	assert.True(t, pool.AttachProfile("Pat Lee", "https://www.linkedin.com/in/patlee"))
}

func TestConfidencePolicy(t *testing.T) {
	def := DefaultConfidencePolicy()
	assert.Equal(t, model.ConfidenceMedium, def.Confidence("Bob Smith", model.SourceWebSearch, "", false))
	assert.Equal(t, model.ConfidenceLow, def.Confidence("Bob Smith", model.SourceUnknown, "", false))
	assert.Equal(t, model.ConfidenceHigh, def.Confidence("Bob Smith", model.SourceUnknown, "https://www.linkedin.com/in/bob", false))

	networkOnly := ConfidencePolicy{MediumSources: []model.SourceKind{model.SourceProfessionalNetwork}, MinMediumTokens: 3}
	assert.Equal(t, model.ConfidenceLow, networkOnly.Confidence("Bob Smith", model.SourceWebSearch, "", false))
	assert.Equal(t, model.ConfidenceLow, networkOnly.Confidence("Bob Smith", model.SourceProfessionalNetwork, "", false))
	assert.Equal(t, model.ConfidenceMedium, networkOnly.Confidence("Bob J Smith", model.SourceProfessionalNetwork, "", false))

	// The token floor never drops below two
	loose := ConfidencePolicy{MediumSources: []model.SourceKind{model.SourceWebSearch}, MinMediumTokens: 1}
	assert.Equal(t, model.ConfidenceLow, loose.Confidence("Bob", model.SourceWebSearch, "", false))
}

func TestPolicyFromConfig(t *testing.T) {
	policy, err := PolicyFromConfig(model.ResolveConfig{MediumSources: []string{"linkedin"}, MinMediumTokens: 2})
	require.NoError(t, err)
	assert.Equal(t, []model.SourceKind{model.SourceProfessionalNetwork}, policy.MediumSources)

	_, err = PolicyFromConfig(model.ResolveConfig{MediumSources: []string{"carrier pigeon"}})
	assert.Error(t, err)
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName(" Jane Doe "))
	assert.False(t, ValidName("Chris"))
	assert.False(t, ValidName("n/a"))
	assert.False(t, ValidName(""))
}
