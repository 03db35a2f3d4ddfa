package persona

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomashgnt/driverjobpost/internal/model"
	"github.com/thomashgnt/driverjobpost/internal/query"
)

func TestFindCompanyDomain(t *testing.T) {
	tests := []struct {
		name    string
		results map[string][]model.Document
		want    string
	}{
		{
			name: "first attempt",
			results: map[string][]model.Document{
				"official website": {
					{URL: "https://www.indeed.com/cmp/next-steps"},
					{URL: "https://nextstepslogistics.com"},
				},
			},
			want: "https://nextstepslogistics.com",
		},
		{
			name: "second attempt after mismatch",
			results: map[string][]model.Document{
				"official website": {{URL: "https://nexttrucking.com"}},
				"company homepage": {{URL: "https://next-steps-logistics.net"}},
			},
			want: "https://next-steps-logistics.net",
		},
		{
			name: "no match",
			results: map[string][]model.Document{
				"official website": {{URL: "https://nexttrucking.com"}},
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			search := &fakeSearch{results: tt.results}
			got, err := FindCompanyDomain(context.Background(), search, "Next Steps Logistics LLC", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindCompanyDomain_Errors(t *testing.T) {
	search := &fakeSearch{err: query.ErrRetriesExhausted}
	got, err := FindCompanyDomain(context.Background(), search, "Acme Trucking", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Len(t, search.queries, 2)

	search = &fakeSearch{err: query.ErrRateLimitExhausted}
	_, err = FindCompanyDomain(context.Background(), search, "Acme Trucking", nil)
	assert.True(t, errors.Is(err, query.ErrRateLimitExhausted))
	assert.Len(t, search.queries, 1)
}

func TestFindProfileURL(t *testing.T) {
	search := &fakeSearch{results: map[string][]model.Document{
		"Jane Doe": {
			{URL: "https://acme.com/team", Name: "Jane Doe - CEO - Acme"},
			{URL: "https://www.linkedin.com/in/janedoe", Name: "Jane Doe - CEO - Acme | LinkedIn"},
		},
	}}
	got, err := FindProfileURL(context.Background(), search, "Jane Doe", "CEO", "Acme")
	require.NoError(t, err)
	assert.Equal(t, "https://www.linkedin.com/in/janedoe", got)
	assert.Equal(t, []string{"Jane Doe CEO Acme LinkedIn"}, search.queries)

	got, err = FindProfileURL(context.Background(), search, "Bob Smith", "", "Acme")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindProfileURL_RequiresSamePersonAtCompany(t *testing.T) {
	search := &fakeSearch{results: map[string][]model.Document{
		"Pat Lee": {
			{URL: "https://www.linkedin.com/in/pat-lee-dds", Name: "Pat Lee - Dentist - Smile Dental | LinkedIn"},
			{URL: "https://www.linkedin.com/in/patricia-leeson", Name: "Patricia Leeson - Dispatcher - Riverside Transport | LinkedIn"},
		},
	}}
	got, err := FindProfileURL(context.Background(), search, "Pat Lee", "Office Manager", "Riverside Transport")
	require.NoError(t, err)
	assert.Empty(t, got)

	search.results["Pat Lee"] = append(search.results["Pat Lee"], model.Document{
		URL:  "https://www.linkedin.com/in/patlee",
		Name: "Pat Lee - Office Manager - Riverside Transport | LinkedIn",
	})
	got, err = FindProfileURL(context.Background(), search, "Pat Lee", "Office Manager", "Riverside Transport")
	require.NoError(t, err)
	assert.Equal(t, "https://www.linkedin.com/in/patlee", got)
}

func TestContactTitle(t *testing.T) {
	deps := Deps{Structured: &fakeStructured{body: `{"title":" Safety Director "}`}}
	title, findings, err := ContactTitle(context.Background(), deps, "Jane Doe", "Acme")
	require.NoError(t, err)
	assert.Equal(t, "Safety Director", title)
	assert.Empty(t, findings.Failures)

	deps = Deps{Structured: &fakeStructured{err: query.ErrRetriesExhausted}}
	title, findings, err = ContactTitle(context.Background(), deps, "Jane Doe", "Acme")
	require.NoError(t, err)
	assert.Empty(t, title)
	assert.Len(t, findings.Failures, 1)

	deps = Deps{Structured: &fakeStructured{err: query.ErrRateLimitExhausted}}
	_, _, err = ContactTitle(context.Background(), deps, "Jane Doe", "Acme")
	assert.True(t, errors.Is(err, query.ErrRateLimitExhausted))
}

func TestFallback_ForcesLow(t *testing.T) {
	deps := Deps{Structured: &fakeStructured{body: peopleBody(t,
		model.PersonHit{Name: "Dana White", Title: "Dispatcher"},
		model.PersonHit{Name: "", Title: "Employee"},
	)}}

	findings, err := Fallback(context.Background(), deps, Target{Company: "Acme"})
	require.NoError(t, err)
	require.Len(t, findings.Candidates, 1)
	assert.True(t, findings.Candidates[0].ForceLow)
	assert.Equal(t, model.SourceWebSearch, findings.Candidates[0].SourceKind)
}
