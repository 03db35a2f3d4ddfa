package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanCompanyName(t *testing.T) {
	tests := map[string]string{
		"Next Steps Logistics LLC":  "Next Steps Logistics",
		"Acme Co":                   "Acme",
		"Acme Co.":                  "Acme",
		"Riverside Transport, Inc.": "Riverside Transport",
		"D.M. Bowman L.L.C.":        "D.M. Bowman",
		"Bolt Corporation":          "Bolt",
		"Costco Wholesale":          "Costco Wholesale",
		"Great Lakes Company":       "Great Lakes",
	}
	for in, want := range tests {
		assert.Equal(t, want, CleanCompanyName(in), in)
	}
}

func TestMeaningfulWords(t *testing.T) {
	assert.Equal(t, []string{"bank", "america"}, MeaningfulWords("The Bank of America"))
	assert.Empty(t, MeaningfulWords("A & B"))
}

func TestTitleCompanyMatches(t *testing.T) {
	tests := []struct {
		title   string
		company string
		want    bool
	}{
		{"CEO at Next Trucking", "Next Steps Logistics LLC", false},
		{"CEO at Next Steps Logistics", "Next Steps Logistics LLC", true},
		{"CEO", "Next Steps Logistics LLC", true},
		{"Fleet Manager at Riverside Transport, Dallas TX", "Riverside Transport", true},
		{"Owner at The Acme Company", "Acme Co", true},
		{"Recruiter at Bolt", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleCompanyMatches(tt.title, tt.company))
		})
	}
}

func TestCompanyInResult(t *testing.T) {
	tests := []struct {
		name    string
		company string
		text    string
		person  string
		want    bool
	}{
		{
			name:    "verbatim",
			company: "Riverside Transport",
			text:    "Jane Doe - Fleet Manager - Riverside Transport | LinkedIn Jane Doe is Fleet Manager at Riverside Transport",
			person:  "Jane Doe",
			want:    true,
		},
		{
			name:    "surname equals company",
			company: "Bowman",
			text:    "Carl Bowman - Driver - Swift | LinkedIn",
			person:  "Carl Bowman",
			want:    false,
		},
		{
			name:    "punctuation stripped",
			company: "D.M. Bowman",
			text:    "Ann Lee - Dispatcher - DM Bowman Inc",
			person:  "Ann Lee",
			want:    true,
		},
		{
			name:    "half of the words",
			company: "24 Seven Express Inc",
			text:    "Sam Ortiz - Safety Manager - 24/7 Express",
			person:  "Sam Ortiz",
			want:    true,
		},
		{
			name:    "unrelated",
			company: "Next Steps Logistics",
			text:    "Mary Jones - CEO - Next Trucking",
			person:  "Mary Jones",
			want:    false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompanyInResult(tt.company, tt.text, tt.person))
		})
	}
}

func TestDomainMatchesCompany(t *testing.T) {
	tests := []struct {
		url     string
		company string
		want    bool
	}{
		{"https://www.nextstepslogistics.com/", "Next Steps Logistics LLC", true},
		{"https://riverside-transport.com/about", "Riverside Transport", true},
		{"https://agvinc.net", "AGV Inc", true},
		{"https://nexttrucking.com", "Next Steps Logistics", false},
		{"https://greatlakestransport.com", "Great Lakes Solutions", false},
		{"not a url", "Acme", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, DomainMatchesCompany(tt.url, tt.company))
		})
	}
}
