package persona

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/thomashgnt/driverjobpost/internal/model"
	"github.com/thomashgnt/driverjobpost/internal/resolve"
)

// teamPages are the site paths most likely to list leadership
var teamPages = []string{"/about", "/about-us", "/team", "/our-team", "/leadership", "/careers", "/contact"}

var (
	personLineRe = regexp.MustCompile(`([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+){1,3})[ \t]*[,\-|:][ \t]*(.+?)(?:\n|$)`)
	boldPersonRe = regexp.MustCompile(`\*\*([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+){1,3})\*\*[ \t]*[,\-|:\x{2014}][ \t]*(.+?)(?:\n|$)`)
)

// WebsiteUnit searches the organization's own website: a site-scoped
// structured search first, then a few team pages when that finds fewer
// than MinPeople people.
type WebsiteUnit struct {
	MaxFetches    int // Team pages fetched at most
	MinContent    int // Pages shorter than this are ignored
	MinPeople     int
	RenderScripts bool // Fetch team pages through the script renderer
}

// DefaultWebsiteUnit returns the website unit with its usual limits
func DefaultWebsiteUnit() WebsiteUnit {
	return WebsiteUnit{MaxFetches: 3, MinContent: 200, MinPeople: 2, RenderScripts: true}
}

// Run returns website candidates for target. It does nothing without a
// known domain. Candidates carry the web search source kind.
func (w WebsiteUnit) Run(ctx context.Context, deps Deps, target Target) (Findings, error) {
	host := HostOf(target.Domain)
	if host == "" {
		return Findings{}, nil
	}
	logger := deps.logger().With(zap.String("persona", "website"), zap.String("host", host))

	q := fmt.Sprintf("site:%s %s CEO owner president founder VP director "+
		"hiring manager fleet manager operations team leadership", host, target.Company)
	findings, err := structuredCandidates(ctx, deps, q, target.Company, logger)
	if err != nil {
		return Findings{}, err
	}

	if countUsable(findings.Candidates) >= w.MinPeople || deps.Fetcher == nil {
		return findings, nil
	}

	base := BaseURL(target.Domain)
	for i, path := range teamPages {
		if i >= w.MaxFetches {
			break
		}
		pageURL := base + path
		content, ok, err := deps.Fetcher.Fetch(ctx, pageURL, w.RenderScripts)
		if err != nil {
			if err := findings.absorb(logger, "page fetch", pageURL, err); err != nil {
				return Findings{}, err
			}
			continue
		}
		if !ok || len(content) <= w.MinContent {
			continue
		}

		for _, hit := range ExtractPeopleFromMarkdown(content) {
			findings.Candidates = append(findings.Candidates, resolve.Candidate{
				Name:       hit.Name,
				Title:      hit.Title,
				SourceKind: model.SourceWebSearch,
				Company:    target.Company,
			})
		}
	}
	return findings, nil
}

// countUsable counts candidates that would survive name and title checks
func countUsable(candidates []resolve.Candidate) int {
	n := 0
	for _, c := range candidates {
		if !resolve.ValidName(c.Name) {
			continue
		}
		if _, ok := resolve.Categorize(c.Title); ok {
			n++
		}
	}
	return n
}

// ExtractPeopleFromMarkdown finds "Name - Title" and "**Name** - Title"
// lines on a team page. Only titles that fit a category are kept, and each
// name once.
func ExtractPeopleFromMarkdown(markdown string) []model.PersonHit {
	var people []model.PersonHit
	seen := make(map[string]bool)

	for _, re := range []*regexp.Regexp{boldPersonRe, personLineRe} {
		for _, m := range re.FindAllStringSubmatch(markdown, -1) {
			name := strings.TrimSpace(m[1])
			title := strings.TrimSpace(m[2])
			key := strings.ToLower(name)
			if seen[key] {
				continue
			}
			if _, ok := resolve.Categorize(title); !ok {
				continue
			}
			seen[key] = true
			people = append(people, model.PersonHit{Name: name, Title: title})
		}
	}
	return people
}
