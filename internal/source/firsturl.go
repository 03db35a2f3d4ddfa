package source

import (
	"context"
	"net/url"
	"strings"

	"github.com/thomashgnt/driverjobpost/internal/model"
)

// aggregatorDomains are job boards, directories, and social sites that are
// never a company's own website
var aggregatorDomains = []string{
	"thetruckersreport.com", "indeed.com", "glassdoor.com",
	"linkedin.com", "facebook.com", "twitter.com", "x.com",
	"instagram.com", "youtube.com", "yelp.com", "bbb.org",
	"ziprecruiter.com", "salary.com", "crunchbase.com",
	"dnb.com", "zoominfo.com", "wikipedia.org", "google.com",
	"mapquest.com", "yellowpages.com", "manta.com",
	"trustpilot.com", "tiktok.com",
}

// IsAggregator reports whether rawURL belongs to an aggregator domain or
// one of its subdomains
func IsAggregator(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, d := range aggregatorDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// FirstURL searches and returns the first result URL, skipping aggregator
// domains when skipAggregators is set. It returns "" when nothing qualifies.
func FirstURL(ctx context.Context, searcher DocumentSearcher, q string, skipAggregators bool) (string, error) {
	docs, err := searcher.Search(ctx, q, 5, model.DepthStandard)
	if err != nil {
		return "", err
	}
	for _, d := range docs {
		if d.URL == "" {
			continue
		}
		if skipAggregators && IsAggregator(d.URL) {
			continue
		}
		return d.URL, nil
	}
	return "", nil
}
