package persona

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	// siteMarkerRe matches a trailing "| LinkedIn" style site marker
	siteMarkerRe = regexp.MustCompile(`(?i)\s*\|?\s*linkedin.*$`)
	trailingPipe = regexp.MustCompile(`\s*\|[^|]*$`)
	segmentSepRe = regexp.MustCompile(`\s+[-\x{2013}\x{2014}]\s+|\s*\|\s*`)
)

// IsProfileURL reports whether rawURL is a professional-network profile page
func IsProfileURL(rawURL string) bool {
	return strings.Contains(strings.ToLower(rawURL), "linkedin.com/in/")
}

// ParseProfileSnippet splits a result title such as
// "Jane Doe - Fleet Manager - Riverside Transport | LinkedIn" into the
// person's name and title. Title is empty when the snippet has none.
func ParseProfileSnippet(snippet string) (name, title string) {
	cleaned := siteMarkerRe.ReplaceAllString(snippet, "")
	if cleaned == snippet {
		cleaned = trailingPipe.ReplaceAllString(snippet, "")
	}

	parts := segmentSepRe.Split(strings.TrimSpace(cleaned), 3)
	if len(parts) > 0 {
		name = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 {
		title = strings.TrimSpace(parts[1])
	}
	return name, title
}

// HostOf returns the bare host of a domain given as a host or a URL
func HostOf(domain string) string {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return ""
	}
	if !strings.Contains(domain, "://") {
		domain = "https://" + domain
	}
	parsed, err := url.Parse(domain)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
}

// BaseURL returns an https URL for a domain given as a host or a URL
func BaseURL(domain string) string {
	domain = strings.TrimRight(strings.TrimSpace(domain), "/")
	if domain == "" {
		return ""
	}
	if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
		return "https://" + domain
	}
	return domain
}

func siteHint(domain string) string {
	if host := HostOf(domain); host != "" {
		return "site:" + host
	}
	return ""
}
