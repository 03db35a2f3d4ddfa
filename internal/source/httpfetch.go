package source

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/thomashgnt/driverjobpost/internal/query"
	"github.com/thomashgnt/driverjobpost/internal/util"
)

// HTTPFetcher fetches pages directly and converts them to text. Requests
// that need script rendering go to the browser fetcher when one is set.
type HTTPFetcher struct {
	client  *query.Client
	robots  *util.RobotsChecker
	browser PageFetcher
	timeout time.Duration
	logger  *zap.Logger
}

// NewHTTPFetcher creates a local page fetcher. robots and browser may be nil.
func NewHTTPFetcher(client *query.Client, robots *util.RobotsChecker, browser PageFetcher, timeout time.Duration, logger *zap.Logger) *HTTPFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPFetcher{
		client:  client,
		robots:  robots,
		browser: browser,
		timeout: timeout,
		logger:  logger,
	}
}

// Fetch implements PageFetcher
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, renderScripts bool) (string, bool, error) {
	if f.robots != nil && !f.robots.IsAllowed(ctx, rawURL) {
		f.logger.Debug("fetch skipped by robots.txt", zap.String("url", rawURL))
		return "", false, nil
	}

	if renderScripts && f.browser != nil {
		return f.browser.Fetch(ctx, rawURL, true)
	}

	resp, err := f.client.Execute(ctx, query.Request{
		Method: http.MethodGet,
		URL:    rawURL,
		Header: http.Header{
			"Accept":          []string{"text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"},
			"Accept-Language": []string{"en-US,en;q=0.9"},
		},
		Label:   "fetch " + truncate(rawURL),
		Timeout: f.timeout,
	})
	if err != nil {
		return "", false, err
	}
	if !resp.OK() {
		f.logger.Debug("fetch returned non-success status", zap.String("url", rawURL), zap.Int("status", resp.StatusCode))
		return "", false, nil
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "text/plain") {
		return string(resp.Body), len(bytes.TrimSpace(resp.Body)) > 0, nil
	}

	text, err := HTMLToText(bytes.NewReader(resp.Body))
	if err != nil {
		f.logger.Warn("parse html failed", zap.String("url", rawURL), zap.Error(err))
		return "", false, nil
	}
	if text == "" {
		return "", false, nil
	}
	return text, true, nil
}
