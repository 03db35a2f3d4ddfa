package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/thomashgnt/driverjobpost/internal/model"
	"github.com/thomashgnt/driverjobpost/internal/query"
)

const labelMaxLen = 60

// LinkupOptions configures the Linkup adapter
type LinkupOptions struct {
	BaseURL           string
	APIKey            string
	SearchTimeout     time.Duration
	StructuredTimeout time.Duration
	FetchTimeout      time.Duration
}

// LinkupOptionsFromConfig builds adapter options from the runtime configuration
func LinkupOptionsFromConfig(cfg *model.Config) LinkupOptions {
	return LinkupOptions{
		BaseURL:           cfg.Linkup.BaseURL,
		APIKey:            cfg.Linkup.APIKey,
		SearchTimeout:     cfg.HTTP.SearchTimeout,
		StructuredTimeout: cfg.HTTP.StructuredTimeout,
		FetchTimeout:      cfg.HTTP.FetchTimeout,
	}
}

// Linkup implements every evidence capability over the Linkup API
type Linkup struct {
	client *query.Client
	opts   LinkupOptions
	logger *zap.Logger
}

// NewLinkup creates a Linkup adapter on top of a query client
func NewLinkup(client *query.Client, opts LinkupOptions, logger *zap.Logger) (*Linkup, error) {
	if opts.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.linkup.so/v1"
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Linkup{client: client, opts: opts, logger: logger}, nil
}

type searchPayload struct {
	Query      string `json:"q"`
	Depth      string `json:"depth"`
	OutputType string `json:"outputType"`
	MaxResults int    `json:"maxResults,omitempty"`
	Schema     string `json:"structuredOutputSchema,omitempty"`
}

type fetchPayload struct {
	URL        string `json:"url"`
	OutputType string `json:"outputType"`
	RenderJS   bool   `json:"renderJs"`
}

type searchResponse struct {
	Results []struct {
		Type    string `json:"type"`
		Name    string `json:"name"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

type fetchResponse struct {
	Markdown string `json:"markdown"`
	Content  string `json:"content"`
}

// Search runs a document search and returns at most maxResults documents in
// the order the source ranked them
func (l *Linkup) Search(ctx context.Context, q string, maxResults int, depth model.Depth) ([]model.Document, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	body, ok, err := l.post(ctx, "/search", searchPayload{
		Query:      q,
		Depth:      depthOrDefault(depth, model.DepthStandard),
		OutputType: "searchResults",
		MaxResults: maxResults,
	}, l.opts.SearchTimeout, "search: "+truncate(q))
	if err != nil || !ok {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		l.logger.Warn("linkup search returned malformed body", zap.String("query", q), zap.Error(err))
		return nil, nil
	}

	docs := make([]model.Document, 0, len(resp.Results))
	for _, r := range resp.Results {
		if len(docs) >= maxResults {
			break
		}
		docs = append(docs, model.Document{URL: r.URL, Name: r.Name, Content: r.Content})
	}
	return docs, nil
}

// SearchStructured runs a structured search and decodes the result into out
func (l *Linkup) SearchStructured(ctx context.Context, q string, shape Shape, depth model.Depth, out any) (bool, error) {
	schema, err := shape.JSON()
	if err != nil {
		return false, err
	}

	body, ok, err := l.post(ctx, "/search", searchPayload{
		Query:      q,
		Depth:      depthOrDefault(depth, model.DepthDeep),
		OutputType: "structured",
		Schema:     schema,
	}, l.opts.StructuredTimeout, "structured: "+truncate(q))
	if err != nil || !ok {
		return false, err
	}

	return decodeShaped(body, shape, out, l.logger, q), nil
}

// Fetch returns the page rendered as markdown
func (l *Linkup) Fetch(ctx context.Context, url string, renderScripts bool) (string, bool, error) {
	body, ok, err := l.post(ctx, "/fetch", fetchPayload{
		URL:        url,
		OutputType: "markdown",
		RenderJS:   renderScripts,
	}, l.opts.FetchTimeout, "fetch "+truncate(url))
	if err != nil || !ok {
		return "", false, err
	}

	var resp fetchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		l.logger.Warn("linkup fetch returned malformed body", zap.String("url", url), zap.Error(err))
		return "", false, nil
	}

	content := resp.Markdown
	if content == "" {
		content = resp.Content
	}
	if strings.TrimSpace(content) == "" {
		return "", false, nil
	}
	return content, true, nil
}

// post sends a payload and returns the body of a 2xx response. Non-2xx
// responses that the client did not retry are logged and yield no evidence.
func (l *Linkup) post(ctx context.Context, path string, payload any, timeout time.Duration, label string) ([]byte, bool, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, false, fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := l.client.Execute(ctx, query.Request{
		Method: http.MethodPost,
		URL:    l.opts.BaseURL + path,
		Body:   data,
		Header: http.Header{
			"Authorization": []string{"Bearer " + l.opts.APIKey},
			"Content-Type":  []string{"application/json"},
		},
		Label:   label,
		Timeout: timeout,
	})
	if err != nil {
		return nil, false, fmt.Errorf("linkup %s: %w", path, err)
	}

	if !resp.OK() {
		l.logger.Error("linkup request rejected",
			zap.String("label", label),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", head(resp.Body)))
		return nil, false, nil
	}
	return resp.Body, true, nil
}

// decodeShaped decodes a structured body into out when it satisfies shape
func decodeShaped(body []byte, shape Shape, out any, logger *zap.Logger, q string) bool {
	ok, err := shape.Decode(body, out)
	switch {
	case errors.Is(err, ErrShapeTarget):
		logger.Error("structured search needs a non-nil pointer", zap.String("query", q))
	case err != nil:
		logger.Warn("structured result does not match shape", zap.String("query", q), zap.Error(err))
	case !ok:
		logger.Debug("structured search found no confident match", zap.String("query", q))
	}
	return ok
}

func depthOrDefault(d, def model.Depth) string {
	if d == "" {
		return string(def)
	}
	return string(d)
}

// truncate keeps the first labelMaxLen runes of s
func truncate(s string) string {
	if utf8.RuneCountInString(s) <= labelMaxLen {
		return s
	}
	return string([]rune(s)[:labelMaxLen])
}

func head(b []byte) []byte {
	if len(b) > 200 {
		return b[:200]
	}
	return b
}
