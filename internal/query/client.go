package query

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/thomashgnt/driverjobpost/internal/model"
	"github.com/thomashgnt/driverjobpost/internal/util"
	"github.com/thomashgnt/driverjobpost/internal/worker"
)

// sleepFunc waits between attempts (injectable for tests)
var sleepFunc = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// jitterFunc returns the random part of the backoff in [0,1) (injectable for tests)
var jitterFunc = rand.Float64

var tracer = otel.Tracer("github.com/thomashgnt/driverjobpost/internal/query")

// Options configures a Client
type Options struct {
	MaxRetries        int
	DefaultRetryAfter time.Duration
	MaxRetryAfter     time.Duration
	Timeout           time.Duration // Per attempt, when the request sets none
	UserAgent         string
	Header            http.Header // Sent on every request
	MaxBodyBytes      int64
	HTTPProxy         string
	HTTPSProxy        string
	NoProxy           string
}

// DefaultOptions returns the built-in retry policy
func DefaultOptions() Options {
	return Options{
		MaxRetries:        3,
		DefaultRetryAfter: 10 * time.Second,
		MaxRetryAfter:     60 * time.Second,
		Timeout:           30 * time.Second,
		MaxBodyBytes:      2_000_000,
	}
}

// OptionsFromConfig builds client options from the runtime configuration
func OptionsFromConfig(cfg *model.Config) Options {
	opts := DefaultOptions()
	opts.MaxRetries = cfg.Retry.MaxRetries
	if cfg.Retry.DefaultRetryAfter > 0 {
		opts.DefaultRetryAfter = cfg.Retry.DefaultRetryAfter
	}
	if cfg.Retry.MaxRetryAfter > 0 {
		opts.MaxRetryAfter = cfg.Retry.MaxRetryAfter
	}
	if cfg.HTTP.SearchTimeout > 0 {
		opts.Timeout = cfg.HTTP.SearchTimeout
	}
	if cfg.HTTP.MaxBodyBytes > 0 {
		opts.MaxBodyBytes = cfg.HTTP.MaxBodyBytes
	}
	opts.UserAgent = cfg.HTTP.UserAgent
	opts.HTTPProxy = cfg.HTTP.HTTPProxy
	opts.HTTPSProxy = cfg.HTTP.HTTPSProxy
	opts.NoProxy = cfg.HTTP.NoProxy
	return opts
}

// Request is one outbound evidence query
type Request struct {
	Method  string
	URL     string
	Body    []byte
	Header  http.Header
	Label   string        // Human-readable label for logs
	Timeout time.Duration // Per attempt; zero uses Options.Timeout
}

// Response is a completed, non-retryable response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the response has a 2xx status
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client wraps outbound evidence queries with per-attempt timeouts, retry
// with exponential backoff, and a shared overload circuit breaker.
//
// Each Client owns its own transport; only the OverloadCounter and the
// Limiter are shared between clients.
type Client struct {
	httpClient *http.Client
	opts       Options
	counter    *OverloadCounter
	limiter    *worker.Limiter
	logger     *zap.Logger
}

// NewClient creates a new Client. A nil counter gives the client a private
// counter with the default threshold.
func NewClient(opts Options, counter *OverloadCounter, limiter *worker.Limiter, logger *zap.Logger) *Client {
	if counter == nil {
		counter = NewOverloadCounter(DefaultOverloadThreshold)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultOptions().MaxBodyBytes
	}

	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(opts.HTTPProxy, opts.HTTPSProxy, opts.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		opts:    opts,
		counter: counter,
		limiter: limiter,
		logger:  logger,
	}
}

// Counter returns the overload counter the client reports to
func (c *Client) Counter() *OverloadCounter {
	return c.counter
}

// Execute sends the request, retrying transient failures.
//
// Transport failures (including per-attempt timeouts) and 5xx responses share
// MaxRetries+1 attempts with 2^attempt seconds plus jitter between them.
// A 429 waits for Retry-After without consuming an attempt and increments the
// shared counter; ErrRateLimitExhausted is returned once it trips. Any other
// response resets the counter and is returned as-is, whatever its status.
func (c *Client) Execute(ctx context.Context, req Request) (*Response, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("%w: empty url", ErrInvalidRequest)
	}
	if req.Method == "" {
		req.Method = http.MethodPost
	}

	ctx, span := tracer.Start(ctx, "query.Execute", trace.WithAttributes(
		attribute.String("query.label", req.Label),
		attribute.String("http.method", req.Method),
		attribute.String("http.url", req.URL),
	))
	defer span.End()

	resp, err := c.execute(ctx, req, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	return resp, nil
}

func (c *Client) execute(ctx context.Context, req Request, span trace.Span) (*Response, error) {
	attempt := 0
	for {
		if err := c.limiter.Wait(ctx, req.URL); err != nil {
			return nil, fmt.Errorf("%s: wait for rate limiter: %w", req.Label, err)
		}

		span.AddEvent("attempt", trace.WithAttributes(attribute.Int("attempt", attempt)))
		resp, err := c.do(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%s: %w", req.Label, ctx.Err())
			}
			if attempt >= c.opts.MaxRetries {
				return nil, fmt.Errorf("%s: %w after %d attempts: %v", req.Label, ErrRetriesExhausted, attempt+1, err)
			}
			backoff := Backoff(attempt)
			c.logger.Warn("query transport failure, backing off",
				zap.String("label", req.Label),
				zap.Error(err),
				zap.Duration("backoff", backoff),
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", c.opts.MaxRetries+1))
			if err := sleepFunc(ctx, backoff); err != nil {
				return nil, fmt.Errorf("%s: %w", req.Label, err)
			}
			attempt++
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			n, exhausted := c.counter.Increment()
			if exhausted {
				c.logger.Error("query rate limit exhausted",
					zap.String("label", req.Label),
					zap.Int64("consecutive", n))
				return nil, fmt.Errorf("%s: %w: %d consecutive 429 responses", req.Label, ErrRateLimitExhausted, n)
			}
			wait := c.retryAfter(resp.Header)
			c.logger.Warn("query rate limited, waiting",
				zap.String("label", req.Label),
				zap.Duration("wait", wait),
				zap.Int64("consecutive", n),
				zap.Int64("threshold", c.counter.Threshold()))
			if err := sleepFunc(ctx, wait); err != nil {
				return nil, fmt.Errorf("%s: %w", req.Label, err)
			}

		case resp.StatusCode >= 500:
			if attempt >= c.opts.MaxRetries {
				return nil, fmt.Errorf("%s: %w after %d attempts: server status %d", req.Label, ErrRetriesExhausted, attempt+1, resp.StatusCode)
			}
			backoff := Backoff(attempt)
			c.logger.Warn("query server error, backing off",
				zap.String("label", req.Label),
				zap.Int("status", resp.StatusCode),
				zap.Duration("backoff", backoff))
			if err := sleepFunc(ctx, backoff); err != nil {
				return nil, fmt.Errorf("%s: %w", req.Label, err)
			}
			attempt++

		default:
			c.counter.Reset()
			return resp, nil
		}
	}
}

// do performs a single attempt under its own timeout
func (c *Client) do(ctx context.Context, req Request) (*Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.opts.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for key, values := range c.opts.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	for key, values := range req.Header {
		httpReq.Header.Del(key)
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.opts.UserAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", c.opts.UserAgent)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// retryAfter returns the cooldown requested by a 429 response, capped
func (c *Client) retryAfter(h http.Header) time.Duration {
	wait := c.opts.DefaultRetryAfter
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			wait = time.Duration(secs) * time.Second
		}
	}
	if c.opts.MaxRetryAfter > 0 && wait > c.opts.MaxRetryAfter {
		wait = c.opts.MaxRetryAfter
	}
	return wait
}

// Backoff returns 2^attempt seconds plus up to one second of jitter
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	return base + time.Duration(jitterFunc()*float64(time.Second))
}
