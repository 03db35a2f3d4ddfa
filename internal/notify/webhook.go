// Package notify pushes finished resolutions to outbound webhooks. Delivery
// is fire-and-forget: callers never block on it and never see its errors.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// sleepFunc pauses between delivery attempts (injectable for tests)
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

// Options configures webhook delivery
type Options struct {
	Retries int           // Attempts after the first
	Pause   time.Duration // Between attempts
	Timeout time.Duration // Per attempt
}

// DefaultOptions returns 2 retries, a 2s pause and a 15s timeout
func DefaultOptions() Options {
	return Options{Retries: 2, Pause: 2 * time.Second, Timeout: 15 * time.Second}
}

// Webhook posts JSON payloads to one URL in the background
type Webhook struct {
	url    string
	client *http.Client
	opts   Options
	logger *zap.Logger
	wg     sync.WaitGroup

	mu        sync.Mutex
	delivered int
	failed    int
}

// NewWebhook creates a webhook sink for url
func NewWebhook(url string, opts Options, logger *zap.Logger) *Webhook {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	return &Webhook{
		url:    url,
		client: &http.Client{},
		opts:   opts,
		logger: logger,
	}
}

// Publish delivers payload in the background. Cancelling ctx does not stop
// a delivery already under way.
func (w *Webhook) Publish(ctx context.Context, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		w.logger.Error("webhook payload not encodable", zap.Error(err))
		w.count(false)
		return
	}

	ctx = context.WithoutCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.count(w.deliver(ctx, body))
	}()
}

// Wait blocks until every pending delivery has finished
func (w *Webhook) Wait() {
	w.wg.Wait()
}

// Stats returns the number of delivered and failed payloads
func (w *Webhook) Stats() (delivered, failed int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.delivered, w.failed
}

func (w *Webhook) count(ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ok {
		w.delivered++
	} else {
		w.failed++
	}
}

func (w *Webhook) deliver(ctx context.Context, body []byte) bool {
	var lastErr error
	for attempt := 0; attempt <= w.opts.Retries; attempt++ {
		if attempt > 0 {
			if err := sleepFunc(ctx, w.opts.Pause); err != nil {
				lastErr = err
				break
			}
		}
		if lastErr = w.post(ctx, body); lastErr == nil {
			return true
		}
		w.logger.Debug("webhook attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr))
	}

	w.logger.Error("webhook delivery failed",
		zap.Int("attempts", w.opts.Retries+1),
		zap.Error(lastErr))
	return false
}

func (w *Webhook) post(ctx context.Context, body []byte) error {
	if w.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}
	return nil
}
