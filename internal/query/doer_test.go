package query

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestDoer_RetriesAndForwardsRequest(t *testing.T) {
	resetSleeps()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"q":1}` {
			t.Errorf("expected forwarded body, got %q", body)
		}
		if r.Header.Get("Authorization") != "Bearer k" {
			t.Errorf("expected forwarded header, got %q", r.Header.Get("Authorization"))
		}
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("X-Request-Id", "abc")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	doer := &Doer{Client: newTestClient(nil), Timeout: time.Second}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, server.URL+"/chat/completions", strings.NewReader(`{"q":1}`))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer k")

	resp, err := doer.Do(req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != `{"ok":true}` {
		t.Errorf("unexpected response: %d %s", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Request-Id") != "abc" {
		t.Error("expected response headers to be kept")
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
	if len(recordedSleeps()) != 1 {
		t.Errorf("expected one backoff, got %v", recordedSleeps())
	}
}
