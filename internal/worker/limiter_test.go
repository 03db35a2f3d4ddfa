package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}

	if NewLimiter(0, 5) != nil {
		t.Error("expected nil limiter for zero rate")
	}
}

func TestLimiter_NilNeverWaits(t *testing.T) {
	var limiter *Limiter
	if err := limiter.Wait(context.Background(), "https://api.example.com/v1/search"); err != nil {
		t.Errorf("nil limiter returned error: %v", err)
	}
	limiter.SetHostRate("api.example.com", 1, 1)
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1) // 100 rps, burst 1
	ctx := context.Background()

	if err := limiter.Wait(ctx, "http://example.com/foo"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// Different host should also work
	if err := limiter.Wait(ctx, "http://other.example.com"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_SetHostRate(t *testing.T) {
	limiter := NewLimiter(100, 10)
	limiter.SetHostRate("slow.example.com", 0.1, 1)

	ctx := context.Background()
	if err := limiter.Wait(ctx, "http://slow.example.com/a"); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	// Second request on the slow host cannot be served before the deadline
	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx, "http://slow.example.com/b"); err == nil {
		t.Error("expected slow host to exceed deadline")
	}

	// Other host still fast
	if err := limiter.Wait(context.Background(), "http://fast.example.com"); err != nil {
		t.Errorf("other host should pass: %v", err)
	}
}

func TestExtractHost(t *testing.T) {
	host, err := extractHost("https://api.linkup.so/v1/search")
	if err != nil {
		t.Fatalf("extractHost failed: %v", err)
	}
	if host != "api.linkup.so" {
		t.Errorf("expected api.linkup.so, got %s", host)
	}

	if _, err := extractHost("::invalid"); err == nil {
		t.Errorf("expected error for invalid URL")
	}
}
