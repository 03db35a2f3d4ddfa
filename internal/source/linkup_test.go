package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/thomashgnt/driverjobpost/internal/model"
	"github.com/thomashgnt/driverjobpost/internal/query"
)

func newTestLinkup(t *testing.T, handler http.HandlerFunc) *Linkup {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts := query.DefaultOptions()
	opts.MaxRetries = 0
	client := query.NewClient(opts, nil, nil, zap.NewNop())

	l, err := NewLinkup(client, LinkupOptions{BaseURL: server.URL + "/v1/", APIKey: "test-key"}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewLinkup failed: %v", err)
	}
	return l
}

func TestNewLinkup_RequiresKey(t *testing.T) {
	if _, err := NewLinkup(nil, LinkupOptions{}, nil); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestLinkup_Search(t *testing.T) {
	var payload searchPayload
	l := newTestLinkup(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_, _ = w.Write([]byte(`{"results":[
			{"type":"text","name":"Jane Doe - Fleet Manager - Riverside Transport | LinkedIn","url":"https://www.linkedin.com/in/janedoe","content":"Jane Doe is Fleet Manager at Riverside Transport"},
			{"type":"text","name":"Riverside Transport","url":"https://riversidetransport.com","content":"Trucking"},
			{"type":"text","name":"Extra","url":"https://example.com","content":""}
		]}`))
	})

	docs, err := l.Search(context.Background(), `site:linkedin.com/in/ "Riverside Transport" fleet`, 2, "")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if payload.OutputType != "searchResults" || payload.Depth != "standard" || payload.MaxResults != 2 {
		t.Errorf("unexpected payload: %+v", payload)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 docs (capped), got %d", len(docs))
	}
	if docs[0].URL != "https://www.linkedin.com/in/janedoe" || docs[1].URL != "https://riversidetransport.com" {
		t.Errorf("source order not preserved: %+v", docs)
	}
}

func TestLinkup_SearchStructured(t *testing.T) {
	var payload searchPayload
	l := newTestLinkup(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_, _ = w.Write([]byte(`{"people":[{"name":"Bob Smith","title":"Owner"}]}`))
	})

	var out model.PeopleHits
	found, err := l.SearchStructured(context.Background(), `"Acme Co" CEO OR owner`, PeopleShape, model.DepthDeep, &out)
	if err != nil {
		t.Fatalf("SearchStructured failed: %v", err)
	}
	if !found {
		t.Fatal("expected a match")
	}
	if len(out.People) != 1 || out.People[0].Name != "Bob Smith" {
		t.Errorf("unexpected people: %+v", out.People)
	}
	if payload.OutputType != "structured" || payload.Depth != "deep" {
		t.Errorf("unexpected payload: %+v", payload)
	}
	if !strings.Contains(payload.Schema, `"people"`) {
		t.Errorf("schema not sent: %s", payload.Schema)
	}
}

func TestLinkup_SearchStructured_NoMatch(t *testing.T) {
	tests := map[string]string{
		"null":          `null`,
		"empty object":  `{}`,
		"missing field": `{"other":1}`,
		"wrong type":    `{"people":"Bob Smith"}`,
		"not json":      `<html>oops</html>`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			l := newTestLinkup(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			out := model.PeopleHits{People: []model.PersonHit{{Name: "Keep Me"}}}
			found, err := l.SearchStructured(context.Background(), "q", PeopleShape, model.DepthDeep, &out)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if found {
				t.Error("expected no match")
			}
			if len(out.People) != 1 || out.People[0].Name != "Keep Me" {
				t.Errorf("out was modified: %+v", out)
			}
		})
	}
}

func TestLinkup_NonSuccessIsNoEvidence(t *testing.T) {
	var calls int32
	l := newTestLinkup(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	})

	docs, err := l.Search(context.Background(), "q", 5, model.DepthStandard)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected no docs, got %d", len(docs))
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestLinkup_Fetch(t *testing.T) {
	var payload fetchPayload
	l := newTestLinkup(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/fetch" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_, _ = w.Write([]byte(`{"markdown":"# Our Team\n**Jane Doe** - CEO"}`))
	})

	content, ok, err := l.Fetch(context.Background(), "https://acme.example.com/team", true)
	if err != nil || !ok {
		t.Fatalf("Fetch failed: ok=%v err=%v", ok, err)
	}
	if !strings.Contains(content, "Jane Doe") {
		t.Errorf("unexpected content %q", content)
	}
	if !payload.RenderJS || payload.OutputType != "markdown" {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestLinkup_RateLimitPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := query.NewClient(query.DefaultOptions(), query.NewOverloadCounter(1), nil, zap.NewNop())
	l, _ := NewLinkup(client, LinkupOptions{BaseURL: server.URL, APIKey: "k"}, nil)

	_, err := l.Search(context.Background(), "q", 5, model.DepthStandard)
	if !errors.Is(err, query.ErrRateLimitExhausted) {
		t.Errorf("expected ErrRateLimitExhausted, got %v", err)
	}
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	s := strings.Repeat("a", labelMaxLen-1) + "ééé"
	got := truncate(s)
	if !utf8.ValidString(got) {
		t.Fatalf("truncate split a rune: %q", got)
	}
	if want := strings.Repeat("a", labelMaxLen-1) + "é"; got != want {
		t.Errorf("truncate = %q, want %q", got, want)
	}
	if truncate("short") != "short" {
		t.Error("expected short strings unchanged")
	}
}
