package source

import (
	"context"
	"testing"
	"time"

	"github.com/thomashgnt/driverjobpost/internal/cache"
	"github.com/thomashgnt/driverjobpost/internal/model"
)

type countingSource struct {
	searches   int
	structured int
	fetches    int
	docs       []model.Document
	people     model.PeopleHits
	page       string
}

func (s *countingSource) Search(ctx context.Context, q string, maxResults int, depth model.Depth) ([]model.Document, error) {
	s.searches++
	return s.docs, nil
}

func (s *countingSource) SearchStructured(ctx context.Context, q string, shape Shape, depth model.Depth, out any) (bool, error) {
	s.structured++
	if len(s.people.People) == 0 {
		return false, nil
	}
	*(out.(*model.PeopleHits)) = s.people
	return true, nil
}

func (s *countingSource) Fetch(ctx context.Context, url string, renderScripts bool) (string, bool, error) {
	s.fetches++
	return s.page, s.page != "", nil
}

func TestCached_ServesRepeatQueries(t *testing.T) {
	src := &countingSource{
		docs:   []model.Document{{URL: "https://www.linkedin.com/in/janedoe", Name: "Jane Doe - CEO"}},
		people: model.PeopleHits{People: []model.PersonHit{{Name: "Bob Smith", Title: "Owner"}}},
		page:   "About us",
	}
	c := NewCached(src, src, src, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		docs, err := c.Search(ctx, "q", 5, model.DepthStandard)
		if err != nil || len(docs) != 1 {
			t.Fatalf("Search: docs=%v err=%v", docs, err)
		}

		var hits model.PeopleHits
		found, err := c.SearchStructured(ctx, "q", PeopleShape, model.DepthDeep, &hits)
		if err != nil || !found || hits.People[0].Name != "Bob Smith" {
			t.Fatalf("SearchStructured: found=%v hits=%+v err=%v", found, hits, err)
		}

		page, ok, err := c.Fetch(ctx, "https://acme.example.com/about", false)
		if err != nil || !ok || page != "About us" {
			t.Fatalf("Fetch: page=%q ok=%v err=%v", page, ok, err)
		}
	}

	if src.searches != 1 || src.structured != 1 || src.fetches != 1 {
		t.Errorf("expected one upstream call each, got %d/%d/%d", src.searches, src.structured, src.fetches)
	}
}

func TestCached_DoesNotStoreEmptyResults(t *testing.T) {
	src := &countingSource{}
	c := NewCached(src, src, src, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _ = c.Search(ctx, "q", 5, model.DepthStandard)
		var hits model.PeopleHits
		_, _ = c.SearchStructured(ctx, "q", PeopleShape, model.DepthDeep, &hits)
		_, _, _ = c.Fetch(ctx, "https://acme.example.com", false)
	}

	if src.searches != 2 || src.structured != 2 || src.fetches != 2 {
		t.Errorf("expected empty results to be re-queried, got %d/%d/%d", src.searches, src.structured, src.fetches)
	}
}
