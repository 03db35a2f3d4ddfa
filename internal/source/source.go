// Package source adapts evidence sources (document search, structured
// extraction search, page fetch) to the shapes the resolver consumes.
// Adapters hold no retry logic; that lives in the query client.
package source

import (
	"context"

	"github.com/thomashgnt/driverjobpost/internal/model"
)

// DocumentSearcher returns ranked documents for a query, in source order
type DocumentSearcher interface {
	Search(ctx context.Context, query string, maxResults int, depth model.Depth) ([]model.Document, error)
}

// StructuredSearcher fills out with an object satisfying shape. It reports
// false, leaving out untouched, when the source found no confident match.
type StructuredSearcher interface {
	SearchStructured(ctx context.Context, query string, shape Shape, depth model.Depth, out any) (bool, error)
}

// PageFetcher returns the textual content of a page, or false on failure
type PageFetcher interface {
	Fetch(ctx context.Context, url string, renderScripts bool) (string, bool, error)
}
