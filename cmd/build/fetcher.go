package build

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lepinkainen/nyanko/internal/cache"
	"github.com/lepinkainen/nyanko/internal/guide"
)

// cachingFetcher keeps successful page fetches in the SQLite page cache so
// repeated imports of the same guide do not hit maxroll.gg again. Failures
// are never cached.
type cachingFetcher struct {
	next guide.Fetcher
}

func newCachingFetcher(next guide.Fetcher) *cachingFetcher {
	return &cachingFetcher{next: next}
}

func (f *cachingFetcher) Fetch(ctx context.Context, pageURL string) (*guide.FetchResult, error) {
	src := cacheSourceFor(pageURL)
	page, fromCache, err := cache.GetOrFetchWithPolicy(src, pageURL, func() (*guide.FetchResult, error) {
		return f.next.Fetch(ctx, pageURL)
	}, func(page *guide.FetchResult) bool {
		return page != nil && page.Body != ""
	})
	if err != nil {
		return nil, err
	}
	if fromCache {
		slog.Debug("Using cached page", "url", pageURL, "source", src)
	}
	return page, nil
}

func cacheSourceFor(pageURL string) cache.Source {
	if strings.Contains(pageURL, "/planner/") {
		return cache.Planner
	}
	return cache.Guide
}
