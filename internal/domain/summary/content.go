package summary

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// TruncationMarker is appended whenever article text is cut at the content
// limit.
const TruncationMarker = "... [truncated]"

// contentAcquirer turns a request into bounded article text, fetching and
// extracting when a URL is given.
type contentAcquirer struct {
	fetcher  ArticleFetcher
	cache    ContentCache
	cacheTTL time.Duration
	maxLen   int
	logger   *slog.Logger
}

func newContentAcquirer(fetcher ArticleFetcher, cache ContentCache, cfg Config, logger *slog.Logger) *contentAcquirer {
	return &contentAcquirer{
		fetcher:  fetcher,
		cache:    cache,
		cacheTTL: cfg.CacheTTL,
		maxLen:   cfg.MaxContentLen,
		logger:   logger.With("component", "summary.acquirer"),
	}
}

func (a *contentAcquirer) acquire(ctx context.Context, req Request) (AcquiredContent, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return AcquiredContent{
			Text:   a.bound(req.Content),
			Source: SourceText,
		}, nil
	}

	if cached, ok := a.cacheLookup(ctx, url); ok {
		return AcquiredContent{
			Text:   a.bound(cached.Text),
			Title:  cached.Title,
			Source: SourceURL,
		}, nil
	}

	text, err := a.fetcher.FetchContent(ctx, url)
	if err != nil {
		return AcquiredContent{}, err
	}
	title := a.fetcher.FetchTitle(ctx, url)

	a.cacheStore(ctx, url, CachedArticle{Text: text, Title: title})

	return AcquiredContent{
		Text:   a.bound(text),
		Title:  title,
		Source: SourceURL,
	}, nil
}

func (a *contentAcquirer) bound(text string) string {
	if a.maxLen > 0 && len(text) > a.maxLen {
		return text[:a.maxLen] + TruncationMarker
	}
	return text
}

func (a *contentAcquirer) cacheLookup(ctx context.Context, url string) (CachedArticle, bool) {
	if a.cache == nil {
		return CachedArticle{}, false
	}
	cached, ok, err := a.cache.Get(ctx, url)
	if err != nil {
		a.logger.Warn("article cache read failed", "url", url, "error", err)
		return CachedArticle{}, false
	}
	if ok {
		a.logger.Debug("article cache hit", "url", url)
	}
	return cached, ok
}

func (a *contentAcquirer) cacheStore(ctx context.Context, url string, article CachedArticle) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Set(ctx, url, article, a.cacheTTL); err != nil {
		a.logger.Warn("article cache write failed", "url", url, "error", err)
	}
}
