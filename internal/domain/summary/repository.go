package summary

import (
	"context"
	"time"
)

// Store persists summary records. Implementations must be safe for concurrent
// use; each operation is individually atomic and no call spans another.
type Store interface {
	Save(ctx context.Context, record Record) (Record, error)
	FindByID(ctx context.Context, id int64) (Record, bool, error)
	Recent(ctx context.Context, limit int) ([]Record, error)
	Search(ctx context.Context, query string, limit int) ([]Record, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
	DeleteAll(ctx context.Context) error
}

// ArticleFetcher retrieves article text and titles from the web. Content
// fetching is fail-fast; title fetching is fail-soft and never errors.
type ArticleFetcher interface {
	FetchContent(ctx context.Context, url string) (string, error)
	FetchTitle(ctx context.Context, url string) string
}

// CachedArticle is the cacheable result of one URL acquisition.
type CachedArticle struct {
	Text  string `json:"text"`
	Title string `json:"title"`
}

// ContentCache caches fetched articles by URL. Failures are advisory; the
// acquirer falls through to a live fetch.
type ContentCache interface {
	Get(ctx context.Context, url string) (CachedArticle, bool, error)
	Set(ctx context.Context, url string, article CachedArticle, ttl time.Duration) error
}
