package fetchcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ai-article-summarizer/internal/domain/summary"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	article := summary.CachedArticle{Text: "body", Title: "Title"}

	_, ok, err := store.Get(ctx, "https://example.com")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, "https://example.com", article, time.Minute))

	got, ok, err := store.Get(ctx, "https://example.com")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, article, got)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "u", summary.CachedArticle{Text: "x"}, time.Nanosecond))
	time.Sleep(5 * time.Millisecond)

	_, ok, err := store.Get(ctx, "u")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreZeroTTLNeverExpires(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "u", summary.CachedArticle{Text: "x"}, 0))

	_, ok, err := store.Get(ctx, "u")
	require.NoError(t, err)
	require.True(t, ok)
}
