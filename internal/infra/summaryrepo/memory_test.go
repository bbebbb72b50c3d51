package summaryrepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ai-article-summarizer/internal/domain/summary"
)

func seedRecord(t *testing.T, store *MemoryStore, summaryText string, createdAt time.Time) summary.Record {
	t.Helper()
	saved, err := store.Save(context.Background(), summary.Record{
		OriginalContent: "original text about " + summaryText,
		Summary:         summaryText,
		ArticleTitle:    "Title " + summaryText,
		TargetLength:    "medium",
		Model:           "llama3",
		CreatedAt:       createdAt,
	})
	require.NoError(t, err)
	return saved
}

func TestMemoryStoreSaveAssignsIDs(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now().UTC()

	first := seedRecord(t, store, "one", now)
	second := seedRecord(t, store, "two", now)
	require.Equal(t, int64(1), first.ID)
	require.Equal(t, int64(2), second.ID)

	got, found, err := store.FindByID(context.Background(), first.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "one", got.Summary)
}

func TestMemoryStoreRecentNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now().UTC()

	seedRecord(t, store, "oldest", now.Add(-2*time.Hour))
	seedRecord(t, store, "newest", now)
	seedRecord(t, store, "middle", now.Add(-time.Hour))

	records, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "newest", records[0].Summary)
	require.Equal(t, "middle", records[1].Summary)
	require.Equal(t, "oldest", records[2].Summary)

	limited, err := store.Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	require.Equal(t, "newest", limited[0].Summary)
}

func TestMemoryStoreSearch(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now().UTC()

	seedRecord(t, store, "Golang concurrency", now.Add(-time.Hour))
	seedRecord(t, store, "Rust ownership", now)

	records, err := store.Search(context.Background(), "golang", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Golang concurrency", records[0].Summary)

	// Title matches count too.
	records, err = store.Search(context.Background(), "title rust", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	records, err = store.Search(context.Background(), "nomatch", 10)
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	record := seedRecord(t, store, "one", time.Now().UTC())

	deleted, err := store.DeleteByID(context.Background(), record.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = store.DeleteByID(context.Background(), record.ID)
	require.NoError(t, err)
	require.False(t, deleted)

	_, found, err := store.FindByID(context.Background(), record.ID)
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryStoreDeleteAll(t *testing.T) {
	store := NewMemoryStore()
	seedRecord(t, store, "one", time.Now().UTC())
	seedRecord(t, store, "two", time.Now().UTC())

	require.NoError(t, store.DeleteAll(context.Background()))

	records, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, records)
}
