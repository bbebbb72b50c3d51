package unit

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ai-article-summarizer/internal/domain/summary"
	"github.com/yanqian/ai-article-summarizer/internal/infra/fetch"
	"github.com/yanqian/ai-article-summarizer/internal/infra/fetchcache"
	"github.com/yanqian/ai-article-summarizer/internal/infra/llm/demo"
	"github.com/yanqian/ai-article-summarizer/internal/infra/summaryrepo"
	"github.com/yanqian/ai-article-summarizer/pkg/metrics"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDemoService(store summary.Store) summary.Service {
	return summary.NewService(
		summary.Config{
			Model:         "demo",
			MaxContentLen: 8000,
			StreamTimeout: time.Minute,
			CacheTTL:      time.Minute,
			HistoryLimit:  10,
		},
		demo.NewClient(),
		fetch.NewDemoFetcher(),
		fetchcache.NewMemoryStore(),
		store,
		metrics.NewRecorder(),
		newTestLogger(),
	)
}

func TestSummarizeEndToEnd(t *testing.T) {
	store := summaryrepo.NewMemoryStore()
	svc := newDemoService(store)

	resp, err := svc.Summarize(context.Background(), summary.Request{
		Content:      "Go is a statically typed language designed at Google.",
		TargetLength: "short",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Summary)
	require.Equal(t, "demo", resp.Model)

	items, err := svc.History(context.Background(), 10, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, resp.Summary, items[0].Summary)
}

func TestSummarizeURLUsesDemoFetcher(t *testing.T) {
	store := summaryrepo.NewMemoryStore()
	svc := newDemoService(store)

	resp, err := svc.Summarize(context.Background(), summary.Request{URL: "https://example.com/post"})
	require.NoError(t, err)
	require.Equal(t, "https://example.com/post", resp.SourceURL)
	require.Equal(t, "Demo Article", resp.ArticleTitle)
}

func TestStreamMatchesPersistedSummary(t *testing.T) {
	store := summaryrepo.NewMemoryStore()
	svc := newDemoService(store)

	events, err := svc.SummarizeStream(context.Background(), summary.Request{Content: "Stream me."})
	require.NoError(t, err)

	var (
		assembled strings.Builder
		terminal  []summary.StreamEvent
	)
	for event := range events {
		switch event.Type {
		case summary.EventChunk:
			assembled.WriteString(event.Data)
		default:
			terminal = append(terminal, event)
		}
	}

	require.Len(t, terminal, 1)
	require.Equal(t, summary.EventDone, terminal[0].Type)
	require.Equal(t, summary.DoneData, terminal[0].Data)

	require.Eventually(t, func() bool {
		records, err := store.Recent(context.Background(), 1)
		return err == nil && len(records) == 1 && records[0].Summary == assembled.String()
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHistorySearchFindsSummaries(t *testing.T) {
	store := summaryrepo.NewMemoryStore()
	svc := newDemoService(store)

	_, err := svc.Summarize(context.Background(), summary.Request{Content: "An article about container orchestration."})
	require.NoError(t, err)

	items, err := svc.History(context.Background(), 10, "orchestration")
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, err = svc.History(context.Background(), 10, "no-such-topic-anywhere")
	require.NoError(t, err)
	require.Empty(t, items)
}
