package fetchcache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/ai-article-summarizer/internal/domain/summary"
	"github.com/yanqian/ai-article-summarizer/pkg/util"
)

type memoryEntry struct {
	article   summary.CachedArticle
	expiresAt time.Time
}

// MemoryStore is an in-memory ContentCache used for tests/dev.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryStore constructs a cache backed by memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(_ context.Context, url string) (summary.CachedArticle, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[url]
	s.mu.RUnlock()
	if !ok {
		return summary.CachedArticle{}, false, nil
	}
	if !entry.expiresAt.IsZero() && util.NowUTC().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, url)
		s.mu.Unlock()
		return summary.CachedArticle{}, false, nil
	}
	return entry.article, true, nil
}

func (s *MemoryStore) Set(_ context.Context, url string, article summary.CachedArticle, ttl time.Duration) error {
	entry := memoryEntry{article: article}
	if ttl > 0 {
		entry.expiresAt = util.NowUTC().Add(ttl)
	}
	s.mu.Lock()
	s.entries[url] = entry
	s.mu.Unlock()
	return nil
}

var _ summary.ContentCache = (*MemoryStore)(nil)
