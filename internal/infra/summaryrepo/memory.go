package summaryrepo

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/yanqian/ai-article-summarizer/internal/domain/summary"
)

// MemoryStore is an in-memory summary.Store used for tests/dev.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	records map[int64]summary.Record
}

// NewMemoryStore constructs a store backed by memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:  1,
		records: make(map[int64]summary.Record),
	}
}

// Save implements summary.Store.
func (s *MemoryStore) Save(_ context.Context, record summary.Record) (summary.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.ID = s.nextID
	s.nextID++
	s.records[record.ID] = record
	return record, nil
}

// FindByID implements summary.Store.
func (s *MemoryStore) FindByID(_ context.Context, id int64) (summary.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	return record, ok, nil
}

// Recent implements summary.Store.
func (s *MemoryStore) Recent(_ context.Context, limit int) ([]summary.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked(limit, func(summary.Record) bool { return true }), nil
}

// Search implements summary.Store.
func (s *MemoryStore) Search(_ context.Context, query string, limit int) ([]summary.Record, error) {
	lowered := strings.ToLower(query)
	matches := func(record summary.Record) bool {
		return strings.Contains(strings.ToLower(record.Summary), lowered) ||
			strings.Contains(strings.ToLower(record.OriginalContent), lowered) ||
			strings.Contains(strings.ToLower(record.ArticleTitle), lowered)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked(limit, matches), nil
}

// DeleteByID implements summary.Store.
func (s *MemoryStore) DeleteByID(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return false, nil
	}
	delete(s.records, id)
	return true, nil
}

// DeleteAll implements summary.Store.
func (s *MemoryStore) DeleteAll(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[int64]summary.Record)
	return nil
}

func (s *MemoryStore) sortedLocked(limit int, keep func(summary.Record) bool) []summary.Record {
	records := make([]summary.Record, 0, len(s.records))
	for _, record := range s.records {
		if keep(record) {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID > records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}

var _ summary.Store = (*MemoryStore)(nil)
