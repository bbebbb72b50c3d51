// Package fetchcache caches fetched article content by URL so repeated
// requests for the same page skip the network round trip.
package fetchcache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/ai-article-summarizer/internal/domain/summary"
)

// ValkeyStore caches articles in a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a cache backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "article"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Get(ctx context.Context, url string) (summary.CachedArticle, bool, error) {
	cmd := s.client.B().Get().Key(s.key(url)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return summary.CachedArticle{}, false, nil
		}
		return summary.CachedArticle{}, false, err
	}
	var article summary.CachedArticle
	if err := json.Unmarshal([]byte(payload), &article); err != nil {
		return summary.CachedArticle{}, false, err
	}
	return article, true, nil
}

func (s *ValkeyStore) Set(ctx context.Context, url string, article summary.CachedArticle, ttl time.Duration) error {
	payload, err := json.Marshal(article)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.key(url)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

// URLs can be arbitrarily long, so keys are hashes.
func (s *ValkeyStore) key(url string) string {
	return fmt.Sprintf("%s:%x", s.prefix, sha256.Sum256([]byte(url)))
}

var _ summary.ContentCache = (*ValkeyStore)(nil)
