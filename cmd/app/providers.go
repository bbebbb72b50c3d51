package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/ai-article-summarizer/internal/domain/summary"
	"github.com/yanqian/ai-article-summarizer/internal/infra/config"
	"github.com/yanqian/ai-article-summarizer/internal/infra/fetch"
	"github.com/yanqian/ai-article-summarizer/internal/infra/fetchcache"
	"github.com/yanqian/ai-article-summarizer/internal/infra/llm/demo"
	"github.com/yanqian/ai-article-summarizer/internal/infra/llm/ollama"
	"github.com/yanqian/ai-article-summarizer/internal/infra/summaryrepo"
)

func provideSummaryConfig(cfg *config.Config) summary.Config {
	return summary.Config{
		Model:         cfg.LLM.Model,
		Temperature:   cfg.LLM.Temperature,
		MaxContentLen: cfg.Summary.MaxContentLen,
		StreamTimeout: cfg.Summary.StreamTimeout,
		CacheTTL:      cfg.Cache.TTL,
		HistoryLimit:  cfg.Summary.HistoryLimit,
	}
}

// provideChatClient picks the model runtime. Demo mode swaps in a canned
// client so the full pipeline works without a running Ollama instance.
func provideChatClient(cfg *config.Config, logger *slog.Logger) summary.ChatClient {
	if cfg.Demo.Enabled {
		logger.Info("demo mode enabled, using canned model client")
		return demo.NewClient()
	}
	return ollama.NewClient(cfg.LLM.BaseURL, cfg.LLM.Timeout)
}

func provideFetcher(cfg *config.Config, logger *slog.Logger) summary.ArticleFetcher {
	if cfg.Demo.Enabled {
		return fetch.NewDemoFetcher()
	}
	return fetch.NewFetcher(cfg.Fetch.Timeout, cfg.Fetch.UserAgent, logger)
}

func provideContentCache(cfg *config.Config, logger *slog.Logger) summary.ContentCache {
	if cfg.Cache.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return fetchcache.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return fetchcache.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		} else {
			logger.Info("article valkey cache enabled", "addr", cfg.Cache.Addr)
			return fetchcache.NewValkeyStore(client, "article")
		}
	}
	return fetchcache.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Cache.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Cache.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Cache.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideStore(cfg *config.Config, logger *slog.Logger) summary.Store {
	fallback := summaryrepo.NewMemoryStore()
	dsn := strings.TrimSpace(cfg.Storage.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory store")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory store", "error", err)
		return fallback
	}
	if cfg.Storage.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Storage.Postgres.MaxConns
	}
	if cfg.Storage.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Storage.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory store", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory store", "error", err)
		pool.Close()
		return fallback
	}
	store := summaryrepo.NewPostgresStore(pool)
	if err := store.Migrate(ctx); err != nil {
		logger.Error("postgres migration failed, using memory store", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("postgres summary store enabled")
	return store
}
