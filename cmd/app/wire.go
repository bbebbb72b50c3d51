//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/ai-article-summarizer/internal/bootstrap"
	"github.com/yanqian/ai-article-summarizer/internal/domain/summary"
	"github.com/yanqian/ai-article-summarizer/internal/infra/config"
	httpiface "github.com/yanqian/ai-article-summarizer/internal/interface/http"
	"github.com/yanqian/ai-article-summarizer/pkg/logger"
	"github.com/yanqian/ai-article-summarizer/pkg/metrics"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		metrics.NewRecorder,
		provideSummaryConfig,
		provideChatClient,
		provideFetcher,
		provideContentCache,
		provideStore,
		summary.NewService,
		httpiface.NewSummaryHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
