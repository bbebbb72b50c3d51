package summary

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/ai-article-summarizer/internal/infra/llm/ollama"
	apperrors "github.com/yanqian/ai-article-summarizer/pkg/errors"
	"github.com/yanqian/ai-article-summarizer/pkg/metrics"
	"github.com/yanqian/ai-article-summarizer/pkg/util"
)

// Service exposes summarization and history capabilities.
type Service interface {
	Summarize(ctx context.Context, req Request) (Response, error)
	SummarizeStream(ctx context.Context, req Request) (<-chan StreamEvent, error)
	History(ctx context.Context, limit int, search string) ([]HistoryItem, error)
	GetSummary(ctx context.Context, id int64) (HistoryItem, bool, error)
	DeleteSummary(ctx context.Context, id int64) (bool, error)
	ClearHistory(ctx context.Context) error
}

// ChatClient is the model runtime contract. Satisfied by the live Ollama
// client and the demo strategy.
type ChatClient interface {
	Chat(ctx context.Context, req ollama.ChatRequest) (ollama.ChatResponse, error)
	ChatStream(ctx context.Context, req ollama.ChatRequest) (ollama.Stream, error)
}

type service struct {
	cfg      Config
	client   ChatClient
	acquirer *contentAcquirer
	store    Store
	recorder *metrics.Recorder
	logger   *slog.Logger
}

// NewService is a wire provider for the summary domain.
func NewService(cfg Config, client ChatClient, fetcher ArticleFetcher, cache ContentCache, store Store, recorder *metrics.Recorder, logger *slog.Logger) Service {
	return &service{
		cfg:      cfg,
		client:   client,
		acquirer: newContentAcquirer(fetcher, cache, cfg, logger),
		store:    store,
		recorder: recorder,
		logger:   logger.With("component", "summary.service"),
	}
}

func sourceOf(req Request) ContentSource {
	if strings.TrimSpace(req.URL) != "" {
		return SourceURL
	}
	return SourceText
}

func (s *service) Summarize(ctx context.Context, req Request) (Response, error) {
	if err := req.Validate(); err != nil {
		return Response{}, err
	}
	length := NormalizeTargetLength(req.TargetLength)
	source := sourceOf(req)
	s.recorder.RecordRequest(string(source), string(length))
	start := util.NowUTC()

	resp, err := s.summarizeOnce(ctx, req, length)
	elapsed := time.Since(start)
	if err != nil {
		category, _ := Classify(err)
		s.recorder.RecordError(string(source), string(length), string(category))
		s.recorder.ObserveLatency(string(source), string(length), "error", elapsed)
		s.logger.Warn("summarization failed",
			"source", source, "targetLength", length, "category", category, "error", err)
		return Response{}, err
	}

	s.recorder.ObserveLatency(string(source), string(length), "success", elapsed)
	s.logger.Info("summarization success",
		"source", source, "targetLength", length, "model", resp.Model, "latencyMs", resp.LatencyMs)
	return resp, nil
}

func (s *service) summarizeOnce(ctx context.Context, req Request, length TargetLength) (Response, error) {
	content, err := s.acquirer.acquire(ctx, req)
	if err != nil {
		return Response{}, err
	}

	messages := buildMessages(length, content.Text)
	if usage := estimateTokens(messages); !usage.IsZero() {
		s.logger.Debug("prompt composed", "promptTokens", usage.PromptTokens)
	}

	start := util.NowUTC()
	resp, err := s.client.Chat(ctx, ollama.ChatRequest{
		Model:    s.cfg.Model,
		Messages: messages,
		Options:  ollama.Options{Temperature: s.cfg.Temperature},
	})
	if err != nil {
		return Response{}, apperrors.Wrap(codeLLM, "chat request failed", err)
	}
	summaryText := resp.Message.Content
	if summaryText == "" {
		return Response{}, apperrors.Wrap(codeLLM, "received empty response from AI model", nil)
	}

	latency := time.Since(start).Milliseconds()
	modelName := resp.Model
	if modelName == "" {
		modelName = s.cfg.Model
	}

	record := Record{
		OriginalContent: content.Text,
		Summary:         summaryText,
		SourceURL:       req.URL,
		ArticleTitle:    content.Title,
		TargetLength:    string(length),
		Model:           modelName,
		LatencyMs:       latency,
		CreatedAt:       util.NowUTC(),
	}
	saved, err := s.store.Save(ctx, record)
	if err != nil {
		return Response{}, apperrors.Wrap(codeStorage, "failed to save summary", err)
	}

	return Response{
		ID:           saved.ID,
		Summary:      summaryText,
		Model:        modelName,
		LatencyMs:    latency,
		CreatedAt:    saved.CreatedAt,
		SourceURL:    req.URL,
		ArticleTitle: content.Title,
	}, nil
}

// SummarizeStream runs the full pipeline on its own goroutine and relays
// fragments as chunk events. The returned channel always ends with exactly
// one terminal event, done or error, and is closed afterwards.
func (s *service) SummarizeStream(ctx context.Context, req Request) (<-chan StreamEvent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	length := NormalizeTargetLength(req.TargetLength)
	source := sourceOf(req)
	s.recorder.RecordRequest(string(source), string(length))

	out := make(chan StreamEvent)
	sess := newStreamSession(source, length)
	go s.runStream(ctx, req, sess, out)
	return out, nil
}

func (s *service) runStream(ctx context.Context, req Request, sess *streamSession, out chan<- StreamEvent) {
	defer close(out)
	logger := s.logger.With("session", sess.id, "source", sess.source, "targetLength", sess.targetLength)

	// Upstream work gets its own deadline; the request context stays usable
	// for delivering the terminal event when that deadline fires.
	modelCtx, cancel := context.WithTimeout(ctx, s.cfg.StreamTimeout)
	defer cancel()

	content, err := s.acquirer.acquire(modelCtx, req)
	if err != nil {
		s.failStream(ctx, sess, out, logger, err)
		return
	}

	messages := buildMessages(sess.targetLength, content.Text)
	if usage := estimateTokens(messages); !usage.IsZero() {
		logger.Debug("prompt composed", "promptTokens", usage.PromptTokens)
	}

	stream, err := s.client.ChatStream(modelCtx, ollama.ChatRequest{
		Model:    s.cfg.Model,
		Messages: messages,
		Options:  ollama.Options{Temperature: s.cfg.Temperature},
	})
	if err != nil {
		s.failStream(ctx, sess, out, logger, apperrors.Wrap(codeLLM, "chat stream request failed", err))
		return
	}
	defer stream.Close()

	modelName := s.cfg.Model
	for {
		frame, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			if ctxErr := modelCtx.Err(); ctxErr != nil {
				recvErr = ctxErr
			}
			s.failStream(ctx, sess, out, logger, apperrors.Wrap(codeLLM, "chat stream failed", recvErr))
			return
		}
		if frame.Model != "" {
			modelName = frame.Model
		}
		fragment := frame.Message.Content
		if fragment == "" {
			continue
		}
		select {
		case out <- StreamEvent{Type: EventChunk, Data: fragment}:
			sess.append(fragment)
		case <-ctx.Done():
			s.abandonStream(sess, logger, ctx.Err())
			return
		}
	}

	s.completeStream(ctx, req, content, modelName, sess, out, logger)
}

func (s *service) completeStream(ctx context.Context, req Request, content AcquiredContent, modelName string, sess *streamSession, out chan<- StreamEvent, logger *slog.Logger) {
	if !sess.tryTerminate() {
		return
	}
	elapsed := sess.elapsed()

	// Persistence must survive a client that vanished right after the model
	// finished, so it does not run on the request context.
	persistCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	record := Record{
		OriginalContent: content.Text,
		Summary:         sess.fullText(),
		SourceURL:       req.URL,
		ArticleTitle:    content.Title,
		TargetLength:    string(sess.targetLength),
		Model:           modelName,
		LatencyMs:       elapsed.Milliseconds(),
		CreatedAt:       util.NowUTC(),
	}
	if _, err := s.store.Save(persistCtx, record); err != nil {
		// A failed save never downgrades an already successful stream.
		logger.Warn("failed to save streamed summary", "error", err)
	}

	s.recorder.ObserveLatency(string(sess.source), string(sess.targetLength), "success", elapsed)
	logger.Info("streaming summarization success", "model", modelName, "latencyMs", elapsed.Milliseconds())

	select {
	case out <- StreamEvent{Type: EventDone, Data: DoneData}:
	case <-ctx.Done():
	}
}

func (s *service) failStream(ctx context.Context, sess *streamSession, out chan<- StreamEvent, logger *slog.Logger, err error) {
	if !sess.tryTerminate() {
		return
	}
	category, message := Classify(err)
	s.recorder.RecordError(string(sess.source), string(sess.targetLength), string(category))
	s.recorder.ObserveLatency(string(sess.source), string(sess.targetLength), "error", sess.elapsed())
	logger.Warn("streaming summarization failed", "category", category, "error", err)

	select {
	case out <- StreamEvent{Type: EventError, Data: message}:
	case <-ctx.Done():
	}
}

func (s *service) abandonStream(sess *streamSession, logger *slog.Logger, cause error) {
	if !sess.tryTerminate() {
		return
	}
	category, _ := Classify(cause)
	s.recorder.RecordError(string(sess.source), string(sess.targetLength), string(category))
	s.recorder.ObserveLatency(string(sess.source), string(sess.targetLength), "error", sess.elapsed())
	logger.Info("client disconnected mid-stream, abandoning upstream", "error", cause)
}

const previewLen = 200

func (s *service) History(ctx context.Context, limit int, search string) ([]HistoryItem, error) {
	if limit <= 0 {
		limit = s.cfg.HistoryLimit
	}
	var (
		records []Record
		err     error
	)
	if search != "" {
		records, err = s.store.Search(ctx, search, limit)
	} else {
		records, err = s.store.Recent(ctx, limit)
	}
	if err != nil {
		return nil, apperrors.Wrap(codeStorage, "failed to load history", err)
	}
	items := make([]HistoryItem, 0, len(records))
	for _, record := range records {
		items = append(items, toHistoryItem(record))
	}
	return items, nil
}

func (s *service) GetSummary(ctx context.Context, id int64) (HistoryItem, bool, error) {
	record, found, err := s.store.FindByID(ctx, id)
	if err != nil {
		return HistoryItem{}, false, apperrors.Wrap(codeStorage, "failed to load summary", err)
	}
	if !found {
		return HistoryItem{}, false, nil
	}
	return toHistoryItem(record), true, nil
}

func (s *service) DeleteSummary(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return false, apperrors.Wrap(codeStorage, "failed to delete summary", err)
	}
	return deleted, nil
}

func (s *service) ClearHistory(ctx context.Context) error {
	if err := s.store.DeleteAll(ctx); err != nil {
		return apperrors.Wrap(codeStorage, "failed to clear history", err)
	}
	return nil
}

func toHistoryItem(record Record) HistoryItem {
	preview := record.OriginalContent
	if len(preview) > previewLen {
		preview = preview[:previewLen] + "..."
	}
	return HistoryItem{
		ID:           record.ID,
		Summary:      record.Summary,
		SourceURL:    record.SourceURL,
		ArticleTitle: record.ArticleTitle,
		TargetLength: record.TargetLength,
		Model:        record.Model,
		LatencyMs:    record.LatencyMs,
		CreatedAt:    record.CreatedAt,
		Preview:      preview,
	}
}
