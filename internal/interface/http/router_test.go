package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ai-article-summarizer/internal/domain/summary"
	"github.com/yanqian/ai-article-summarizer/internal/infra/config"
	"github.com/yanqian/ai-article-summarizer/internal/infra/fetch"
	"github.com/yanqian/ai-article-summarizer/internal/infra/fetchcache"
	"github.com/yanqian/ai-article-summarizer/internal/infra/llm/demo"
	"github.com/yanqian/ai-article-summarizer/internal/infra/summaryrepo"
	"github.com/yanqian/ai-article-summarizer/pkg/metrics"
)

func testServerConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 0,
		},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := metrics.NewRecorder()
	svc := summary.NewService(
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
		summaryrepo.NewMemoryStore(),
		recorder,
		logger,
	)
	handler := NewSummaryHandler(svc, recorder, logger)
	srv := NewRouter(testServerConfig(), handler)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestSummarizeEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/summarize", `{"content":"Go makes backend services easier to build."}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	require.NotEmpty(t, body["summary"])
	require.Equal(t, "demo", body["model"])
	require.NotZero(t, body["id"])
}

func TestSummarizeValidationError(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/summarize", `{}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "validation", errObj["code"])
	require.Contains(t, errObj["message"], "Either 'content' or 'url' must be provided")
}

func TestSummarizeMalformedJSON(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/summarize", `{"content":`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "invalid_request", errObj["code"])
}

func TestSummarizeStreamEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/summarize/stream", `{"content":"Stream this article please.","targetLength":"short"}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)
	require.Contains(t, body, "event: chunk\n")
	require.Contains(t, body, "event: done\ndata: [DONE]\n")
	require.NotContains(t, body, "event: error")
}

func TestSummarizeStreamValidationError(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/summarize/stream", `{}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "validation", errObj["code"])
}

func TestHistoryLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/summarize", `{"content":"An article about goroutines."}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := decodeBody(t, resp)
	id := int64(created["id"].(float64))

	resp, err := http.Get(ts.URL + "/api/v1/history")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeBody(t, resp)
	require.EqualValues(t, 1, list["count"])

	resp, err = http.Get(fmt.Sprintf("%s/api/v1/history/%d", ts.URL, id))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	item := decodeBody(t, resp)
	require.NotEmpty(t, item["summary"])
	require.NotEmpty(t, item["preview"])

	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/v1/history/%d", ts.URL, id), nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(fmt.Sprintf("%s/api/v1/history/%d", ts.URL, id))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClearHistory(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/summarize", `{"content":"first"}`)
	resp.Body.Close()
	resp = postJSON(t, ts.URL+"/api/v1/summarize", `{"content":"second"}`)
	resp.Body.Close()

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/history", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/v1/history")
	require.NoError(t, err)
	list := decodeBody(t, resp)
	require.EqualValues(t, 0, list["count"])
}

func TestHistoryRejectsBadLimit(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/history?limit=abc")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/summarize", `{"content":"count me"}`)
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/api/v1/metrics")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decodeBody(t, resp)
	requests, ok := snap["requests"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, requests)
}

func TestRateLimitMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := metrics.NewRecorder()
	svc := summary.NewService(
		summary.Config{Model: "demo", MaxContentLen: 100, StreamTimeout: time.Minute, HistoryLimit: 10},
		demo.NewClient(), fetch.NewDemoFetcher(), fetchcache.NewMemoryStore(), summaryrepo.NewMemoryStore(), recorder, logger,
	)
	cfg := testServerConfig()
	cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	srv := NewRouter(cfg, NewSummaryHandler(svc, recorder, logger))
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/history")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/v1/history")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
