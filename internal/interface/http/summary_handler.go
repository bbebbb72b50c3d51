package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/ai-article-summarizer/internal/domain/summary"
	"github.com/yanqian/ai-article-summarizer/pkg/metrics"
)

// SummaryHandler wires the HTTP transport to the summary domain service.
type SummaryHandler struct {
	svc      summary.Service
	recorder *metrics.Recorder
	logger   *slog.Logger
}

// NewSummaryHandler constructs the root HTTP handler.
func NewSummaryHandler(svc summary.Service, recorder *metrics.Recorder, logger *slog.Logger) *SummaryHandler {
	return &SummaryHandler{
		svc:      svc,
		recorder: recorder,
		logger:   logger.With("component", "http.handler"),
	}
}

// Summarize handles the sync summarization endpoint.
func (h *SummaryHandler) Summarize(c *gin.Context) {
	var req summary.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.svc.Summarize(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, classifiedHTTPError(err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SummarizeStream streams summary fragments using Server-Sent Events. Every
// stream ends with exactly one named terminal event, done or error.
func (h *SummaryHandler) SummarizeStream(c *gin.Context) {
	var req summary.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	events, err := h.svc.SummarizeStream(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, classifiedHTTPError(err))
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "stream_unsupported", "streaming not supported", nil))
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	for event := range events {
		writeSSEEvent(c.Writer, event)
		flusher.Flush()
	}
}

// writeSSEEvent frames one event per the SSE wire format. Fragment payloads
// can contain newlines, which must become separate data lines.
func writeSSEEvent(w http.ResponseWriter, event summary.StreamEvent) {
	w.Write([]byte("event: "))
	w.Write([]byte(event.Type))
	w.Write([]byte("\n"))
	for _, line := range strings.Split(event.Data, "\n") {
		w.Write([]byte("data: "))
		w.Write([]byte(line))
		w.Write([]byte("\n"))
	}
	w.Write([]byte("\n"))
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
