package summary

import (
	"strings"
	"time"
)

// TargetLength is the closed set of summary length directives. Free-form
// input never reaches the prompt; anything outside the set collapses to
// medium.
type TargetLength string

const (
	TargetShort  TargetLength = "short"
	TargetMedium TargetLength = "medium"
	TargetLong   TargetLength = "long"
)

// NormalizeTargetLength maps arbitrary input onto the enumeration, defaulting
// to medium for blank or unrecognized values.
func NormalizeTargetLength(raw string) TargetLength {
	switch TargetLength(strings.ToLower(strings.TrimSpace(raw))) {
	case TargetShort:
		return TargetShort
	case TargetLong:
		return TargetLong
	default:
		return TargetMedium
	}
}

// Config configures the summary domain.
type Config struct {
	Model         string
	Temperature   float32
	MaxContentLen int
	StreamTimeout time.Duration
	CacheTTL      time.Duration
	HistoryLimit  int
}

// Request represents the incoming summarization payload.
type Request struct {
	Content      string `json:"content"`
	URL          string `json:"url"`
	TargetLength string `json:"targetLength"`
}

const (
	maxRequestContentLen = 10000
	maxRequestURLLen     = 2048
)

// Validate rejects malformed requests before any acquisition work starts.
func (r Request) Validate() error {
	hasContent := strings.TrimSpace(r.Content) != ""
	hasURL := strings.TrimSpace(r.URL) != ""
	if !hasContent && !hasURL {
		return errInvalidInput("Either 'content' or 'url' must be provided")
	}
	if len(r.Content) > maxRequestContentLen {
		return errInvalidInput("content must be at most 10000 characters")
	}
	if len(r.URL) > maxRequestURLLen {
		return errInvalidInput("url must be at most 2048 characters")
	}
	return nil
}

// Response is returned by the sync endpoint.
type Response struct {
	ID           int64     `json:"id"`
	Summary      string    `json:"summary"`
	Model        string    `json:"model"`
	LatencyMs    int64     `json:"latencyMs"`
	CreatedAt    time.Time `json:"createdAt"`
	SourceURL    string    `json:"sourceUrl,omitempty"`
	ArticleTitle string    `json:"articleTitle,omitempty"`
}

// Record is one persisted summary. Immutable after Save.
type Record struct {
	ID              int64     `json:"id"`
	OriginalContent string    `json:"originalContent"`
	Summary         string    `json:"summary"`
	SourceURL       string    `json:"sourceUrl,omitempty"`
	ArticleTitle    string    `json:"articleTitle,omitempty"`
	TargetLength    string    `json:"targetLength"`
	Model           string    `json:"model"`
	LatencyMs       int64     `json:"latencyMs"`
	CreatedAt       time.Time `json:"createdAt"`
}

// HistoryItem is the list/detail view of a record.
type HistoryItem struct {
	ID           int64     `json:"id"`
	Summary      string    `json:"summary"`
	SourceURL    string    `json:"sourceUrl,omitempty"`
	ArticleTitle string    `json:"articleTitle,omitempty"`
	TargetLength string    `json:"targetLength"`
	Model        string    `json:"model"`
	LatencyMs    int64     `json:"latencyMs"`
	CreatedAt    time.Time `json:"createdAt"`
	Preview      string    `json:"preview"`
}

// ContentSource tags where the article text came from.
type ContentSource string

const (
	SourceText ContentSource = "text"
	SourceURL  ContentSource = "url"
)

// AcquiredContent is the normalized, length-bounded article text handed to
// the prompt. Ephemeral; discarded after persistence.
type AcquiredContent struct {
	Text   string
	Title  string
	Source ContentSource
}

// StreamEventType names the server-sent event kinds of the streaming path.
type StreamEventType string

const (
	EventChunk StreamEventType = "chunk"
	EventDone  StreamEventType = "done"
	EventError StreamEventType = "error"
)

// DoneData is the payload of the terminal done event.
const DoneData = "[DONE]"

// StreamEvent is one event relayed to the client channel.
type StreamEvent struct {
	Type StreamEventType
	Data string
}
