// Package demo provides a canned model strategy for deployments without a
// reachable Ollama instance. It satisfies the same chat contract as the real
// client so the choice is made once, at wiring time.
package demo

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/yanqian/ai-article-summarizer/internal/infra/llm/ollama"
)

const shortSummary = "This is a demo summary. The article summarizer drives an Ollama model to generate concise summaries. In demo mode this pre-generated response is shown. Run with DEMO_MODE=false and a reachable Ollama instance for real summaries."

const mediumSummary = `This is a demo summary. The article summarizer generates summaries from pasted text or fetched URLs using an Ollama model.

In demo mode this pre-generated response is shown so the service can be explored without local model setup. For real summaries, run with DEMO_MODE=false and point OLLAMA_BASE_URL at a running instance.`

const longSummary = `This is a demo summary demonstrating the article summarizer's capabilities.

The service accepts raw article text or a URL, extracts the main body content, and streams an AI-generated summary back to the client as it is produced. Summaries are persisted so earlier results can be listed, searched, and deleted.

In demo mode this pre-generated response is displayed so visitors can experience the full workflow without running Ollama locally. For production use, set DEMO_MODE=false and connect to an Ollama instance for real AI-powered summarization.`

// Client serves canned summaries keyed on the target length embedded in the
// system prompt.
type Client struct {
	chunkDelay time.Duration
}

// NewClient constructs the demo chat client.
func NewClient() *Client {
	return &Client{chunkDelay: 25 * time.Millisecond}
}

// Chat returns the canned summary in a single response.
func (c *Client) Chat(_ context.Context, req ollama.ChatRequest) (ollama.ChatResponse, error) {
	return ollama.ChatResponse{
		Model:   "demo",
		Message: ollama.Message{Role: "assistant", Content: mockSummary(req)},
		Done:    true,
	}, nil
}

// ChatStream emits the canned summary in small word chunks with a short delay
// so the client-side streaming path behaves like a live model.
func (c *Client) ChatStream(ctx context.Context, req ollama.ChatRequest) (ollama.Stream, error) {
	return &stream{
		ctx:    ctx,
		chunks: splitIntoChunks(mockSummary(req)),
		delay:  c.chunkDelay,
	}, nil
}

func mockSummary(req ollama.ChatRequest) string {
	var system string
	for _, msg := range req.Messages {
		if msg.Role == "system" {
			system = strings.ToLower(msg.Content)
			break
		}
	}
	switch {
	case strings.Contains(system, "target length: short"):
		return shortSummary
	case strings.Contains(system, "target length: long"):
		return longSummary
	default:
		return mediumSummary
	}
}

// Split on word boundaries, two words or ~40 chars per chunk, so streaming
// looks natural.
func splitIntoChunks(text string) []string {
	words := strings.Fields(text)
	var (
		chunks  []string
		current strings.Builder
		count   int
	)
	for _, word := range words {
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
		count++
		if count >= 2 || current.Len() > 40 {
			chunks = append(chunks, current.String())
			current.Reset()
			count = 0
		}
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

type stream struct {
	ctx    context.Context
	chunks []string
	idx    int
	delay  time.Duration
}

func (s *stream) Recv() (ollama.ChatResponse, error) {
	if s.idx >= len(s.chunks) {
		return ollama.ChatResponse{}, io.EOF
	}
	select {
	case <-s.ctx.Done():
		return ollama.ChatResponse{}, s.ctx.Err()
	case <-time.After(s.delay):
	}
	content := s.chunks[s.idx]
	if s.idx > 0 {
		content = " " + content
	}
	s.idx++
	return ollama.ChatResponse{
		Model:   "demo",
		Message: ollama.Message{Role: "assistant", Content: content},
	}, nil
}

func (s *stream) Close() error {
	return nil
}
