package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "http://localhost:11434"

// Message mirrors the Ollama chat message structure.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the Ollama /api/chat endpoint.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  Options   `json:"options,omitempty"`
}

// Options carries model sampling parameters.
type Options struct {
	Temperature float32 `json:"temperature,omitempty"`
}

// ChatResponse captures one response frame. Non-streaming calls return a
// single frame with Done set; streaming calls return one frame per fragment.
type ChatResponse struct {
	Model     string  `json:"model"`
	Message   Message `json:"message"`
	Done      bool    `json:"done"`
	Error     string  `json:"error,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
}

// Client performs HTTP requests against an Ollama server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs an Ollama client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Chat triggers a synchronous chat completion.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	req.Stream = false

	var out ChatResponse
	body, err := c.doRequest(ctx, req)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("decode chat response: %w", err)
	}
	if out.Error != "" {
		return ChatResponse{}, fmt.Errorf("ollama error: %s", out.Error)
	}
	return out, nil
}

// ChatStream starts a streaming chat completion. Ollama streams one JSON
// object per line until a frame with done=true.
func (c *Client) ChatStream(ctx context.Context, req ChatRequest) (Stream, error) {
	req.Stream = true

	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request chat stream: %w", err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("ollama stream failed: status=%d body=%s", resp.StatusCode, string(payload))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 1024), 1<<20)

	return &ChatStream{
		scanner: scanner,
		closer:  resp.Body,
	}, nil
}

func (c *Client) doRequest(ctx context.Context, req ChatRequest) ([]byte, error) {
	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request chat completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("ollama request failed: status=%d body=%s", resp.StatusCode, string(payload))
	}

	return io.ReadAll(resp.Body)
}

func (c *Client) newHTTPRequest(ctx context.Context, req ChatRequest) (*http.Request, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}
	endpoint := c.baseURL + "/api/chat"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	return httpReq, nil
}

// Stream defines the interface for streaming chat completions.
type Stream interface {
	Recv() (ChatResponse, error)
	Close() error
}

// ChatStream wraps a streaming HTTP response.
type ChatStream struct {
	scanner *bufio.Scanner
	closer  io.Closer
}

// Recv reads the next streaming frame. Returns io.EOF after the done frame.
func (s *ChatStream) Recv() (ChatResponse, error) {
	for {
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				s.Close()
				return ChatResponse{}, err
			}
			s.Close()
			return ChatResponse{}, io.EOF
		}
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}
		var frame ChatResponse
		if err := json.Unmarshal([]byte(line), &frame); err != nil {
			s.Close()
			return ChatResponse{}, fmt.Errorf("decode stream frame: %w", err)
		}
		if frame.Error != "" {
			s.Close()
			return ChatResponse{}, fmt.Errorf("ollama error: %s", frame.Error)
		}
		if frame.Done && frame.Message.Content == "" {
			s.Close()
			return ChatResponse{}, io.EOF
		}
		return frame, nil
	}
}

// Close closes the underlying stream.
func (s *ChatStream) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
