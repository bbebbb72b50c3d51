package summary

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/yanqian/ai-article-summarizer/internal/infra/llm/ollama"
	"github.com/yanqian/ai-article-summarizer/pkg/metrics"
)

// The system instruction is parameterized only by the closed TargetLength
// enumeration; no free-form request field ever reaches it.
const systemPromptTemplate = "You are an expert technical writer. Summarize the following article in a clear, concise way.\n" +
	"Target length: %s\n" +
	"Return only the summary text."

func composeSystemPrompt(length TargetLength) string {
	return fmt.Sprintf(systemPromptTemplate, length)
}

func buildMessages(length TargetLength, content string) []ollama.Message {
	return []ollama.Message{
		{Role: "system", Content: composeSystemPrompt(length)},
		{Role: "user", Content: content},
	}
}

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// estimateTokens approximates the prompt size with a cl100k BPE count. Local
// models tokenize differently, so this is an estimate for logs and metrics
// only. Fails soft: a missing encoding yields zero usage.
func estimateTokens(messages []ollama.Message) metrics.TokenUsage {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoding = enc
		}
	})
	if encoding == nil {
		return metrics.TokenUsage{}
	}
	total := 0
	for _, msg := range messages {
		total += len(encoding.Encode(msg.Content, nil, nil))
	}
	return metrics.TokenUsage{PromptTokens: total, TotalTokens: total}
}
