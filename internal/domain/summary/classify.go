package summary

import (
	"strings"

	apperrors "github.com/yanqian/ai-article-summarizer/pkg/errors"
)

// Category is a stable error bucket used for metrics tags and status mapping.
type Category string

const (
	CategoryOllama        Category = "ollama-connectivity"
	CategoryURLFetch      Category = "url-fetch"
	CategoryModelNotFound Category = "model-not-found"
	CategoryTimeout       Category = "request-timeout"
	CategoryStorage       Category = "storage"
	CategoryValidation    Category = "validation"
	CategoryOther         Category = "other"
)

// AppError codes produced across the service. The fetcher and store wrap
// their failures with these so classification can distinguish I/O-class
// acquisition errors from model errors carrying similar keywords.
const (
	codeInvalidInput      = "invalid_input"
	codeURLFetch          = "url_fetch"
	codeContentExtraction = "content_extraction"
	codeLLM               = "llm_error"
	codeStorage           = "storage_error"
)

func errInvalidInput(message string) error {
	return apperrors.Wrap(codeInvalidInput, message, nil)
}

const ollamaHint = "Cannot connect to Ollama. Make sure Ollama is running (ollama serve) and accessible at http://localhost:11434"

// classifyRule is one ordered entry of the classification table. Rules are
// evaluated top to bottom; the first match wins. Ordering is load-bearing:
// "timeout" belongs to url-fetch when the failure is an acquisition error and
// to request-timeout otherwise.
type classifyRule struct {
	matches  func(code, lowered string) bool
	category Category
	message  func(raw string) string
}

var classifyRules = []classifyRule{
	{
		matches: func(_, lowered string) bool {
			return strings.Contains(lowered, "connection") ||
				strings.Contains(lowered, "connect") ||
				strings.Contains(lowered, "refused")
		},
		category: CategoryOllama,
		message:  func(string) string { return ollamaHint },
	},
	{
		matches: func(code, _ string) bool {
			return code == codeURLFetch || code == codeContentExtraction
		},
		category: CategoryURLFetch,
		message:  urlFetchMessage,
	},
	{
		matches: func(_, lowered string) bool {
			return strings.Contains(lowered, "model") || strings.Contains(lowered, "not found")
		},
		category: CategoryModelNotFound,
		message: func(string) string {
			return "Model not found. Make sure you've downloaded the model: ollama pull llama3"
		},
	},
	{
		matches: func(_, lowered string) bool {
			return strings.Contains(lowered, "timeout") ||
				strings.Contains(lowered, "deadline exceeded")
		},
		category: CategoryTimeout,
		message: func(string) string {
			return "Request timed out. The summary took too long to generate. Try a shorter article or summary length."
		},
	},
	{
		matches: func(code, lowered string) bool {
			return code == codeStorage ||
				strings.Contains(lowered, "database") ||
				strings.Contains(lowered, "sql") ||
				strings.Contains(lowered, "postgres")
		},
		category: CategoryStorage,
		message: func(string) string {
			return "Database error. Check backend logs for details."
		},
	},
	{
		matches: func(code, _ string) bool {
			return code == codeInvalidInput
		},
		category: CategoryValidation,
		message:  func(raw string) string { return raw },
	},
}

// Classify maps any failure to a stable category and a user-facing message.
func Classify(err error) (Category, string) {
	if err == nil {
		return CategoryOther, "An error occurred."
	}
	raw := err.Error()
	lowered := strings.ToLower(raw)
	code := apperrors.CodeOf(err)

	for _, rule := range classifyRules {
		if rule.matches(code, lowered) {
			return rule.category, rule.message(raw)
		}
	}

	if msg := truncateMessage(raw, 300); msg != "" {
		return CategoryOther, msg
	}
	return CategoryOther, "An error occurred."
}

func urlFetchMessage(raw string) string {
	lowered := strings.ToLower(raw)
	switch {
	case strings.Contains(lowered, "403") || strings.Contains(lowered, "forbidden"):
		return "Failed to fetch content from URL. Access forbidden. The website may block automated requests. You can paste the article text instead."
	case strings.Contains(lowered, "404") || strings.Contains(lowered, "not found"):
		return "Failed to fetch content from URL. URL not found. Please check the URL and try again."
	case strings.Contains(lowered, "timeout") || strings.Contains(lowered, "deadline exceeded"):
		return "Failed to fetch content from URL. Request timed out. The website may be slow or unreachable."
	default:
		return "Failed to fetch content from URL. " + truncateMessage(raw, 200)
	}
}

func truncateMessage(raw string, limit int) string {
	raw = strings.TrimSpace(raw)
	if len(raw) <= limit {
		return raw
	}
	return raw[:limit] + "…"
}
