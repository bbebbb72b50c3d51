// Package fetch retrieves article pages with browser-like headers and
// extracts their main body text and title.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	apperrors "github.com/yanqian/ai-article-summarizer/pkg/errors"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	acceptHeader     = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"
	acceptLanguage   = "en-US,en;q=0.9"

	// Referrer for the single retry when a site 403s the origin referrer.
	googleReferrer = "https://www.google.com/"

	defaultTitle = "Untitled Article"
)

// Content selectors tried in order of preference; the first one yielding
// substantial text wins.
var contentSelectors = []string{
	"article",
	"[role='article']",
	".article-content",
	".post-content",
	".entry-content",
	".content",
	"main article",
	"main .content",
	".article-body",
	".post-body",
}

const (
	minFragmentLen  = 100
	minContentLen   = 200
	minParagraphLen = 20
)

var (
	spaceRuns  = regexp.MustCompile(`[ \t\r\f]+`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// Fetcher downloads article pages. Content fetching fails fast; title
// fetching is best-effort and falls back to a default.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

// NewFetcher constructs a fetcher with the given timeout and user agent.
func NewFetcher(timeout time.Duration, userAgent string, logger *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = defaultUserAgent
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		logger:     logger.With("component", "fetch"),
	}
}

// FetchContent downloads the page and extracts the main article text.
func (f *Fetcher) FetchContent(ctx context.Context, rawURL string) (string, error) {
	f.logger.Info("fetching article content", "url", rawURL)

	doc, err := f.fetchWithRetry(ctx, rawURL)
	if err != nil {
		return "", err
	}

	content := extractArticleContent(doc)
	if content == "" {
		content = extractParagraphs(doc)
	}
	if strings.TrimSpace(content) == "" {
		return "", apperrors.Wrap("content_extraction",
			fmt.Sprintf("could not extract article content from URL: %s", rawURL), nil)
	}

	content = normalizeWhitespace(content)
	f.logger.Info("extracted article content", "url", rawURL, "chars", len(content))
	return content, nil
}

// FetchTitle extracts the article title. Any failure yields the default
// title; callers never see an error from this path.
func (f *Fetcher) FetchTitle(ctx context.Context, rawURL string) string {
	doc, err := f.fetchWithRetry(ctx, rawURL)
	if err != nil {
		f.logger.Warn("could not fetch article title", "url", rawURL, "error", err)
		return defaultTitle
	}

	if title, ok := doc.Find("meta[property='og:title']").Attr("content"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	if title, ok := doc.Find("meta[name='twitter:title']").Attr("content"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return defaultTitle
}

// fetchWithRetry performs the GET with an origin-derived referrer and retries
// exactly once with a search-engine referrer on 403. Any other failure, or a
// second 403, propagates.
func (f *Fetcher) fetchWithRetry(ctx context.Context, rawURL string) (*goquery.Document, error) {
	referrer, err := originReferrer(rawURL)
	if err != nil {
		return nil, apperrors.Wrap("invalid_input", fmt.Sprintf("invalid URL format: %s", rawURL), err)
	}

	doc, status, err := f.fetchDocument(ctx, rawURL, referrer)
	if err == nil {
		return doc, nil
	}
	if status == http.StatusForbidden && referrer != googleReferrer {
		f.logger.Info("got 403, retrying with search-engine referrer", "url", rawURL)
		doc, _, retryErr := f.fetchDocument(ctx, rawURL, googleReferrer)
		if retryErr == nil {
			return doc, nil
		}
		return nil, retryErr
	}
	return nil, err
}

func (f *Fetcher) fetchDocument(ctx context.Context, rawURL, referrer string) (*goquery.Document, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, apperrors.Wrap("invalid_input", fmt.Sprintf("invalid URL format: %s", rawURL), err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", acceptLanguage)
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	if strings.Contains(referrer, "google") {
		req.Header.Set("Sec-Fetch-Site", "cross-site")
	} else {
		req.Header.Set("Sec-Fetch-Site", "none")
	}
	if referrer != "" {
		req.Header.Set("Referer", referrer)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, 0, apperrors.Wrap("url_fetch", fetchFailureMessage(rawURL, err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, resp.StatusCode, apperrors.Wrap("url_fetch",
			fmt.Sprintf("fetch failed for %s: status=%d %s", rawURL, resp.StatusCode, http.StatusText(resp.StatusCode)), nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, apperrors.Wrap("url_fetch", fmt.Sprintf("parse document from %s", rawURL), err)
	}
	return doc, resp.StatusCode, nil
}

func fetchFailureMessage(rawURL string, err error) string {
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return fmt.Sprintf("fetch timeout for %s", rawURL)
	}
	return fmt.Sprintf("fetch failed for %s", rawURL)
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

// extractArticleContent walks the selector cascade and returns the first
// substantial match.
func extractArticleContent(doc *goquery.Document) string {
	for _, selector := range contentSelectors {
		var fragments []string
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if len(text) > minFragmentLen {
				fragments = append(fragments, text)
			}
		})
		content := strings.Join(fragments, "\n\n")
		if len(content) > minContentLen {
			return content
		}
	}
	return ""
}

// extractParagraphs is the fallback: every paragraph longer than a few words.
func extractParagraphs(doc *goquery.Document) string {
	var fragments []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if len(text) > minParagraphLen {
			fragments = append(fragments, text)
		}
	})
	return strings.Join(fragments, "\n\n")
}

func normalizeWhitespace(text string) string {
	text = spaceRuns.ReplaceAllString(text, " ")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// originReferrer derives a referrer from the URL origin so the request looks
// like in-site navigation.
func originReferrer(rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", errors.New("missing host")
	}
	return parsed.Scheme + "://" + parsed.Host + "/", nil
}
