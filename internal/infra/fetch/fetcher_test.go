package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/ai-article-summarizer/pkg/errors"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testFetcher() *Fetcher {
	return NewFetcher(5*time.Second, "", newTestLogger())
}

func articlePage(body string) string {
	return fmt.Sprintf(`<html><head><title>Page Title</title></head><body><article>%s</article></body></html>`, body)
}

func longText(n int) string {
	return strings.Repeat("Interesting article sentence. ", n)
}

func TestFetchContentFromArticleTag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articlePage(longText(20)))
	}))
	defer server.Close()

	content, err := testFetcher().FetchContent(context.Background(), server.URL)
	require.NoError(t, err)
	require.Contains(t, content, "Interesting article sentence.")
}

func TestFetchContentSendsBrowserHeaders(t *testing.T) {
	var gotUA, gotReferer string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		fmt.Fprint(w, articlePage(longText(20)))
	}))
	defer server.Close()

	_, err := testFetcher().FetchContent(context.Background(), server.URL)
	require.NoError(t, err)
	require.Contains(t, gotUA, "Mozilla/5.0")
	require.Equal(t, server.URL+"/", gotReferer)
}

func TestFetchContentRetriesForbiddenWithSearchReferrer(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if r.Header.Get("Referer") != googleReferrer {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		fmt.Fprint(w, articlePage(longText(20)))
	}))
	defer server.Close()

	content, err := testFetcher().FetchContent(context.Background(), server.URL)
	require.NoError(t, err)
	require.NotEmpty(t, content)
	require.Equal(t, 2, attempts)
}

func TestFetchContentForbiddenTwicePropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := testFetcher().FetchContent(context.Background(), server.URL)
	require.Error(t, err)
	require.Equal(t, "url_fetch", apperrors.CodeOf(err))
	require.Contains(t, err.Error(), "status=403")
}

func TestFetchContentNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := testFetcher().FetchContent(context.Background(), server.URL)
	require.Error(t, err)
	require.Equal(t, "url_fetch", apperrors.CodeOf(err))
	require.Contains(t, err.Error(), "status=404")
}

func TestFetchContentSelectorCascade(t *testing.T) {
	// No article tag; the post-content class should win before the
	// paragraph fallback.
	page := fmt.Sprintf(`<html><body><div class="post-content">%s</div></body></html>`, longText(20))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	content, err := testFetcher().FetchContent(context.Background(), server.URL)
	require.NoError(t, err)
	require.Contains(t, content, "Interesting article sentence.")
}

func TestFetchContentParagraphFallback(t *testing.T) {
	page := fmt.Sprintf(`<html><body><div><p>%s</p><p>short</p><p>%s</p></div></body></html>`,
		longText(3), longText(3))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	content, err := testFetcher().FetchContent(context.Background(), server.URL)
	require.NoError(t, err)
	require.Contains(t, content, "Interesting article sentence.")
	require.NotContains(t, content, "short\n")
}

func TestFetchContentNothingExtractable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div>tiny</div></body></html>`)
	}))
	defer server.Close()

	_, err := testFetcher().FetchContent(context.Background(), server.URL)
	require.Error(t, err)
	require.Equal(t, "content_extraction", apperrors.CodeOf(err))
}

func TestFetchContentInvalidURL(t *testing.T) {
	_, err := testFetcher().FetchContent(context.Background(), "ftp://example.com/file")
	require.Error(t, err)
	require.Equal(t, "invalid_input", apperrors.CodeOf(err))
}

func TestFetchTitlePrefersOpenGraph(t *testing.T) {
	page := `<html><head>
		<meta property="og:title" content="OG Title">
		<meta name="twitter:title" content="Twitter Title">
		<title>Plain Title</title>
	</head><body></body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	require.Equal(t, "OG Title", testFetcher().FetchTitle(context.Background(), server.URL))
}

func TestFetchTitleFallsBackToTitleTag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>  Plain Title </title></head><body></body></html>`)
	}))
	defer server.Close()

	require.Equal(t, "Plain Title", testFetcher().FetchTitle(context.Background(), server.URL))
}

func TestFetchTitleNeverErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	require.Equal(t, defaultTitle, testFetcher().FetchTitle(context.Background(), server.URL))
}

func TestNormalizeWhitespace(t *testing.T) {
	in := "line  one\t\tdense\n\n\n\n\nline two   "
	require.Equal(t, "line one dense\n\nline two", normalizeWhitespace(in))
}

func TestOriginReferrer(t *testing.T) {
	tests := []struct {
		name    string
		rawURL  string
		want    string
		wantErr bool
	}{
		{name: "https", rawURL: "https://example.com/a/b?q=1", want: "https://example.com/"},
		{name: "http", rawURL: "http://blog.example.org/post", want: "http://blog.example.org/"},
		{name: "bad scheme", rawURL: "ftp://example.com", wantErr: true},
		{name: "missing host", rawURL: "https://", wantErr: true},
		{name: "garbage", rawURL: "://nope", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := originReferrer(tt.rawURL)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
