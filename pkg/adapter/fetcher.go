package adapter

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/omnix/pkg/model"
)

const (
	fetchUserAgent    = "Mozilla/5.0 (compatible; OmnixBot/1.0; +https://omnix.app)"
	fetchTimeout      = 5 * time.Second
	maxFetchBodyBytes = 500 * 1024
	maxContentChars   = 10000
)

var (
	ErrBlockedDomain    = goerr.New("domain is blocked")
	ErrContentTooLarge  = goerr.New("content exceeds size limit")
	ErrNoArticleContent = goerr.New("no article content extracted")
)

// defaultBlockedDomains are social and video platforms whose pages carry no usable article text
var defaultBlockedDomains = []string{
	"youtube.com",
	"facebook.com",
	"twitter.com",
	"instagram.com",
	"tiktok.com",
	"linkedin.com",
}

// Fetcher downloads pages and extracts readable article text
type Fetcher struct {
	client         *http.Client
	blockedDomains []string
	maxBodyBytes   int64
	maxChars       int
}

type FetcherOption func(*Fetcher)

// WithFetchTimeout sets the whole-request timeout (default 5s)
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithMaxBodyBytes sets the response size bound (default 500KB)
func WithMaxBodyBytes(n int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBodyBytes = n
	}
}

// WithBlockedDomains replaces the domain blocklist
func WithBlockedDomains(domains ...string) FetcherOption {
	return func(f *Fetcher) {
		f.blockedDomains = domains
	}
}

// NewFetcher creates a content fetcher
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:         &http.Client{Timeout: fetchTimeout},
		blockedDomains: defaultBlockedDomains,
		maxBodyBytes:   maxFetchBodyBytes,
		maxChars:       maxContentChars,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fetcher) isBlocked(host string) bool {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	for _, blocked := range f.blockedDomains {
		if strings.Contains(host, blocked) {
			return true
		}
	}
	return false
}

// Fetch downloads rawURL and returns its article text. Blocked domains, oversized
// bodies, non-200 responses, timeouts and pages without article text are errors.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*model.Document, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil || parsedURL.Host == "" {
		return nil, goerr.New("invalid URL", goerr.V("url", rawURL))
	}

	if f.isBlocked(parsedURL.Hostname()) {
		return nil, goerr.Wrap(ErrBlockedDomain, "skip blocked domain", goerr.V("url", rawURL))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.V("url", rawURL))
	}
	req.Header.Set("User-Agent", fetchUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch page", goerr.V("url", rawURL))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected status code",
			goerr.V("url", rawURL),
			goerr.V("status", resp.StatusCode))
	}

	if resp.ContentLength > f.maxBodyBytes {
		return nil, goerr.Wrap(ErrContentTooLarge, "content-length over limit",
			goerr.V("url", rawURL),
			goerr.V("length", resp.ContentLength))
	}

	// Read one byte past the limit to tell a full body from a truncated one
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read body", goerr.V("url", rawURL))
	}
	if int64(len(body)) > f.maxBodyBytes {
		return nil, goerr.Wrap(ErrContentTooLarge, "body over limit", goerr.V("url", rawURL))
	}

	article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to extract article", goerr.V("url", rawURL))
	}

	content := truncateRunes(strings.Join(strings.Fields(article.TextContent), " "), f.maxChars)
	if content == "" {
		return nil, goerr.Wrap(ErrNoArticleContent, "empty article", goerr.V("url", rawURL))
	}

	return &model.Document{
		URL:     rawURL,
		Title:   article.Title,
		Content: content,
	}, nil
}

// truncateRunes cuts s to at most n characters without splitting a rune
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
