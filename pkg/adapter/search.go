package adapter

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/omnix/pkg/model"
	"github.com/m-mizutani/omnix/pkg/utils/logging"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

const (
	// maxSearchResults is the upper bound the Custom Search API accepts per request
	maxSearchResults = 10
	searchTimeout    = 10 * time.Second
)

// Search queries Google Programmable Search Engine
type Search struct {
	svc     *customsearch.Service
	cx      string
	timeout time.Duration
}

type SearchOption func(*searchConfig)

type searchConfig struct {
	clientOpts []option.ClientOption
	timeout    time.Duration
}

// WithSearchEndpoint overrides the API endpoint, mainly for tests
func WithSearchEndpoint(endpoint string) SearchOption {
	return func(c *searchConfig) {
		c.clientOpts = append(c.clientOpts, option.WithEndpoint(endpoint))
	}
}

// WithSearchTimeout sets the per-query timeout (default 10s)
func WithSearchTimeout(d time.Duration) SearchOption {
	return func(c *searchConfig) {
		c.timeout = d
	}
}

// NewSearch creates a search client. Without an API key or engine ID the client
// is still usable but every query returns no results.
func NewSearch(ctx context.Context, apiKey, cx string, opts ...SearchOption) (*Search, error) {
	cfg := &searchConfig{timeout: searchTimeout}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Search{cx: cx, timeout: cfg.timeout}
	if apiKey == "" || cx == "" {
		return s, nil
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, cfg.clientOpts...)
	svc, err := customsearch.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create custom search service")
	}
	s.svc = svc

	return s, nil
}

// Search returns up to num ranked results for query
func (s *Search) Search(ctx context.Context, query string, num int) ([]*model.SearchResult, error) {
	if s.svc == nil {
		logging.From(ctx).Warn("web search is not configured, returning empty results", "query", query)
		return nil, nil
	}

	if num > maxSearchResults {
		num = maxSearchResults
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.svc.Cse.List().Cx(s.cx).Q(query).Num(int64(num)).Context(ctx).Do()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search", goerr.V("query", query))
	}

	results := make([]*model.SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, &model.SearchResult{
			Title:       item.Title,
			Link:        item.Link,
			Snippet:     item.Snippet,
			DisplayLink: item.DisplayLink,
		})
	}

	return results, nil
}
