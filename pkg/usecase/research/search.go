package research

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/omnix/pkg/model"
	"github.com/m-mizutani/omnix/pkg/utils/logging"
)

const (
	resultsPerQuery = 5
	// searching stops once this many distinct results are collected
	searchSoftLimit = 15
	maxResults      = 10
)

// buildQueries returns the fixed query sequence for a product
func buildQueries(brand, productModel string) []string {
	return []string{
		brand + " " + productModel + " materials",
		brand + " " + productModel + " bill of materials",
		brand + " sustainability report",
		brand + " supplier list",
		brand + " responsible sourcing",
		brand + " conflict minerals report",
		brand + " recycled materials",
	}
}

// runSearch executes queries one at a time, dropping results from domains
// already seen in this run
func (u *UseCase) runSearch(ctx context.Context, product *model.DetectedProduct) []*model.SearchResult {
	logger := logging.From(ctx)
	seen := make(map[string]struct{})
	var results []*model.SearchResult

	for i, query := range buildQueries(product.Brand, product.Model) {
		if len(results) >= searchSoftLimit {
			break
		}
		if i > 0 && u.queryDelay > 0 {
			if !sleep(ctx, u.queryDelay) {
				logger.Warn("search interrupted", "error", ctx.Err())
				break
			}
		}

		hits, err := u.search.Search(ctx, query, resultsPerQuery)
		if err != nil {
			logger.Warn("search query failed", "query", query, "error", err)
			continue
		}

		for _, hit := range hits {
			if hit == nil || hit.Link == "" {
				continue
			}
			domain := domainOf(hit)
			if _, ok := seen[domain]; ok {
				continue
			}
			seen[domain] = struct{}{}
			results = append(results, hit)
		}
		logger.Debug("search query done", "query", query, "hits", len(hits), "total", len(results))
	}

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

func domainOf(r *model.SearchResult) string {
	if r.DisplayLink != "" {
		return strings.ToLower(r.DisplayLink)
	}
	if u, err := url.Parse(r.Link); err == nil && u.Host != "" {
		return strings.ToLower(u.Host)
	}
	return r.Link
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
