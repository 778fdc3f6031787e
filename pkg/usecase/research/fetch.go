package research

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/omnix/pkg/model"
	"github.com/m-mizutani/omnix/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// fetchAll downloads result pages in batches of batchSize. Each batch is fully
// awaited before the next one starts. Failed pages are dropped and the order of
// the remaining documents follows the search results.
func (u *UseCase) fetchAll(ctx context.Context, results []*model.SearchResult) []*model.Document {
	logger := logging.From(ctx)
	fetched := make([]*model.Document, len(results))

	for start := 0; start < len(results); start += u.batchSize {
		end := min(start+u.batchSize, len(results))

		var eg errgroup.Group
		for i := start; i < end; i++ {
			link := results[i].Link
			eg.Go(func() error {
				doc, err := u.fetchOne(ctx, link)
				if err != nil {
					logger.Debug("fetch failed", "url", link, "error", err)
					return nil
				}
				fetched[i] = doc
				return nil
			})
		}
		_ = eg.Wait()
	}

	docs := make([]*model.Document, 0, len(fetched))
	for _, doc := range fetched {
		if doc != nil && doc.Content != "" {
			docs = append(docs, doc)
		}
	}
	return docs
}

func (u *UseCase) fetchOne(ctx context.Context, link string) (doc *model.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, goerr.New("fetcher panicked", goerr.V("panic", fmt.Sprint(r)))
		}
	}()
	return u.fetcher.Fetch(ctx, link)
}
