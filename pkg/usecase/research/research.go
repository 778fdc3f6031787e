package research

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/omnix/pkg/geo"
	"github.com/m-mizutani/omnix/pkg/interfaces"
	"github.com/m-mizutani/omnix/pkg/model"
	"github.com/m-mizutani/omnix/pkg/utils/logging"
)

var ErrResearchFailed = goerr.New("research failed")

const (
	defaultQueryDelay = 200 * time.Millisecond
	defaultBatchSize  = 3

	// Synthesis input bounds
	maxSynthesisDocs  = 5
	maxDocumentLength = 2000

	// Degraded synthesis result
	fallbackConfidence = 0.3
)

// UseCase builds evidence packs for detected products
type UseCase struct {
	cache   interfaces.EvidenceCache
	search  interfaces.WebSearch
	fetcher interfaces.ContentFetcher
	synth   interfaces.ClaimSynthesizer
	archive interfaces.EvidenceArchive
	origins *geo.Index

	queryDelay time.Duration
	batchSize  int
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithQueryDelay sets the pause between consecutive search queries
func WithQueryDelay(d time.Duration) Option {
	return func(uc *UseCase) {
		uc.queryDelay = d
	}
}

// WithBatchSize sets how many pages are fetched in parallel
func WithBatchSize(n int) Option {
	return func(uc *UseCase) {
		if n > 0 {
			uc.batchSize = n
		}
	}
}

// WithArchive stores a snapshot of every freshly built result
func WithArchive(archive interfaces.EvidenceArchive) Option {
	return func(uc *UseCase) {
		uc.archive = archive
	}
}

// WithOriginIndex replaces the built-in material origin table
func WithOriginIndex(index *geo.Index) Option {
	return func(uc *UseCase) {
		uc.origins = index
	}
}

// New creates a new research UseCase instance
func New(
	cache interfaces.EvidenceCache,
	search interfaces.WebSearch,
	fetcher interfaces.ContentFetcher,
	synth interfaces.ClaimSynthesizer,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		cache:      cache,
		search:     search,
		fetcher:    fetcher,
		synth:      synth,
		origins:    geo.Default(),
		queryDelay: defaultQueryDelay,
		batchSize:  defaultBatchSize,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Research returns the evidence pack and origin pins for a product, from the
// cache when a fresh entry exists. Failures of search, fetch, synthesis and the
// cache degrade the result instead of failing the call.
func (u *UseCase) Research(ctx context.Context, product *model.DetectedProduct) (result *model.ResearchResult, err error) {
	if product == nil {
		return nil, goerr.Wrap(model.ErrInvalidProduct, "product is required")
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}

	key := model.NewProductKey(product)
	logger := logging.From(ctx).With("run_id", uuid.NewString(), "product_key", key.String())
	ctx = logging.With(ctx, logger)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("research panicked", "panic", fmt.Sprint(r))
			result = nil
			err = goerr.Wrap(ErrResearchFailed, "unexpected panic", goerr.V("panic", fmt.Sprint(r)))
		}
	}()

	cached, err := u.cache.GetEvidence(ctx, key)
	if err != nil {
		logger.Warn("failed to read evidence cache, treating as miss", "error", err)
	} else if cached != nil {
		logger.Info("evidence cache hit")
		return cached, nil
	}

	started := time.Now()
	results := u.runSearch(ctx, product)
	docs := u.fetchAll(ctx, results)

	sources := make([]model.Source, 0, len(results))
	for _, r := range results {
		sources = append(sources, r.Source())
	}

	synthesis := u.synthesize(ctx, product, docs)
	pins := derivePins(u.origins, product, synthesis.Claims)

	result = &model.ResearchResult{
		EvidencePack: model.EvidencePack{
			Sources:           sources,
			Claims:            synthesis.Claims,
			OverallConfidence: synthesis.OverallConfidence,
		},
		OriginPins: pins,
	}

	if err := u.cache.PutEvidence(ctx, key, result); err != nil {
		logger.Warn("failed to write evidence cache", "error", err)
	}

	if u.archive != nil {
		if err := u.archive.Archive(ctx, key, result); err != nil {
			logger.Warn("failed to archive evidence", "error", err)
		}
	}

	logger.Info("research completed",
		"sources", len(sources),
		"documents", len(docs),
		"claims", len(synthesis.Claims),
		"pins", len(pins),
		"elapsed", time.Since(started),
	)

	return result, nil
}

func (u *UseCase) synthesize(ctx context.Context, product *model.DetectedProduct, docs []*model.Document) *model.Synthesis {
	if len(docs) > maxSynthesisDocs {
		docs = docs[:maxSynthesisDocs]
	}

	input := make([]*model.Document, 0, len(docs))
	for _, doc := range docs {
		input = append(input, &model.Document{
			URL:     doc.URL,
			Title:   doc.Title,
			Content: truncate(doc.Content, maxDocumentLength),
		})
	}

	synthesis, err := u.synth.Synthesize(ctx, product, input)
	if err != nil || synthesis == nil {
		logging.From(ctx).Warn("claim synthesis failed, using empty evidence", "error", err)
		return &model.Synthesis{
			Claims:            []model.Claim{},
			OverallConfidence: fallbackConfidence,
		}
	}

	if synthesis.Claims == nil {
		synthesis.Claims = []model.Claim{}
	}
	return synthesis
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
