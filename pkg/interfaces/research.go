package interfaces

import (
	"context"

	"github.com/m-mizutani/omnix/pkg/model"
)

// EvidenceCache stores research results by product key with a fixed TTL
type EvidenceCache interface {
	// GetEvidence returns the cached result, or nil without error when the key is
	// missing or its entry has expired
	GetEvidence(ctx context.Context, key model.ProductKey) (*model.ResearchResult, error)

	// PutEvidence overwrites any existing entry for the key
	PutEvidence(ctx context.Context, key model.ProductKey, result *model.ResearchResult) error
}

// WebSearch returns ranked web results for a query
type WebSearch interface {
	Search(ctx context.Context, query string, num int) ([]*model.SearchResult, error)
}

// ContentFetcher downloads a page and extracts its article text.
// Any error means the page is unusable as evidence.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) (*model.Document, error)
}

// ClaimSynthesizer extracts typed claims about a product from documents
type ClaimSynthesizer interface {
	Synthesize(ctx context.Context, product *model.DetectedProduct, docs []*model.Document) (*model.Synthesis, error)
}

// ScoreExplainer describes computed sub-scores in natural language
type ScoreExplainer interface {
	Explain(ctx context.Context, product *model.DetectedProduct, scores model.SubScores, claims []model.Claim) (*model.Explanation, error)
}

// TipsGenerator produces practical sustainability tips for a product
type TipsGenerator interface {
	Tips(ctx context.Context, product *model.DetectedProduct) ([]string, error)
}

// EvidenceArchive keeps a durable snapshot of fresh research results
type EvidenceArchive interface {
	Archive(ctx context.Context, key model.ProductKey, result *model.ResearchResult) error
}
