package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/omnix/pkg/interfaces"
	"github.com/m-mizutani/omnix/pkg/model"
)

// fakeClock is a manually advanced time source shared by cache tests
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func sampleResult(domain string) *model.ResearchResult {
	return &model.ResearchResult{
		EvidencePack: model.EvidencePack{
			Sources: []model.Source{
				{Title: "Report", URL: "https://" + domain + "/report", Domain: domain, Snippet: "snippet"},
			},
			Claims: []model.Claim{
				{
					Type:        model.ClaimTypeSourcing,
					Text:        "Cobalt is sourced from audited smelters",
					Materials:   []string{"Cobalt"},
					Places:      []string{"Zambia"},
					CitationURL: "https://" + domain + "/report",
					Confidence:  0.8,
				},
			},
			OverallConfidence: 0.7,
		},
		OriginPins: []model.OriginPin{
			{Material: "Cobalt", Place: "Zambia", Lat: -13.5, Lng: 28.3, CitationURL: "https://" + domain + "/report", Confidence: 0.8},
		},
	}
}

// testEvidenceCache runs the behavior every cache backend must satisfy
func testEvidenceCache(t *testing.T, newCache func(t *testing.T, clock *fakeClock) interfaces.EvidenceCache) {
	ctx := context.Background()

	t.Run("miss on unknown key", func(t *testing.T) {
		cache := newCache(t, newFakeClock())
		got, err := cache.GetEvidence(ctx, "unknown|key|laptop")
		gt.NoError(t, err)
		gt.Nil(t, got)
	})

	t.Run("round trip", func(t *testing.T) {
		cache := newCache(t, newFakeClock())
		key := model.ProductKey("acme|x1|headphones")
		gt.NoError(t, cache.PutEvidence(ctx, key, sampleResult("a.com")))

		got, err := cache.GetEvidence(ctx, key)
		gt.NoError(t, err)
		gt.NotNil(t, got)
		gt.Equal(t, got.EvidencePack.Sources[0].Domain, "a.com")
		gt.Equal(t, got.EvidencePack.Claims[0].Text, "Cobalt is sourced from audited smelters")
		gt.Equal(t, got.EvidencePack.OverallConfidence, 0.7)
		gt.A(t, got.OriginPins).Length(1)
		gt.Equal(t, got.OriginPins[0].Place, "Zambia")
	})

	t.Run("fresh until ttl boundary and absent after", func(t *testing.T) {
		clock := newFakeClock()
		cache := newCache(t, clock)
		key := model.ProductKey("acme|x2|laptop")
		gt.NoError(t, cache.PutEvidence(ctx, key, sampleResult("a.com")))

		clock.Advance(model.EvidenceTTL)
		got, err := cache.GetEvidence(ctx, key)
		gt.NoError(t, err)
		gt.NotNil(t, got)

		clock.Advance(time.Second)
		got, err = cache.GetEvidence(ctx, key)
		gt.NoError(t, err)
		gt.Nil(t, got)

		// still absent on the next read
		got, err = cache.GetEvidence(ctx, key)
		gt.NoError(t, err)
		gt.Nil(t, got)
	})

	t.Run("last write wins", func(t *testing.T) {
		cache := newCache(t, newFakeClock())
		key := model.ProductKey("acme|x3|tablet")
		gt.NoError(t, cache.PutEvidence(ctx, key, sampleResult("a.com")))
		gt.NoError(t, cache.PutEvidence(ctx, key, sampleResult("b.com")))

		got, err := cache.GetEvidence(ctx, key)
		gt.NoError(t, err)
		gt.Equal(t, got.EvidencePack.Sources[0].Domain, "b.com")
	})

	t.Run("write refreshes expiry", func(t *testing.T) {
		clock := newFakeClock()
		cache := newCache(t, clock)
		key := model.ProductKey("acme|x4|camera")
		gt.NoError(t, cache.PutEvidence(ctx, key, sampleResult("a.com")))

		clock.Advance(20 * time.Hour)
		gt.NoError(t, cache.PutEvidence(ctx, key, sampleResult("b.com")))

		clock.Advance(20 * time.Hour)
		got, err := cache.GetEvidence(ctx, key)
		gt.NoError(t, err)
		gt.NotNil(t, got)
	})
}
