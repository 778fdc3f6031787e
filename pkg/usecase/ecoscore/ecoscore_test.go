package ecoscore_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/omnix/pkg/model"
	"github.com/m-mizutani/omnix/pkg/usecase/ecoscore"
)

func headphones(materials ...string) *model.DetectedProduct {
	return &model.DetectedProduct{
		Brand:         "Acme",
		Model:         "X1",
		Category:      model.CategoryHeadphones,
		MaterialsUsed: materials,
		Confidence:    0.9,
	}
}

func TestCalculateEmptyEvidence(t *testing.T) {
	bases := map[model.Category]int{
		model.CategorySmartphone: 10,
		model.CategoryLaptop:     15,
		model.CategoryTablet:     10,
		model.CategorySmartwatch: 8,
		model.CategoryHeadphones: 20,
		model.CategoryCamera:     18,
		model.CategoryConsole:    16,
		model.CategoryGeneric:    15,
	}
	for category, base := range bases {
		t.Run(string(category), func(t *testing.T) {
			product := headphones()
			product.Category = category

			scores := ecoscore.Calculate(product, nil)
			gt.Equal(t, scores, model.SubScores{Sourcing: 25, Transparency: 10, Repairability: base})
		})
	}
}

func TestCalculateEndToEnd(t *testing.T) {
	claims := []model.Claim{
		{
			Type:        model.ClaimTypeSourcing,
			Text:        "Acme uses certified cobalt smelters",
			Materials:   []string{"Cobalt"},
			Places:      []string{"Democratic Republic of Congo"},
			CitationURL: "https://acme.example/report",
			Confidence:  0.8,
		},
	}

	scores := ecoscore.Calculate(headphones("Cobalt", "Aluminum"), claims)
	gt.Equal(t, scores.Sourcing, 33)
	gt.Equal(t, scores.Transparency, 12)
	gt.Equal(t, scores.Repairability, 20)
	gt.Equal(t, scores.Total(), 65)
}

func TestCalculateSourcing(t *testing.T) {
	testCases := map[string]struct {
		materials []string
		claims    []model.Claim
		expected  int
	}{
		"high risk material by substring": {
			materials: []string{"Tin solder"},
			expected:  20 - 5 + 5,
		},
		"policy keyword counts": {
			claims: []model.Claim{
				{Type: model.ClaimTypePolicy, Text: "Suppliers are AUDITED yearly", Confidence: 1},
			},
			expected: 20 + 10 + 10,
		},
		"keyword in other claim types is ignored": {
			claims: []model.Claim{
				{Type: model.ClaimTypeRecycling, Text: "certified recycler", Confidence: 1},
			},
			expected: 20 + 5,
		},
		"uppercase RMI never matches": {
			claims: []model.Claim{
				{Type: model.ClaimTypePolicy, Text: "Member of RMI", Confidence: 0.5},
			},
			expected: 20 + 5,
		},
		"average confidence is floored": {
			claims: []model.Claim{
				{Type: model.ClaimTypeSourcing, Text: "a", Confidence: 0.35},
				{Type: model.ClaimTypePolicy, Text: "b", Confidence: 0.4},
			},
			expected: 20 + 3,
		},
		"controversies subtract and clamp at zero": {
			materials: []string{"gold"},
			claims: []model.Claim{
				{Type: model.ClaimTypeControversy, Text: "child labor"},
				{Type: model.ClaimTypeControversy, Text: "river pollution"},
				{Type: model.ClaimTypeControversy, Text: "smuggling"},
				{Type: model.ClaimTypeControversy, Text: "fraud"},
				{Type: model.ClaimTypeSourcing, Text: "unknown", Confidence: 0},
			},
			expected: 0,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			scores := ecoscore.Calculate(headphones(tc.materials...), tc.claims)
			gt.Equal(t, scores.Sourcing, tc.expected)
		})
	}
}

func TestCalculateTransparency(t *testing.T) {
	claims := []model.Claim{
		{Type: model.ClaimTypePolicy, Text: "Publishes a Sustainability Report", CitationURL: "https://a.example"},
		{Type: model.ClaimTypePolicy, Text: "Full supplier list and CSR report", CitationURL: "https://a.example"},
		{Type: model.ClaimTypePolicy, Text: "another sustainability report", CitationURL: "https://b.example"},
	}
	scores := ecoscore.Calculate(headphones(), claims)
	// three distinct keywords, two distinct URLs
	gt.Equal(t, scores.Transparency, 10+15+4)

	t.Run("citation bonus is capped and clamped", func(t *testing.T) {
		var many []model.Claim
		for _, u := range []string{"a", "b", "c", "d", "e", "f", "g"} {
			many = append(many, model.Claim{
				Type:        model.ClaimTypePolicy,
				Text:        "disclosure, environmental report, sustainability report, supplier list, csr report",
				CitationURL: "https://" + u + ".example",
			})
		}
		gt.Equal(t, ecoscore.Calculate(headphones(), many).Transparency, 30)
	})

	t.Run("empty citation is not a source", func(t *testing.T) {
		claims := []model.Claim{{Type: model.ClaimTypePolicy, Text: "x"}}
		gt.Equal(t, ecoscore.Calculate(headphones(), claims).Transparency, 10)
	})
}

func TestCalculateRepairability(t *testing.T) {
	product := headphones()
	product.Category = model.CategorySmartphone

	claims := []model.Claim{
		{Type: model.ClaimTypeRecycling, Text: "Trade-in program"},
		{Type: model.ClaimTypePolicy, Text: "Uses 40% recycled aluminum"},
	}
	gt.Equal(t, ecoscore.Calculate(product, claims).Repairability, 10+5+5+5)

	t.Run("clamped at 30", func(t *testing.T) {
		gt.Equal(t, ecoscore.Calculate(headphones(), claims).Repairability, 30)
	})

	t.Run("unknown category uses default base", func(t *testing.T) {
		product := headphones()
		product.Category = "drone"
		gt.Equal(t, ecoscore.Calculate(product, nil).Repairability, 15)
	})
}

func TestCalculateBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	types := []model.ClaimType{
		model.ClaimTypeSourcing, model.ClaimTypePolicy,
		model.ClaimTypeControversy, model.ClaimTypeRecycling,
	}
	words := []string{
		"certified", "conflict-free", "recycled", "take-back", "disclosure",
		"supplier list", "child labor", "cobalt", "sustainability report", "",
	}
	categories := []model.Category{
		model.CategorySmartphone, model.CategoryLaptop, model.CategorySmartwatch,
		model.CategoryHeadphones, model.CategoryTablet, model.CategoryCamera,
		model.CategoryConsole, model.CategoryGeneric,
	}
	materials := []string{"Cobalt", "Gold", "Aluminum", "Plastic", "Tungsten", "Glass"}

	for i := 0; i < 500; i++ {
		product := headphones()
		product.Category = categories[rng.IntN(len(categories))]
		for j := rng.IntN(4); j > 0; j-- {
			product.MaterialsUsed = append(product.MaterialsUsed, materials[rng.IntN(len(materials))])
		}

		var claims []model.Claim
		for j := rng.IntN(12); j > 0; j-- {
			claims = append(claims, model.Claim{
				Type:        types[rng.IntN(len(types))],
				Text:        words[rng.IntN(len(words))] + " " + words[rng.IntN(len(words))],
				CitationURL: words[rng.IntN(len(words))],
				Confidence:  rng.Float64(),
			})
		}

		scores := ecoscore.Calculate(product, claims)
		gt.True(t, scores.Sourcing >= 0 && scores.Sourcing <= model.MaxSourcingScore)
		gt.True(t, scores.Transparency >= 0 && scores.Transparency <= model.MaxTransparencyScore)
		gt.True(t, scores.Repairability >= 0 && scores.Repairability <= model.MaxRepairabilityScore)
		gt.Equal(t, scores.Total(), scores.Sourcing+scores.Transparency+scores.Repairability)

		// deterministic
		gt.Equal(t, ecoscore.Calculate(product, claims), scores)
	}
}

type mockExplainer struct {
	claims []model.Claim
	scores model.SubScores
	resp   *model.Explanation
	err    error
}

func (m *mockExplainer) Explain(ctx context.Context, product *model.DetectedProduct, scores model.SubScores, claims []model.Claim) (*model.Explanation, error) {
	m.claims = claims
	m.scores = scores
	return m.resp, m.err
}

type mockTips struct {
	resp []string
	err  error
}

func (m *mockTips) Tips(ctx context.Context, product *model.DetectedProduct) ([]string, error) {
	return m.resp, m.err
}

func scoreRequest() *model.ScoreRequest {
	return &model.ScoreRequest{
		DetectedProduct: *headphones("Cobalt", "Aluminum"),
		EvidencePack: model.EvidencePack{
			Claims: []model.Claim{
				{
					Type:        model.ClaimTypeSourcing,
					Text:        "Certified cobalt supply",
					CitationURL: "https://acme.example/report",
					Confidence:  0.8,
				},
			},
			OverallConfidence: 0.7,
		},
	}
}

func TestScore(t *testing.T) {
	explainer := &mockExplainer{resp: &model.Explanation{
		Summary:          "Good headphones.",
		RationaleBullets: []string{"certified cobalt"},
	}}
	tips := &mockTips{resp: []string{"Replace ear pads instead of the headset"}}
	uc := ecoscore.New(ecoscore.WithExplainer(explainer), ecoscore.WithTips(tips))

	score, err := uc.Score(context.Background(), scoreRequest())
	gt.NoError(t, err)
	gt.Equal(t, score, &model.EcoScore{
		Total:            65,
		Sourcing:         33,
		Transparency:     12,
		Repairability:    20,
		Summary:          "Good headphones.",
		RationaleBullets: []string{"certified cobalt"},
		Tips:             []string{"Replace ear pads instead of the headset"},
	})
	gt.Equal(t, explainer.scores, model.SubScores{Sourcing: 33, Transparency: 12, Repairability: 20})
	gt.A(t, explainer.claims).Length(1)
}

func TestScoreFallbacks(t *testing.T) {
	uc := ecoscore.New(
		ecoscore.WithExplainer(&mockExplainer{err: goerr.New("model unavailable")}),
		ecoscore.WithTips(&mockTips{err: goerr.New("model unavailable")}),
	)

	score, err := uc.Score(context.Background(), scoreRequest())
	gt.NoError(t, err)
	gt.Equal(t, score.Total, 65)
	gt.S(t, score.Summary).Contains("headphones")
	gt.Equal(t, score.RationaleBullets, []string{"Evidence analysis complete"})
	gt.A(t, score.Tips).Length(3)
	gt.S(t, score.Tips[0]).Contains("Keep your headphones")

	t.Run("no generators", func(t *testing.T) {
		score, err := ecoscore.New().Score(context.Background(), scoreRequest())
		gt.NoError(t, err)
		gt.A(t, score.Tips).Length(3)
		gt.S(t, score.Summary).Contains("headphones")
	})

	t.Run("empty tips", func(t *testing.T) {
		uc := ecoscore.New(ecoscore.WithTips(&mockTips{resp: []string{}}))
		score, err := uc.Score(context.Background(), scoreRequest())
		gt.NoError(t, err)
		gt.A(t, score.Tips).Length(3)
	})
}

func TestScoreValidation(t *testing.T) {
	req := scoreRequest()
	req.EvidencePack.Claims[0].Type = "rumor"
	_, err := ecoscore.New().Score(context.Background(), req)
	gt.True(t, errors.Is(err, model.ErrInvalidClaimType))

	req = scoreRequest()
	req.DetectedProduct.Brand = " "
	_, err = ecoscore.New().Score(context.Background(), req)
	gt.True(t, errors.Is(err, model.ErrInvalidProduct))
}
