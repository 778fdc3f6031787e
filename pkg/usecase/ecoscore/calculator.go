package ecoscore

import (
	"math"
	"strings"

	"github.com/m-mizutani/omnix/pkg/model"
)

var highRiskMaterials = []string{"cobalt", "tantalum", "tin", "tungsten", "gold"}

// Claim texts are lowercased before matching, so "RMI" can never match.
var responsibleSourcingKeywords = []string{
	"responsible sourcing",
	"conflict-free",
	"certified",
	"audited",
	"RMI",
	"responsible minerals",
	"supply chain transparency",
}

var transparencyKeywords = []string{
	"sustainability report",
	"supplier list",
	"disclosure",
	"CSR report",
	"environmental report",
}

var takeBackKeywords = []string{"take-back", "recycling program", "trade-in"}

var repairabilityBase = map[model.Category]int{
	model.CategorySmartphone: 10,
	model.CategoryLaptop:     15,
	model.CategoryTablet:     10,
	model.CategorySmartwatch: 8,
	model.CategoryHeadphones: 20,
	model.CategoryCamera:     18,
	model.CategoryConsole:    16,
	model.CategoryGeneric:    15,
}

const (
	defaultRepairabilityBase  = 15
	defaultSourcingConfidence = 0.5
)

// Calculate derives the three eco-score parts from a product and its claims.
// It is deterministic and each part is clamped to its range.
func Calculate(product *model.DetectedProduct, claims []model.Claim) model.SubScores {
	return model.SubScores{
		Sourcing:      sourcingScore(product, claims),
		Transparency:  transparencyScore(claims),
		Repairability: repairabilityScore(product, claims),
	}
}

func sourcingScore(product *model.DetectedProduct, claims []model.Claim) int {
	score := 20

	if hasHighRiskMaterial(product.MaterialsUsed) {
		score -= 5
	}

	var (
		responsible bool
		confSum     float64
		count       int
	)
	for _, c := range claims {
		switch c.Type {
		case model.ClaimTypeSourcing, model.ClaimTypePolicy:
			count++
			confSum += c.Confidence
			if !responsible && containsAny(strings.ToLower(c.Text), responsibleSourcingKeywords) {
				responsible = true
			}
		case model.ClaimTypeControversy:
			score -= 5
		}
	}
	if responsible {
		score += 10
	}

	avg := defaultSourcingConfidence
	if count > 0 {
		avg = confSum / float64(count)
	}
	score += int(math.Floor(avg * 10))

	return clamp(score, model.MaxSourcingScore)
}

func transparencyScore(claims []model.Claim) int {
	score := 10

	texts := make([]string, 0, len(claims))
	urls := make(map[string]struct{})
	for _, c := range claims {
		texts = append(texts, strings.ToLower(c.Text))
		if c.CitationURL != "" {
			urls[c.CitationURL] = struct{}{}
		}
	}

	all := strings.Join(texts, " ")
	for _, kw := range transparencyKeywords {
		if strings.Contains(all, strings.ToLower(kw)) {
			score += 5
		}
	}
	score += min(2*len(urls), 10)

	return clamp(score, model.MaxTransparencyScore)
}

func repairabilityScore(product *model.DetectedProduct, claims []model.Claim) int {
	score, ok := repairabilityBase[product.Category]
	if !ok {
		score = defaultRepairabilityBase
	}

	var recycling, takeBack, recycled bool
	for _, c := range claims {
		text := strings.ToLower(c.Text)
		recycling = recycling || c.Type == model.ClaimTypeRecycling
		takeBack = takeBack || containsAny(text, takeBackKeywords)
		recycled = recycled || strings.Contains(text, "recycled")
	}
	for _, hit := range []bool{recycling, takeBack, recycled} {
		if hit {
			score += 5
		}
	}

	return clamp(score, model.MaxRepairabilityScore)
}

func hasHighRiskMaterial(materials []string) bool {
	for _, m := range materials {
		if containsAny(strings.ToLower(m), highRiskMaterials) {
			return true
		}
	}
	return false
}

// containsAny reports whether s contains any keyword as-is. Callers lowercase s.
func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func clamp(v, hi int) int {
	return max(0, min(hi, v))
}
