package ecoscore

import (
	"context"
	"fmt"

	"github.com/m-mizutani/omnix/pkg/interfaces"
	"github.com/m-mizutani/omnix/pkg/model"
	"github.com/m-mizutani/omnix/pkg/utils/logging"
)

// UseCase computes eco-scores and their explanations
type UseCase struct {
	explainer interfaces.ScoreExplainer
	tips      interfaces.TipsGenerator
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithExplainer sets the generator for summary and rationale text
func WithExplainer(explainer interfaces.ScoreExplainer) Option {
	return func(uc *UseCase) {
		uc.explainer = explainer
	}
}

// WithTips sets the generator for sustainability tips
func WithTips(tips interfaces.TipsGenerator) Option {
	return func(uc *UseCase) {
		uc.tips = tips
	}
}

// New creates a new ecoscore UseCase. Without generators, fixed text is used.
func New(opts ...Option) *UseCase {
	uc := &UseCase{}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Score validates the request, calculates sub-scores and attaches explanatory
// text. Text generation failures fall back to fixed text.
func (u *UseCase) Score(ctx context.Context, req *model.ScoreRequest) (*model.EcoScore, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	product := &req.DetectedProduct
	claims := req.EvidencePack.Claims
	scores := Calculate(product, claims)

	logger := logging.From(ctx)
	logger.Debug("eco-score calculated",
		"product_key", model.NewProductKey(product).String(),
		"sourcing", scores.Sourcing,
		"transparency", scores.Transparency,
		"repairability", scores.Repairability,
	)

	explanation := fallbackExplanation(product)
	if u.explainer != nil {
		if resp, err := u.explainer.Explain(ctx, product, scores, claims); err != nil {
			logger.Warn("failed to explain eco-score, using fallback", "error", err)
		} else {
			explanation = resp
		}
	}

	tips := fallbackTips(product)
	if u.tips != nil {
		if resp, err := u.tips.Tips(ctx, product); err != nil || len(resp) == 0 {
			logger.Warn("failed to generate tips, using fallback", "error", err)
		} else {
			tips = resp
		}
	}

	return &model.EcoScore{
		Total:            scores.Total(),
		Sourcing:         scores.Sourcing,
		Transparency:     scores.Transparency,
		Repairability:    scores.Repairability,
		Summary:          explanation.Summary,
		RationaleBullets: explanation.RationaleBullets,
		Tips:             tips,
	}, nil
}

func fallbackExplanation(product *model.DetectedProduct) *model.Explanation {
	return &model.Explanation{
		Summary:          fmt.Sprintf("Score for this %s calculated based on available evidence.", product.Category),
		RationaleBullets: []string{"Evidence analysis complete"},
	}
}

func fallbackTips(product *model.DetectedProduct) []string {
	return []string{
		fmt.Sprintf("Keep your %s for at least 3-4 years to maximize its environmental value.", product.Category),
		"Enable power-saving features and avoid frequent full charges to extend battery life.",
		"When disposing, use manufacturer take-back programs or certified e-waste recyclers.",
	}
}
