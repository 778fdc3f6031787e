package llm

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/omnix/pkg/adapter"
	"github.com/m-mizutani/omnix/pkg/model"
	"google.golang.org/genai"
)

// maxExplainClaims bounds the evidence shown to the model
const maxExplainClaims = 10

type explanationOutput struct {
	Summary          string   `json:"summary" jsonschema:"2-3 sentence summary of the overall score"`
	RationaleBullets []string `json:"rationaleBullets" jsonschema:"3-5 factors that influenced the score"`
}

// Explainer describes eco-scores in natural language with Gemini
type Explainer struct {
	gemini adapter.Gemini
	schema *genai.Schema
}

func NewExplainer(gemini adapter.Gemini) (*Explainer, error) {
	schema, err := schemaFor[explanationOutput]()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build explanation schema")
	}
	return &Explainer{gemini: gemini, schema: schema}, nil
}

type explainPromptData struct {
	Product *model.DetectedProduct
	Scores  model.SubScores
	Claims  []model.Claim
}

func (x *Explainer) Explain(ctx context.Context, product *model.DetectedProduct, scores model.SubScores, claims []model.Claim) (*model.Explanation, error) {
	if len(claims) > maxExplainClaims {
		claims = claims[:maxExplainClaims]
	}

	prompt, err := renderPrompt("explain.md", explainPromptData{
		Product: product,
		Scores:  scores,
		Claims:  claims,
	})
	if err != nil {
		return nil, err
	}

	thinkingBudget := int32(0)
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.4),
		ResponseMIMEType: "application/json",
		ResponseSchema:   x.schema,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  &thinkingBudget,
		},
	}

	resp, err := x.gemini.GenerateContent(ctx, []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate explanation")
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	var out explanationOutput
	if err := decodeJSON(text, &out); err != nil {
		return nil, err
	}
	if out.Summary == "" {
		return nil, goerr.Wrap(ErrInvalidResponse, "summary is empty")
	}

	bullets := out.RationaleBullets
	if bullets == nil {
		bullets = []string{}
	}

	return &model.Explanation{
		Summary:          out.Summary,
		RationaleBullets: bullets,
	}, nil
}
