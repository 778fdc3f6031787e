package llm

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/omnix/pkg/adapter"
	"github.com/m-mizutani/omnix/pkg/model"
	"github.com/m-mizutani/omnix/pkg/utils/logging"
	"google.golang.org/genai"
)

// DefaultOverallConfidence is used when the model omits overallConfidence
const DefaultOverallConfidence = 0.5

type claimOutput struct {
	Type        string   `json:"type" jsonschema:"one of sourcing, policy, controversy or recycling"`
	Text        string   `json:"text" jsonschema:"concise paraphrase of the claim"`
	Materials   []string `json:"materials" jsonschema:"materials mentioned by the claim"`
	Places      []string `json:"places" jsonschema:"geographic locations mentioned by the claim"`
	CitationURL string   `json:"citationUrl" jsonschema:"URL of the source the claim came from"`
	Confidence  float64  `json:"confidence" jsonschema:"confidence between 0.0 and 1.0"`
}

type synthesisOutput struct {
	Claims            []claimOutput `json:"claims"`
	OverallConfidence *float64      `json:"overallConfidence" jsonschema:"quality of the evidence as a whole, between 0.0 and 1.0"`
}

// Synthesizer extracts structured claims from fetched documents with Gemini
type Synthesizer struct {
	gemini adapter.Gemini
	schema *genai.Schema
}

func NewSynthesizer(gemini adapter.Gemini) (*Synthesizer, error) {
	schema, err := schemaFor[synthesisOutput]()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build synthesis schema")
	}

	if claims := schema.Properties["claims"]; claims != nil && claims.Items != nil {
		if typ := claims.Items.Properties["type"]; typ != nil {
			typ.Enum = []string{
				string(model.ClaimTypeSourcing),
				string(model.ClaimTypePolicy),
				string(model.ClaimTypeControversy),
				string(model.ClaimTypeRecycling),
			}
		}
	}

	return &Synthesizer{
		gemini: gemini,
		schema: schema,
	}, nil
}

type synthesizePromptData struct {
	Product   *model.DetectedProduct
	Documents []*model.Document
}

// Synthesize returns an error if the model call fails or its output cannot be parsed.
// Claims with an unknown type are dropped and confidences are clamped to [0,1].
func (s *Synthesizer) Synthesize(ctx context.Context, product *model.DetectedProduct, docs []*model.Document) (*model.Synthesis, error) {
	prompt, err := renderPrompt("synthesize.md", synthesizePromptData{
		Product:   product,
		Documents: docs,
	})
	if err != nil {
		return nil, err
	}

	thinkingBudget := int32(0)
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.2),
		ResponseMIMEType: "application/json",
		ResponseSchema:   s.schema,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  &thinkingBudget,
		},
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := s.gemini.GenerateContent(ctx, contents, config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to synthesize claims")
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	var out synthesisOutput
	if err := decodeJSON(text, &out); err != nil {
		return nil, err
	}

	logger := logging.From(ctx)
	result := &model.Synthesis{
		Claims:            make([]model.Claim, 0, len(out.Claims)),
		OverallConfidence: DefaultOverallConfidence,
	}
	if out.OverallConfidence != nil {
		result.OverallConfidence = clamp01(*out.OverallConfidence)
	}

	for _, c := range out.Claims {
		claimType := model.ClaimType(c.Type)
		if err := claimType.Validate(); err != nil {
			logger.Warn("dropping claim with unknown type", "type", c.Type, "text", c.Text)
			continue
		}

		claim := model.Claim{
			Type:        claimType,
			Text:        c.Text,
			Materials:   c.Materials,
			Places:      c.Places,
			CitationURL: c.CitationURL,
			Confidence:  clamp01(c.Confidence),
		}
		if claim.Materials == nil {
			claim.Materials = []string{}
		}
		if claim.Places == nil {
			claim.Places = []string{}
		}
		result.Claims = append(result.Claims, claim)
	}

	return result, nil
}
