package llm

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/omnix/pkg/adapter"
	"github.com/m-mizutani/omnix/pkg/model"
	"google.golang.org/genai"
)

// TipsAdvisor generates sustainability tips. It targets small open models
// which do not support response schemas, so the array is parsed from free text.
type TipsAdvisor struct {
	gemini adapter.Gemini
}

func NewTipsAdvisor(gemini adapter.Gemini) *TipsAdvisor {
	return &TipsAdvisor{gemini: gemini}
}

type tipsPromptData struct {
	Product *model.DetectedProduct
}

func (x *TipsAdvisor) Tips(ctx context.Context, product *model.DetectedProduct) ([]string, error) {
	prompt, err := renderPrompt("tips.md", tipsPromptData{Product: product})
	if err != nil {
		return nil, err
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.7),
	}
	resp, err := x.gemini.GenerateContent(ctx, []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate tips")
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	var tips []string
	if err := decodeJSON(text, &tips); err != nil {
		return nil, err
	}

	result := make([]string, 0, len(tips))
	for _, tip := range tips {
		if tip = strings.TrimSpace(tip); tip != "" {
			result = append(result, tip)
		}
	}
	if len(result) == 0 {
		return nil, goerr.Wrap(ErrInvalidResponse, "no tips in response")
	}

	return result, nil
}
