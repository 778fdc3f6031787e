package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

var (
	ErrEmptyResponse   = goerr.New("empty response from model")
	ErrInvalidResponse = goerr.New("unparseable response from model")
)

var codeFence = regexp.MustCompile("```(?:json)?\\s*|\\s*```")

// responseText joins the non-thought text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		b.WriteString(part.Text)
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}

// decodeJSON parses model output into v, tolerating markdown code fences
func decodeJSON(text string, v any) error {
	cleaned := strings.TrimSpace(codeFence.ReplaceAllString(text, ""))
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return goerr.Wrap(ErrInvalidResponse, err.Error(), goerr.V("text", text))
	}
	return nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
