package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/omnix/pkg/model"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out, io.Discard).Run(context.Background(), append([]string{"omnix"}, args...))
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOriginsCommand(t *testing.T) {
	t.Run("list materials", func(t *testing.T) {
		out, err := runApp(t, "origins")
		gt.NoError(t, err)
		gt.S(t, out).Contains("Lithium\n")
		gt.S(t, out).Contains("Manganese\n")
	})

	t.Run("lookup", func(t *testing.T) {
		out, err := runApp(t, "origins", "cobalt")
		gt.NoError(t, err)
		gt.S(t, out).Contains("Democratic Republic of Congo")
		gt.S(t, out).Contains("Zambia")
	})

	t.Run("unknown material", func(t *testing.T) {
		out, err := runApp(t, "origins", "unobtainium")
		gt.NoError(t, err)
		gt.S(t, out).Contains(`No known origins for "unobtainium"`)
	})

	t.Run("override file", func(t *testing.T) {
		path := writeFile(t, "origins.yaml", `
- material: Cobalt
  origins:
    - {place: "Testland", lat: 1, lng: 2, description: "test"}
`)
		out, err := runApp(t, "origins", "--origins-file", path, "Cobalt")
		gt.NoError(t, err)
		gt.S(t, out).Contains("Testland")
		gt.S(t, out).NotContains("Zambia")
	})
}

func TestScoreCommandWithoutGemini(t *testing.T) {
	t.Setenv("GEMINI_PROJECT_ID", "")
	path := writeFile(t, "request.json", `{
		"detectedProduct": {"brand":"Acme","model":"X1","category":"headphones","materialsUsed":["Cobalt","Aluminum"],"confidence":0.9},
		"evidencePack": {
			"sources": [],
			"claims": [{"type":"sourcing","text":"certified cobalt","materials":["Cobalt"],"places":[],"citationUrl":"https://acme.example","confidence":0.8}],
			"overallConfidence": 0.8
		},
		"originPins": []
	}`)

	out, err := runApp(t, "score", "-i", path)
	gt.NoError(t, err)

	var score model.EcoScore
	gt.NoError(t, json.Unmarshal([]byte(out), &score))
	gt.Equal(t, score.Total, 65)
	gt.A(t, score.Tips).Length(3)
}

func TestScoreCommandRejectsInvalidInput(t *testing.T) {
	t.Setenv("GEMINI_PROJECT_ID", "")

	_, err := runApp(t, "score")
	gt.Error(t, err)

	path := writeFile(t, "request.json", `{"detectedProduct": {"brand":"Acme","category":"toaster"}}`)
	_, err = runApp(t, "score", "-i", path)
	gt.Error(t, err)
}

func TestResearchCommandRequiresGemini(t *testing.T) {
	t.Setenv("GEMINI_PROJECT_ID", "")
	path := writeFile(t, "product.json", `{"brand":"Acme","model":"X1","category":"headphones","materialsUsed":[],"confidence":0.9}`)

	_, err := runApp(t, "research", "-i", path, "--cache", "memory")
	gt.Error(t, err)
	gt.S(t, err.Error()).Contains("gemini-project is required")
}

func TestUnknownCacheBackend(t *testing.T) {
	cfg := &config{cache: "sqlite"}
	_, _, err := cfg.newCache(context.Background())
	gt.Error(t, err)
}
