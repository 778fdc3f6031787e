package llm

import (
	"bytes"
	"embed"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
)

//go:embed prompt/*.md
var promptFS embed.FS

var promptFuncs = template.FuncMap{
	"add":  func(a, b int) int { return a + b },
	"join": strings.Join,
}

func renderPrompt(name string, data any) (string, error) {
	tmpl, err := template.New(name).Funcs(promptFuncs).ParseFS(promptFS, "prompt/"+name)
	if err != nil {
		return "", goerr.Wrap(err, "failed to parse prompt template", goerr.V("name", name))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to execute prompt template", goerr.V("name", name))
	}
	return buf.String(), nil
}
