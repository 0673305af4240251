package template

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// RenderGoTemplate renders a full Go template with Sprig functions against ctx.
//
// This is an escape hatch for richer expressions than the ${...} resolver
// supports (conditionals, string manipulation, arithmetic) via Sprig's
// function map, e.g. {{ eq .input.env "prod" }}-style logic. No built-in
// node calls it, and the ${...} Resolver (see resolver.go) never invokes
// it on its own.
func RenderGoTemplate(templateStr string, ctx map[string]interface{}) (interface{}, error) {
	tmpl, err := template.New("pflow").Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid go template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return nil, fmt.Errorf("go template execution failed: %w", err)
	}

	result := buf.String()
	switch result {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return result, nil
}
