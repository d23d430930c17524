package template

import (
	"strings"
	"text/template"
)

// Engine renders a RENDER instruction's source template against a resolved
// Context. Pluggable so a future template syntax can be swapped in without
// touching the loader or the builder (spec.md §6.4's engine capability
// contract).
type Engine interface {
	Render(name, body string, ctx Context) (string, error)
}

// TextEngine renders templates with the stdlib text/template syntax
// ("{{ .key }}"). This is the default Engine implementation.
type TextEngine struct{}

func (TextEngine) Render(name, body string, ctx Context) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(body)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, map[string]any(ctx)); err != nil {
		return "", err
	}
	return out.String(), nil
}
