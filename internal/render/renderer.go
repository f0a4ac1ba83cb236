// Package render turns a report template plus an ordered list of variable
// bundles into encoded output text.
package render

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
)

// Renderer is the template rendering collaborator of the generation
// pipeline. Bundles are applied in order: when two bundles define the same
// variable, the later one wins.
type Renderer interface {
	Render(templatePath string, bundles []map[string]any, enc Encoding) (string, error)
}

// TemplateSuffix is stripped from template filenames when deriving the
// destination name.
const TemplateSuffix = ".tmpl"

// IsMarkdown reports whether the template produces markdown that should be
// converted to HTML after rendering.
func IsMarkdown(templatePath string) bool {
	name := strings.TrimSuffix(filepath.Base(templatePath), TemplateSuffix)
	return strings.HasSuffix(name, ".md")
}

// TemplateRenderer renders report templates with text/template.
type TemplateRenderer struct {
	funcs    template.FuncMap
	markdown goldmark.Markdown
}

// NewTemplateRenderer creates a renderer with the standard helper functions.
func NewTemplateRenderer() *TemplateRenderer {
	return &TemplateRenderer{
		funcs: template.FuncMap{
			"printfmt": fmt.Sprintf,
		},
		markdown: goldmark.New(),
	}
}

// Render parses the template file, executes it against the merged bundles,
// optionally converts markdown output to HTML, and coerces the result to
// the encoding mode.
func (r *TemplateRenderer) Render(templatePath string, bundles []map[string]any, enc Encoding) (string, error) {
	data := mergeBundles(bundles)

	tpl, err := template.New(filepath.Base(templatePath)).
		Funcs(r.funcs).
		Option("missingkey=error").
		ParseFiles(templatePath)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}

	out := buf.String()
	if IsMarkdown(templatePath) {
		var html bytes.Buffer
		if err := r.markdown.Convert(buf.Bytes(), &html); err != nil {
			return "", fmt.Errorf("convert markdown: %w", err)
		}
		out = html.String()
	}

	return enc.Apply(out), nil
}

// mergeBundles flattens the ordered bundle list into one data map. Later
// bundles shadow earlier ones, which fixes variable precedence for the
// whole composition.
func mergeBundles(bundles []map[string]any) map[string]any {
	data := make(map[string]any)
	for _, b := range bundles {
		for k, v := range b {
			data[k] = v
		}
	}
	return data
}
