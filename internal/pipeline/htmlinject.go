package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

// ErrPageRender indicates the standalone page template failed to execute.
var ErrPageRender = errors.New("page rendering failed")

// pageTemplate frames a sanitized preview fragment for printing.
const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{if .CSS}}<style>{{.CSS}}</style>
{{end}}</head>
<body>
{{.Body}}
</body>
</html>`

// PageData holds the parts of a standalone page.
type PageData struct {
	Title string
	CSS   string
	Body  string // already-sanitized HTML fragment
}

// PageRenderer defines the contract for turning a fragment into a full page.
type PageRenderer interface {
	RenderPage(ctx context.Context, data PageData) (string, error)
}

// PageInjection renders preview fragments into complete HTML5 documents.
type PageInjection struct {
	tmpl *template.Template
}

// NewPageInjection parses the built-in page template.
func NewPageInjection() *PageInjection {
	return &PageInjection{tmpl: template.Must(template.New("page").Parse(pageTemplate))}
}

// RenderPage wraps data.Body in an HTML document with data.CSS inlined.
// The title is escaped; the body is trusted and must come from Sanitize.
func (p *PageInjection) RenderPage(ctx context.Context, data PageData) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	view := struct {
		Title string
		CSS   template.CSS
		Body  template.HTML
	}{
		Title: data.Title,
		CSS:   template.CSS(sanitizeCSS(data.CSS)), // #nosec G203 -- operator-supplied stylesheet
		Body:  template.HTML(data.Body),            // #nosec G203 -- sanitized by caller
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageRender, err)
	}
	return buf.String(), nil
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// Compile-time interface check.
var _ PageRenderer = (*PageInjection)(nil)
