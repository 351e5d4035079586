package invoicedoc

import (
	"context"
	"fmt"

	"github.com/alnah/go-invoicedoc/internal/assets"
	"github.com/alnah/go-invoicedoc/internal/docx"
	"github.com/alnah/go-invoicedoc/internal/pipeline"
)

// PreviewClass is the class of the element wrapping preview markup.
const PreviewClass = "invoice-preview"

// PreviewRenderer converts a generated document to HTML preview markup.
type PreviewRenderer interface {
	RenderPreview(ctx context.Context, doc []byte) (string, error)
}

// HTMLPreview renders previews through Markdown: document blocks are
// rendered as escaped Markdown, converted with goldmark, and sanitized.
type HTMLPreview struct {
	htmlConverter pipeline.HTMLConverter
}

// NewHTMLPreview creates the default preview renderer.
func NewHTMLPreview() *HTMLPreview {
	return &HTMLPreview{htmlConverter: pipeline.NewGoldmarkConverter()}
}

// RenderPreview returns an HTML fragment wrapped in a div with PreviewClass.
// The result is deterministic for identical input. Errors match ErrConversion.
func (p *HTMLPreview) RenderPreview(ctx context.Context, doc []byte) (string, error) {
	main, err := docx.ReadPart(doc, docx.MainPart)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConversion, err)
	}

	blocks, err := pipeline.ExtractBlocks(main)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConversion, err)
	}

	htmlContent, err := p.htmlConverter.ToHTML(ctx, pipeline.ToMarkdown(blocks))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrConversion, err)
	}

	return `<div class="` + PreviewClass + `">` + pipeline.Sanitize(htmlContent) + `</div>`, nil
}

// RenderPreview converts doc with the default renderer.
func RenderPreview(ctx context.Context, doc []byte) (string, error) {
	return defaultPreview.RenderPreview(ctx, doc)
}

var defaultPreview = NewHTMLPreview()

// PreviewPage wraps preview markup in a standalone HTML page styled with
// the embedded invoice stylesheet.
func PreviewPage(ctx context.Context, title, previewHTML string) (string, error) {
	css, err := assets.LoadStyle(assets.DefaultStyleName)
	if err != nil {
		return "", fmt.Errorf("loading preview style: %w", err)
	}
	page, err := pipeline.NewPageInjection().RenderPage(ctx, pipeline.PageData{
		Title: title,
		CSS:   css,
		Body:  previewHTML,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrConversion, err)
	}
	return page, nil
}

// Compile-time interface check.
var _ PreviewRenderer = (*HTMLPreview)(nil)
