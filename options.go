package invoicedoc

import (
	"log/slog"
	"time"
)

// Option configures a Generator.
type Option func(*Generator)

// WithTemplateSource sets where the .docx template comes from.
// The default is the embedded invoice template.
func WithTemplateSource(src TemplateSource) Option {
	if src == nil {
		panic("invoicedoc: WithTemplateSource source must not be nil")
	}
	return func(g *Generator) {
		g.source = src
	}
}

// WithStore enables persistence of every generated document.
// Without a store, generation skips the persisting stage.
func WithStore(s Store) Option {
	return func(g *Generator) {
		g.store = s
	}
}

// WithClock sets the time source used for the invoice year and default date.
func WithClock(now func() time.Time) Option {
	if now == nil {
		panic("invoicedoc: WithClock function must not be nil")
	}
	return func(g *Generator) {
		g.now = now
	}
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithStrictPreview makes a preview failure fail the whole generation.
// By default the document is still returned and the failure is reported
// in Result.PreviewErr.
func WithStrictPreview() Option {
	return func(g *Generator) {
		g.strictPreview = true
	}
}

// WithPreviewRenderer replaces the HTML preview renderer.
func WithPreviewRenderer(r PreviewRenderer) Option {
	if r == nil {
		panic("invoicedoc: WithPreviewRenderer renderer must not be nil")
	}
	return func(g *Generator) {
		g.preview = r
	}
}

// WithLatestName overrides the well-known name of the latest document.
func WithLatestName(name string) Option {
	if name == "" {
		panic("invoicedoc: WithLatestName name must not be empty")
	}
	return func(g *Generator) {
		g.latestName = name
	}
}

// WithKeyByInvoice additionally stores each document under
// "invoice-{invoiceID}.docx", so concurrent generations for different
// events cannot overwrite each other's copy.
func WithKeyByInvoice() Option {
	return func(g *Generator) {
		g.keyByInvoice = true
	}
}
