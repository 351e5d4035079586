// Package httpapi exposes the invoice pipeline over HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	invoicedoc "github.com/alnah/go-invoicedoc"
)

// DefaultMaxBodyBytes bounds request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

// Service is the pipeline the handlers drive. *invoicedoc.Generator
// satisfies it.
type Service interface {
	Generate(ctx context.Context, raw invoicedoc.Fields) (*invoicedoc.Result, error)
	Latest(ctx context.Context) ([]byte, error)
}

// PDFExporter prints preview markup to PDF. *invoicedoc.ExporterPool
// satisfies it.
type PDFExporter interface {
	Export(ctx context.Context, title, previewHTML string) ([]byte, error)
}

// Handler is the HTTP adapter over a Service.
type Handler struct {
	service      Service
	preview      invoicedoc.PreviewRenderer
	pdf          PDFExporter
	logger       *slog.Logger
	maxBodyBytes int64
	ready        func(context.Context) error
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger used for access and error logs.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithPDFExporter enables GET /api/invoices/latest/pdf.
func WithPDFExporter(e PDFExporter) Option {
	return func(h *Handler) {
		h.pdf = e
	}
}

// WithPreviewRenderer sets the renderer used before PDF export.
func WithPreviewRenderer(r invoicedoc.PreviewRenderer) Option {
	return func(h *Handler) {
		if r != nil {
			h.preview = r
		}
	}
}

// WithMaxBodyBytes bounds request bodies. Non-positive values keep the default.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

// WithReadiness sets the check behind /readyz.
func WithReadiness(check func(context.Context) error) Option {
	return func(h *Handler) {
		h.ready = check
	}
}

// NewHandler constructs an HTTP handler bound to service.
func NewHandler(service Service, opts ...Option) *Handler {
	h := &Handler{
		service:      service,
		preview:      invoicedoc.NewHTMLPreview(),
		logger:       slog.New(slog.DiscardHandler),
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewRouter registers the routes and middleware stack.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(h.recoverMiddleware)
	r.Use(h.loggingMiddleware)
	r.Use(bodyLimitMiddleware(h.maxBodyBytes))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, codeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed", nil)
	})

	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)

	r.Route("/api/invoices", func(r chi.Router) {
		r.Post("/", h.generate)
		r.Get("/latest", h.latest)
		r.Get("/latest/pdf", h.latestPDF)
	})

	return r
}
