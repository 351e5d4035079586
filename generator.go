package invoicedoc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alnah/go-invoicedoc/internal/assets"
	"github.com/alnah/go-invoicedoc/internal/docx"
	"github.com/alnah/go-invoicedoc/internal/fileutil"
)

// Result is the outcome of one generation.
type Result struct {
	Record   *Record
	Document []byte // complete .docx; never partial
	Filename string // suggested download name

	// Preview is the HTML preview, empty when PreviewErr is set.
	Preview    string
	PreviewErr error

	// StoredAs is the store location of the latest copy, empty when
	// persistence was skipped or failed.
	StoredAs   string
	PersistErr error
}

// Warnings lists the non-fatal failures of the generation.
func (r *Result) Warnings() []error {
	var out []error
	if r.PersistErr != nil {
		out = append(out, r.PersistErr)
	}
	if r.PreviewErr != nil {
		out = append(out, r.PreviewErr)
	}
	return out
}

// Generator runs the invoice pipeline: normalize, merge, persist, preview.
// It holds no per-request state and is safe for concurrent use.
type Generator struct {
	source        TemplateSource
	store         Store
	preview       PreviewRenderer
	now           func() time.Time
	logger        *slog.Logger
	strictPreview bool
	latestName    string
	keyByInvoice  bool
}

// NewGenerator creates a Generator. Without options it fills the embedded
// invoice template, persists nothing, and renders HTML previews.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		source:     &AssetTemplateSource{Name: assets.DefaultTemplateName, Loader: assets.NewEmbeddedLoader()},
		preview:    defaultPreview,
		now:        time.Now,
		logger:     slog.New(slog.DiscardHandler),
		latestName: DefaultLatestName,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate runs every stage for one submission.
//
// Validation, template and render failures are terminal and return no
// document. Persistence failures never are: they are logged and reported
// in Result.PersistErr. Preview failures are reported in Result.PreviewErr
// unless WithStrictPreview is set. Recovers from internal panics.
func (g *Generator) Generate(ctx context.Context, raw Fields) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	start := g.now()
	log := g.logger.With(slog.String("stage", "normalize"))

	record, err := Normalize(raw, start)
	if err != nil {
		log.DebugContext(ctx, "rejected fields", slog.Any("error", err))
		return nil, err
	}

	log = g.logger.With(slog.String("invoice_id", record.InvoiceID()))

	doc, err := g.merge(ctx, record)
	if err != nil {
		log.InfoContext(ctx, "merge failed", slog.String("kind", string(KindOf(err))), slog.Any("error", err))
		return nil, err
	}

	res = &Result{
		Record:   record,
		Document: doc,
		Filename: DownloadFilename(record),
	}

	g.persist(ctx, log, res)

	preview, err := g.preview.RenderPreview(ctx, doc)
	if err != nil {
		if !errors.Is(err, ErrConversion) {
			err = fmt.Errorf("%w: %w", ErrConversion, err)
		}
		if g.strictPreview {
			log.ErrorContext(ctx, "preview failed", slog.Any("error", err))
			return nil, err
		}
		log.WarnContext(ctx, "preview failed, returning document without preview", slog.Any("error", err))
		res.PreviewErr = err
	} else {
		res.Preview = preview
	}

	log.InfoContext(ctx, "invoice generated",
		slog.String("total", record.Total().String()),
		slog.Int("bytes", len(doc)),
		slog.Duration("duration", g.now().Sub(start)),
	)
	return res, nil
}

func (g *Generator) merge(ctx context.Context, record *Record) ([]byte, error) {
	template, err := g.source.Load(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: loading template: %w", ErrRender, err)
	}

	tmpl, err := docx.ParseTemplate(template)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return mergeParsed(tmpl, record)
}

// persist saves the document under the latest name and, when enabled, a
// per-invoice name. Failures are recorded on res, never returned.
func (g *Generator) persist(ctx context.Context, log *slog.Logger, res *Result) {
	if g.store == nil {
		return
	}

	var errs []error
	if err := g.store.Save(ctx, g.latestName, res.Document); err != nil {
		errs = append(errs, err)
	} else {
		res.StoredAs = g.store.Location(g.latestName)
	}

	if g.keyByInvoice && res.Record.InvoiceID() != "" {
		name := InvoiceFilename(res.Record)
		if err := g.store.Save(ctx, name, res.Document); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		res.PersistErr = fmt.Errorf("%w: %w", ErrPersistence, errors.Join(errs...))
		log.WarnContext(ctx, "document not persisted", slog.Any("error", res.PersistErr))
		return
	}
	log.DebugContext(ctx, "document persisted", slog.String("location", res.StoredAs))
}

// Latest returns the most recently persisted document.
// Returns an error matching ErrArtifactNotFound when there is none.
func (g *Generator) Latest(ctx context.Context) ([]byte, error) {
	if g.store == nil {
		return nil, fmt.Errorf("%w: persistence disabled", ErrArtifactNotFound)
	}
	data, err := g.store.Open(ctx, g.latestName)
	if err != nil {
		if errors.Is(err, ErrArtifactNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return data, nil
}

// LatestName returns the well-known name documents are persisted under.
func (g *Generator) LatestName() string {
	return g.latestName
}

// DownloadFilename suggests a file name derived from the event identifier.
func DownloadFilename(r *Record) string {
	if id := r.EventID(); id != "" {
		return fileutil.SanitizeFilename("invoice-"+id+".docx", "invoice.docx")
	}
	return "invoice.docx"
}

// InvoiceFilename is the per-invoice storage name used by WithKeyByInvoice.
func InvoiceFilename(r *Record) string {
	return fileutil.SanitizeFilename("invoice-"+r.InvoiceID()+".docx", "invoice.docx")
}
