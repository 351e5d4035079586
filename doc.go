// Package invoicedoc fills a Word invoice template from form fields and
// renders an HTML preview of the result.
//
// # Quick Start
//
// Create a generator, submit the raw fields, and use the result:
//
//	gen := invoicedoc.NewGenerator()
//
//	res, err := gen.Generate(ctx, invoicedoc.Fields{
//	    "personName": "Jane Doe",
//	    "eventID":    "42",
//	    "salary":     1000,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(res.Filename, res.Document, 0o644)
//
// The result carries the complete .docx (res.Document), the canonical
// record (res.Record) and the HTML preview (res.Preview).
//
// # Pipeline
//
// Generation runs these stages in order, without retries:
//
//  1. Normalize: raw fields become a Record. Amounts default to 0, dates
//     are re-emitted as MM-DD-YYYY, the invoice ID and total are derived.
//  2. Merge: every {placeholder} in the template is filled. A placeholder
//     without a value fails the generation; a blank is never written.
//  3. Persist: the document is saved under a well-known name. Failure is
//     a warning (Result.PersistErr), not an error.
//  4. Preview: the document is converted to sanitized HTML. Failure is a
//     warning (Result.PreviewErr) unless WithStrictPreview is set.
//
// Failures are classified with KindOf:
//
//	switch invoicedoc.KindOf(err) {
//	case invoicedoc.KindValidation:       // bad input; see FieldErrors(err)
//	case invoicedoc.KindTemplateMismatch: // see errors.As(err, &*MismatchError)
//	}
//
// # Configuration
//
//	gen := invoicedoc.NewGenerator(
//	    invoicedoc.WithTemplateSource(invoicedoc.FileTemplateSource{Path: "invoice.docx"}),
//	    invoicedoc.WithStore(fileStore),
//	    invoicedoc.WithLogger(slog.Default()),
//	)
//
// # Concurrency
//
// A Generator is safe for concurrent use. Every generation overwrites the
// same latest document: when two run at once the last write wins, and
// Latest may return either. WithKeyByInvoice also keeps a copy per invoice.
//
// # PDF Export
//
// PDFExporter prints preview markup with headless Chrome (go-rod).
// ExporterPool bounds how many browsers run at once.
package invoicedoc
