package invoicedoc

import (
	"errors"
	"fmt"

	"github.com/alnah/go-invoicedoc/internal/docx"
)

// Sentinel errors for library operations.
var (
	// Pipeline failure kinds.
	ErrValidation       = errors.New("invalid invoice fields")
	ErrTemplateMismatch = errors.New("template mismatch")
	ErrRender           = errors.New("document render failed")
	ErrConversion       = errors.New("preview conversion failed")
	ErrPersistence      = errors.New("persisting document failed")
	ErrInternal         = errors.New("internal error")

	// Artifact and template lookup errors.
	ErrArtifactNotFound = errors.New("no generated invoice available")
	ErrTemplateNotFound = errors.New("template not found")

	// PDF export errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)

// MismatchError lists the template placeholders a record cannot fill.
// Returned errors match both ErrTemplateMismatch and *MismatchError.
type MismatchError = docx.MismatchError

// FieldError describes one rejected input field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrValidation.
func (e *FieldError) Unwrap() error {
	return ErrValidation
}

func fieldErr(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// FieldErrors returns every *FieldError carried by err, in order.
func FieldErrors(err error) []*FieldError {
	var out []*FieldError
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if fe, ok := e.(*FieldError); ok {
			out = append(out, fe)
			return
		}
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return out
}

// Kind classifies a pipeline error for callers that map failures to
// transport status codes or exit codes.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindTemplateMismatch Kind = "template_mismatch"
	KindRender           Kind = "render"
	KindConversion       Kind = "conversion"
	KindPersistence      Kind = "persistence"
	KindNotFound         Kind = "not_found"
	KindInternal         Kind = "internal"
)

// KindOf returns the kind of err. Errors from outside the pipeline, and
// nil, are KindInternal.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrTemplateMismatch):
		return KindTemplateMismatch
	case errors.Is(err, ErrRender):
		return KindRender
	case errors.Is(err, ErrConversion):
		return KindConversion
	case errors.Is(err, ErrPersistence):
		return KindPersistence
	case errors.Is(err, ErrArtifactNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}
