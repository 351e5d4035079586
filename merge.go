package invoicedoc

import (
	"errors"
	"fmt"

	"github.com/alnah/go-invoicedoc/internal/docx"
)

// Merge fills template with the record's placeholders and returns a new
// .docx. The template bytes are never modified.
//
// A placeholder with no value fails with an error matching both
// ErrTemplateMismatch and *MismatchError; a malformed template or any other
// merge failure matches ErrRender. No partial document is ever returned.
func Merge(template []byte, record *Record) ([]byte, error) {
	if record == nil {
		return nil, fmt.Errorf("%w: nil record", ErrRender)
	}
	tmpl, err := docx.ParseTemplate(template)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return mergeParsed(tmpl, record)
}

func mergeParsed(tmpl *docx.Template, record *Record) ([]byte, error) {
	doc, err := tmpl.Merge(record.Placeholders())
	if err != nil {
		var mismatch *docx.MismatchError
		if errors.As(err, &mismatch) {
			return nil, fmt.Errorf("%w: %w", ErrTemplateMismatch, mismatch)
		}
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return doc, nil
}

// TemplatePlaceholders parses template and returns its sorted placeholder
// names, so callers can check a template before deploying it.
func TemplatePlaceholders(template []byte) ([]string, error) {
	tmpl, err := docx.ParseTemplate(template)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return tmpl.Placeholders(), nil
}
