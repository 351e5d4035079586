package docx

import (
	"errors"
	"strings"
)

// Sentinel errors for template operations.
var (
	// ErrMalformedTemplate indicates the archive or its placeholder syntax is invalid.
	ErrMalformedTemplate = errors.New("malformed template")

	// ErrUnresolvedPlaceholder indicates the template needs a value that was not supplied.
	ErrUnresolvedPlaceholder = errors.New("unresolved placeholder")

	// ErrMerge indicates the filled archive could not be written.
	ErrMerge = errors.New("merge failed")

	// ErrPartNotFound indicates the archive has no entry with the requested name.
	ErrPartNotFound = errors.New("part not found")
)

// MismatchError lists every placeholder the template requires but the
// supplied values lack. Missing is sorted.
type MismatchError struct {
	Missing []string
}

func (e *MismatchError) Error() string {
	return "unresolved placeholders: " + strings.Join(e.Missing, ", ")
}

func (e *MismatchError) Unwrap() error {
	return ErrUnresolvedPlaceholder
}
