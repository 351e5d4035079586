package main

import (
	"errors"
	"os"

	invoicedoc "github.com/alnah/go-invoicedoc"
	"github.com/alnah/go-invoicedoc/internal/config"
)

// Exit codes for the invoicedoc CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess  = 0 // Command completed
	ExitGeneral  = 1 // General/unexpected error
	ExitUsage    = 2 // Invalid flags, config, or invoice fields
	ExitIO       = 3 // File not found, permission denied, storage failure
	ExitBrowser  = 4 // Browser/Chrome errors
	ExitTemplate = 5 // Template missing, malformed, or not fillable
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, invoicedoc.ErrBrowserConnect) ||
		errors.Is(err, invoicedoc.ErrPageCreate) ||
		errors.Is(err, invoicedoc.ErrPageLoad) ||
		errors.Is(err, invoicedoc.ErrPDFGeneration) {
		return ExitBrowser
	}

	// Template errors (exit 5)
	if errors.Is(err, invoicedoc.ErrTemplateMismatch) ||
		errors.Is(err, invoicedoc.ErrTemplateNotFound) ||
		errors.Is(err, invoicedoc.ErrRender) {
		return ExitTemplate
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, invoicedoc.ErrValidation) ||
		errors.Is(err, ErrUsage) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, errStoreSetup) ||
		errors.Is(err, invoicedoc.ErrPersistence) ||
		errors.Is(err, invoicedoc.ErrArtifactNotFound) {
		return ExitIO
	}

	return ExitGeneral
}
