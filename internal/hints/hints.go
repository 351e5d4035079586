// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	_, err := os.Stat("/.dockerenv")
	return err == nil
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}
	hints = append(hints, "or disable PDF export with INVOICEDOC_PDF_ENABLED=false")

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the PDF timeout.
func ForTimeout() string {
	return format("raise pdf.timeout or INVOICEDOC_PDF_TIMEOUT")
}

// ForConfigNotFound returns a hint for a missing config file.
func ForConfigNotFound() string {
	return format("use --config /path/to/invoicedoc.yaml or unset INVOICEDOC_CONFIG to run with defaults")
}

// ForTemplateNotFound returns hints for a template that cannot be loaded.
func ForTemplateNotFound(name string) string {
	if name == "" {
		return format("check template.path points to a readable .docx file")
	}
	return format("looked for templates/" + name + ".docx in template.dir, then the embedded set")
}

// ForTemplateMismatch returns a hint naming the fields a submission lacks.
func ForTemplateMismatch(missing []string) string {
	if len(missing) == 0 {
		return ""
	}
	flags := make([]string, len(missing))
	for i, m := range missing {
		flags[i] = "-f " + m + "=..."
	}
	return format("supply " + strings.Join(flags, " "))
}

// ForStorage returns hints for persistence failures.
func ForStorage(driver string) string {
	switch driver {
	case "minio":
		return format("check storage.minio endpoint, credentials and bucket")
	case "file", "":
		return format("check storage.dir exists and is writable")
	default:
		return ""
	}
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
