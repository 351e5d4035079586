package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"go.uber.org/automaxprocs/maxprocs"

	invoicedoc "github.com/alnah/go-invoicedoc"
	"github.com/alnah/go-invoicedoc/internal/config"
	"github.com/alnah/go-invoicedoc/internal/hints"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches the command in args and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	cmd, rest := args[1], args[2:]
	var err error
	switch cmd {
	case "serve":
		err = runServe(ctx, rest, env)
	case "generate":
		err = runGenerate(ctx, rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "invoicedoc %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		runHelp(rest, env)
		return ExitSuccess
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	if err != nil {
		if errors.Is(err, errHelpRequested) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// hintFor returns an actionable hint for err, or "". cfg may be nil when
// the configuration itself failed to load.
func hintFor(err error, cfg *config.Config) string {
	var mismatch *invoicedoc.MismatchError
	switch {
	case errors.As(err, &mismatch):
		// invoiceID is derived from eventID and cannot be supplied.
		missing := slices.DeleteFunc(slices.Clone(mismatch.Missing), func(k string) bool {
			return k == invoicedoc.KeyInvoiceID
		})
		return hints.ForTemplateMismatch(missing)
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound()
	case errors.Is(err, invoicedoc.ErrTemplateNotFound):
		if cfg != nil && cfg.Template.Path == "" {
			return hints.ForTemplateNotFound(cfg.Template.Name)
		}
		return hints.ForTemplateNotFound("")
	case errors.Is(err, invoicedoc.ErrRender) && errors.Is(err, os.ErrNotExist):
		return hints.ForTemplateNotFound("")
	case errors.Is(err, invoicedoc.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, invoicedoc.ErrPersistence), errors.Is(err, errStoreSetup):
		if cfg != nil {
			return hints.ForStorage(cfg.Storage.Driver)
		}
	}
	return ""
}

// withHint appends hint to err's message. The result still matches err.
func withHint(err error, hint string) error {
	if err == nil || hint == "" {
		return err
	}
	return fmt.Errorf("%w%s", err, hint)
}
