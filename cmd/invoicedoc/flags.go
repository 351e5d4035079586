package main

import (
	"errors"
	"fmt"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-invoicedoc/internal/config"
	"github.com/alnah/go-invoicedoc/internal/fileutil"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage       = errors.New("invalid usage")
	ErrReadInput   = errors.New("failed to read input")
	ErrWriteOutput = errors.New("failed to write output")

	errStoreSetup    = errors.New("storage unavailable")
	errHelpRequested = errors.New("help requested")
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// templateFlags selects the .docx template.
type templateFlags struct {
	template string // name or path
	dir      string
}

// storageFlags selects where documents are persisted.
type storageFlags struct {
	driver       string
	dir          string
	latestName   string
	keyByInvoice bool
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common        commonFlags
	template      templateFlags
	storage       storageFlags
	addr          string
	strictPreview bool
	noPDF         bool
	workers       int
	pdfTimeout    time.Duration
	logFormat     string
}

// generateFlags holds all flags for the generate command.
type generateFlags struct {
	common        commonFlags
	template      templateFlags
	storage       storageFlags
	fields        []string
	jsonFile      string
	output        string
	preview       string
	pdf           string
	strictPreview bool
	pdfTimeout    time.Duration
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
}

// addTemplateFlags adds template selection flags to a FlagSet.
func addTemplateFlags(fs *flag.FlagSet, f *templateFlags) {
	fs.StringVarP(&f.template, "template", "t", "", "template name or .docx file path")
	fs.StringVar(&f.dir, "template-dir", "", "directory containing templates/<name>.docx")
}

// addStorageFlags adds storage flags to a FlagSet.
func addStorageFlags(fs *flag.FlagSet, f *storageFlags) {
	fs.StringVar(&f.driver, "store", "", "storage driver: none, file, minio")
	fs.StringVar(&f.dir, "data-dir", "", "directory for the file driver")
	fs.StringVar(&f.latestName, "latest-name", "", "name of the most recent document")
	fs.BoolVar(&f.keyByInvoice, "key-by-invoice", false, "also keep a copy per invoice ID")
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, env *Environment) (*serveFlags, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	f := &serveFlags{}

	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (e.g., :8080)")
	fs.BoolVar(&f.strictPreview, "strict-preview", false, "fail generation when the preview fails")
	fs.BoolVar(&f.noPDF, "no-pdf", false, "disable PDF export")
	fs.IntVarP(&f.workers, "workers", "w", 0, "concurrent PDF browsers (0 = auto)")
	fs.DurationVar(&f.pdfTimeout, "pdf-timeout", 0, "PDF generation timeout (e.g., 30s)")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text, json")

	addCommonFlags(fs, &f.common)
	addTemplateFlags(fs, &f.template)
	addStorageFlags(fs, &f.storage)

	fs.Usage = func() { printServeUsage(env.Stderr) }

	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: serve takes no arguments, got %q", ErrUsage, fs.Args())
	}
	return f, nil
}

// parseGenerateFlags parses generate command flags.
func parseGenerateFlags(args []string, env *Environment) (*generateFlags, error) {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	f := &generateFlags{}

	fs.StringArrayVarP(&f.fields, "field", "f", nil, "invoice field as key=value (repeatable)")
	fs.StringVarP(&f.jsonFile, "json", "j", "", "JSON file with invoice fields (- reads stdin)")
	fs.StringVarP(&f.output, "output", "o", "", "output .docx path (default: invoice-<eventID>.docx)")
	fs.StringVar(&f.preview, "preview", "", "write the HTML preview to this path")
	fs.StringVar(&f.pdf, "pdf", "", "write a PDF rendering to this path")
	fs.BoolVar(&f.strictPreview, "strict-preview", false, "fail when the preview fails")
	fs.DurationVar(&f.pdfTimeout, "pdf-timeout", 0, "PDF generation timeout (e.g., 30s)")

	addCommonFlags(fs, &f.common)
	addTemplateFlags(fs, &f.template)
	addStorageFlags(fs, &f.storage)

	fs.Usage = func() { printGenerateUsage(env.Stderr) }

	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %q (use -f key=value)", ErrUsage, fs.Args())
	}
	return f, nil
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelpRequested
		}
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return nil
}

// mergeCommonFlags applies flags that override the loaded configuration.
func mergeCommonFlags(f *commonFlags, cfg *config.Config) {
	if f.verbose {
		cfg.Log.Level = "debug"
	}
	if f.quiet {
		cfg.Log.Level = "error"
	}
}

func mergeTemplateFlags(f *templateFlags, cfg *config.Config) {
	switch {
	case f.template == "":
	case fileutil.IsFilePath(f.template):
		cfg.Template.Path = f.template
	default:
		cfg.Template.Name = f.template
		cfg.Template.Path = ""
	}
	if f.dir != "" {
		cfg.Template.Dir = f.dir
	}
}

func mergeStorageFlags(f *storageFlags, cfg *config.Config) {
	if f.driver != "" {
		cfg.Storage.Driver = f.driver
	}
	if f.dir != "" {
		cfg.Storage.Dir = f.dir
	}
	if f.latestName != "" {
		cfg.Storage.LatestName = f.latestName
	}
	if f.keyByInvoice {
		cfg.Storage.KeyByInvoice = true
	}
}

// mergeServeFlags applies serve flags over cfg.
func mergeServeFlags(f *serveFlags, cfg *config.Config) {
	mergeCommonFlags(&f.common, cfg)
	mergeTemplateFlags(&f.template, cfg)
	mergeStorageFlags(&f.storage, cfg)
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.strictPreview {
		cfg.Preview.Strict = true
	}
	if f.noPDF {
		cfg.PDF.Enabled = false
	}
	if f.workers > 0 {
		cfg.PDF.Workers = f.workers
	}
	if f.pdfTimeout > 0 {
		cfg.PDF.Timeout = f.pdfTimeout
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
}

// mergeGenerateFlags applies generate flags over cfg.
func mergeGenerateFlags(f *generateFlags, cfg *config.Config) {
	mergeCommonFlags(&f.common, cfg)
	mergeTemplateFlags(&f.template, cfg)
	mergeStorageFlags(&f.storage, cfg)
	if f.strictPreview {
		cfg.Preview.Strict = true
	}
	if f.pdfTimeout > 0 {
		cfg.PDF.Timeout = f.pdfTimeout
	}
}
