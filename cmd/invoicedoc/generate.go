package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	invoicedoc "github.com/alnah/go-invoicedoc"
	"github.com/alnah/go-invoicedoc/internal/config"
	"github.com/alnah/go-invoicedoc/internal/fileutil"
	"github.com/alnah/go-invoicedoc/internal/logger"
)

// outputPerm is the mode of files written by generate.
const outputPerm = 0o644

// runGenerate fills the template once from flags and writes the results.
func runGenerate(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseGenerateFlags(args, env)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return withHint(err, hintFor(err, nil))
	}
	mergeGenerateFlags(flags, cfg)

	if err := generate(ctx, flags, cfg, env); err != nil {
		return withHint(err, hintFor(err, cfg))
	}
	return nil
}

func generate(ctx context.Context, flags *generateFlags, cfg *config.Config, env *Environment) error {
	raw, err := readFields(flags, env)
	if err != nil {
		return err
	}

	// The CLI reports outcomes itself; the pipeline log only shows with -v.
	level := "error"
	if flags.common.verbose {
		level = "debug"
	}
	log := logger.New(env.Stderr, logger.Config{Level: level, Format: cfg.Log.Format})

	a, err := newApp(ctx, cfg, log, env.Now)
	if err != nil {
		return err
	}

	start := env.Now()
	res, err := a.generator.Generate(ctx, raw)
	if err != nil {
		return err
	}

	outPath := flags.output
	if outPath == "" {
		outPath = res.Filename
	}
	if err := writeOutput(outPath, res.Document); err != nil {
		return err
	}

	if !flags.common.quiet {
		for _, w := range res.Warnings() {
			fmt.Fprintf(env.Stderr, "warning: %v\n", w)
		}
	}

	created := []string{outPath}

	if flags.preview != "" || flags.pdf != "" {
		if res.PreviewErr != nil {
			return fmt.Errorf("preview unavailable for --preview/--pdf: %w", res.PreviewErr)
		}
		title := "Invoice " + res.Record.InvoiceID()

		if flags.preview != "" {
			page, err := invoicedoc.PreviewPage(ctx, title, res.Preview)
			if err != nil {
				return err
			}
			if err := writeOutput(flags.preview, []byte(page)); err != nil {
				return err
			}
			created = append(created, flags.preview)
		}

		if flags.pdf != "" {
			pdf, err := exportPDF(ctx, cfg.PDF.Timeout, title, res.Preview)
			if err != nil {
				return err
			}
			if err := writeOutput(flags.pdf, pdf); err != nil {
				return err
			}
			created = append(created, flags.pdf)
		}
	}

	if flags.common.quiet {
		return nil
	}
	for _, path := range created {
		if flags.common.verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", res.Record, path, env.Now().Sub(start).Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", path)
		}
	}
	if res.StoredAs != "" {
		fmt.Fprintf(env.Stdout, "Stored %s\n", res.StoredAs)
	}
	return nil
}

func exportPDF(ctx context.Context, timeout time.Duration, title, preview string) ([]byte, error) {
	exporter, err := invoicedoc.NewPDFExporter(timeout)
	if err != nil {
		return nil, err
	}
	defer func() { _ = exporter.Close() }()
	return exporter.Export(ctx, title, preview)
}

// readFields merges the --json file and -f pairs. Pairs win over the file.
func readFields(flags *generateFlags, env *Environment) (invoicedoc.Fields, error) {
	raw := invoicedoc.Fields{}

	if flags.jsonFile != "" {
		data, err := readInput(flags.jsonFile, env)
		if err != nil {
			return nil, err
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %s: must contain a JSON object: %v", ErrUsage, flags.jsonFile, err)
		}
		if raw == nil {
			return nil, fmt.Errorf("%w: %s: must contain a JSON object", ErrUsage, flags.jsonFile)
		}
	}

	for _, pair := range flags.fields {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: -f %q: want key=value", ErrUsage, pair)
		}
		raw[key] = value
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no invoice fields given (use -f key=value or --json file)", ErrUsage)
	}
	return raw, nil
}

func readInput(path string, env *Environment) ([]byte, error) {
	if path == "-" {
		if env.Stdin == nil {
			return nil, fmt.Errorf("%w: stdin unavailable", ErrReadInput)
		}
		data, err := io.ReadAll(env.Stdin)
		if err != nil {
			return nil, fmt.Errorf("%w: stdin: %w", ErrReadInput, err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	return data, nil
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s: parent directory does not exist", ErrWriteOutput, path)
		}
	}
	if err := fileutil.WriteFileAtomic(path, data, outputPerm); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}
