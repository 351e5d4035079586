package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	invoicedoc "github.com/alnah/go-invoicedoc"
	"github.com/alnah/go-invoicedoc/internal/config"
	"github.com/alnah/go-invoicedoc/internal/store"
)

// app holds the components built from one configuration.
type app struct {
	generator *invoicedoc.Generator
	store     invoicedoc.Store
	ready     func(context.Context) error
}

// newTemplateSource selects the template named by cfg.
func newTemplateSource(cfg *config.Config) (invoicedoc.TemplateSource, error) {
	if cfg.Template.Path != "" {
		return invoicedoc.FileTemplateSource{Path: cfg.Template.Path}, nil
	}
	src, err := invoicedoc.NewAssetTemplateSource(cfg.Template.Name, cfg.Template.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", invoicedoc.ErrTemplateNotFound, err)
	}
	return src, nil
}

// newStore opens the storage driver named by cfg. A nil store disables
// persistence. The returned check reports whether the store is usable.
func newStore(ctx context.Context, cfg *config.Config) (invoicedoc.Store, func(context.Context) error, error) {
	switch strings.ToLower(cfg.Storage.Driver) {
	case "", config.DriverNone:
		return nil, nil, nil
	case config.DriverFile:
		fs, err := store.NewFileStore(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", errStoreSetup, err)
		}
		return fs, nil, nil
	case config.DriverMinio:
		m := cfg.Storage.Minio
		ms, err := store.NewMinioStore(store.MinioConfig{
			Endpoint:  m.Endpoint,
			AccessKey: m.AccessKey,
			SecretKey: m.SecretKey,
			Bucket:    m.Bucket,
			Region:    m.Region,
			Prefix:    m.Prefix,
			UseSSL:    m.UseSSL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", errStoreSetup, err)
		}
		if err := ms.EnsureBucket(ctx); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", errStoreSetup, err)
		}
		return ms, ms.EnsureBucket, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown storage driver %q", config.ErrInvalidConfig, cfg.Storage.Driver)
	}
}

// newApp validates cfg and wires the generator.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, now func() time.Time) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	src, err := newTemplateSource(cfg)
	if err != nil {
		return nil, err
	}
	if err := checkTemplate(ctx, src, logger); err != nil {
		return nil, err
	}

	st, ready, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := []invoicedoc.Option{
		invoicedoc.WithTemplateSource(src),
		invoicedoc.WithStore(st),
		invoicedoc.WithLogger(logger),
	}
	if now != nil {
		opts = append(opts, invoicedoc.WithClock(now))
	}
	if cfg.Storage.LatestName != "" {
		opts = append(opts, invoicedoc.WithLatestName(cfg.Storage.LatestName))
	}
	if cfg.Preview.Strict {
		opts = append(opts, invoicedoc.WithStrictPreview())
	}
	if cfg.Storage.KeyByInvoice {
		opts = append(opts, invoicedoc.WithKeyByInvoice())
	}

	return &app{
		generator: invoicedoc.NewGenerator(opts...),
		store:     st,
		ready:     ready,
	}, nil
}

// checkTemplate loads the template once so a bad template fails at startup
// rather than on the first submission.
func checkTemplate(ctx context.Context, src invoicedoc.TemplateSource, logger *slog.Logger) error {
	data, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: loading template: %w", invoicedoc.ErrRender, err)
	}
	keys, err := invoicedoc.TemplatePlaceholders(data)
	if err != nil {
		return err
	}
	logger.DebugContext(ctx, "template loaded", slog.Int("bytes", len(data)), slog.Any("placeholders", keys))
	return nil
}
