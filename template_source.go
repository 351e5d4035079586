package invoicedoc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/alnah/go-invoicedoc/internal/assets"
)

// TemplateSource supplies the .docx template for each generation.
// Implementations must return bytes the caller may not modify.
type TemplateSource interface {
	Load(ctx context.Context) ([]byte, error)
}

// FileTemplateSource reads a template file on every Load, so edits to the
// file take effect on the next generation without a restart.
type FileTemplateSource struct {
	Path string
}

// Load reads the current contents of the template file.
func (s FileTemplateSource) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, s.Path)
		}
		return nil, fmt.Errorf("reading template: %w", err)
	}
	if info.Size() > assets.MaxTemplateSize {
		return nil, fmt.Errorf("template %s is %d bytes, maximum is %d", s.Path, info.Size(), assets.MaxTemplateSize)
	}
	data, err := os.ReadFile(s.Path) // #nosec G304 -- operator-configured path
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	return data, nil
}

// AssetTemplateSource loads a named template through an asset loader:
// a custom directory when configured, else the embedded default.
type AssetTemplateSource struct {
	Name   string
	Loader assets.AssetLoader
}

// NewAssetTemplateSource resolves name against dir, falling back to the
// embedded templates. An empty dir uses embedded templates only.
func NewAssetTemplateSource(name, dir string) (*AssetTemplateSource, error) {
	if name == "" {
		name = assets.DefaultTemplateName
	}
	resolver, err := assets.NewAssetResolver(dir)
	if err != nil {
		return nil, fmt.Errorf("template directory: %w", err)
	}
	return &AssetTemplateSource{Name: name, Loader: resolver}, nil
}

// Load fetches the template by name.
func (s *AssetTemplateSource) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.Loader.LoadTemplate(s.Name)
	if err != nil {
		if errors.Is(err, assets.ErrTemplateNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, s.Name)
		}
		return nil, err
	}
	return data, nil
}

// BytesTemplateSource serves a fixed in-memory template.
type BytesTemplateSource []byte

// Load returns a copy of the template.
func (b BytesTemplateSource) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// Compile-time interface checks.
var (
	_ TemplateSource = FileTemplateSource{}
	_ TemplateSource = (*AssetTemplateSource)(nil)
	_ TemplateSource = BytesTemplateSource(nil)
)
