package assets

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestEmbeddedLoader_LoadStyle(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	tests := []struct {
		name        string
		styleName   string
		wantErr     error
		wantContain string
	}{
		{
			name:        "loads invoice style",
			styleName:   DefaultStyleName,
			wantContain: ".invoice-preview",
		},
		{
			name:      "returns ErrStyleNotFound for nonexistent",
			styleName: "nonexistent-style-xyz",
			wantErr:   ErrStyleNotFound,
		},
		{
			name:      "returns ErrInvalidAssetName for path traversal",
			styleName: "../secret",
			wantErr:   ErrInvalidAssetName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := loader.LoadStyle(tt.styleName)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("LoadStyle(%q) error = %v, want %v", tt.styleName, err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("LoadStyle(%q) unexpected error: %v", tt.styleName, err)
			}
			if !strings.Contains(got, tt.wantContain) {
				t.Errorf("LoadStyle(%q) content should contain %q", tt.styleName, tt.wantContain)
			}
		})
	}
}

func TestEmbeddedLoader_LoadTemplate(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	t.Run("default template is a docx archive", func(t *testing.T) {
		t.Parallel()

		data, err := loader.LoadTemplate(DefaultTemplateName)
		if err != nil {
			t.Fatalf("LoadTemplate() error = %v", err)
		}

		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			t.Fatalf("embedded template is not a zip: %v", err)
		}
		found := false
		for _, f := range zr.File {
			if f.Name == "word/document.xml" {
				found = true
			}
		}
		if !found {
			t.Error("embedded template lacks word/document.xml")
		}
	})

	t.Run("returns a private copy", func(t *testing.T) {
		t.Parallel()

		first, err := loader.LoadTemplate(DefaultTemplateName)
		if err != nil {
			t.Fatalf("LoadTemplate() error = %v", err)
		}
		first[0] = 'X'

		second, err := loader.LoadTemplate(DefaultTemplateName)
		if err != nil {
			t.Fatalf("LoadTemplate() error = %v", err)
		}
		if second[0] == 'X' {
			t.Error("mutating a loaded template changed the embedded copy")
		}
	})

	t.Run("returns ErrTemplateNotFound for nonexistent", func(t *testing.T) {
		t.Parallel()

		_, err := loader.LoadTemplate("nonexistent-template-xyz")
		if !errors.Is(err, ErrTemplateNotFound) {
			t.Errorf("LoadTemplate() error = %v, want ErrTemplateNotFound", err)
		}
	})

	t.Run("returns ErrInvalidAssetName for empty name", func(t *testing.T) {
		t.Parallel()

		_, err := loader.LoadTemplate("")
		if !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("LoadTemplate() error = %v, want ErrInvalidAssetName", err)
		}
	})
}

func TestPackageLevelLoaders(t *testing.T) {
	t.Parallel()

	if _, err := LoadStyle(DefaultStyleName); err != nil {
		t.Errorf("LoadStyle() error = %v", err)
	}
	if _, err := LoadTemplate(DefaultTemplateName); err != nil {
		t.Errorf("LoadTemplate() error = %v", err)
	}
}
