package yamlutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-invoicedoc/internal/yamlutil"
)

type testConfig struct {
	Name    string `yaml:"name"`
	Count   int    `yaml:"count"`
	Enabled bool   `yaml:"enabled"`
}

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		wantErr error
		want    testConfig
	}{
		{
			name: "valid YAML",
			data: []byte("name: test\ncount: 42\nenabled: true"),
			dest: &testConfig{},
			want: testConfig{Name: "test", Count: 42, Enabled: true},
		},
		{
			name: "unknown fields ignored",
			data: []byte("name: test\nextra: 1"),
			dest: &testConfig{},
			want: testConfig{Name: "test"},
		},
		{
			name:    "nil data",
			data:    nil,
			dest:    &testConfig{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "nil destination",
			data:    []byte("name: test"),
			dest:    nil,
			wantErr: yamlutil.ErrNilDestination,
		},
		{
			name:    "input too large",
			data:    []byte("name: " + strings.Repeat("x", yamlutil.MaxInputSize)),
			dest:    &testConfig{},
			wantErr: yamlutil.ErrInputTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.Unmarshal(tt.data, tt.dest)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Unmarshal() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal() unexpected error: %v", err)
			}
			if got := *tt.dest.(*testConfig); got != tt.want {
				t.Errorf("Unmarshal() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	t.Run("rejects unknown fields", func(t *testing.T) {
		t.Parallel()

		var cfg testConfig
		err := yamlutil.UnmarshalStrict([]byte("name: test\nunknown: 1"), &cfg)
		if err == nil {
			t.Fatal("UnmarshalStrict() expected error for unknown field")
		}
	})

	t.Run("accepts known fields", func(t *testing.T) {
		t.Parallel()

		var cfg testConfig
		if err := yamlutil.UnmarshalStrict([]byte("name: ok\ncount: 3"), &cfg); err != nil {
			t.Fatalf("UnmarshalStrict() unexpected error: %v", err)
		}
		if cfg.Name != "ok" || cfg.Count != 3 {
			t.Errorf("UnmarshalStrict() = %+v", cfg)
		}
	})
}

func TestDecodeFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file wraps ErrNotExist", func(t *testing.T) {
		t.Parallel()

		var cfg testConfig
		err := yamlutil.DecodeFile(filepath.Join(t.TempDir(), "nope.yaml"), &cfg)
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("DecodeFile() error = %v, want os.ErrNotExist", err)
		}
	})

	t.Run("reads file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "cfg.yaml")
		if err := os.WriteFile(path, []byte("name: file\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		var cfg testConfig
		if err := yamlutil.DecodeFile(path, &cfg); err != nil {
			t.Fatalf("DecodeFile() unexpected error: %v", err)
		}
		if cfg.Name != "file" {
			t.Errorf("Name = %q, want %q", cfg.Name, "file")
		}
	})
}
