package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-invoicedoc/internal/config"
)

func TestLoadConfig_Priority(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "invoicedoc.yaml")
	yaml := "server:\n  addr: \":9000\"\npdf:\n  timeout: 10s\nstorage:\n  dir: from-file\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		flagPath string
		vars     map[string]string
		wantAddr string
		wantDir  string
		wantPDF  time.Duration
	}{
		{
			name:     "defaults without file",
			wantAddr: ":8080",
			wantDir:  "data",
			wantPDF:  30 * time.Second,
		},
		{
			name:     "file over defaults",
			flagPath: path,
			wantAddr: ":9000",
			wantDir:  "from-file",
			wantPDF:  10 * time.Second,
		},
		{
			name:     "config path from environment",
			vars:     map[string]string{"INVOICEDOC_CONFIG": path},
			wantAddr: ":9000",
			wantDir:  "from-file",
			wantPDF:  10 * time.Second,
		},
		{
			name:     "environment over file",
			flagPath: path,
			vars:     map[string]string{"INVOICEDOC_STORAGE_DIR": "from-env", "INVOICEDOC_PDF_TIMEOUT": "1m"},
			wantAddr: ":9000",
			wantDir:  "from-env",
			wantPDF:  time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, _ := testEnv(tt.vars)
			cfg, err := loadConfig(tt.flagPath, env)
			if err != nil {
				t.Fatalf("loadConfig() error = %v", err)
			}
			if cfg.Server.Addr != tt.wantAddr {
				t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, tt.wantAddr)
			}
			if cfg.Storage.Dir != tt.wantDir {
				t.Errorf("Storage.Dir = %q, want %q", cfg.Storage.Dir, tt.wantDir)
			}
			if cfg.PDF.Timeout != tt.wantPDF {
				t.Errorf("PDF.Timeout = %v, want %v", cfg.PDF.Timeout, tt.wantPDF)
			}
		})
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		env, _, _ := testEnv(nil)
		_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"), env)
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("malformed environment value", func(t *testing.T) {
		t.Parallel()
		env, _, _ := testEnv(map[string]string{"INVOICEDOC_PDF_WORKERS": "many"})
		_, err := loadConfig("", env)
		if !errors.Is(err, config.ErrInvalidConfig) {
			t.Errorf("error = %v, want ErrInvalidConfig", err)
		}
	})
}

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	warnUnknownEnvVars(&buf, []string{
		"INVOICEDOC_ADDR=:1",
		"INVOICEDOC_ADRR=:2",
		"HOME=/root",
	})

	got := buf.String()
	if !strings.Contains(got, "INVOICEDOC_ADRR") {
		t.Errorf("expected warning for INVOICEDOC_ADRR, got %q", got)
	}
	if strings.Contains(got, "INVOICEDOC_ADDR ") || strings.Contains(got, "HOME") {
		t.Errorf("unexpected warnings: %q", got)
	}
}
