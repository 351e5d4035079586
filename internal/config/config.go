// Package config loads the service configuration from YAML, environment
// variables and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-invoicedoc/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidConfig  = errors.New("invalid config")
	ErrFieldTooLong   = errors.New("field exceeds maximum length")
)

// Field length limits.
const (
	MaxPathLength     = 4096
	MaxNameLength     = 128
	MaxEndpointLength = 255
)

// Storage drivers.
const (
	DriverNone  = "none"
	DriverFile  = "file"
	DriverMinio = "minio"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "INVOICEDOC_"

// Config holds all service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Template TemplateConfig `yaml:"template"`
	Storage  StorageConfig  `yaml:"storage"`
	Preview  PreviewConfig  `yaml:"preview"`
	PDF      PDFConfig      `yaml:"pdf"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	MaxBodyBytes    int64         `yaml:"maxBodyBytes"`
}

// TemplateConfig selects the .docx template.
// Path wins over Name; Name is resolved in Dir, then in the embedded set.
type TemplateConfig struct {
	Path string `yaml:"path"`
	Name string `yaml:"name"`
	Dir  string `yaml:"dir"`
}

// StorageConfig selects where generated documents are persisted.
type StorageConfig struct {
	Driver       string      `yaml:"driver"` // none, file, minio
	Dir          string      `yaml:"dir"`
	LatestName   string      `yaml:"latestName"`
	KeyByInvoice bool        `yaml:"keyByInvoice"`
	Minio        MinioConfig `yaml:"minio"`
}

// MinioConfig holds object storage settings.
type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"useSSL"`
}

// PreviewConfig controls the HTML preview stage.
type PreviewConfig struct {
	Strict bool `yaml:"strict"` // fail generation when the preview fails
}

// PDFConfig controls PDF export of the latest document.
type PDFConfig struct {
	Enabled bool          `yaml:"enabled"`
	Workers int           `yaml:"workers"` // 0 = auto
	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Template: TemplateConfig{Name: "invoice"},
		Storage: StorageConfig{
			Driver:     DriverFile,
			Dir:        "data",
			LatestName: "latest-invoice.docx",
			Minio:      MinioConfig{Bucket: "invoices"},
		},
		PDF: PDFConfig{Enabled: true, Timeout: 30 * time.Second},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Validate checks values that would otherwise fail at first use.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalidConfig)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: server.maxBodyBytes must be positive, got %d", ErrInvalidConfig, c.Server.MaxBodyBytes)
	}
	for name, d := range map[string]time.Duration{
		"server.readTimeout":     c.Server.ReadTimeout,
		"server.writeTimeout":    c.Server.WriteTimeout,
		"server.shutdownTimeout": c.Server.ShutdownTimeout,
		"pdf.timeout":            c.PDF.Timeout,
	} {
		if d < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, name)
		}
	}

	if err := validateFieldLength("template.path", c.Template.Path, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("template.name", c.Template.Name, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("template.dir", c.Template.Dir, MaxPathLength); err != nil {
		return err
	}
	if c.Template.Path == "" && c.Template.Name == "" {
		return fmt.Errorf("%w: template.path or template.name is required", ErrInvalidConfig)
	}

	if err := validateFieldLength("storage.latestName", c.Storage.LatestName, MaxNameLength); err != nil {
		return err
	}
	switch strings.ToLower(c.Storage.Driver) {
	case "", DriverNone:
	case DriverFile:
		if c.Storage.Dir == "" {
			return fmt.Errorf("%w: storage.dir is required for the file driver", ErrInvalidConfig)
		}
		if err := validateFieldLength("storage.dir", c.Storage.Dir, MaxPathLength); err != nil {
			return err
		}
	case DriverMinio:
		if c.Storage.Minio.Endpoint == "" || c.Storage.Minio.Bucket == "" {
			return fmt.Errorf("%w: storage.minio.endpoint and storage.minio.bucket are required for the minio driver", ErrInvalidConfig)
		}
		if err := validateFieldLength("storage.minio.endpoint", c.Storage.Minio.Endpoint, MaxEndpointLength); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: storage.driver: invalid value %q (must be none, file, or minio)", ErrInvalidConfig, c.Storage.Driver)
	}

	if c.PDF.Workers < 0 {
		return fmt.Errorf("%w: pdf.workers must not be negative, got %d", ErrInvalidConfig, c.PDF.Workers)
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log.level: invalid value %q", ErrInvalidConfig, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format: invalid value %q (must be text or json)", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// Load reads path over the defaults. An empty path yields the defaults.
// Keys missing from the file keep their default values; unknown keys are
// rejected. The result is not validated until ApplyEnv and Validate run.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	if err := yamlutil.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with INVOICEDOC_* variables read through lookup.
// Pass os.LookupEnv in production. Malformed values are reported, not ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}
	duration := func(name string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = d
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}

	str("ADDR", &c.Server.Addr)
	duration("SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)
	str("TEMPLATE_PATH", &c.Template.Path)
	str("TEMPLATE_NAME", &c.Template.Name)
	str("TEMPLATE_DIR", &c.Template.Dir)
	str("STORAGE_DRIVER", &c.Storage.Driver)
	str("STORAGE_DIR", &c.Storage.Dir)
	str("LATEST_NAME", &c.Storage.LatestName)
	boolean("KEY_BY_INVOICE", &c.Storage.KeyByInvoice)
	str("MINIO_ENDPOINT", &c.Storage.Minio.Endpoint)
	str("MINIO_ACCESS_KEY", &c.Storage.Minio.AccessKey)
	str("MINIO_SECRET_KEY", &c.Storage.Minio.SecretKey)
	str("MINIO_BUCKET", &c.Storage.Minio.Bucket)
	str("MINIO_REGION", &c.Storage.Minio.Region)
	boolean("MINIO_USE_SSL", &c.Storage.Minio.UseSSL)
	boolean("STRICT_PREVIEW", &c.Preview.Strict)
	boolean("PDF_ENABLED", &c.PDF.Enabled)
	integer("PDF_WORKERS", &c.PDF.Workers)
	duration("PDF_TIMEOUT", &c.PDF.Timeout)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// KnownEnvVars lists every variable ApplyEnv reads.
var KnownEnvVars = []string{
	"ADDR", "SHUTDOWN_TIMEOUT",
	"TEMPLATE_PATH", "TEMPLATE_NAME", "TEMPLATE_DIR",
	"STORAGE_DRIVER", "STORAGE_DIR", "LATEST_NAME", "KEY_BY_INVOICE",
	"MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_BUCKET", "MINIO_REGION", "MINIO_USE_SSL",
	"STRICT_PREVIEW", "PDF_ENABLED", "PDF_WORKERS", "PDF_TIMEOUT",
	"LOG_LEVEL", "LOG_FORMAT",
	"CONFIG",
}

// UnknownEnvVars returns INVOICEDOC_* names in environ that ApplyEnv
// does not read, to catch typos.
func UnknownEnvVars(environ []string) []string {
	known := make(map[string]bool, len(KnownEnvVars))
	for _, k := range KnownEnvVars {
		known[EnvPrefix+k] = true
	}
	var out []string
	for _, kv := range environ {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, EnvPrefix) && !known[name] {
			out = append(out, name)
		}
	}
	return out
}
