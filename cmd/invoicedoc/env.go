package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alnah/go-invoicedoc/internal/config"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now       func() time.Time
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	LookupEnv func(string) (string, bool)
	Environ   func() []string
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:       time.Now,
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		LookupEnv: os.LookupEnv,
		Environ:   os.Environ,
	}
}

// getenv returns the named variable, or "".
func (e *Environment) getenv(name string) string {
	if e.LookupEnv == nil {
		return ""
	}
	v, _ := e.LookupEnv(name)
	return v
}

// loadConfig builds the configuration in priority order:
// defaults < config file < INVOICEDOC_* variables. Flags are applied by
// the caller afterwards, then the result must be validated.
func loadConfig(flagPath string, env *Environment) (*config.Config, error) {
	path := flagPath
	if path == "" {
		path = env.getenv(config.EnvPrefix + "CONFIG")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	lookup := env.LookupEnv
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}

	if env.Environ != nil {
		warnUnknownEnvVars(env.Stderr, env.Environ())
	}
	return cfg, nil
}

// warnUnknownEnvVars prints a warning for unrecognized INVOICEDOC_* variables.
// Helps catch typos like INVOICEDOC_STORGE_DIR.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, name := range config.UnknownEnvVars(environ) {
		fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
	}
}
