package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	invoicedoc "github.com/alnah/go-invoicedoc"
	"github.com/alnah/go-invoicedoc/internal/fileutil"
)

// ErrInvalidName indicates a storage name that is not a plain file name.
var ErrInvalidName = errors.New("invalid storage name")

// filePerm is the mode of persisted documents.
const filePerm = 0o640

// FileStore keeps documents as files in one directory.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("store directory: empty path")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("store directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &FileStore{dir: abs}, nil
}

// Save atomically replaces the file called name.
// Readers see either the previous document or the new one, never a mix.
func (s *FileStore) Save(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, data, filePerm); err != nil {
		return fmt.Errorf("saving %s: %w", name, err)
	}
	return nil
}

// Open reads the file called name.
func (s *FileStore) Open(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) // #nosec G304 -- name validated by path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", invoicedoc.ErrArtifactNotFound, name)
		}
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return data, nil
}

// Location returns the absolute path of name.
func (s *FileStore) Location(name string) string {
	return filepath.Join(s.dir, name)
}

// Dir returns the store directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

// Compile-time interface check.
var _ invoicedoc.Store = (*FileStore)(nil)
