package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"
)

const (
	fileMode = 0o644
	dirMode  = 0o750
)

// File keeps the document in a flat JSON file.
type File struct {
	mu     sync.Mutex
	path   string
	closed bool
}

var _ Backend = (*File)(nil)

// NewFile returns a File backend for path and creates its directory.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("file store: empty path") //nolint:goerr113
	}

	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return nil, fmt.Errorf("file store: create directory: %w", err)
	}

	return &File{path: path}, nil
}

// Path of the document file.
func (f *File) Path() string {
	return f.path
}

// Read implements Backend.
func (f *File) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrClosed
	}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("file store: read %s: %w", f.path, err)
	}

	return data, nil
}

// Write implements Backend.
// The document goes to a temp file in the same directory which is synced and
// renamed over the target, so readers see the old or the new file, never a mix.
func (f *File) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}

	if err := WriteFileAtomic(f.path, data); err != nil {
		return fmt.Errorf("file store: %w", err)
	}

	return nil
}

// Close implements Backend.
func (f *File) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()

	return nil
}

// WriteFileAtomic replaces path with data through a synced temp file and rename.
func WriteFileAtomic(path string, data []byte) error {
	if err := renameio.WriteFile(path, data, fileMode); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}

	return nil
}
