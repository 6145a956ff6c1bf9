// Package store persists the raw dashboard document.
//
// A Backend only moves bytes. Interpreting and defaulting the document is the
// job of the settings service.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Read when no document was written yet.
	ErrNotFound = errors.New("document not found")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("store closed")
)

// Backend keeps exactly one document.
type Backend interface {
	// Read returns the stored document or ErrNotFound.
	Read(ctx context.Context) ([]byte, error)
	// Write replaces the stored document as a whole.
	// A failed write leaves the previous document intact.
	Write(ctx context.Context, data []byte) error
	// Close releases connections and files.
	Close() error
}
