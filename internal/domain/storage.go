package domain

import (
	"context"
	"io"
)

// StorageProvider persists and serves file binaries. Exactly one provider is
// active per process, selected once at startup; the orchestrator never swaps
// providers at runtime.
type StorageProvider interface {
	// Enabled reports whether this provider is switched on in configuration.
	// Disabled candidates are skipped during startup selection.
	Enabled() bool

	// Save stores the binary for the given record and returns its resolved
	// URL. The record is persisted before Save runs, so the provider can use
	// its id as part of the storage key.
	Save(ctx context.Context, content io.Reader, file *File) (string, error)

	// ResolveURL returns the URL for a previously saved record.
	ResolveURL(file *File) string
}

// StorageReader is implemented by providers that can stream a stored binary
// back, letting this service serve downloads directly (the local disk
// provider does; object stores serve their own URLs).
type StorageReader interface {
	Open(ctx context.Context, file *File) (io.ReadCloser, error)
}
