package index

import (
	"fmt"
	"log/slog"

	"github.com/yndnr/savevault-go/pkg/errs"
)

// Backend names.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendNone   = "none"
)

// Index maps FileIds to storage keys. Implementations are safe for
// concurrent use.
type Index interface {
	// Put records that fileID holds key.
	Put(fileID, key string) error

	// Delete forgets fileID. Unknown ids are not an error.
	Delete(fileID string) error

	// Lookup returns the key recorded for fileID.
	Lookup(fileID string) (string, bool)

	// Close releases the backend.
	Close() error
}

// Options configures Open.
type Options struct {
	// CacheSizeMB sizes the badger block cache.
	CacheSizeMB int

	Logger *slog.Logger
}

// Open opens the named backend for the save directory dir.
func Open(backend, dir string, opts Options) (Index, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	switch backend {
	case BackendFile, "":
		return OpenFile(dir)
	case BackendBadger:
		return OpenBadger(dir, opts)
	case BackendNone:
		return None{}, nil
	default:
		return nil, errs.ErrUnknownManifest.WithDetails(fmt.Sprintf("manifest %q", backend))
	}
}

// None is the backend that records nothing.
type None struct{}

func (None) Put(string, string) error { return nil }

func (None) Delete(string) error { return nil }

func (None) Lookup(string) (string, bool) { return "", false }

func (None) Close() error { return nil }
