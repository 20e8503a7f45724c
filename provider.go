package savevault

import (
	"github.com/yndnr/savevault-go/internal/storage"
)

// Provider is the storage backend a Store delegates to. Implementations
// report every failure as an error; the Store decides what callers see.
type Provider interface {
	Save(key string, value any) error
	// Load decodes the record of key into target, a non-nil pointer.
	Load(key string, target any) error
	Exists(key string) (bool, error)
	// Delete removes the record of key. A missing record is not an error.
	Delete(key string) error
	Keys() ([]string, error)
	// Restore rolls the record of key back to its newest backup.
	Restore(key string) error
	Close() error
}

var _ Provider = (*storage.FileProvider)(nil)

// failingProvider stands in when the configured provider could not be
// built. Every call reports the construction error.
type failingProvider struct {
	err error
}

func (f failingProvider) Save(string, any) error { return f.err }
func (f failingProvider) Load(string, any) error { return f.err }
func (f failingProvider) Exists(string) (bool, error) { return false, f.err }
func (f failingProvider) Delete(string) error { return f.err }
func (f failingProvider) Keys() ([]string, error) { return nil, f.err }
func (f failingProvider) Restore(string) error { return f.err }
func (f failingProvider) Close() error { return nil }
