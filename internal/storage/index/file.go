package index

import (
	"encoding/json"
	"path/filepath"
	"sync"

	"github.com/yndnr/savevault-go/internal/infra/fileutil"
	"github.com/yndnr/savevault-go/pkg/errs"
)

// ManifestFileName is the file backend's file inside the save directory.
const ManifestFileName = "manifest.json"

const manifestVersion = 1

type manifestDoc struct {
	Version int               `json:"version"`
	Entries map[string]string `json:"entries"`
}

// File is the manifest.json backend. The whole manifest is held in memory
// and rewritten on every change.
type File struct {
	mu      sync.RWMutex
	path    string
	entries map[string]string
}

// OpenFile loads <dir>/manifest.json, starting empty when it is missing.
func OpenFile(dir string) (*File, error) {
	f := &File{
		path:    filepath.Join(dir, ManifestFileName),
		entries: make(map[string]string),
	}

	data, err := fileutil.ReadIfExists(f.path)
	if err != nil {
		return nil, errs.ErrIO.WithDetails(f.path).WithCause(err)
	}
	if data == nil {
		return f, nil
	}

	var doc manifestDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errs.ErrMalformedData.WithDetails(f.path).WithCause(err)
	}
	if doc.Entries != nil {
		f.entries = doc.Entries
	}
	return f, nil
}

// Put records fileID → key. Unchanged entries are not rewritten.
func (f *File) Put(fileID, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cur, ok := f.entries[fileID]; ok && cur == key {
		return nil
	}
	f.entries[fileID] = key
	return f.flushLocked()
}

// Delete forgets fileID.
func (f *File) Delete(fileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.entries[fileID]; !ok {
		return nil
	}
	delete(f.entries, fileID)
	return f.flushLocked()
}

// Lookup returns the key recorded for fileID.
func (f *File) Lookup(fileID string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	key, ok := f.entries[fileID]
	return key, ok
}

// Len returns the number of entries.
func (f *File) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.entries)
}

// Close is a no-op; every change is already on disk.
func (f *File) Close() error {
	return nil
}

func (f *File) flushLocked() error {
	data, err := json.MarshalIndent(manifestDoc{Version: manifestVersion, Entries: f.entries}, "", "  ")
	if err != nil {
		return errs.ErrIO.WithCause(err)
	}
	if err := fileutil.WriteAtomic(f.path, data, 0600); err != nil {
		return errs.ErrIO.WithDetails(f.path).WithCause(err)
	}
	return nil
}
