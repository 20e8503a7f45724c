package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/yndnr/savevault-go/internal/infra/fileutil"
	"github.com/yndnr/savevault-go/internal/storage/index"
	"github.com/yndnr/savevault-go/internal/telemetry/metric"
	"github.com/yndnr/savevault-go/pkg/cmap"
	"github.com/yndnr/savevault-go/pkg/codec"
	"github.com/yndnr/savevault-go/pkg/crypto/adaptive"
	"github.com/yndnr/savevault-go/pkg/errs"
	"github.com/yndnr/savevault-go/pkg/integrity"
)

// Defaults.
const (
	DefaultExtension      = ".sav"
	DefaultMaxRecordBytes = 50 << 20
	HashExtension         = ".hash"
	BackupDirName         = "backups"

	lockStripes = 64
	filePerm    = 0600
	dirPerm     = 0750
)

// BackupPolicy controls copies taken before a record is overwritten.
type BackupPolicy struct {
	Enabled  bool
	MaxCount int
}

// Options configures a FileProvider.
type Options struct {
	// Dir is the save directory. It is created if missing.
	Dir string

	// Prefix and Extension surround the FileId in record file names.
	Prefix    string
	Extension string

	// Codec encodes values. Defaults to the binary codec.
	Codec codec.Codec

	// Cipher encrypts records. Nil stores the encoding as-is.
	Cipher adaptive.Cipher

	// Verifier writes and checks the sidecar hash. Nil disables integrity.
	Verifier *integrity.Verifier

	// Index maps FileIds back to keys. Defaults to index.None.
	Index index.Index

	// MaxRecordBytes refuses larger records on save and load.
	MaxRecordBytes int64

	Backup BackupPolicy

	Metrics *metric.Registry
	Logger  *slog.Logger
}

// Record describes one record file found in the save directory.
type Record struct {
	FileID string
	// Key is empty when the manifest has no entry for FileID.
	Key  string
	Size int64
}

// Name returns Key, or FileID when the key is unknown.
func (r Record) Name() string {
	if r.Key != "" {
		return r.Key
	}
	return r.FileID
}

// FileProvider stores each key as a file in one directory.
//
// Calls run on the caller's goroutine. Operations on the same key are
// serialised by a striped lock; different keys rarely contend.
type FileProvider struct {
	dir       string
	prefix    string
	ext       string
	codec     codec.Codec
	cipher    adaptive.Cipher
	verifier  *integrity.Verifier
	index     index.Index
	maxBytes  int64
	backup    BackupPolicy
	metrics   *metric.Registry
	logger    *slog.Logger
	locks     [lockStripes]sync.RWMutex
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewFileProvider creates the save directory and returns a provider.
func NewFileProvider(opts Options) (*FileProvider, error) {
	if opts.Dir == "" {
		return nil, errs.ErrInvalidConfig.WithDetails("storage dir is required")
	}
	if err := os.MkdirAll(opts.Dir, dirPerm); err != nil {
		return nil, errs.ErrIO.WithDetails(opts.Dir).WithCause(err)
	}

	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	if opts.Codec == nil {
		opts.Codec = codec.Binary{}
	}
	if opts.Index == nil {
		opts.Index = index.None{}
	}
	if opts.MaxRecordBytes <= 0 {
		opts.MaxRecordBytes = DefaultMaxRecordBytes
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &FileProvider{
		dir:      opts.Dir,
		prefix:   opts.Prefix,
		ext:      opts.Extension,
		codec:    opts.Codec,
		cipher:   opts.Cipher,
		verifier: opts.Verifier,
		index:    opts.Index,
		maxBytes: opts.MaxRecordBytes,
		backup:   opts.Backup,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
	}, nil
}

// Dir returns the save directory.
func (p *FileProvider) Dir() string {
	return p.dir
}

// Codec returns the codec records are encoded with.
func (p *FileProvider) Codec() codec.Codec {
	return p.codec
}

// FilePath returns the record path for key.
func (p *FileProvider) FilePath(key string) string {
	return p.mainPath(FileID(key))
}

// HashPath returns the sidecar path for key.
func (p *FileProvider) HashPath(key string) string {
	return p.hashPath(FileID(key))
}

func (p *FileProvider) mainPath(id string) string {
	return filepath.Join(p.dir, p.prefix+id+p.ext)
}

func (p *FileProvider) hashPath(id string) string {
	return filepath.Join(p.dir, id+HashExtension)
}

func (p *FileProvider) lockFor(id string) *sync.RWMutex {
	return &p.locks[cmap.ShardIndex(id, lockStripes-1)]
}

func (p *FileProvider) check(key string) error {
	if p.closed.Load() {
		return errs.ErrClosed
	}
	if key == "" {
		return errs.ErrInvalidKey.WithDetails("key is empty")
	}
	return nil
}

// Save encodes value and writes it under key, replacing any previous
// record. With backups enabled the previous record is copied first.
func (p *FileProvider) Save(key string, value any) error {
	if err := p.check(key); err != nil {
		return err
	}

	encoded, err := p.codec.Encode(value)
	if err != nil {
		return err
	}

	var digest string
	if p.verifier != nil {
		digest = p.verifier.ComputeHash(encoded)
	}

	data := encoded
	if p.cipher != nil {
		if data, err = p.cipher.Encrypt(encoded, nil); err != nil {
			return err
		}
	}
	if int64(len(data)) > p.maxBytes {
		return errs.ErrRecordTooLarge.WithDetailsf("%d bytes, limit %d", len(data), p.maxBytes)
	}

	id := FileID(key)
	mu := p.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	if p.backup.Enabled {
		if err := p.backupLocked(id); err != nil {
			return err
		}
	}

	if err := fileutil.WriteAtomic(p.mainPath(id), data, filePerm); err != nil {
		return errs.ErrIO.WithDetails(p.mainPath(id)).WithCause(err)
	}
	if p.verifier != nil {
		err = fileutil.WriteAtomic(p.hashPath(id), []byte(digest), filePerm)
	} else {
		// A sidecar left from an earlier integrity-enabled run would no
		// longer match.
		err = fileutil.RemoveIfExists(p.hashPath(id))
	}
	if err != nil {
		return errs.ErrIO.WithDetails(p.hashPath(id)).WithCause(err)
	}

	if err := p.index.Put(id, key); err != nil {
		p.logger.Warn("manifest update failed",
			"key", key,
			"file_id", id,
			"error", err)
	}

	p.logger.Debug("record saved",
		"key", key,
		"file_id", id,
		"bytes", len(data))
	return nil
}

// Load reads the record for key and decodes it into target.
func (p *FileProvider) Load(key string, target any) error {
	if err := p.check(key); err != nil {
		return err
	}
	encoded, err := p.ReadEncoded(FileID(key))
	if err != nil {
		return err
	}
	return p.codec.Decode(encoded, target)
}

// ReadEncoded returns the decrypted, verified encoding stored under id.
func (p *FileProvider) ReadEncoded(id string) ([]byte, error) {
	if p.closed.Load() {
		return nil, errs.ErrClosed
	}

	mu := p.lockFor(id)
	mu.RLock()
	defer mu.RUnlock()

	data, err := p.readMain(id)
	if err != nil {
		return nil, err
	}

	encoded := data
	if p.cipher != nil {
		if encoded, err = p.cipher.Decrypt(data, nil); err != nil {
			return nil, err
		}
	}

	if p.verifier != nil {
		expected, err := fileutil.ReadIfExists(p.hashPath(id))
		if err != nil {
			return nil, errs.ErrIO.WithDetails(p.hashPath(id)).WithCause(err)
		}
		if expected != nil && !p.verifier.Verify(encoded, string(expected)) {
			return nil, errs.ErrIntegrityMismatch.WithDetails(id)
		}
	}

	return encoded, nil
}

func (p *FileProvider) readMain(id string) ([]byte, error) {
	path := p.mainPath(id)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errs.ErrNotFound.WithDetails(id)
	}
	if err != nil {
		return nil, errs.ErrIO.WithDetails(path).WithCause(err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errs.ErrIO.WithDetails(path).WithCause(err)
	}
	if info.Size() > p.maxBytes {
		return nil, errs.ErrRecordTooLarge.WithDetailsf("%s: %d bytes, limit %d", id, info.Size(), p.maxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(f, p.maxBytes+1))
	if err != nil {
		return nil, errs.ErrIO.WithDetails(path).WithCause(err)
	}
	if int64(len(data)) > p.maxBytes {
		return nil, errs.ErrRecordTooLarge.WithDetails(id)
	}
	return data, nil
}

// Exists reports whether a record file exists for key.
func (p *FileProvider) Exists(key string) (bool, error) {
	if err := p.check(key); err != nil {
		return false, err
	}
	_, err := os.Stat(p.FilePath(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, errs.ErrIO.WithDetails(p.FilePath(key)).WithCause(err)
}

// Delete removes the record, its sidecar and its manifest entry. Backups
// are kept so the record can still be restored. A missing record is not
// an error.
func (p *FileProvider) Delete(key string) error {
	if err := p.check(key); err != nil {
		return err
	}

	id := FileID(key)
	mu := p.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	if err := fileutil.RemoveIfExists(p.mainPath(id)); err != nil {
		return errs.ErrIO.WithDetails(p.mainPath(id)).WithCause(err)
	}
	if err := fileutil.RemoveIfExists(p.hashPath(id)); err != nil {
		return errs.ErrIO.WithDetails(p.hashPath(id)).WithCause(err)
	}
	if err := p.index.Delete(id); err != nil {
		p.logger.Warn("manifest delete failed",
			"key", key,
			"file_id", id,
			"error", err)
	}
	return nil
}

// Records lists the record files in the save directory.
func (p *FileProvider) Records() ([]Record, error) {
	if p.closed.Load() {
		return nil, errs.ErrClosed
	}

	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, errs.ErrIO.WithDetails(p.dir).WithCause(err)
	}

	var records []Record
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, p.prefix) || !strings.HasSuffix(name, p.ext) {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, p.prefix), p.ext)
		if !IsFileID(id) {
			continue
		}

		rec := Record{FileID: id}
		if info, err := e.Info(); err == nil {
			rec.Size = info.Size()
		}
		if key, ok := p.index.Lookup(id); ok {
			rec.Key = key
		}
		records = append(records, rec)
	}
	return records, nil
}

// Keys returns the storage key of every record, or its FileId when the
// manifest does not know it.
func (p *FileProvider) Keys() ([]string, error) {
	records, err := p.Records()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(records))
	for _, r := range records {
		keys = append(keys, r.Name())
	}
	return keys, nil
}

// Close closes the manifest. Later calls fail with errs.ErrClosed.
func (p *FileProvider) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		if cerr := p.index.Close(); cerr != nil {
			err = fmt.Errorf("close manifest: %w", cerr)
		}
	})
	return err
}
