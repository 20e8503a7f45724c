package index

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/yndnr/savevault-go/pkg/errs"
)

// BadgerDirName is the badger backend's directory inside the save directory.
const BadgerDirName = ".manifest"

const (
	keyPrefix       = "fid/"
	gcInterval      = 10 * time.Minute
	gcDiscardRatio  = 0.5
	valueLogMaxSize = 16 << 20
)

// Badger is the Badger v3 backend.
type Badger struct {
	db     *badger.DB
	logger *slog.Logger

	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
}

// OpenBadger opens or creates <dir>/.manifest.
func OpenBadger(dir string, opts Options) (*Badger, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	path := filepath.Join(dir, BadgerDirName)

	bopts := badger.DefaultOptions(path)
	bopts.Logger = &badgerLogger{logger: logger}
	bopts.ValueLogFileSize = valueLogMaxSize
	bopts.SyncWrites = true
	if opts.CacheSizeMB > 0 {
		bopts.BlockCacheSize = int64(opts.CacheSizeMB) << 20
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, errs.ErrIO.WithDetails(path).WithCause(err)
	}

	b := &Badger{
		db:     db,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go b.gcLoop()

	logger.Debug("badger manifest opened",
		"dir", path,
		"cache_size_mb", opts.CacheSizeMB)

	return b, nil
}

// Put records fileID → key.
func (b *Badger) Put(fileID, key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+fileID), []byte(key))
	})
	if err != nil {
		return errs.ErrIO.WithDetails("manifest put").WithCause(err)
	}
	return nil
}

// Delete forgets fileID.
func (b *Badger) Delete(fileID string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + fileID))
	})
	if err != nil {
		return errs.ErrIO.WithDetails("manifest delete").WithCause(err)
	}
	return nil
}

// Lookup returns the key recorded for fileID. Read failures are logged
// and reported as a miss.
func (b *Badger) Lookup(fileID string) (string, bool) {
	var key []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + fileID))
		if err != nil {
			return err
		}
		key, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			b.logger.Warn("manifest lookup failed",
				"file_id", fileID,
				"error", err)
		}
		return "", false
	}
	return string(key), true
}

// Scan calls fn for every entry until fn returns false.
func (b *Badger) Scan(fn func(fileID, key string) bool) error {
	return b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			fileID := string(item.Key()[len(keyPrefix):])
			if !fn(fileID, string(value)) {
				break
			}
		}
		return nil
	})
}

// Close stops the GC loop and closes the database. It is safe to call
// more than once.
func (b *Badger) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.stopCh)
		<-b.doneCh
		if cerr := b.db.Close(); cerr != nil {
			err = fmt.Errorf("close manifest db: %w", cerr)
		}
	})
	return err
}

// gcLoop runs periodic value log garbage collection.
func (b *Badger) gcLoop() {
	defer close(b.doneCh)

	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.runGC()
		case <-b.stopCh:
			return
		}
	}
}

func (b *Badger) runGC() {
	for {
		err := b.db.RunValueLogGC(gcDiscardRatio)
		if err == nil {
			continue
		}
		if !errors.Is(err, badger.ErrNoRewrite) {
			b.logger.Warn("manifest gc failed", "error", err)
		}
		return
	}
}

// badgerLogger adapts slog.Logger to Badger's Logger interface. Badger's
// info chatter is demoted to debug.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
