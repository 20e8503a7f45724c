package storage

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/savevault-go/internal/infra/fileutil"
	"github.com/yndnr/savevault-go/pkg/errs"
)

// Backup describes one stored copy of a record.
type Backup struct {
	// Name is <FileId>-<ULID>; the ULID orders backups by creation time.
	Name string
	ID   ulid.ULID
}

func (p *FileProvider) backupDir() string {
	return filepath.Join(p.dir, BackupDirName)
}

func (p *FileProvider) backupMain(name string) string {
	return filepath.Join(p.backupDir(), name+p.ext)
}

func (p *FileProvider) backupHash(name string) string {
	return filepath.Join(p.backupDir(), name+HashExtension)
}

// Backups lists the backups of key, newest first. The first entry is the
// one Restore would use.
func (p *FileProvider) Backups(key string) ([]Backup, error) {
	if err := p.check(key); err != nil {
		return nil, err
	}
	id := FileID(key)
	mu := p.lockFor(id)
	mu.RLock()
	defer mu.RUnlock()

	backups, err := p.listBackups(id)
	if err != nil {
		return nil, err
	}
	slices.Reverse(backups)
	return backups, nil
}

// listBackups returns the backups of id oldest first.
func (p *FileProvider) listBackups(id string) ([]Backup, error) {
	entries, err := os.ReadDir(p.backupDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errs.ErrIO.WithDetails(p.backupDir()).WithCause(err)
	}

	var backups []Backup
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, id+"-") || !strings.HasSuffix(name, p.ext) {
			continue
		}
		stem := strings.TrimSuffix(name, p.ext)
		parsed, err := ulid.ParseStrict(strings.TrimPrefix(stem, id+"-"))
		if err != nil {
			continue
		}
		backups = append(backups, Backup{Name: stem, ID: parsed})
	}
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].ID.Compare(backups[j].ID) < 0
	})
	return backups, nil
}

// backupLocked copies the current record of id, if any, into the backup
// directory and prunes old copies. The caller holds the write lock.
func (p *FileProvider) backupLocked(id string) error {
	if _, err := os.Stat(p.mainPath(id)); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err := os.MkdirAll(p.backupDir(), dirPerm); err != nil {
		return errs.ErrIO.WithDetails(p.backupDir()).WithCause(err)
	}

	name := id + "-" + ulid.Make().String()
	if err := fileutil.CopyAtomic(p.mainPath(id), p.backupMain(name), filePerm); err != nil {
		return errs.ErrIO.WithDetails(p.backupMain(name)).WithCause(err)
	}
	err := fileutil.CopyAtomic(p.hashPath(id), p.backupHash(name), filePerm)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return errs.ErrIO.WithDetails(p.backupHash(name)).WithCause(err)
	}
	p.metrics.BackupTaken()

	return p.pruneLocked(id)
}

// pruneLocked keeps the newest MaxCount backups of id.
func (p *FileProvider) pruneLocked(id string) error {
	if p.backup.MaxCount <= 0 {
		return nil
	}
	backups, err := p.listBackups(id)
	if err != nil {
		return err
	}
	excess := len(backups) - p.backup.MaxCount
	for i := 0; i < excess; i++ {
		p.removeBackup(backups[i].Name)
	}
	return nil
}

func (p *FileProvider) removeBackup(name string) {
	for _, path := range []string{p.backupMain(name), p.backupHash(name)} {
		if err := fileutil.RemoveIfExists(path); err != nil {
			p.logger.Warn("backup removal failed",
				"path", path,
				"error", err)
		}
	}
}

// Restore replaces the record of key with its newest backup and consumes
// that backup, so repeated calls step further back. It fails with
// errs.ErrNotFound when key has no backup.
func (p *FileProvider) Restore(key string) error {
	if err := p.check(key); err != nil {
		return err
	}

	id := FileID(key)
	mu := p.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	backups, err := p.listBackups(id)
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return errs.ErrNotFound.WithDetailsf("no backup for %s", id)
	}
	newest := backups[len(backups)-1]

	if err := fileutil.CopyAtomic(p.backupMain(newest.Name), p.mainPath(id), filePerm); err != nil {
		return errs.ErrIO.WithDetails(p.mainPath(id)).WithCause(err)
	}
	err = fileutil.CopyAtomic(p.backupHash(newest.Name), p.hashPath(id), filePerm)
	if errors.Is(err, os.ErrNotExist) {
		err = fileutil.RemoveIfExists(p.hashPath(id))
	}
	if err != nil {
		return errs.ErrIO.WithDetails(p.hashPath(id)).WithCause(err)
	}

	p.removeBackup(newest.Name)
	if err := p.index.Put(id, key); err != nil {
		p.logger.Warn("manifest update failed",
			"key", key,
			"file_id", id,
			"error", err)
	}

	p.logger.Info("record restored from backup",
		"key", key,
		"backup", newest.Name)
	return nil
}
