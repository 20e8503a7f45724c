package index

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yndnr/savevault-go/internal/telemetry/logger"
	"github.com/yndnr/savevault-go/pkg/errs"
)

func testOptions() Options {
	return Options{CacheSizeMB: 1, Logger: logger.Discard()}
}

func TestOpen_Backends(t *testing.T) {
	for _, backend := range []string{BackendFile, BackendBadger} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()

			idx, err := Open(backend, dir, testOptions())
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}

			if err := idx.Put("id1", "player"); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			if err := idx.Put("id2", "settings"); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			if err := idx.Put("id1", "player"); err != nil {
				t.Fatalf("Put() repeat error = %v", err)
			}

			if key, ok := idx.Lookup("id1"); !ok || key != "player" {
				t.Errorf("Lookup(id1) = %q, %v; want player, true", key, ok)
			}
			if _, ok := idx.Lookup("missing"); ok {
				t.Error("Lookup(missing) should miss")
			}

			if err := idx.Delete("id2"); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if err := idx.Delete("never-there"); err != nil {
				t.Errorf("Delete(unknown) error = %v", err)
			}
			if _, ok := idx.Lookup("id2"); ok {
				t.Error("Lookup(id2) after Delete should miss")
			}

			if err := idx.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			reopened, err := Open(backend, dir, testOptions())
			if err != nil {
				t.Fatalf("reopen error = %v", err)
			}
			defer reopened.Close()

			if key, ok := reopened.Lookup("id1"); !ok || key != "player" {
				t.Errorf("after reopen Lookup(id1) = %q, %v; want player, true", key, ok)
			}
			if _, ok := reopened.Lookup("id2"); ok {
				t.Error("deleted entry survived reopen")
			}
		})
	}
}

func TestOpen_None(t *testing.T) {
	idx, err := Open(BackendNone, t.TempDir(), testOptions())
	if err != nil {
		t.Fatalf("Open(none) error = %v", err)
	}
	if err := idx.Put("id", "key"); err != nil {
		t.Errorf("Put() error = %v", err)
	}
	if _, ok := idx.Lookup("id"); ok {
		t.Error("none backend should never hit")
	}
	if err := idx.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestOpen_Unknown(t *testing.T) {
	_, err := Open("sqlite", t.TempDir(), testOptions())
	if !errors.Is(err, errs.ErrUnknownManifest) {
		t.Errorf("Open(sqlite) error = %v, want ErrUnknownManifest", err)
	}
}

func TestFile_Layout(t *testing.T) {
	dir := t.TempDir()
	f, err := OpenFile(dir)
	if err != nil {
		t.Fatal(err)
	}
	if f.Len() != 0 {
		t.Errorf("Len() = %d, want 0", f.Len())
	}
	if _, err := os.Stat(filepath.Join(dir, ManifestFileName)); !os.IsNotExist(err) {
		t.Error("manifest should not be written before the first Put")
	}

	if err := f.Put("abc", "slot"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	want := "{\n  \"version\": 1,\n  \"entries\": {\n    \"abc\": \"slot\"\n  }\n}"
	if string(data) != want {
		t.Errorf("manifest = %s, want %s", data, want)
	}
}

func TestFile_Corrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ManifestFileName), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenFile(dir); !errors.Is(err, errs.ErrMalformedData) {
		t.Errorf("OpenFile(corrupt) error = %v, want ErrMalformedData", err)
	}
}

func TestBadger_ScanAndDoubleClose(t *testing.T) {
	b, err := OpenBadger(t.TempDir(), testOptions())
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{"a": "alpha", "b": "beta", "c": "gamma"}
	for id, key := range want {
		if err := b.Put(id, key); err != nil {
			t.Fatal(err)
		}
	}

	got := make(map[string]string)
	if err := b.Scan(func(id, key string) bool {
		got[id] = key
		return true
	}); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Scan() found %d entries, want %d", len(got), len(want))
	}
	for id, key := range want {
		if got[id] != key {
			t.Errorf("Scan()[%s] = %q, want %q", id, got[id], key)
		}
	}

	seen := 0
	_ = b.Scan(func(string, string) bool {
		seen++
		return false
	})
	if seen != 1 {
		t.Errorf("Scan() with early stop visited %d, want 1", seen)
	}

	if err := b.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
