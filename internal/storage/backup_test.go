package storage

import (
	"errors"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/savevault-go/internal/telemetry/metric"
	"github.com/yndnr/savevault-go/pkg/errs"
)

func TestBackups_PrunedToMaxCount(t *testing.T) {
	m, _ := metric.New(nil)
	p := newTestProvider(t, func(o *Options) {
		o.Backup = BackupPolicy{Enabled: true, MaxCount: 3}
		o.Metrics = m
	})

	for i := 0; i < 6; i++ {
		if err := p.Save("k", &profile{Level: int32(i)}); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := p.Backups("k")
	if err != nil {
		t.Fatalf("Backups() error = %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("backups = %d, want 3", len(backups))
	}
	for i := 1; i < len(backups); i++ {
		if backups[i-1].ID.Compare(backups[i].ID) <= 0 {
			t.Errorf("backups not ordered newest first: %v", backups)
		}
	}

	// The newest backup holds the value saved just before the last Save.
	if err := p.Restore("k"); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	var restored profile
	if err := p.Load("k", &restored); err != nil || restored.Level != 4 {
		t.Errorf("restored level = %d, %v; want 4", restored.Level, err)
	}
	for _, b := range backups {
		if _, err := os.Stat(p.backupHash(b.Name)); err != nil {
			t.Errorf("backup %s missing sidecar: %v", b.Name, err)
		}
	}
	if got := testutil.ToFloat64(m.Backups); got != 5 {
		t.Errorf("backups_total = %v, want 5", got)
	}
}

func TestBackups_Disabled(t *testing.T) {
	p := newTestProvider(t, nil)
	for i := 0; i < 3; i++ {
		if err := p.Save("k", &profile{Level: int32(i)}); err != nil {
			t.Fatal(err)
		}
	}
	backups, err := p.Backups("k")
	if err != nil || len(backups) != 0 {
		t.Errorf("Backups() = %v, %v; want none", backups, err)
	}
}

func TestRestore(t *testing.T) {
	p := newTestProvider(t, func(o *Options) {
		o.Backup = BackupPolicy{Enabled: true, MaxCount: 5}
	})

	for _, level := range []int32{1, 2, 3} {
		if err := p.Save("k", &profile{Level: level}); err != nil {
			t.Fatal(err)
		}
	}

	for _, want := range []int32{2, 1} {
		if err := p.Restore("k"); err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		out := &profile{}
		if err := p.Load("k", out); err != nil {
			t.Fatalf("Load() after Restore error = %v", err)
		}
		if out.Level != want {
			t.Errorf("Level after Restore = %d, want %d", out.Level, want)
		}
	}

	if err := p.Restore("k"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("Restore() with no backups error = %v, want ErrNotFound", err)
	}
}

func TestRestore_AfterDelete(t *testing.T) {
	p := newTestProvider(t, func(o *Options) {
		o.Backup = BackupPolicy{Enabled: true, MaxCount: 2}
	})
	if err := p.Save("k", &profile{Name: "first"}); err != nil {
		t.Fatal(err)
	}
	if err := p.Save("k", &profile{Name: "second"}); err != nil {
		t.Fatal(err)
	}
	if err := p.Delete("k"); err != nil {
		t.Fatal(err)
	}

	if err := p.Restore("k"); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	out := &profile{}
	if err := p.Load("k", out); err != nil || out.Name != "first" {
		t.Errorf("Load() = %+v, %v; want first", out, err)
	}
}

func TestRestore_NeverSaved(t *testing.T) {
	p := newTestProvider(t, nil)
	if err := p.Restore("ghost"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("Restore(ghost) error = %v, want ErrNotFound", err)
	}
}
