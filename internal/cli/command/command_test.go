package command

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yndnr/savevault-go/internal/storage"
	"github.com/yndnr/savevault-go/internal/telemetry/logger"
	"github.com/yndnr/savevault-go/pkg/codec"
	"github.com/yndnr/savevault-go/pkg/config"
)

type hero struct {
	Name  string
	Level int32
}

func (h *hero) Fields() []codec.Field {
	return []codec.Field{
		{Name: "name", Ptr: &h.Name},
		{Name: "level", Ptr: &h.Level},
	}
}

type testEnv struct {
	configPath string
	cfg        *config.Config
}

// newTestEnv writes a config file pointing at a fresh save directory.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Storage.Dir = filepath.Join(root, "data")

	path := filepath.Join(root, "config.yaml")
	mgr := config.NewManager(config.WithPath(path), config.WithEnvPrefix(""))
	mgr.Set(cfg)
	if err := mgr.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return &testEnv{configPath: path, cfg: cfg}
}

// seed writes records through a provider built from the same config.
func (e *testEnv) seed(t *testing.T, fn func(p *storage.FileProvider)) {
	t.Helper()
	p, err := storage.Open(e.cfg, logger.Discard(), nil)
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	defer p.Close()
	fn(p)
}

// run executes the CLI and returns stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = &stderr

	full := append([]string{"savevault", "--config", e.configPath}, args...)
	err := app.Run(full)
	return stdout.String(), err
}

func TestApp(t *testing.T) {
	app := App()
	if app.Name != "savevault" {
		t.Errorf("Name = %q", app.Name)
	}

	names := make(map[string]bool)
	for _, cmd := range app.Commands {
		names[cmd.Name] = true
	}
	for _, want := range []string{"keys", "show", "verify", "delete", "restore", "backups", "config", "version"} {
		if !names[want] {
			t.Errorf("missing command %q", want)
		}
	}

	flags := make(map[string]bool)
	for _, f := range app.Flags {
		flags[f.Names()[0]] = true
	}
	for _, want := range []string{"config", "dir", "output", "verbose"} {
		if !flags[want] {
			t.Errorf("missing flag %q", want)
		}
	}
}

func TestApp_RejectsUnknownOutput(t *testing.T) {
	e := newTestEnv(t)
	if _, err := e.run(t, "--output", "xml", "keys"); err == nil {
		t.Error("unknown --output accepted")
	}
}

func TestKeys(t *testing.T) {
	e := newTestEnv(t)
	e.seed(t, func(p *storage.FileProvider) {
		if err := p.Save("score", int32(42)); err != nil {
			t.Fatal(err)
		}
		if err := p.Save("hero", &hero{Name: "Ayla", Level: 3}); err != nil {
			t.Fatal(err)
		}
	})

	out, err := e.run(t, "keys")
	if err != nil {
		t.Fatalf("keys error = %v", err)
	}
	for _, want := range []string{"KEY", "FILE_ID", "score", "hero", storage.FileID("score")} {
		if !strings.Contains(out, want) {
			t.Errorf("keys output missing %q:\n%s", want, out)
		}
	}

	out, err = e.run(t, "-o", "json", "keys")
	if err != nil {
		t.Fatalf("keys -o json error = %v", err)
	}
	var rows []recordRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("json output: %v\n%s", err, out)
	}
	if len(rows) != 2 {
		t.Errorf("rows = %+v", rows)
	}
}

func TestShow(t *testing.T) {
	e := newTestEnv(t)
	e.seed(t, func(p *storage.FileProvider) {
		if err := p.Save("hero", &hero{Name: "Ayla", Level: 3}); err != nil {
			t.Fatal(err)
		}
	})

	out, err := e.run(t, "show", "hero")
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	if !strings.Contains(out, "Ayla") || !strings.Contains(out, "level") {
		t.Errorf("show output:\n%s", out)
	}

	out, err = e.run(t, "show", "--as", codec.FormatCompactText, "--id", storage.FileID("hero"))
	if err != nil {
		t.Fatalf("show --id error = %v", err)
	}
	if !strings.HasPrefix(out, `["`) || !strings.HasSuffix(out, "\n") {
		t.Errorf("compact output = %q", out)
	}
}

func TestShow_Errors(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no key", []string{"show"}},
		{"missing record", []string{"show", "nope"}},
		{"bad id", []string{"show", "--id", "not-an-id"}},
		{"binary output", []string{"show", "--as", codec.FormatBinary, "x"}},
		{"unknown format", []string{"show", "--as", "xml", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.run(t, tt.args...); err == nil {
				t.Errorf("show %v succeeded", tt.args)
			}
		})
	}
}

func TestVerify(t *testing.T) {
	e := newTestEnv(t)
	var hashPath string
	e.seed(t, func(p *storage.FileProvider) {
		if err := p.Save("good", int32(1)); err != nil {
			t.Fatal(err)
		}
		if err := p.Save("bad", int32(2)); err != nil {
			t.Fatal(err)
		}
		hashPath = p.HashPath("bad")
	})

	out, err := e.run(t, "verify")
	if err != nil {
		t.Fatalf("verify on clean dir error = %v\n%s", err, out)
	}

	if err := os.WriteFile(hashPath, []byte("deadbeef"), 0600); err != nil {
		t.Fatal(err)
	}
	out, err = e.run(t, "verify")
	if err == nil {
		t.Fatal("verify passed with a tampered record")
	}
	if !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("verify error = %v", err)
	}
	if !strings.Contains(out, statusIntegrity) {
		t.Errorf("verify output missing integrity status:\n%s", out)
	}
}

func TestDeleteRestoreBackups(t *testing.T) {
	e := newTestEnv(t)
	e.seed(t, func(p *storage.FileProvider) {
		for _, v := range []int32{1, 2} {
			if err := p.Save("score", v); err != nil {
				t.Fatal(err)
			}
		}
	})

	out, err := e.run(t, "backups", "score")
	if err != nil {
		t.Fatalf("backups error = %v", err)
	}
	if !strings.Contains(out, storage.FileID("score")+"-") {
		t.Errorf("backups output:\n%s", out)
	}

	if _, err := e.run(t, "delete", "score"); err != nil {
		t.Fatalf("delete error = %v", err)
	}
	if _, err := e.run(t, "show", "score"); err == nil {
		t.Error("show after delete succeeded")
	}

	if _, err := e.run(t, "restore", "score"); err != nil {
		t.Fatalf("restore error = %v", err)
	}
	e.seed(t, func(p *storage.FileProvider) {
		var n int32
		if err := p.Load("score", &n); err != nil || n != 1 {
			t.Errorf("restored score = %d, %v; want 1", n, err)
		}
	})

	if _, err := e.run(t, "restore", "score"); err == nil {
		t.Error("restore with no backups left succeeded")
	}
	if _, err := e.run(t, "delete"); err == nil {
		t.Error("delete without key succeeded")
	}
}

func TestDirFlagOverridesConfig(t *testing.T) {
	e := newTestEnv(t)
	other := t.TempDir()

	cfg := *e.cfg
	cfg.Storage.Dir = other
	p, err := storage.Open(&cfg, logger.Discard(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Save("elsewhere", "x"); err != nil {
		t.Fatal(err)
	}
	_ = p.Close()

	out, err := e.run(t, "--dir", other, "keys")
	if err != nil {
		t.Fatalf("keys error = %v", err)
	}
	if !strings.Contains(out, "elsewhere") {
		t.Errorf("--dir ignored:\n%s", out)
	}
}

func TestConfigCommands(t *testing.T) {
	e := newTestEnv(t)

	out, err := e.run(t, "config", "path")
	if err != nil || strings.TrimSpace(out) != e.configPath {
		t.Errorf("config path = %q, %v", out, err)
	}

	out, err = e.run(t, "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if strings.Contains(out, config.DefaultPassphrase) {
		t.Error("config show leaked the passphrase")
	}
	if !strings.Contains(out, "encryption:") {
		t.Errorf("config show output:\n%s", out)
	}

	out, err = e.run(t, "config", "show", "--reveal")
	if err != nil || !strings.Contains(out, config.DefaultPassphrase) {
		t.Errorf("config show --reveal = %v\n%s", err, out)
	}

	out, err = e.run(t, "config", "validate")
	if err != nil || !strings.Contains(out, "valid") {
		t.Errorf("config validate = %v\n%s", err, out)
	}
}

func TestConfigValidate_ReportsProblems(t *testing.T) {
	e := newTestEnv(t)
	bad := strings.Join([]string{
		"encryption:",
		"  key_size: 7",
		"integrity:",
		"  salt: \"\"",
	}, "\n")
	if err := os.WriteFile(e.configPath, []byte(bad), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := e.run(t, "config", "validate")
	if err == nil {
		t.Fatal("invalid config validated")
	}
	if strings.Count(out, "  - ") < 2 {
		t.Errorf("expected one line per problem:\n%s", out)
	}
}

func TestConfigReset(t *testing.T) {
	e := newTestEnv(t)

	if _, err := e.run(t, "config", "reset"); err != nil {
		t.Fatalf("config reset error = %v", err)
	}
	data, err := os.ReadFile(e.configPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), e.cfg.Storage.Dir) {
		t.Error("reset kept the custom storage dir")
	}
}

func TestVersion(t *testing.T) {
	e := newTestEnv(t)
	out, err := e.run(t, "-o", "json", "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(out, `"go_version"`) {
		t.Errorf("version output:\n%s", out)
	}
}

func TestBackups_NewestFirst(t *testing.T) {
	e := newTestEnv(t)
	e.seed(t, func(p *storage.FileProvider) {
		for _, v := range []int32{1, 2, 3} {
			if err := p.Save("score", v); err != nil {
				t.Fatal(err)
			}
		}
	})

	out, err := e.run(t, "-o", "json", "backups", "score")
	if err != nil {
		t.Fatalf("backups error = %v", err)
	}
	var rows []backupRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("json output: %v\n%s", err, out)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %+v, want 2", rows)
	}
	// ULIDs sort by creation time.
	if rows[0].Name <= rows[1].Name {
		t.Errorf("backups not newest first: %s before %s", rows[0].Name, rows[1].Name)
	}
}
