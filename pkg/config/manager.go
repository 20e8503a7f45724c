package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/savevault-go/internal/infra/confloader"
	"github.com/yndnr/savevault-go/internal/infra/fileutil"
	"github.com/yndnr/savevault-go/pkg/errs"
)

// FileName is the configuration file name inside the savevault config dir.
const FileName = "config.yaml"

// DefaultPath returns <user config dir>/savevault/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "savevault", FileName), nil
}

// DefaultDataDir returns <user config dir>/savevault/data.
func DefaultDataDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "savevault", "data"), nil
}

// Manager owns one configuration file.
//
// The configuration is read on first Get. It is written back only by Save
// and Reset, and once when the file is first created with defaults.
type Manager struct {
	mu        sync.RWMutex
	path      string
	envPrefix string
	logger    *slog.Logger
	cfg       *Config
	watcher   *confloader.Watcher

	// Set by Load: the file without environment overrides, the result with
	// them, and the dotted keys the environment supplied.
	fileCfg *Config
	envCfg  *Config
	envKeys []string
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithPath sets the configuration file path.
func WithPath(path string) ManagerOption {
	return func(m *Manager) {
		m.path = path
	}
}

// WithEnvPrefix sets the environment override prefix. Empty disables
// environment overrides.
func WithEnvPrefix(prefix string) ManagerOption {
	return func(m *Manager) {
		m.envPrefix = prefix
	}
}

// WithLogger sets the logger used for load and reload problems.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager. Nothing is read until Get or Load.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		envPrefix: confloader.DefaultEnvPrefix,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.path == "" {
		path, err := DefaultPath()
		if err != nil {
			path = FileName
		}
		m.path = path
	}
	return m
}

var (
	globalOnce sync.Once
	global     *Manager
)

// Global returns the process-wide Manager, created on first use.
func Global() *Manager {
	globalOnce.Do(func() {
		global = NewManager()
	})
	return global
}

// Path returns the configuration file path.
func (m *Manager) Path() string {
	return m.path
}

// Get returns a copy of the current configuration, loading it on first
// call. If loading fails the defaults are used and the failure is logged.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	cfg := m.cfg
	m.mu.RUnlock()
	if cfg != nil {
		return cfg.Clone()
	}

	if err := m.Load(); err != nil {
		m.logger.Warn("config load failed, using defaults",
			"path", m.path,
			"error", err,
		)
		m.mu.Lock()
		if m.cfg == nil {
			m.cfg = Default()
		}
		m.mu.Unlock()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.Clone()
}

// Load reads the configuration file, creating it with defaults when it
// does not exist. Environment overrides are applied on top of the file.
func (m *Manager) Load() error {
	if _, err := os.Stat(m.path); errors.Is(err, os.ErrNotExist) {
		if err := m.write(Default()); err != nil {
			return err
		}
	} else if err != nil {
		return errs.ErrIO.WithDetails(m.path).WithCause(err)
	}

	cfg := Default()
	loader := confloader.NewLoader(
		confloader.WithConfigFile(m.path),
		confloader.WithEnvPrefix(m.envPrefix),
		confloader.WithSections(Sections()...),
	)
	if err := loader.Load(cfg); err != nil {
		return errs.ErrInvalidConfig.WithDetails(m.path).WithCause(err)
	}

	var (
		fileCfg *Config
		envKeys []string
	)
	if m.envPrefix != "" {
		fileCfg = Default()
		fileLoader := confloader.NewLoader(
			confloader.WithConfigFile(m.path),
			confloader.WithEnvPrefix(""),
		)
		if err := fileLoader.Load(fileCfg); err != nil {
			return errs.ErrInvalidConfig.WithDetails(m.path).WithCause(err)
		}
		envLoader := confloader.NewLoader(
			confloader.WithEnvPrefix(m.envPrefix),
			confloader.WithSections(Sections()...),
		)
		if err := envLoader.LoadEnv(); err != nil {
			return errs.ErrInvalidConfig.WithCause(err)
		}
		envKeys = envLoader.Keys()
	}

	m.mu.Lock()
	m.cfg = cfg
	m.fileCfg = fileCfg
	m.envCfg = cfg.Clone()
	m.envKeys = envKeys
	m.mu.Unlock()
	return nil
}

// Set replaces the in-memory configuration. It is not persisted until Save.
func (m *Manager) Set(cfg *Config) {
	m.mu.Lock()
	m.cfg = cfg.Clone()
	m.mu.Unlock()
}

// Save writes the current configuration to the file. Values that came
// from environment overrides are written as the file had them, unless
// Set changed them since.
func (m *Manager) Save() error {
	cfg := m.Get()

	m.mu.RLock()
	fileCfg, envCfg, keys := m.fileCfg, m.envCfg, m.envKeys
	m.mu.RUnlock()

	if len(keys) > 0 && fileCfg != nil {
		var err error
		cfg, err = revertEnv(cfg, envCfg, fileCfg, keys)
		if err != nil {
			return errs.ErrInvalidConfig.WithCause(err)
		}
	}
	return m.write(cfg)
}

// Reset restores the defaults and writes them to the file.
func (m *Manager) Reset() error {
	cfg := Default()
	m.mu.Lock()
	m.cfg = cfg
	m.fileCfg = nil
	m.envCfg = nil
	m.envKeys = nil
	m.mu.Unlock()
	return m.write(cfg)
}

// revertEnv returns cur with each of keys set back to its value in
// fileCfg, skipping keys whose value no longer matches envCfg.
func revertEnv(cur, envCfg, fileCfg *Config, keys []string) (*Config, error) {
	curTree, err := toTree(cur)
	if err != nil {
		return nil, err
	}
	envTree, err := toTree(envCfg)
	if err != nil {
		return nil, err
	}
	fileTree, err := toTree(fileCfg)
	if err != nil {
		return nil, err
	}

	for _, key := range keys {
		section, leaf, ok := strings.Cut(key, ".")
		if !ok {
			continue
		}
		dst, _ := curTree[section].(map[string]any)
		loaded, _ := envTree[section].(map[string]any)
		src, _ := fileTree[section].(map[string]any)
		if dst == nil || loaded == nil || src == nil {
			continue
		}
		if !reflect.DeepEqual(dst[leaf], loaded[leaf]) {
			continue
		}
		if v, ok := src[leaf]; ok {
			dst[leaf] = v
		}
	}

	data, err := yaml.Marshal(curTree)
	if err != nil {
		return nil, err
	}
	out := &Config{}
	if err := yaml.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}

func toTree(cfg *Config) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

func (m *Manager) write(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errs.ErrInvalidConfig.WithCause(err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0750); err != nil {
		return errs.ErrIO.WithDetails(m.path).WithCause(err)
	}
	if err := fileutil.WriteAtomic(m.path, data, 0600); err != nil {
		return errs.ErrIO.WithDetails(m.path).WithCause(err)
	}
	return nil
}

// Watch reloads the configuration whenever the file changes and passes
// the new value to fn. Reload failures are logged and keep the old value.
func (m *Manager) Watch(fn func(*Config)) error {
	// The file and its directory exist after the first load.
	m.Get()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watcher != nil {
		return fmt.Errorf("config: already watching %s", m.path)
	}

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(m.logger))
	if err != nil {
		return err
	}
	if err := w.Watch(m.path); err != nil {
		_ = w.Stop()
		return err
	}
	w.OnChange(func(string) {
		if err := m.Load(); err != nil {
			m.logger.Warn("config reload failed",
				"path", m.path,
				"error", err,
			)
			return
		}
		if fn != nil {
			fn(m.Get())
		}
	})
	w.StartAsync()

	m.watcher = w
	return nil
}

// Close stops the file watcher, if any.
func (m *Manager) Close() error {
	m.mu.Lock()
	w := m.watcher
	m.watcher = nil
	m.mu.Unlock()

	if w == nil {
		return nil
	}
	return w.Stop()
}
