package confloader

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "SAVEVAULT_"

// Loader stacks the configuration file, the environment and explicit
// overrides into one koanf tree and unmarshals it into a struct.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	filePath  string
	sections  []string
	overrides map[string]any
	loaded    bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix. An empty prefix
// disables environment loading.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile sets the YAML file to load.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithSections limits environment loading to variables naming one of the
// given top-level sections. SAVEVAULT_CONFIG_FILE, which names the file
// rather than a setting, is then ignored.
func WithSections(names ...string) Option {
	return func(l *Loader) {
		l.sections = names
	}
}

// WithOverrides sets values applied after the file and environment.
// Keys are dotted paths such as "storage.dir".
func WithOverrides(values map[string]any) Option {
	return func(l *Loader) {
		l.overrides = values
	}
}

// NewLoader creates a Loader reading SAVEVAULT_ variables and no file.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads every configured source and unmarshals the result into
// target. Fields no source mentions keep their current value, so target
// should hold the defaults.
func (l *Loader) Load(target any) error {
	if err := l.LoadFile(l.filePath); err != nil {
		return err
	}
	if l.envPrefix != "" {
		if err := l.LoadEnv(); err != nil {
			return err
		}
	}
	if len(l.overrides) > 0 {
		if err := l.LoadMap(l.overrides); err != nil {
			return err
		}
	}
	if err := l.Unmarshal(target); err != nil {
		return fmt.Errorf("confloader: unmarshal: %w", err)
	}
	l.loaded = true
	return nil
}

// LoadFile merges a YAML file. An empty path is a no-op.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}
	if err := l.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("confloader: file %s: %w", path, err)
	}
	return nil
}

// LoadEnv merges the environment. SAVEVAULT_AUTOSAVE_ENABLED=true sets
// autosave.enabled.
func (l *Loader) LoadEnv() error {
	if err := l.k.Load(env.Provider(l.envPrefix, ".", l.envKey), nil); err != nil {
		return fmt.Errorf("confloader: env %s*: %w", l.envPrefix, err)
	}
	return nil
}

// envKey maps PREFIX_SECTION_SOME_KEY to section.some_key. It returns ""
// for variables outside the known sections, which koanf skips.
func (l *Loader) envKey(name string) string {
	name = strings.ToLower(strings.TrimPrefix(name, l.envPrefix))
	section, key, ok := strings.Cut(name, "_")
	if !ok {
		return ""
	}
	if len(l.sections) > 0 && !slices.Contains(l.sections, section) {
		return ""
	}
	return section + "." + key
}

// LoadMap merges a map of dotted keys.
func (l *Loader) LoadMap(data map[string]any) error {
	if err := l.k.Load(mapProvider(data), nil); err != nil {
		return fmt.Errorf("confloader: overrides: %w", err)
	}
	return nil
}

// Unmarshal decodes the merged tree into target using koanf tags.
func (l *Loader) Unmarshal(target any) error {
	return l.k.Unmarshal("", target)
}

// IsLoaded reports whether Load has succeeded.
func (l *Loader) IsLoaded() bool {
	return l.loaded
}

// Keys returns every dotted key in the merged tree.
func (l *Loader) Keys() []string {
	return l.k.Keys()
}

var errNoBytes = errors.New("confloader: map provider has no byte form")

// mapProvider feeds a map of dotted keys to koanf, which unflattens them
// so "log.level" replaces only that leaf.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) { return nil, errNoBytes }

func (m mapProvider) Read() (map[string]any, error) { return m, nil }
