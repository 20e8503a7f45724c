package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/yndnr/savevault-go/pkg/config"
)

// Config holds logger configuration.
type Config struct {
	// Level is debug, info, warn or error. Anything else means info.
	Level string
	// Format is json or text.
	Format string
	// Verbose forces debug level regardless of Level.
	Verbose bool
	// Output defaults to os.Stderr.
	Output    io.Writer
	AddSource bool
}

// DefaultConfig returns text output at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "text",
		Output: os.Stderr,
	}
}

// FromSection converts the log section of a SaveVault configuration.
func FromSection(s config.LogSection) Config {
	cfg := DefaultConfig()
	cfg.Level = s.Level
	cfg.Format = s.Format
	cfg.Verbose = s.Verbose
	return cfg
}

// level is shared by every logger New builds, so a config reload changes
// them all at once.
var level = new(slog.LevelVar)

// New builds a logger that redacts secrets. Building a logger also sets
// the shared level.
func New(cfg Config) (*slog.Logger, error) {
	level.Set(effectiveLevel(cfg.Level, cfg.Verbose))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redactSensitive(a)
		},
	}

	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(out, opts)), nil
	}
	return slog.New(slog.NewTextHandler(out, opts)), nil
}

// SetLevel changes the shared level.
func SetLevel(name string) {
	level.Set(parseLevel(name))
}

// Apply sets the shared level from a reloaded log section.
func Apply(s config.LogSection) {
	level.Set(effectiveLevel(s.Level, s.Verbose))
}

// GetLevel returns the shared level as debug, info, warn or error.
func GetLevel() string {
	return strings.ToLower(level.Level().String())
}

func effectiveLevel(name string, verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return parseLevel(name)
}

func parseLevel(name string) slog.Level {
	if strings.EqualFold(name, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	switch l {
	case slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError:
		return l
	}
	// Offsets such as "info+2" are not configuration values.
	return slog.LevelInfo
}

var defaultLogger atomic.Pointer[slog.Logger]

func init() {
	l, _ := New(DefaultConfig())
	defaultLogger.Store(l)
}

// SetDefault sets the process logger and installs it as slog's default,
// so components that fall back to slog.Default() share it. nil is ignored.
func SetDefault(l *slog.Logger) {
	if l == nil {
		return
	}
	defaultLogger.Store(l)
	slog.SetDefault(l)
}

// Default returns the process logger.
func Default() *slog.Logger {
	return defaultLogger.Load()
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
