package savevault

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/yndnr/savevault-go/internal/autosave"
	"github.com/yndnr/savevault-go/internal/telemetry/logger"
	"github.com/yndnr/savevault-go/internal/telemetry/metric"
	"github.com/yndnr/savevault-go/pkg/config"
	"github.com/yndnr/savevault-go/pkg/errs"
)

var (
	defaultOnce  sync.Once
	defaultStore *Store

	errNotReady = errs.ErrClosed.WithDetails("default store is not initialized")
)

// Default returns the process-wide Store, built on first use from
// config.Global(). If the provider cannot be built every call on the
// Store fails and is logged, and InitializeDefault can retry.
func Default() *Store {
	defaultOnce.Do(func() {
		mgr := config.Global()
		cfg := mgr.Get()

		log, err := logger.New(logger.FromSection(cfg.Log))
		if err != nil {
			log = slog.Default()
		}

		defaultStore = New(failingProvider{err: errNotReady},
			WithLogger(log),
			WithMetrics(metric.Global()),
			WithAutoSave(autosave.Options{
				// Read on every tick so edits to the config file apply.
				Interval:          func() time.Duration { return seconds(mgr.Get().AutoSave.Interval) },
				Enabled:           func() bool { return mgr.Get().AutoSave.Enabled },
				MaxSavesPerSecond: cfg.AutoSave.MaxSavesPerSecond,
			}),
		)
		_ = defaultStore.initializeFrom(cfg)

		// Auto-save settings are read per tick; the log level needs a push.
		if err := mgr.Watch(func(c *config.Config) {
			logger.Apply(c.Log)
		}); err != nil {
			log.Debug("config watch unavailable", "error", err)
		}
	})
	return defaultStore
}

// initializeFrom replaces the provider with one built from cfg. On failure
// the provider becomes one that reports the error.
func (s *Store) initializeFrom(cfg *config.Config) error {
	var next Provider
	p, err := OpenProvider(cfg, s.logger, s.metrics)
	if err != nil {
		s.logger.Error("storage provider unavailable", "error", err)
		next = failingProvider{err: err}
	} else {
		next = p
	}
	if old := s.Initialize(next); old != nil {
		if cerr := old.Close(); cerr != nil {
			s.logger.Warn("closing previous provider failed", "error", cerr)
		}
	}
	return err
}

// Initialize replaces the provider of the default Store and returns the
// previous one.
func Initialize(p Provider) Provider {
	return Default().Initialize(p)
}

// InitializeDefault rebuilds the default Store's provider from the current
// configuration and closes the previous provider.
func InitializeDefault() error {
	return Default().initializeFrom(config.Global().Get())
}

// Save stores value under key in the default Store.
func Save(key string, value any) {
	Default().Save(key, value)
}

// Load returns the value stored under key in the default Store, or def.
func Load[T any](key string, def T) T {
	return LoadFrom(Default(), key, def)
}

// LoadInto decodes the record of key from the default Store into target.
func LoadInto(key string, target any) bool {
	return Default().LoadInto(key, target)
}

// Exists reports whether the default Store holds key.
func Exists(key string) bool {
	return Default().Exists(key)
}

// Delete removes key from the default Store.
func Delete(key string) {
	Default().Delete(key)
}

// GetAllKeys lists the keys of the default Store.
func GetAllKeys() []string {
	return Default().GetAllKeys()
}

// RestoreBackup restores key from its newest backup in the default Store.
func RestoreBackup(key string) bool {
	return Default().RestoreBackup(key)
}

// RegisterAutoSave registers ref for auto-save in the default Store.
func RegisterAutoSave(key string, ref any) {
	Default().RegisterAutoSave(key, ref)
}

// UnregisterAutoSave removes key from auto-save in the default Store.
func UnregisterAutoSave(key string) {
	Default().UnregisterAutoSave(key)
}

// FlushAutoSave saves every auto-save entry of the default Store now.
func FlushAutoSave(ctx context.Context) int {
	return Default().FlushAutoSave(ctx)
}
