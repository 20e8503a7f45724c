package savevault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/yndnr/savevault-go/internal/autosave"
	"github.com/yndnr/savevault-go/internal/infra/shutdown"
	"github.com/yndnr/savevault-go/internal/telemetry/metric"
	"github.com/yndnr/savevault-go/pkg/errs"
)

// Operation names used in logs and metrics.
const (
	OpSave    = "save"
	OpLoad    = "load"
	OpExists  = "exists"
	OpDelete  = "delete"
	OpKeys    = "keys"
	OpRestore = "restore"
)

// Store is the failure-containing front of a Provider. No Store method
// returns a storage error or lets a provider panic escape: failures are
// logged and callers get the documented fallback.
type Store struct {
	active   atomic.Pointer[holder]
	autosave *autosave.Scheduler
	metrics  *metric.Registry
	logger   *slog.Logger
}

type holder struct {
	p Provider
}

// Option configures a Store.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	metrics  *metric.Registry
	autosave autosave.Options
}

// WithLogger sets the logger failures are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics sets the metric registry. The default is metric.Global().
func WithMetrics(r *metric.Registry) Option {
	return func(o *options) {
		o.metrics = r
	}
}

// WithAutoSave configures the auto-save scheduler. Its Logger and Metrics
// default to the Store's.
func WithAutoSave(opts autosave.Options) Option {
	return func(o *options) {
		o.autosave = opts
	}
}

// New returns a Store delegating to p.
func New(p Provider, opts ...Option) *Store {
	o := options{
		logger:  slog.Default(),
		metrics: metric.Global(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.autosave.Logger == nil {
		o.autosave.Logger = o.logger
	}
	if o.autosave.Metrics == nil {
		o.autosave.Metrics = o.metrics
	}

	s := &Store{
		metrics: o.metrics,
		logger:  o.logger,
	}
	s.active.Store(&holder{p: p})
	s.autosave = autosave.New(autosave.SaverFunc(s.Save), o.autosave)
	return s
}

// Provider returns the active provider.
func (s *Store) Provider() Provider {
	return s.active.Load().p
}

// Initialize makes p the active provider and returns the previous one,
// which the caller may close. Calls already running finish on the
// provider they started with.
func (s *Store) Initialize(p Provider) Provider {
	old := s.active.Swap(&holder{p: p})
	s.logger.Info("storage provider replaced")
	return old.p
}

// Save stores value under key. Failures are logged.
func (s *Store) Save(key string, value any) {
	_ = s.run(OpSave, key, func(p Provider) error {
		return p.Save(key, value)
	})
}

// LoadInto decodes the record of key into target, a non-nil pointer, and
// reports whether it did. On any failure target is left untouched, so it
// still holds the caller's default.
func (s *Store) LoadInto(key string, target any) bool {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		s.report(OpLoad, key, errs.ErrUnsupportedShape.WithDetailsf("load target %T is not a non-nil pointer", target), 0)
		return false
	}

	// Decode into a fresh value so a failure halfway through cannot leave
	// a partial result in target.
	fresh := reflect.New(rv.Type().Elem())
	err := s.run(OpLoad, key, func(p Provider) error {
		return p.Load(key, fresh.Interface())
	})
	if err != nil {
		return false
	}
	rv.Elem().Set(fresh.Elem())
	return true
}

// LoadFrom returns the value stored under key in s, or def when there is
// none or it cannot be read. When T is a pointer type the record is decoded
// into a newly allocated value and a pointer to it is returned; def is
// never written to.
func LoadFrom[T any](s *Store, key string, def T) T {
	var v T
	target := any(&v)

	var fresh reflect.Value
	if rt := reflect.TypeFor[T](); rt.Kind() == reflect.Pointer {
		fresh = reflect.New(rt.Elem())
		target = fresh.Interface()
	}

	err := s.run(OpLoad, key, func(p Provider) error {
		return p.Load(key, target)
	})
	if err != nil {
		return def
	}
	if fresh.IsValid() {
		return fresh.Interface().(T)
	}
	return v
}

// Exists reports whether a record is stored under key. Failures count as
// absent.
func (s *Store) Exists(key string) bool {
	var ok bool
	_ = s.run(OpExists, key, func(p Provider) error {
		var err error
		ok, err = p.Exists(key)
		return err
	})
	return ok
}

// Delete removes the record of key. Failures are logged.
func (s *Store) Delete(key string) {
	_ = s.run(OpDelete, key, func(p Provider) error {
		return p.Delete(key)
	})
}

// GetAllKeys lists the stored keys. Records the manifest cannot name are
// listed by FileId. Failures yield an empty list.
func (s *Store) GetAllKeys() []string {
	var keys []string
	err := s.run(OpKeys, "", func(p Provider) error {
		var err error
		keys, err = p.Keys()
		return err
	})
	if err != nil || keys == nil {
		return []string{}
	}
	return keys
}

// RestoreBackup rolls the record of key back to its newest backup and
// reports whether it did.
func (s *Store) RestoreBackup(key string) bool {
	return s.run(OpRestore, key, func(p Provider) error {
		return p.Restore(key)
	}) == nil
}

// RegisterAutoSave adds ref to the auto-save set under key, replacing any
// earlier entry. ref should be a pointer so each tick saves its live value.
func (s *Store) RegisterAutoSave(key string, ref any) {
	s.autosave.Register(key, ref)
}

// UnregisterAutoSave removes key from the auto-save set.
func (s *Store) UnregisterAutoSave(key string) {
	s.autosave.Unregister(key)
}

// FlushAutoSave saves every registered entry now and returns how many
// saves were attempted.
func (s *Store) FlushAutoSave(ctx context.Context) int {
	return s.autosave.SaveAll(ctx)
}

// AutoSaveKeys lists the keys registered for auto-save.
func (s *Store) AutoSaveKeys() []string {
	return s.autosave.Keys()
}

// Close stops auto-save and closes the active provider.
func (s *Store) Close() error {
	s.autosave.Stop()
	return s.Provider().Close()
}

// CloseOnSignal blocks until SIGINT, SIGTERM or the end of ctx, then
// saves every auto-save entry and closes the Store, giving both steps
// timeout to finish.
func (s *Store) CloseOnSignal(ctx context.Context, timeout time.Duration) error {
	h := shutdown.NewHandler(timeout, s.logger)
	h.OnShutdown("close", func(context.Context) error {
		return s.Close()
	})
	h.OnShutdown("flush auto-save", func(ctx context.Context) error {
		n := s.FlushAutoSave(ctx)
		s.logger.Info("auto-save flushed", "saved", n)
		return ctx.Err()
	})
	return h.Wait(ctx)
}

// run calls fn on the active provider, converting a panic into
// errs.ErrPanic, and reports the outcome.
func (s *Store) run(op, key string, fn func(Provider) error) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = errs.ErrPanic.WithDetails(fmt.Sprint(r))
		}
		s.report(op, key, err, time.Since(start))
	}()
	return fn(s.Provider())
}

func (s *Store) report(op, key string, err error, elapsed time.Duration) {
	switch {
	case err == nil:
		s.metrics.ObserveOperation(op, metric.ResultOK, elapsed)
	case errors.Is(err, errs.ErrNotFound):
		s.metrics.ObserveOperation(op, metric.ResultNotFound, elapsed)
		s.logger.Debug("no saved data",
			"op", op,
			"key", key)
	case errors.Is(err, errs.ErrIntegrityMismatch):
		s.metrics.ObserveOperation(op, metric.ResultIntegrity, elapsed)
		s.logger.Warn("saved data failed integrity check, ignoring it",
			"op", op,
			"key", key,
			"category", errs.CategoryIntegrity,
			"error", err)
	default:
		s.metrics.ObserveOperation(op, metric.ResultError, elapsed)
		s.logger.Error("storage operation failed",
			"op", op,
			"key", key,
			"category", errs.Category(err),
			"error", err)
	}
}
