package metric

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "savevault"

// Operation results.
const (
	ResultOK        = "ok"
	ResultNotFound  = "not_found"
	ResultIntegrity = "integrity"
	ResultError     = "error"
)

// Registry holds all SaveVault metrics.
type Registry struct {
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	AutoSaveTicks     prometheus.Counter
	AutoSaveSaves     prometheus.Counter
	Backups           prometheus.Counter
}

// New creates the metrics and registers them on reg. A nil reg leaves
// them unregistered, which is what tests usually want.
//
// Registering on a registerer that already holds SaveVault metrics reuses
// the existing collectors.
func New(reg prometheus.Registerer) (*Registry, error) {
	r := &Registry{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of store operations by result",
			},
			[]string{"op", "result"},
		),
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Store operation duration in seconds",
				Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"op"},
		),
		AutoSaveTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "autosave",
			Name:      "ticks_total",
			Help:      "Total number of auto-save loop iterations",
		}),
		AutoSaveSaves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "autosave",
			Name:      "saves_total",
			Help:      "Total number of saves issued by the auto-save loop",
		}),
		Backups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backups_total",
			Help:      "Total number of backups taken before an overwrite",
		}),
	}

	if reg == nil {
		return r, nil
	}

	var err error
	if r.Operations, err = register(reg, r.Operations); err != nil {
		return nil, err
	}
	if r.OperationDuration, err = register(reg, r.OperationDuration); err != nil {
		return nil, err
	}
	if r.AutoSaveTicks, err = register(reg, r.AutoSaveTicks); err != nil {
		return nil, err
	}
	if r.AutoSaveSaves, err = register(reg, r.AutoSaveSaves); err != nil {
		return nil, err
	}
	if r.Backups, err = register(reg, r.Backups); err != nil {
		return nil, err
	}
	return r, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

var (
	globalOnce sync.Once
	global     *Registry
)

// Global returns the registry registered on prometheus.DefaultRegisterer.
func Global() *Registry {
	globalOnce.Do(func() {
		r, err := New(prometheus.DefaultRegisterer)
		if err != nil {
			r, _ = New(nil)
		}
		global = r
	})
	return global
}

// ObserveOperation records one store operation.
func (r *Registry) ObserveOperation(op, result string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.Operations.WithLabelValues(op, result).Inc()
	r.OperationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// AutoSaveTick records one auto-save loop iteration.
func (r *Registry) AutoSaveTick() {
	if r == nil {
		return
	}
	r.AutoSaveTicks.Inc()
}

// AutoSaveSave records one save issued by the auto-save loop.
func (r *Registry) AutoSaveSave() {
	if r == nil {
		return
	}
	r.AutoSaveSaves.Inc()
}

// BackupTaken records one backup.
func (r *Registry) BackupTaken() {
	if r == nil {
		return
	}
	r.Backups.Inc()
}
