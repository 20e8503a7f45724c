package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/savevault-go/internal/telemetry/metric"
	"github.com/yndnr/savevault-go/pkg/cmap"
)

// DefaultUnit is the shortest wait between ticks.
const DefaultUnit = time.Second

// Saver persists one value. Failures are the Saver's to report.
type Saver interface {
	Save(key string, value any)
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(key string, value any)

// Save calls f(key, value).
func (f SaverFunc) Save(key string, value any) {
	f(key, value)
}

// Options configures a Scheduler.
type Options struct {
	// Interval is read before every wait. Results below Unit are raised
	// to Unit.
	Interval func() time.Duration

	// Enabled is read on each tick; a disabled tick saves nothing. Nil
	// means always enabled.
	Enabled func() bool

	// Unit is the minimum wait. Defaults to DefaultUnit.
	Unit time.Duration

	// MaxSavesPerSecond throttles saves within a tick. 0 disables it.
	MaxSavesPerSecond float64

	Metrics *metric.Registry
	Logger  *slog.Logger
}

// Scheduler runs the auto-save loop.
type Scheduler struct {
	saver    Saver
	entries  *cmap.Map[any]
	interval func() time.Duration
	enabled  func() bool
	unit     time.Duration
	limiter  *rate.Limiter
	metrics  *metric.Registry
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a Scheduler. The loop does not run until the first
// Register or an explicit Start.
func New(saver Saver, opts Options) *Scheduler {
	if opts.Unit <= 0 {
		opts.Unit = DefaultUnit
	}
	if opts.Interval == nil {
		opts.Interval = func() time.Duration { return opts.Unit }
	}
	if opts.Enabled == nil {
		opts.Enabled = func() bool { return true }
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Scheduler{
		saver:    saver,
		entries:  cmap.New[any](),
		interval: opts.Interval,
		enabled:  opts.Enabled,
		unit:     opts.Unit,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
	}
	if opts.MaxSavesPerSecond > 0 {
		// Burst of one spreads the saves of a tick evenly.
		s.limiter = rate.NewLimiter(rate.Limit(opts.MaxSavesPerSecond), 1)
	}
	return s
}

// Register adds or replaces the entry for key. Empty keys and nil
// references are ignored. A new key starts the loop, which keeps ticking
// while disabled so that enabling it later takes effect.
func (s *Scheduler) Register(key string, ref any) {
	if key == "" || ref == nil {
		return
	}
	if _, replaced := s.entries.Swap(key, ref); !replaced {
		s.logger.Debug("auto-save registered", "key", key)
		s.Start()
	}
}

// Unregister removes the entry for key.
func (s *Scheduler) Unregister(key string) {
	if _, ok := s.entries.Pop(key); ok {
		s.logger.Debug("auto-save unregistered", "key", key)
	}
}

// Len returns the number of registered entries.
func (s *Scheduler) Len() int {
	return s.entries.Count()
}

// Keys returns the registered keys in sorted order.
func (s *Scheduler) Keys() []string {
	return s.entries.Keys()
}

// Running reports whether the loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start starts the loop if it is not already running.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.loop(s.stopCh, s.doneCh)
}

// Stop stops the loop and waits for it to exit. It is safe to call more
// than once, and Start may be called again afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)
	<-doneCh
}

// SaveAll saves every registered entry once and returns how many saves
// were issued. It stops early when ctx is done.
func (s *Scheduler) SaveAll(ctx context.Context) int {
	saved := 0
	for _, e := range s.entries.Items() {
		if e.Value == nil {
			continue
		}
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return saved
			}
		} else if ctx.Err() != nil {
			return saved
		}
		s.saver.Save(e.Key, e.Value)
		s.metrics.AutoSaveSave()
		saved++
	}
	return saved
}

func (s *Scheduler) wait() time.Duration {
	d := s.interval()
	if d < s.unit {
		d = s.unit
	}
	return d
}

func (s *Scheduler) loop(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	timer := time.NewTimer(s.wait())
	defer timer.Stop()

	s.logger.Debug("auto-save loop started")
	for {
		select {
		case <-timer.C:
			s.metrics.AutoSaveTick()
			if s.enabled() {
				n := s.SaveAll(ctx)
				s.logger.Debug("auto-save tick", "saved", n)
			}
			timer.Reset(s.wait())
		case <-stopCh:
			s.logger.Debug("auto-save loop stopped")
			return
		}
	}
}
