package savevault

import (
	"log/slog"
	"time"

	"github.com/yndnr/savevault-go/internal/autosave"
	"github.com/yndnr/savevault-go/internal/storage"
	"github.com/yndnr/savevault-go/internal/telemetry/metric"
	"github.com/yndnr/savevault-go/pkg/config"
)

// NewFromConfig builds a file provider from cfg and returns a Store over
// it. Validation problems are logged, not enforced; components that cannot
// be built from cfg make NewFromConfig fail.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Store, error) {
	o := options{
		logger:  slog.Default(),
		metrics: metric.Global(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	p, err := OpenProvider(cfg, o.logger, o.metrics)
	if err != nil {
		return nil, err
	}

	as := cfg.AutoSave
	auto := []Option{WithAutoSave(autosave.Options{
		Interval:          func() time.Duration { return seconds(as.Interval) },
		Enabled:           func() bool { return as.Enabled },
		MaxSavesPerSecond: as.MaxSavesPerSecond,
	})}
	// Caller options come last so an explicit WithAutoSave wins.
	return New(p, append(auto, opts...)...), nil
}

// OpenProvider builds the file provider described by cfg.
func OpenProvider(cfg *config.Config, logger *slog.Logger, metrics *metric.Registry) (Provider, error) {
	p, err := storage.Open(cfg, logger, metrics)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
