package cabaliser

import (
	"log/slog"

	"github.com/hupe1980/cabaliser/internal/pool"
	"github.com/hupe1980/cabaliser/internal/resource"
	"github.com/hupe1980/cabaliser/tableau"
	"github.com/hupe1980/cabaliser/tracker"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	tracker          tracker.Tracker
	pool             *pool.Pool
	workers          int
	kernel           tableau.Kernel
	block            bool
	rc               *resource.Controller
	teleportInput    bool
}

// Option configures a Widget.
type Option func(*options)

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &cabaliser.BasicMetricsCollector{}
//	w, _ := cabaliser.New(3, 20, cabaliser.WithMetricsCollector(metrics))
//	// ... apply instructions ...
//	stats := metrics.GetStats()
//	fmt.Printf("RZ: %d, flushed: %d\n", stats.RZCount, stats.FlushedCliffords)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithTracker sets the Pauli-frame tracker. The widget closes it on Close.
func WithTracker(tr tracker.Tracker) Option {
	return func(o *options) {
		if tr == nil {
			tr = tracker.Noop{}
		}
		o.tracker = tr
	}
}

// WithPool runs gate updates on a caller-owned pool. The pool may be shared
// by several widgets and is not closed by the widget.
func WithPool(p *pool.Pool) Option {
	return func(o *options) {
		o.pool = p
	}
}

// WithWorkers runs gate updates on a pool of n workers owned by the widget.
// n <= 0 starts GOMAXPROCS workers. Ignored when WithPool is set.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
		if n <= 0 {
			o.workers = -1
		}
	}
}

// WithKernel selects the scalar or vector gate engine (default vector).
func WithKernel(k tableau.Kernel) Option {
	return func(o *options) {
		o.kernel = k
	}
}

// WithBlockDecomposition selects the tile-cached decomposition.
func WithBlockDecomposition() Option {
	return func(o *options) {
		o.block = true
	}
}

// WithResourceController reserves the tableau buffer against rc's memory limit.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithTeleportInput teleports the initial qubits at construction, so that
// the input state can be supplied by measurement later.
func WithTeleportInput() Option {
	return func(o *options) {
		o.teleportInput = true
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		tracker:          tracker.Noop{},
		kernel:           tableau.KernelVector,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
