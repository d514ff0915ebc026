package pool

import (
	"runtime"
	"time"

	"github.com/utkarsh5026/parcol/internal/algorithms"
	"github.com/utkarsh5026/parcol/internal/scheduler"
	"golang.org/x/time/rate"
)

// Option is a functional option for configuring a Pool.
type Option func(*config)

// SchedulingStrategyType re-exports the scheduler strategy selector.
type SchedulingStrategyType = scheduler.SchedulingStrategyType

const (
	SchedulingFIFO       = scheduler.SchedulingFIFO
	SchedulingRoundRobin = scheduler.SchedulingRoundRobin
)

// BackoffType selects the retry delay strategy.
type BackoffType = algorithms.BackoffType

const (
	BackoffExponential  = algorithms.BackoffExponential
	BackoffJittered     = algorithms.BackoffJittered
	BackoffDecorrelated = algorithms.BackoffDecorrelated
)

type config struct {
	workerCount int
	taskBuffer  int
	strategy    SchedulingStrategyType
	rateLimiter *rate.Limiter
	pinWorkers  bool

	maxAttempts         int
	backoffType         BackoffType
	backoffInitialDelay time.Duration
	backoffMaxDelay     time.Duration
	backoffJitterFactor float64

	onUnitStart func(unitID, workerID int64)
	onUnitEnd   func(unitID, workerID int64, elapsed time.Duration)
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		workerCount:         runtime.GOMAXPROCS(0),
		taskBuffer:          -1,
		strategy:            SchedulingFIFO,
		maxAttempts:         1,
		backoffType:         BackoffExponential,
		backoffInitialDelay: 100 * time.Millisecond,
		backoffMaxDelay:     5 * time.Second,
		backoffJitterFactor: 0.1,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.taskBuffer < 0 {
		cfg.taskBuffer = cfg.workerCount
	}

	return cfg
}

// WithWorkerCount sets the number of concurrent workers.
// If not specified, defaults to runtime.GOMAXPROCS(0).
func WithWorkerCount(count int) Option {
	return func(cfg *config) {
		if count > 0 {
			cfg.workerCount = count
		}
	}
}

// WithTaskBuffer sets the capacity of the scheduler queues.
// If not specified, defaults to the number of workers.
func WithTaskBuffer(size int) Option {
	return func(cfg *config) {
		if size >= 0 {
			cfg.taskBuffer = size
		}
	}
}

// WithSchedulingStrategy selects how tasks are distributed among workers.
func WithSchedulingStrategy(strategy SchedulingStrategyType) Option {
	return func(cfg *config) {
		cfg.strategy = strategy
	}
}

// WithRateLimit limits how many tasks may start per second.
// burst is the number of tasks that may start back to back.
//
// Example:
//
//	WithRateLimit(10, 5) // Allow 10 tasks/sec with burst of 5
func WithRateLimit(tasksPerSecond float64, burst int) Option {
	return func(cfg *config) {
		if tasksPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		}
	}
}

// WithRetryPolicy retries failing tasks up to maxAttempts times in total.
// initialDelay is the delay before the first retry; later delays follow the
// configured backoff (exponential unless WithBackoff says otherwise).
// Errors wrapped with Permanent, context.Canceled and context.DeadlineExceeded
// are never retried.
func WithRetryPolicy(maxAttempts int, initialDelay time.Duration) Option {
	return func(cfg *config) {
		if maxAttempts > 0 {
			cfg.maxAttempts = maxAttempts
		}
		if initialDelay > 0 {
			cfg.backoffInitialDelay = initialDelay
		}
	}
}

// WithBackoff configures the retry delay strategy. It has no effect unless
// WithRetryPolicy allows more than one attempt.
func WithBackoff(kind BackoffType, initialDelay, maxDelay time.Duration, jitterFactor float64) Option {
	return func(cfg *config) {
		cfg.backoffType = kind
		if initialDelay > 0 {
			cfg.backoffInitialDelay = initialDelay
		}
		if maxDelay > 0 {
			cfg.backoffMaxDelay = maxDelay
		}
		if jitterFactor >= 0 {
			cfg.backoffJitterFactor = jitterFactor
		}
	}
}

// WithCPUPinning locks every worker goroutine to an OS thread bound to one CPU.
// Only effective on Linux and Windows.
func WithCPUPinning() Option {
	return func(cfg *config) {
		cfg.pinWorkers = true
	}
}

// WithOnUnitStart registers a hook called on the worker right before a task runs.
func WithOnUnitStart(fn func(unitID, workerID int64)) Option {
	return func(cfg *config) {
		cfg.onUnitStart = fn
	}
}

// WithOnUnitEnd registers a hook called on the worker after a task ran.
func WithOnUnitEnd(fn func(unitID, workerID int64, elapsed time.Duration)) Option {
	return func(cfg *config) {
		cfg.onUnitEnd = fn
	}
}

func (c *config) schedulerConfig() *scheduler.Config {
	return &scheduler.Config{
		WorkerCount:        c.workerCount,
		TaskBuffer:         c.taskBuffer,
		SchedulingStrategy: c.strategy,
		RateLimiter:        c.rateLimiter,
		OnUnitStart:        c.onUnitStart,
		OnUnitEnd:          c.onUnitEnd,
	}
}
