package pool

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/utkarsh5026/parcol/internal/algorithms"
	"github.com/utkarsh5026/parcol/internal/cpu"
	"github.com/utkarsh5026/parcol/internal/scheduler"
	"github.com/utkarsh5026/parcol/internal/types"
	"golang.org/x/sync/errgroup"
)

// Pool is a fixed-size set of long-lived workers that execute submitted tasks.
// A single Pool may be shared by any number of concurrent users.
type Pool struct {
	conf     *config
	strategy scheduler.SchedulingStrategy

	closed atomic.Bool

	unitIDCounter atomic.Int64
	cancel        context.CancelFunc
	done          chan struct{} // closed when all workers have returned
}

// New creates a Pool and starts its workers immediately.
//
// Default configuration:
//   - workerCount: runtime.GOMAXPROCS(0)
//   - taskBuffer: equal to workerCount
//   - scheduling: SchedulingFIFO
//   - maxAttempts: 1 (no retries)
//
// Example:
//
//	p := pool.New(pool.WithWorkerCount(8), pool.WithTaskBuffer(64))
//	defer p.Shutdown(5 * time.Second)
func New(opts ...Option) *Pool {
	cfg := newConfig(opts...)

	strategy, err := scheduler.CreateSchedulingStrategy(cfg.schedulerConfig())
	if err != nil {
		debugLog("falling back to fifo scheduling: %v", err)
		cfg.strategy = SchedulingFIFO
		strategy, _ = scheduler.CreateSchedulingStrategy(cfg.schedulerConfig())
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		conf:     cfg,
		strategy: strategy,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	var g errgroup.Group
	for i := range cfg.workerCount {
		g.Go(func() error {
			if cfg.pinWorkers {
				release := cpu.Pin(i)
				defer release()
			}
			return strategy.Worker(ctx, int64(i))
		})
	}

	go func() {
		_ = g.Wait()
		close(p.done)
	}()

	debugLog("pool started with %d workers (%s)", cfg.workerCount, cfg.strategy)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.conf.workerCount
}

// Submit queues task for execution by exactly one worker of p.
//
// The outcome (value or error) is delivered to the returned Future and then to
// every handler, in order, on the worker goroutine. A panic in fn is delivered
// as an error wrapping ErrWorkerPanic.
//
// Submit blocks while the scheduler queue is full. It returns ErrPoolClosed
// once p has been shut down.
//
// Example:
//
//	future, err := pool.Submit(p, 42, func(ctx context.Context, n int) (string, error) {
//	    return strconv.Itoa(n), nil
//	})
//	value, _, err := future.Get()
func Submit[T, R any](p *Pool, task T, fn ProcessFunc[T, R], handlers ...ResultHandler[T, R]) (*Future[R, int64], error) {
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}

	id := p.unitIDCounter.Add(1)
	future := types.NewFuture[R, int64]()

	report := func(r *types.Result[R, int64]) {
		if !future.Complete(*r) {
			return
		}
		for _, h := range handlers {
			h(task, r)
		}
	}

	run := func(ctx context.Context, _ int64) {
		value, err := processWithRecovery(ctx, p.conf, task, fn)
		report(types.NewResult(value, id, err))
	}

	abort := func(err error) {
		var zero R
		report(types.NewResult(zero, id, err))
	}

	if err := p.strategy.Submit(types.NewUnit(id, run, abort)); err != nil {
		if errors.Is(err, scheduler.ErrSchedulerClosed) {
			return nil, ErrPoolClosed
		}
		return nil, err
	}

	return future, nil
}

// Shutdown stops accepting tasks, lets workers drain everything already queued
// and waits for them to exit.
//
// A non-positive timeout waits forever. When the timeout elapses, queued tasks
// that have not started are aborted with context.Canceled and
// ErrShutdownTimeout is returned. Calling Shutdown twice returns ErrPoolClosed.
func (p *Pool) Shutdown(timeout time.Duration) error {
	if !p.closed.CompareAndSwap(false, true) {
		return ErrPoolClosed
	}

	p.strategy.Shutdown()

	err := waitUntil(p.done, timeout)
	p.cancel()
	if err != nil {
		debugLog("shutdown timed out after %v", timeout)
	}
	return err
}

// processWithRecovery runs fn with panic recovery and the configured retry
// policy. The result of the last attempt is returned. Errors wrapped with
// Permanent and context errors end the attempts at once.
func processWithRecovery[T, R any](ctx context.Context, conf *config, task T, fn ProcessFunc[T, R]) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = fmt.Errorf("%w: %v\nstack trace:\n%s", ErrWorkerPanic, r, buf[:n])
		}
	}()

	maxAttempts := max(conf.maxAttempts, 1)
	var backoff algorithms.BackoffStrategy
	if maxAttempts > 1 {
		backoff = algorithms.NewBackoffStrategy(
			conf.backoffType,
			conf.backoffInitialDelay,
			conf.backoffMaxDelay,
			conf.backoffJitterFactor,
		)
	}

	for attempt := range maxAttempts {
		if attempt > 0 {
			delay := backoff.NextDelay(attempt-1, err)
			debugLog("retrying after %v (attempt %d/%d): %v", delay, attempt+1, maxAttempts, err)
			if waitErr := sleepCtx(ctx, delay); waitErr != nil {
				return result, waitErr
			}
		}

		result, err = fn(ctx, task)
		if err == nil {
			return result, nil
		}
		if !retryable(ctx, err) {
			return result, err
		}
	}

	return result, err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// waitUntil blocks until d is closed or the timeout is reached.
func waitUntil(d <-chan struct{}, timeout time.Duration) error {
	if timeout <= 0 {
		<-d
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-d:
		return nil
	case <-timer.C:
		return ErrShutdownTimeout
	}
}
