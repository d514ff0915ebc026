// Package pool provides a long-lived, fixed-size, generic worker pool.
//
// A Pool starts its workers as soon as it is created and keeps them until
// Shutdown. Tasks of any type can be submitted to the same pool: Submit is a
// package-level generic function that wraps the typed task, its process
// function and its future into one scheduler unit.
//
// # Basic Usage
//
//	p := pool.New(pool.WithWorkerCount(4))
//	defer p.Shutdown(5 * time.Second)
//
//	future, err := pool.Submit(p, 21, func(ctx context.Context, n int) (int, error) {
//	    return n * 2, nil
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	value, _, err := future.Get()
//
// # Continuations
//
// Result handlers passed to Submit run on the worker that executed the task,
// after the future has been completed. They are the hook the job package uses
// to feed chunk outcomes into an aggregator without a waiting goroutine.
//
// # Retry Logic
//
// Tasks can be retried on failure with a configurable backoff:
//
//	p := pool.New(
//	    pool.WithWorkerCount(4),
//	    pool.WithRetryPolicy(3, 100*time.Millisecond),
//	    pool.WithBackoff(pool.BackoffJittered, 100*time.Millisecond, 2*time.Second, 0.2),
//	)
//
// Whatever the number of attempts, the outcome of a task is reported once.
//
// # Rate Limiting
//
//	p := pool.New(pool.WithRateLimit(50, 10)) // 50 tasks/sec, burst of 10
//
// # Scheduling
//
// Two strategies decide how tasks reach idle workers:
//
//   - SchedulingFIFO (default): one shared queue, oldest task first
//   - SchedulingRoundRobin: one channel per worker, tasks dealt out in turn
//
// # Panics
//
// A panic inside a process function is recovered and delivered as an error
// wrapping ErrWorkerPanic, with the stack trace of the panicking goroutine.
package pool
