package types

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrFutureTimeout is returned by GetWithTimeout when the result did not arrive in time.
var ErrFutureTimeout = errors.New("future: timed out waiting for result")

// Future is a single-assignment handle to the result of an asynchronously executed task.
//
// A Future is completed exactly once by the worker that ran the task. Any number of
// goroutines may wait on it; all of them observe the same value, key and error.
//
// Type parameters:
//   - R: The result value type
//   - K: The key type identifying the task
type Future[R any, K comparable] struct {
	once   sync.Once
	done   chan struct{}
	result Result[R, K]
}

// NewFuture creates a Future that is not yet completed.
func NewFuture[R any, K comparable]() *Future[R, K] {
	return &Future[R, K]{
		done: make(chan struct{}),
	}
}

// Complete stores r as the future's outcome and wakes every waiter.
// Only the first call has an effect; it reports whether this call completed the future.
func (f *Future[R, K]) Complete(r Result[R, K]) bool {
	completed := false
	f.once.Do(func() {
		f.result = r
		close(f.done)
		completed = true
	})
	return completed
}

// Get blocks until the result is available and returns it.
func (f *Future[R, K]) Get() (R, K, error) {
	<-f.done
	return f.result.Value, f.result.Key, f.result.Error
}

// GetWithContext blocks until the result is available or ctx is done.
// When ctx ends first the zero value, zero key and ctx.Err() are returned.
func (f *Future[R, K]) GetWithContext(ctx context.Context) (R, K, error) {
	select {
	case <-f.done:
		return f.result.Value, f.result.Key, f.result.Error
	case <-ctx.Done():
		var (
			zeroR R
			zeroK K
		)
		return zeroR, zeroK, ctx.Err()
	}
}

// GetWithTimeout waits at most timeout for the result.
// A non-positive timeout waits forever.
func (f *Future[R, K]) GetWithTimeout(timeout time.Duration) (R, K, error) {
	if timeout <= 0 {
		return f.Get()
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.result.Value, f.result.Key, f.result.Error
	case <-timer.C:
		var (
			zeroR R
			zeroK K
		)
		return zeroR, zeroK, ErrFutureTimeout
	}
}

// TryGet returns the result without blocking. ready is false while the task is pending.
func (f *Future[R, K]) TryGet() (value R, key K, err error, ready bool) {
	select {
	case <-f.done:
		return f.result.Value, f.result.Key, f.result.Error, true
	default:
		return value, key, nil, false
	}
}

// Done returns a channel that is closed once the future is completed.
func (f *Future[R, K]) Done() <-chan struct{} {
	return f.done
}

// IsReady reports whether the future has been completed.
func (f *Future[R, K]) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
