package pool_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/utkarsh5026/parcol/pool"
)

func TestPool_RetryPolicy(t *testing.T) {
	tests := []struct {
		name        string
		maxAttempts int
		failures    int32
		wantErr     bool
		wantCalls   int32
	}{
		{"succeeds first try", 3, 0, false, 1},
		{"succeeds after retries", 3, 2, false, 3},
		{"exhausts attempts", 2, 5, true, 2},
		{"no retry by default", 0, 1, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := []pool.Option{pool.WithWorkerCount(1)}
			if tt.maxAttempts > 0 {
				opts = append(opts, pool.WithRetryPolicy(tt.maxAttempts, time.Millisecond))
			}
			p := pool.New(opts...)
			defer p.Shutdown(time.Second)

			var calls atomic.Int32
			var handlerCalls atomic.Int32
			done := make(chan struct{})

			future, err := pool.Submit(p, 1, func(context.Context, int) (int, error) {
				if calls.Add(1) <= tt.failures {
					return 0, errors.New("transient")
				}
				return 7, nil
			}, func(int, *pool.Result[int, int64]) {
				handlerCalls.Add(1)
				close(done)
			})
			if err != nil {
				t.Fatalf("submit: %v", err)
			}

			value, _, err := future.Get()
			<-done

			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && value != 7 {
				t.Errorf("expected 7, got %d", value)
			}
			if calls.Load() != tt.wantCalls {
				t.Errorf("expected %d calls, got %d", tt.wantCalls, calls.Load())
			}
			if handlerCalls.Load() != 1 {
				t.Errorf("outcome must be reported once, handler ran %d times", handlerCalls.Load())
			}
		})
	}
}

func TestPool_NoRetryOnFinalErrors(t *testing.T) {
	sentinel := errors.New("stop")

	tests := []struct {
		name string
		err  error
	}{
		{"permanent", pool.Permanent(sentinel)},
		{"wrapped permanent", fmt.Errorf("outer: %w", pool.Permanent(sentinel))},
		{"canceled", context.Canceled},
		{"deadline exceeded", fmt.Errorf("slow: %w", context.DeadlineExceeded)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := pool.New(pool.WithWorkerCount(1), pool.WithRetryPolicy(5, 200*time.Millisecond))
			defer p.Shutdown(time.Second)

			var calls atomic.Int32
			start := time.Now()
			future, err := pool.Submit(p, 0, func(context.Context, int) (int, error) {
				calls.Add(1)
				return 0, tt.err
			})
			if err != nil {
				t.Fatalf("submit: %v", err)
			}

			_, _, err = future.GetWithTimeout(time.Second)
			if !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
			if calls.Load() != 1 {
				t.Errorf("expected a single attempt, got %d", calls.Load())
			}
			if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
				t.Errorf("final error waited on backoff for %v", elapsed)
			}
		})
	}
}

func TestPermanent(t *testing.T) {
	if pool.Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}

	base := errors.New("base")
	err := pool.Permanent(base)
	if !errors.Is(err, base) {
		t.Error("Permanent should unwrap to the original error")
	}
	if err.Error() != "base" {
		t.Errorf("expected message %q, got %q", "base", err.Error())
	}
}

func TestPool_Backoff(t *testing.T) {
	kinds := []pool.BackoffType{pool.BackoffExponential, pool.BackoffJittered, pool.BackoffDecorrelated}

	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			p := pool.New(
				pool.WithWorkerCount(1),
				pool.WithRetryPolicy(3, time.Millisecond),
				pool.WithBackoff(kind, time.Millisecond, 5*time.Millisecond, 0.5),
			)
			defer p.Shutdown(time.Second)

			var calls atomic.Int32
			future, err := pool.Submit(p, 0, func(context.Context, int) (int, error) {
				if calls.Add(1) < 3 {
					return 0, errors.New("again")
				}
				return 1, nil
			})
			if err != nil {
				t.Fatalf("submit: %v", err)
			}

			if v, _, err := future.GetWithTimeout(time.Second); err != nil || v != 1 {
				t.Errorf("expected 1, got %d (err %v)", v, err)
			}
		})
	}
}

func TestPool_RateLimit(t *testing.T) {
	p := pool.New(pool.WithWorkerCount(4), pool.WithRateLimit(100, 1))
	defer p.Shutdown(time.Second)

	start := time.Now()
	futures := make([]*pool.Future[int, int64], 0, 6)
	for i := range 6 {
		f, err := pool.Submit(p, i, double)
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		futures = append(futures, f)
	}
	for _, f := range futures {
		if _, _, err := f.Get(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// burst 1 at 100/s: five waits of roughly 10ms each
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("rate limit not applied, 6 tasks took %v", elapsed)
	}
}
