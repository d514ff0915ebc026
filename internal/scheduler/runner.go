package scheduler

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/utkarsh5026/parcol/internal/types"
)

// runner wraps unit execution with rate limiting, hooks and a last-resort
// panic guard that keeps the worker alive.
type runner struct {
	conf *Config
}

func newRunner(conf *Config) *runner {
	return &runner{conf: conf}
}

// execute runs u or, when it cannot start, aborts it. Either way the unit's
// outcome is reported exactly once.
func (r *runner) execute(ctx context.Context, u *types.Unit, workerID int64) {
	if err := ctx.Err(); err != nil {
		u.Abort(err)
		return
	}

	if r.conf.RateLimiter != nil {
		if err := r.conf.RateLimiter.Wait(ctx); err != nil {
			// the limiter's error does not wrap context errors
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			u.Abort(err)
			return
		}
	}

	if r.conf.OnUnitStart != nil {
		r.conf.OnUnitStart(u.Id, workerID)
	}

	start := time.Now()
	r.runGuarded(ctx, u, workerID)

	if r.conf.OnUnitEnd != nil {
		r.conf.OnUnitEnd(u.Id, workerID, time.Since(start))
	}
}

// runGuarded calls u.Run. Units built by the pool recover their own panics; this
// guard only catches panics that escape the unit wrapper itself.
func (r *runner) runGuarded(ctx context.Context, u *types.Unit, workerID int64) {
	defer func() {
		if rec := recover(); rec != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			debugLog("unit %d escaped panic: %v", u.Id, rec)
			u.Abort(fmt.Errorf("worker panic: %v\nstack trace:\n%s", rec, buf[:n]))
		}
	}()

	u.Run(ctx, workerID)
}

// drainQueue runs everything currently buffered in q after cancellation. The
// cancelled ctx makes execute abort each unit, so every queued unit still
// reports an outcome.
func drainQueue(ctx context.Context, q <-chan *types.Unit, r *runner, workerID int64) {
	for {
		select {
		case u, ok := <-q:
			if !ok {
				return
			}
			r.execute(ctx, u, workerID)
		default:
			return
		}
	}
}
