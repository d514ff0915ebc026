package job

import (
	"context"
	"fmt"
	"iter"

	"github.com/utkarsh5026/parcol/pool"
)

// Dispatch submits every chunk to p, in index order, and returns the Job that
// completes once all of them have reported.
//
// Each submission carries a continuation that delivers the chunk's Outcome to
// the job's aggregator, so no goroutine waits on individual chunks. A chunk
// that has not started when a lower-indexed chunk has already failed, or when
// ctx is done, reports a failure without calling fn.
//
// If p rejects a submission (for instance because it was shut down), the error
// is returned together with the Job; the chunks that were not submitted report
// ErrChunkSkipped so that the Job still completes.
//
// chunks must be indexed by position, as Split produces them.
func Dispatch[T, R any](ctx context.Context, p *pool.Pool, chunks []Chunk[T], fn ChunkFunc[T, R]) (*Job[R], error) {
	for k, c := range chunks {
		if c.Index != k {
			return nil, fmt.Errorf("%w: chunk at position %d has index %d", ErrChunkOutOfRange, k, c.Index)
		}
	}

	agg := NewAggregator[R](len(chunks))

	elements, size := 0, 0
	for _, c := range chunks {
		elements += len(c.Items)
		size = max(size, len(c.Items))
	}
	j := newJob(agg, elements, len(chunks), size)

	for k, c := range chunks {
		if err := submitChunk(ctx, p, agg, c, fn); err != nil {
			for _, rest := range chunks[k:] {
				_ = agg.Deliver(Failure[R](rest.Index, fmt.Errorf("%w: %w", ErrChunkSkipped, err)))
			}
			return j, fmt.Errorf("dispatch chunk %d: %w", c.Index, err)
		}
	}

	return j, nil
}

// DispatchSeq chunks src as it is pulled and submits each chunk as soon as it
// is complete. Reading stops early when a chunk has already failed or ctx is
// done; the chunk count is sealed once reading stops.
func DispatchSeq[T, R any](ctx context.Context, p *pool.Pool, src iter.Seq[T], size int, fn ChunkFunc[T, R]) (*Job[R], error) {
	agg := NewUnsizedAggregator[R]()
	j := newJob(agg, -1, -1, max(size, 1))

	elements, count := 0, 0
	var submitErr error

	for c := range SplitSeq(src, size) {
		if agg.Failed() || ctx.Err() != nil {
			break
		}
		if err := submitChunk(ctx, p, agg, c, fn); err != nil {
			_ = agg.Deliver(Failure[R](c.Index, fmt.Errorf("%w: %w", ErrChunkSkipped, err)))
			submitErr = fmt.Errorf("dispatch chunk %d: %w", c.Index, err)
			count++
			break
		}
		elements += len(c.Items)
		count++
	}

	j.elements.Store(int64(elements))
	j.chunks.Store(int64(count))
	if err := agg.Expect(count); err != nil {
		return j, err
	}

	return j, submitErr
}

func submitChunk[T, R any](ctx context.Context, p *pool.Pool, agg *Aggregator[R], c Chunk[T], fn ChunkFunc[T, R]) error {
	abandoned := func() bool {
		return agg.Doomed(c.Index)
	}

	// skips and cancellations are final; only element failures may be retried
	process := func(poolCtx context.Context, c Chunk[T]) ([]R, error) {
		runCtx, cancel := withPoolCancel(ctx, poolCtx)
		defer cancel()

		if err := runCtx.Err(); err != nil {
			return nil, pool.Permanent(err)
		}
		if abandoned() {
			return nil, pool.Permanent(ErrChunkSkipped)
		}

		out, err := fn(runCtx, c, abandoned)
		if err != nil && isSecondary(err) {
			err = pool.Permanent(err)
		}
		return out, err
	}

	deliver := func(c Chunk[T], r *pool.Result[[]R, int64]) {
		var o Outcome[R]
		if r.Error != nil {
			o = Failure[R](c.Index, r.Error)
		} else {
			o = Success(c.Index, r.Value)
		}
		// cannot fail: each chunk is submitted once and indexes come from Split
		_ = agg.Deliver(o)
	}

	_, err := pool.Submit(p, c, process, deliver)
	return err
}

// withPoolCancel derives a context from ctx that is also cancelled when the
// pool's own context ends, so a Shutdown timeout reaches running chunks.
func withPoolCancel(ctx, poolCtx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(poolCtx, cancel)
	if poolCtx.Err() != nil {
		cancel()
	}
	return runCtx, func() {
		stop()
		cancel()
	}
}
