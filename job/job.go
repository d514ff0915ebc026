package job

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Job is the handle of one dispatched operation. It completes once every chunk
// has reported.
type Job[R any] struct {
	id        uuid.UUID
	chunkSize int
	elements  atomic.Int64
	chunks    atomic.Int64
	agg       *Aggregator[R]
}

func newJob[R any](agg *Aggregator[R], elements, chunks, chunkSize int) *Job[R] {
	j := &Job[R]{
		id:        uuid.New(),
		chunkSize: chunkSize,
		agg:       agg,
	}
	j.elements.Store(int64(elements))
	j.chunks.Store(int64(chunks))
	return j
}

// ID returns the job's unique id, used to correlate log lines.
func (j *Job[R]) ID() uuid.UUID {
	return j.id
}

// Elements returns the number of input elements, or -1 while a lazy source is
// still being read.
func (j *Job[R]) Elements() int {
	return int(j.elements.Load())
}

// Chunks returns the number of chunks, or -1 while a lazy source is still being
// read.
func (j *Job[R]) Chunks() int {
	return int(j.chunks.Load())
}

// ChunkSize returns the number of elements per chunk.
func (j *Job[R]) ChunkSize() int {
	return j.chunkSize
}

// Get blocks until the job completes and returns the ordered values or the
// canonical error. Values and error are never both set.
func (j *Job[R]) Get() ([]R, error) {
	return j.agg.Wait(context.Background())
}

// GetWithContext is Get bounded by ctx. When ctx ends first, ctx.Err() is
// returned and the job keeps running.
func (j *Job[R]) GetWithContext(ctx context.Context) ([]R, error) {
	return j.agg.Wait(ctx)
}

// GetWithTimeout waits at most timeout and returns ErrTimeout if the job has
// not completed. A non-positive timeout waits forever.
func (j *Job[R]) GetWithTimeout(timeout time.Duration) ([]R, error) {
	if timeout <= 0 {
		return j.Get()
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-j.agg.Done():
		return j.agg.Wait(context.Background())
	case <-timer.C:
		return nil, ErrTimeout
	}
}

// IsReady reports whether the job has completed.
func (j *Job[R]) IsReady() bool {
	return j.agg.Ready()
}

// Done returns a channel closed when the job completes.
func (j *Job[R]) Done() <-chan struct{} {
	return j.agg.Done()
}
