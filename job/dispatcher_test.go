package job

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utkarsh5026/parcol/pool"
)

func newTestPool(t *testing.T, workers int, opts ...pool.Option) *pool.Pool {
	t.Helper()
	p := pool.New(append([]pool.Option{pool.WithWorkerCount(workers)}, opts...)...)
	t.Cleanup(func() { _ = p.Shutdown(5 * time.Second) })
	return p
}

func seqInts(lo, hi int) []int {
	out := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, i)
	}
	return out
}

func divisorSum(n int) int {
	sum := 0
	for d := 1; d <= n; d++ {
		if n%d == 0 {
			sum += d
		}
	}
	return sum
}

func TestDispatch_MapMatchesSequential(t *testing.T) {
	p := newTestPool(t, 4)
	items := seqInts(1, 1000)

	chunks := Split(items, ChunkSize(len(items), p.Size()))
	j, err := Dispatch(context.Background(), p, chunks, MapElements(func(_ context.Context, n int) (int, error) {
		return divisorSum(n), nil
	}))
	require.NoError(t, err)

	got, err := j.Get()
	require.NoError(t, err)

	want := make([]int, len(items))
	for i, n := range items {
		want[i] = divisorSum(n)
	}
	assert.Equal(t, want, got)
	assert.Equal(t, 1000, j.Elements())
	assert.Equal(t, 63, j.ChunkSize())
	assert.Equal(t, 16, j.Chunks())
	assert.NotEqual(t, [16]byte{}, [16]byte(j.ID()))
}

func TestDispatch_FilterMatchesSequential(t *testing.T) {
	p := newTestPool(t, 3)
	items := seqInts(1, 200)
	even := func(_ context.Context, n int) (bool, error) { return n%2 == 0, nil }

	j, err := Dispatch(context.Background(), p, Split(items, 7), FilterElements(even))
	require.NoError(t, err)
	got, err := j.Get()
	require.NoError(t, err)

	var want []int
	for _, n := range items {
		if n%2 == 0 {
			want = append(want, n)
		}
	}
	assert.Equal(t, want, got)

	none, err := Dispatch(context.Background(), p, Split(items, 7), FilterElements(func(context.Context, int) (bool, error) {
		return false, nil
	}))
	require.NoError(t, err)
	got, err = none.Get()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDispatch_IdentityReturnsInput(t *testing.T) {
	p := newTestPool(t, 4)
	items := []string{"a", "b", "c", "d", "e"}

	j, err := Dispatch(context.Background(), p, Split(items, 2), MapElements(func(_ context.Context, s string) (string, error) {
		return s, nil
	}))
	require.NoError(t, err)
	got, err := j.Get()
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

// Chunks are held back and released last-to-first, so completion order is the
// reverse of submission order.
func TestDispatch_ReverseCompletionOrder(t *testing.T) {
	const k = 6
	p := newTestPool(t, k)

	gates := make([]chan struct{}, k)
	for i := range gates {
		gates[i] = make(chan struct{})
	}

	var (
		mu    sync.Mutex
		order []int
	)

	fn := func(_ context.Context, c Chunk[int], _ func() bool) ([]int, error) {
		<-gates[c.Index]
		mu.Lock()
		order = append(order, c.Index)
		mu.Unlock()
		return slices.Clone(c.Items), nil
	}

	items := seqInts(0, 2*k-1)
	j, err := Dispatch(context.Background(), p, Split(items, 2), fn)
	require.NoError(t, err)

	for i := k - 1; i >= 0; i-- {
		close(gates[i])
		require.Eventually(t, func() bool {
			return j.agg.Remaining() == i
		}, time.Second, time.Millisecond)
		if i > 0 {
			assert.False(t, j.IsReady(), "result visible before chunk 0 reported")
		}
	}

	got, err := j.Get()
	require.NoError(t, err)
	assert.Equal(t, items, got)
	assert.Equal(t, []int{5, 4, 3, 2, 1, 0}, order)
}

func TestDispatch_SingleFailingElement(t *testing.T) {
	p := newTestPool(t, 4)
	boom := errors.New("bad element")

	j, err := Dispatch(context.Background(), p, Split(seqInts(1, 100), 10), MapElements(func(_ context.Context, n int) (int, error) {
		if n == 57 {
			return 0, boom
		}
		return n, nil
	}))
	require.NoError(t, err)

	got, err := j.Get()
	require.ErrorIs(t, err, boom)
	assert.Nil(t, got)

	var ee *ElementError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 5, ee.Chunk)
	assert.Equal(t, 6, ee.Offset)
}

// Chunk 1 fails slowly, chunk 3 fails at once: the lower index must win on
// every run.
func TestDispatch_LowestIndexErrorIsDeterministic(t *testing.T) {
	p := newTestPool(t, 4)

	for run := range 20 {
		j, err := Dispatch(context.Background(), p, Split(seqInts(0, 7), 2), MapElements(func(_ context.Context, n int) (int, error) {
			switch n {
			case 2:
				time.Sleep(2 * time.Millisecond)
				return 0, errors.New("chunk one")
			case 6:
				return 0, errors.New("chunk three")
			}
			return n, nil
		}))
		require.NoError(t, err)

		_, err = j.Get()
		require.Error(t, err)
		assert.Equal(t, "chunk one", errors.Unwrap(err).Error(), "run %d", run)
	}
}

// seven elements, chunk size 2, chunk 2 fails
func TestDispatch_MiddleChunkFailure(t *testing.T) {
	p := newTestPool(t, 2)
	items := seqInts(1, 7)

	chunks := Split(items, 2)
	require.Len(t, chunks, 4)

	j, err := Dispatch(context.Background(), p, chunks, MapElements(func(_ context.Context, n int) (int, error) {
		if n == 5 {
			return 0, fmt.Errorf("cannot map %d", n)
		}
		return n * n, nil
	}))
	require.NoError(t, err)

	got, err := j.Get()
	assert.Nil(t, got)
	var ee *ElementError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 2, ee.Chunk)
	assert.Equal(t, 0, ee.Offset)
	assert.EqualError(t, ee.Err, "cannot map 5")
}

func TestDispatch_EmptySubmitsNothing(t *testing.T) {
	var started atomic.Int32
	p := newTestPool(t, 2, pool.WithOnUnitStart(func(int64, int64) { started.Add(1) }))

	j, err := Dispatch(context.Background(), p, Split([]int{}, ChunkSize(0, p.Size())), MapElements(func(_ context.Context, n int) (int, error) {
		return n, nil
	}))
	require.NoError(t, err)
	require.True(t, j.IsReady())

	got, err := j.Get()
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, started.Load())
}

func TestDispatch_LaterChunksAreSkippedAfterFailure(t *testing.T) {
	// one worker runs chunks strictly in order
	p := newTestPool(t, 1, pool.WithTaskBuffer(32))
	var calls atomic.Int32

	j, err := Dispatch(context.Background(), p, Split(seqInts(0, 19), 2), MapElements(func(_ context.Context, n int) (int, error) {
		calls.Add(1)
		if n == 0 {
			return 0, errors.New("first element fails")
		}
		return n, nil
	}))
	require.NoError(t, err)

	_, err = j.Get()
	require.EqualError(t, err, "chunk 0 element 0: first element fails")
	assert.Equal(t, int32(1), calls.Load(), "chunks after the failure should not run")
	assert.Equal(t, 10, j.Chunks())
}

func TestDispatch_SkippedChunksAreNotRetried(t *testing.T) {
	p := newTestPool(t, 1, pool.WithTaskBuffer(8), pool.WithRetryPolicy(3, 200*time.Millisecond))
	var calls atomic.Int32

	start := time.Now()
	j, err := Dispatch(context.Background(), p, Split(seqInts(0, 4), 1), MapElements(func(_ context.Context, n int) (int, error) {
		calls.Add(1)
		if n == 0 {
			return 0, errors.New("boom")
		}
		return n, nil
	}))
	require.NoError(t, err)

	_, err = j.GetWithTimeout(5 * time.Second)
	require.EqualError(t, err, "chunk 0 element 0: boom")

	// chunk 0 uses its three attempts (two backoffs); the four skipped chunks
	// report without waiting
	assert.Equal(t, int32(3), calls.Load())
	assert.Less(t, time.Since(start), 1500*time.Millisecond)
}

func TestDispatch_ShutdownTimeoutCancelsRunningChunk(t *testing.T) {
	p := pool.New(pool.WithWorkerCount(1))
	started := make(chan struct{})

	j, err := Dispatch(context.Background(), p, Split([]int{1}, 1), MapElements(func(ctx context.Context, n int) (int, error) {
		close(started)
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(5 * time.Second):
			return n, nil
		}
	}))
	require.NoError(t, err)
	<-started

	require.ErrorIs(t, p.Shutdown(20*time.Millisecond), pool.ErrShutdownTimeout)

	_, err = j.GetWithTimeout(time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDispatch_StopsBetweenElements(t *testing.T) {
	agg := NewAggregator[int](2)
	require.NoError(t, agg.Deliver(Failure[int](0, errors.New("earlier"))))

	var visited int
	fn := MapElements(func(_ context.Context, n int) (int, error) {
		visited++
		return n, nil
	})

	_, err := fn(context.Background(), Chunk[int]{Index: 1, Items: []int{1, 2, 3}}, func() bool { return agg.Doomed(1) })
	assert.ErrorIs(t, err, ErrChunkSkipped)
	assert.Equal(t, 1, visited)
}

func TestDispatch_CallerCancellation(t *testing.T) {
	p := newTestPool(t, 1, pool.WithTaskBuffer(16))

	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})

	j, err := Dispatch(ctx, p, Split(seqInts(0, 9), 1), MapElements(func(ctx context.Context, n int) (int, error) {
		if n == 0 {
			<-release
		}
		return n, nil
	}))
	require.NoError(t, err)

	cancel()
	close(release)

	_, err = j.Get()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDispatch_PoolClosed(t *testing.T) {
	p := pool.New(pool.WithWorkerCount(2))
	require.NoError(t, p.Shutdown(time.Second))

	j, err := Dispatch(context.Background(), p, Split(seqInts(1, 10), 3), MapElements(func(_ context.Context, n int) (int, error) {
		return n, nil
	}))
	require.ErrorIs(t, err, pool.ErrPoolClosed)
	require.NotNil(t, j)

	_, err = j.GetWithTimeout(time.Second)
	assert.ErrorIs(t, err, ErrChunkSkipped, "abandoned job must still terminate")
	assert.ErrorIs(t, err, pool.ErrPoolClosed)
}

func TestDispatch_RejectsMisindexedChunks(t *testing.T) {
	p := newTestPool(t, 1)

	_, err := Dispatch(context.Background(), p, []Chunk[int]{{Index: 1, Items: []int{1}}}, MapElements(func(_ context.Context, n int) (int, error) {
		return n, nil
	}))
	assert.ErrorIs(t, err, ErrChunkOutOfRange)
}

func TestDispatch_PanicBecomesFailure(t *testing.T) {
	p := newTestPool(t, 2)

	j, err := Dispatch(context.Background(), p, Split([]int{1, 2, 3}, 1), MapElements(func(_ context.Context, n int) (int, error) {
		if n == 2 {
			panic("element exploded")
		}
		return n, nil
	}))
	require.NoError(t, err)

	_, err = j.Get()
	require.ErrorIs(t, err, pool.ErrWorkerPanic)
	assert.True(t, strings.Contains(err.Error(), "element exploded"))
}

func TestDispatch_ExpandAndEach(t *testing.T) {
	p := newTestPool(t, 3)

	j, err := Dispatch(context.Background(), p, Split([]int{1, 2, 3}, 1), ExpandElements(func(_ context.Context, n int) ([]int, error) {
		return slices.Repeat([]int{n}, n), nil
	}))
	require.NoError(t, err)
	got, err := j.Get()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 2, 3, 3, 3}, got)

	var sum atomic.Int64
	each, err := Dispatch(context.Background(), p, Split(seqInts(1, 10), 3), EachElement(func(_ context.Context, n int) error {
		sum.Add(int64(n))
		return nil
	}))
	require.NoError(t, err)
	_, err = each.Get()
	require.NoError(t, err)
	assert.Equal(t, int64(55), sum.Load())
}

func TestDispatchSeq(t *testing.T) {
	p := newTestPool(t, 4)

	j, err := DispatchSeq(context.Background(), p, slices.Values(seqInts(1, 25)), 4, MapElements(func(_ context.Context, n int) (int, error) {
		return n * 10, nil
	}))
	require.NoError(t, err)

	got, err := j.Get()
	require.NoError(t, err)
	require.Len(t, got, 25)
	assert.Equal(t, 10, got[0])
	assert.Equal(t, 250, got[24])
	assert.Equal(t, 25, j.Elements())
	assert.Equal(t, 7, j.Chunks())
}

func TestDispatchSeq_StopsReadingInfiniteSourceAfterFailure(t *testing.T) {
	p := newTestPool(t, 2)

	naturals := func(yield func(int) bool) {
		for i := 0; ; i++ {
			if !yield(i) {
				return
			}
		}
	}

	j, err := DispatchSeq(context.Background(), p, naturals, 8, MapElements(func(_ context.Context, n int) (int, error) {
		if n == 20 {
			return 0, errors.New("stop here")
		}
		return n, nil
	}))
	require.NoError(t, err)

	_, err = j.GetWithTimeout(5 * time.Second)
	assert.EqualError(t, err, "chunk 2 element 4: stop here")
}

func TestDispatchSeq_Empty(t *testing.T) {
	p := newTestPool(t, 2)

	j, err := DispatchSeq(context.Background(), p, slices.Values([]int{}), 4, MapElements(func(_ context.Context, n int) (int, error) {
		return n, nil
	}))
	require.NoError(t, err)
	require.True(t, j.IsReady())
	assert.Equal(t, 0, j.Chunks())
}

func TestJob_GetWithTimeout(t *testing.T) {
	p := newTestPool(t, 1)
	release := make(chan struct{})

	j, err := Dispatch(context.Background(), p, Split([]int{1}, 1), MapElements(func(_ context.Context, n int) (int, error) {
		<-release
		return n, nil
	}))
	require.NoError(t, err)

	_, err = j.GetWithTimeout(10 * time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.False(t, j.IsReady())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = j.GetWithContext(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	<-j.Done()
	got, err := j.GetWithTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got)
}
