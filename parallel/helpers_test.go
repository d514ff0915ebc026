package parallel

import (
	"testing"
	"time"

	"github.com/utkarsh5026/parcol/pool"
)

func newTestExecutor(t *testing.T, opts ...Option) *Executor {
	t.Helper()
	e := New(append([]Option{WithPoolOptions(pool.WithWorkerCount(4))}, opts...)...)
	t.Cleanup(func() { _ = e.Close(5 * time.Second) })
	return e
}

func ints(lo, hi int) []int {
	out := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, i)
	}
	return out
}

func square(n int) (int, error) { return n * n, nil }

func isEven(n int) (bool, error) { return n%2 == 0, nil }

func sum(acc, v int) (int, error) { return acc + v, nil }
