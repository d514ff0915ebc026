package job

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
)

// Aggregator reassembles chunk outcomes, delivered in any order from any
// goroutine, into one ordered result or one canonical error.
//
// Values are placed directly into the slot of their chunk index. Nothing is
// visible to readers until every expected chunk has reported; after that the
// aggregator never changes again.
//
// When several chunks fail, the element failure with the lowest chunk index is
// canonical. Skipped or cancelled chunks only provide the error when no chunk
// failed on an element.
type Aggregator[R any] struct {
	mu        sync.Mutex
	slots     [][]R
	reported  []bool
	expected  int // -1 until sealed
	received  int
	err       error
	errIndex  int
	errIsHard bool
	finished  bool

	// lowest chunk index with an element failure, read without the lock
	lowestFailure atomic.Int64

	done   chan struct{}
	result []R
	final  error
}

// NewAggregator creates an aggregator expecting exactly k outcomes. With k == 0
// it is complete immediately with an empty result.
func NewAggregator[R any](k int) *Aggregator[R] {
	a := newAggregator[R]()
	a.expected = max(k, 0)
	a.slots = make([][]R, a.expected)
	a.reported = make([]bool, a.expected)
	a.checkComplete()
	return a
}

// NewUnsizedAggregator creates an aggregator whose chunk count is not known yet.
// Slots grow as outcomes arrive; Expect seals the count.
func NewUnsizedAggregator[R any]() *Aggregator[R] {
	a := newAggregator[R]()
	a.expected = -1
	return a
}

func newAggregator[R any]() *Aggregator[R] {
	a := &Aggregator[R]{
		errIndex: -1,
		done:     make(chan struct{}),
	}
	a.lowestFailure.Store(math.MaxInt64)
	return a
}

// Expect seals an unsized aggregator at k outcomes. It fails when the count was
// already set or when an outcome with index >= k has been delivered.
func (a *Aggregator[R]) Expect(k int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.expected >= 0 {
		return ErrAlreadySealed
	}
	if k < len(a.reported) {
		for i := k; i < len(a.reported); i++ {
			if a.reported[i] {
				return fmt.Errorf("%w: chunk %d delivered, expected %d", ErrChunkOutOfRange, i, k)
			}
		}
	}

	a.expected = max(k, 0)
	a.grow(a.expected)
	a.checkComplete()
	return nil
}

// Deliver records the outcome of one chunk. Each index must be delivered once.
func (a *Aggregator[R]) Deliver(o Outcome[R]) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := o.Index
	if i < 0 || (a.expected >= 0 && i >= a.expected) {
		return fmt.Errorf("%w: %d", ErrChunkOutOfRange, i)
	}
	if a.expected < 0 {
		a.grow(i + 1)
	}
	if a.reported[i] {
		return fmt.Errorf("%w: %d", ErrDuplicateOutcome, i)
	}

	a.reported[i] = true
	a.received++

	if o.Err != nil {
		a.recordFailure(i, o.Err)
	} else if a.err == nil {
		a.slots[i] = o.Values
	}

	a.checkComplete()
	return nil
}

// recordFailure keeps err if it becomes the canonical error. Stored values are
// dropped since they can never be returned. Called with a.mu held.
func (a *Aggregator[R]) recordFailure(i int, err error) {
	hard := !isSecondary(err)

	switch {
	case a.err == nil,
		hard && !a.errIsHard,
		hard == a.errIsHard && i < a.errIndex:
		a.err, a.errIndex, a.errIsHard = err, i, hard
	}

	if hard {
		for {
			cur := a.lowestFailure.Load()
			if int64(i) >= cur || a.lowestFailure.CompareAndSwap(cur, int64(i)) {
				break
			}
		}
	}

	clear(a.slots)
}

// checkComplete publishes the result once every expected chunk reported.
// Called with a.mu held.
func (a *Aggregator[R]) checkComplete() {
	if a.finished || a.expected < 0 || a.received < a.expected {
		return
	}
	a.finished = true

	if a.err != nil {
		a.final = a.err
	} else {
		total := 0
		for _, s := range a.slots {
			total += len(s)
		}
		out := make([]R, 0, total)
		for _, s := range a.slots {
			out = append(out, s...)
		}
		a.result = out
	}

	a.slots = nil
	close(a.done)
}

func (a *Aggregator[R]) grow(n int) {
	if n <= len(a.reported) {
		return
	}
	a.slots = append(a.slots, make([][]R, n-len(a.slots))...)
	a.reported = append(a.reported, make([]bool, n-len(a.reported))...)
}

// Doomed reports whether the outcome of chunk i can no longer matter: a chunk
// with a lower index already failed on an element. Safe to call from any
// goroutine without blocking.
func (a *Aggregator[R]) Doomed(i int) bool {
	return int64(i) > a.lowestFailure.Load()
}

// Failed reports whether any chunk has failed on an element so far.
func (a *Aggregator[R]) Failed() bool {
	return a.lowestFailure.Load() != math.MaxInt64
}

// Remaining returns how many outcomes are still outstanding, or -1 when the
// aggregator is not sealed yet.
func (a *Aggregator[R]) Remaining() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.expected < 0 {
		return -1
	}
	return a.expected - a.received
}

// Done returns a channel closed when the result (or error) is published.
func (a *Aggregator[R]) Done() <-chan struct{} {
	return a.done
}

// Ready reports whether the result has been published.
func (a *Aggregator[R]) Ready() bool {
	select {
	case <-a.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the result is published or ctx ends.
func (a *Aggregator[R]) Wait(ctx context.Context) ([]R, error) {
	select {
	case <-a.done:
		return a.result, a.final
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
