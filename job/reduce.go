package job

import (
	"context"

	"github.com/utkarsh5026/parcol/pool"
)

// ReduceFunc combines an accumulator with the next value.
type ReduceFunc[T any] func(acc, v T) (T, error)

// Reduce folds chunks with op on p: every chunk is folded left to right on a
// worker, then the partial results are folded in chunk order on the caller's
// goroutine, starting from init when given.
//
// The result equals a sequential left fold whenever op is associative, even if
// it is not commutative. With no elements the result is init, or the zero
// value when init is not given.
func Reduce[T any](ctx context.Context, p *pool.Pool, chunks []Chunk[T], op ReduceFunc[T], init ...T) (T, error) {
	var zero T

	j, err := Dispatch(ctx, p, chunks, FoldElements(op))
	if err != nil {
		return zero, err
	}

	partials, err := j.GetWithContext(ctx)
	if err != nil {
		return zero, err
	}

	return Combine(partials, op, init...)
}

// Combine folds values in order with op, seeded with init when given. When op
// fails the zero value is returned with its error.
func Combine[T any](values []T, op ReduceFunc[T], init ...T) (T, error) {
	var acc T
	start := 0

	switch {
	case len(init) > 0:
		acc = init[0]
	case len(values) > 0:
		acc = values[0]
		start = 1
	default:
		return acc, nil
	}

	for _, v := range values[start:] {
		next, err := op(acc, v)
		if err != nil {
			var zero T
			return zero, err
		}
		acc = next
	}
	return acc, nil
}

// FoldElements folds each chunk into a single partial value. Empty chunks
// produce nothing.
func FoldElements[T any](op ReduceFunc[T]) ChunkFunc[T, T] {
	return func(ctx context.Context, c Chunk[T], abandoned func() bool) ([]T, error) {
		if len(c.Items) == 0 {
			return nil, nil
		}

		acc := c.Items[0]
		rest := Chunk[T]{Index: c.Index, Items: c.Items[1:]}
		err := eachItem(ctx, rest, abandoned, func(off int, v T) error {
			next, err := op(acc, v)
			if err != nil {
				return &ElementError{Chunk: c.Index, Offset: off + 1, Err: err}
			}
			acc = next
			return nil
		})
		if err != nil {
			return nil, err
		}
		return []T{acc}, nil
	}
}
