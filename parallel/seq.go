package parallel

import (
	"context"
	"iter"
	"slices"

	"github.com/utkarsh5026/parcol/job"
)

// Seq is a sequence adapter over a slice.
type Seq[T any] struct {
	e     *Executor
	items []T
}

// NewSeq wraps items. The slice is not copied and must not be modified while
// an operation runs.
func NewSeq[T any](e *Executor, items []T) *Seq[T] {
	return &Seq[T]{e: e, items: items}
}

func (s *Seq[T]) Shape() Shape { return ShapeSequence }

func (s *Seq[T]) Len() int { return len(s.items) }

func (s *Seq[T]) All() iter.Seq[T] { return slices.Values(s.items) }

// Slice returns the elements.
func (s *Seq[T]) Slice() []T { return s.items }

func (s *Seq[T]) Map(ctx context.Context, f func(T) (T, error)) (*Seq[T], error) {
	return MapTo(ctx, s, f)
}

func (s *Seq[T]) Filter(ctx context.Context, pred func(T) (bool, error)) (*Seq[T], error) {
	out, err := run(ctx, s.e, ShapeSequence, "filter", s.items, job.FilterElements(lift(pred)))
	if err != nil {
		return nil, err
	}
	return NewSeq(s.e, out), nil
}

func (s *Seq[T]) Flatten(ctx context.Context) (*Seq[T], error) {
	out, err := run(ctx, s.e, ShapeSequence, "flatten", s.items, job.ExpandElements(func(_ context.Context, v T) ([]T, error) {
		return flattenInto[T](v)
	}))
	if err != nil {
		return nil, err
	}
	return NewSeq(s.e, out), nil
}

func (s *Seq[T]) FlatMap(ctx context.Context, f func(T) (T, error)) (*Seq[T], error) {
	flat, err := s.Flatten(ctx)
	if err != nil {
		return nil, err
	}
	return flat.Map(ctx, f)
}

func (s *Seq[T]) Foreach(ctx context.Context, f func(T) error) error {
	_, err := run(ctx, s.e, ShapeSequence, "foreach", s.items, job.EachElement(liftEach(f)))
	return err
}

func (s *Seq[T]) Reduce(ctx context.Context, op func(acc, v T) (T, error), init ...T) (T, error) {
	return reduce(ctx, s.e, ShapeSequence, s.items, op, init)
}

// MapAsync starts Map and returns the job without waiting for it.
func (s *Seq[T]) MapAsync(ctx context.Context, f func(T) (T, error)) (*job.Job[T], error) {
	return dispatch(ctx, s.e, s.items, job.MapElements(lift(f)))
}

// FilterAsync starts Filter and returns the job without waiting for it.
func (s *Seq[T]) FilterAsync(ctx context.Context, pred func(T) (bool, error)) (*job.Job[T], error) {
	return dispatch(ctx, s.e, s.items, job.FilterElements(lift(pred)))
}

// MapTo maps s to a sequence of another element type.
func MapTo[T, R any](ctx context.Context, s *Seq[T], f func(T) (R, error)) (*Seq[R], error) {
	out, err := run(ctx, s.e, ShapeSequence, "map", s.items, job.MapElements(lift(f)))
	if err != nil {
		return nil, err
	}
	return NewSeq(s.e, out), nil
}

// FlattenSlices concatenates the inner slices of s in order.
func FlattenSlices[T any](ctx context.Context, s *Seq[[]T]) (*Seq[T], error) {
	out, err := run(ctx, s.e, ShapeSequence, "flatten", s.items, job.ExpandElements(func(_ context.Context, v []T) ([]T, error) {
		return v, nil
	}))
	if err != nil {
		return nil, err
	}
	return NewSeq(s.e, out), nil
}

// FlatMapTo flattens s, then maps every item with f.
func FlatMapTo[T, R any](ctx context.Context, s *Seq[[]T], f func(T) (R, error)) (*Seq[R], error) {
	flat, err := FlattenSlices(ctx, s)
	if err != nil {
		return nil, err
	}
	return MapTo(ctx, flat, f)
}
