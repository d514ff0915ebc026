package parallel

import (
	"context"
	"iter"
	"slices"

	"github.com/utkarsh5026/parcol/job"
)

// Lazy is an adapter over an iterator. Elements are pulled and submitted in
// chunks while the job runs. The result of an operation is a Lazy replaying the
// computed values, which is finite and can be read any number of times.
type Lazy[T any] struct {
	e    *Executor
	open func() iter.Seq[T]
	n    int // -1 until the elements are known
}

// NewLazy wraps seq. Whether seq can be read more than once is up to seq.
func NewLazy[T any](e *Executor, seq iter.Seq[T]) *Lazy[T] {
	return &Lazy[T]{e: e, open: func() iter.Seq[T] { return seq }, n: -1}
}

// NewLazyFunc wraps a producer that is called for a fresh iterator each time
// the source is read.
func NewLazyFunc[T any](e *Executor, produce func() iter.Seq[T]) *Lazy[T] {
	return &Lazy[T]{e: e, open: produce, n: -1}
}

func materialized[T any](e *Executor, values []T) *Lazy[T] {
	return &Lazy[T]{e: e, open: func() iter.Seq[T] { return slices.Values(values) }, n: len(values)}
}

func (l *Lazy[T]) Shape() Shape { return ShapeLazy }

// Len is -1 for a source that has not been computed by an operation.
func (l *Lazy[T]) Len() int { return l.n }

func (l *Lazy[T]) All() iter.Seq[T] { return l.open() }

// Collect reads the whole source into a slice.
func (l *Lazy[T]) Collect() []T { return slices.Collect(l.open()) }

func (l *Lazy[T]) Map(ctx context.Context, f func(T) (T, error)) (*Lazy[T], error) {
	out, err := runSeq(ctx, l.e, "map", l.open(), job.MapElements(lift(f)))
	if err != nil {
		return nil, err
	}
	return materialized(l.e, out), nil
}

func (l *Lazy[T]) Filter(ctx context.Context, pred func(T) (bool, error)) (*Lazy[T], error) {
	out, err := runSeq(ctx, l.e, "filter", l.open(), job.FilterElements(lift(pred)))
	if err != nil {
		return nil, err
	}
	return materialized(l.e, out), nil
}

func (l *Lazy[T]) Flatten(ctx context.Context) (*Lazy[T], error) {
	out, err := runSeq(ctx, l.e, "flatten", l.open(), job.ExpandElements(func(_ context.Context, v T) ([]T, error) {
		return flattenInto[T](v)
	}))
	if err != nil {
		return nil, err
	}
	return materialized(l.e, out), nil
}

func (l *Lazy[T]) FlatMap(ctx context.Context, f func(T) (T, error)) (*Lazy[T], error) {
	flat, err := l.Flatten(ctx)
	if err != nil {
		return nil, err
	}
	return flat.Map(ctx, f)
}

func (l *Lazy[T]) Foreach(ctx context.Context, f func(T) error) error {
	_, err := runSeq(ctx, l.e, "foreach", l.open(), job.EachElement(liftEach(f)))
	return err
}

// Reduce folds the source. Partial results of each chunk are combined in
// chunk order.
func (l *Lazy[T]) Reduce(ctx context.Context, op func(acc, v T) (T, error), init ...T) (T, error) {
	var zero T

	partials, err := runSeq(ctx, l.e, "reduce", l.open(), job.FoldElements(job.ReduceFunc[T](op)))
	if err != nil {
		return zero, err
	}
	return job.Combine(partials, op, init...)
}
