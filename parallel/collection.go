package parallel

import (
	"context"
	"iter"
)

// Collection is the operation set every adapter offers. C is the adapter's own
// type: each operation returns a collection of the same shape.
//
// Operations block until every chunk has finished. Functions are called
// concurrently from several workers and must be safe for that.
type Collection[E, C any] interface {
	Shape() Shape

	// Len is the number of elements, or -1 for a lazy source not read yet.
	Len() int

	// All iterates over the elements in order.
	All() iter.Seq[E]

	Map(ctx context.Context, f func(E) (E, error)) (C, error)
	Filter(ctx context.Context, pred func(E) (bool, error)) (C, error)

	// Flatten replaces every element by the items it holds. Elements must be
	// iterable (see ErrNotIterable).
	Flatten(ctx context.Context) (C, error)

	// FlatMap flattens, then maps.
	FlatMap(ctx context.Context, f func(E) (E, error)) (C, error)

	// Foreach calls f on every element for its side effects.
	Foreach(ctx context.Context, f func(E) error) error

	// Reduce folds the elements with op, seeded with init when given. op must
	// be associative; it need not be commutative.
	Reduce(ctx context.Context, op func(acc, v E) (E, error), init ...E) (E, error)
}

var (
	_ Collection[int, *Seq[int]]             = (*Seq[int])(nil)
	_ Collection[int, *Mapping[string, int]] = (*Mapping[string, int])(nil)
	_ Collection[string, *Text]              = (*Text)(nil)
	_ Collection[int, *Lazy[int]]            = (*Lazy[int])(nil)
)
