package job

import "context"

// ChunkFunc computes the values of one chunk. abandoned reports whether the
// chunk's result can still matter; long chunks should check it between
// elements and return ErrChunkSkipped once it is true.
type ChunkFunc[T, R any] func(ctx context.Context, c Chunk[T], abandoned func() bool) ([]R, error)

// MapElements applies f to every element, keeping order.
func MapElements[T, R any](f func(ctx context.Context, v T) (R, error)) ChunkFunc[T, R] {
	return func(ctx context.Context, c Chunk[T], abandoned func() bool) ([]R, error) {
		out := make([]R, 0, len(c.Items))
		err := eachItem(ctx, c, abandoned, func(_ int, v T) error {
			r, err := f(ctx, v)
			if err != nil {
				return err
			}
			out = append(out, r)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

// FilterElements keeps the elements pred accepts, in order. A chunk where
// nothing survives yields an empty slice.
func FilterElements[T any](pred func(ctx context.Context, v T) (bool, error)) ChunkFunc[T, T] {
	return func(ctx context.Context, c Chunk[T], abandoned func() bool) ([]T, error) {
		var out []T
		err := eachItem(ctx, c, abandoned, func(_ int, v T) error {
			keep, err := pred(ctx, v)
			if err != nil {
				return err
			}
			if keep {
				out = append(out, v)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

// ExpandElements replaces every element with the values f returns for it,
// concatenated in order.
func ExpandElements[T, R any](f func(ctx context.Context, v T) ([]R, error)) ChunkFunc[T, R] {
	return func(ctx context.Context, c Chunk[T], abandoned func() bool) ([]R, error) {
		var out []R
		err := eachItem(ctx, c, abandoned, func(_ int, v T) error {
			rs, err := f(ctx, v)
			if err != nil {
				return err
			}
			out = append(out, rs...)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

// EachElement calls f for its side effects and produces no values.
func EachElement[T any](f func(ctx context.Context, v T) error) ChunkFunc[T, struct{}] {
	return func(ctx context.Context, c Chunk[T], abandoned func() bool) ([]struct{}, error) {
		return nil, eachItem(ctx, c, abandoned, func(_ int, v T) error {
			return f(ctx, v)
		})
	}
}

// eachItem visits the chunk's elements in order. Between elements it stops
// with ErrChunkSkipped when the chunk is abandoned and with ctx.Err() when the
// caller gave up. Errors from visit are wrapped in an ElementError.
func eachItem[T any](ctx context.Context, c Chunk[T], abandoned func() bool, visit func(offset int, v T) error) error {
	for off, v := range c.Items {
		if off > 0 {
			if abandoned != nil && abandoned() {
				return ErrChunkSkipped
			}
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := visit(off, v); err != nil {
			return wrapElement(c.Index, off, err)
		}
	}
	return nil
}
