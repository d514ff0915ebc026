package parallel

import (
	"cmp"
	"context"
	"iter"
	"maps"
	"slices"

	"github.com/utkarsh5026/parcol/job"
)

// Entry is one key/value pair of a Mapping.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// Mapping is an adapter over key/value pairs in a fixed key order. Operations
// act on the values; results are paired back with the original keys by
// position.
type Mapping[K, V any] struct {
	e       *Executor
	entries []Entry[K, V]
}

// NewMapping wraps entries in the given order.
func NewMapping[K, V any](e *Executor, entries []Entry[K, V]) *Mapping[K, V] {
	return &Mapping[K, V]{e: e, entries: entries}
}

// MappingOf wraps m with its keys in ascending order.
func MappingOf[K cmp.Ordered, V any](e *Executor, m map[K]V) *Mapping[K, V] {
	entries := make([]Entry[K, V], 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		entries = append(entries, Entry[K, V]{Key: k, Value: m[k]})
	}
	return NewMapping(e, entries)
}

func (m *Mapping[K, V]) Shape() Shape { return ShapeMapping }

func (m *Mapping[K, V]) Len() int { return len(m.entries) }

// All iterates over the values in key order.
func (m *Mapping[K, V]) All() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, en := range m.entries {
			if !yield(en.Value) {
				return
			}
		}
	}
}

// Entries iterates over key/value pairs in key order.
func (m *Mapping[K, V]) Entries() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, en := range m.entries {
			if !yield(en.Key, en.Value) {
				return
			}
		}
	}
}

// Keys returns the keys in order.
func (m *Mapping[K, V]) Keys() []K {
	keys := make([]K, len(m.entries))
	for i, en := range m.entries {
		keys[i] = en.Key
	}
	return keys
}

func (m *Mapping[K, V]) values() []V {
	vals := make([]V, len(m.entries))
	for i, en := range m.entries {
		vals[i] = en.Value
	}
	return vals
}

// rekey pairs values with the keys of m by position.
func (m *Mapping[K, V]) rekey(values []V) *Mapping[K, V] {
	out := make([]Entry[K, V], len(values))
	for i, v := range values {
		out[i] = Entry[K, V]{Key: m.entries[i].Key, Value: v}
	}
	return NewMapping(m.e, out)
}

// Map replaces every value with f(value); keys are unchanged.
func (m *Mapping[K, V]) Map(ctx context.Context, f func(V) (V, error)) (*Mapping[K, V], error) {
	out, err := run(ctx, m.e, ShapeMapping, "map", m.values(), job.MapElements(lift(f)))
	if err != nil {
		return nil, err
	}
	return m.rekey(out), nil
}

// Filter keeps the entries whose value pred accepts.
func (m *Mapping[K, V]) Filter(ctx context.Context, pred func(V) (bool, error)) (*Mapping[K, V], error) {
	out, err := run(ctx, m.e, ShapeMapping, "filter", m.entries, job.FilterElements(func(_ context.Context, en Entry[K, V]) (bool, error) {
		return pred(en.Value)
	}))
	if err != nil {
		return nil, err
	}
	return NewMapping(m.e, out), nil
}

// Flatten flattens every value one level in place: a value holding sequences
// becomes a value of the same type holding their items.
func (m *Mapping[K, V]) Flatten(ctx context.Context) (*Mapping[K, V], error) {
	out, err := run(ctx, m.e, ShapeMapping, "flatten", m.values(), job.MapElements(func(_ context.Context, v V) (V, error) {
		return flattenValue(v)
	}))
	if err != nil {
		return nil, err
	}
	return m.rekey(out), nil
}

func (m *Mapping[K, V]) FlatMap(ctx context.Context, f func(V) (V, error)) (*Mapping[K, V], error) {
	flat, err := m.Flatten(ctx)
	if err != nil {
		return nil, err
	}
	return flat.Map(ctx, f)
}

func (m *Mapping[K, V]) Foreach(ctx context.Context, f func(V) error) error {
	_, err := run(ctx, m.e, ShapeMapping, "foreach", m.values(), job.EachElement(liftEach(f)))
	return err
}

func (m *Mapping[K, V]) Reduce(ctx context.Context, op func(acc, v V) (V, error), init ...V) (V, error) {
	return reduce(ctx, m.e, ShapeMapping, m.values(), op, init)
}
