package parallel

import (
	"cmp"
	"fmt"
	"iter"
	"reflect"
	"slices"
)

// Shape is the kind of collection an adapter wraps.
type Shape int

const (
	ShapeSequence Shape = iota // ordered, indexable elements
	ShapeMapping               // key/value pairs, keys kept through operations
	ShapeText                  // a string, processed one rune at a time
	ShapeLazy                  // an iterator read as the job runs
)

func (s Shape) String() string {
	switch s {
	case ShapeSequence:
		return "sequence"
	case ShapeMapping:
		return "mapping"
	case ShapeText:
		return "text"
	case ShapeLazy:
		return "lazy"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// ShapeOf inspects src and reports which adapter From would build for it.
//
// Strings are text; slices and arrays are sequences; maps are mappings;
// iterator functions (iter.Seq), iterator producers (func() iter.Seq) and
// receive channels are lazy. Anything else, including a nil function or
// channel, yields a *ShapeError.
func ShapeOf(src any) (Shape, error) {
	if src == nil {
		return 0, &ShapeError{}
	}

	t := reflect.TypeOf(src)
	switch t.Kind() {
	case reflect.String:
		return ShapeText, nil
	case reflect.Slice, reflect.Array:
		return ShapeSequence, nil
	case reflect.Map:
		return ShapeMapping, nil
	case reflect.Chan:
		if reflect.ValueOf(src).IsNil() {
			return 0, &ShapeError{Type: t, Nil: true}
		}
		if t.ChanDir()&reflect.RecvDir != 0 {
			return ShapeLazy, nil
		}
	case reflect.Func:
		if reflect.ValueOf(src).IsNil() {
			return 0, &ShapeError{Type: t, Nil: true}
		}
		if isIterFunc(t) || isIterProducer(t) {
			return ShapeLazy, nil
		}
	}

	return 0, &ShapeError{Type: t}
}

// Source is a collection whose element type is only known at run time. Exactly
// one accessor, the one matching Shape, returns ok.
type Source struct {
	shape   Shape
	seq     *Seq[any]
	mapping *Mapping[any, any]
	text    *Text
	lazy    *Lazy[any]
}

// Shape returns the variant held by s.
func (s Source) Shape() Shape {
	return s.shape
}

func (s Source) Sequence() (*Seq[any], bool) {
	return s.seq, s.seq != nil
}

func (s Source) Mapping() (*Mapping[any, any], bool) {
	return s.mapping, s.mapping != nil
}

func (s Source) Text() (*Text, bool) {
	return s.text, s.text != nil
}

func (s Source) Lazy() (*Lazy[any], bool) {
	return s.lazy, s.lazy != nil
}

// From builds the adapter matching the shape of src. Map keys are put in a
// fixed order (sorted when the keys are numbers or strings).
func From(e *Executor, src any) (Source, error) {
	shape, err := ShapeOf(src)
	if err != nil {
		return Source{}, err
	}

	rv := reflect.ValueOf(src)
	switch shape {
	case ShapeText:
		return Source{shape: shape, text: NewText(e, rv.String())}, nil
	case ShapeSequence:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return Source{shape: shape, seq: NewSeq(e, items)}, nil
	case ShapeMapping:
		return Source{shape: shape, mapping: NewMapping(e, mapEntries(rv))}, nil
	default:
		return Source{shape: shape, lazy: lazyFromValue(e, rv)}, nil
	}
}

// LazyOf builds a lazy adapter for any enumerable src, including slices,
// strings and maps (read as entries), so elements are pulled as the job runs.
func LazyOf(e *Executor, src any) (*Lazy[any], error) {
	shape, err := ShapeOf(src)
	if err != nil {
		return nil, err
	}

	rv := reflect.ValueOf(src)
	if shape == ShapeMapping {
		entries := mapEntries(rv)
		return NewLazy(e, func(yield func(any) bool) {
			for _, en := range entries {
				if !yield(en) {
					return
				}
			}
		}), nil
	}
	if shape == ShapeLazy {
		return lazyFromValue(e, rv), nil
	}

	return NewLazy(e, func(yield func(any) bool) {
		_ = each(src, yield)
	}), nil
}

func lazyFromValue(e *Executor, rv reflect.Value) *Lazy[any] {
	if rv.Kind() == reflect.Func && isIterProducer(rv.Type()) {
		return NewLazyFunc(e, func() iter.Seq[any] {
			seq := rv.Call(nil)[0]
			return func(yield func(any) bool) {
				_ = seqOf(seq, yield)
			}
		})
	}

	return NewLazy(e, func(yield func(any) bool) {
		_ = seqOf(rv, yield)
	})
}

// mapEntries lists the entries of a map value in a fixed key order.
func mapEntries(rv reflect.Value) []Entry[any, any] {
	keys := rv.MapKeys()
	slices.SortFunc(keys, compareKeys)

	entries := make([]Entry[any, any], len(keys))
	for i, k := range keys {
		entries[i] = Entry[any, any]{Key: k.Interface(), Value: rv.MapIndex(k).Interface()}
	}
	return entries
}

func compareKeys(a, b reflect.Value) int {
	a, b = unwrapKey(a), unwrapKey(b)
	if a.Kind() == b.Kind() {
		switch a.Kind() {
		case reflect.String:
			return cmp.Compare(a.String(), b.String())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return cmp.Compare(a.Int(), b.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return cmp.Compare(a.Uint(), b.Uint())
		case reflect.Float32, reflect.Float64:
			return cmp.Compare(a.Float(), b.Float())
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func unwrapKey(k reflect.Value) reflect.Value {
	if k.Kind() == reflect.Interface && !k.IsNil() {
		return k.Elem()
	}
	return k
}
