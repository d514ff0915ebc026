package parallel

import (
	"fmt"
	"iter"
	"reflect"
)

// each calls yield for every item of v. Slices, arrays, strings (one rune
// string per item), iterator functions and channels are iterable; for
// anything else ErrNotIterable is returned.
func each(v any, yield func(any) bool) error {
	switch x := v.(type) {
	case nil:
		return fmt.Errorf("%w: nil", ErrNotIterable)
	case []any:
		for _, item := range x {
			if !yield(item) {
				return nil
			}
		}
		return nil
	case string:
		for r := range runeStrings(x) {
			if !yield(r) {
				return nil
			}
		}
		return nil
	case iter.Seq[any]:
		if x == nil {
			return fmt.Errorf("%w: nil %T", ErrNotIterable, v)
		}
		for item := range x {
			if !yield(item) {
				return nil
			}
		}
		return nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := range rv.Len() {
			if !yield(rv.Index(i).Interface()) {
				return nil
			}
		}
		return nil
	case reflect.String:
		return each(rv.String(), yield)
	case reflect.Chan:
		if rv.IsNil() || rv.Type().ChanDir()&reflect.RecvDir == 0 {
			break
		}
		return seqOf(rv, yield)
	case reflect.Func:
		if rv.IsNil() || !isIterFunc(rv.Type()) {
			break
		}
		return seqOf(rv, yield)
	}

	return fmt.Errorf("%w: %T", ErrNotIterable, v)
}

func seqOf(rv reflect.Value, yield func(any) bool) error {
	for item := range rv.Seq() {
		if !yield(item.Interface()) {
			return nil
		}
	}
	return nil
}

// isIterFunc reports whether t is shaped like iter.Seq[X]: func(func(X) bool).
func isIterFunc(t reflect.Type) bool {
	if t.Kind() != reflect.Func || t.NumIn() != 1 || t.NumOut() != 0 {
		return false
	}
	y := t.In(0)
	return y.Kind() == reflect.Func &&
		y.NumIn() == 1 &&
		y.NumOut() == 1 &&
		y.Out(0).Kind() == reflect.Bool
}

// isIterProducer reports whether t is shaped like func() iter.Seq[X].
func isIterProducer(t reflect.Type) bool {
	return t.Kind() == reflect.Func &&
		t.NumIn() == 0 &&
		t.NumOut() == 1 &&
		isIterFunc(t.Out(0))
}

// as stores item in an E, failing with ErrElementType when it does not fit.
func as[E any](item any) (E, error) {
	if e, ok := item.(E); ok {
		return e, nil
	}

	var out E
	target := reflect.TypeFor[E]()
	if item == nil {
		if canBeNil(target) {
			return out, nil
		}
		return out, fmt.Errorf("%w: nil into %s", ErrElementType, target)
	}

	iv := reflect.ValueOf(item)
	if !iv.Type().AssignableTo(target) {
		return out, fmt.Errorf("%w: %s into %s", ErrElementType, iv.Type(), target)
	}
	reflect.ValueOf(&out).Elem().Set(iv)
	return out, nil
}

func canBeNil(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return true
	}
	return false
}

// flattenInto returns the items of v converted to E.
func flattenInto[E any](v any) ([]E, error) {
	var (
		out     []E
		convErr error
	)

	err := each(v, func(item any) bool {
		e, err := as[E](item)
		if err != nil {
			convErr = err
			return false
		}
		out = append(out, e)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, convErr
}

// flattenValue flattens v one level while keeping its type: a slice of
// sequences becomes a slice of their items, a string stays as it is.
func flattenValue[V any](v V) (V, error) {
	rv := reflect.ValueOf(any(v))
	if !rv.IsValid() {
		return v, fmt.Errorf("%w: nil", ErrNotIterable)
	}

	switch rv.Kind() {
	case reflect.String:
		return v, nil
	case reflect.Slice, reflect.Array:
	default:
		return v, fmt.Errorf("%w: %s", ErrNotIterable, rv.Type())
	}

	elemType := rv.Type().Elem()
	resultType := rv.Type()
	if rv.Kind() == reflect.Array {
		resultType = reflect.SliceOf(elemType)
	}

	flat := reflect.MakeSlice(resultType, 0, rv.Len())
	for i := range rv.Len() {
		var convErr error
		err := each(rv.Index(i).Interface(), func(item any) bool {
			iv, err := valueOf(item, elemType)
			if err != nil {
				convErr = err
				return false
			}
			flat = reflect.Append(flat, iv)
			return true
		})
		if err != nil {
			return v, err
		}
		if convErr != nil {
			return v, convErr
		}
	}

	var out V
	target := reflect.ValueOf(&out).Elem()
	if !flat.Type().AssignableTo(target.Type()) {
		return v, fmt.Errorf("%w: %s into %s", ErrElementType, flat.Type(), target.Type())
	}
	target.Set(flat)
	return out, nil
}

func valueOf(item any, t reflect.Type) (reflect.Value, error) {
	if item == nil {
		if canBeNil(t) {
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("%w: nil into %s", ErrElementType, t)
	}

	iv := reflect.ValueOf(item)
	if !iv.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("%w: %s into %s", ErrElementType, iv.Type(), t)
	}
	return iv, nil
}
