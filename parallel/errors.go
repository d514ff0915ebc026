package parallel

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrShape matches every *ShapeError.
	ErrShape = errors.New("parallel: unsupported collection shape")

	// ErrNotIterable is returned by Flatten for an element that is not a
	// sequence.
	ErrNotIterable = errors.New("parallel: element is not iterable")

	// ErrElementType is returned by Flatten when an inner item cannot be stored
	// in the collection's element type.
	ErrElementType = errors.New("parallel: inner item has the wrong type")
)

// ShapeError reports a value that cannot be adapted to any collection shape.
type ShapeError struct {
	Type reflect.Type // nil for an untyped nil value
	Nil  bool         // a nil function or channel of an otherwise usable type
}

func (e *ShapeError) Error() string {
	if e.Type == nil {
		return "parallel: cannot build a collection from nil"
	}
	if e.Nil {
		return fmt.Sprintf("parallel: cannot build a collection from a nil %s", e.Type)
	}
	return fmt.Sprintf("parallel: cannot build a collection from %s: need a slice, array, map, string, iterator, iterator producer or channel", e.Type)
}

func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}
