package job

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrDuplicateOutcome is returned when a chunk index reports twice.
	ErrDuplicateOutcome = errors.New("job: duplicate chunk outcome")

	// ErrChunkOutOfRange is returned for an outcome whose index is outside the
	// expected chunk range.
	ErrChunkOutOfRange = errors.New("job: chunk index out of range")

	// ErrChunkSkipped is the failure reported by chunks that did not run (or
	// stopped early) because an earlier chunk already failed.
	ErrChunkSkipped = errors.New("job: chunk skipped after earlier failure")

	// ErrTimeout is returned by GetWithTimeout when the job is still running.
	ErrTimeout = errors.New("job: timed out waiting for result")

	// ErrAlreadySealed is returned by Expect when the chunk count is already known.
	ErrAlreadySealed = errors.New("job: expected chunk count already set")
)

// ElementError is the failure of the caller's function on one element.
type ElementError struct {
	Chunk  int   // index of the chunk holding the element
	Offset int   // position of the element inside the chunk
	Err    error // error returned (or panic raised) by the caller's function
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("chunk %d element %d: %v", e.Chunk, e.Offset, e.Err)
}

func (e *ElementError) Unwrap() error {
	return e.Err
}

// wrapElement attaches chunk coordinates to err unless it already carries them.
func wrapElement(chunk, offset int, err error) error {
	var ee *ElementError
	if errors.As(err, &ee) {
		return err
	}
	return &ElementError{Chunk: chunk, Offset: offset, Err: err}
}

// isSecondary reports whether err only says that a chunk did not get to run
// (skipped or cancelled) rather than that the caller's function failed.
func isSecondary(err error) bool {
	var ee *ElementError
	if errors.As(err, &ee) {
		return false
	}
	return errors.Is(err, ErrChunkSkipped) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
