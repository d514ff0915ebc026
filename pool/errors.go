package pool

import (
	"context"
	"errors"
)

var (
	// ErrPoolClosed is returned by Submit once Shutdown has been called.
	ErrPoolClosed = errors.New("pool: closed")

	// ErrShutdownTimeout is returned by Shutdown when workers did not finish
	// draining in time.
	ErrShutdownTimeout = errors.New("pool: shutdown timeout exceeded")

	// ErrWorkerPanic wraps panics recovered from process functions.
	ErrWorkerPanic = errors.New("worker panic")
)

// permanentError marks an error that must not be retried.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so that the retry policy reports it immediately instead
// of trying again. errors.Is and errors.As still see err. Permanent(nil) is nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// retryable reports whether another attempt may follow err. Permanent errors,
// context errors and attempts made after ctx ended are final.
func retryable(ctx context.Context, err error) bool {
	var pe *permanentError
	switch {
	case ctx.Err() != nil,
		errors.As(err, &pe),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}
