package types

import "context"

// ProcessFunc is a function type that defines how an individual task is processed by a worker.
// It takes a context for cancellation/timeout control and a task of type T, returning a result of type R.
//
// Type parameters:
//   - T: The type of input task to be processed
//   - R: The type of result produced after processing
type ProcessFunc[T any, R any] func(ctx context.Context, task T) (R, error)

// ResultHandler is invoked by the worker that executed a task, after the task's
// future has been completed. Handlers run on the worker goroutine and must not block.
type ResultHandler[T any, R any] func(task T, result *Result[R, int64])

// Result represents the outcome of processing a single task.
// It encapsulates both successful results and errors, along with the key that
// identifies the task that produced it.
//
// Type parameters:
//   - R: The type of the result value
//   - K: The type of the key (submission id, index, map key...)
type Result[R any, K comparable] struct {
	Value R
	Key   K
	Error error
}

// NewResult builds a Result from a value, key and error.
func NewResult[R any, K comparable](value R, key K, err error) *Result[R, K] {
	return &Result[R, K]{
		Value: value,
		Key:   key,
		Error: err,
	}
}
