package pool

import "github.com/utkarsh5026/parcol/internal/types"

// ProcessFunc processes one task. It must be safe to call from several workers
// at once.
type ProcessFunc[T, R any] = types.ProcessFunc[T, R]

// ResultHandler is a continuation run on the worker after the task's future is
// completed. It must not block.
type ResultHandler[T, R any] = types.ResultHandler[T, R]

// Result is the outcome of one task, keyed by its submission id.
type Result[R any, K comparable] = types.Result[R, K]

// Future is the handle returned by Submit.
type Future[R any, K comparable] = types.Future[R, K]
