package parallel

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/utkarsh5026/parcol/job"
	"github.com/utkarsh5026/parcol/pool"
)

// DefaultLazyChunkSize is the chunk size used for lazy sources, whose length is
// not known up front.
const DefaultLazyChunkSize = 32

// Option configures an Executor.
type Option func(*executorConfig)

type executorConfig struct {
	poolOpts      []pool.Option
	chunkSize     int
	lazyChunkSize int
	logger        *slog.Logger
}

// WithPoolOptions passes options to the pool the Executor creates.
func WithPoolOptions(opts ...pool.Option) Option {
	return func(cfg *executorConfig) {
		cfg.poolOpts = append(cfg.poolOpts, opts...)
	}
}

// WithChunkSize fixes the number of elements per chunk. By default it is
// derived from the input size and the number of workers.
func WithChunkSize(n int) Option {
	return func(cfg *executorConfig) {
		if n > 0 {
			cfg.chunkSize = n
		}
	}
}

// WithLazyChunkSize sets the chunk size for lazy sources.
func WithLazyChunkSize(n int) Option {
	return func(cfg *executorConfig) {
		if n > 0 {
			cfg.lazyChunkSize = n
		}
	}
}

// WithLogger sets the logger used for job lifecycle messages (Debug level).
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *executorConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Executor owns the worker pool shared by every collection built from it.
type Executor struct {
	pool          *pool.Pool
	chunkSize     int
	lazyChunkSize int
	logger        *slog.Logger
}

// New creates an Executor and starts its pool.
func New(opts ...Option) *Executor {
	cfg := &executorConfig{
		lazyChunkSize: DefaultLazyChunkSize,
		logger:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Executor{
		pool:          pool.New(cfg.poolOpts...),
		chunkSize:     cfg.chunkSize,
		lazyChunkSize: cfg.lazyChunkSize,
		logger:        cfg.logger,
	}
}

// Pool returns the underlying pool.
func (e *Executor) Pool() *pool.Pool {
	return e.pool
}

// Workers returns the pool size.
func (e *Executor) Workers() int {
	return e.pool.Size()
}

// Close shuts the pool down, waiting at most timeout for queued work.
func (e *Executor) Close(timeout time.Duration) error {
	return e.pool.Shutdown(timeout)
}

func (e *Executor) chunkSizeFor(n int) int {
	if e.chunkSize > 0 {
		return e.chunkSize
	}
	return job.ChunkSize(n, e.pool.Size())
}

// dispatch starts one job over items without waiting for it.
func dispatch[T, R any](ctx context.Context, e *Executor, items []T, fn job.ChunkFunc[T, R]) (*job.Job[R], error) {
	return job.Dispatch(ctx, e.pool, job.Split(items, e.chunkSizeFor(len(items))), fn)
}

// run executes one job over items and waits for its ordered result.
func run[T, R any](ctx context.Context, e *Executor, shape Shape, op string, items []T, fn job.ChunkFunc[T, R]) ([]R, error) {
	start := time.Now()

	j, err := dispatch(ctx, e, items, fn)
	if err != nil {
		e.logger.LogAttrs(ctx, slog.LevelDebug, "job dispatch failed",
			slog.String("shape", shape.String()),
			slog.String("op", op),
			slog.Any("error", err),
		)
		return nil, err
	}

	values, err := j.GetWithContext(ctx)
	e.logJob(ctx, j.ID().String(), shape, op, j.Elements(), j.Chunks(), start, err)
	return values, err
}

// runSeq executes one job over a lazy source and waits for its ordered result.
func runSeq[T, R any](ctx context.Context, e *Executor, op string, src iter.Seq[T], fn job.ChunkFunc[T, R]) ([]R, error) {
	start := time.Now()

	j, err := job.DispatchSeq(ctx, e.pool, src, e.lazyChunkSize, fn)
	if err != nil {
		e.logger.LogAttrs(ctx, slog.LevelDebug, "job dispatch failed",
			slog.String("shape", ShapeLazy.String()),
			slog.String("op", op),
			slog.Any("error", err),
		)
		return nil, err
	}

	values, err := j.GetWithContext(ctx)
	e.logJob(ctx, j.ID().String(), ShapeLazy, op, j.Elements(), j.Chunks(), start, err)
	return values, err
}

// reduce folds items on the pool.
func reduce[T any](ctx context.Context, e *Executor, shape Shape, items []T, op func(acc, v T) (T, error), init []T) (T, error) {
	start := time.Now()
	chunks := job.Split(items, e.chunkSizeFor(len(items)))

	result, err := job.Reduce(ctx, e.pool, chunks, job.ReduceFunc[T](op), init...)
	e.logJob(ctx, "", shape, "reduce", len(items), len(chunks), start, err)
	return result, err
}

func (e *Executor) logJob(ctx context.Context, id string, shape Shape, op string, elements, chunks int, start time.Time, err error) {
	attrs := []slog.Attr{
		slog.String("shape", shape.String()),
		slog.String("op", op),
		slog.Int("elements", elements),
		slog.Int("chunks", chunks),
		slog.Duration("elapsed", time.Since(start)),
	}
	if id != "" {
		attrs = append(attrs, slog.String("job", id))
	}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
	}
	e.logger.LogAttrs(ctx, slog.LevelDebug, "job finished", attrs...)
}

// lift adapts a plain element function to the chunk helpers.
func lift[T, R any](f func(T) (R, error)) func(context.Context, T) (R, error) {
	return func(_ context.Context, v T) (R, error) {
		return f(v)
	}
}

func liftEach[T any](f func(T) error) func(context.Context, T) error {
	return func(_ context.Context, v T) error {
		return f(v)
	}
}
