// Package parallel runs map, filter, flatten, flatmap, foreach and reduce over
// a collection on a shared worker pool, with the ordering of their sequential
// counterparts.
//
// An Executor owns one pool. Adapters built from it split their elements into
// chunks, run the chunks on the pool and hand back a collection of the same
// shape: a sequence stays a sequence, a mapping keeps its keys, text stays text
// and a lazy source becomes a lazy source replaying the computed result.
//
//	e := parallel.New(parallel.WithPoolOptions(pool.WithWorkerCount(4)))
//	defer e.Close(5 * time.Second)
//
//	squares, err := parallel.NewSeq(e, []int{1, 2, 3}).Map(ctx, func(n int) (int, error) {
//	    return n * n, nil
//	})
//
// Collections whose type is only known at run time go through From, which
// inspects the value and picks the adapter:
//
//	src, err := parallel.From(e, value)
//	switch src.Shape() {
//	case parallel.ShapeSequence:
//	    seq, _ := src.Sequence()
//	    ...
//	}
//
// When several elements fail, the failure from the lowest chunk is returned,
// wrapped in a *job.ElementError, and no partial result is produced.
package parallel
