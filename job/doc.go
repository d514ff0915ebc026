// Package job turns one collection operation into chunked units of work on a
// shared pool and reassembles their outcomes in order.
//
// The pipeline has three stages:
//
//   - Split / SplitSeq partition the input into chunks tagged with their index
//   - Dispatch / DispatchSeq submit every chunk to a pool.Pool; a continuation
//     on each submission delivers the chunk's Outcome to the job's Aggregator
//   - the Aggregator places outcomes by index and publishes either the
//     concatenated values or one canonical error once every chunk reported
//
// Whatever order the pool completes chunks in, results come back in chunk
// index order. When several chunks fail, the failure with the lowest chunk
// index is reported, so repeated runs surface the same error.
package job
