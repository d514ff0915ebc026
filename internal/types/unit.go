package types

import "context"

// Unit is a type-erased unit of work as seen by the scheduler.
//
// The typed task, its process function and its future are captured inside Run, so a
// single pool can execute units belonging to jobs with different element types.
type Unit struct {
	// Id is the pool-wide submission sequence number (1-based).
	Id int64

	// Affinity optionally pins units with the same key to the same worker.
	Affinity string

	// Run executes the unit. It is called exactly once by exactly one worker.
	Run func(ctx context.Context, workerID int64)

	// Abort reports err as the unit's outcome without running it. Schedulers call
	// it instead of Run when the unit cannot start (cancelled context, rate
	// limiter failure). Exactly one of Run and Abort is called.
	Abort func(err error)
}

// NewUnit creates a Unit with the given id, body and abort path.
func NewUnit(id int64, run func(ctx context.Context, workerID int64), abort func(err error)) *Unit {
	return &Unit{
		Id:    id,
		Run:   run,
		Abort: abort,
	}
}
