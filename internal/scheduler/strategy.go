package scheduler

import (
	"context"
	"errors"

	"github.com/utkarsh5026/parcol/internal/types"
)

var (
	// ErrSchedulerClosed is returned by Submit once Shutdown has been called.
	ErrSchedulerClosed = errors.New("scheduler is closed")

	// ErrUnknownStrategy is returned for an unrecognised strategy type or name.
	ErrUnknownStrategy = errors.New("unknown scheduling strategy")
)

// SchedulingStrategy defines how units are queued and handed to workers.
type SchedulingStrategy interface {
	// Submit queues a unit. It blocks while the target queue is full and fails
	// with ErrSchedulerClosed after Shutdown.
	Submit(u *types.Unit) error

	// Shutdown stops accepting units. Workers drain what is already queued and
	// then return.
	Shutdown()

	// Worker runs the receive loop of one worker until the strategy is shut down
	// and drained, or ctx is cancelled.
	Worker(ctx context.Context, workerID int64) error
}

// CreateSchedulingStrategy builds the strategy selected in conf.
func CreateSchedulingStrategy(conf *Config) (SchedulingStrategy, error) {
	if conf.WorkerCount <= 0 {
		return nil, errors.New("scheduler: worker count must be positive")
	}

	r := newRunner(conf)

	switch conf.SchedulingStrategy {
	case SchedulingFIFO:
		return newFIFOStrategy(conf, r), nil
	case SchedulingRoundRobin:
		return newChannelStrategy(conf, r), nil
	default:
		return nil, ErrUnknownStrategy
	}
}
