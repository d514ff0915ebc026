package scheduler

import (
	"time"

	"golang.org/x/time/rate"
)

// SchedulingStrategyType selects how submitted units reach workers.
type SchedulingStrategyType int

const (
	// SchedulingFIFO feeds every worker from one shared queue: the oldest queued
	// unit goes to whichever worker becomes idle first.
	SchedulingFIFO SchedulingStrategyType = iota

	// SchedulingRoundRobin gives each worker its own queue and deals units out in
	// turn (or by affinity key when one is set).
	SchedulingRoundRobin
)

// String returns the strategy name used in flags and configuration files.
func (s SchedulingStrategyType) String() string {
	switch s {
	case SchedulingFIFO:
		return "fifo"
	case SchedulingRoundRobin:
		return "round-robin"
	default:
		return "unknown"
	}
}

// ParseStrategy maps a configuration name onto a strategy type.
func ParseStrategy(name string) (SchedulingStrategyType, error) {
	switch name {
	case "", "fifo":
		return SchedulingFIFO, nil
	case "round-robin", "roundrobin", "rr":
		return SchedulingRoundRobin, nil
	default:
		return 0, ErrUnknownStrategy
	}
}

// Config holds everything the scheduling layer needs from the pool configuration.
type Config struct {
	// Number of worker goroutines.
	WorkerCount int

	// Capacity of each queue. Submit blocks while the queue is full.
	TaskBuffer int

	// Strategy used to distribute units.
	SchedulingStrategy SchedulingStrategyType

	// Optional token bucket applied before each unit starts (may be nil).
	RateLimiter *rate.Limiter

	// Hook called on the worker goroutine right before a unit runs.
	OnUnitStart func(unitID, workerID int64)

	// Hook called on the worker goroutine after a unit finished running.
	OnUnitEnd func(unitID, workerID int64, elapsed time.Duration)
}
