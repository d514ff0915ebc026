package scheduler

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/utkarsh5026/parcol/internal/types"
)

// channelStrategy gives every worker a dedicated channel and distributes units
// round-robin, or by FNV hash of the unit's affinity key when it has one.
type channelStrategy struct {
	taskChans []chan *types.Unit
	counter   atomic.Int64
	quit      chan struct{}
	stopOnce  sync.Once
	mu        sync.RWMutex // guards closing taskChans against in-flight sends
	closed    bool
	runner    *runner
}

func newChannelStrategy(conf *Config, r *runner) *channelStrategy {
	c := &channelStrategy{
		taskChans: make([]chan *types.Unit, conf.WorkerCount),
		quit:      make(chan struct{}),
		runner:    r,
	}

	for i := range c.taskChans {
		c.taskChans[i] = make(chan *types.Unit, max(conf.TaskBuffer, 1))
	}

	return c
}

// Submit sends u to the next worker's channel.
func (s *channelStrategy) Submit(u *types.Unit) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrSchedulerClosed
	}

	select {
	case s.taskChans[s.next(u)] <- u:
		return nil
	case <-s.quit:
		return ErrSchedulerClosed
	}
}

// Shutdown closes every worker channel; each worker drains its own.
func (s *channelStrategy) Shutdown() {
	s.stopOnce.Do(func() {
		close(s.quit)
		s.mu.Lock()
		s.closed = true
		for _, ch := range s.taskChans {
			close(ch)
		}
		s.mu.Unlock()
	})
}

// Worker executes units from the worker's own channel.
func (s *channelStrategy) Worker(ctx context.Context, workerID int64) error {
	ch := s.taskChans[workerID]
	for {
		select {
		case <-ctx.Done():
			drainQueue(ctx, ch, s.runner, workerID)
			return ctx.Err()
		case u, ok := <-ch:
			if !ok {
				return nil
			}
			s.runner.execute(ctx, u, workerID)
		}
	}
}

// next picks the channel index for u.
func (s *channelStrategy) next(u *types.Unit) int64 {
	n := int64(len(s.taskChans))
	if u.Affinity != "" {
		return int64(fnvHash(u.Affinity) % uint32(n))
	}
	return (s.counter.Add(1) - 1) % n
}

// fnvHash is 32-bit FNV-1a.
func fnvHash(key string) uint32 {
	const (
		offset32 = 2166136261
		prime32  = 16777619
	)

	hash := uint32(offset32)
	for i := 0; i < len(key); i++ {
		hash ^= uint32(key[i])
		hash *= prime32
	}
	return hash
}
