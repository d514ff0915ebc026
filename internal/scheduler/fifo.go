package scheduler

import (
	"context"
	"sync"

	"github.com/utkarsh5026/parcol/internal/types"
)

// fifoStrategy feeds all workers from one buffered channel, so units start in
// submission order on whichever worker is idle.
type fifoStrategy struct {
	queue    chan *types.Unit
	quit     chan struct{}
	stopOnce sync.Once
	mu       sync.RWMutex // guards closing queue against in-flight sends
	closed   bool
	runner   *runner
}

func newFIFOStrategy(conf *Config, r *runner) *fifoStrategy {
	return &fifoStrategy{
		queue:  make(chan *types.Unit, max(conf.TaskBuffer, 1)),
		quit:   make(chan struct{}),
		runner: r,
	}
}

// Submit enqueues u, blocking while the queue is full.
func (s *fifoStrategy) Submit(u *types.Unit) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrSchedulerClosed
	}

	select {
	case s.queue <- u:
		return nil
	case <-s.quit:
		return ErrSchedulerClosed
	}
}

// Shutdown closes the queue; workers finish whatever is left in it.
func (s *fifoStrategy) Shutdown() {
	s.stopOnce.Do(func() {
		close(s.quit)
		s.mu.Lock()
		s.closed = true
		close(s.queue)
		s.mu.Unlock()
	})
}

// Worker executes units until the queue is closed and empty or ctx ends.
func (s *fifoStrategy) Worker(ctx context.Context, workerID int64) error {
	for {
		select {
		case <-ctx.Done():
			drainQueue(ctx, s.queue, s.runner, workerID)
			return ctx.Err()
		case u, ok := <-s.queue:
			if !ok {
				return nil
			}
			s.runner.execute(ctx, u, workerID)
		}
	}
}
