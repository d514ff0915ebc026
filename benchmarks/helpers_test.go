package benchmarks

import (
	"runtime"

	"github.com/utkarsh5026/parcol/parallel"
	"github.com/utkarsh5026/parcol/pool"
)

// strategyConfig is one pool configuration under benchmark.
type strategyConfig struct {
	name string
	opts []pool.Option
}

func getAllStrategies(workerCount int) []strategyConfig {
	return []strategyConfig{
		{
			name: "FIFO",
			opts: []pool.Option{
				pool.WithWorkerCount(workerCount),
				pool.WithSchedulingStrategy(pool.SchedulingFIFO),
			},
		},
		{
			name: "RoundRobin",
			opts: []pool.Option{
				pool.WithWorkerCount(workerCount),
				pool.WithSchedulingStrategy(pool.SchedulingRoundRobin),
			},
		},
	}
}

func newExecutor(cfg strategyConfig, extra ...parallel.Option) *parallel.Executor {
	opts := append([]parallel.Option{parallel.WithPoolOptions(cfg.opts...)}, extra...)
	return parallel.New(opts...)
}

func workers() int {
	return runtime.GOMAXPROCS(0)
}
