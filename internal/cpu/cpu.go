// Package cpu pins pool workers to CPU cores.
//
// Pinning is best effort: on platforms without an affinity syscall the worker is
// only locked to its OS thread.
package cpu

import "runtime"

// NumCPU returns the number of logical CPUs usable by the process.
func NumCPU() int {
	return runtime.NumCPU()
}

// coreFor maps a worker id onto a valid core index.
func coreFor(workerID int) int {
	n := runtime.NumCPU()
	if n <= 0 {
		return 0
	}
	if workerID < 0 {
		workerID = -workerID
	}
	return workerID % n
}

// Pin locks the calling goroutine to its OS thread and, where supported, binds
// that thread to core workerID mod NumCPU. The returned func undoes the lock and
// must be deferred by the worker.
func Pin(workerID int) (release func()) {
	runtime.LockOSThread()
	_ = pinThread(coreFor(workerID))

	return runtime.UnlockOSThread
}
