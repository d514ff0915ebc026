//go:build linux

package cpu

import "golang.org/x/sys/unix"

// pinThread binds the current OS thread to core.
func pinThread(core int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	return unix.SchedSetaffinity(0, &set) // 0 = calling thread
}
