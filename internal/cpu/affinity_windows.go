//go:build windows

package cpu

import "syscall"

var (
	kernel32              = syscall.NewLazyDLL("kernel32.dll")
	setThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
	getCurrentThread      = kernel32.NewProc("GetCurrentThread")
)

// pinThread binds the current OS thread to core.
func pinThread(core int) error {
	handle, _, _ := getCurrentThread.Call()

	prev, _, err := setThreadAffinityMask.Call(handle, uintptr(1)<<uint(core))
	if prev == 0 {
		return err
	}
	return nil
}
