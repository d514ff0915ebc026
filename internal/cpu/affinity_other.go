//go:build !linux && !windows

package cpu

// pinThread is a no-op: macOS and the BSDs expose no per-thread affinity call.
func pinThread(int) error {
	return nil
}
