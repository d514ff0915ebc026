package cpu

import (
	"runtime"
	"testing"
)

func TestCoreFor(t *testing.T) {
	n := runtime.NumCPU()

	tests := []struct {
		name     string
		workerID int
		want     int
	}{
		{name: "first worker", workerID: 0, want: 0},
		{name: "wraps around", workerID: n, want: 0},
		{name: "negative id", workerID: -1, want: 1 % n},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coreFor(tt.workerID); got != tt.want {
				t.Errorf("coreFor(%d) = %d, want %d", tt.workerID, got, tt.want)
			}
		})
	}
}

func TestPin_Release(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		release := Pin(0)
		release()
	}()
	<-done
}
