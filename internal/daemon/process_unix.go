//go:build !windows

package daemon

import (
	"os"
	"syscall"
)

// processAlive reports whether pid refers to a live process by sending
// the null signal, the standard POSIX liveness check.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
