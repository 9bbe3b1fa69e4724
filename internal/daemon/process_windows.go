//go:build windows

package daemon

import "os"

// processAlive reports whether pid refers to a live process. Windows
// offers no null-signal equivalent through os.Process, so a successful
// FindProcess is treated as the liveness check; a genuinely dead PID
// still fails the daemon's subsequent socket/port dial.
func processAlive(pid int) bool {
	_, err := os.FindProcess(pid)
	return err == nil
}
