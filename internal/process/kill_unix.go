//go:build !windows

// Package process terminates browser process trees left by the PDF exporter.
package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid, taking
// Chrome's renderer and GPU helpers down with it. Best effort: the
// launcher's own Kill runs afterwards as a fallback.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
