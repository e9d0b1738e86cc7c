//go:build !windows

// Package process terminates the browser started for PDF rendering.
package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group of pid, reaching the
// renderer and GPU helpers Chrome forks. Errors are ignored: the process
// may already be gone.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
