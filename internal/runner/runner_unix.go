//go:build !windows

package runner

import (
	"os/exec"
	"syscall"
)

// sysProcAttr places the child in its own process group so terminate can
// reach everything it spawns.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// terminate kills the whole process group. Build and media tools fork
// freely; killing only the direct child would leave grandchildren holding
// the output pipes open, and Run would block until they exit on their own.
func terminate(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
		cmd.Process.Kill()
	}
}
