//go:build !windows

package update

import (
	"os/exec"
	"syscall"
)

// detach starts the child in a new session, which also makes it the leader
// of a new process group with no controlling terminal.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
