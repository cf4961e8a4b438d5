// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build !windows

package engine

import (
	"os/exec"
	"syscall"
)

// setProcessGroup puts the child in its own process group so a timeout kill
// reaches the converter and everything it spawned.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup sends SIGKILL to the child's whole process group. A hung
// engine cannot be trusted to handle anything gentler.
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
