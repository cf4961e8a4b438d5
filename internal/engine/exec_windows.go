// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build windows

package engine

import "os/exec"

// setProcessGroup is a no-op on Windows; there is no process group to join.
func setProcessGroup(cmd *exec.Cmd) {}

// killProcessGroup kills the child process itself.
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
