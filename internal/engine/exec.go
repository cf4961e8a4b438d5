// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// waitDelay bounds how long Wait blocks on inherited pipes after the kill,
// in case a converter leaked the descriptors to an orphaned child.
const waitDelay = 5 * time.Second

// runResult captures the observable output of one external command.
type runResult struct {
	stdout   string
	stderr   string
	exitCode int
}

// runner abstracts external command execution for testing.
type runner interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, env []string, name string, args ...string) (runResult, error)
}

// osRunner is the production runner backed by os/exec. Every process it
// starts is placed in its own process group and the whole group is killed
// when the context expires, so a hung converter cannot outlive its deadline
// through children it spawned.
type osRunner struct{}

func (osRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osRunner) Run(ctx context.Context, env []string, name string, args ...string) (runResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if env != nil {
		cmd.Env = env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	res := runResult{stdout: stdout.String(), stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.exitCode = exitErr.ExitCode()
		} else {
			res.exitCode = -1
		}
		// A kill triggered by the deadline surfaces as "signal: killed";
		// report the context error instead so callers can classify it.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		return res, err
	}
	return res, nil
}

var defaultRunner runner = osRunner{}
