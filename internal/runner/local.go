package runner

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
)

// LocalRunner executes commands on the local machine through sh. It is used
// for checkouts on the deploy host itself and for exercising the adapters in
// tests without an ssh hop.
type LocalRunner struct{}

// NewLocalRunner creates a runner for the local machine.
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{}
}

// Run executes command via sh -c, with sudo when privileged.
func (r *LocalRunner) Run(ctx context.Context, command string, opts Opts) (Result, error) {
	var cmd *exec.Cmd
	if opts.Privileged {
		cmd = exec.CommandContext(ctx, "sudo", "sh", "-c", command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", command)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	output := strings.TrimRight(stdout.String(), "\n")
	if err == nil {
		return Result{Output: output, Succeeded: true}, nil
	}

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return Result{}, &TransportError{Err: err}
	}
	if opts.WarnOnly {
		return Result{Output: output, Succeeded: false}, nil
	}
	return Result{Output: output, Succeeded: false}, &CommandError{
		Command:  command,
		ExitCode: exitErr.ExitCode(),
		Output:   output + stderr.String(),
	}
}

// Upload writes data to path on the local filesystem, via sudo tee when
// privileged so target directories owned by root still work.
func (r *LocalRunner) Upload(ctx context.Context, data []byte, remotePath string, privileged bool) error {
	if !privileged {
		return os.WriteFile(remotePath, data, 0644)
	}

	cmd := exec.CommandContext(ctx, "sudo", "tee", remotePath)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = nil

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &CommandError{Command: "sudo tee " + remotePath, ExitCode: exitErr.ExitCode(), Output: stderr.String()}
		}
		return &TransportError{Err: err}
	}
	return nil
}
