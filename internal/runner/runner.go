// Package runner provides command execution and file transfer against the
// deployment target. It is the only channel the VCS adapters use to reach the
// remote host; everything above it deals in command strings and output text.
package runner

import (
	"context"
	"fmt"
	"strings"
)

// Opts controls how a single command is executed.
type Opts struct {
	// Privileged runs the command with elevated privileges (sudo).
	Privileged bool
	// WarnOnly turns a non-zero exit into Result.Succeeded == false instead
	// of an error. Transport failures still return an error.
	WarnOnly bool
}

// Result is the outcome of a completed command.
type Result struct {
	Output    string
	Succeeded bool
}

// Runner executes a command string on the deployment target.
type Runner interface {
	Run(ctx context.Context, command string, opts Opts) (Result, error)
}

// FileTransfer uploads a buffer to a path on the deployment target.
type FileTransfer interface {
	Upload(ctx context.Context, data []byte, remotePath string, privileged bool) error
}

// CommandError reports a command that ran to completion and exited non-zero.
type CommandError struct {
	Command  string
	ExitCode int
	Output   string
}

func (e *CommandError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("command failed (exit %d): %s", e.ExitCode, e.Command)
	}
	return fmt.Sprintf("command failed (exit %d): %s: %s", e.ExitCode, e.Command, out)
}

// TransportError reports that the target host could not be reached or the
// command could not be started at all. Only transport errors are retryable.
type TransportError struct {
	Host string
	Err  error
}

func (e *TransportError) Error() string {
	if e.Host == "" {
		return fmt.Sprintf("transport failure: %v", e.Err)
	}
	return fmt.Sprintf("transport failure on %s: %v", e.Host, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// shellQuote quotes a string for safe use in shell commands.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}
