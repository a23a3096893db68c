package runner

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// sshTransportExitCode is the exit status the ssh client reserves for its own
// connection failures, as opposed to the remote command's exit status.
const sshTransportExitCode = 255

// SSHRunner executes commands on a remote host through the ssh binary.
// The host is expected to be resolvable via the operator's ssh config.
type SSHRunner struct {
	Host string
	User string
}

// NewSSHRunner creates a runner for the given host. user may be empty.
func NewSSHRunner(host, user string) *SSHRunner {
	return &SSHRunner{Host: host, User: user}
}

func (r *SSHRunner) target() string {
	if r.User != "" {
		return r.User + "@" + r.Host
	}
	return r.Host
}

// Run executes command on the remote host. The command string is passed to
// the remote shell as-is; callers are responsible for quoting any untrusted
// content before it gets here.
func (r *SSHRunner) Run(ctx context.Context, command string, opts Opts) (Result, error) {
	remote := command
	if opts.Privileged {
		remote = "sudo -- sh -c " + shellQuote(command)
	}

	cmd := exec.CommandContext(ctx, "ssh", "-o", "BatchMode=yes", r.target(), remote)

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
		return Result{}, &TransportError{Host: r.Host, Err: err}
	}
	code := exitErr.ExitCode()
	if code == sshTransportExitCode {
		return Result{}, &TransportError{Host: r.Host, Err: &CommandError{Command: command, ExitCode: code, Output: stderr.String()}}
	}
	if opts.WarnOnly {
		return Result{Output: output, Succeeded: false}, nil
	}
	return Result{Output: output, Succeeded: false}, &CommandError{
		Command:  command,
		ExitCode: code,
		Output:   output + stderr.String(),
	}
}

// Upload writes data to remotePath on the remote host.
func (r *SSHRunner) Upload(ctx context.Context, data []byte, remotePath string, privileged bool) error {
	remote := "tee " + shellQuote(remotePath) + " >/dev/null"
	if privileged {
		remote = "sudo " + remote
	}

	cmd := exec.CommandContext(ctx, "ssh", "-o", "BatchMode=yes", r.target(), remote)
	cmd.Stdin = bytes.NewReader(data)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() != sshTransportExitCode {
		return &CommandError{Command: remote, ExitCode: exitErr.ExitCode(), Output: stderr.String()}
	}
	return &TransportError{Host: r.Host, Err: err}
}
