// Package cli invokes the locally installed tailscale binary. Every
// invocation passes its arguments as a literal vector to the OS exec
// primitive; nothing is ever interpolated into a shell string.
package cli

import (
	"bytes"
	"context"
	goerrors "errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"tailnetctl/internal/domain"
	"tailnetctl/internal/errors"
)

// DefaultBinary is the tool name resolved via PATH unless a path is
// configured explicitly.
const DefaultBinary = "tailscale"

// DefaultTimeout bounds each invocation.
const DefaultTimeout = 30 * time.Second

// Runner executes the local tool with a bounded per-invocation
// timeout. Invocations are independent OS processes; concurrency
// limits are the caller's policy.
type Runner struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewRunner creates a runner for the given binary. An empty binary
// selects DefaultBinary; a non-positive timeout selects
// DefaultTimeout.
func NewRunner(binary string, timeout time.Duration, logger *slog.Logger) *Runner {
	if binary == "" {
		binary = DefaultBinary
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		binary:  binary,
		timeout: timeout,
		logger:  logger,
	}
}

// Available reports whether the binary is discoverable.
func (r *Runner) Available() bool {
	_, err := exec.LookPath(r.binary)
	return err == nil
}

// Execute runs the tool with the given argument vector and captures
// stdout, stderr and the exit code. A non-zero exit yields a CLI
// execution error carrying stderr; a timeout kills the child process
// and yields the -1 sentinel exit code.
func (r *Runner) Execute(ctx context.Context, args ...string) (domain.CommandResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	commandLine := r.binary + " " + strings.Join(args, " ")

	cmd := exec.CommandContext(ctx, r.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	result := domain.CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			r.logger.Warn("command timed out",
				"command", commandLine,
				"timeout", r.timeout)
			result.ExitCode = -1
			return result, errors.NewCLITimeoutError(commandLine, ctx.Err())
		}

		var exitErr *exec.ExitError
		if goerrors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			r.logger.Debug("command exited non-zero",
				"command", commandLine,
				"exit_code", result.ExitCode,
				"duration", elapsed)
			return result, errors.NewCLIExecutionError(commandLine, result.ExitCode, result.Stderr, err)
		}

		// The process never started (binary missing, permission).
		result.ExitCode = -1
		return result, errors.NewCLIExecutionError(commandLine, -1, result.Stderr, err)
	}

	r.logger.Debug("command completed",
		"command", commandLine,
		"duration", elapsed)
	return result, nil
}
