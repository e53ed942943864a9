// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package toolexec runs external command-line tools and captures their
// output. The Runner interface is the seam that lets the conversion
// pipeline be exercised without ImageMagick or exiftool installed.
package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// killWaitDelay bounds how long Run waits for output pipes to close after the
// tool has been killed on cancellation. Grandchildren can hold them open.
const killWaitDelay = 2 * time.Second

// Result holds the outcome of one tool invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner provides tool lookup and execution.
type Runner interface {
	// LookPath reports where the named executable is found on PATH.
	LookPath(file string) (string, error)

	// Run executes name with args and blocks until it exits. A tool that
	// runs but exits non-zero yields a populated Result and an *ExitError.
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExitError reports a tool that ran but exited with a non-zero status.
type ExitError struct {
	Name   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Name, e.Code)
	if line := lastLine(e.Stderr); line != "" {
		msg += ": " + line
	}
	return msg
}

// OSRunner is the production Runner backed by os/exec.
type OSRunner struct {
	// Timeout bounds each invocation. Zero waits indefinitely.
	Timeout time.Duration

	// Logger receives a debug record per invocation. Nil uses slog.Default().
	Logger *slog.Logger
}

// LookPath wraps exec.LookPath.
func (r *OSRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Run executes the tool with stdout and stderr captured.
func (r *OSRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	log := r.Logger
	if log == nil {
		log = slog.Default()
	}
	log.Debug("running tool", "name", name, "args", args)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = killWaitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	log.Debug("tool finished", "name", name, "exit_code", res.ExitCode, "elapsed", time.Since(start))

	if err == nil {
		return res, nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return res, fmt.Errorf("%s timed out after %s: %w", name, r.Timeout, ctx.Err())
	}
	if ctx.Err() != nil {
		return res, fmt.Errorf("running %s: %w", name, ctx.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return res, &ExitError{Name: name, Code: res.ExitCode, Stderr: res.Stderr}
	}
	return res, fmt.Errorf("running %s: %w", name, err)
}

// lastLine returns the last non-empty line of s, trimmed.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
