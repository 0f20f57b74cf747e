package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/RevylAI/revyl-cli/internal/binary"
)

// CommandError is returned when a wrapped CLI command fails or produces
// output the caller cannot use. It carries the captured streams so callers
// can present the binary's own diagnostics.
type CommandError struct {
	// Args is the argument vector passed to the binary.
	Args []string
	// Stdout and Stderr are the captured, trimmed output streams.
	Stdout string
	Stderr string
	// ExitCode is the binary's exit code; 0 when the failure is not an
	// exit-status failure (e.g. unparsable JSON on a successful exit).
	ExitCode int
	// Reason overrides the default "command failed" phrasing.
	Reason string
}

func (e *CommandError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "command failed"
	}

	details := e.Stderr
	if details == "" {
		details = e.Stdout
	}
	if details == "" {
		details = fmt.Sprintf("exit code %d", e.ExitCode)
	}

	return fmt.Sprintf("%s: revyl %s: %s", reason, strings.Join(e.Args, " "), details)
}

// Runner executes Revyl CLI subcommands with captured output.
type Runner struct {
	binaryPath string
}

// NewRunner provisions a verified binary with default settings and returns
// a Runner bound to it.
func NewRunner(ctx context.Context) (*Runner, error) {
	prov, err := binary.NewProvisioner(binary.Config{})
	if err != nil {
		return nil, err
	}

	binaryPath, err := prov.Ensure(ctx)
	if err != nil {
		return nil, err
	}

	return &Runner{binaryPath: binaryPath}, nil
}

// NewRunnerForBinary returns a Runner bound to an explicit binary path,
// bypassing provisioning. The caller vouches for the binary.
func NewRunnerForBinary(binaryPath string) *Runner {
	return &Runner{binaryPath: binaryPath}
}

// BinaryPath returns the path of the wrapped binary.
func (r *Runner) BinaryPath() string {
	return r.binaryPath
}

// Run executes a subcommand with captured output and returns its trimmed
// stdout. A nonzero exit yields a *CommandError.
func (r *Runner) Run(ctx context.Context, args ...string) (string, error) {
	stdout, err := r.capture(ctx, args)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout), nil
}

// RunJSON executes a subcommand with --json appended and decodes its stdout.
// Empty output decodes to an empty object; non-JSON output on a successful
// exit is a *CommandError, not a silent fallback.
func (r *Runner) RunJSON(ctx context.Context, args ...string) (interface{}, error) {
	jsonArgs := append(append([]string{}, args...), "--json")

	stdout, err := r.capture(ctx, jsonArgs)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(stdout)
	if trimmed == "" {
		return map[string]interface{}{}, nil
	}

	var value interface{}
	if err := json.Unmarshal([]byte(trimmed), &value); err != nil {
		return nil, &CommandError{
			Args:   jsonArgs,
			Stdout: trimmed,
			Reason: "command returned non-JSON output",
		}
	}

	return value, nil
}

// capture runs the binary and returns raw stdout. Failures to even start
// the process are plain errors; a started process that exits nonzero is a
// *CommandError.
func (r *Runner) capture(ctx context.Context, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, r.binaryPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", fmt.Errorf("run %s: %w", r.binaryPath, err)
		}
		return "", &CommandError{
			Args:     args,
			Stdout:   strings.TrimSpace(stdout.String()),
			Stderr:   strings.TrimSpace(stderr.String()),
			ExitCode: exitErr.ExitCode(),
		}
	}

	return stdout.String(), nil
}
