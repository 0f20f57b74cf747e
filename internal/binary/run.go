package binary

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// ExitCodeInterrupt is reported when the wrapped binary is terminated by a
// user interrupt, matching shell convention (128 + SIGINT).
const ExitCodeInterrupt = 130

// Run ensures a verified binary is present, then executes it with the given
// arguments, inheriting this process's standard streams. The child's exit
// code is returned unmodified; an interrupt maps to ExitCodeInterrupt
// whether the child died from its own SIGINT or had to be killed after the
// context was cancelled. The returned error is non-nil only when the binary
// could not be provisioned or started at all.
func (p *Provisioner) Run(ctx context.Context, args []string) (int, error) {
	binaryPath, err := p.Ensure(ctx)
	if err != nil {
		return 0, err
	}

	cmd := exec.CommandContext(ctx, binaryPath, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err = cmd.Run()

	// Context cancellation means the user interrupted the wrapper. The
	// child may have trapped SIGINT and been SIGKILLed by CommandContext;
	// its wait status must not leak out as 137.
	if ctx.Err() != nil {
		return ExitCodeInterrupt, nil
	}

	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			if status.Signal() == syscall.SIGINT {
				return ExitCodeInterrupt, nil
			}
			return 128 + int(status.Signal()), nil
		}
		return exitErr.ExitCode(), nil
	}

	return 0, fmt.Errorf("run %s: %w", binaryPath, err)
}
