package dispatch

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// TaskInvoker runs the briefing once and reports its exit status.
// A non-nil error means the task could not be started at all.
type TaskInvoker interface {
	Invoke(ctx context.Context) (exitCode int, err error)
}

// ProcessInvoker runs the briefing as a child process and waits for it.
type ProcessInvoker struct {
	Path   string
	Args   []string
	Stdout io.Writer
	Stderr io.Writer
}

// NewSelfInvoker re-executes the current binary with the given arguments.
func NewSelfInvoker(args ...string) (*ProcessInvoker, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	return &ProcessInvoker{
		Path:   exe,
		Args:   args,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, nil
}

func (p *ProcessInvoker) Invoke(ctx context.Context) (int, error) {
	cmd := exec.CommandContext(ctx, p.Path, p.Args...) //nolint:gosec // path is our own executable
	cmd.Stdout = p.Stdout
	cmd.Stderr = p.Stderr
	cmd.Env = os.Environ()

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// FuncInvoker runs the briefing in-process. A returned error maps to exit code 1.
type FuncInvoker func(ctx context.Context) error

func (f FuncInvoker) Invoke(ctx context.Context) (int, error) {
	if err := f(ctx); err != nil {
		return 1, nil
	}
	return 0, nil
}
