package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// Result is the outcome of one engine invocation.
type Result struct {
	// Success is true when the engine exited with status zero.
	Success bool

	// ExitCode is the engine's exit status, or -1 if it never ran to exit.
	ExitCode int

	// Duration is the wall time of the invocation.
	Duration time.Duration
}

// Invoker launches the lint engine with inherited standard streams.
type Invoker struct {
	runtime Runtime
	stdout  io.Writer
	stderr  io.Writer
}

// InvokerOption configures an Invoker.
type InvokerOption func(*Invoker)

// WithOutput redirects the engine's stdout and stderr. The default is the
// current process's streams so output is streamed live.
func WithOutput(stdout, stderr io.Writer) InvokerOption {
	return func(i *Invoker) {
		i.stdout = stdout
		i.stderr = stderr
	}
}

// NewInvoker creates an invoker for the given runtime.
func NewInvoker(rt Runtime, opts ...InvokerOption) *Invoker {
	i := &Invoker{
		runtime: rt,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Invoke runs the engine over files with the serialized configuration token.
// A nonzero exit is reported through Result, not as an error; the error is
// reserved for an engine that could not be started or was cancelled.
func (i *Invoker) Invoke(ctx context.Context, token string, files []string) (*Result, error) {
	if i.runtime.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.runtime.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, i.runtime.Java, i.runtime.EngineArgs(token, files)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = i.stdout
	cmd.Stderr = i.stderr

	start := time.Now()
	err := cmd.Run()
	result := &Result{
		Duration: time.Since(start),
		ExitCode: -1,
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		if ctx.Err() != nil {
			return result, fmt.Errorf("engine interrupted: %w", ctx.Err())
		}
		return result, fmt.Errorf("failed to start engine: %w", err)
	}

	result.ExitCode = 0
	result.Success = true
	return result, nil
}
