package engine

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// RuntimeMissingMessage is the remediation shown when the probe fails.
const RuntimeMissingMessage = "Please install Java before running JSHint."

// Precondition verifies that the external runtime works before any engine
// invocation. A successful check is remembered for the lifetime of the value;
// failures are not, so a later call probes again. A Precondition is not safe
// for concurrent use.
type Precondition struct {
	runtime  Runtime
	verified bool
}

// NewPrecondition creates a precondition check for the given runtime.
func NewPrecondition(rt Runtime) *Precondition {
	return &Precondition{runtime: rt}
}

// Verified reports whether a probe has already succeeded.
func (p *Precondition) Verified() bool {
	return p.verified
}

// Verify runs the probe unless an earlier probe succeeded. Any output other
// than ProbeSentinel, or a probe that cannot be launched, yields a
// no-runtime error.
func (p *Precondition) Verify(ctx context.Context) error {
	if p.verified {
		return nil
	}

	if _, err := exec.LookPath(p.runtime.Java); err != nil {
		return NewNoRuntimeError(RuntimeMissingMessage, err)
	}

	cmd := exec.CommandContext(ctx, p.runtime.Java, p.runtime.ProbeArgs()...)
	out, err := cmd.Output()
	if err != nil {
		return NewNoRuntimeError(RuntimeMissingMessage, fmt.Errorf("probe failed: %w", err))
	}

	if got := strings.TrimSpace(string(out)); got != ProbeSentinel {
		return NewNoRuntimeError(RuntimeMissingMessage, fmt.Errorf("unexpected probe output %q", got))
	}

	p.verified = true
	return nil
}
