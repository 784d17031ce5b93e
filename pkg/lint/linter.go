package lint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jshint-go/jshint/pkg/config"
	"github.com/jshint-go/jshint/pkg/engine"
	"github.com/jshint-go/jshint/pkg/files"
	"github.com/jshint-go/jshint/pkg/policy"
	"github.com/jshint-go/jshint/pkg/stores"
	"github.com/jshint-go/jshint/pkg/telemetry"
	"github.com/rs/zerolog"
)

// Banner is printed before the engine starts.
const Banner = "Running JSHint..."

// FailureMessage is the message of the error returned when the engine
// reports problems.
const FailureMessage = "JSHint test failed."

// Linter runs the engine once per Run over a configuration and file list
// fixed at construction.
type Linter struct {
	opts Options

	runtime     engine.Runtime
	runtimeSet  bool
	precond     *engine.Precondition
	invoker     *engine.Invoker
	invokerOpts []engine.InvokerOption
	policies    *policy.Engine
	schemas     *config.SchemaRegistry
	history     stores.Store
	tel         *telemetry.Telemetry
	logger      *telemetry.Logger
	banner      io.Writer

	resolution *config.Resolution
	files      []string
	token      string
	digest     string
}

// New resolves the configuration and selects the files. Unreadable default
// configuration and unencodable values fail here, before any process runs.
func New(ctx context.Context, opts Options, options ...Option) (*Linter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	l := &Linter{
		opts:   opts,
		banner: os.Stderr,
	}
	for _, opt := range options {
		opt(l)
	}

	if l.tel == nil {
		l.tel = telemetry.Nop()
	}
	if l.logger == nil {
		l.logger = l.tel.Logger
	}
	l.logger = l.logger.NewComponentLogger("lint")

	if !l.runtimeSet {
		l.runtime = engine.DefaultRuntime(engine.DefaultVendorDir())
	}
	if err := l.runtime.Validate(); err != nil {
		return nil, err
	}
	if l.precond == nil {
		l.precond = engine.NewPrecondition(l.runtime)
	}
	l.invoker = engine.NewInvoker(l.runtime, l.invokerOpts...)

	if err := l.resolve(ctx); err != nil {
		return nil, err
	}
	if err := l.selectFiles(ctx); err != nil {
		return nil, err
	}

	if opts.DisablePolicies {
		l.policies = nil
		return l, nil
	}
	if l.policies == nil {
		eng, err := policy.NewEngine(l.logger.Zerolog())
		if err != nil {
			return nil, err
		}
		if len(opts.PolicyDirs) > 0 {
			if err := eng.LoadPolicies(ctx, opts.PolicyDirs); err != nil {
				return nil, err
			}
		}
		l.policies = eng
	}
	if err := l.togglePolicies(); err != nil {
		return nil, err
	}

	return l, nil
}

func (l *Linter) togglePolicies() error {
	for _, name := range l.opts.EnabledPolicies {
		if err := l.policies.EnablePolicy(name); err != nil {
			return fmt.Errorf("--enable-policy: %w", err)
		}
	}
	for _, name := range l.opts.DisabledPolicies {
		if err := l.policies.DisablePolicy(name); err != nil {
			return fmt.Errorf("--disable-policy: %w", err)
		}
	}
	return nil
}

func (l *Linter) resolve(ctx context.Context) (err error) {
	op := l.tel.StartOperation(ctx, "lint.resolve", telemetry.AttrConfigPath.String(l.opts.ConfigPath))
	defer func() { op.End(err) }()

	store := config.NewStore(config.WithLogger(l.logger.Zerolog()))
	res, err := store.Resolve(op.Ctx, l.opts.DefaultConfigPath, l.opts.ConfigPath)
	if err != nil {
		return err
	}
	l.resolution = res
	l.token = config.Serialize(res.Config)
	sum := sha256.Sum256([]byte(l.token))
	l.digest = hex.EncodeToString(sum[:])[:12]

	op.Span.SetAttributes(telemetry.AttrConfigDigest.String(l.digest))

	if l.schemas != nil {
		issues, err := l.schemas.Check(config.OptionsSchema, res.Config)
		if err != nil {
			return err
		}
		zl := l.logger.Zerolog()
		for _, issue := range issues {
			zl.Warn().Str("issue", issue).Msg("Configuration does not match the options schema")
		}
	}
	return nil
}

func (l *Linter) selectFiles(ctx context.Context) (err error) {
	op := l.tel.StartOperation(ctx, "lint.select")
	defer func() { op.End(err) }()

	include, err := files.PatternsFrom(config.PathsKey, l.opts.Paths, l.resolution.Paths)
	if err != nil {
		return err
	}
	exclude, err := files.PatternsFrom(config.ExcludePathsKey, l.opts.ExcludePaths, l.resolution.ExcludePaths)
	if err != nil {
		return err
	}

	selected, err := files.NewSelector(files.WithLogger(l.logger.Zerolog())).Select(include, exclude)
	if err != nil {
		return err
	}
	l.files = selected

	op.Span.SetAttributes(telemetry.AttrFileCount.Int(len(selected)))
	l.tel.Metrics.SetFilesSelected(len(selected))
	return nil
}

// Config returns the resolved configuration handed to the engine.
func (l *Linter) Config() *config.Mapping { return l.resolution.Config }

// Resolution returns the full configuration resolution, layers included.
func (l *Linter) Resolution() *config.Resolution { return l.resolution }

// Files returns the selected files.
func (l *Linter) Files() []string { return l.files }

// Token returns the serialized configuration argument.
func (l *Linter) Token() string { return l.token }

// Digest returns a short hash of the serialized configuration.
func (l *Linter) Digest() string { return l.digest }

// Precondition returns the runtime check, for sharing with other linters.
func (l *Linter) Precondition() *engine.Precondition { return l.precond }

// PolicyEngine returns the policy engine, nil when policies are disabled.
func (l *Linter) PolicyEngine() *policy.Engine { return l.policies }

// Run checks the runtime, evaluates policies and invokes the engine. A
// non-zero engine exit is returned as a lint check failure.
func (l *Linter) Run(ctx context.Context) error {
	runID := uuid.NewString()
	start := time.Now()
	logger := l.logger.WithRunID(runID)

	op := l.tel.StartOperation(ctx, "lint.run",
		telemetry.AttrRunID.String(runID),
		telemetry.AttrFileCount.Int(len(l.files)),
		telemetry.AttrConfigDigest.String(l.digest),
	)

	err := l.run(op.Ctx, logger.Zerolog())
	duration := op.Timer.Duration()
	status := runStatus(err)

	op.Span.SetAttributes(telemetry.AttrRunStatus.String(string(status)))
	var classified *engine.Error
	if errors.As(err, &classified) {
		op.Span.SetAttributes(telemetry.AttrErrorKind.String(string(classified.Kind)))
	}
	op.End(err)

	l.tel.Metrics.RecordRun(string(status), duration)
	l.record(ctx, logger, &stores.Run{
		ID:           runID,
		StartedAt:    start,
		Duration:     duration,
		Status:       status,
		FileCount:    len(l.files),
		ConfigDigest: l.digest,
		Error:        errorText(err),
	})

	zl := logger.Zerolog()
	zl.Debug().
		Str("status", string(status)).
		Dur("duration", duration).
		Msg("Run finished")

	return err
}

func (l *Linter) run(ctx context.Context, logger zerolog.Logger) error {
	if err := l.verifyRuntime(ctx); err != nil {
		return err
	}

	if err := l.checkPolicies(ctx, logger); err != nil {
		return err
	}

	fmt.Fprintln(l.banner, Banner)

	return l.invoke(ctx, logger)
}

func (l *Linter) verifyRuntime(ctx context.Context) (err error) {
	cached := l.precond.Verified()
	op := l.tel.StartOperation(ctx, "lint.probe", telemetry.AttrProbeCached.Bool(cached))
	defer func() { op.End(err) }()

	err = l.precond.Verify(op.Ctx)
	switch {
	case cached:
		l.tel.Metrics.RecordProbe("cached")
	case err != nil:
		l.tel.Metrics.RecordProbe("failed")
	default:
		l.tel.Metrics.RecordProbe("ok")
	}
	return err
}

func (l *Linter) checkPolicies(ctx context.Context, logger zerolog.Logger) (err error) {
	if l.policies == nil {
		return nil
	}

	op := l.tel.StartOperation(ctx, "lint.policy")
	defer func() { op.End(err) }()

	result, err := l.EvaluatePolicies(op.Ctx, "lint")
	if err != nil {
		return err
	}

	for _, msg := range result.Errors {
		logger.Warn().Msg(msg)
	}
	for _, w := range result.Warnings {
		l.tel.Metrics.RecordPolicyViolation(string(w.Severity))
		logger.Warn().Str("policy", w.Policy).Str("source", l.policySource(w.Policy)).Str("key", w.Key).Msg(w.Message)
	}
	for _, v := range result.Violations {
		l.tel.Metrics.RecordPolicyViolation(string(v.Severity))
		logger.Error().Str("policy", v.Policy).Str("source", l.policySource(v.Policy)).Str("key", v.Key).Msg(v.Message)
	}

	if !result.Allowed {
		msgs := make([]string, len(result.Violations))
		for i, v := range result.Violations {
			msgs[i] = fmt.Sprintf("%s: %s", v.Policy, v.Message)
		}
		return engine.NewPolicyDeniedError(strings.Join(msgs, "; "))
	}
	return nil
}

// policySource names the file a policy came from, "builtin" for the
// policies shipped with the tool.
func (l *Linter) policySource(name string) string {
	p, err := l.policies.GetPolicy(name)
	if err != nil {
		return ""
	}
	if p.Source == "" {
		return "builtin"
	}
	return p.Source
}

// EvaluatePolicies runs the policies over the resolved configuration and the
// selected files. With policies disabled the result allows everything.
func (l *Linter) EvaluatePolicies(ctx context.Context, operation string) (*policy.Result, error) {
	if l.policies == nil {
		return &policy.Result{Allowed: true, EvaluatedAt: time.Now()}, nil
	}

	wd, _ := os.Getwd()
	result, err := l.policies.Evaluate(ctx, &policy.Input{
		Config: l.resolution.Config.Interface(),
		Files:  l.files,
		Context: &policy.Context{
			Timestamp:  time.Now(),
			Operation:  operation,
			ConfigPath: l.opts.ConfigPath,
			WorkingDir: wd,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("policy evaluation: %w", err)
	}
	return result, nil
}

func (l *Linter) invoke(ctx context.Context, logger zerolog.Logger) (err error) {
	op := l.tel.StartOperation(ctx, "lint.invoke", telemetry.AttrFileCount.Int(len(l.files)))
	defer func() { op.End(err) }()

	logger.Debug().Int("files", len(l.files)).Str("config_digest", l.digest).Msg("Invoking engine")

	result, err := l.invoker.Invoke(op.Ctx, l.token, l.files)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		// An engine that cannot start fails the check like a failing engine.
		return engine.NewLintCheckFailure(FailureMessage, err)
	}
	op.Span.SetAttributes(telemetry.AttrExitCode.Int(result.ExitCode))

	if !result.Success {
		return engine.NewLintCheckFailure(FailureMessage, fmt.Errorf("engine exited with status %d", result.ExitCode))
	}
	return nil
}

func (l *Linter) record(ctx context.Context, logger *telemetry.Logger, run *stores.Run) {
	if l.history == nil {
		return
	}
	// The run's own context may be cancelled; history is still written.
	if err := l.history.CreateRun(context.WithoutCancel(ctx), run); err != nil {
		logger.WithError(err).Warn("Failed to record run history")
	}
}

func runStatus(err error) stores.RunStatus {
	switch {
	case err == nil:
		return stores.RunStatusPassed
	case engine.IsLintCheckFailure(err):
		return stores.RunStatusFailed
	default:
		return stores.RunStatusError
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
