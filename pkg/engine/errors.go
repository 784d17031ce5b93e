package engine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure of the lint pipeline.
type ErrorKind string

const (
	// KindNoRuntime indicates the external runtime is missing or its probe failed.
	// Fatal: nothing is invoked after it.
	KindNoRuntime ErrorKind = "no_runtime"

	// KindUnsupportedValueKind indicates a configuration value the serializer
	// cannot encode.
	KindUnsupportedValueKind ErrorKind = "unsupported_value_kind"

	// KindLintCheckFailure indicates the engine ran and reported failure.
	// This is the expected "lint found problems" outcome.
	KindLintCheckFailure ErrorKind = "lint_check_failure"

	// KindConfigLoad indicates the default configuration could not be loaded.
	KindConfigLoad ErrorKind = "config_load"

	// KindPolicyDenied indicates a configuration policy blocked the run.
	KindPolicyDenied ErrorKind = "policy_denied"
)

// Error is a classified pipeline error.
type Error struct {
	// Kind is the error classification.
	Kind ErrorKind `json:"kind"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Key is the configuration key involved, if any.
	Key string `json:"key,omitempty"`

	// ValueKind names the offending value type for unsupported values.
	ValueKind string `json:"value_kind,omitempty"`

	// Err is the underlying cause.
	Err error `json:"-"`
}

// Sentinels for errors.Is checks. Only the kind is compared.
var (
	ErrNoRuntime            = &Error{Kind: KindNoRuntime}
	ErrUnsupportedValueKind = &Error{Kind: KindUnsupportedValueKind}
	ErrLintCheckFailure     = &Error{Kind: KindLintCheckFailure}
	ErrConfigLoad           = &Error{Kind: KindConfigLoad}
	ErrPolicyDenied         = &Error{Kind: KindPolicyDenied}
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Key != "" {
		msg = fmt.Sprintf("%s (key=%s)", msg, e.Key)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", e.Kind, msg, e.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", e.Kind, msg)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error equality checking for errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewNoRuntimeError creates a no-runtime error carrying the remediation hint.
func NewNoRuntimeError(message string, err error) *Error {
	return &Error{
		Kind:    KindNoRuntime,
		Message: message,
		Err:     err,
	}
}

// NewUnsupportedValueKindError reports a value of kind valueKind under key.
func NewUnsupportedValueKindError(key, valueKind string) *Error {
	return &Error{
		Kind:      KindUnsupportedValueKind,
		Message:   fmt.Sprintf("don't know how to encode %s", valueKind),
		Key:       key,
		ValueKind: valueKind,
	}
}

// NewLintCheckFailure creates a lint failure error.
func NewLintCheckFailure(message string, err error) *Error {
	return &Error{
		Kind:    KindLintCheckFailure,
		Message: message,
		Err:     err,
	}
}

// NewConfigLoadError creates a configuration load error.
func NewConfigLoadError(message string, err error) *Error {
	return &Error{
		Kind:    KindConfigLoad,
		Message: message,
		Err:     err,
	}
}

// NewPolicyDeniedError creates a policy denial error.
func NewPolicyDeniedError(message string) *Error {
	return &Error{
		Kind:    KindPolicyDenied,
		Message: message,
	}
}

// WithKey attaches a configuration key to the error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// IsNoRuntime returns true if err is a no-runtime error.
func IsNoRuntime(err error) bool {
	return errors.Is(err, ErrNoRuntime)
}

// IsUnsupportedValueKind returns true if err is an unsupported value error.
func IsUnsupportedValueKind(err error) bool {
	return errors.Is(err, ErrUnsupportedValueKind)
}

// IsLintCheckFailure returns true if err is a lint check failure.
func IsLintCheckFailure(err error) bool {
	return errors.Is(err, ErrLintCheckFailure)
}

// IsConfigLoad returns true if err is a configuration load error.
func IsConfigLoad(err error) bool {
	return errors.Is(err, ErrConfigLoad)
}

// IsPolicyDenied returns true if err is a policy denial.
func IsPolicyDenied(err error) bool {
	return errors.Is(err, ErrPolicyDenied)
}

// ExitCode maps an error to a process exit status.
// Lint failures exit 1 so pipelines can tell them apart from malfunctions (2).
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case IsLintCheckFailure(err):
		return 1
	default:
		return 2
	}
}
