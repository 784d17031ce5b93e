package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// Default entry points shipped in the vendor directory.
const (
	ProbeJarFile  = "test.jar"
	ProbeClass    = "Test"
	EngineJarFile = "rhino.jar"
	EngineClass   = "org.mozilla.javascript.tools.shell.Main"
	ScriptFile    = "jshint.js"

	// ProbeSentinel is the exact probe output (after trimming) of a working runtime.
	ProbeSentinel = "OK"
)

// Runtime describes how the external runtime and engine are launched.
type Runtime struct {
	// Java is the runtime executable name or path.
	Java string `validate:"required"`

	// ProbeJar and ProbeClass form the precondition probe invocation.
	ProbeJar   string `validate:"required"`
	ProbeClass string `validate:"required"`

	// EngineJar and EngineClass form the engine invocation.
	EngineJar   string `validate:"required"`
	EngineClass string `validate:"required"`

	// Script is the engine script handed to the engine entry point.
	Script string `validate:"required"`

	// Timeout bounds one engine invocation. Zero means no limit.
	Timeout time.Duration `validate:"gte=0"`
}

// DefaultRuntime returns the runtime layout rooted at vendorDir.
func DefaultRuntime(vendorDir string) Runtime {
	return Runtime{
		Java:        "java",
		ProbeJar:    filepath.Join(vendorDir, ProbeJarFile),
		ProbeClass:  ProbeClass,
		EngineJar:   filepath.Join(vendorDir, EngineJarFile),
		EngineClass: EngineClass,
		Script:      filepath.Join(vendorDir, ScriptFile),
	}
}

// DefaultVendorDir returns JSHINT_VENDOR_DIR, or a vendor directory next to
// the running executable.
func DefaultVendorDir() string {
	if dir := os.Getenv("JSHINT_VENDOR_DIR"); dir != "" {
		return dir
	}
	exe, err := os.Executable()
	if err != nil {
		return "vendor"
	}
	return filepath.Join(filepath.Dir(exe), "vendor")
}

var runtimeValidator = validator.New()

// Validate checks that every launch component is set.
func (r Runtime) Validate() error {
	if err := runtimeValidator.Struct(r); err != nil {
		return fmt.Errorf("invalid runtime: %w", err)
	}
	return nil
}

// ProbeArgs returns the argument vector of the precondition probe.
func (r Runtime) ProbeArgs() []string {
	return []string{"-cp", r.ProbeJar, r.ProbeClass}
}

// EngineArgs returns the argument vector of the engine invocation: the
// serialized configuration token and each file are discrete arguments.
func (r Runtime) EngineArgs(token string, files []string) []string {
	args := make([]string, 0, 4+len(files))
	args = append(args, "-cp", r.EngineJar, r.EngineClass, r.Script, token)
	return append(args, files...)
}
