// Package lint runs the JSHint engine over a set of JavaScript files.
//
// A Linter is built once per run. New resolves the configuration layers,
// selects the files and serializes the configuration. Run then verifies the
// Java runtime, evaluates the configuration policies, prints the banner and
// invokes the engine:
//
//	l, err := lint.New(ctx, lint.Options{ConfigPath: "config/jshint.yml"})
//	if err != nil {
//	    return err
//	}
//	if err := l.Run(ctx); err != nil {
//	    os.Exit(engine.ExitCode(err))
//	}
//
// Engine findings are printed by the engine itself. Run reports them only
// as a lint check failure carrying "JSHint test failed.".
//
// Watch reruns the linter on every change to the linted sources or the
// configuration files.
package lint
