package lint

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/jshint-go/jshint/pkg/config"
	"github.com/jshint-go/jshint/pkg/engine"
	"github.com/jshint-go/jshint/pkg/files"
)

// DefaultDebounce is how long Watch waits for changes to settle.
const DefaultDebounce = 300 * time.Millisecond

// WatchOptions configure Watch.
type WatchOptions struct {
	// Debounce coalesces bursts of file events. Zero means DefaultDebounce.
	Debounce time.Duration

	// OnResult is called after every run with its outcome.
	OnResult func(err error)
}

var watchedExtensions = map[string]bool{
	".js":   true,
	".json": true,
	".yml":  true,
	".yaml": true,
	".star": true,
	".rego": true,
}

// Watch runs the linter once and again whenever a selected file, a
// directory holding the include patterns or a configuration file changes.
// Every rerun resolves the configuration and selects files afresh but
// reuses the runtime check and policy engine. Lint failures and
// configuration errors are reported to OnResult and watching continues; a
// missing runtime stops it. Watch returns nil when ctx is cancelled.
func Watch(ctx context.Context, opts Options, wopts WatchOptions, options ...Option) error {
	if wopts.Debounce <= 0 {
		wopts.Debounce = DefaultDebounce
	}
	report := wopts.OnResult
	if report == nil {
		report = func(error) {}
	}

	first, err := New(ctx, opts, options...)
	if err != nil {
		return err
	}
	logger := first.logger.Zerolog().With().Str("mode", "watch").Logger()

	shared := append([]Option{}, options...)
	shared = append(shared, WithPrecondition(first.Precondition()))
	if p := first.PolicyEngine(); p != nil {
		shared = append(shared, WithPolicyEngine(p))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	watched := make(map[string]bool)
	addDirs := func(dirs []string) {
		for _, dir := range dirs {
			if watched[dir] {
				continue
			}
			if err := watcher.Add(dir); err != nil {
				logger.Debug().Err(err).Str("dir", dir).Msg("Cannot watch directory")
				continue
			}
			watched[dir] = true
		}
	}

	// runOnce returns the error only when it ends watching.
	runOnce := func(l *Linter) error {
		err := l.Run(ctx)
		report(err)
		if engine.IsNoRuntime(err) {
			return err
		}
		return nil
	}

	addDirs(watchDirs(opts, first))
	logger.Info().Int("dirs", len(watched)).Msg("Watching for changes")

	if err := runOnce(first); err != nil {
		return err
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevantEvent(ev) {
				continue
			}
			logger.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("Change detected")
			if timer == nil {
				timer = time.NewTimer(wopts.Debounce)
			} else {
				timer.Reset(wopts.Debounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("Watcher error")

		case <-fire:
			fire = nil

			l, err := New(ctx, opts, shared...)
			if err != nil {
				logger.Error().Err(err).Msg("Failed to prepare lint run")
				report(err)
				continue
			}
			addDirs(watchDirs(opts, l))

			if err := runOnce(l); err != nil {
				return err
			}
		}
	}
}

func relevantEvent(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return watchedExtensions[strings.ToLower(filepath.Ext(ev.Name))]
}

// watchDirs lists the directories whose changes trigger a rerun: those of
// the selected files, the static base of every include pattern and those
// of the configuration files.
func watchDirs(opts Options, l *Linter) []string {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		if dir == "" {
			dir = "."
		}
		abs, err := filepath.Abs(dir)
		if err != nil || seen[abs] {
			return
		}
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			return
		}
		seen[abs] = true
		dirs = append(dirs, abs)
	}

	for _, f := range l.Files() {
		add(filepath.Dir(f))
	}

	patterns, _ := files.PatternsFrom(config.PathsKey, opts.Paths, l.Resolution().Paths)
	for _, p := range patterns {
		base, _ := doublestar.SplitPattern(filepath.ToSlash(p))
		add(filepath.FromSlash(base))
	}

	if opts.ConfigPath != "" {
		add(filepath.Dir(opts.ConfigPath))
	}
	if opts.DefaultConfigPath != "" {
		add(filepath.Dir(opts.DefaultConfigPath))
	}
	return dirs
}
