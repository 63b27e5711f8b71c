package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-nbsite/internal/config"
	"github.com/alnah/go-nbsite/internal/fileutil"
)

// rebuildDelay coalesces bursts of file events into one rebuild.
const rebuildDelay = 300 * time.Millisecond

// runWatch builds the site, then rebuilds on source changes until
// interrupted.
func runWatch(args []string, env *Environment) error {
	flags, positional, err := parseBuildFlags("watch", args, env.Stdout)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: %s", ErrUnexpectedArgs, strings.Join(positional, " "))
	}

	cfg, err := resolveConfig(&flags.common, &flags.site, env)
	if err != nil {
		return err
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	return watchSite(ctx, cfg, &flags.common, env)
}

// watchSite runs the build and watch loop until ctx is done.
// Build failures are reported and the loop keeps watching.
func watchSite(ctx context.Context, cfg *config.Config, common *commonFlags, env *Environment) error {
	scope, err := newWatchScope(cfg)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range scope.sourceDirs {
		addDirsRecursive(watcher, dir, scope, env)
	}
	for _, dir := range scope.fileDirs() {
		if err := watcher.Add(dir); err != nil {
			fmt.Fprintf(env.Stderr, "warning: cannot watch %s: %v\n", dir, err)
		}
	}

	rebuild := func() {
		if err := buildSite(ctx, cfg, common, env); err != nil && ctx.Err() == nil {
			fmt.Fprintf(env.Stderr, "error: %v\n", err)
		}
	}
	rebuild()
	fmt.Fprintln(env.Stderr, "Watching for changes (Ctrl+C to stop)")

	rebuildReq, trigger := newDebouncer(rebuildDelay)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !scope.relevant(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) && fileutil.DirExists(ev.Name) {
				addDirsRecursive(watcher, ev.Name, scope, env)
			}
			trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(env.Stderr, "warning: watcher: %v\n", err)
		case <-rebuildReq:
			fmt.Fprintln(env.Stderr, "Change detected; rebuilding")
			rebuild()
		}
	}
}

// watchScope decides which paths trigger a rebuild: anything under the
// source directories, and the registry and authors files themselves.
type watchScope struct {
	sourceDirs []string
	files      map[string]bool
	outputDir  string
}

func newWatchScope(cfg *config.Config) (*watchScope, error) {
	s := &watchScope{files: make(map[string]bool)}
	for _, dir := range []string{cfg.ExamplesDir, cfg.WikiDir} {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", dir, err)
		}
		s.sourceDirs = append(s.sourceDirs, abs)
	}
	for _, file := range []string{cfg.Registry, cfg.Authors} {
		abs, err := filepath.Abs(file)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", file, err)
		}
		s.files[abs] = true
	}
	out, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", cfg.OutputDir, err)
	}
	s.outputDir = out
	return s, nil
}

// fileDirs lists the directories holding the registry and authors files,
// sorted. Files are watched through their directory so editors that
// replace files on save are still seen.
func (s *watchScope) fileDirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	for file := range s.files {
		dir := filepath.Dir(file)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs
}

// relevant reports whether a change to path should trigger a rebuild.
func (s *watchScope) relevant(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	if s.files[abs] {
		return true
	}
	if isTempFile(abs) || within(abs, s.outputDir) {
		return false
	}
	for _, dir := range s.sourceDirs {
		if within(abs, dir) {
			return true
		}
	}
	return false
}

// within reports whether path is dir or lies below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// isTempFile matches hidden files and editor swap or backup files.
func isTempFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") ||
		strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		(strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"))
}

// addDirsRecursive watches root and every directory below it, except the
// output directory. Missing roots are skipped.
func addDirsRecursive(w *fsnotify.Watcher, root string, scope *watchScope, env *Environment) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if abs, absErr := filepath.Abs(path); absErr == nil && within(abs, scope.outputDir) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			fmt.Fprintf(env.Stderr, "warning: cannot watch %s: %v\n", path, err)
		}
		return nil
	})
}

// newDebouncer returns a channel that receives once per burst of trigger
// calls, delay after the last call.
func newDebouncer(delay time.Duration) (<-chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	req := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, func() {
			select {
			case req <- struct{}{}:
			default:
			}
		})
	}

	return req, trigger
}
