package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alnah/go-clatex"
)

// watchDebounce groups the events of one editor save into one rebuild.
const watchDebounce = 300 * time.Millisecond

// ErrWatch indicates that the source tree could not be watched.
var ErrWatch = errors.New("watching sources failed")

// watchBuild builds once, then rebuilds on every change to a Markdown
// source or config file until ctx is canceled. Build errors are reported
// and do not stop the loop.
func watchBuild(ctx context.Context, positional []string, flags *buildFlags, env *Environment) error {
	cfg, configDir, err := loadConfig(flags.common.config)
	if err != nil {
		return err
	}
	sourceDir, err := filepath.Abs(resolveSourceDir(positional, cfg, configDir))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWatch, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWatch, err)
	}
	defer func() { _ = watcher.Close() }()

	if err := addRecursive(watcher, sourceDir); err != nil {
		return err
	}
	if abs, err := filepath.Abs(configDir); err == nil && abs != sourceDir {
		if err := watcher.Add(abs); err != nil {
			return fmt.Errorf("%w: %v", ErrWatch, err)
		}
	}

	rebuild := func() {
		if err := runBuild(ctx, positional, flags, env); err != nil && ctx.Err() == nil {
			fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		}
		if !flags.common.quiet {
			fmt.Fprintf(env.Stderr, "watching %s (Ctrl+C to stop)\n", sourceDir)
		}
	}
	rebuild()

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) && isWatchedDir(event.Name) {
				if err := addRecursive(watcher, event.Name); err != nil {
					fmt.Fprintf(env.Stderr, "warning: %v\n", err)
				}
				continue
			}
			if isRelevantChange(event) {
				timer.Reset(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(env.Stderr, "warning: %v: %v\n", ErrWatch, err)
		case <-timer.C:
			rebuild()
		}
	}
}

// addRecursive watches root and its subdirectories, skipping the ones
// DirSource skips.
func addRecursive(w *fsnotify.Watcher, root string) error {
	err := filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if p != root && isSkippedName(entry.Name()) {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWatch, err)
	}
	return nil
}

// isRelevantChange reports whether an event touches a source or config file.
// Rendered output never qualifies, so builds into a watched tree do not loop.
func isRelevantChange(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if isSkippedName(filepath.Base(event.Name)) {
		return false
	}
	switch strings.ToLower(filepath.Ext(event.Name)) {
	case clatex.SourceExt, ".yaml", ".yml":
		return true
	}
	return false
}

func isWatchedDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir() && !isSkippedName(filepath.Base(p))
}

// isSkippedName matches the build, template and VCS directories DirSource
// ignores, and editor temporary files.
func isSkippedName(name string) bool {
	return name != "" && (name[0] == '_' || name[0] == '.' || strings.HasSuffix(name, "~"))
}
