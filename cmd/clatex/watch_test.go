package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// ---------------------------------------------------------------------------
// TestWatchBuild - Rebuilds on source changes
// ---------------------------------------------------------------------------

func TestWatchBuild(t *testing.T) {
	t.Parallel()

	config := "project:\n  name: Book\ndocuments:\n  - {startDoc: index, target: book}\n"
	dir := writeProject(t, config, map[string]string{"index.md": "# Book\n\nfirst draft\n"})
	out := filepath.Join(dir, "_build", "latex", "book.tex")
	contains := func(s string) func() bool {
		return func() bool {
			data, err := os.ReadFile(out)
			return err == nil && strings.Contains(string(data), s)
		}
	}

	env, _, _ := testEnv()
	flags := &buildFlags{format: "latex", watch: true}
	flags.common.config = filepath.Join(dir, "clatex.yaml")
	flags.common.quiet = true

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watchBuild(ctx, nil, flags, env) }()

	waitFor(t, "initial build", contains("first draft"))

	if err := os.WriteFile(filepath.Join(dir, "index.md"), []byte("# Book\n\nsecond draft\n"), 0o644); err != nil {
		t.Fatalf("failed to update source: %v", err)
	}
	waitFor(t, "rebuild", contains("second draft"))

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watchBuild() = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watchBuild() did not stop after cancel")
	}
}

func TestWatchBuild_MissingConfig(t *testing.T) {
	t.Parallel()

	env, _, _ := testEnv()
	flags := &buildFlags{format: "latex", watch: true}
	flags.common.config = filepath.Join(t.TempDir(), "missing.yaml")

	if err := watchBuild(context.Background(), nil, flags, env); err == nil {
		t.Error("watchBuild() = nil, want config error")
	}
}

func TestIsRelevantChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{name: "source written", event: fsnotify.Event{Name: "docs/intro.md", Op: fsnotify.Write}, want: true},
		{name: "source removed", event: fsnotify.Event{Name: "docs/intro.md", Op: fsnotify.Remove}, want: true},
		{name: "config created", event: fsnotify.Event{Name: "clatex.yaml", Op: fsnotify.Create}, want: true},
		{name: "output written", event: fsnotify.Event{Name: "docs/book.tex", Op: fsnotify.Write}, want: false},
		{name: "chmod only", event: fsnotify.Event{Name: "docs/intro.md", Op: fsnotify.Chmod}, want: false},
		{name: "editor backup", event: fsnotify.Event{Name: "docs/intro.md~", Op: fsnotify.Write}, want: false},
		{name: "hidden file", event: fsnotify.Event{Name: "docs/.intro.md", Op: fsnotify.Write}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := isRelevantChange(tt.event); got != tt.want {
				t.Errorf("isRelevantChange(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}
