package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	clatex "github.com/alnah/go-clatex"
	"github.com/alnah/go-clatex/internal/config"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},

		// Browser errors (exit 4)
		{"browser connect", clatex.ErrBrowserConnect, ExitBrowser},
		{"page create", clatex.ErrPageCreate, ExitBrowser},
		{"page load", clatex.ErrPageLoad, ExitBrowser},
		{"pdf generation", clatex.ErrPDFGeneration, ExitBrowser},
		{"wrapped browser connect", fmt.Errorf("printing: %w", clatex.ErrBrowserConnect), ExitBrowser},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"source read", clatex.ErrSourceRead, ExitIO},
		{"write output", ErrWriteOutput, ExitIO},

		// Usage/config/validation errors (exit 2)
		{"invalid args", ErrInvalidArgs, ExitUsage},
		{"worker count", ErrInvalidWorkerCount, ExitUsage},
		{"timeout", ErrInvalidTimeout, ExitUsage},
		{"no targets", ErrNoTargets, ExitUsage},
		{"config exists", ErrConfigExists, ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", clatex.ErrConfigParse, ExitUsage},
		{"invalid config", clatex.ErrInvalidConfig, ExitUsage},
		{"field too long", clatex.ErrFieldTooLong, ExitUsage},
		{"invalid format", clatex.ErrInvalidFormat, ExitUsage},
		{"pdf format", clatex.ErrPDFFormat, ExitUsage},
		{"unknown document", clatex.ErrUnknownDocument, ExitUsage},
		{"unknown directive", clatex.ErrUnknownDirective, ExitUsage},
		{"invalid role", clatex.ErrInvalidRole, ExitUsage},
		{"style not found", clatex.ErrStyleNotFound, ExitUsage},
		{"incomplete template set", clatex.ErrIncompleteTemplateSet, ExitUsage},
		{"invalid asset path", clatex.ErrInvalidAssetPath, ExitUsage},
		{"wrapped config parse", fmt.Errorf("loading: %w", clatex.ErrConfigParse), ExitUsage},

		// General errors (exit 1)
		{"unbalanced context", clatex.ErrUnbalancedContext, ExitGeneral},
		{"canceled", context.Canceled, ExitGeneral},
		{"unknown error", errors.New("something unexpected"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodes_Conventions(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 || ExitGeneral != 1 || ExitUsage != 2 {
		t.Error("exit codes break Unix conventions")
	}
	for _, code := range []int{ExitIO, ExitBrowser} {
		if code >= 126 {
			t.Errorf("exit code %d collides with shell-reserved codes", code)
		}
	}
}

func TestHintFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"browser", fmt.Errorf("x: %w", clatex.ErrBrowserConnect), "ROD_"},
		{"timeout", context.DeadlineExceeded, "--timeout"},
		{"config", config.ErrConfigNotFound, "--config"},
		{"targets", ErrNoTargets, "documents"},
		{"directive", clatex.ErrUnknownDirective, "environment"},
		{"role", clatex.ErrUnknownRole, "textcolor"},
		{"template set", clatex.ErrIncompleteTemplateSet, "built-in sets: latex, html"},
		{"output", ErrWriteOutput, "writable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := hintFor(tt.err); !strings.Contains(got, tt.want) {
				t.Errorf("hintFor(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}

	if got := hintFor(errors.New("other")); got != "" {
		t.Errorf("hintFor(other) = %q, want empty", got)
	}
}
