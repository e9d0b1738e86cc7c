// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-clatex/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser connection errors during
// PDF rendering.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}
	hints = append(hints, "or render without --pdf")

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for large projects, use --timeout flag")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config and the first user config path searched.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/clatex.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(p, "go-clatex") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForNoTargets returns a hint when a project defines no output document.
func ForNoTargets() string {
	return format(`add a "documents" entry with startDoc and target, or pass --start and --target`)
}

// ForUnknownDirective lists the directives the Markdown front end knows.
func ForUnknownDirective(known []string) string {
	if len(known) == 0 {
		return ""
	}
	return format("known directives: " + strings.Join(known, ", "))
}

// ForUnknownRole lists the inline roles the Markdown front end knows.
func ForUnknownRole(known []string) string {
	if len(known) == 0 {
		return ""
	}
	return format("known roles: " + strings.Join(known, ", "))
}

// ForTemplateSet returns hints for template set errors.
func ForTemplateSet(available []string) string {
	hint := "a template set needs header.tmpl, begin.tmpl and footer.tmpl"
	if len(available) > 0 {
		hint += "; built-in sets: " + strings.Join(available, ", ")
	}
	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
