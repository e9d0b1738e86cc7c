package main

import (
	"context"
	"errors"
	"os"

	clatex "github.com/alnah/go-clatex"
	"github.com/alnah/go-clatex/internal/config"
	"github.com/alnah/go-clatex/internal/hints"
	"github.com/alnah/go-clatex/internal/markup"
)

// Exit codes for the clatex CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful build
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, sources or templates
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, clatex.ErrBrowserConnect) ||
		errors.Is(err, clatex.ErrPageCreate) ||
		errors.Is(err, clatex.ErrPageLoad) ||
		errors.Is(err, clatex.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, clatex.ErrSourceRead) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrInvalidArgs) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrNoTargets) ||
		errors.Is(err, ErrConfigExists) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, clatex.ErrConfigParse) ||
		errors.Is(err, clatex.ErrInvalidConfig) ||
		errors.Is(err, clatex.ErrFieldTooLong) ||
		errors.Is(err, clatex.ErrInvalidFormat) ||
		errors.Is(err, clatex.ErrPDFFormat) ||
		errors.Is(err, clatex.ErrInvalidPageSize) ||
		errors.Is(err, clatex.ErrNoDocuments) ||
		errors.Is(err, clatex.ErrUnknownDocument) ||
		errors.Is(err, clatex.ErrUnknownDirective) ||
		errors.Is(err, clatex.ErrInvalidDirective) ||
		errors.Is(err, clatex.ErrUnknownRole) ||
		errors.Is(err, clatex.ErrInvalidRole) ||
		errors.Is(err, clatex.ErrStyleNotFound) ||
		errors.Is(err, clatex.ErrTemplateSetNotFound) ||
		errors.Is(err, clatex.ErrIncompleteTemplateSet) ||
		errors.Is(err, clatex.ErrTemplateRender) ||
		errors.Is(err, clatex.ErrInvalidAssetPath) {
		return ExitUsage
	}

	return ExitGeneral
}

// builtinTemplateSets lists the template sets shipped with the module.
var builtinTemplateSets = []string{clatex.LaTeXTemplateSet, clatex.HTMLTemplateSet}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, clatex.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, clatex.ErrPageLoad), errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths(config.DefaultConfigName))
	case errors.Is(err, ErrNoTargets):
		return hints.ForNoTargets()
	case errors.Is(err, clatex.ErrUnknownDirective):
		return hints.ForUnknownDirective(markup.Directives)
	case errors.Is(err, clatex.ErrUnknownRole):
		return hints.ForUnknownRole(markup.Roles)
	case errors.Is(err, clatex.ErrTemplateSetNotFound), errors.Is(err, clatex.ErrIncompleteTemplateSet):
		return hints.ForTemplateSet(builtinTemplateSets)
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}
