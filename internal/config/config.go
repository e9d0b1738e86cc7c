// Package config loads the YAML project configuration of go-clatex.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-clatex/internal/dateutil"
	"github.com/alnah/go-clatex/internal/fileutil"
	"github.com/alnah/go-clatex/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidConfig   = errors.New("invalid config")
)

// Field length limits.
const (
	MaxNameLength     = 200   // Project name, document title, author
	MaxReleaseLength  = 50    // "1.0", "v2.3.1-rc1"
	MaxDateLength     = 60    // "today:MMMM D, YYYY" or a literal date
	MaxLanguageLength = 35    // BCP 47 tag
	MaxDocNameLength  = 255   // Docname or target file name
	MaxSnippetLength  = 10000 // Raw LaTeX/HTML fragments (preamble, hooks)
	MaxArgsLength     = 1000  // hyperref options
	MaxStyleLength    = 100   // Style names
	MaxPageSizeLength = 10    // "letter", "a4", "legal"
)

// DefaultConfigName is searched when no config is given.
const DefaultConfigName = "clatex"

// Config holds the settings of one project.
type Config struct {
	Project    ProjectConfig    `yaml:"project"`
	Documents  []DocumentConfig `yaml:"documents"`
	Appendices []string         `yaml:"appendices"`
	LaTeX      LaTeXConfig      `yaml:"latex"`
	HTML       HTMLConfig       `yaml:"html"`
	Highlight  HighlightConfig  `yaml:"highlight"`
	Assets     AssetsConfig     `yaml:"assets"`
	PDF        PDFConfig        `yaml:"pdf"`
}

// ProjectConfig defines project-wide metadata and directories.
type ProjectConfig struct {
	Name      string `yaml:"name"`
	Release   string `yaml:"release"`
	Language  string `yaml:"language"`
	Date      string `yaml:"date"`      // Literal date, "today" or "today:FORMAT"
	SourceDir string `yaml:"sourceDir"` // Markdown sources (default: directory of the config)
	OutputDir string `yaml:"outputDir"` // Rendered files (default: "_build")
}

// DocumentConfig describes one output document.
type DocumentConfig struct {
	StartDoc    string `yaml:"startDoc"` // Main document, e.g. "index"
	Target      string `yaml:"target"`   // Output file name without extension
	Title       string `yaml:"title"`
	Author      string `yaml:"author"`
	DocClass    string `yaml:"docClass"`    // "manual" or "howto"; howto documents get no appendices
	ToctreeOnly bool   `yaml:"toctreeOnly"` // Keep only the toctrees of the main document
}

// LaTeXConfig defines the LaTeX envelope and sectioning.
type LaTeXConfig struct {
	DocumentClass string    `yaml:"documentClass"`
	Preamble      string    `yaml:"preamble"`
	BeginDoc      string    `yaml:"beginDoc"`
	EndDoc        string    `yaml:"endDoc"`
	MakeIndex     MakeIndex `yaml:"makeIndex"`
	HyperrefArgs  string    `yaml:"hyperrefArgs"`
	Longtable     string    `yaml:"longtable"`
	Tabulary      string    `yaml:"tabulary"`
	Multirow      string    `yaml:"multirow"`
	Transition    string    `yaml:"transition"`
	UseParts      bool      `yaml:"useParts"`
	UseChapters   bool      `yaml:"useChapters"`
}

// HTMLConfig defines the HTML envelope.
type HTMLConfig struct {
	Style      string `yaml:"style"` // Page style name (default: "default", empty = none)
	Preamble   string `yaml:"preamble"`
	BeginDoc   string `yaml:"beginDoc"`
	EndDoc     string `yaml:"endDoc"`
	Transition string `yaml:"transition"`
}

// HighlightConfig defines code highlighting.
type HighlightConfig struct {
	Enabled bool   `yaml:"enabled"`
	Style   string `yaml:"style"` // Chroma style name
}

// AssetsConfig defines envelope template loading.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = built-in templates
}

// PDFConfig defines the PDF rendering of HTML output.
type PDFConfig struct {
	Enabled     bool    `yaml:"enabled"`
	PageSize    string  `yaml:"pageSize"` // "letter", "a4", "legal" (default: "letter")
	Landscape   bool    `yaml:"landscape"`
	Margin      float64 `yaml:"margin"` // inches (default: 0.5)
	PageNumbers bool    `yaml:"pageNumbers"`
}

// MakeIndex is either a switch or literal LaTeX. When enabled, it expands
// to the makeidx package and the \makeindex command; a literal is used as
// written.
type MakeIndex struct {
	Enabled bool
	Literal string
}

// makeIndexDefault is the expansion of an enabled MakeIndex.
const makeIndexDefault = "\\usepackage{makeidx}\n\\makeindex"

// UnmarshalYAML accepts a boolean or a string.
func (m *MakeIndex) UnmarshalYAML(unmarshal func(any) error) error {
	var enabled bool
	if err := unmarshal(&enabled); err == nil {
		*m = MakeIndex{Enabled: enabled}
		return nil
	}
	var literal string
	if err := unmarshal(&literal); err != nil {
		return fmt.Errorf("makeIndex: expected boolean or string: %w", err)
	}
	*m = MakeIndex{Literal: literal}
	return nil
}

// MarshalYAML writes the form it was read from.
func (m MakeIndex) MarshalYAML() (any, error) {
	if m.Literal != "" {
		return m.Literal, nil
	}
	return m.Enabled, nil
}

// String returns the LaTeX the setting stands for.
func (m MakeIndex) String() string {
	switch {
	case m.Literal != "":
		return m.Literal
	case m.Enabled:
		return makeIndexDefault
	default:
		return ""
	}
}

// Validate checks field lengths and the values the renderers depend on.
// Called by LoadConfig, and available to callers building a Config by hand.
func (c *Config) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"project.name", c.Project.Name, MaxNameLength},
		{"project.release", c.Project.Release, MaxReleaseLength},
		{"project.language", c.Project.Language, MaxLanguageLength},
		{"project.date", c.Project.Date, MaxDateLength},
		{"latex.documentClass", c.LaTeX.DocumentClass, MaxSnippetLength},
		{"latex.preamble", c.LaTeX.Preamble, MaxSnippetLength},
		{"latex.beginDoc", c.LaTeX.BeginDoc, MaxSnippetLength},
		{"latex.endDoc", c.LaTeX.EndDoc, MaxSnippetLength},
		{"latex.makeIndex", c.LaTeX.MakeIndex.Literal, MaxSnippetLength},
		{"latex.hyperrefArgs", c.LaTeX.HyperrefArgs, MaxArgsLength},
		{"latex.transition", c.LaTeX.Transition, MaxSnippetLength},
		{"html.style", c.HTML.Style, MaxStyleLength},
		{"html.preamble", c.HTML.Preamble, MaxSnippetLength},
		{"html.beginDoc", c.HTML.BeginDoc, MaxSnippetLength},
		{"html.endDoc", c.HTML.EndDoc, MaxSnippetLength},
		{"html.transition", c.HTML.Transition, MaxSnippetLength},
		{"highlight.style", c.Highlight.Style, MaxStyleLength},
		{"pdf.pageSize", c.PDF.PageSize, MaxPageSizeLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if _, err := dateutil.Resolve(c.Project.Date, time.Time{}); err != nil {
		return fmt.Errorf("%w: project.date: %v", ErrInvalidConfig, err)
	}

	seen := make(map[string]bool, len(c.Documents))
	for i, doc := range c.Documents {
		field := fmt.Sprintf("documents[%d]", i)
		if doc.StartDoc == "" {
			return fmt.Errorf("%w: %s.startDoc: required", ErrInvalidConfig, field)
		}
		if doc.Target == "" {
			return fmt.Errorf("%w: %s.target: required", ErrInvalidConfig, field)
		}
		if fileutil.IsFilePath(doc.Target) {
			return fmt.Errorf("%w: %s.target: %q must be a file name", ErrInvalidConfig, field, doc.Target)
		}
		if seen[doc.Target] {
			return fmt.Errorf("%w: %s.target: duplicate %q", ErrInvalidConfig, field, doc.Target)
		}
		seen[doc.Target] = true
		for _, f := range []struct{ name, value string }{
			{"startDoc", doc.StartDoc}, {"target", doc.Target}, {"title", doc.Title}, {"author", doc.Author}, {"docClass", doc.DocClass},
		} {
			if err := validateFieldLength(field+"."+f.name, f.value, MaxDocNameLength); err != nil {
				return err
			}
		}
	}
	for i, name := range c.Appendices {
		if name == "" {
			return fmt.Errorf("%w: appendices[%d]: empty docname", ErrInvalidConfig, i)
		}
	}

	if c.PDF.Margin < 0 || c.PDF.Margin > 3 {
		return fmt.Errorf("%w: pdf.margin: must be between 0 and 3 inches, got %.2f", ErrInvalidConfig, c.PDF.Margin)
	}
	if c.PDF.PageSize != "" {
		switch strings.ToLower(c.PDF.PageSize) {
		case "letter", "a4", "legal":
		default:
			return fmt.Errorf("%w: pdf.pageSize: invalid value %q (must be letter, a4, or legal)", ErrInvalidConfig, c.PDF.PageSize)
		}
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the settings used for every field a config file
// leaves out.
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{OutputDir: "_build"},
		LaTeX: LaTeXConfig{
			DocumentClass: "\\documentclass{book}\n",
			Tabulary:      "\\usepackage{tabulary}",
			Multirow:      "\\usepackage{multirow}",
			Transition:    "\n\n\\bigskip\\hrule{}\\bigskip\n\n",
			UseChapters:   true,
		},
		HTML: HTMLConfig{
			Style:      "default",
			Transition: "\n<hr class=\"docutils\" />\n",
		},
		Highlight: HighlightConfig{Enabled: true},
		PDF:       PDFConfig{PageSize: "letter", Margin: 0.5},
	}
}

// Parse decodes a YAML config over the defaults and validates it. Unknown
// fields are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, string, error) {
	if nameOrPath == "" {
		return nil, "", ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, "", err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, "", fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", configPath, err)
	}
	return cfg, configPath, nil
}

// SearchPaths lists the files tried for a config name, in order: the
// current directory, then the user config directory, each with .yaml and
// .yml.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "go-clatex", name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file of SearchPaths.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
