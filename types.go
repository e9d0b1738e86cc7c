package clatex

import (
	"fmt"
	"strings"

	"github.com/alnah/go-clatex/internal/builder"
	"github.com/alnah/go-clatex/internal/config"
	"github.com/alnah/go-clatex/internal/pdf"
	"github.com/alnah/go-clatex/internal/render"
)

// Format is an output format.
type Format string

// Supported output formats.
const (
	FormatLaTeX Format = "latex"
	FormatHTML  Format = "html"
)

// ParseFormat validates a format name. Case is ignored.
func ParseFormat(s string) (Format, error) {
	f, err := render.ParseFormat(strings.ToLower(s))
	if err != nil {
		return "", err
	}
	return Format(f), nil
}

// Extension returns the file extension of the format, with the dot.
func (f Format) Extension() string {
	if f == FormatHTML {
		return ".html"
	}
	return ".tex"
}

// Config holds project settings: metadata, output documents, LaTeX and
// HTML envelope values, highlighting, assets and PDF page setup.
type Config = config.Config

// DocumentConfig describes one output document in a Config.
type DocumentConfig = config.DocumentConfig

// DefaultConfig returns the settings used when none are given.
func DefaultConfig() *Config {
	return config.DefaultConfig()
}

// ParseConfig decodes and validates a YAML configuration.
func ParseConfig(data []byte) (*Config, error) {
	return config.Parse(data)
}

// Target describes one output document: its main document, the title and
// author of the envelope, its class ("howto" documents get no appendices)
// and whether only the toctrees of the main document are kept.
type Target = builder.Target

// TargetFromConfig converts a configured document into a Target.
func TargetFromConfig(d DocumentConfig) Target {
	return Target{
		DocName:     d.StartDoc,
		Title:       d.Title,
		Author:      d.Author,
		DocClass:    d.DocClass,
		ToctreeOnly: d.ToctreeOnly,
	}
}

// PDFOptions configures printing of HTML output.
type PDFOptions = pdf.Options

// PDFOptionsFromConfig converts configured page settings.
func PDFOptionsFromConfig(c config.PDFConfig, title string) *PDFOptions {
	return &PDFOptions{
		PageSize:    c.PageSize,
		Landscape:   c.Landscape,
		Margin:      c.Margin,
		PageNumbers: c.PageNumbers,
		Title:       title,
	}
}

// Input describes one render.
type Input struct {
	Format Format

	// Source provides the Markdown documents. It is parsed on each call;
	// set Project instead to share one parse between renders.
	Source  Source
	Project *Project

	// Target is the document to render. Appendices default to the
	// configured ones and are dropped for "howto" targets.
	Target     Target
	Appendices []string

	// Config defaults to DefaultConfig().
	Config *Config

	// PDF, when set, also prints the HTML output.
	PDF *PDFOptions
}

// Validate checks the fields that do not need the parsed project.
func (in *Input) Validate() error {
	if in.Source == nil && in.Project == nil {
		return ErrEmptySource
	}
	format, err := ParseFormat(string(in.Format))
	if err != nil {
		return err
	}
	if in.Target.DocName == "" {
		return ErrNoTarget
	}
	if in.PDF != nil && format != FormatHTML {
		return fmt.Errorf("%w: got %s", ErrPDFFormat, format)
	}
	if in.Config != nil {
		return in.Config.Validate()
	}
	return nil
}

// Result is the output of a render.
type Result struct {
	Format Format
	Target Target
	Output string // Complete LaTeX or HTML document
	PDF    []byte // Set when Input.PDF was given

	// Equations is the number of labelled equations.
	Equations int
}
