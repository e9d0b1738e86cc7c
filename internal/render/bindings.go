package render

import (
	"fmt"
	"strings"
	"text/template"
)

// Bindings are the configuration values available to the envelope
// templates and hooks. They are resolved once per render and not modified.
type Bindings struct {
	DocumentClass string
	Preamble      string
	BeginDoc      string
	EndDoc        string
	MakeIndex     string
	HyperrefArgs  string
	Longtable     string
	Tabulary      string
	Multirow      string
	Transition    string

	UseParts    bool
	UseChapters bool
	Highlighter bool

	Title    string
	Author   string
	Date     string
	Release  string
	DocClass string
	Language string

	// Style is the page stylesheet of the HTML envelope.
	Style string

	// Envelope templates (text/template sources).
	Header        string
	BeginDocument string
	Footer        string
}

// Default fragments of a LaTeX envelope.
const (
	DefaultDocumentClass = `\documentclass{book}`
	DefaultTabulary      = `\usepackage{tabulary}`
	DefaultMultirow      = `\usepackage{multirow}`
	DefaultTransition    = "\n\n\\bigskip\\hrule{}\\bigskip\n\n"

	DefaultHTMLTransition = "\n<hr class=\"docutils\" />\n"
)

// DefaultLaTeXBindings returns the bindings a LaTeX render starts from
// before configuration is applied.
func DefaultLaTeXBindings() Bindings {
	return Bindings{
		DocumentClass: DefaultDocumentClass,
		Tabulary:      DefaultTabulary,
		Multirow:      DefaultMultirow,
		Transition:    DefaultTransition,
		UseChapters:   true,
	}
}

// DefaultHTMLBindings returns the bindings an HTML render starts from before
// configuration is applied.
func DefaultHTMLBindings() Bindings {
	return Bindings{
		Transition:  DefaultHTMLTransition,
		UseChapters: true,
	}
}

// TopSectionLevel is the level given to top-level sections: 0 (part) when
// parts are used, 1 (chapter) when chapters are used, 2 (section) otherwise.
func (b *Bindings) TopSectionLevel() int {
	switch {
	case b.UseParts:
		return 0
	case b.UseChapters:
		return 1
	default:
		return 2
	}
}

// Execute renders a template source against the bindings. A placeholder
// naming no binding fails at execution.
func (b *Bindings) Execute(name, src string) (string, error) {
	if src == "" {
		return "", nil
	}
	tmpl, err := template.New(name).Parse(src)
	if err != nil {
		return "", fmt.Errorf("%w: parsing %s: %v", ErrTemplateRender, name, err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, b); err != nil {
		return "", fmt.Errorf("%w: executing %s: %v", ErrTemplateRender, name, err)
	}
	return sb.String(), nil
}
