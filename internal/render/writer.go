// Package render translates document trees into LaTeX or HTML.
//
// A Writer walks a tree with a table of enter/exit hooks, one pair per node
// kind, accumulating output in a Context created for that render alone. The
// accumulated body is then wrapped in the document envelope: header,
// optional highlighting stylesheet, body, footer.
//
// The hook tables are composed: a base table renders the standard node kinds
// and the clatex table overrides it with the document-root sequence, the
// transition template, math delegation and the custom node kinds
// (environment, align, textcolor, endpar).
package render

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/alnah/go-clatex/internal/doctree"
)

// Format is an output format.
type Format string

// Supported formats.
const (
	FormatLaTeX Format = "latex"
	FormatHTML  Format = "html"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatLaTeX, FormatHTML:
		return Format(s), nil
	default:
		return "", fmt.Errorf("%w: %q (expected latex or html)", ErrInvalidFormat, s)
	}
}

// Writer renders document trees in one format. A Writer keeps no state
// between renders and may be used from several goroutines.
type Writer struct {
	format      Format
	handlers    HandlerTable
	bindings    Bindings
	math        MathRenderer
	highlighter Highlighter
	logger      *slog.Logger
}

// Option configures a Writer.
type Option func(*Writer)

// WithLogger sets the logger used for recoverable render problems.
func WithLogger(l *slog.Logger) Option {
	return func(w *Writer) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithMathRenderer replaces the default math renderer of the format.
func WithMathRenderer(m MathRenderer) Option {
	return func(w *Writer) {
		if m != nil {
			w.math = m
		}
	}
}

// WithHighlighter sets the code highlighter. Without one, or when the
// Highlighter binding is off, code blocks are rendered verbatim.
func WithHighlighter(h Highlighter) Option {
	return func(w *Writer) {
		w.highlighter = h
	}
}

// WithHandlers overrides entries of the writer's hook table.
func WithHandlers(over HandlerTable) Option {
	return func(w *Writer) {
		w.handlers = Override(w.handlers, over)
	}
}

// NewLaTeXWriter creates a LaTeX writer.
func NewLaTeXWriter(b Bindings, opts ...Option) *Writer {
	return newWriter(FormatLaTeX, latexHandlers(), LaTeXMath{}, b, opts)
}

// NewHTMLWriter creates an HTML writer.
func NewHTMLWriter(b Bindings, opts ...Option) *Writer {
	return newWriter(FormatHTML, htmlHandlers(), HTMLMath{}, b, opts)
}

// NewWriter creates a writer for the given format.
func NewWriter(format Format, b Bindings, opts ...Option) (*Writer, error) {
	switch format {
	case FormatLaTeX:
		return NewLaTeXWriter(b, opts...), nil
	case FormatHTML:
		return NewHTMLWriter(b, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}
}

func newWriter(format Format, handlers HandlerTable, math MathRenderer, b Bindings, opts []Option) *Writer {
	w := &Writer{
		format:   format,
		handlers: handlers,
		bindings: b,
		math:     math,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Format returns the writer's output format.
func (w *Writer) Format() Format {
	return w.format
}

// Render translates a tree and wraps it in the envelope.
func (w *Writer) Render(tree *doctree.Node) (string, error) {
	c, err := w.Translate(tree)
	if err != nil {
		return "", err
	}
	return w.Envelope(c)
}

// Translate walks the tree and returns the filled context. The walk must
// leave every stack of the context balanced.
func (w *Writer) Translate(tree *doctree.Node) (*Context, error) {
	b := w.bindings
	c := newContext(&b, w.math, w.highlighter, w.logger)
	indexEquations(c, tree, "")

	t := &translator{handlers: w.handlers, ctx: c}
	c.walk = func(n *doctree.Node) error { return doctree.Walk(n, t) }
	if err := c.walk(tree); err != nil {
		return nil, err
	}
	if err := c.checkBalanced(); err != nil {
		return nil, err
	}
	return c, nil
}

// Envelope joins header, stylesheet (when highlighting), body and footer.
// The context is only read.
func (w *Writer) Envelope(c *Context) (string, error) {
	header, err := c.Bindings.Execute("header", c.Bindings.Header)
	if err != nil {
		return "", err
	}
	footer, err := c.Bindings.Execute("footer", c.Bindings.Footer)
	if err != nil {
		return "", err
	}

	stylesheet := ""
	if c.Bindings.Highlighter && w.highlighter != nil {
		css, err := w.highlighter.Stylesheet()
		if err != nil {
			return "", err
		}
		stylesheet = css
		if w.format == FormatHTML {
			stylesheet = "<style>\n" + css + "</style>\n"
		}
	}
	return header + stylesheet + c.String() + footer, nil
}

// indexEquations records the numbers of labelled display math so that
// references can be resolved regardless of order.
func indexEquations(c *Context, n *doctree.Node, docname string) {
	switch n.Kind {
	case doctree.KindDocument, doctree.KindStartOfFile:
		docname = n.Str(doctree.AttrDocName)
	case doctree.KindDisplayMath:
		if label, num := n.Str(doctree.AttrLabel), n.Int(doctree.AttrNumber); label != "" && num > 0 {
			c.Equations[equationLabel(c, docname, label)] = num
		}
	}
	for _, child := range n.Children {
		indexEquations(c, child, docname)
	}
}
