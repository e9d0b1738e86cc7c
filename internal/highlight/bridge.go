// Package highlight bridges code blocks to chroma for both output formats.
//
// The LaTeX side uses a custom chroma formatter producing fancyvrb Verbatim
// blocks with \PY token macros, plus a preamble stylesheet defining those
// macros from the selected chroma style. The HTML side uses chroma's own HTML
// formatter with CSS classes.
package highlight

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// ErrHighlight indicates that a code block could not be highlighted.
var ErrHighlight = errors.New("syntax highlighting failed")

// Format selects the markup produced by a Bridge.
type Format string

// Supported formats.
const (
	FormatLaTeX Format = "latex"
	FormatHTML  Format = "html"
)

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "friendly"

// Bridge highlights code blocks and produces the matching stylesheet.
// A Bridge holds no per-document state and may be shared between renders.
type Bridge struct {
	format    Format
	style     *chroma.Style
	formatter chroma.Formatter
}

// New creates a Bridge for the given format and chroma style name.
// Unknown style names fall back to chroma's default style.
func New(format Format, styleName string) *Bridge {
	if styleName == "" {
		styleName = DefaultStyle
	}
	b := &Bridge{
		format: format,
		style:  styles.Get(styleName),
	}
	if format == FormatHTML {
		b.formatter = chromahtml.New(chromahtml.WithClasses(true))
	} else {
		b.formatter = latexFormatter{}
	}
	return b
}

// Format returns the output format of the bridge.
func (b *Bridge) Format() Format {
	return b.format
}

// Stylesheet returns the style definitions for highlighted blocks: LaTeX
// macro definitions or a CSS block.
func (b *Bridge) Stylesheet() (string, error) {
	if b.format != FormatHTML {
		return latexStylesheet(b.style), nil
	}
	var sb strings.Builder
	html := b.formatter.(*chromahtml.Formatter)
	if err := html.WriteCSS(&sb, b.style); err != nil {
		return "", fmt.Errorf("%w: writing CSS: %v", ErrHighlight, err)
	}
	return sb.String(), nil
}

// Highlight renders code in the given language. Unknown or empty languages
// are rendered as plain text.
func (b *Bridge) Highlight(code, language string) (string, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrHighlight, language, err)
	}

	var sb strings.Builder
	if err := b.formatter.Format(&sb, b.style, iterator); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrHighlight, language, err)
	}
	return sb.String(), nil
}
