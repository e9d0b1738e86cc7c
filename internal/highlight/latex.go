package highlight

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
)

// latexEscaper escapes the three characters that stay active inside a
// Verbatim environment declared with commandchars=\\\{\}.
var latexEscaper = strings.NewReplacer(
	`\`, `\PYZbs{}`,
	`{`, `\PYZob{}`,
	`}`, `\PYZcb{}`,
)

const (
	verbatimBegin = "\\begin{Verbatim}[commandchars=\\\\\\{\\}]\n"
	verbatimEnd   = "\\end{Verbatim}\n"
)

// latexFormatter renders a token stream as a fancyvrb Verbatim block where
// every styled token is wrapped in \PY{class}{text}.
type latexFormatter struct{}

// Compile-time interface check.
var _ chroma.Formatter = latexFormatter{}

// Format writes the highlighted block. Newlines end the current token
// command so each source line stays balanced.
func (latexFormatter) Format(w io.Writer, _ *chroma.Style, iterator chroma.Iterator) error {
	var b strings.Builder
	b.WriteString(verbatimBegin)
	for _, token := range iterator.Tokens() {
		class := tokenClass(token.Type)
		lines := strings.Split(token.Value, "\n")
		for i, line := range lines {
			if i > 0 {
				b.WriteByte('\n')
			}
			if line == "" {
				continue
			}
			if class == "" {
				b.WriteString(latexEscaper.Replace(line))
				continue
			}
			fmt.Fprintf(&b, `\PY{%s}{%s}`, class, latexEscaper.Replace(line))
		}
	}
	out := b.String()
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	out += verbatimEnd
	_, err := io.WriteString(w, out)
	return err
}

// tokenClass returns the short class name of a token type, falling back to
// its sub-category and category when the exact type has none.
func tokenClass(t chroma.TokenType) string {
	for _, candidate := range []chroma.TokenType{t, t.SubCategory(), t.Category()} {
		if class, ok := chroma.StandardTypes[candidate]; ok {
			return class
		}
	}
	return ""
}

// latexStylesheet defines the \PY dispatcher and one macro per styled token
// class. The output belongs in the document preamble.
func latexStylesheet(style *chroma.Style) string {
	types := make([]chroma.TokenType, 0, len(chroma.StandardTypes))
	for t := range chroma.StandardTypes {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	var b strings.Builder
	b.WriteString("\\usepackage{fancyvrb}\n")
	b.WriteString("\\usepackage{xcolor}\n")
	b.WriteString("\\makeatletter\n")
	b.WriteString("\\newcommand\\PY[2]{\\ifcsname PY@tok@#1\\endcsname\\csname PY@tok@#1\\endcsname{#2}\\else#2\\fi}\n")
	for _, t := range types {
		class := chroma.StandardTypes[t]
		if class == "" {
			continue
		}
		body, ok := latexTokenStyle(style.Get(t))
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\\@namedef{PY@tok@%s}#1{%s}\n", class, body)
	}
	b.WriteString("\\def\\PYZbs{\\char`\\\\}\n")
	b.WriteString("\\def\\PYZob{\\char`\\{}\n")
	b.WriteString("\\def\\PYZcb{\\char`\\}}\n")
	b.WriteString("\\makeatother\n")
	return b.String()
}

// latexTokenStyle builds the macro body for one style entry. It reports false
// when the entry carries no visible styling.
func latexTokenStyle(e chroma.StyleEntry) (string, bool) {
	body := "#1"
	styled := false
	if e.Italic == chroma.Yes {
		body = `\textit{` + body + `}`
		styled = true
	}
	if e.Bold == chroma.Yes {
		body = `\textbf{` + body + `}`
		styled = true
	}
	if e.Underline == chroma.Yes {
		body = `\underline{` + body + `}`
		styled = true
	}
	if e.Colour.IsSet() {
		hex := strings.ToUpper(strings.TrimPrefix(e.Colour.String(), "#"))
		body = `\textcolor[HTML]{` + hex + `}{` + body + `}`
		styled = true
	}
	return body, styled
}
