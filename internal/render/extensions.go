package render

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/alnah/go-clatex/internal/doctree"
)

// LaTeX side of the custom node kinds.

// latexEnterEnvironment opens \begin{envname}, with the LaTeX-specific
// title, else the generic title, as optional argument.
func latexEnterEnvironment(c *Context, n *doctree.Node) error {
	env := n.Str(doctree.AttrEnvName)
	c.Emit("\n\\begin{" + env + "}")
	switch {
	case n.Has(doctree.AttrLaTeXTitle):
		c.Emit("[" + n.Str(doctree.AttrLaTeXTitle) + "]")
	case n.Has(doctree.AttrTitle):
		c.Emit("[" + EscapeLaTeX(n.Str(doctree.AttrTitle)) + "]")
	}
	if label := n.Str(doctree.AttrLabel); label != "" {
		c.Emit(`\label{` + c.Anchor("", label) + `}`)
	}
	return nil
}

func latexExitEnvironment(c *Context, n *doctree.Node) error {
	c.Emit(`\end{` + n.Str(doctree.AttrEnvName) + `}`)
	return nil
}

func latexEnterAlign(c *Context, n *doctree.Node) error {
	c.Emit("\n\\begin{" + n.Str(doctree.AttrAlignType) + "}")
	return nil
}

func latexExitAlign(c *Context, n *doctree.Node) error {
	c.Emit(`\end{` + n.Str(doctree.AttrAlignType) + `}`)
	return nil
}

// latexEnterTextColor opens \textcolor[HTML]. The HTML color model takes
// the hex digits without the leading '#'.
func latexEnterTextColor(c *Context, n *doctree.Node) error {
	spec := strings.TrimPrefix(n.Str(doctree.AttrColorSpec), "#")
	c.Emit("\n\\textcolor[HTML]{" + spec + "}{")
	return nil
}

// HTML side of the custom node kinds.

// htmlEnterEnvironment opens the environment container and writes its
// title line. The HTML-specific title is written as is, the generic one is
// escaped.
func htmlEnterEnvironment(c *Context, n *doctree.Node) error {
	env := n.Str(doctree.AttrEnvName)
	class := EscapeHTML(env)

	c.Emit(`<div class="environment ` + class + `"`)
	if label := n.Str(doctree.AttrLabel); label != "" {
		c.Emit(` id="` + EscapeHTML(c.Anchor("", label)) + `"`)
	}
	c.Emit(">\n")

	c.Emit(`<div class="environment_title ` + class + `_title">`)
	c.Emit(EscapeHTML(cases.Title(language.English).String(env)))
	switch {
	case n.Has(doctree.AttrHTMLTitle):
		c.Emit(": " + n.Str(doctree.AttrHTMLTitle))
	case n.Has(doctree.AttrTitle):
		c.Emit(": " + EscapeHTML(n.Str(doctree.AttrTitle)))
	}
	c.Emit("</div>\n")
	c.Emit(`<div class="environment_body ` + class + "_body\">\n")
	return nil
}

func htmlEnterAlign(c *Context, n *doctree.Node) error {
	c.Emit(`<div class="align ` + EscapeHTML(n.Str(doctree.AttrAlignType)) + "\">\n")
	return nil
}

// htmlEnterTextColor keeps the color spec unchanged, leading '#' included.
func htmlEnterTextColor(c *Context, n *doctree.Node) error {
	c.Emit(`<font color="` + EscapeHTML(n.Str(doctree.AttrColorSpec)) + `">`)
	return nil
}
