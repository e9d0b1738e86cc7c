package render

import (
	"fmt"
	"strings"

	"github.com/alnah/go-clatex/internal/doctree"
)

// MathRenderer produces the markup for math nodes. The renderer owns the
// whole fragment: the exit side of math nodes is a no-op.
type MathRenderer interface {
	Math(c *Context, n *doctree.Node) (string, error)
	DisplayMath(c *Context, n *doctree.Node) (string, error)
	EqRef(c *Context, n *doctree.Node) (string, error)
}

// Highlighter renders code blocks and the stylesheet they need.
type Highlighter interface {
	Stylesheet() (string, error)
	Highlight(code, language string) (string, error)
}

// equationLabel is the document-qualified label of an equation.
func equationLabel(c *Context, docname, label string) string {
	if docname == "" {
		docname = c.CurrentFile()
	}
	return unsafeAnchor.ReplaceAllString(docname+"-"+label, "-")
}

// LaTeXMath renders math with amsmath environments.
type LaTeXMath struct{}

// Math renders inline math as \(...\).
func (LaTeXMath) Math(_ *Context, n *doctree.Node) (string, error) {
	return `\(` + n.Text + `\)`, nil
}

// DisplayMath renders display math. Unlabelled single equations use
// equation*, labelled ones equation; text with blank-line separated parts
// becomes a gather of split blocks. With nowrap the text passes through.
func (LaTeXMath) DisplayMath(c *Context, n *doctree.Node) (string, error) {
	if n.Bool(doctree.AttrNoWrap) {
		return "\n" + n.Text + "\n", nil
	}
	label := n.Str(doctree.AttrLabel)
	parts := splitEquations(n.Text)

	if len(parts) == 1 {
		if label == "" {
			return "\n\\begin{equation*}\n" + parts[0] + "\n\\end{equation*}\n", nil
		}
		return fmt.Sprintf("\n\\begin{equation}\\label{%s}\n%s\n\\end{equation}\n",
			equationLabel(c, "", label), parts[0]), nil
	}

	rows := make([]string, len(parts))
	for i, part := range parts {
		row := `\begin{split}` + part + `\end{split}`
		if i == 0 && label != "" {
			row += `\label{` + equationLabel(c, "", label) + `}`
		} else {
			row += `\notag`
		}
		rows[i] = row
	}
	return "\n\\begin{gather}\n" + strings.Join(rows, "\\\\") + "\n\\end{gather}\n", nil
}

// EqRef renders a reference to a labelled equation.
func (LaTeXMath) EqRef(c *Context, n *doctree.Node) (string, error) {
	return `\eqref{` + equationLabel(c, n.Str(doctree.AttrRefDocName), n.Str(doctree.AttrRefTarget)) + `}`, nil
}

// HTMLMath renders math for client-side typesetting with MathJax.
type HTMLMath struct{}

// Math renders inline math.
func (HTMLMath) Math(_ *Context, n *doctree.Node) (string, error) {
	return `<span class="math">\(` + EscapeHTML(n.Text) + `\)</span>`, nil
}

// DisplayMath renders display math, numbered when labelled.
func (HTMLMath) DisplayMath(c *Context, n *doctree.Node) (string, error) {
	var sb strings.Builder
	label := n.Str(doctree.AttrLabel)
	if label == "" {
		sb.WriteString("\n<div class=\"math\">\n")
	} else {
		fmt.Fprintf(&sb, "\n<div class=\"math\" id=\"equation-%s\">\n", EscapeHTML(equationLabel(c, "", label)))
		fmt.Fprintf(&sb, "<span class=\"eqno\">(%s)</span>\n", equationNumber(c, n, "", label))
	}
	if n.Bool(doctree.AttrNoWrap) {
		sb.WriteString(EscapeHTML(n.Text))
	} else {
		sb.WriteString(`\[` + EscapeHTML(n.Text) + `\]`)
	}
	sb.WriteString("\n</div>\n")
	return sb.String(), nil
}

// EqRef renders a link to a labelled equation.
func (HTMLMath) EqRef(c *Context, n *doctree.Node) (string, error) {
	docname := n.Str(doctree.AttrRefDocName)
	target := n.Str(doctree.AttrRefTarget)
	return fmt.Sprintf(`<a class="reference internal" href="#equation-%s">(%s)</a>`,
		EscapeHTML(equationLabel(c, docname, target)), equationNumber(c, n, docname, target)), nil
}

// equationNumber returns the number assigned to an equation, from the node
// itself or from the context's equation table, or "??" when unknown.
func equationNumber(c *Context, n *doctree.Node, docname, label string) string {
	if num := n.Int(doctree.AttrNumber); num > 0 {
		return fmt.Sprint(num)
	}
	if num, ok := c.Equations[equationLabel(c, docname, label)]; ok {
		return fmt.Sprint(num)
	}
	return "??"
}

// splitEquations splits math text on blank lines, dropping empty parts.
func splitEquations(text string) []string {
	raw := strings.Split(strings.TrimSpace(text), "\n\n")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return []string{""}
	}
	return parts
}

// mathPair delegates a math node kind to the context's MathRenderer.
func mathPair(render func(MathRenderer, *Context, *doctree.Node) (string, error)) HandlerPair {
	return HandlerPair{
		Enter: func(c *Context, n *doctree.Node) error {
			out, err := render(c.Math, c, n)
			if err != nil {
				return err
			}
			c.Emit(out)
			return doctree.ErrSkipChildren
		},
	}
}

var (
	mathHandler        = mathPair(MathRenderer.Math)
	displayMathHandler = mathPair(MathRenderer.DisplayMath)
	eqRefHandler       = mathPair(MathRenderer.EqRef)
)
