package markup

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yuin/goldmark/ast"
)

// KindDirective is the goldmark node kind of a colon-fence directive.
var KindDirective = ast.NewNodeKind("Directive")

// Directive is a colon-fence block:
//
//	:::{name} argument
//	:key: value
//	body
//	:::
//
// Container directives parse their body as Markdown children. Raw
// directives (math, toctree, raw) keep the body lines unparsed.
type Directive struct {
	ast.BaseBlock

	Name    string
	Arg     string
	Options map[string]string
	Line    int

	fence       int
	raw         bool
	bodyStarted bool
}

// Kind implements ast.Node.
func (n *Directive) Kind() ast.NodeKind { return KindDirective }

// IsRaw reports whether the body is kept as raw lines.
func (n *Directive) IsRaw() bool { return n.raw }

// Option returns an option value and whether it was given.
func (n *Directive) Option(key string) (string, bool) {
	v, ok := n.Options[key]
	return v, ok
}

// Dump implements ast.Node.
func (n *Directive) Dump(source []byte, level int) {
	kv := map[string]string{"Name": n.Name, "Arg": n.Arg}
	keys := make([]string, 0, len(n.Options))
	for k := range n.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		kv["Option."+k] = n.Options[k]
	}
	ast.DumpHelper(n, source, level, kv, nil)
}

// KindMathBlock is the goldmark node kind of a $$ display math block.
var KindMathBlock = ast.NewNodeKind("MathBlock")

// MathBlock is display math delimited by $$ lines. An optional "(label)"
// after the closing delimiter labels the equation.
type MathBlock struct {
	ast.BaseBlock

	Label string

	closed bool
}

// Kind implements ast.Node.
func (n *MathBlock) Kind() ast.NodeKind { return KindMathBlock }

// IsRaw implements ast.Node.
func (n *MathBlock) IsRaw() bool { return true }

// Dump implements ast.Node.
func (n *MathBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Label": n.Label}, nil)
}

// KindRole is the goldmark node kind of an inline role.
var KindRole = ast.NewNodeKind("Role")

// Role is an inline {name}`content` construct.
type Role struct {
	ast.BaseInline

	Name    string
	Content string
}

// Kind implements ast.Node.
func (n *Role) Kind() ast.NodeKind { return KindRole }

// Dump implements ast.Node.
func (n *Role) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Name": n.Name, "Content": n.Content}, nil)
}

// KindInlineMath is the goldmark node kind of $...$ math.
var KindInlineMath = ast.NewNodeKind("InlineMath")

// InlineMath is $x$ math, or $$x$$ display math written inside a paragraph.
type InlineMath struct {
	ast.BaseInline

	Content string
	Display bool
}

// Kind implements ast.Node.
func (n *InlineMath) Kind() ast.NodeKind { return KindInlineMath }

// Dump implements ast.Node.
func (n *InlineMath) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Content": n.Content,
		"Display": fmt.Sprintf("%v", n.Display),
	}, nil)
}

// KindSpanMarker is the goldmark node kind of a table cell span marker.
var KindSpanMarker = ast.NewNodeKind("SpanMarker")

// SpanMarker is a {rowspan=N colspan=M} marker. At the start of a table
// cell it makes the cell span; anywhere else it is plain text.
type SpanMarker struct {
	ast.BaseInline

	Rows int
	Cols int
	Raw  string
}

// Kind implements ast.Node.
func (n *SpanMarker) Kind() ast.NodeKind { return KindSpanMarker }

// Dump implements ast.Node.
func (n *SpanMarker) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Rows": fmt.Sprintf("%d", n.Rows),
		"Cols": fmt.Sprintf("%d", n.Cols),
	}, nil)
}

// lineText joins the raw lines of a block.
func lineText(n ast.Node, source []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return b.String()
}
