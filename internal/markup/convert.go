package markup

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/util"

	"github.com/alnah/go-clatex/internal/doctree"
)

var (
	targetLine    = regexp.MustCompile(`^\(([^()\s]+)\)=$`)
	explicitTitle = regexp.MustCompile(`^(.+?)\s*<([^<>]+)>$`)
)

// converter maps one goldmark document onto a doctree.
type converter struct {
	source  []byte
	docname string

	// labels waiting for the next heading
	pending []string
}

type openSection struct {
	level int
	node  *doctree.Node
}

// document nests top-level blocks under the sections opened by headings.
// Footnote definitions always go to the document root.
func (c *converter) document(doc ast.Node) (*doctree.Node, error) {
	root := doctree.New(doctree.KindDocument).Set(doctree.AttrDocName, c.docname)
	var stack []openSection
	current := func() *doctree.Node {
		if len(stack) == 0 {
			return root
		}
		return stack[len(stack)-1].node
	}

	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Heading:
			for len(stack) > 0 && stack[len(stack)-1].level >= n.Level {
				stack = stack[:len(stack)-1]
			}
			section, err := c.section(n)
			if err != nil {
				return nil, err
			}
			current().Append(section)
			stack = append(stack, openSection{level: n.Level, node: section})
		case *east.FootnoteList:
			notes, err := c.children(n)
			if err != nil {
				return nil, err
			}
			root.Append(notes...)
		default:
			nodes, err := c.block(child)
			if err != nil {
				return nil, err
			}
			current().Append(nodes...)
		}
	}
	return root, nil
}

func (c *converter) section(h *ast.Heading) (*doctree.Node, error) {
	section := doctree.New(doctree.KindSection)
	for _, label := range c.pending {
		section.AddID(label)
	}
	c.pending = nil
	if id, ok := h.AttributeString("id"); ok {
		if b, ok := id.([]byte); ok && len(b) > 0 {
			section.AddID(string(b))
		}
	}
	title, err := c.inlines(h)
	if err != nil {
		return nil, err
	}
	return section.Append(doctree.New(doctree.KindTitle, title...)), nil
}

func (c *converter) children(n ast.Node) ([]*doctree.Node, error) {
	var out []*doctree.Node
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		nodes, err := c.block(child)
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}
	return out, nil
}

func (c *converter) block(n ast.Node) ([]*doctree.Node, error) {
	switch n := n.(type) {
	case *ast.Paragraph:
		if labels := c.targetLabels(n); labels != nil {
			return c.targets(n, labels), nil
		}
		return c.wrapInlines(doctree.KindParagraph, n)
	case *ast.TextBlock:
		return c.wrapInlines(doctree.KindParagraph, n)
	case *ast.Heading:
		// headings inside containers cannot open sections
		return c.wrapInlines(doctree.KindTitle, n)
	case *ast.FencedCodeBlock:
		lit := doctree.New(doctree.KindLiteralBlock)
		lit.Text = strings.TrimSuffix(lineText(n, c.source), "\n")
		if lang := n.Language(c.source); len(lang) > 0 {
			lit.Set(doctree.AttrLanguage, string(lang))
		}
		return one(lit), nil
	case *ast.CodeBlock:
		lit := doctree.New(doctree.KindLiteralBlock)
		lit.Text = strings.TrimSuffix(lineText(n, c.source), "\n")
		return one(lit), nil
	case *ast.List:
		list := doctree.New(doctree.KindBulletList)
		if n.IsOrdered() {
			list = doctree.New(doctree.KindEnumeratedList).Set(doctree.AttrStart, n.Start)
		}
		return c.wrapBlocks(list, n)
	case *ast.ListItem:
		return c.wrapBlocks(doctree.New(doctree.KindListItem), n)
	case *ast.Blockquote:
		return c.wrapBlocks(doctree.New(doctree.KindBlockQuote), n)
	case *ast.ThematicBreak:
		return one(doctree.New(doctree.KindTransition)), nil
	case *ast.HTMLBlock:
		raw := doctree.New(doctree.KindRaw).Set(doctree.AttrFormat, "html")
		raw.Text = lineText(n, c.source)
		if n.HasClosure() {
			raw.Text += string(n.ClosureLine.Value(c.source))
		}
		return one(raw), nil
	case *east.Table:
		return c.table(n)
	case *east.FootnoteList:
		return c.children(n)
	case *east.Footnote:
		note := doctree.New(doctree.KindFootnote).Set(doctree.AttrLabel, strconv.Itoa(n.Index))
		note.AddID(footnoteID(n.Index))
		return c.wrapBlocks(note, n)
	case *Directive:
		return c.directive(n)
	case *MathBlock:
		eq := doctree.New(doctree.KindDisplayMath)
		eq.Text = strings.TrimSpace(lineText(n, c.source))
		if n.Label != "" {
			eq.Set(doctree.AttrLabel, n.Label)
		}
		return one(eq), nil
	default:
		return c.children(n)
	}
}

func one(n *doctree.Node) []*doctree.Node {
	return []*doctree.Node{n}
}

func (c *converter) wrapBlocks(parent *doctree.Node, n ast.Node) ([]*doctree.Node, error) {
	children, err := c.children(n)
	if err != nil {
		return nil, err
	}
	return one(parent.Append(children...)), nil
}

func (c *converter) wrapInlines(kind doctree.Kind, n ast.Node) ([]*doctree.Node, error) {
	children, err := c.inlines(n)
	if err != nil {
		return nil, err
	}
	return one(doctree.New(kind, children...)), nil
}

func footnoteID(index int) string {
	return "footnote-" + strconv.Itoa(index)
}

// targetLabels returns the labels of a paragraph made only of (label)=
// lines, or nil.
func (c *converter) targetLabels(p *ast.Paragraph) []string {
	var labels []string
	for _, line := range strings.Split(strings.TrimSpace(lineText(p, c.source)), "\n") {
		m := targetLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			return nil
		}
		labels = append(labels, m[1])
	}
	return labels
}

// targets attaches labels to the following top-level heading, or emits
// target nodes that the renderers attach to the next element.
func (c *converter) targets(p *ast.Paragraph, labels []string) []*doctree.Node {
	if next := p.NextSibling(); next != nil && next.Kind() == ast.KindHeading && p.Parent().Kind() == ast.KindDocument {
		c.pending = append(c.pending, labels...)
		return nil
	}
	out := make([]*doctree.Node, 0, len(labels))
	for _, label := range labels {
		t := doctree.New(doctree.KindTarget)
		t.AddID(label)
		out = append(out, t)
	}
	return out
}

// table converts a GFM table. A span marker at the start of a cell makes
// it span; the cells it covers are dropped.
func (c *converter) table(t *east.Table) ([]*doctree.Node, error) {
	table := doctree.New(doctree.KindTable).Set(doctree.AttrColumns, len(t.Alignments))
	covered := make(map[[2]int]bool)
	r := 0
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		out := doctree.New(doctree.KindRow)
		if row.Kind() == east.KindTableHeader {
			out.Set(doctree.AttrHeader, true)
		}
		col := 0
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			j := col
			col++
			if covered[[2]int{r, j}] {
				continue
			}
			entry, rows, cols, err := c.cell(cell)
			if err != nil {
				return nil, err
			}
			for dr := 0; dr < rows; dr++ {
				for dc := 0; dc < cols; dc++ {
					if dr != 0 || dc != 0 {
						covered[[2]int{r + dr, j + dc}] = true
					}
				}
			}
			out.Append(entry)
		}
		table.Append(out)
		r++
	}
	return one(table), nil
}

func (c *converter) cell(cell ast.Node) (entry *doctree.Node, rows, cols int, err error) {
	rows, cols = 1, 1
	if marker, ok := cell.FirstChild().(*SpanMarker); ok {
		rows, cols = marker.Rows, marker.Cols
		cell.RemoveChild(cell, marker)
	}
	children, err := c.inlines(cell)
	if err != nil {
		return nil, 0, 0, err
	}
	if len(children) > 0 && children[0].Kind == doctree.KindText {
		children[0].Text = strings.TrimLeft(children[0].Text, " \t")
	}
	entry = doctree.New(doctree.KindEntry, children...)
	if rows > 1 {
		entry.Set(doctree.AttrMoreRows, rows-1)
	}
	if cols > 1 {
		entry.Set(doctree.AttrMoreCols, cols-1)
	}
	return entry, rows, cols, nil
}

// inlines converts the inline children of n, merging adjacent text.
func (c *converter) inlines(n ast.Node) ([]*doctree.Node, error) {
	var out []*doctree.Node
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		nodes, err := c.inline(child)
		if err != nil {
			return nil, err
		}
		for _, node := range nodes {
			if last := len(out) - 1; last >= 0 && node.Kind == doctree.KindText && out[last].Kind == doctree.KindText {
				out[last].Text += node.Text
				continue
			}
			out = append(out, node)
		}
	}
	return out, nil
}

func (c *converter) inline(n ast.Node) ([]*doctree.Node, error) {
	switch n := n.(type) {
	case *ast.Text:
		s := textValue(n.Segment.Value(c.source), n.IsRaw())
		switch {
		case n.HardLineBreak():
			return []*doctree.Node{doctree.NewText(s), doctree.New(doctree.KindLineBreak)}, nil
		case n.SoftLineBreak():
			s += "\n"
		}
		return one(doctree.NewText(s)), nil
	case *ast.String:
		return one(doctree.NewText(string(n.Value))), nil
	case *ast.Emphasis:
		kind := doctree.KindEmphasis
		if n.Level >= 2 {
			kind = doctree.KindStrong
		}
		return c.wrapInlines(kind, n)
	case *ast.CodeSpan:
		var b strings.Builder
		for t := n.FirstChild(); t != nil; t = t.NextSibling() {
			if seg, ok := t.(*ast.Text); ok {
				b.Write(seg.Segment.Value(c.source))
			}
		}
		return one(doctree.New(doctree.KindLiteral, doctree.NewText(strings.ReplaceAll(b.String(), "\n", " ")))), nil
	case *ast.Link:
		ref := doctree.New(doctree.KindReference)
		if dest := string(n.Destination); strings.HasPrefix(dest, "#") {
			ref.Set(doctree.AttrRefID, dest[1:])
		} else {
			ref.Set(doctree.AttrRefURI, dest)
		}
		children, err := c.inlines(n)
		if err != nil {
			return nil, err
		}
		return one(ref.Append(children...)), nil
	case *ast.AutoLink:
		url := string(n.URL(c.source))
		if n.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(url, "mailto:") {
			url = "mailto:" + url
		}
		ref := doctree.New(doctree.KindReference, doctree.NewText(string(n.Label(c.source))))
		return one(ref.Set(doctree.AttrRefURI, url)), nil
	case *ast.Image:
		alt, err := c.inlines(n)
		if err != nil {
			return nil, err
		}
		img := doctree.New(doctree.KindImage).
			Set(doctree.AttrURI, string(n.Destination)).
			Set(doctree.AttrAlt, doctree.New(doctree.KindParagraph, alt...).PlainText())
		return one(img), nil
	case *ast.RawHTML:
		raw := doctree.New(doctree.KindRaw).Set(doctree.AttrFormat, "html")
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			raw.Text += string(seg.Value(c.source))
		}
		return one(raw), nil
	case *east.Strikethrough:
		return c.wrapInlines(doctree.KindStrikethrough, n)
	case *east.TaskCheckBox:
		if n.IsChecked {
			return one(doctree.NewText("[x] ")), nil
		}
		return one(doctree.NewText("[ ] ")), nil
	case *east.FootnoteLink:
		return one(doctree.New(doctree.KindFootnoteReference).Set(doctree.AttrRefID, footnoteID(n.Index))), nil
	case *east.FootnoteBacklink:
		return nil, nil
	case *Role:
		return c.role(n)
	case *InlineMath:
		kind := doctree.KindMath
		if n.Display {
			kind = doctree.KindDisplayMath
		}
		m := doctree.New(kind)
		m.Text = n.Content
		return one(m), nil
	case *SpanMarker:
		return one(doctree.NewText(n.Raw)), nil
	default:
		return c.inlines(n)
	}
}

// textValue resolves backslash escapes and character references unless the
// text is raw.
func textValue(v []byte, raw bool) string {
	if raw {
		return string(v)
	}
	return string(util.UnescapePunctuations(util.ResolveEntityNames(util.ResolveNumericReferences(v))))
}

func (c *converter) role(r *Role) ([]*doctree.Node, error) {
	switch r.Name {
	case "textcolor":
		spec, content, ok := doctree.ParseColorRole(r.Content)
		if !ok {
			return nil, fmt.Errorf("%w: %s: textcolor %q: expected \"<color> text\"", ErrInvalidRole, c.docname, r.Content)
		}
		return one(doctree.NewTextColor(spec, doctree.NewText(content))), nil
	case "ref", "doc":
		title, target := splitExplicitTitle(r.Content)
		if target == "" {
			return nil, fmt.Errorf("%w: %s: %s with empty target", ErrInvalidRole, c.docname, r.Name)
		}
		xref := doctree.New(doctree.KindPendingXRef).
			Set(doctree.AttrRefType, r.Name).
			Set(doctree.AttrRefTarget, target)
		if title != "" {
			xref.Append(doctree.NewText(title))
		}
		return one(xref), nil
	case "eq":
		return one(doctree.New(doctree.KindEqRef).Set(doctree.AttrRefTarget, strings.TrimSpace(r.Content))), nil
	case "math":
		m := doctree.New(doctree.KindMath)
		m.Text = r.Content
		return one(m), nil
	default:
		return nil, fmt.Errorf("%w: %s: %q", ErrUnknownRole, c.docname, r.Name)
	}
}

// splitExplicitTitle splits "Title <target>" role content.
func splitExplicitTitle(content string) (title, target string) {
	content = strings.TrimSpace(content)
	if m := explicitTitle.FindStringSubmatch(content); m != nil {
		return m[1], strings.TrimSpace(m[2])
	}
	return "", content
}

func (c *converter) directive(d *Directive) ([]*doctree.Node, error) {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s:%d: %s: %s", ErrInvalidDirective, c.docname, d.Line, d.Name, fmt.Sprintf(format, args...))
	}

	switch d.Name {
	case "environment":
		if d.Arg == "" {
			return nil, invalid("missing environment name")
		}
		body, err := c.children(d)
		if err != nil {
			return nil, err
		}
		title, _ := d.Option("title")
		env := doctree.NewEnvironment(d.Arg, title, body...)
		for _, key := range []string{doctree.AttrLaTeXTitle, doctree.AttrHTMLTitle, doctree.AttrLabel} {
			if v, ok := d.Option(key); ok && v != "" {
				env.Set(key, v)
			}
		}
		return one(env), nil
	case "align":
		body, err := c.children(d)
		if err != nil {
			return nil, err
		}
		return one(doctree.NewAlign(d.Arg, body...)), nil
	case "textcolor":
		if d.Arg == "" {
			return nil, invalid("missing color")
		}
		body, err := c.children(d)
		if err != nil {
			return nil, err
		}
		for _, b := range body {
			colorParagraphs(b, d.Arg)
		}
		return body, nil
	case "endpar":
		return one(doctree.NewEndPar()), nil
	case "ifhtml", "iflatex":
		kind := doctree.KindIfHTML
		if d.Name == "iflatex" {
			kind = doctree.KindIfLaTeX
		}
		body, err := c.children(d)
		if err != nil {
			return nil, err
		}
		return one(doctree.New(kind, body...)), nil
	case "math":
		eq := doctree.New(doctree.KindDisplayMath)
		eq.Text = strings.TrimSpace(lineText(d, c.source))
		if eq.Text == "" {
			eq.Text = d.Arg
		}
		if label, ok := d.Option("label"); ok && label != "" {
			eq.Set(doctree.AttrLabel, label)
		}
		if _, ok := d.Option("nowrap"); ok {
			eq.Set(doctree.AttrNoWrap, true)
		}
		return one(eq), nil
	case "toctree":
		var entries []string
		for _, line := range strings.Split(lineText(d, c.source), "\n") {
			if entry := strings.TrimSpace(line); entry != "" {
				entries = append(entries, entry)
			}
		}
		return one(doctree.New(doctree.KindToctree).Set(doctree.AttrEntries, entries)), nil
	case "raw":
		format := d.Arg
		if v, ok := d.Option("format"); ok && v != "" {
			format = v
		}
		if format == "" {
			return nil, invalid("missing format")
		}
		raw := doctree.New(doctree.KindRaw).Set(doctree.AttrFormat, format)
		raw.Text = lineText(d, c.source)
		return one(raw), nil
	default:
		return nil, fmt.Errorf("%w: %s:%d: %q", ErrUnknownDirective, c.docname, d.Line, d.Name)
	}
}

// colorParagraphs wraps the content of every paragraph under n in a color
// span, so that the span never contains a paragraph break.
func colorParagraphs(n *doctree.Node, spec string) {
	doctree.Inspect(n, func(m *doctree.Node) bool {
		if m.Kind != doctree.KindParagraph {
			return true
		}
		m.Children = []*doctree.Node{doctree.NewTextColor(spec, m.Children...)}
		return false
	})
}
