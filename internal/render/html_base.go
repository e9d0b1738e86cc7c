package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alnah/go-clatex/internal/doctree"
)

// htmlBaseHandlers renders the standard node kinds as HTML.
func htmlBaseHandlers() HandlerTable {
	return HandlerTable{
		doctree.KindDocument:          {Enter: htmlEnterDocument, Exit: htmlExitDocument},
		doctree.KindStartOfFile:       {Enter: htmlEnterStartOfFile, Exit: htmlExitDocument},
		doctree.KindSection:           {Enter: htmlEnterSection, Exit: htmlExitSection},
		doctree.KindTitle:             {Enter: htmlEnterTitle, Exit: closePair},
		doctree.KindParagraph:         {Enter: htmlEnterParagraph, Exit: emit("</p>\n")},
		doctree.KindText:              {Enter: htmlText},
		doctree.KindEmphasis:          wrap("<em>", "</em>"),
		doctree.KindStrong:            wrap("<strong>", "</strong>"),
		doctree.KindLiteral:           wrap(`<code class="docutils literal">`, "</code>"),
		doctree.KindStrikethrough:     wrap("<del>", "</del>"),
		doctree.KindLineBreak:         {Enter: emit("<br />\n")},
		doctree.KindLiteralBlock:      {Enter: htmlLiteralBlock},
		doctree.KindBulletList:        wrap("<ul>\n", "</ul>\n"),
		doctree.KindEnumeratedList:    {Enter: htmlEnterEnumerated, Exit: emit("</ol>\n")},
		doctree.KindListItem:          wrap("<li>", "</li>\n"),
		doctree.KindBlockQuote:        wrap("<blockquote>\n", "</blockquote>\n"),
		doctree.KindTransition:        {Enter: emit(DefaultHTMLTransition)},
		doctree.KindReference:         {Enter: htmlEnterReference, Exit: emit("</a>")},
		doctree.KindPendingXRef:       wrap("<em>", "</em>"),
		doctree.KindTarget:            {Enter: htmlTarget},
		doctree.KindImage:             {Enter: htmlImage},
		doctree.KindFootnote:          skip,
		doctree.KindFootnoteReference: {Enter: htmlFootnoteReference},
		doctree.KindTable:             {Enter: htmlEnterTable, Exit: htmlExitTable},
		doctree.KindRow:               wrap("<tr>", "</tr>\n"),
		doctree.KindEntry:             {Enter: htmlEnterEntry, Exit: closePair},
		doctree.KindMath:              mathHandler,
		doctree.KindDisplayMath:       displayMathHandler,
		doctree.KindEqRef:             eqRefHandler,
		doctree.KindRaw:               {Enter: rawFor("html")},
		doctree.KindToctree:           skip,
	}
}

// idAttr renders an id attribute for the first anchor of ids.
func idAttr(c *Context, ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return ` id="` + EscapeHTML(c.Anchor("", ids[0])) + `"`
}

// extraAnchors renders empty spans for the remaining ids.
func extraAnchors(c *Context, ids []string) string {
	if len(ids) < 2 {
		return ""
	}
	var sb strings.Builder
	for _, id := range ids[1:] {
		sb.WriteString(`<span id="` + EscapeHTML(c.Anchor("", id)) + `"></span>`)
	}
	return sb.String()
}

// classAttr renders a class attribute, or nothing without classes.
func classAttr(classes ...string) string {
	var kept []string
	for _, class := range classes {
		if class != "" {
			kept = append(kept, EscapeHTML(class))
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return ` class="` + strings.Join(kept, " ") + `"`
}

func htmlEnterDocument(c *Context, n *doctree.Node) error {
	c.PushFile(n.Str(doctree.AttrDocName), n)
	c.Emit(`<div class="document"`)
	if n.Has(doctree.AttrDocName) {
		c.Emit(` id="` + EscapeHTML(c.Anchor("", "doc")) + `"`)
	}
	c.Emit(">\n")
	c.SectionLevel = c.TopSectionLevel - 1
	return nil
}

func htmlEnterStartOfFile(c *Context, n *doctree.Node) error {
	c.PushFile(n.Str(doctree.AttrDocName), n)
	c.Emit(`<div class="file" id="` + EscapeHTML(c.Anchor("", "doc")) + "\">\n")
	return nil
}

// htmlExitDocument writes the footnotes of the closing document and closes
// its container.
func htmlExitDocument(c *Context, n *doctree.Node) error {
	notes := orderedFootnotes(n)
	if len(notes) > 0 {
		c.Emit("<div class=\"footnotes\">\n")
		for _, note := range notes {
			c.Emit(`<div class="footnote"` + idAttr(c, prefixed("fn-", note.IDs)) + ">")
			c.Emit(`<span class="label">[` + EscapeHTML(note.Str(doctree.AttrLabel)) + "]</span>\n")
			for _, child := range note.Children {
				if err := c.Render(child); err != nil {
					return err
				}
			}
			c.Emit("</div>\n")
		}
		c.Emit("</div>\n")
	}
	c.Emit("</div>\n")
	c.PopFile()
	return nil
}

func prefixed(prefix string, ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = prefix + id
	}
	return out
}

func htmlEnterSection(c *Context, n *doctree.Node) error {
	c.SectionLevel++
	ids := append(takeIDs(&c.NextSectionIDs), n.IDs...)
	c.Emit(`<div class="section"` + idAttr(c, ids) + ">" + extraAnchors(c, ids) + "\n")
	return nil
}

func htmlExitSection(c *Context, _ *doctree.Node) error {
	c.Emit("</div>\n")
	c.SectionLevel--
	return nil
}

func htmlEnterTitle(c *Context, _ *doctree.Node) error {
	parent := c.Parent()
	if parent == nil || parent.Kind != doctree.KindSection {
		c.Emit(`<p class="rubric">`)
		c.PushCloser("</p>\n")
		return nil
	}
	level := c.SectionLevel - c.TopSectionLevel + 1
	level = max(1, min(level, 6))
	c.Emit("<h" + strconv.Itoa(level) + ">")
	c.PushCloser("</h" + strconv.Itoa(level) + ">\n")
	return nil
}

func htmlEnterParagraph(c *Context, n *doctree.Node) error {
	c.Emit("<p" + idAttr(c, n.IDs) + classAttr(n.Classes...) + ">")
	return nil
}

func htmlText(c *Context, n *doctree.Node) error {
	c.Emit(EscapeHTML(n.Text))
	return nil
}

func htmlLiteralBlock(c *Context, n *doctree.Node) error {
	if c.Highlighter != nil && c.Bindings.Highlighter {
		out, err := c.Highlighter.Highlight(n.Text, n.Str(doctree.AttrLanguage))
		if err != nil {
			return err
		}
		c.Emit(out, "\n")
		return doctree.ErrSkipChildren
	}
	c.Emit(`<pre class="literal-block">`, EscapeHTML(n.Text), "</pre>\n")
	return doctree.ErrSkipChildren
}

func htmlEnterEnumerated(c *Context, n *doctree.Node) error {
	if start := n.Int(doctree.AttrStart); start > 1 {
		c.Emit(`<ol start="` + strconv.Itoa(start) + "\">\n")
		return nil
	}
	c.Emit("<ol>\n")
	return nil
}

func htmlEnterReference(c *Context, n *doctree.Node) error {
	uri := n.Str(doctree.AttrRefURI)
	var href, class string
	switch {
	case strings.HasPrefix(uri, "%"):
		docname, id, found := strings.Cut(uri[1:], "#")
		if !found {
			id = "doc"
		}
		href, class = "#"+c.Anchor(docname, id), "reference internal"
	case n.Has(doctree.AttrRefID):
		href, class = "#"+c.Anchor("", n.Str(doctree.AttrRefID)), "reference internal"
	default:
		href, class = uri, "reference external"
	}
	c.Emit(`<a class="` + class + `" href="` + EscapeHTML(href) + `">`)
	return nil
}

func htmlTarget(c *Context, n *doctree.Node) error {
	if next := c.NextSibling(n); next != nil {
		switch next.Kind {
		case doctree.KindSection:
			addPending(&c.NextSectionIDs, n.IDs...)
			return nil
		case doctree.KindTable:
			addPending(&c.NextTableIDs, n.IDs...)
			return nil
		case doctree.KindImage:
			addPending(&c.NextFigureIDs, n.IDs...)
			return nil
		}
	}
	for _, id := range n.IDs {
		c.Emit(`<span id="` + EscapeHTML(c.Anchor("", id)) + `"></span>`)
	}
	return nil
}

func htmlImage(c *Context, n *doctree.Node) error {
	ids := takeIDs(&c.NextFigureIDs)
	c.Emit(`<img` + idAttr(c, ids) + ` src="` + EscapeHTML(n.Str(doctree.AttrURI)) +
		`" alt="` + EscapeHTML(n.Str(doctree.AttrAlt)) + `" />`)
	return doctree.ErrSkipChildren
}

func htmlFootnoteReference(c *Context, n *doctree.Node) error {
	id := n.Str(doctree.AttrRefID)
	note, ok := c.Footnotes()[id]
	if !ok {
		return fmt.Errorf("%w: %q in %q", ErrUnknownFootnote, id, c.CurrentFile())
	}
	c.Emit(fmt.Sprintf(`<a class="footnote-reference" href="#%s">[%s]</a>`,
		EscapeHTML(c.Anchor("", "fn-"+id)), EscapeHTML(note.Str(doctree.AttrLabel))))
	return doctree.ErrSkipChildren
}

func htmlEnterTable(c *Context, n *doctree.Node) error {
	c.Table = &TableState{Columns: tableColumns(n)}
	ids := append(takeIDs(&c.NextTableIDs), n.IDs...)
	c.Emit(`<table class="docutils"` + idAttr(c, ids) + ">\n")
	return nil
}

func htmlExitTable(c *Context, _ *doctree.Node) error {
	c.Emit("</table>\n")
	c.Table = nil
	return nil
}

func htmlEnterEntry(c *Context, n *doctree.Node) error {
	tag := "td"
	if row := c.Parent(); (row != nil && row.Bool(doctree.AttrHeader)) || n.Bool(doctree.AttrHeader) {
		tag = "th"
	}
	c.Emit("<" + tag)
	if rows := n.Int(doctree.AttrMoreRows); rows > 0 {
		c.Emit(` rowspan="` + strconv.Itoa(rows+1) + `"`)
	}
	if cols := n.Int(doctree.AttrMoreCols); cols > 0 {
		c.Emit(` colspan="` + strconv.Itoa(cols+1) + `"`)
	}
	c.Emit(">")
	c.PushCloser("</" + tag + ">")
	return nil
}
