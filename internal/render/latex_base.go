package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alnah/go-clatex/internal/doctree"
)

// sectionCommands are the sectioning commands indexed by section level.
var sectionCommands = []string{
	"part", "chapter", "section", "subsection",
	"subsubsection", "paragraph", "subparagraph",
}

// latexBaseHandlers renders the standard node kinds as LaTeX.
func latexBaseHandlers() HandlerTable {
	return HandlerTable{
		doctree.KindDocument:          {Enter: latexEnterDocument, Exit: exitDocument},
		doctree.KindStartOfFile:       {Enter: latexEnterStartOfFile, Exit: exitStartOfFile},
		doctree.KindSection:           {Enter: enterSection, Exit: exitSection},
		doctree.KindTitle:             {Enter: latexEnterTitle, Exit: closePair},
		doctree.KindParagraph:         wrap("\n", "\n"),
		doctree.KindText:              {Enter: latexText},
		doctree.KindEmphasis:          wrap(`\emph{`, `}`),
		doctree.KindStrong:            wrap(`\textbf{`, `}`),
		doctree.KindLiteral:           wrap(`\texttt{`, `}`),
		doctree.KindStrikethrough:     wrap(`\sout{`, `}`),
		doctree.KindLineBreak:         {Enter: emit("\\\\\n")},
		doctree.KindLiteralBlock:      {Enter: latexLiteralBlock},
		doctree.KindBulletList:        wrap("\n\\begin{itemize}\n", "\\end{itemize}\n"),
		doctree.KindEnumeratedList:    {Enter: latexEnterEnumerated, Exit: emit("\\end{enumerate}\n")},
		doctree.KindListItem:          wrap(`\item `, "\n"),
		doctree.KindBlockQuote:        wrap("\n\\begin{quote}\n", "\n\\end{quote}\n"),
		doctree.KindTransition:        {Enter: emit(DefaultTransition)},
		doctree.KindReference:         {Enter: latexEnterReference, Exit: closePair},
		doctree.KindPendingXRef:       wrap(`\emph{`, `}`),
		doctree.KindTarget:            {Enter: latexTarget},
		doctree.KindImage:             {Enter: latexImage},
		doctree.KindFootnote:          skip,
		doctree.KindFootnoteReference: {Enter: latexFootnoteReference},
		doctree.KindTable:             {Enter: latexEnterTable, Exit: latexExitTable},
		doctree.KindRow:               {Enter: latexEnterRow, Exit: latexExitRow},
		doctree.KindEntry:             {Enter: latexEnterEntry, Exit: closePair},
		doctree.KindMath:              mathHandler,
		doctree.KindDisplayMath:       displayMathHandler,
		doctree.KindEqRef:             eqRefHandler,
		doctree.KindRaw:               {Enter: rawFor("latex")},
		doctree.KindToctree:           skip,
	}
}

// latexEnterDocument opens a document root without the begin-of-body
// logic, which belongs to the clatex table.
func latexEnterDocument(c *Context, n *doctree.Node) error {
	c.PushFile(n.Str(doctree.AttrDocName), n)
	if n.Has(doctree.AttrDocName) {
		c.Emit(latexHypertarget(c, "doc"))
	}
	// raised again when the first section is entered
	c.SectionLevel = c.TopSectionLevel - 1
	return nil
}

func exitDocument(c *Context, _ *doctree.Node) error {
	c.PopFile()
	return nil
}

func latexEnterStartOfFile(c *Context, n *doctree.Node) error {
	c.PushFile(n.Str(doctree.AttrDocName), n)
	c.Emit("\n", latexHypertarget(c, "doc"))
	return nil
}

func exitStartOfFile(c *Context, _ *doctree.Node) error {
	c.PopFile()
	return nil
}

// latexHypertarget is an anchor for id in the current file.
func latexHypertarget(c *Context, id string) string {
	return `\phantomsection\label{` + c.Anchor("", id) + `}`
}

func enterSection(c *Context, _ *doctree.Node) error {
	c.SectionLevel++
	return nil
}

func exitSection(c *Context, _ *doctree.Node) error {
	c.SectionLevel--
	return nil
}

func latexEnterTitle(c *Context, n *doctree.Node) error {
	parent := c.Parent()
	if parent == nil || parent.Kind != doctree.KindSection {
		c.Emit(`\textbf{`)
		c.PushCloser("}\n")
		return nil
	}

	level := c.SectionLevel
	if level < 0 {
		level = 0
	}
	if level >= len(sectionCommands) {
		level = len(sectionCommands) - 1
	}
	c.Emit("\n\n\\" + sectionCommands[level] + "{")

	var labels strings.Builder
	labels.WriteString("}\n")
	addPending(&c.NextSectionIDs, parent.IDs...)
	for _, id := range takeIDs(&c.NextSectionIDs) {
		labels.WriteString(`\label{` + c.Anchor("", id) + "}\n")
	}
	c.PushCloser(labels.String())
	return nil
}

func latexText(c *Context, n *doctree.Node) error {
	c.Emit(EscapeLaTeX(n.Text))
	return nil
}

func latexLiteralBlock(c *Context, n *doctree.Node) error {
	if c.Highlighter != nil && c.Bindings.Highlighter {
		out, err := c.Highlighter.Highlight(n.Text, n.Str(doctree.AttrLanguage))
		if err != nil {
			return err
		}
		c.Emit("\n", out)
		return doctree.ErrSkipChildren
	}
	text := strings.TrimSuffix(n.Text, "\n")
	c.Emit("\n\\begin{verbatim}\n", text, "\n\\end{verbatim}\n")
	return doctree.ErrSkipChildren
}

func latexEnterEnumerated(c *Context, n *doctree.Node) error {
	c.Emit("\n\\begin{enumerate}\n")
	if start := n.Int(doctree.AttrStart); start > 1 {
		c.Emit(`\setcounter{enumi}{` + strconv.Itoa(start-1) + "}\n")
	}
	return nil
}

// latexEnterReference opens a link. Internal references use the
// "%docname#id" form produced by the assembler.
func latexEnterReference(c *Context, n *doctree.Node) error {
	uri := n.Str(doctree.AttrRefURI)
	switch {
	case strings.HasPrefix(uri, "%"):
		docname, id, found := strings.Cut(uri[1:], "#")
		if !found {
			id = "doc"
		}
		c.Emit(`\hyperref[` + c.Anchor(docname, id) + `]{`)
	case n.Has(doctree.AttrRefID):
		c.Emit(`\hyperref[` + c.Anchor("", n.Str(doctree.AttrRefID)) + `]{`)
	default:
		c.Emit(`\href{` + escapeURL(uri) + `}{`)
	}
	c.PushCloser("}")
	return nil
}

// latexTarget defers labels to a following section, table or image, and
// anchors in place otherwise.
func latexTarget(c *Context, n *doctree.Node) error {
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
		c.Emit(latexHypertarget(c, id))
	}
	return nil
}

func latexImage(c *Context, n *doctree.Node) error {
	for _, id := range takeIDs(&c.NextFigureIDs) {
		c.Emit(latexHypertarget(c, id))
	}
	c.Emit(`\includegraphics{` + n.Str(doctree.AttrURI) + `}`)
	return doctree.ErrSkipChildren
}

// latexFootnoteReference renders the referenced footnote inline. Later
// references to the same footnote only repeat its mark.
func latexFootnoteReference(c *Context, n *doctree.Node) error {
	id := n.Str(doctree.AttrRefID)
	note, ok := c.Footnotes()[id]
	if !ok {
		return fmt.Errorf("%w: %q in %q", ErrUnknownFootnote, id, c.CurrentFile())
	}
	mark := ""
	if label := note.Str(doctree.AttrLabel); label != "" {
		mark = "[" + label + "]"
	}
	if c.markFootnoteUsed(id) {
		c.Emit(`\footnotemark` + mark)
		return doctree.ErrSkipChildren
	}
	c.Emit(`\footnote` + mark + `{`)
	for _, child := range note.Children {
		if err := c.Render(child); err != nil {
			return err
		}
	}
	c.Emit("}")
	return doctree.ErrSkipChildren
}

// rawFor passes raw content through when it targets the given format.
func rawFor(format string) Hook {
	return func(c *Context, n *doctree.Node) error {
		if strings.EqualFold(n.Str(doctree.AttrFormat), format) {
			c.Emit(n.Text)
		}
		return doctree.ErrSkipChildren
	}
}
