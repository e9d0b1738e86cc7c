package render

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/alnah/go-clatex/internal/doctree"
)

// DocumentPhase tracks which document roots have been seen.
type DocumentPhase int

// Phases of the document-root sequence: before the first root, inside the
// main document, inside the appendices.
const (
	PhaseFirst DocumentPhase = iota
	PhaseMain
	PhaseAppendix
)

// TableState is the bookkeeping of the table being rendered.
type TableState struct {
	Columns int  // column count from the table spec
	Col     int  // columns consumed so far in the current row
	Rows    int  // rows rendered so far
	Header  bool // current row is a header row
}

// Context is the mutable state of one render. A Context is never shared
// between renders.
type Context struct {
	Body []string

	SectionLevel    int
	TopSectionLevel int

	FootnoteStack []map[string]*doctree.Node
	FileStack     []string

	NextSectionIDs []string
	NextFigureIDs  []string
	NextTableIDs   []string

	Table                  *TableState
	PreviousSpanningRow    int
	PreviousSpanningColumn int
	RememberMultirow       map[int]int

	Phase DocumentPhase

	// Equations maps equation labels to their display numbers.
	Equations map[string]int

	Bindings    *Bindings
	Math        MathRenderer
	Highlighter Highlighter
	Logger      *slog.Logger

	closers       []string
	parents       []*doctree.Node
	usedFootnotes map[string]bool
	idCounter     int
	walk          func(*doctree.Node) error
}

// newContext creates an empty context bound to the given collaborators.
func newContext(b *Bindings, math MathRenderer, hl Highlighter, logger *slog.Logger) *Context {
	return &Context{
		TopSectionLevel: b.TopSectionLevel(),
		Equations:       make(map[string]int),
		Bindings:        b,
		Math:            math,
		Highlighter:     hl,
		Logger:          logger,
		usedFootnotes:   make(map[string]bool),
	}
}

// Emit appends fragments to the output buffer.
func (c *Context) Emit(parts ...string) {
	c.Body = append(c.Body, parts...)
}

// String returns the accumulated body.
func (c *Context) String() string {
	return strings.Join(c.Body, "")
}

// PushCloser records the fragment an exit hook must emit.
func (c *Context) PushCloser(s string) {
	c.closers = append(c.closers, s)
}

// PopCloser removes and returns the most recent closer.
func (c *Context) PopCloser() string {
	if len(c.closers) == 0 {
		return ""
	}
	s := c.closers[len(c.closers)-1]
	c.closers = c.closers[:len(c.closers)-1]
	return s
}

// Parent returns the parent of the node currently being visited, or nil at
// the root.
func (c *Context) Parent() *doctree.Node {
	if len(c.parents) < 2 {
		return nil
	}
	return c.parents[len(c.parents)-2]
}

// NextSibling returns the sibling following n under its parent, or nil.
func (c *Context) NextSibling(n *doctree.Node) *doctree.Node {
	parent := c.Parent()
	if parent == nil {
		return nil
	}
	for i, child := range parent.Children {
		if child == n && i+1 < len(parent.Children) {
			return parent.Children[i+1]
		}
	}
	return nil
}

// CurrentFile returns the identifier of the innermost open document.
func (c *Context) CurrentFile() string {
	if len(c.FileStack) == 0 {
		return ""
	}
	return c.FileStack[len(c.FileStack)-1]
}

// PushFile opens a (sub-)document: its footnotes become the active
// collection and its name the current file.
func (c *Context) PushFile(docname string, root *doctree.Node) {
	c.FootnoteStack = append(c.FootnoteStack, collectFootnotes(root))
	c.FileStack = append(c.FileStack, docname)
}

// PopFile closes the innermost (sub-)document.
func (c *Context) PopFile() {
	if n := len(c.FootnoteStack); n > 0 {
		c.FootnoteStack = c.FootnoteStack[:n-1]
	}
	if n := len(c.FileStack); n > 0 {
		c.FileStack = c.FileStack[:n-1]
	}
}

// Footnotes returns the active footnote collection.
func (c *Context) Footnotes() map[string]*doctree.Node {
	if len(c.FootnoteStack) == 0 {
		return nil
	}
	return c.FootnoteStack[len(c.FootnoteStack)-1]
}

// markFootnoteUsed records a footnote reference and reports whether the
// footnote had already been referenced.
func (c *Context) markFootnoteUsed(id string) bool {
	key := c.CurrentFile() + "\x00" + id
	seen := c.usedFootnotes[key]
	c.usedFootnotes[key] = true
	return seen
}

// NewID returns an identifier unique within this render. The sequence
// depends only on the order of calls, so identical inputs yield identical ids.
func (c *Context) NewID(prefix string) string {
	c.idCounter++
	return fmt.Sprintf("%s%d", prefix, c.idCounter)
}

// unsafeAnchor matches characters that cannot appear in a label.
var unsafeAnchor = regexp.MustCompile(`[^A-Za-z0-9:._/-]+`)

// Anchor returns the cross-reference target for id in the given document.
// An empty docname uses the current file.
func (c *Context) Anchor(docname, id string) string {
	if docname == "" {
		docname = c.CurrentFile()
	}
	return unsafeAnchor.ReplaceAllString(docname+":"+id, "-")
}

// Render walks n with the handler table of the running render. Hooks use it
// to render subtrees out of document order (footnotes).
func (c *Context) Render(n *doctree.Node) error {
	if c.walk == nil {
		return fmt.Errorf("%w: context is not attached to a render", ErrUnbalancedContext)
	}
	return c.walk(n)
}

// takeIDs returns and clears a pending id list.
func takeIDs(ids *[]string) []string {
	out := *ids
	*ids = nil
	return out
}

// addPending appends ids to a pending list, keeping set semantics.
func addPending(ids *[]string, add ...string) {
	for _, id := range add {
		found := false
		for _, existing := range *ids {
			if existing == id {
				found = true
				break
			}
		}
		if !found {
			*ids = append(*ids, id)
		}
	}
}

// checkBalanced reports an error if any stack was left open by a traversal.
func (c *Context) checkBalanced() error {
	switch {
	case len(c.FootnoteStack) != 0:
		return fmt.Errorf("%w: %d footnote collections left open", ErrUnbalancedContext, len(c.FootnoteStack))
	case len(c.FileStack) != 0:
		return fmt.Errorf("%w: %d files left open", ErrUnbalancedContext, len(c.FileStack))
	case len(c.closers) != 0:
		return fmt.Errorf("%w: %d constructs left open", ErrUnbalancedContext, len(c.closers))
	case c.Table != nil:
		return fmt.Errorf("%w: table left open", ErrUnbalancedContext)
	}
	return nil
}

// collectFootnotes indexes the footnotes of a document by id.
func collectFootnotes(root *doctree.Node) map[string]*doctree.Node {
	notes := make(map[string]*doctree.Node)
	for _, note := range orderedFootnotes(root) {
		for _, id := range note.IDs {
			notes[id] = note
		}
	}
	return notes
}

// orderedFootnotes returns the footnotes of a document in document order,
// without descending into nested documents.
func orderedFootnotes(root *doctree.Node) []*doctree.Node {
	if root == nil {
		return nil
	}
	var notes []*doctree.Node
	var visit func(*doctree.Node)
	visit = func(n *doctree.Node) {
		for _, child := range n.Children {
			switch child.Kind {
			case doctree.KindDocument, doctree.KindStartOfFile:
				continue
			case doctree.KindFootnote:
				notes = append(notes, child)
				continue
			}
			visit(child)
		}
	}
	visit(root)
	return notes
}
