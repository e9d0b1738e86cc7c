package markup

import (
	"context"
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/alnah/go-clatex/internal/doctree"
)

// Parser priorities. Directives and $$ blocks must be tried before
// paragraphs; roles and inline math before emphasis.
const (
	directivePriority  = 150
	mathBlockPriority  = 160
	rolePriority       = 150
	inlineMathPriority = 450
)

type clatexExtension struct{}

// Extension registers directives, roles, span markers and math.
var Extension goldmark.Extender = &clatexExtension{}

func (e *clatexExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(
			util.Prioritized(NewDirectiveParser(), directivePriority),
			util.Prioritized(NewMathBlockParser(), mathBlockPriority),
		),
		parser.WithInlineParsers(
			util.Prioritized(NewRoleParser(), rolePriority),
			util.Prioritized(NewInlineMathParser(), inlineMathPriority),
		),
	)
}

var crlfOrCR = regexp.MustCompile(`\r\n?`)

// Parser turns Markdown sources into document trees. It holds no
// per-document state and is safe for concurrent use.
type Parser struct {
	md goldmark.Markdown
}

// NewParser creates a Parser with GFM, footnotes and the clatex extension.
func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			Extension,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
	return &Parser{md: md}
}

// Parse converts one source into a document tree rooted at a document node
// named docname. Goldmark does not take a context, so cancellation is
// checked around the conversion.
func (p *Parser) Parse(ctx context.Context, docname string, source []byte) (*doctree.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		tree *doctree.Node
		err  error
	}
	done := make(chan result, 1)

	go func() {
		src := crlfOrCR.ReplaceAll(source, []byte("\n"))
		root := p.md.Parser().Parse(text.NewReader(src))
		c := &converter{source: src, docname: docname}
		tree, err := c.document(root)
		done <- result{tree: tree, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.tree, r.err
	}
}
