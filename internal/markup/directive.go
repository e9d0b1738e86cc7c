package markup

import (
	"bytes"
	"regexp"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var (
	directiveOpen   = regexp.MustCompile(`^(:{3,})\{([A-Za-z][\w-]*)\}[ \t]*(.*?)[ \t]*$`)
	directiveOption = regexp.MustCompile(`^[ \t]*:([A-Za-z][\w-]*):(?:[ \t]+(.*?))?[ \t]*\r?\n?$`)
	mathBlockClose  = regexp.MustCompile(`^(.*?)\$\$[ \t]*(?:\(([^)\s]+)\))?[ \t]*$`)
)

// rawDirectives keep their body lines instead of parsing them as Markdown.
var rawDirectives = map[string]bool{
	"math":    true,
	"toctree": true,
	"raw":     true,
}

// leafDirectives have no body and no closing fence.
var leafDirectives = map[string]bool{
	"endpar": true,
}

type directiveParser struct{}

// NewDirectiveParser returns a BlockParser for colon-fence directives.
func NewDirectiveParser() parser.BlockParser {
	return &directiveParser{}
}

func (p *directiveParser) Trigger() []byte {
	return []byte{':'}
}

func (p *directiveParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, _ := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || line[pos] != ':' {
		return nil, parser.NoChildren
	}
	m := directiveOpen.FindSubmatch(bytes.TrimRight(line[pos:], "\r\n"))
	if m == nil {
		return nil, parser.NoChildren
	}
	lineNum, _ := reader.Position()
	name := string(m[2])
	node := &Directive{
		Name:    name,
		Arg:     string(m[3]),
		Options: map[string]string{},
		Line:    lineNum + 1,
		fence:   len(m[1]),
		raw:     rawDirectives[name],
	}
	reader.AdvanceToEOL()
	if node.raw || leafDirectives[name] {
		return node, parser.NoChildren
	}
	return node, parser.HasChildren
}

func (p *directiveParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	n := node.(*Directive)
	if leafDirectives[n.Name] {
		return parser.Close
	}
	line, segment := reader.PeekLine()
	if isClosingFence(line, reader.LineOffset(), n.fence) {
		reader.AdvanceToEOL()
		return parser.Close
	}
	if !n.bodyStarted {
		if m := directiveOption.FindSubmatch(line); m != nil {
			n.Options[string(m[1])] = string(m[2])
			reader.AdvanceToEOL()
			return parser.Continue | parser.NoChildren
		}
		n.bodyStarted = true
	}
	if n.raw {
		n.Lines().Append(segment)
		reader.AdvanceToEOL()
		return parser.Continue | parser.NoChildren
	}
	return parser.Continue | parser.HasChildren
}

func (p *directiveParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (p *directiveParser) CanInterruptParagraph() bool {
	return true
}

func (p *directiveParser) CanAcceptIndentedLine() bool {
	return false
}

// isClosingFence reports whether line is a run of at least length colons
// followed by nothing but spaces.
func isClosingFence(line []byte, offset, length int) bool {
	w, pos := util.IndentWidth(line, offset)
	if w > 3 {
		return false
	}
	i := pos
	for i < len(line) && line[i] == ':' {
		i++
	}
	return i-pos >= length && util.IsBlank(line[i:])
}

type mathBlockParser struct{}

// NewMathBlockParser returns a BlockParser for $$ display math.
func NewMathBlockParser() parser.BlockParser {
	return &mathBlockParser{}
}

func (p *mathBlockParser) Trigger() []byte {
	return []byte{'$'}
}

func (p *mathBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || !bytes.HasPrefix(line[pos:], []byte("$$")) {
		return nil, parser.NoChildren
	}
	rest := bytes.TrimRight(line[pos+2:], " \t\r\n")
	node := &MathBlock{}
	switch {
	case len(rest) == 0:
	case mathBlockClose.Match(rest):
		m := mathBlockClose.FindSubmatch(rest)
		node.Label = string(m[2])
		node.closed = true
		start := segment.Start + pos + 2
		node.Lines().Append(text.NewSegment(start, start+len(m[1])))
	case bytes.Contains(rest, []byte("$$")):
		// $$x$$ followed by text is inline display math.
		return nil, parser.NoChildren
	default:
		start := segment.Start + pos + 2
		node.Lines().Append(text.NewSegment(start, segment.Stop))
	}
	reader.AdvanceToEOL()
	return node, parser.NoChildren
}

func (p *mathBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	n := node.(*MathBlock)
	if n.closed {
		return parser.Close
	}
	line, segment := reader.PeekLine()
	if m := mathBlockClose.FindSubmatch(bytes.TrimRight(line, " \t\r\n")); m != nil {
		if len(m[1]) > 0 {
			n.Lines().Append(text.NewSegment(segment.Start, segment.Start+len(m[1])))
		}
		n.Label = string(m[2])
		n.closed = true
		reader.AdvanceToEOL()
		return parser.Close
	}
	n.Lines().Append(segment)
	reader.AdvanceToEOL()
	return parser.Continue | parser.NoChildren
}

func (p *mathBlockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (p *mathBlockParser) CanInterruptParagraph() bool {
	return true
}

func (p *mathBlockParser) CanAcceptIndentedLine() bool {
	return false
}
