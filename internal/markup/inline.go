package markup

import (
	"bytes"
	"regexp"
	"strconv"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var (
	rolePattern = regexp.MustCompile("^\\{([A-Za-z][\\w-]*)\\}`([^`]*)`")
	spanPattern = regexp.MustCompile(`^\{(rowspan|colspan)=(\d+)(?:[ \t]+(rowspan|colspan)=(\d+))?\}`)
)

type roleParser struct{}

// NewRoleParser returns an InlineParser for {name}`content` roles and
// {rowspan=N colspan=M} cell markers.
func NewRoleParser() parser.InlineParser {
	return &roleParser{}
}

func (p *roleParser) Trigger() []byte {
	return []byte{'{'}
}

func (p *roleParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if m := rolePattern.FindSubmatch(line); m != nil {
		block.Advance(len(m[0]))
		return &Role{Name: string(m[1]), Content: string(m[2])}
	}
	if m := spanPattern.FindSubmatch(line); m != nil {
		marker := &SpanMarker{Rows: 1, Cols: 1, Raw: string(m[0])}
		for i := 1; i+1 < len(m); i += 2 {
			if m[i] == nil {
				continue
			}
			v, err := strconv.Atoi(string(m[i+1]))
			if err != nil || v < 1 {
				return nil
			}
			if string(m[i]) == "rowspan" {
				marker.Rows = v
			} else {
				marker.Cols = v
			}
		}
		block.Advance(len(m[0]))
		return marker
	}
	return nil
}

type inlineMathParser struct{}

// NewInlineMathParser returns an InlineParser for $x$ and $$x$$ math.
//
// A single-dollar span must not start with a space, must not end with a
// space and must not be followed by a digit, so that prices such as
// "$5 and $6" stay text.
func NewInlineMathParser() parser.InlineParser {
	return &inlineMathParser{}
}

func (p *inlineMathParser) Trigger() []byte {
	return []byte{'$'}
}

func (p *inlineMathParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if bytes.HasPrefix(line, []byte("$$")) {
		end := bytes.Index(line[2:], []byte("$$"))
		if end <= 0 {
			return nil
		}
		block.Advance(end + 4)
		return &InlineMath{Content: string(line[2 : 2+end]), Display: true}
	}
	if len(line) < 3 || line[1] == ' ' || line[1] == '\t' {
		return nil
	}
	for i := 2; i < len(line); i++ {
		switch line[i] {
		case '\n':
			return nil
		case '\\':
			i++
		case '$':
			if line[i-1] == ' ' || line[i-1] == '\t' {
				continue
			}
			if i+1 < len(line) && line[i+1] >= '0' && line[i+1] <= '9' {
				continue
			}
			block.Advance(i + 1)
			return &InlineMath{Content: string(line[1:i])}
		}
	}
	return nil
}
