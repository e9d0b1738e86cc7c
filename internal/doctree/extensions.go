package doctree

import "strings"

// Alignment kinds produced by ResolveAlignment.
const (
	AlignLeft   = "fresh-left"
	AlignRight  = "fresh-right"
	AlignCenter = "fresh-center"
)

// ResolveAlignment maps an align argument to its alignment kind.
// "left" and "flushleft" map to AlignLeft, "right" and "flushright" to
// AlignRight, anything else to AlignCenter.
func ResolveAlignment(arg string) string {
	switch strings.TrimSpace(arg) {
	case "left", "flushleft":
		return AlignLeft
	case "right", "flushright":
		return AlignRight
	default:
		return AlignCenter
	}
}

// NewEnvironment creates a titled environment node. Empty titles are not set.
func NewEnvironment(envName, title string, children ...*Node) *Node {
	n := New(KindEnvironment, children...).Set(AttrEnvName, envName)
	if title != "" {
		n.Set(AttrTitle, title)
	}
	return n
}

// NewAlign creates an alignment block for the given directive argument and
// tags every immediate child with the alignment class.
func NewAlign(arg string, children ...*Node) *Node {
	alignType := ResolveAlignment(arg)
	n := New(KindAlign, children...).Set(AttrAlignType, alignType)
	n.AddClass(alignType)
	PropagateAlignment(n)
	return n
}

// PropagateAlignment adds the block's alignment class to each immediate
// child. Classes are a set, so repeated calls leave a single entry.
func PropagateAlignment(align *Node) {
	alignType := align.Str(AttrAlignType)
	if alignType == "" {
		return
	}
	for _, child := range align.Children {
		child.AddClass(alignType)
	}
}

// NewTextColor creates a color span.
func NewTextColor(colorSpec string, children ...*Node) *Node {
	return New(KindTextColor, children...).Set(AttrColorSpec, colorSpec)
}

// ParseColorRole splits role text of the form "<#FF0000> some text" into the
// color spec and the trimmed content. The spec ends at the first '>', so a
// spec containing '>' cannot be expressed.
func ParseColorRole(text string) (colorSpec, content string, ok bool) {
	if !strings.HasPrefix(text, "<") {
		return "", "", false
	}
	end := strings.IndexByte(text, '>')
	if end < 0 {
		return "", "", false
	}
	return text[1:end], strings.TrimSpace(text[end+1:]), true
}

// NewEndPar creates a paragraph break marker.
func NewEndPar() *Node {
	return New(KindEndPar)
}
