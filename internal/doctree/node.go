// Package doctree defines the document tree handed to the renderers.
//
// A tree is built by the Markdown front end (internal/markup), reshaped by the
// assembler (internal/builder) and finally walked by a translator
// (internal/render). Nodes carry a closed Kind tag, ordered children and a
// small attribute map.
package doctree

import "fmt"

// Kind identifies the type of a node.
type Kind uint8

// Node kinds. The set is closed: renderers dispatch on these values.
const (
	KindDocument Kind = iota
	KindSection
	KindTitle
	KindParagraph
	KindText
	KindEmphasis
	KindStrong
	KindLiteral
	KindLiteralBlock
	KindStrikethrough
	KindLineBreak
	KindBulletList
	KindEnumeratedList
	KindListItem
	KindBlockQuote
	KindTransition
	KindReference
	KindPendingXRef
	KindTarget
	KindImage
	KindFootnote
	KindFootnoteReference
	KindTable
	KindRow
	KindEntry
	KindMath
	KindDisplayMath
	KindEqRef
	KindIfHTML
	KindIfLaTeX
	KindRaw
	KindToctree
	KindStartOfFile
	KindEnvironment
	KindAlign
	KindTextColor
	KindEndPar

	kindCount
)

var kindNames = [kindCount]string{
	KindDocument:          "document",
	KindSection:           "section",
	KindTitle:             "title",
	KindParagraph:         "paragraph",
	KindText:              "text",
	KindEmphasis:          "emphasis",
	KindStrong:            "strong",
	KindLiteral:           "literal",
	KindLiteralBlock:      "literal_block",
	KindStrikethrough:     "strikethrough",
	KindLineBreak:         "line_break",
	KindBulletList:        "bullet_list",
	KindEnumeratedList:    "enumerated_list",
	KindListItem:          "list_item",
	KindBlockQuote:        "block_quote",
	KindTransition:        "transition",
	KindReference:         "reference",
	KindPendingXRef:       "pending_xref",
	KindTarget:            "target",
	KindImage:             "image",
	KindFootnote:          "footnote",
	KindFootnoteReference: "footnote_reference",
	KindTable:             "table",
	KindRow:               "row",
	KindEntry:             "entry",
	KindMath:              "math",
	KindDisplayMath:       "displaymath",
	KindEqRef:             "eqref",
	KindIfHTML:            "ifhtml",
	KindIfLaTeX:           "iflatex",
	KindRaw:               "raw",
	KindToctree:           "toctree",
	KindStartOfFile:       "start_of_file",
	KindEnvironment:       "environment",
	KindAlign:             "align",
	KindTextColor:         "textcolor",
	KindEndPar:            "endpar",
}

// String returns the node kind name.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Kinds returns every defined kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// Attribute names shared by the front end, the assembler and the renderers.
const (
	AttrDocName     = "docname"
	AttrEnvName     = "envname"
	AttrTitle       = "title"
	AttrLaTeXTitle  = "latex_title"
	AttrHTMLTitle   = "html_title"
	AttrLabel       = "label"
	AttrAlignType   = "align_type"
	AttrColorSpec   = "color_spec"
	AttrRefURI      = "refuri"
	AttrRefID       = "refid"
	AttrRefType     = "reftype"
	AttrRefTarget   = "reftarget"
	AttrRefDocName  = "refdocname"
	AttrRefSectName = "refsectname"
	AttrLanguage    = "language"
	AttrMoreRows    = "morerows"
	AttrMoreCols    = "morecols"
	AttrHeader      = "header"
	AttrNoWrap      = "nowrap"
	AttrNumber      = "number"
	AttrFormat      = "format"
	AttrEntries     = "entries"
	AttrURI         = "uri"
	AttrAlt         = "alt"
	AttrStart       = "start"
	AttrColumns     = "columns"
)

// Node is one element of a document tree.
//
// Text holds the literal payload of leaf kinds (text, literal blocks, math,
// raw). IDs and Classes behave as ordered sets.
type Node struct {
	Kind     Kind
	Children []*Node
	Attrs    map[string]any
	Text     string
	IDs      []string
	Classes  []string
}

// New creates a node of the given kind with the given children.
func New(kind Kind, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children}
}

// NewText creates a text leaf.
func NewText(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

// Append adds children to n and returns n.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Set stores an attribute and returns n.
func (n *Node) Set(key string, value any) *Node {
	if n.Attrs == nil {
		n.Attrs = make(map[string]any)
	}
	n.Attrs[key] = value
	return n
}

// Has reports whether the attribute is present.
func (n *Node) Has(key string) bool {
	_, ok := n.Attrs[key]
	return ok
}

// Str returns a string attribute, or "" if absent or not a string.
func (n *Node) Str(key string) string {
	s, _ := n.Attrs[key].(string)
	return s
}

// Int returns an integer attribute, or 0 if absent or not an int.
func (n *Node) Int(key string) int {
	i, _ := n.Attrs[key].(int)
	return i
}

// Bool returns a boolean attribute, or false if absent or not a bool.
func (n *Node) Bool(key string) bool {
	b, _ := n.Attrs[key].(bool)
	return b
}

// Strings returns a string slice attribute.
func (n *Node) Strings(key string) []string {
	s, _ := n.Attrs[key].([]string)
	return s
}

// HasClass reports whether the class is present.
func (n *Node) HasClass(class string) bool {
	for _, c := range n.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass adds a class unless it is already present.
func (n *Node) AddClass(class string) {
	if !n.HasClass(class) {
		n.Classes = append(n.Classes, class)
	}
}

// AddID adds an identifier unless it is already present.
func (n *Node) AddID(id string) {
	for _, existing := range n.IDs {
		if existing == id {
			return
		}
	}
	n.IDs = append(n.IDs, id)
}

// PlainText concatenates the text of all descendant leaves.
func (n *Node) PlainText() string {
	var out []byte
	var collect func(*Node)
	collect = func(m *Node) {
		switch m.Kind {
		case KindText, KindLiteralBlock, KindMath, KindDisplayMath:
			out = append(out, m.Text...)
		}
		for _, c := range m.Children {
			collect(c)
		}
	}
	collect(n)
	return string(out)
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Kind: n.Kind,
		Text: n.Text,
	}
	if n.Attrs != nil {
		c.Attrs = make(map[string]any, len(n.Attrs))
		for k, v := range n.Attrs {
			if s, ok := v.([]string); ok {
				v = append([]string(nil), s...)
			}
			c.Attrs[k] = v
		}
	}
	c.IDs = append([]string(nil), n.IDs...)
	c.Classes = append([]string(nil), n.Classes...)
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}
