package builder

import (
	"github.com/alnah/go-clatex/internal/doctree"
)

// FilterConditionals removes the ifhtml and iflatex blocks that do not
// match format. Matching blocks are kept; the renderers output their
// content unchanged.
func FilterConditionals(tree *doctree.Node, format string) {
	doctree.Rewrite(tree, func(n *doctree.Node) []*doctree.Node {
		switch {
		case n.Kind == doctree.KindIfHTML && format != "html":
			return nil
		case n.Kind == doctree.KindIfLaTeX && format != "latex":
			return nil
		}
		return []*doctree.Node{n}
	})
}

// NumberEquations numbers the labelled display math of a tree in document
// order, starting at 1, and copies the numbers to the eqrefs of the same
// document. It returns the number of labelled equations.
func NumberEquations(tree *doctree.Node) int {
	type key struct{ doc, label string }
	numbers := make(map[key]int)
	next := 0

	var number func(n *doctree.Node, doc string)
	number = func(n *doctree.Node, doc string) {
		if n.Kind == doctree.KindDocument || n.Kind == doctree.KindStartOfFile {
			doc = n.Str(doctree.AttrDocName)
		}
		if n.Kind == doctree.KindDisplayMath {
			if label := n.Str(doctree.AttrLabel); label != "" {
				next++
				n.Set(doctree.AttrNumber, next)
				numbers[key{doc, label}] = next
			}
		}
		for _, c := range n.Children {
			number(c, doc)
		}
	}
	number(tree, "")

	var link func(n *doctree.Node, doc string)
	link = func(n *doctree.Node, doc string) {
		if n.Kind == doctree.KindDocument || n.Kind == doctree.KindStartOfFile {
			doc = n.Str(doctree.AttrDocName)
		}
		if n.Kind == doctree.KindEqRef {
			if num, ok := numbers[key{doc, n.Str(doctree.AttrRefTarget)}]; ok {
				n.Set(doctree.AttrNumber, num)
			}
		}
		for _, c := range n.Children {
			link(c, doc)
		}
	}
	link(tree, "")
	return next
}
