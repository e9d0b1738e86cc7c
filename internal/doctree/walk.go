package doctree

import "errors"

// ErrSkipChildren may be returned by Visitor.Enter to skip the node's
// children. Exit is still called for the node.
var ErrSkipChildren = errors.New("skip children")

// Visitor receives enter and exit calls during Walk.
type Visitor interface {
	Enter(n *Node) error
	Exit(n *Node) error
}

// Walk traverses the tree depth-first: Enter before the children, Exit after.
// Any error other than ErrSkipChildren aborts the walk and is returned.
func Walk(n *Node, v Visitor) error {
	err := v.Enter(n)
	switch {
	case errors.Is(err, ErrSkipChildren):
	case err != nil:
		return err
	default:
		for _, child := range n.Children {
			if err := Walk(child, v); err != nil {
				return err
			}
		}
	}
	return v.Exit(n)
}

// Inspect calls fn for every node in pre-order. Returning false from fn skips
// the node's children.
func Inspect(n *Node, fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		Inspect(child, fn)
	}
}

// Find returns every node of the given kind, in document order.
func Find(n *Node, kind Kind) []*Node {
	var out []*Node
	Inspect(n, func(m *Node) bool {
		if m.Kind == kind {
			out = append(out, m)
		}
		return true
	})
	return out
}

// Rewrite replaces children bottom-up. fn receives each child and returns the
// nodes that take its place (nil removes it, a single element keeps or swaps
// it, several elements splice them in).
func Rewrite(n *Node, fn func(*Node) []*Node) {
	if len(n.Children) == 0 {
		return
	}
	out := make([]*Node, 0, len(n.Children))
	for _, child := range n.Children {
		Rewrite(child, fn)
		out = append(out, fn(child)...)
	}
	n.Children = out
}
