package render

import (
	"errors"
	"fmt"

	"github.com/alnah/go-clatex/internal/doctree"
)

// Sentinel errors for render failures.
var (
	ErrUnknownNode       = errors.New("no handler for node kind")
	ErrUnbalancedContext = errors.New("unbalanced render context")
	ErrTemplateRender    = errors.New("template rendering failed")
	ErrUnknownFootnote   = errors.New("footnote reference without footnote")
	ErrInvalidFormat     = errors.New("invalid output format")
)

// Hook handles one side (enter or exit) of a node visit. An enter hook may
// return doctree.ErrSkipChildren.
type Hook func(c *Context, n *doctree.Node) error

// HandlerPair holds the enter and exit hooks of a node kind. Nil hooks are
// no-ops.
type HandlerPair struct {
	Enter Hook
	Exit  Hook
}

// HandlerTable maps node kinds to their hooks.
type HandlerTable map[doctree.Kind]HandlerPair

// Override returns a new table holding base's entries replaced by those of
// over. Neither input is modified.
func Override(base, over HandlerTable) HandlerTable {
	out := make(HandlerTable, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

// emit returns a hook that writes a fixed fragment.
func emit(s string) Hook {
	return func(c *Context, _ *doctree.Node) error {
		c.Emit(s)
		return nil
	}
}

// wrap returns a pair writing open on enter and close on exit.
func wrap(open, close string) HandlerPair {
	return HandlerPair{Enter: emit(open), Exit: emit(close)}
}

// closePair is the exit hook of constructs whose closer was pushed on enter.
func closePair(c *Context, _ *doctree.Node) error {
	c.Emit(c.PopCloser())
	return nil
}

// noop is a pass-through pair.
var noop = HandlerPair{}

// skip is a pair that suppresses the node and its children.
var skip = HandlerPair{Enter: func(*Context, *doctree.Node) error { return doctree.ErrSkipChildren }}

// translator adapts a HandlerTable to doctree.Visitor.
type translator struct {
	handlers HandlerTable
	ctx      *Context
}

// Enter dispatches to the enter hook of the node kind.
func (t *translator) Enter(n *doctree.Node) error {
	pair, ok := t.handlers[n.Kind]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, n.Kind)
	}
	t.ctx.parents = append(t.ctx.parents, n)
	if pair.Enter == nil {
		return nil
	}
	return pair.Enter(t.ctx, n)
}

// Exit dispatches to the exit hook of the node kind.
func (t *translator) Exit(n *doctree.Node) error {
	defer func() {
		t.ctx.parents = t.ctx.parents[:len(t.ctx.parents)-1]
	}()
	pair := t.handlers[n.Kind]
	if pair.Exit == nil {
		return nil
	}
	return pair.Exit(t.ctx, n)
}
