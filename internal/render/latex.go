package render

import (
	"github.com/alnah/go-clatex/internal/doctree"
)

// latexAppendixMarker starts the appendices in a LaTeX body.
const latexAppendixMarker = "\n\\appendix\n"

// latexHandlers is the clatex table: the LaTeX base table with the
// document-root sequence, the permissive transition, math delegation,
// conditional pass-through and the custom node kinds.
func latexHandlers() HandlerTable {
	return Override(latexBaseHandlers(), HandlerTable{
		doctree.KindDocument:    {Enter: latexEnterDocumentRoot, Exit: exitDocument},
		doctree.KindTransition:  {Enter: enterTransition},
		doctree.KindMath:        mathHandler,
		doctree.KindDisplayMath: displayMathHandler,
		doctree.KindEqRef:       eqRefHandler,
		doctree.KindIfHTML:      noop,
		doctree.KindIfLaTeX:     noop,
		doctree.KindEnvironment: {Enter: latexEnterEnvironment, Exit: latexExitEnvironment},
		doctree.KindAlign:       {Enter: latexEnterAlign, Exit: latexExitAlign},
		doctree.KindTextColor:   {Enter: latexEnterTextColor, Exit: emit("}")},
		doctree.KindEndPar:      {Enter: emit("\n\n")},
	})
}

// latexEnterDocumentRoot opens a document root. The first root begins the
// document body, the second starts the appendices, later roots add nothing.
func latexEnterDocumentRoot(c *Context, n *doctree.Node) error {
	if err := advancePhase(c, latexAppendixMarker); err != nil {
		return err
	}
	return latexEnterDocument(c, n)
}

// advancePhase emits the begin-of-body template for the first document root
// and the appendix marker for the second.
func advancePhase(c *Context, appendixMarker string) error {
	switch c.Phase {
	case PhaseFirst:
		out, err := c.Bindings.Execute("begin document", c.Bindings.BeginDocument)
		if err != nil {
			return err
		}
		c.Emit(out)
		c.Phase = PhaseMain
	case PhaseMain:
		c.Emit(appendixMarker)
		c.Phase = PhaseAppendix
	}
	return nil
}

// enterTransition renders the transition template. A template failure is
// logged and the fragment omitted; the render goes on.
func enterTransition(c *Context, _ *doctree.Node) error {
	out, err := c.Bindings.Execute("transition", c.Bindings.Transition)
	if err != nil {
		c.Logger.Error("transition omitted", "file", c.CurrentFile(), "error", err)
		return nil
	}
	c.Emit(out)
	return nil
}
