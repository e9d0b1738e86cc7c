package render

import (
	"github.com/alnah/go-clatex/internal/doctree"
)

// htmlAppendixMarker separates the appendices in an HTML body.
const htmlAppendixMarker = "\n<hr class=\"appendix\" />\n"

// htmlHandlers is the HTML counterpart of latexHandlers.
func htmlHandlers() HandlerTable {
	return Override(htmlBaseHandlers(), HandlerTable{
		doctree.KindDocument:    {Enter: htmlEnterDocumentRoot, Exit: htmlExitDocument},
		doctree.KindTransition:  {Enter: enterTransition},
		doctree.KindIfHTML:      noop,
		doctree.KindIfLaTeX:     noop,
		doctree.KindEnvironment: {Enter: htmlEnterEnvironment, Exit: emit("</div>\n</div>\n")},
		doctree.KindAlign:       {Enter: htmlEnterAlign, Exit: emit("</div>\n")},
		doctree.KindTextColor:   {Enter: htmlEnterTextColor, Exit: emit("</font>")},
		doctree.KindEndPar:      {Enter: emit("\n<br>\n")},
	})
}

// htmlEnterDocumentRoot opens a document root with the same begin and
// appendix sequence as the LaTeX writer.
func htmlEnterDocumentRoot(c *Context, n *doctree.Node) error {
	if err := advancePhase(c, htmlAppendixMarker); err != nil {
		return err
	}
	return htmlEnterDocument(c, n)
}
