package builder

import (
	"github.com/alnah/go-clatex/internal/doctree"
)

// resolveReferences replaces every pending_xref under n. docname is the
// document that contains n.
func (a *assembly) resolveReferences(n *doctree.Node, docname string) {
	if len(n.Children) == 0 {
		return
	}
	out := make([]*doctree.Node, 0, len(n.Children))
	for _, child := range n.Children {
		switch child.Kind {
		case doctree.KindPendingXRef:
			out = append(out, a.resolve(child, docname)...)
			continue
		case doctree.KindDocument, doctree.KindStartOfFile:
			a.resolveReferences(child, child.Str(doctree.AttrDocName))
		default:
			a.resolveReferences(child, docname)
		}
		out = append(out, child)
	}
	n.Children = out
}

// resolve turns one pending reference into a link when its destination is
// part of the assembled set, and into emphasized text otherwise.
func (a *assembly) resolve(x *doctree.Node, docname string) []*doctree.Node {
	p := a.project
	reftype, target := x.Str(doctree.AttrRefType), x.Str(doctree.AttrRefTarget)

	var dest Label
	var found bool
	switch reftype {
	case "doc":
		name := relativeDoc(docname, target)
		if _, ok := p.docs[name]; ok {
			dest, found = Label{DocName: name, Title: p.DocTitle(name)}, true
		}
	default:
		dest, found = p.labels[target]
	}
	if !found {
		p.logger.Warn("undefined reference", "doc", docname, "type", reftype, "target", target)
		return []*doctree.Node{emphasis(linkText(x, "", target))}
	}
	x.Set(doctree.AttrRefDocName, dest.DocName).Set(doctree.AttrRefSectName, dest.Title)

	if a.docnames[dest.DocName] {
		uri := "%" + dest.DocName
		if dest.ID != "" {
			uri += "#" + dest.ID
		}
		ref := doctree.New(doctree.KindReference).Set(doctree.AttrRefURI, uri)
		if len(x.Children) > 0 {
			return []*doctree.Node{ref.Append(x.Children...)}
		}
		return []*doctree.Node{ref.Append(doctree.NewText(linkText(x, dest.Title, target)))}
	}
	return a.outside(x, target)
}

// outside renders a reference to a document that is not part of the
// output: the section name, then " (in <target title>)" when a target
// contains the document.
func (a *assembly) outside(x *doctree.Node, target string) []*doctree.Node {
	sectname := x.Str(doctree.AttrRefSectName)
	if sectname == "" {
		sectname = linkText(x, "", target)
	}
	out := []*doctree.Node{emphasis(sectname)}
	if title, ok := a.project.containingTitle(x.Str(doctree.AttrRefDocName)); ok {
		out = append(out,
			doctree.NewText(" (in "),
			emphasis(title),
			doctree.NewText(")"),
		)
	}
	return out
}

// linkText picks the explicit title of a reference, then fallback, then
// the raw target.
func linkText(x *doctree.Node, fallback, target string) string {
	if text := x.PlainText(); text != "" {
		return text
	}
	if fallback != "" {
		return fallback
	}
	return target
}

func emphasis(s string) *doctree.Node {
	return doctree.New(doctree.KindEmphasis, doctree.NewText(s))
}
