package builder

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alnah/go-clatex/internal/doctree"
)

// PlaceholderTitle heads the section of a toctree-only document.
const PlaceholderTitle = "<Set title in conf.py>"

var explicitEntry = regexp.MustCompile(`^(.+?)\s*<([^<>]+)>$`)

// assembly is the state of one Assemble call.
type assembly struct {
	project  *Project
	docnames map[string]bool
}

// Assemble builds the complete tree of a target: the main document with
// its toctrees inlined, followed by each appendix as a nested document
// root, with cross-references resolved.
func (p *Project) Assemble(t Target, appendices []string) (*doctree.Node, error) {
	main, ok := p.docs[t.DocName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocument, t.DocName)
	}
	a := &assembly{project: p, docnames: map[string]bool{t.DocName: true}}
	for _, name := range appendices {
		if _, ok := p.docs[name]; !ok {
			return nil, fmt.Errorf("%w: appendix %s", ErrUnknownDocument, name)
		}
		a.docnames[name] = true
	}
	p.logger.Info("assembling", "doc", t.DocName, "appendices", len(appendices))

	tree := main.Clone()
	if t.ToctreeOnly {
		tree = toctreeOnly(tree)
	}
	tree.Set(doctree.AttrDocName, t.DocName)
	a.inlineToctrees(tree, t.DocName, []string{t.DocName})

	for _, name := range appendices {
		appendix := p.docs[name].Clone()
		appendix.Set(doctree.AttrDocName, name)
		tree.Append(appendix)
	}

	a.resolveReferences(tree, t.DocName)
	return tree, nil
}

// toctreeOnly moves the toctrees of tree into a fresh document under a
// placeholder section.
func toctreeOnly(tree *doctree.Node) *doctree.Node {
	section := doctree.New(doctree.KindSection,
		doctree.New(doctree.KindTitle, doctree.NewText(PlaceholderTitle)))
	section.Append(doctree.Find(tree, doctree.KindToctree)...)
	return doctree.New(doctree.KindDocument, section)
}

// inlineToctrees replaces every toctree under n by start_of_file nodes
// holding the content of its entries. stack holds the documents being
// inlined, so that a document including itself is skipped.
func (a *assembly) inlineToctrees(n *doctree.Node, docname string, stack []string) {
	doctree.Rewrite(n, func(child *doctree.Node) []*doctree.Node {
		if child.Kind != doctree.KindToctree {
			return []*doctree.Node{child}
		}
		var out []*doctree.Node
		for _, entry := range child.Strings(doctree.AttrEntries) {
			if m := explicitEntry.FindStringSubmatch(entry); m != nil {
				entry = m[2]
			}
			include := relativeDoc(docname, strings.TrimSpace(entry))
			if contains(stack, include) {
				a.project.logger.Warn("circular toctree reference skipped", "doc", docname, "entry", include)
				continue
			}
			doc, ok := a.project.docs[include]
			if !ok {
				a.project.logger.Warn("toctree references unknown document", "doc", docname, "entry", include)
				continue
			}
			a.docnames[include] = true
			file := doctree.New(doctree.KindStartOfFile).Set(doctree.AttrDocName, include)
			file.Children = doc.Clone().Children
			a.inlineToctrees(file, include, append(stack, include))
			out = append(out, file)
		}
		return out
	})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
