package builder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-clatex/internal/doctree"
	"github.com/alnah/go-clatex/internal/markup"
)

// Source provides the Markdown documents of a project by docname. A docname
// is a slash-separated path without extension, such as "chapters/intro".
// ReadDoc may be called from several goroutines.
type Source interface {
	Docnames() ([]string, error)
	ReadDoc(docname string) ([]byte, error)
}

// Label is the destination of a cross-reference label.
type Label struct {
	DocName string
	Title   string
	ID      string
}

// Target describes one output document.
type Target struct {
	DocName     string
	Title       string
	Author      string
	DocClass    string
	ToctreeOnly bool
}

// subdirTitle maps a document directory to the title of the target built
// from it.
type subdirTitle struct {
	subdir string
	title  string
}

// Project is the set of parsed documents and their labels.
type Project struct {
	docs      map[string]*doctree.Node
	labels    map[string]Label
	docTitles map[string]string
	titles    []subdirTitle
	logger    *slog.Logger
}

// NewProject creates an empty project. A nil logger discards messages.
func NewProject(logger *slog.Logger) *Project {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Project{
		docs:      make(map[string]*doctree.Node),
		labels:    make(map[string]Label),
		docTitles: make(map[string]string),
		logger:    logger,
	}
}

// Load parses every document of src and adds it to the project. Documents
// are parsed concurrently and indexed in name order, so that the first
// occurrence of a label is the same from run to run.
func (p *Project) Load(ctx context.Context, parser *markup.Parser, src Source) error {
	names, err := src.Docnames()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceRead, err)
	}
	if len(names) == 0 {
		return ErrNoDocuments
	}
	sort.Strings(names)

	trees := make([]*doctree.Node, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range names {
		g.Go(func() error {
			data, err := src.ReadDoc(name)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrSourceRead, name, err)
			}
			tree, err := parser.Parse(gctx, name, data)
			if err != nil {
				return err
			}
			trees[i] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, name := range names {
		p.Add(name, trees[i])
	}
	return nil
}

// Add registers a parsed document and indexes its labels. The first
// occurrence of a label wins.
func (p *Project) Add(docname string, tree *doctree.Node) {
	p.docs[docname] = tree
	p.logger.Debug("document added", "doc", docname)

	doctree.Inspect(tree, func(n *doctree.Node) bool {
		switch n.Kind {
		case doctree.KindSection:
			title := sectionTitle(n)
			if _, ok := p.docTitles[docname]; !ok {
				p.docTitles[docname] = title
			}
			for _, id := range n.IDs {
				p.addLabel(id, Label{DocName: docname, Title: title, ID: id})
			}
		case doctree.KindTarget:
			for _, id := range n.IDs {
				p.addLabel(id, Label{DocName: docname, ID: id})
			}
		case doctree.KindEnvironment:
			if label := n.Str(doctree.AttrLabel); label != "" {
				p.addLabel(label, Label{DocName: docname, Title: n.Str(doctree.AttrTitle), ID: label})
			}
		}
		return true
	})
}

func (p *Project) addLabel(name string, l Label) {
	if prev, ok := p.labels[name]; ok {
		if prev != l {
			p.logger.Debug("duplicate label", "label", name, "doc", l.DocName, "first", prev.DocName)
		}
		return
	}
	p.labels[name] = l
}

// Doc returns a parsed document.
func (p *Project) Doc(docname string) (*doctree.Node, bool) {
	tree, ok := p.docs[docname]
	return tree, ok
}

// Docnames returns the sorted names of all documents.
func (p *Project) Docnames() []string {
	names := make([]string, 0, len(p.docs))
	for name := range p.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Label looks up a cross-reference label.
func (p *Project) Label(name string) (Label, bool) {
	l, ok := p.labels[name]
	return l, ok
}

// DocTitle returns the title of the first section of a document.
func (p *Project) DocTitle(docname string) string {
	return p.docTitles[docname]
}

// SetTargets records the output targets, whose titles name the documents
// in unresolvable references. Targets naming unknown documents are
// reported and left out of the returned list.
func (p *Project) SetTargets(targets []Target) []Target {
	p.titles = p.titles[:0]
	valid := make([]Target, 0, len(targets))
	for _, t := range targets {
		if _, ok := p.docs[t.DocName]; !ok {
			p.logger.Warn("target references unknown document", "doc", t.DocName)
			continue
		}
		valid = append(valid, t)
		subdir := t.DocName
		if strings.HasSuffix(subdir, "/index") {
			subdir = strings.TrimSuffix(subdir, "index")
		}
		p.titles = append(p.titles, subdirTitle{subdir: subdir, title: t.Title})
	}
	return valid
}

// containingTitle returns the title of the first target whose directory
// prefixes docname.
func (p *Project) containingTitle(docname string) (string, bool) {
	for _, st := range p.titles {
		if strings.HasPrefix(docname, st.subdir) {
			return st.title, true
		}
	}
	return "", false
}

func sectionTitle(section *doctree.Node) string {
	for _, child := range section.Children {
		if child.Kind == doctree.KindTitle {
			return child.PlainText()
		}
	}
	return ""
}

// relativeDoc resolves a docname written in document from. A leading slash
// makes it absolute.
func relativeDoc(from, name string) string {
	if strings.HasPrefix(name, "/") {
		return strings.TrimPrefix(path.Clean(name), "/")
	}
	return path.Join(path.Dir(from), name)
}
