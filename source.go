package clatex

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Source provides the Markdown documents of a project by docname: a
// slash-separated path without extension, such as "chapters/intro".
// ReadDoc may be called from several goroutines.
type Source interface {
	Docnames() ([]string, error)
	ReadDoc(docname string) ([]byte, error)
}

// MapSource is an in-memory Source keyed by docname.
type MapSource map[string]string

// Docnames returns the sorted keys.
func (m MapSource) Docnames() ([]string, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ReadDoc returns the content of a document.
func (m MapSource) ReadDoc(docname string) ([]byte, error) {
	content, ok := m[docname]
	if !ok {
		return nil, fmt.Errorf("%w: %s", fs.ErrNotExist, docname)
	}
	return []byte(content), nil
}

// SourceExt is the extension of Markdown sources.
const SourceExt = ".md"

// DirSource reads the .md files under a directory. Directories whose name
// starts with "_" or "." (build output, templates, VCS data) are skipped.
type DirSource struct {
	root string
}

// NewDirSource creates a DirSource rooted at dir.
func NewDirSource(dir string) (*DirSource, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceRead, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceRead, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrSourceRead, abs)
	}
	return &DirSource{root: abs}, nil
}

// Root returns the absolute source directory.
func (d *DirSource) Root() string {
	return d.root
}

// Docnames lists the documents under the root, sorted.
func (d *DirSource) Docnames() ([]string, error) {
	var names []string
	err := filepath.WalkDir(d.root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if p != d.root && strings.ContainsAny(entry.Name()[:1], "_.") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(p) != SourceExt {
			return nil
		}
		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		names = append(names, strings.TrimSuffix(filepath.ToSlash(rel), SourceExt))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// ReadDoc reads root/docname.md. Docnames escaping the root are rejected.
func (d *DirSource) ReadDoc(docname string) ([]byte, error) {
	clean := path.Clean("/" + docname)[1:]
	if clean != docname || clean == "" {
		return nil, fmt.Errorf("%w: invalid docname %q", fs.ErrInvalid, docname)
	}
	data, err := os.ReadFile(filepath.Join(d.root, filepath.FromSlash(docname)+SourceExt)) // #nosec G304 -- docname is cleaned above
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", fs.ErrNotExist, docname)
	}
	return data, err
}
