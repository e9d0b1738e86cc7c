package pdf

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// resolveImages makes relative image sources absolute file:// URLs under
// baseDir. The printed document lives in a temporary directory, so paths
// written relative to the Markdown sources would not load otherwise.
// Sources that are URLs, anchors, absolute paths or that leave baseDir are
// kept as written.
func resolveImages(htmlContent, baseDir string) (string, error) {
	if baseDir == "" || !strings.Contains(htmlContent, "<img") {
		return htmlContent, nil
	}
	absDir, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}

	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}
	walkImages(doc, absDir)

	var buf strings.Builder
	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func walkImages(n *html.Node, dir string) {
	if n.Type == html.ElementNode && n.Data == "img" {
		for i, attr := range n.Attr {
			if attr.Key != "src" || !isRelativeSource(attr.Val) {
				continue
			}
			abs := filepath.Join(dir, filepath.FromSlash(attr.Val))
			if !isUnder(abs, dir) {
				continue
			}
			n.Attr[i].Val = (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkImages(c, dir)
	}
}

// isRelativeSource reports whether src is a path relative to the document.
func isRelativeSource(src string) bool {
	if src == "" || strings.HasPrefix(src, "#") || strings.HasPrefix(src, "//") || filepath.IsAbs(src) {
		return false
	}
	if u, err := url.Parse(src); err != nil || u.Scheme != "" {
		return false
	}
	return true
}

// isUnder reports whether path is dir or inside it.
func isUnder(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
