package render

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"golang.org/x/net/html"

	"github.com/alnah/go-clatex/internal/doctree"
)

func htmlTestBindings() Bindings {
	b := DefaultHTMLBindings()
	b.Header = "<!DOCTYPE html>\n<html>\n<head>\n<title>{{.Title | html}}</title>\n"
	b.BeginDocument = "</head>\n<body>\n"
	b.Footer = "</body>\n</html>\n"
	return b
}

func renderHTML(t *testing.T, tree *doctree.Node, opts ...Option) string {
	t.Helper()
	out, err := NewHTMLWriter(htmlTestBindings(), opts...).Render(tree)
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	return out
}

var voidElements = map[string]bool{
	"br": true, "hr": true, "img": true, "meta": true, "link": true, "input": true,
}

// checkWellFormed verifies that every non-void start tag is closed in order.
func checkWellFormed(doc string) error {
	z := html.NewTokenizer(strings.NewReader(doc))
	var open []string
	for {
		switch z.Next() {
		case html.ErrorToken:
			if !errors.Is(z.Err(), io.EOF) {
				return z.Err()
			}
			if len(open) > 0 {
				return fmt.Errorf("unclosed elements: %v", open)
			}
			return nil
		case html.StartTagToken:
			name, _ := z.TagName()
			if !voidElements[string(name)] {
				open = append(open, string(name))
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if len(open) == 0 || open[len(open)-1] != string(name) {
				return fmt.Errorf("unexpected </%s>, open: %v", name, open)
			}
			open = open[:len(open)-1]
		}
	}
}

// ---------------------------------------------------------------------------
// TestHTML_CustomNodes - HTML rendering of the custom node kinds
// ---------------------------------------------------------------------------

func TestHTML_CustomNodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		node *doctree.Node
		want []string
	}{
		{
			name: "environment with title",
			node: doctree.NewEnvironment("theorem", "Pythagoras", para("x")),
			want: []string{
				`<div class="environment theorem">`,
				`<div class="environment_title theorem_title">Theorem: Pythagoras</div>`,
				`<div class="environment_body theorem_body">`,
			},
		},
		{
			name: "html title is used verbatim",
			node: doctree.NewEnvironment("theorem", "plain", para("x")).Set(doctree.AttrHTMLTitle, "<i>fancy</i>"),
			want: []string{`Theorem: <i>fancy</i></div>`},
		},
		{
			name: "generic title is escaped",
			node: doctree.NewEnvironment("note", "a < b", para("x")),
			want: []string{`Note: a &lt; b</div>`},
		},
		{
			name: "environment label becomes id",
			node: doctree.NewEnvironment("lemma", "", para("x")).Set(doctree.AttrLabel, "lem"),
			want: []string{`<div class="environment lemma" id="index:lem">`},
		},
		{
			name: "align wraps and tags children",
			node: doctree.NewAlign("right", para("r")),
			want: []string{`<div class="align fresh-right">`, `<p class="fresh-right">r</p>`},
		},
		{
			name: "textcolor keeps the hash",
			node: doctree.New(doctree.KindParagraph, doctree.NewTextColor("#FF0000", doctree.NewText("this text is red"))),
			want: []string{`<font color="#FF0000">this text is red</font>`},
		},
		{
			name: "endpar",
			node: doctree.NewEndPar(),
			want: []string{"\n<br>\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := renderHTML(t, document("index", tt.node))
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q\n%s", want, out)
				}
			}
			if err := checkWellFormed(out); err != nil {
				t.Errorf("malformed HTML: %v\n%s", err, out)
			}
		})
	}
}

// TestHTML_ConcurrentRenders shares one Writer across goroutines; run with
// -race to check that renders keep no shared state.
func TestHTML_ConcurrentRenders(t *testing.T) {
	t.Parallel()

	w := NewHTMLWriter(htmlTestBindings())
	want := renderHTML(t, document("index",
		doctree.NewEnvironment("theorem of pythagoras", "P", para("x")),
		doctree.NewEnvironment("lemma", "", para("y")),
	))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				tree := document("index",
					doctree.NewEnvironment("theorem of pythagoras", "P", para("x")),
					doctree.NewEnvironment("lemma", "", para("y")),
				)
				out, err := w.Render(tree)
				if err != nil {
					errs <- err
					return
				}
				if out != want {
					errs <- fmt.Errorf("concurrent render differs:\n%s", out)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	if !strings.Contains(want, "Theorem Of Pythagoras: P") {
		t.Errorf("environment title not title-cased:\n%s", want)
	}
}

func TestHTML_DocumentRoots(t *testing.T) {
	t.Parallel()

	out := renderHTML(t, document("main", para("body"),
		document("app-a", para("a")),
		document("app-b", para("b")),
	))
	if got := strings.Count(out, "<body>"); got != 1 {
		t.Errorf("<body> count = %d, want 1", got)
	}
	if got := strings.Count(out, `class="appendix"`); got != 1 {
		t.Errorf("appendix marker count = %d, want 1", got)
	}
	if err := checkWellFormed(out); err != nil {
		t.Errorf("malformed HTML: %v\n%s", err, out)
	}
}

func TestHTML_SectionsAndTitles(t *testing.T) {
	t.Parallel()

	inner := doctree.New(doctree.KindSection, doctree.New(doctree.KindTitle, doctree.NewText("Inner")))
	inner.AddID("inner")
	tree := document("index",
		doctree.New(doctree.KindSection,
			doctree.New(doctree.KindTitle, doctree.NewText("Top & more")),
			inner,
		),
	)

	out := renderHTML(t, tree)
	for _, want := range []string{
		"<h1>Top &amp; more</h1>",
		`<div class="section" id="index:inner">`,
		"<h2>Inner</h2>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestHTML_Table(t *testing.T) {
	t.Parallel()

	table := doctree.New(doctree.KindTable,
		doctree.New(doctree.KindRow, entry("h1"), entry("h2")).Set(doctree.AttrHeader, true),
		doctree.New(doctree.KindRow, entry("tall").Set(doctree.AttrMoreRows, 1), entry("x")),
		doctree.New(doctree.KindRow, entry("y")),
		doctree.New(doctree.KindRow, entry("wide").Set(doctree.AttrMoreCols, 1)),
	)

	out := renderHTML(t, document("index", table))
	for _, want := range []string{
		"<tr><th>h1</th><th>h2</th></tr>",
		`<td rowspan="2">tall</td>`,
		`<td colspan="2">wide</td>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if err := checkWellFormed(out); err != nil {
		t.Errorf("malformed HTML: %v", err)
	}
}

func TestHTML_Footnotes(t *testing.T) {
	t.Parallel()

	note := doctree.New(doctree.KindFootnote, para("the note")).Set(doctree.AttrLabel, "1")
	note.AddID("fn1")
	tree := document("index",
		doctree.New(doctree.KindParagraph,
			doctree.NewText("text"),
			doctree.New(doctree.KindFootnoteReference).Set(doctree.AttrRefID, "fn1"),
		),
		note,
	)

	out := renderHTML(t, tree)
	for _, want := range []string{
		`<a class="footnote-reference" href="#index:fn-fn1">[1]</a>`,
		`<div class="footnote" id="index:fn-fn1"><span class="label">[1]</span>`,
		"<p>the note</p>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if err := checkWellFormed(out); err != nil {
		t.Errorf("malformed HTML: %v", err)
	}
}

func TestHTML_MathNumbering(t *testing.T) {
	t.Parallel()

	eq := doctree.New(doctree.KindDisplayMath).Set(doctree.AttrLabel, "energy").Set(doctree.AttrNumber, 3)
	eq.Text = "E = mc^2"
	ref := doctree.New(doctree.KindEqRef).Set(doctree.AttrRefTarget, "energy")
	inline := doctree.New(doctree.KindMath)
	inline.Text = "a<b"

	out := renderHTML(t, document("index", doctree.New(doctree.KindParagraph, ref, inline), eq))
	for _, want := range []string{
		`<a class="reference internal" href="#equation-index-energy">(3)</a>`,
		`<div class="math" id="equation-index-energy">`,
		`<span class="eqno">(3)</span>`,
		`\[E = mc^2\]`,
		`<span class="math">\(a&lt;b\)</span>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestHTML_Envelope(t *testing.T) {
	t.Parallel()

	b := htmlTestBindings()
	b.Title = "A & B"
	b.Highlighter = true
	out, err := NewHTMLWriter(b, WithHighlighter(stubHighlighter{})).Render(document("index", para("x")))
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	for _, want := range []string{
		"<title>A &amp; B</title>",
		"<style>\n%STYLES\n</style>\n</head>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if err := checkWellFormed(out); err != nil {
		t.Errorf("malformed HTML: %v", err)
	}
}

func TestNewWriter(t *testing.T) {
	t.Parallel()

	for _, f := range []Format{FormatLaTeX, FormatHTML} {
		w, err := NewWriter(f, Bindings{})
		if err != nil {
			t.Fatalf("NewWriter(%q) unexpected error: %v", f, err)
		}
		if w.Format() != f {
			t.Errorf("Format() = %q, want %q", w.Format(), f)
		}
	}
	if _, err := NewWriter("rtf", Bindings{}); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("NewWriter(rtf) error = %v, want ErrInvalidFormat", err)
	}
}
