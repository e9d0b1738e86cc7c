package render

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/alnah/go-clatex/internal/doctree"
)

// testBindings returns LaTeX bindings with short envelope templates.
func testBindings() Bindings {
	b := DefaultLaTeXBindings()
	b.Header = "{{.DocumentClass}}\n"
	b.BeginDocument = "\n\\begin{document}\n{{.BeginDoc}}\n"
	b.Footer = "\n{{.EndDoc}}\n\\end{document}\n"
	return b
}

func document(docname string, children ...*doctree.Node) *doctree.Node {
	n := doctree.New(doctree.KindDocument, children...)
	if docname != "" {
		n.Set(doctree.AttrDocName, docname)
	}
	return n
}

func para(text string) *doctree.Node {
	return doctree.New(doctree.KindParagraph, doctree.NewText(text))
}

func renderLaTeX(t *testing.T, tree *doctree.Node, opts ...Option) string {
	t.Helper()
	out, err := NewLaTeXWriter(testBindings(), opts...).Render(tree)
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	return out
}

// ---------------------------------------------------------------------------
// TestLaTeX_CustomNodes - Environment, align, textcolor and endpar
// ---------------------------------------------------------------------------

func TestLaTeX_CustomNodes(t *testing.T) {
	t.Parallel()

	color := func(raw string) *doctree.Node {
		spec, content, ok := doctree.ParseColorRole(raw)
		if !ok {
			t.Fatalf("ParseColorRole(%q) failed", raw)
		}
		return doctree.NewTextColor(spec, doctree.NewText(content))
	}

	tests := []struct {
		name string
		node *doctree.Node
		want string
	}{
		{
			name: "environment with generic title",
			node: doctree.NewEnvironment("Theorem", "Pythagoras", para("a^2+b^2=c^2")),
			want: "\n\\begin{Theorem}[Pythagoras]\na\\textasciicircum{}2+b\\textasciicircum{}2=c\\textasciicircum{}2\n\\end{Theorem}",
		},
		{
			name: "latex title takes precedence",
			node: doctree.NewEnvironment("Theorem", "Plain", para("x")).Set(doctree.AttrLaTeXTitle, `$\pi$`),
			want: "\n\\begin{Theorem}[$\\pi$]\nx\n\\end{Theorem}",
		},
		{
			name: "untitled environment",
			node: doctree.NewEnvironment("proof", "", para("x")),
			want: "\n\\begin{proof}\nx\n\\end{proof}",
		},
		{
			name: "labelled environment",
			node: doctree.NewEnvironment("lemma", "", para("x")).Set(doctree.AttrLabel, "lem-1"),
			want: "\n\\begin{lemma}\\label{index:lem-1}\nx\n\\end{lemma}",
		},
		{
			name: "align flushleft",
			node: doctree.NewAlign("flushleft", para("left")),
			want: "\n\\begin{fresh-left}\nleft\n\\end{fresh-left}",
		},
		{
			name: "align defaults to center",
			node: doctree.NewAlign("middle", para("c")),
			want: "\n\\begin{fresh-center}\nc\n\\end{fresh-center}",
		},
		{
			name: "textcolor role strips the hash",
			node: color("<#FF0000> this text is red"),
			want: "\n\\textcolor[HTML]{FF0000}{this text is red}",
		},
		{
			name: "endpar",
			node: doctree.NewEndPar(),
			want: "\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := NewLaTeXWriter(testBindings()).Translate(document("index", tt.node))
			if err != nil {
				t.Fatalf("Translate() unexpected error: %v", err)
			}
			body := c.String()
			if !strings.HasSuffix(body, tt.want) {
				t.Errorf("body =\n%q\nwant suffix\n%q", body, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestLaTeX_DocumentRoots - Begin, appendix and later roots
// ---------------------------------------------------------------------------

func TestLaTeX_DocumentRoots(t *testing.T) {
	t.Parallel()

	tree := document("main", para("body"),
		document("app-a", para("first appendix")),
		document("app-b", para("second appendix")),
	)
	out := renderLaTeX(t, tree)

	if got := strings.Count(out, `\begin{document}`); got != 1 {
		t.Errorf("begin-document count = %d, want 1", got)
	}
	if got := strings.Count(out, `\appendix`); got != 1 {
		t.Errorf("appendix count = %d, want 1", got)
	}
	iBegin := strings.Index(out, `\begin{document}`)
	iMain := strings.Index(out, `\label{main:doc}`)
	iAppendix := strings.Index(out, `\appendix`)
	iA := strings.Index(out, `\label{app-a:doc}`)
	iB := strings.Index(out, `\label{app-b:doc}`)
	if !(iBegin < iMain && iMain < iAppendix && iAppendix < iA && iA < iB) {
		t.Errorf("unexpected order begin=%d main=%d appendix=%d a=%d b=%d\n%s",
			iBegin, iMain, iAppendix, iA, iB, out)
	}
}

func TestLaTeX_DocumentWithoutName(t *testing.T) {
	t.Parallel()

	out := renderLaTeX(t, document("", para("x")))
	if strings.Contains(out, `\phantomsection`) {
		t.Errorf("unnamed document should have no hypertarget:\n%s", out)
	}
}

func TestLaTeX_SectionLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		useParts    bool
		useChapters bool
		want        []string
	}{
		{name: "chapters", useChapters: true, want: []string{`\chapter{Top}`, `\section{Inner}`}},
		{name: "parts", useParts: true, want: []string{`\part{Top}`, `\chapter{Inner}`}},
		{name: "sections", want: []string{`\section{Top}`, `\subsection{Inner}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tree := document("index",
				doctree.New(doctree.KindSection,
					doctree.New(doctree.KindTitle, doctree.NewText("Top")),
					doctree.New(doctree.KindSection,
						doctree.New(doctree.KindTitle, doctree.NewText("Inner")),
					),
				),
			)
			b := testBindings()
			b.UseParts, b.UseChapters = tt.useParts, tt.useChapters
			out, err := NewLaTeXWriter(b).Render(tree)
			if err != nil {
				t.Fatalf("Render() unexpected error: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q\n%s", want, out)
				}
			}
		})
	}
}

func TestLaTeX_SectionLabels(t *testing.T) {
	t.Parallel()

	section := doctree.New(doctree.KindSection, doctree.New(doctree.KindTitle, doctree.NewText("Intro")))
	section.AddID("intro")
	target := doctree.New(doctree.KindTarget)
	target.AddID("start")

	out := renderLaTeX(t, document("index", target, section))
	for _, want := range []string{`\label{index:start}`, `\label{index:intro}`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, `\phantomsection\label{index:start}`) {
		t.Error("target before a section should label the section, not anchor in place")
	}
}

// ---------------------------------------------------------------------------
// TestLaTeX_Transition - Template failures are logged, not propagated
// ---------------------------------------------------------------------------

func TestLaTeX_Transition(t *testing.T) {
	t.Parallel()

	t.Run("default rule", func(t *testing.T) {
		t.Parallel()

		out := renderLaTeX(t, document("index", para("a"), doctree.New(doctree.KindTransition), para("b")))
		if !strings.Contains(out, DefaultTransition) {
			t.Errorf("output missing transition\n%s", out)
		}
	})

	t.Run("broken template is omitted", func(t *testing.T) {
		t.Parallel()

		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, nil))
		b := testBindings()
		b.Transition = "{{.NoSuchBinding}}"

		out, err := NewLaTeXWriter(b, WithLogger(logger)).Render(
			document("index", para("a"), doctree.New(doctree.KindTransition), para("b")))
		if err != nil {
			t.Fatalf("Render() unexpected error: %v", err)
		}
		if !strings.Contains(out, "\na\n\nb\n") {
			t.Errorf("paragraphs around the transition should be adjacent:\n%q", out)
		}
		if !strings.Contains(logs.String(), "transition omitted") {
			t.Errorf("expected error log, got %q", logs.String())
		}
	})
}

// ---------------------------------------------------------------------------
// TestLaTeX_Table - Row and column spans
// ---------------------------------------------------------------------------

func entry(text string) *doctree.Node {
	return doctree.New(doctree.KindEntry, doctree.NewText(text))
}

func TestLaTeX_TableRowSpan(t *testing.T) {
	t.Parallel()

	spanning := entry("b").Set(doctree.AttrMoreRows, 1)
	table := doctree.New(doctree.KindTable,
		doctree.New(doctree.KindRow, entry("a1"), spanning, entry("c1")),
		doctree.New(doctree.KindRow, entry("a2"), entry("c2")),
		doctree.New(doctree.KindRow, entry("a3"), entry("b3"), entry("c3")),
	).Set(doctree.AttrColumns, 3)

	var seen *Context
	spy := HandlerTable{
		doctree.KindTable: {
			Enter: latexEnterTable,
			Exit: func(c *Context, n *doctree.Node) error {
				counters := 0
				for _, rows := range c.RememberMultirow {
					counters += rows
				}
				if counters != 0 {
					t.Errorf("remaining span counters = %d at table exit, want 0", counters)
				}
				seen = c
				return latexExitTable(c, n)
			},
		},
	}
	out := renderLaTeX(t, document("index", table), WithHandlers(spy))

	for _, want := range []string{
		`\begin{tabulary}{\linewidth}{|L|L|L|}`,
		`a1 & \multirow{2}{*}{b} & c1 \\`,
		`\cline{1-1}\cline{3-3}`,
		`a2 &  & c2 \\`,
		`a3 & b3 & c3 \\`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if seen == nil || seen.Table != nil {
		t.Error("table state should be cleared on exit")
	}
}

func TestLaTeX_TableRowSpanInShortRow(t *testing.T) {
	t.Parallel()

	table := doctree.New(doctree.KindTable,
		doctree.New(doctree.KindRow, entry("A"), entry("B"), entry("C").Set(doctree.AttrMoreRows, 1)),
		doctree.New(doctree.KindRow, entry("X")),
		doctree.New(doctree.KindRow, entry("P"), entry("Q"), entry("R")),
	).Set(doctree.AttrColumns, 3)

	spy := HandlerTable{
		doctree.KindTable: {
			Enter: latexEnterTable,
			Exit: func(c *Context, n *doctree.Node) error {
				for col, rows := range c.RememberMultirow {
					if rows != 0 {
						t.Errorf("column %d span counter = %d at table exit, want 0", col, rows)
					}
				}
				return latexExitTable(c, n)
			},
		},
	}
	out := renderLaTeX(t, document("index", table), WithHandlers(spy))

	for _, want := range []string{
		`A & B & \multirow{2}{*}{C} \\`,
		"X &  &  \\\\\n\\hline",
		`P & Q & R \\`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, `Q &  & R`) {
		t.Errorf("row after the span was shifted\n%s", out)
	}
}

func TestLaTeX_TableColumnSpanAndPadding(t *testing.T) {
	t.Parallel()

	table := doctree.New(doctree.KindTable,
		doctree.New(doctree.KindRow, entry("wide").Set(doctree.AttrMoreCols, 1), entry("c")).Set(doctree.AttrHeader, true),
		doctree.New(doctree.KindRow, entry("short")),
	).Set(doctree.AttrColumns, 3)

	out := renderLaTeX(t, document("index", table))
	for _, want := range []string{
		`\multicolumn{2}{|l|}{\textbf{wide}} & \textbf{c} \\`,
		`short &  &  \\`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

// ---------------------------------------------------------------------------
// TestLaTeX_Footnotes - Inline rendering from the active collection
// ---------------------------------------------------------------------------

func TestLaTeX_Footnotes(t *testing.T) {
	t.Parallel()

	note := doctree.New(doctree.KindFootnote, doctree.NewText("the note")).Set(doctree.AttrLabel, "1")
	note.AddID("fn1")
	ref := func() *doctree.Node {
		return doctree.New(doctree.KindFootnoteReference, doctree.NewText("1")).Set(doctree.AttrRefID, "fn1")
	}
	tree := document("index",
		doctree.New(doctree.KindParagraph, doctree.NewText("text"), ref(), doctree.NewText(" again"), ref()),
		note,
	)

	out := renderLaTeX(t, tree)
	if !strings.Contains(out, `text\footnote[1]{the note} again\footnotemark[1]`) {
		t.Errorf("unexpected footnote rendering\n%s", out)
	}
	if strings.Count(out, "the note") != 1 {
		t.Error("footnote body should be rendered once")
	}
}

func TestLaTeX_UnknownFootnote(t *testing.T) {
	t.Parallel()

	tree := document("index", doctree.New(doctree.KindFootnoteReference).Set(doctree.AttrRefID, "missing"))
	_, err := NewLaTeXWriter(testBindings()).Render(tree)
	if !errors.Is(err, ErrUnknownFootnote) {
		t.Errorf("error = %v, want ErrUnknownFootnote", err)
	}
}

// ---------------------------------------------------------------------------
// TestLaTeX_Math - Delegation to the math renderer
// ---------------------------------------------------------------------------

func TestLaTeX_Math(t *testing.T) {
	t.Parallel()

	display := func(text, label string) *doctree.Node {
		n := doctree.New(doctree.KindDisplayMath)
		n.Text = text
		if label != "" {
			n.Set(doctree.AttrLabel, label)
		}
		return n
	}
	inline := doctree.New(doctree.KindMath)
	inline.Text = "x^2"

	tests := []struct {
		name string
		node *doctree.Node
		want string
	}{
		{name: "inline", node: inline, want: `\(x^2\)`},
		{name: "unlabelled display", node: display("a=b", ""), want: "\\begin{equation*}\na=b\n\\end{equation*}"},
		{name: "labelled display", node: display("a=b", "eq1"), want: "\\begin{equation}\\label{index-eq1}\na=b\n\\end{equation}"},
		{name: "multi part display", node: display("a=b\n\nc=d", "eq2"), want: `\begin{split}a=b\end{split}\label{index-eq2}\\\begin{split}c=d\end{split}\notag`},
		{name: "nowrap", node: display(`\begin{align}x\end{align}`, "").Set(doctree.AttrNoWrap, true), want: "\n\\begin{align}x\\end{align}\n"},
		{name: "eqref", node: doctree.New(doctree.KindEqRef).Set(doctree.AttrRefTarget, "eq1"), want: `\eqref{index-eq1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := renderLaTeX(t, document("index", tt.node))
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q\n%s", tt.want, out)
			}
		})
	}
}

type fixedMath struct{}

func (fixedMath) Math(*Context, *doctree.Node) (string, error)        { return "M", nil }
func (fixedMath) DisplayMath(*Context, *doctree.Node) (string, error) { return "D", nil }
func (fixedMath) EqRef(*Context, *doctree.Node) (string, error)       { return "E", nil }

func TestLaTeX_CustomMathRenderer(t *testing.T) {
	t.Parallel()

	inline := doctree.New(doctree.KindMath)
	out := renderLaTeX(t, document("index", inline, doctree.New(doctree.KindDisplayMath), doctree.New(doctree.KindEqRef)),
		WithMathRenderer(fixedMath{}))
	if !strings.Contains(out, "MDE") {
		t.Errorf("custom math renderer not used:\n%s", out)
	}
}

// ---------------------------------------------------------------------------
// TestLaTeX_Errors - Propagation of node-level failures
// ---------------------------------------------------------------------------

func TestLaTeX_UnknownNodeKind(t *testing.T) {
	t.Parallel()

	_, err := NewLaTeXWriter(testBindings()).Render(document("index", doctree.New(doctree.Kind(200))))
	if !errors.Is(err, ErrUnknownNode) {
		t.Errorf("error = %v, want ErrUnknownNode", err)
	}
}

func TestLaTeX_BrokenBeginTemplate(t *testing.T) {
	t.Parallel()

	b := testBindings()
	b.BeginDocument = "{{.Nope}}"
	_, err := NewLaTeXWriter(b).Render(document("index"))
	if !errors.Is(err, ErrTemplateRender) {
		t.Errorf("error = %v, want ErrTemplateRender", err)
	}
}

func TestLaTeX_ConditionalsPassThrough(t *testing.T) {
	t.Parallel()

	out := renderLaTeX(t, document("index",
		doctree.New(doctree.KindIfLaTeX, para("for latex")),
		doctree.New(doctree.KindIfHTML, para("for html")),
	))
	if !strings.Contains(out, "for latex") || !strings.Contains(out, "for html") {
		t.Errorf("conditional nodes should render their children:\n%s", out)
	}
}

func TestLaTeX_Escaping(t *testing.T) {
	t.Parallel()

	out := renderLaTeX(t, document("index", para(`50% of $5 & #1_x {y} ~\`)))
	want := `50\% of \$5 \& \#1\_x \{y\} \textasciitilde{}\textbackslash{}`
	if !strings.Contains(out, want) {
		t.Errorf("output missing %q\n%s", want, out)
	}
}

func TestLaTeX_References(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ref  *doctree.Node
		want string
	}{
		{
			name: "internal document section",
			ref:  doctree.New(doctree.KindReference, doctree.NewText("see")).Set(doctree.AttrRefURI, "%guide#setup"),
			want: `\hyperref[guide:setup]{see}`,
		},
		{
			name: "internal document",
			ref:  doctree.New(doctree.KindReference, doctree.NewText("guide")).Set(doctree.AttrRefURI, "%guide"),
			want: `\hyperref[guide:doc]{guide}`,
		},
		{
			name: "external",
			ref:  doctree.New(doctree.KindReference, doctree.NewText("site")).Set(doctree.AttrRefURI, "https://example.com/a%20b#x"),
			want: `\href{https://example.com/a\%20b\#x}{site}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := renderLaTeX(t, document("index", doctree.New(doctree.KindParagraph, tt.ref)))
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q\n%s", tt.want, out)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestEnvelope - Header, stylesheet, body, footer
// ---------------------------------------------------------------------------

type stubHighlighter struct{}

func (stubHighlighter) Stylesheet() (string, error) { return "%STYLES\n", nil }
func (stubHighlighter) Highlight(code, lang string) (string, error) {
	return "HL[" + lang + "]" + code, nil
}

func TestEnvelope(t *testing.T) {
	t.Parallel()

	code := doctree.New(doctree.KindLiteralBlock).Set(doctree.AttrLanguage, "go")
	code.Text = "x := 1"

	tests := []struct {
		name        string
		highlighter bool
		want        []string
		absent      []string
	}{
		{
			name:        "with highlighting",
			highlighter: true,
			want:        []string{"\\documentclass{book}\n%STYLES\n\n\\begin{document}", "HL[go]x := 1", "\\end{document}\n"},
		},
		{
			name:   "without highlighting",
			want:   []string{"\\begin{verbatim}\nx := 1\n\\end{verbatim}"},
			absent: []string{"%STYLES", "HL["},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := testBindings()
			b.Highlighter = tt.highlighter
			out, err := NewLaTeXWriter(b, WithHighlighter(stubHighlighter{})).Render(document("index", code.Clone()))
			if err != nil {
				t.Fatalf("Render() unexpected error: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q\n%s", want, out)
				}
			}
			for _, absent := range tt.absent {
				if strings.Contains(out, absent) {
					t.Errorf("output should not contain %q", absent)
				}
			}
		})
	}
}

func TestEnvelope_DoesNotModifyContext(t *testing.T) {
	t.Parallel()

	w := NewLaTeXWriter(testBindings())
	c, err := w.Translate(document("index", para("x")))
	if err != nil {
		t.Fatalf("Translate() unexpected error: %v", err)
	}
	before := c.String()
	first, _ := w.Envelope(c)
	second, _ := w.Envelope(c)
	if first != second || c.String() != before {
		t.Error("Envelope() should only read the context")
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	if f, err := ParseFormat("latex"); err != nil || f != FormatLaTeX {
		t.Errorf("ParseFormat(latex) = %q, %v", f, err)
	}
	if _, err := ParseFormat("pdf"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("ParseFormat(pdf) error = %v, want ErrInvalidFormat", err)
	}
}
