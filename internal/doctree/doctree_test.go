package doctree

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// recorder logs enter/exit calls as "+kind" and "-kind".
type recorder struct {
	events []string
	skip   Kind
	fail   Kind
}

func (r *recorder) Enter(n *Node) error {
	r.events = append(r.events, "+"+n.Kind.String())
	if n.Kind == r.fail {
		return errors.New("boom")
	}
	if n.Kind == r.skip {
		return ErrSkipChildren
	}
	return nil
}

func (r *recorder) Exit(n *Node) error {
	r.events = append(r.events, "-"+n.Kind.String())
	return nil
}

func sampleTree() *Node {
	return New(KindDocument,
		New(KindSection,
			New(KindTitle, NewText("Intro")),
			New(KindParagraph, NewText("hello"), New(KindEmphasis, NewText("world"))),
		),
	)
}

// ---------------------------------------------------------------------------
// TestWalk - Traversal order and skip semantics
// ---------------------------------------------------------------------------

func TestWalk(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		skip Kind
		want string
	}{
		{
			name: "enter before children, exit after",
			skip: kindCount,
			want: "+document +section +title +text -text -title +paragraph +text -text +emphasis +text -text -emphasis -paragraph -section -document",
		},
		{
			name: "skip children still exits the node",
			skip: KindParagraph,
			want: "+document +section +title +text -text -title +paragraph -paragraph -section -document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := &recorder{skip: tt.skip, fail: kindCount}
			if err := Walk(sampleTree(), r); err != nil {
				t.Fatalf("Walk() unexpected error: %v", err)
			}
			if got := strings.Join(r.events, " "); got != tt.want {
				t.Errorf("events =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestWalk_ErrorAborts(t *testing.T) {
	t.Parallel()

	r := &recorder{skip: kindCount, fail: KindTitle}
	err := Walk(sampleTree(), r)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	last := r.events[len(r.events)-1]
	if last != "+title" {
		t.Errorf("last event = %q, want %q", last, "+title")
	}
}

// ---------------------------------------------------------------------------
// TestNode - Attributes and sets
// ---------------------------------------------------------------------------

func TestNode_Attributes(t *testing.T) {
	t.Parallel()

	n := New(KindEntry).Set(AttrMoreRows, 2).Set(AttrHeader, true).Set(AttrLabel, "x")

	if got := n.Int(AttrMoreRows); got != 2 {
		t.Errorf("Int(morerows) = %d, want 2", got)
	}
	if !n.Bool(AttrHeader) {
		t.Error("Bool(header) = false, want true")
	}
	if got := n.Str(AttrLabel); got != "x" {
		t.Errorf("Str(label) = %q, want %q", got, "x")
	}
	if n.Has(AttrMoreCols) {
		t.Error("Has(morecols) = true, want false")
	}
	if got := n.Str(AttrMoreRows); got != "" {
		t.Errorf("Str on int attribute = %q, want empty", got)
	}
}

func TestNode_AddClassIsIdempotent(t *testing.T) {
	t.Parallel()

	n := New(KindParagraph)
	n.AddClass("fresh-left")
	n.AddClass("fresh-left")
	n.AddID("a")
	n.AddID("a")

	if !reflect.DeepEqual(n.Classes, []string{"fresh-left"}) {
		t.Errorf("Classes = %v, want [fresh-left]", n.Classes)
	}
	if !reflect.DeepEqual(n.IDs, []string{"a"}) {
		t.Errorf("IDs = %v, want [a]", n.IDs)
	}
}

func TestNode_CloneIsDeep(t *testing.T) {
	t.Parallel()

	orig := New(KindToctree).Set(AttrEntries, []string{"a", "b"})
	orig.Append(NewText("x"))
	c := orig.Clone()
	c.Strings(AttrEntries)[0] = "z"
	c.Children[0].Text = "y"

	if orig.Strings(AttrEntries)[0] != "a" {
		t.Error("clone shares the entries slice")
	}
	if orig.Children[0].Text != "x" {
		t.Error("clone shares children")
	}
}

func TestRewrite(t *testing.T) {
	t.Parallel()

	tree := New(KindParagraph, NewText("a"), New(KindEndPar), NewText("b"))
	Rewrite(tree, func(n *Node) []*Node {
		if n.Kind == KindEndPar {
			return nil
		}
		if n.Text == "b" {
			return []*Node{NewText("b1"), NewText("b2")}
		}
		return []*Node{n}
	})

	if got := tree.PlainText(); got != "ab1b2" {
		t.Errorf("PlainText() = %q, want %q", got, "ab1b2")
	}
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	for _, k := range Kinds() {
		if k.String() == "" || strings.HasPrefix(k.String(), "kind(") {
			t.Errorf("kind %d has no name", k)
		}
	}
	if got := Kind(250).String(); got != "kind(250)" {
		t.Errorf("String() = %q, want %q", got, "kind(250)")
	}
}

// ---------------------------------------------------------------------------
// TestExtensions - Custom node constructors
// ---------------------------------------------------------------------------

func TestResolveAlignment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		arg  string
		want string
	}{
		{"flushleft", AlignLeft},
		{"left", AlignLeft},
		{"flushright", AlignRight},
		{"right", AlignRight},
		{"center", AlignCenter},
		{"anything", AlignCenter},
		{"", AlignCenter},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			t.Parallel()

			if got := ResolveAlignment(tt.arg); got != tt.want {
				t.Errorf("ResolveAlignment(%q) = %q, want %q", tt.arg, got, tt.want)
			}
		})
	}
}

func TestNewAlign_PropagatesClassOnce(t *testing.T) {
	t.Parallel()

	plain := New(KindParagraph)
	centered := New(KindParagraph)
	centered.AddClass("center")

	n := NewAlign("flushleft", plain, centered)
	PropagateAlignment(n)

	for i, child := range n.Children {
		count := 0
		for _, c := range child.Classes {
			if c == AlignLeft {
				count++
			}
		}
		if count != 1 {
			t.Errorf("child %d has %d %q classes, want 1 (classes %v)", i, count, AlignLeft, child.Classes)
		}
	}
	if !centered.HasClass("center") {
		t.Error("existing center class was lost")
	}
}

func TestParseColorRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		wantSpec    string
		wantContent string
		wantOK      bool
	}{
		{
			name:        "hex color with text",
			input:       "<#FF0000> this text is red",
			wantSpec:    "#FF0000",
			wantContent: "this text is red",
			wantOK:      true,
		},
		{
			name:        "named color",
			input:       "<blue>sky",
			wantSpec:    "blue",
			wantContent: "sky",
			wantOK:      true,
		},
		{
			name:        "first closing bracket wins",
			input:       "<#00>FF> text",
			wantSpec:    "#00",
			wantContent: "FF> text",
			wantOK:      true,
		},
		{
			name:   "missing opening bracket",
			input:  "#FF0000> text",
			wantOK: false,
		},
		{
			name:   "missing closing bracket",
			input:  "<#FF0000 text",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			spec, content, ok := ParseColorRole(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if spec != tt.wantSpec {
				t.Errorf("spec = %q, want %q", spec, tt.wantSpec)
			}
			if content != tt.wantContent {
				t.Errorf("content = %q, want %q", content, tt.wantContent)
			}
		})
	}
}

func TestNewEnvironment(t *testing.T) {
	t.Parallel()

	n := NewEnvironment("Theorem", "Pythagoras")
	if n.Str(AttrEnvName) != "Theorem" || n.Str(AttrTitle) != "Pythagoras" {
		t.Errorf("attrs = %v", n.Attrs)
	}
	if NewEnvironment("Proof", "").Has(AttrTitle) {
		t.Error("empty title should not be set")
	}
}
