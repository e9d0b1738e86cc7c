package pdf

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
)

// fakeRenderer records what it was asked to print.
type fakeRenderer struct {
	content string
	opts    *Options
	closed  bool
}

func (f *fakeRenderer) RenderFromFile(_ context.Context, filePath string, opts *Options) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	f.content, f.opts = string(data), opts
	return []byte("%PDF-1.7"), nil
}

func (f *fakeRenderer) Close() error {
	f.closed = true
	return nil
}

// ---------------------------------------------------------------------------
// TestConverter - Temp file handoff to the renderer
// ---------------------------------------------------------------------------

func TestConverter_ToPDF(t *testing.T) {
	t.Parallel()

	fake := &fakeRenderer{}
	c := &Converter{renderer: fake}

	out, err := c.ToPDF(context.Background(), "<p>body</p>", &Options{PageSize: "a4"})
	if err != nil {
		t.Fatalf("ToPDF() unexpected error: %v", err)
	}
	if string(out) != "%PDF-1.7" || fake.content != "<p>body</p>" || fake.opts.PageSize != "a4" {
		t.Errorf("ToPDF() = %q, renderer saw %q %+v", out, fake.content, fake.opts)
	}

	if _, err := c.ToPDF(context.Background(), "<p/>", &Options{PageSize: "a3"}); !errors.Is(err, ErrInvalidPageSize) {
		t.Errorf("ToPDF(a3) error = %v, want ErrInvalidPageSize", err)
	}

	if err := c.Close(); err != nil || !fake.closed {
		t.Errorf("Close() = %v, closed %v", err, fake.closed)
	}
}

func TestRodRenderer_CloseWithoutBrowser(t *testing.T) {
	t.Parallel()

	if err := New(0).Close(); err != nil {
		t.Errorf("Close() = %v, want nil", err)
	}
}

func TestRodRenderer_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &rodRenderer{timeout: DefaultTimeout}
	if _, err := r.RenderFromFile(ctx, "/nonexistent.html", &Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("RenderFromFile() error = %v, want context.Canceled", err)
	}
}

// ---------------------------------------------------------------------------
// TestBuildPrintOptions - Page geometry
// ---------------------------------------------------------------------------

func TestBuildPrintOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		opts       Options
		wantWidth  float64
		wantHeight float64
		wantBottom float64
		wantFooter bool
	}{
		{name: "letter default", opts: Options{}, wantWidth: 8.5, wantHeight: 11, wantBottom: 0.5},
		{name: "a4 landscape", opts: Options{PageSize: "A4", Landscape: true}, wantWidth: 11.69, wantHeight: 8.27, wantBottom: 0.5},
		{name: "page numbers widen bottom margin", opts: Options{PageNumbers: true}, wantWidth: 8.5, wantHeight: 11, wantBottom: 0.75, wantFooter: true},
		{name: "large margin kept", opts: Options{PageSize: "legal", Margin: 1, PageNumbers: true}, wantWidth: 8.5, wantHeight: 14, wantBottom: 1, wantFooter: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := buildPrintOptions(&tt.opts)
			if err != nil {
				t.Fatalf("buildPrintOptions() unexpected error: %v", err)
			}
			if *p.PaperWidth != tt.wantWidth || *p.PaperHeight != tt.wantHeight {
				t.Errorf("paper = %vx%v, want %vx%v", *p.PaperWidth, *p.PaperHeight, tt.wantWidth, tt.wantHeight)
			}
			if *p.MarginBottom != tt.wantBottom {
				t.Errorf("bottom margin = %v, want %v", *p.MarginBottom, tt.wantBottom)
			}
			if p.DisplayHeaderFooter != tt.wantFooter {
				t.Errorf("DisplayHeaderFooter = %v, want %v", p.DisplayHeaderFooter, tt.wantFooter)
			}
		})
	}
}

func TestFooterTemplate_EscapesTitle(t *testing.T) {
	t.Parallel()

	got := footerTemplate("Q&A <draft>")
	if !strings.Contains(got, "Q&amp;A &lt;draft&gt;") || !strings.Contains(got, `class="pageNumber"`) {
		t.Errorf("footerTemplate() = %q", got)
	}
}
