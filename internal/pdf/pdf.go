// Package pdf prints rendered HTML documents to PDF with headless Chrome.
//
// The browser is started lazily on the first conversion and reused until
// Close. Rod downloads Chromium on first run unless ROD_BROWSER_BIN names
// an installed browser.
package pdf

import (
	"context"
	"fmt"
	"html"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-clatex/internal/fileutil"
	"github.com/alnah/go-clatex/internal/process"
)

// DefaultTimeout bounds page loading when the context has no deadline.
const DefaultTimeout = 30 * time.Second

// Page sizes in inches (portrait width, height).
var pageSizes = map[string][2]float64{
	"letter": {8.5, 11},
	"a4":     {8.27, 11.69},
	"legal":  {8.5, 14},
}

// Options describe the printed page.
type Options struct {
	PageSize    string  // "letter" (default), "a4" or "legal"
	Landscape   bool    // Swap width and height
	Margin      float64 // Inches on every side (default 0.5)
	PageNumbers bool    // Print "n/total" in the footer
	Title       string  // Shown left of the page numbers
	BaseDir     string  // Relative image sources resolve against it
}

// renderer prints a local HTML file. Tests replace the browser with a fake.
type renderer interface {
	RenderFromFile(ctx context.Context, filePath string, opts *Options) ([]byte, error)
	Close() error
}

// Converter turns HTML documents into PDF. It is safe for concurrent use;
// pages are created per conversion on a shared browser.
type Converter struct {
	renderer renderer
}

// New creates a Converter using a lazily started headless Chrome.
func New(timeout time.Duration) *Converter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Converter{renderer: &rodRenderer{timeout: timeout}}
}

// ToPDF prints an HTML document. The document is written to a temporary
// file first, with relative images pointed at opts.BaseDir.
func (c *Converter) ToPDF(ctx context.Context, htmlContent string, opts *Options) ([]byte, error) {
	if opts == nil {
		opts = &Options{}
	}
	if _, err := paperSize(opts); err != nil {
		return nil, err
	}
	htmlContent, err := resolveImages(htmlContent, opts.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving images: %v", ErrPDFGeneration, err)
	}
	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return c.renderer.RenderFromFile(ctx, tmpPath, opts)
}

// Close stops the browser, if one was started.
func (c *Converter) Close() error {
	return c.renderer.Close()
}

// rodRenderer implements renderer with go-rod.
type rodRenderer struct {
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRenderer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New()
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.launcher, r.browser = l, browser
	return browser, nil
}

// Close closes the browser and kills its process group, so that renderer
// and GPU helpers do not outlive the command.
func (r *rodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	pid := r.launcher.PID()
	r.launcher.Kill()
	process.KillProcessGroup(pid)
	r.browser, r.launcher = nil, nil
	return err
}

// RenderFromFile opens a local HTML file and prints it.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string, opts *Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	if err := page.Context(ctx).Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	printOpts, err := buildPrintOptions(opts)
	if err != nil {
		return nil, err
	}
	reader, err := page.PDF(printOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return data, nil
}

// paperSize returns width and height in inches.
func paperSize(opts *Options) ([2]float64, error) {
	name := strings.ToLower(opts.PageSize)
	if name == "" {
		name = "letter"
	}
	size, ok := pageSizes[name]
	if !ok {
		return size, fmt.Errorf("%w: %q (expected letter, a4 or legal)", ErrInvalidPageSize, opts.PageSize)
	}
	if opts.Landscape {
		size[0], size[1] = size[1], size[0]
	}
	return size, nil
}

// buildPrintOptions constructs the Chrome print settings.
func buildPrintOptions(opts *Options) (*proto.PagePrintToPDF, error) {
	size, err := paperSize(opts)
	if err != nil {
		return nil, err
	}
	margin := opts.Margin
	if margin == 0 {
		margin = 0.5
	}
	bottom := margin
	if opts.PageNumbers && bottom < 0.75 {
		bottom = 0.75
	}

	p := &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(size[0]),
		PaperHeight:     floatPtr(size[1]),
		MarginTop:       floatPtr(margin),
		MarginBottom:    floatPtr(bottom),
		MarginLeft:      floatPtr(margin),
		MarginRight:     floatPtr(margin),
		PrintBackground: true,
	}
	if opts.PageNumbers {
		p.DisplayHeaderFooter = true
		p.HeaderTemplate = "<span></span>"
		p.FooterTemplate = footerTemplate(opts.Title)
	}
	return p, nil
}

// footerTemplate lays out Chrome's native footer; pageNumber and
// totalPages are filled in by Chrome.
func footerTemplate(title string) string {
	content := `<span class="pageNumber"></span>/<span class="totalPages"></span>`
	if title != "" {
		content = html.EscapeString(title) + " - " + content
	}
	return `<div style="font-size: 9px; color: #888; width: 100%; text-align: right; padding: 0 0.5in;">` + content + `</div>`
}

func floatPtr(v float64) *float64 {
	return &v
}
