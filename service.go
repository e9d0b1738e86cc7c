package clatex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/alnah/go-clatex/internal/builder"
	"github.com/alnah/go-clatex/internal/dateutil"
	"github.com/alnah/go-clatex/internal/doctree"
	"github.com/alnah/go-clatex/internal/highlight"
	"github.com/alnah/go-clatex/internal/markup"
	"github.com/alnah/go-clatex/internal/pdf"
	"github.com/alnah/go-clatex/internal/render"
)

// defaultTimeout bounds PDF page loading.
const defaultTimeout = 30 * time.Second

// howtoClass marks targets that take no appendices.
const howtoClass = "howto"

// MathRenderer produces the markup of math, displaymath and eqref nodes.
type MathRenderer = render.MathRenderer

// RenderContext is the per-render state passed to a MathRenderer.
type RenderContext = render.Context

// Node is a document tree node.
type Node = doctree.Node

// pdfConverter prints HTML. Tests replace the browser-backed converter.
type pdfConverter interface {
	ToPDF(ctx context.Context, htmlContent string, opts *pdf.Options) ([]byte, error)
	Close() error
}

var _ pdfConverter = (*pdf.Converter)(nil)

// serviceConfig holds the options of a Service.
type serviceConfig struct {
	timeout   time.Duration
	logger    *slog.Logger
	assets    AssetLoader
	assetPath string
	math      map[Format]MathRenderer
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout bounds PDF page loading when the render context has no deadline.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.cfg.timeout = d
		}
	}
}

// WithLogger sets the logger for warnings (unknown references, skipped
// toctree entries, failed transitions) and progress messages.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.cfg.logger = l
		}
	}
}

// WithAssetLoader sets the loader of envelope templates and styles. It
// takes precedence over WithAssetPath and the configured assets.basePath.
func WithAssetLoader(l AssetLoader) Option {
	return func(s *Service) {
		s.cfg.assets = l
	}
}

// WithAssetPath loads templates and styles from a directory first, falling
// back to the built-in ones.
func WithAssetPath(path string) Option {
	return func(s *Service) {
		s.cfg.assetPath = path
	}
}

// WithMathRenderer replaces the math renderer of one format.
func WithMathRenderer(format Format, m MathRenderer) Option {
	return func(s *Service) {
		if m != nil {
			s.cfg.math[format] = m
		}
	}
}

// withPDFConverter injects the PDF backend.
func withPDFConverter(c pdfConverter) Option {
	return func(s *Service) {
		s.pdf = c
	}
}

// withClock fixes the time "today" dates resolve against.
func withClock(now func() time.Time) Option {
	return func(s *Service) {
		s.cfg.now = now
	}
}

// Service renders Markdown projects to LaTeX and HTML. It is safe for
// concurrent use: every render builds its own context and tree copy. The
// browser used for PDF output is started on first use and shared.
type Service struct {
	cfg    serviceConfig
	parser *markup.Parser

	pdfMu sync.Mutex
	pdf   pdfConverter
}

// New creates a Service. It fails if WithAssetPath names an invalid
// directory.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		cfg: serviceConfig{
			timeout: defaultTimeout,
			logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
			math:    make(map[Format]MathRenderer),
			now:     time.Now,
		},
		parser: markup.NewParser(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.cfg.assets == nil && s.cfg.assetPath != "" {
		loader, err := NewAssetLoader(s.cfg.assetPath)
		if err != nil {
			return nil, err
		}
		s.cfg.assets = loader
	}
	return s, nil
}

// Project is a parsed source with its label index. A Project is read-only
// once loaded and can be shared between concurrent renders.
type Project struct {
	project *builder.Project
	config  *Config
	targets []Target
	root    string // Source directory, for PDF images
}

// Targets returns the configured documents whose main document exists.
func (p *Project) Targets() []Target {
	return append([]Target(nil), p.targets...)
}

// Docnames returns the sorted names of all documents.
func (p *Project) Docnames() []string {
	return p.project.Docnames()
}

// Config returns the settings the project was loaded with.
func (p *Project) Config() *Config {
	return p.config
}

// Load parses every document of src. The configured documents name the
// outputs that references to documents outside a render point at. A nil
// cfg uses DefaultConfig().
func (s *Service) Load(ctx context.Context, src Source, cfg *Config) (*Project, error) {
	if src == nil {
		return nil, ErrEmptySource
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	p := builder.NewProject(s.cfg.logger)
	if err := p.Load(ctx, s.parser, src); err != nil {
		return nil, err
	}

	configured := make([]Target, 0, len(cfg.Documents))
	for _, d := range cfg.Documents {
		configured = append(configured, TargetFromConfig(d))
	}
	s.cfg.logger.Info("project loaded", "documents", len(p.Docnames()), "targets", len(configured))
	project := &Project{project: p, config: cfg, targets: p.SetTargets(configured)}
	if r, ok := src.(interface{ Root() string }); ok {
		project.root = r.Root()
	}
	return project, nil
}

// Render assembles and renders one target.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (s *Service) Render(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := input.Validate(); err != nil {
		return nil, err
	}
	format, _ := ParseFormat(string(input.Format))

	project := input.Project
	if project == nil {
		if project, err = s.Load(ctx, input.Source, input.Config); err != nil {
			return nil, err
		}
	}
	cfg := input.Config
	if cfg == nil {
		cfg = project.config
	}

	target := input.Target
	appendices := input.Appendices
	if appendices == nil {
		appendices = cfg.Appendices
	}
	if target.DocClass == howtoClass {
		appendices = nil
	}

	tree, err := project.project.Assemble(target, appendices)
	if err != nil {
		return nil, err
	}
	builder.FilterConditionals(tree, string(format))
	equations := builder.NumberEquations(tree)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	writer, err := s.writer(format, cfg, target)
	if err != nil {
		return nil, err
	}
	output, err := writer.Render(tree)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", target.DocName, err)
	}
	s.cfg.logger.Info("rendered", "doc", target.DocName, "format", format, "bytes", len(output))

	result = &Result{Format: format, Target: target, Output: output, Equations: equations}
	if input.PDF != nil {
		opts := *input.PDF
		if opts.BaseDir == "" {
			opts.BaseDir = project.root
		}
		result.PDF, err = s.pdfConverter().ToPDF(ctx, output, &opts)
		if err != nil {
			return nil, fmt.Errorf("printing %s: %w", target.DocName, err)
		}
	}
	return result, nil
}

// Close releases the browser, if one was started.
func (s *Service) Close() error {
	s.pdfMu.Lock()
	defer s.pdfMu.Unlock()
	if s.pdf == nil {
		return nil
	}
	return s.pdf.Close()
}

func (s *Service) pdfConverter() pdfConverter {
	s.pdfMu.Lock()
	defer s.pdfMu.Unlock()
	if s.pdf == nil {
		s.pdf = pdf.New(s.cfg.timeout)
	}
	return s.pdf
}

// writer builds the render writer of a target.
func (s *Service) writer(format Format, cfg *Config, t Target) (*render.Writer, error) {
	b, err := s.bindings(format, cfg, t)
	if err != nil {
		return nil, err
	}
	opts := []render.Option{render.WithLogger(s.cfg.logger)}
	if m, ok := s.cfg.math[format]; ok {
		opts = append(opts, render.WithMathRenderer(m))
	}
	if cfg.Highlight.Enabled {
		opts = append(opts, render.WithHighlighter(highlight.New(highlight.Format(format), cfg.Highlight.Style)))
	}
	return render.NewWriter(render.Format(format), b, opts...)
}

// assetLoader picks the loader of a render: the service's, then the one
// of the configured base path, then the built-in assets.
func (s *Service) assetLoader(cfg *Config) (AssetLoader, error) {
	if s.cfg.assets != nil {
		return s.cfg.assets, nil
	}
	return NewAssetLoader(cfg.Assets.BasePath)
}

// bindings resolves the values of the envelope templates.
func (s *Service) bindings(format Format, cfg *Config, t Target) (render.Bindings, error) {
	loader, err := s.assetLoader(cfg)
	if err != nil {
		return render.Bindings{}, err
	}
	set, err := loader.LoadTemplateSet(string(format))
	if err != nil {
		return render.Bindings{}, err
	}
	date, err := dateutil.Resolve(cfg.Project.Date, s.cfg.now())
	if err != nil {
		return render.Bindings{}, fmt.Errorf("%w: project.date: %v", ErrInvalidConfig, err)
	}

	var b render.Bindings
	switch format {
	case FormatHTML:
		h := cfg.HTML
		b = render.DefaultHTMLBindings()
		b.Preamble, b.BeginDoc, b.EndDoc, b.Transition = h.Preamble, h.BeginDoc, h.EndDoc, h.Transition
		if h.Style != "" {
			if b.Style, err = loader.LoadStyle(h.Style); err != nil {
				return render.Bindings{}, err
			}
		}
	default:
		l := cfg.LaTeX
		b = render.DefaultLaTeXBindings()
		b.DocumentClass = l.DocumentClass
		b.Preamble, b.BeginDoc, b.EndDoc = l.Preamble, l.BeginDoc, l.EndDoc
		b.MakeIndex = l.MakeIndex.String()
		b.HyperrefArgs = l.HyperrefArgs
		b.Longtable, b.Tabulary, b.Multirow = l.Longtable, l.Tabulary, l.Multirow
		b.Transition = l.Transition
	}

	b.UseParts, b.UseChapters = cfg.LaTeX.UseParts, cfg.LaTeX.UseChapters
	b.Highlighter = cfg.Highlight.Enabled
	b.Title = t.Title
	if b.Title == "" {
		b.Title = cfg.Project.Name
	}
	b.Author, b.DocClass = t.Author, t.DocClass
	b.Date, b.Release, b.Language = date, cfg.Project.Release, cfg.Project.Language
	b.Header, b.BeginDocument, b.Footer = set.Header, set.BeginDocument, set.Footer
	return b, nil
}
