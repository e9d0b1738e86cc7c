// Package clatex renders Markdown projects to LaTeX and HTML documents
// with a small set of extra constructs: named environments (theorem,
// proof, ...), aligned blocks, colored text and explicit paragraph ends.
//
// # Quick Start
//
// Create a service, render a target, and close when done:
//
//	svc, err := clatex.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Close()
//
//	result, err := svc.Render(ctx, clatex.Input{
//	    Format: clatex.FormatLaTeX,
//	    Source: clatex.MapSource{"index": ":::{environment} theorem\nx\n:::\n"},
//	    Target: clatex.Target{DocName: "index", Title: "Notes"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("notes.tex", []byte(result.Output), 0644)
//
// # Source Syntax
//
// Documents are CommonMark with GFM tables, footnotes and colon-fence
// directives:
//
//	:::{environment} theorem
//	:title: Pythagoras
//	:label: pyth
//	a^2 + b^2 = c^2
//	:::
//
//	:::{align} flushright
//	Signed.
//	:::
//
//	{textcolor}`<#FF0000> this text is red`
//
//	:::{endpar}
//	:::
//
// Documents are gathered into one tree by :::{toctree} directives starting
// from the target's main document. {ref}, {doc} and {eq} roles resolve to
// labels anywhere in the project.
//
// # Rendering Pipeline
//
//  1. Parsing of every document (goldmark), concurrently
//  2. Assembly: toctree inlining, appendices, reference resolution
//  3. Format filtering (:::{ifhtml}, :::{iflatex}) and equation numbering
//  4. Translation by the LaTeX or HTML writer, code highlighted by chroma
//  5. Envelope: header, begin-document and footer templates
//  6. Optional PDF printing of HTML via headless Chrome (go-rod)
//
// Parse once and render many targets by loading a Project:
//
//	project, err := svc.Load(ctx, src, cfg)
//	for _, t := range project.Targets() {
//	    result, err := svc.Render(ctx, clatex.Input{Format: clatex.FormatHTML, Project: project, Target: t})
//	    ...
//	}
//
// # Parallel Processing
//
// A Project is read-only once loaded. Renders with PDF output each need a
// browser; use ServicePool to bound them:
//
//	pool := clatex.NewServicePool(clatex.ResolvePoolSize(0))
//	defer pool.Close()
//
//	svc, err := pool.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(svc)
//
// # Custom Assets
//
// Override the built-in envelope templates and page styles:
//
//	svc, err := clatex.New(clatex.WithAssetPath("/path/to/assets"))
//
// Asset directory structure:
//
//	assets/
//	├── styles/
//	│   └── custom.css
//	└── templates/
//	    ├── latex/
//	    │   ├── header.tmpl
//	    │   ├── begin.tmpl
//	    │   └── footer.tmpl
//	    └── html/
//	        └── ...
//
// # Browser Requirements
//
// PDF output requires Chrome/Chromium. The go-rod library downloads a
// managed Chromium on first run (~/.cache/rod/browser/). Use
// ROD_BROWSER_BIN to specify a custom Chrome binary.
package clatex
