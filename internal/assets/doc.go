// Package assets provides the envelope templates and page styles of the
// LaTeX and HTML writers.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in sets)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// A template set is named after the output format ("latex" or "html") and
// holds the three envelope templates: the header, the begin-document
// block written before the first document root, and the footer. They are
// text/template sources executed against the render bindings.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css
//	└── templates/
//	    └── {name}/
//	        ├── header.tmpl
//	        ├── begin.tmpl
//	        └── footer.tmpl
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
