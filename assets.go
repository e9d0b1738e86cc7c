package clatex

import (
	"github.com/alnah/go-clatex/internal/assets"
)

// Built-in asset names. Template sets are named after the output format.
const (
	DefaultStyle     = assets.DefaultStyleName
	LaTeXTemplateSet = assets.LaTeXTemplateSet
	HTMLTemplateSet  = assets.HTMLTemplateSet
)

// TemplateSet holds the envelope templates of one output format: the
// header, the block written when the first document root opens, and the
// footer. Each is a text/template source executed against the render
// bindings (DocumentClass, Preamble, BeginDoc, EndDoc, MakeIndex,
// HyperrefArgs, Title, Author, Date, Release, Style, ...).
type TemplateSet = assets.TemplateSet

// AssetLoader loads page styles and envelope template sets. Implement it
// to serve templates from another backend.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplateSet loads the envelope templates of a format.
	// Returns ErrTemplateSetNotFound if the set doesn't exist and
	// ErrIncompleteTemplateSet if a template is missing.
	LoadTemplateSet(name string) (*TemplateSet, error)
}

// NewAssetLoader creates an AssetLoader for the given base path.
// If basePath is empty, returns a loader using only built-in assets.
// If basePath is set, its assets take precedence with fallback to the
// built-in ones.
//
// The basePath directory may contain:
//   - styles/{name}.css for page styles
//   - templates/{latex,html}/header.tmpl, begin.tmpl and footer.tmpl
//
// Returns ErrInvalidAssetPath if basePath is set but not a readable directory.
func NewAssetLoader(basePath string) (AssetLoader, error) {
	resolver, err := assets.NewAssetResolver(basePath)
	if err != nil {
		return nil, err
	}
	return resolver, nil
}
