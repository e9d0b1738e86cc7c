package clatex

import (
	"errors"

	"github.com/alnah/go-clatex/internal/assets"
	"github.com/alnah/go-clatex/internal/builder"
	"github.com/alnah/go-clatex/internal/config"
	"github.com/alnah/go-clatex/internal/highlight"
	"github.com/alnah/go-clatex/internal/markup"
	"github.com/alnah/go-clatex/internal/pdf"
	"github.com/alnah/go-clatex/internal/render"
)

// Sentinel errors for library operations. Errors raised by the stages of a
// render wrap these values; test them with errors.Is.
var (
	ErrEmptySource = errors.New("source cannot be empty")
	ErrNoTarget    = errors.New("target document required")
	ErrPDFFormat   = errors.New("PDF output requires the html format")

	// Parsing errors.
	ErrUnknownDirective = markup.ErrUnknownDirective
	ErrInvalidDirective = markup.ErrInvalidDirective
	ErrUnknownRole      = markup.ErrUnknownRole
	ErrInvalidRole      = markup.ErrInvalidRole

	// Assembly errors.
	ErrUnknownDocument = builder.ErrUnknownDocument
	ErrNoDocuments     = builder.ErrNoDocuments
	ErrSourceRead      = builder.ErrSourceRead

	// Rendering errors.
	ErrInvalidFormat     = render.ErrInvalidFormat
	ErrUnknownNode       = render.ErrUnknownNode
	ErrUnbalancedContext = render.ErrUnbalancedContext
	ErrTemplateRender    = render.ErrTemplateRender
	ErrHighlight         = highlight.ErrHighlight

	// Configuration errors.
	ErrConfigNotFound = config.ErrConfigNotFound
	ErrConfigParse    = config.ErrConfigParse
	ErrInvalidConfig  = config.ErrInvalidConfig
	ErrFieldTooLong   = config.ErrFieldTooLong

	// Asset loading errors.
	ErrStyleNotFound         = assets.ErrStyleNotFound
	ErrTemplateSetNotFound   = assets.ErrTemplateSetNotFound
	ErrIncompleteTemplateSet = assets.ErrIncompleteTemplateSet
	ErrInvalidAssetPath      = assets.ErrInvalidBasePath

	// PDF errors.
	ErrBrowserConnect  = pdf.ErrBrowserConnect
	ErrPageCreate      = pdf.ErrPageCreate
	ErrPageLoad        = pdf.ErrPageLoad
	ErrPDFGeneration   = pdf.ErrPDFGeneration
	ErrInvalidPageSize = pdf.ErrInvalidPageSize
)
