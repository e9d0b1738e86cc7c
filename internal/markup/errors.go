package markup

import "errors"

// Sentinel errors for markup conversion.
var (
	ErrUnknownDirective = errors.New("unknown directive")
	ErrInvalidDirective = errors.New("invalid directive")
	ErrUnknownRole      = errors.New("unknown role")
	ErrInvalidRole      = errors.New("invalid role")
)

// Directives lists the directive names the parser accepts.
var Directives = []string{"align", "endpar", "environment", "ifhtml", "iflatex", "math", "raw", "textcolor", "toctree"}

// Roles lists the role names the parser accepts.
var Roles = []string{"doc", "eq", "math", "ref", "textcolor"}
