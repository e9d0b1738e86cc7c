package builder

import "errors"

// Sentinel errors for project loading and assembly.
var (
	ErrUnknownDocument = errors.New("unknown document")
	ErrNoDocuments     = errors.New("no documents")
	ErrSourceRead      = errors.New("cannot read source")
)
