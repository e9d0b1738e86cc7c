package assets

// TemplateSet holds the envelope templates of one output format.
type TemplateSet struct {
	Name          string // Identifier (format name or directory path)
	Header        string // Written before everything else
	BeginDocument string // Written when the first document root opens
	Footer        string // Written after the body
}

// Built-in template sets and style.
const (
	LaTeXTemplateSet = "latex"
	HTMLTemplateSet  = "html"
	DefaultStyleName = "default"
)

// Envelope file names inside a template set directory.
const (
	headerFile = "header.tmpl"
	beginFile  = "begin.tmpl"
	footerFile = "footer.tmpl"
)

// envelopeFiles lists the files of a set in the order they are reported
// when missing.
var envelopeFiles = []string{headerFile, beginFile, footerFile}

// newTemplateSet builds a set from file contents keyed by file name.
func newTemplateSet(name string, files map[string]string) *TemplateSet {
	return &TemplateSet{
		Name:          name,
		Header:        files[headerFile],
		BeginDocument: files[beginFile],
		Footer:        files[footerFile],
	}
}
