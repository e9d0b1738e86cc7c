package render

import (
	"html"
	"strings"
)

// latexEscaper replaces the characters that are special in LaTeX text mode.
var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`#`, `\#`,
	`^`, `\textasciicircum{}`,
	`_`, `\_`,
	`~`, `\textasciitilde{}`,
	`%`, `\%`,
	`<`, `\textless{}`,
	`>`, `\textgreater{}`,
)

// EscapeLaTeX escapes text for LaTeX text mode.
func EscapeLaTeX(s string) string {
	return latexEscaper.Replace(s)
}

// urlEscaper escapes the characters \href cannot take verbatim.
var urlEscaper = strings.NewReplacer(
	`\`, `\\`,
	`%`, `\%`,
	`#`, `\#`,
	`{`, `\{`,
	`}`, `\}`,
)

func escapeURL(s string) string {
	return urlEscaper.Replace(s)
}

// EscapeHTML escapes text for HTML content and attribute values.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}
