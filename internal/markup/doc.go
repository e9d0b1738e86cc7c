// Package markup parses Markdown sources into document trees.
//
// Parsing is done by goldmark with the GFM table, strikethrough and
// footnote extensions and automatic heading ids, plus an extension for the
// constructs the renderers need:
//   - colon-fence directives (:::{environment} theorem, :::{align} center,
//     :::{textcolor} #FF0000, :::{ifhtml}, :::{iflatex}, :::{math},
//     :::{toctree}, :::{raw} latex, :::{endpar})
//   - roles ({textcolor}`<#FF0000> text`, {ref}, {doc}, {eq}, {math})
//   - $inline$ and $$ display $$ math
//   - (label)= targets and {rowspan=N colspan=M} table cell markers
//
// The goldmark AST is then converted to a doctree: headings become nested
// sections, directives become the custom node kinds.
package markup
