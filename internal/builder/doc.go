// Package builder assembles the document tree of one output target.
//
// A Project holds every parsed document of a source tree together with an
// index of section labels. Assemble takes the main document of a target,
// replaces its toctrees with the content of the listed documents, appends
// the appendices as nested document roots and resolves cross-references.
// References to documents outside the assembled set cannot become links;
// they are rendered as the emphasized section name, followed by the title
// of the target that contains them when one is known.
package builder
