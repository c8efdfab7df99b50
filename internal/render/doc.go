// Package render turns a serialized block document into HTML.
//
// Every block kind is registered once with an attribute schema and a pure
// render function. A Pass is created for each document and carries the only
// per-render mutable state, the footnote list, so nothing leaks between
// documents.
package render
