// Package render produces the embeddable HTML for the parking widget.
//
// Markup is a pure function from classified cards to a fragment: a style
// block followed by a flex container with one card per station. Hosts embed
// the fragment as is; Document wraps it into a standalone page.
package render
