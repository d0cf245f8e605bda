// Package render turns collected raw clips into channel-ready videos. The
// heavy lifting is delegated to an Encoder implementation; this package owns
// channel assignment, presentation building, and the asset lifecycle around
// the encode.
package render
