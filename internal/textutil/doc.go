// Package textutil provides text normalization helpers shared across pipeline
// stages, primarily title sanitization for filesystem-safe media filenames.
package textutil
