// Package logging configures structured slog output for the pipeline with
// console and JSON handlers, plus shared attribute helpers and field keys.
package logging
