// Package uploader schedules publishes of processed assets to their channels.
// Each channel enforces a sliding daily quota counted over successful uploads
// in the trailing 24 hours, serves its backlog oldest first, and records every
// attempt as an immutable upload log row. Failures are classified to decide
// whether and when an asset may be retried.
package uploader
