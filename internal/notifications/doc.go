// Package notifications pushes pipeline milestones to operators through ntfy.
// When no topic is configured, a no-op implementation keeps call sites free of
// nil checks.
package notifications
