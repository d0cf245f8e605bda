package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound         = errors.New("no usable source")
	ErrTimeout          = errors.New("deadline exceeded")
	ErrValidation       = errors.New("validation failed")
	ErrExternalTool     = errors.New("external tool error")
	ErrQuotaExceeded    = errors.New("quota exceeded")
	ErrAuthFailure      = errors.New("auth failure")
	ErrDuplicatePublish = errors.New("duplicate publish")
	ErrTransient        = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Terminal reports whether an error should not be retried automatically.
// Auth and duplicate-publish failures require operator intervention.
func Terminal(err error) bool {
	return errors.Is(err, ErrAuthFailure) || errors.Is(err, ErrDuplicatePublish)
}

// Message extracts a concise human-readable message for persistence on an
// entity's error_message field, stripping the leading sentinel text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, marker := range []error{
		ErrNotFound, ErrTimeout, ErrValidation, ErrExternalTool,
		ErrQuotaExceeded, ErrAuthFailure, ErrDuplicatePublish, ErrTransient,
	} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(msg, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(msg, prefix))
		}
	}
	return strings.TrimSpace(msg)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
