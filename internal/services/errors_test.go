package services_test

import (
	"errors"
	"strings"
	"testing"

	"clipcart/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("connection reset")
	err := services.Wrap(services.ErrExternalTool, "download", "remux", "stream copy failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"download", "remux", "stream copy failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "upload", "publish", "unexpected response", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestTerminal(t *testing.T) {
	authErr := services.Wrap(services.ErrAuthFailure, "upload", "publish", "token revoked", nil)
	if !services.Terminal(authErr) {
		t.Fatal("auth failure should be terminal")
	}
	dupErr := services.Wrap(services.ErrDuplicatePublish, "upload", "publish", "already posted", nil)
	if !services.Terminal(dupErr) {
		t.Fatal("duplicate publish should be terminal")
	}
	quotaErr := services.Wrap(services.ErrQuotaExceeded, "upload", "publish", "daily limit", nil)
	if services.Terminal(quotaErr) {
		t.Fatal("quota failure should not be terminal")
	}
}

func TestMessageStripsMarker(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "download", "probe", "no video stream", nil)
	got := services.Message(err)
	if got != "download: probe: no video stream" {
		t.Fatalf("unexpected message %q", got)
	}
	if services.Message(nil) != "" {
		t.Fatal("expected empty message for nil error")
	}
}
