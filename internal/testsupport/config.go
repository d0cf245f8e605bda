package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"clipcart/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.RawDir = filepath.Join(base, "raw")
	cfgVal.Paths.ProcessedDir = filepath.Join(base, "processed")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.FallbackDir = filepath.Join(base, "fallback")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithFallbackPool seeds the fallback directory with the named clips and
// registers them in the pool.
func WithFallbackPool(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if err := os.MkdirAll(b.cfg.Paths.FallbackDir, 0o755); err != nil {
			b.t.Fatalf("mkdir fallback dir: %v", err)
		}
		for _, name := range names {
			target := filepath.Join(b.cfg.Paths.FallbackDir, name)
			if err := os.WriteFile(target, []byte("fallback clip"), 0o644); err != nil {
				b.t.Fatalf("write fallback %s: %v", name, err)
			}
			b.cfg.Downloader.FallbackPool = append(b.cfg.Downloader.FallbackPool, target)
		}
	}
}

// WithTestSource points acquisition at a local sample clip instead of the
// network.
func WithTestSource() ConfigOption {
	return func(b *configBuilder) {
		sample := filepath.Join(b.baseDir, "sample.mp4")
		if err := os.WriteFile(sample, []byte("sample clip"), 0o644); err != nil {
			b.t.Fatalf("write test source: %v", err)
		}
		b.cfg.Downloader.TestSource = sample
	}
}

// WithConfig applies an arbitrary mutation to the test config.
func WithConfig(mutate func(*config.Config)) ConfigOption {
	return func(b *configBuilder) {
		mutate(b.cfg)
	}
}
