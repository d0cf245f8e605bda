package downloader

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"log/slog"

	"clipcart/internal/config"
	"clipcart/internal/fileutil"
	"clipcart/internal/logging"
	"clipcart/internal/services"
	"clipcart/internal/store"
	"clipcart/internal/textutil"
)

type commandRunner func(ctx context.Context, name string, args ...string) (string, error)

// Downloader turns candidate URLs into validated raw video files.
type Downloader struct {
	cfg    *config.Config
	logger *slog.Logger
	client *http.Client
	run    commandRunner

	mu          sync.Mutex
	fallbackIdx int
}

// New constructs a downloader.
func New(cfg *config.Config, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Downloader{
		cfg:    cfg,
		logger: logging.WithComponent(logger, "downloader"),
		client: &http.Client{},
		run:    defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (d *Downloader) WithCommandRunner(r commandRunner) {
	if d != nil && r != nil {
		d.run = r
	}
}

// WithHTTPClient allows injecting a custom HTTP client for tests.
func (d *Downloader) WithHTTPClient(client *http.Client) {
	if d != nil && client != nil {
		d.client = client
	}
}

// TargetPath picks an unused destination under the raw directory for the
// given product title. Collisions get a numeric suffix; existing files are
// never overwritten.
func (d *Downloader) TargetPath(title string) (string, error) {
	base := textutil.FileStem(textutil.SanitizeTitle(title))
	maxAttempts := d.cfg.Downloader.MaxNameAttempts
	if maxAttempts <= 0 {
		maxAttempts = 49
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		name := base + ".mp4"
		if attempt > 1 {
			name = fmt.Sprintf("%s_%d.mp4", base, attempt)
		}
		candidate := filepath.Join(d.cfg.Paths.RawDir, name)
		_, err := os.Stat(candidate)
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
	}
	return "", services.Wrap(services.ErrValidation, "downloader", "target path",
		fmt.Sprintf("No free filename for %q after %d attempts", base, maxAttempts), nil)
}

// Fetch tries each candidate in order and returns the path of the first
// validated download. HLS-style URLs are remuxed through FFmpeg; everything
// else streams over HTTP. Partial or invalid artifacts are removed before the
// next candidate is tried.
func (d *Downloader) Fetch(ctx context.Context, product *store.Product, candidates []string) (string, string, error) {
	if len(candidates) == 0 {
		return "", "", services.Wrap(services.ErrNotFound, "downloader", "fetch",
			"No candidate URLs to download", nil)
	}
	target, err := d.TargetPath(product.Title)
	if err != nil {
		return "", "", err
	}

	var lastErr error
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}
		var fetchErr error
		if isStreamURL(candidate) {
			fetchErr = d.remux(ctx, candidate, product.OriginURL, target)
		} else {
			fetchErr = d.httpDownload(ctx, candidate, product.OriginURL, target)
		}
		if fetchErr == nil {
			fetchErr = d.validate(ctx, target)
		}
		if fetchErr == nil {
			d.logger.Info("download complete",
				logging.String(logging.FieldProductID, product.ID),
				logging.String("source", candidate),
				logging.String("path", target))
			return target, candidate, nil
		}

		lastErr = fetchErr
		d.logger.Warn("candidate failed",
			logging.String(logging.FieldProductID, product.ID),
			logging.String("source", candidate),
			logging.Error(fetchErr))
		if removeErr := fileutil.RemoveIfExists(target); removeErr != nil {
			return "", "", fmt.Errorf("clean up partial download: %w", removeErr)
		}
	}
	return "", "", services.Wrap(services.ErrExternalTool, "downloader", "fetch",
		"All candidate URLs failed", lastErr)
}

// FallbackCopy serves the next clip from the local fallback pool, rotating
// through the pool round-robin so repeated misses do not reuse one clip.
func (d *Downloader) FallbackCopy(ctx context.Context, product *store.Product) (string, string, error) {
	pool := d.cfg.Downloader.FallbackPool
	if len(pool) == 0 {
		return "", "", services.Wrap(services.ErrNotFound, "downloader", "fallback",
			"No fallback clips configured", nil)
	}
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	d.mu.Lock()
	source := pool[d.fallbackIdx%len(pool)]
	d.fallbackIdx++
	d.mu.Unlock()

	target, err := d.TargetPath(product.Title)
	if err != nil {
		return "", "", err
	}
	if err := fileutil.CopyFile(source, target); err != nil {
		return "", "", services.Wrap(services.ErrExternalTool, "downloader", "fallback",
			fmt.Sprintf("Copy fallback clip %s", filepath.Base(source)), err)
	}
	d.logger.Info("fallback clip served",
		logging.String(logging.FieldProductID, product.ID),
		logging.String("clip", filepath.Base(source)))
	return target, "fallback://" + filepath.Base(source) + "#" + product.ID, nil
}

// CopyTestSource copies the configured local sample instead of touching the
// network. Used for pipeline rehearsals.
func (d *Downloader) CopyTestSource(product *store.Product) (string, string, error) {
	source := d.cfg.Downloader.TestSource
	if source == "" {
		return "", "", services.Wrap(services.ErrValidation, "downloader", "test source",
			"Test source is not configured", nil)
	}
	target, err := d.TargetPath(product.Title)
	if err != nil {
		return "", "", err
	}
	if err := fileutil.CopyFile(source, target); err != nil {
		return "", "", fmt.Errorf("copy test source: %w", err)
	}
	return target, "test://" + product.ID, nil
}

func (d *Downloader) fetchTimeout() time.Duration {
	seconds := d.cfg.Downloader.FetchTimeout
	if seconds <= 0 {
		seconds = 30
	}
	return time.Duration(seconds) * time.Second
}

func (d *Downloader) remuxTimeout() time.Duration {
	seconds := d.cfg.Downloader.RemuxTimeout
	if seconds <= 0 {
		seconds = 300
	}
	return time.Duration(seconds) * time.Second
}

// isStreamURL reports whether a candidate needs FFmpeg remuxing rather than a
// plain HTTP download.
func isStreamURL(raw string) bool {
	lower := strings.ToLower(raw)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	return strings.HasSuffix(lower, ".m3u8") ||
		strings.HasSuffix(lower, ".ts") ||
		strings.HasSuffix(lower, ".flv")
}
