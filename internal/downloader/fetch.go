package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"clipcart/internal/services"
)

// httpDownload streams a direct media URL to the target path. The referer is
// set to the originating product page; many delivery hosts refuse requests
// without it.
func (d *Downloader) httpDownload(ctx context.Context, sourceURL, referer, target string) error {
	ctx, cancel := context.WithTimeout(ctx, d.fetchTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if ua := d.cfg.Downloader.UserAgent; ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return services.Wrap(services.ErrTimeout, "downloader", "http download",
				"Download timed out", err)
		}
		return services.Wrap(services.ErrExternalTool, "downloader", "http download",
			"HTTP request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrExternalTool, "downloader", "http download",
			fmt.Sprintf("Unexpected status %d", resp.StatusCode), nil)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create raw directory: %w", err)
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return services.Wrap(services.ErrExternalTool, "downloader", "http download",
			"Streaming body failed", err)
	}
	return nil
}

// remux pulls an HLS or FLV stream through FFmpeg with stream copy, producing
// an MP4 container without re-encoding.
func (d *Downloader) remux(ctx context.Context, sourceURL, referer, target string) error {
	ctx, cancel := context.WithTimeout(ctx, d.remuxTimeout())
	defer cancel()

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create raw directory: %w", err)
	}

	args := []string{"-hide_banner", "-loglevel", "error", "-nostdin"}
	if ua := d.cfg.Downloader.UserAgent; ua != "" {
		args = append(args, "-user_agent", ua)
	}
	if referer != "" {
		args = append(args, "-headers", "Referer: "+referer+"\r\n")
	}
	args = append(args,
		"-i", sourceURL,
		"-c", "copy",
		"-bsf:a", "aac_adtstoasc",
		target,
	)

	if _, err := d.run(ctx, d.cfg.FFmpegBinary(), args...); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return services.Wrap(services.ErrTimeout, "downloader", "remux",
				"Stream remux timed out", err)
		}
		return services.Wrap(services.ErrExternalTool, "downloader", "remux",
			"FFmpeg remux failed", err)
	}
	return nil
}

// validate confirms the artifact is a playable video using FFprobe. An empty
// file or a container without a video stream fails validation.
func (d *Downloader) validate(ctx context.Context, target string) error {
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("stat download: %w", err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrValidation, "downloader", "validate",
			"Downloaded file is empty", nil)
	}

	output, err := d.run(ctx, d.cfg.FFprobeBinary(),
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=codec_type",
		"-of", "default=noprint_wrappers=1",
		target,
	)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "downloader", "validate",
			"FFprobe failed", err)
	}
	if !strings.Contains(output, "codec_type=video") {
		return services.Wrap(services.ErrValidation, "downloader", "validate",
			"No video stream in downloaded file", nil)
	}
	return nil
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), fmt.Errorf("%s: %w (%s)", name, err, strings.TrimSpace(string(output)))
	}
	return string(output), nil
}
