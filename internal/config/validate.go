package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks configuration invariants that cannot be normalized away.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.RawDir) == "" {
		problems = append(problems, "paths.raw_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.ProcessedDir) == "" {
		problems = append(problems, "paths.processed_dir must not be empty")
	}
	if c.Paths.RawDir != "" && c.Paths.RawDir == c.Paths.ProcessedDir {
		problems = append(problems, "paths.raw_dir and paths.processed_dir must be distinct directories")
	}
	if c.Downloader.FetchTimeout <= 0 {
		problems = append(problems, "downloader.fetch_timeout must be positive")
	}
	if c.Downloader.RemuxTimeout <= 0 {
		problems = append(problems, "downloader.remux_timeout must be positive")
	}
	if c.Workflow.PollInterval <= 0 {
		problems = append(problems, "workflow.poll_interval must be positive")
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		problems = append(problems, "workflow.error_retry_interval must be positive")
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not supported (console, json)", c.Logging.Format))
	}
	switch c.Publisher.Privacy {
	case "", "public", "private", "unlisted":
	default:
		problems = append(problems, fmt.Sprintf("publisher.privacy %q is not supported (public, private, unlisted)", c.Publisher.Privacy))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
