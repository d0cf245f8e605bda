package config

import "strings"

func (c *Config) normalize() error {
	var err error
	if c.Paths.RawDir, err = expandPath(c.Paths.RawDir); err != nil {
		return err
	}
	if c.Paths.ProcessedDir, err = expandPath(c.Paths.ProcessedDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if strings.TrimSpace(c.Paths.FallbackDir) != "" {
		if c.Paths.FallbackDir, err = expandPath(c.Paths.FallbackDir); err != nil {
			return err
		}
	}
	if strings.TrimSpace(c.Downloader.TestSource) != "" {
		if c.Downloader.TestSource, err = expandPath(c.Downloader.TestSource); err != nil {
			return err
		}
	}
	for i, entry := range c.Downloader.FallbackPool {
		expanded, expandErr := expandPath(strings.TrimSpace(entry))
		if expandErr != nil {
			return expandErr
		}
		c.Downloader.FallbackPool[i] = expanded
	}
	if strings.TrimSpace(c.Publisher.TokenPath) != "" {
		if c.Publisher.TokenPath, err = expandPath(c.Publisher.TokenPath); err != nil {
			return err
		}
	}

	c.Publisher.BaseURL = strings.TrimRight(strings.TrimSpace(c.Publisher.BaseURL), "/")
	c.Publisher.Privacy = strings.ToLower(strings.TrimSpace(c.Publisher.Privacy))
	c.Render.DefaultChannel = strings.TrimSpace(c.Render.DefaultChannel)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)

	if c.Downloader.MaxNameAttempts <= 0 {
		c.Downloader.MaxNameAttempts = Default().Downloader.MaxNameAttempts
	}
	if c.Resolver.MaxDepth <= 0 {
		c.Resolver.MaxDepth = Default().Resolver.MaxDepth
	}
	if len(c.Resolver.ScriptMarkers) == 0 {
		c.Resolver.ScriptMarkers = Default().Resolver.ScriptMarkers
	}
	if len(c.Resolver.QuerySuffixes) == 0 {
		c.Resolver.QuerySuffixes = Default().Resolver.QuerySuffixes
	}
	return nil
}
