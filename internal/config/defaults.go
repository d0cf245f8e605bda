package config

// Default returns the built-in configuration values applied before any file
// or flag overrides.
func Default() Config {
	return Config{
		Paths: Paths{
			RawDir:       "~/.local/share/clipcart/raw",
			ProcessedDir: "~/.local/share/clipcart/processed",
			LogDir:       "~/.local/share/clipcart/logs",
		},
		Downloader: Downloader{
			FetchTimeout:    30,
			RemuxTimeout:    300,
			MaxNameAttempts: 49,
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
		},
		Resolver: Resolver{
			SearchTimeout: 20,
			QuerySuffixes: []string{"review", "unboxing", "gadget", "shorts"},
			ScriptMarkers: []string{"_runData_", "__INITIAL_DATA__", "g_config", "auction"},
			MaxDepth:      32,
		},
		Render: Render{
			EncodeTimeout: 600,
		},
		Publisher: Publisher{
			UploadTimeout: 900,
			Privacy:       "public",
		},
		Workflow: Workflow{
			PollInterval:       30,
			ErrorRetryInterval: 10,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
		Notifications: Notifications{
			RequestTimeout: 10,
		},
	}
}
