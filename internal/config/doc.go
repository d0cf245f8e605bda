// Package config loads, validates, and normalizes the TOML configuration for
// the clipcart pipeline: storage paths, stage tuning, publisher credentials,
// workflow intervals, logging, and notifications.
package config
