// Package config loads, validates, and normalizes the TOML configuration
// used by the lorecast daemon and CLI.
package config
