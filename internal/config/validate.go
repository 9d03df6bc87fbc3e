package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate reports configuration that the daemon cannot run with.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.StaticDir) == "" {
		problems = append(problems, "paths.static_dir must be set")
	}
	if strings.TrimSpace(c.Redis.Addr) == "" {
		problems = append(problems, "redis.addr must be set")
	}
	if c.Workflow.MaxRetries < 0 {
		problems = append(problems, "workflow.max_retries must not be negative")
	}
	if c.Workflow.RetryBaseSeconds <= 0 {
		problems = append(problems, "workflow.retry_base_seconds must be positive")
	}
	if c.Workflow.RetryMaxSeconds < c.Workflow.RetryBaseSeconds {
		problems = append(problems, "workflow.retry_max_seconds must be at least retry_base_seconds")
	}
	if c.Sync.LockTTL <= 0 {
		problems = append(problems, "sync.lock_ttl must be positive")
	}
	if c.Sync.DispatchDelay < 0 {
		problems = append(problems, "sync.dispatch_delay must not be negative")
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not supported", c.Logging.Format))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
