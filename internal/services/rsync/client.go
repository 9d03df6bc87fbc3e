// Package rsync wraps the transfer collaborator that replicates a book's
// storage subtree to the remote archive. Transfers are one-way and
// update-only; nothing is ever deleted remotely.
package rsync

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

var commandContext = exec.CommandContext

// Client defines replication behaviour.
type Client interface {
	Replicate(ctx context.Context, sourceDir, destination string) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the rsync command.
type CLI struct {
	binary     string
	sshKeyPath string
	timeout    time.Duration
}

// NewCLI constructs a CLI client authenticating with the given key file and
// bounding each transfer by timeout.
func NewCLI(sshKeyPath string, timeout time.Duration, opts ...Option) *CLI {
	cli := &CLI{binary: "rsync", sshKeyPath: sshKeyPath, timeout: timeout}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Replicate pushes the source directory to the remote destination.
func (c *CLI) Replicate(ctx context.Context, sourceDir, destination string) error {
	if sourceDir == "" {
		return errors.New("source directory required")
	}
	if destination == "" {
		return errors.New("destination required")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{
		"-avz",
		"--update",
		"-e", fmt.Sprintf("ssh -i %s -o StrictHostKeyChecking=no -o UserKnownHostsFile=/dev/null", c.sshKeyPath),
		sourceDir,
		destination,
	}

	cmd := commandContext(ctx, c.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("rsync transfer: %w", ctx.Err())
		}
		return fmt.Errorf("rsync transfer: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

var _ Client = (*CLI)(nil)
