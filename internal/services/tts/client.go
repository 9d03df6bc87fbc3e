// Package tts wraps the command-line speech synthesizer that turns chapter
// text into raw audio.
package tts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var commandContext = exec.CommandContext

// Client defines speech synthesis behaviour.
type Client interface {
	Synthesize(ctx context.Context, text, outputPath string) error
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

// WithVoice selects a synthesis voice model.
func WithVoice(voice string) Option {
	return func(c *CLI) {
		c.voice = voice
	}
}

// CLI wraps a piper-style synthesizer that reads text on stdin and writes
// a wav file.
type CLI struct {
	binary string
	voice  string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "piper"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Synthesize renders text to the output path.
func (c *CLI) Synthesize(ctx context.Context, text, outputPath string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("synthesis text required")
	}
	if outputPath == "" {
		return errors.New("output path required")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("ensure audio directory: %w", err)
	}

	args := []string{"--output_file", outputPath}
	if c.voice != "" {
		args = append(args, "--model", c.voice)
	}

	cmd := commandContext(ctx, c.binary, args...)
	cmd.Stdin = strings.NewReader(text)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("synthesize: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

var _ Client = (*CLI)(nil)
