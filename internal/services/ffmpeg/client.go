// Package ffmpeg wraps the muxing collaborator that combines raw audio,
// cover art, subtitles, and a tag set into tagged media containers.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var commandContext = exec.CommandContext

// Format selects the output container for a mux run.
type Format string

const (
	FormatMP3 Format = "mp3"
	FormatMP4 Format = "mp4"
)

// MuxRequest describes one mux invocation.
type MuxRequest struct {
	InputAudio   string
	CoverImage   string
	SubtitlePath string // optional; only honored for FormatMP4
	OutputPath   string
	Format       Format
	Bitrate      string
	Tags         map[string]string
}

// Client defines muxing behaviour.
type Client interface {
	Mux(ctx context.Context, req MuxRequest) error
	AudioDuration(ctx context.Context, path string) (time.Duration, error)
}

// CLI wraps the ffmpeg and ffprobe binaries.
type CLI struct {
	ffmpegBinary  string
	ffprobeBinary string
}

// NewCLI constructs a CLI client using the given binaries, defaulting to
// ffmpeg/ffprobe on PATH.
func NewCLI(ffmpegBinary, ffprobeBinary string) *CLI {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	if ffprobeBinary == "" {
		ffprobeBinary = "ffprobe"
	}
	return &CLI{ffmpegBinary: ffmpegBinary, ffprobeBinary: ffprobeBinary}
}

// AudioDuration probes the duration of an audio file.
func (c *CLI) AudioDuration(ctx context.Context, path string) (time.Duration, error) {
	result, err := Inspect(ctx, c.ffprobeBinary, path)
	if err != nil {
		return 0, err
	}
	duration := result.Duration()
	if duration <= 0 {
		return 0, fmt.Errorf("no duration reported for %s", path)
	}
	return duration, nil
}

// Mux runs one ffmpeg invocation per request.
func (c *CLI) Mux(ctx context.Context, req MuxRequest) error {
	args, err := buildArgs(req)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return fmt.Errorf("ensure output directory: %w", err)
	}

	cmd := commandContext(ctx, c.ffmpegBinary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg mux: %w: %s", err, tail(string(output)))
	}
	return nil
}

func buildArgs(req MuxRequest) ([]string, error) {
	if req.InputAudio == "" {
		return nil, errors.New("input audio required")
	}
	if req.CoverImage == "" {
		return nil, errors.New("cover image required")
	}
	if req.OutputPath == "" {
		return nil, errors.New("output path required")
	}

	args := []string{"-y", "-i", req.InputAudio, "-i", req.CoverImage}

	withSubtitles := req.Format == FormatMP4 && req.SubtitlePath != ""
	if withSubtitles {
		args = append(args, "-i", req.SubtitlePath)
	}

	args = append(args, "-map", "0:a", "-map", "1:v")
	switch req.Format {
	case FormatMP4:
		args = append(args, "-c:a", "aac")
	case FormatMP3:
		args = append(args, "-c:a", "libmp3lame")
	default:
		return nil, fmt.Errorf("unsupported format %q", req.Format)
	}
	args = append(args, "-c:v", "mjpeg", "-disposition:v:0", "attached_pic")
	if withSubtitles {
		args = append(args, "-map", "2:s", "-c:s", "mov_text")
	}

	if req.Bitrate != "" {
		args = append(args, "-b:a", req.Bitrate)
	}

	// Deterministic tag ordering keeps invocations reproducible.
	keys := make([]string, 0, len(req.Tags))
	for key := range req.Tags {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		args = append(args, "-metadata", key+"="+req.Tags[key])
	}

	return append(args, req.OutputPath), nil
}

func tail(output string) string {
	trimmed := strings.TrimSpace(output)
	const max = 400
	if len(trimmed) <= max {
		return trimmed
	}
	return "..." + trimmed[len(trimmed)-max:]
}

var _ Client = (*CLI)(nil)
