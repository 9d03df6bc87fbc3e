// Package muxing implements the media-mux stage: it composes subtitles from
// the scraped text, builds the tag set from book metadata, and produces the
// tagged mp4 and mp3 artifacts.
package muxing

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"lorecast/internal/catalog"
	"lorecast/internal/logging"
	"lorecast/internal/queue"
	"lorecast/internal/services"
	"lorecast/internal/services/ffmpeg"
	"lorecast/internal/stage"
	"lorecast/internal/store"
	"lorecast/internal/subtitles"
)

const stageName = string(queue.StageMux)

// placeholder fills any tag whose metadata field came back empty, keeping
// the produced files' tag sets uniform across players.
const placeholder = "empty"

// Handler processes media-mux jobs.
type Handler struct {
	store   *store.Client
	ffmpeg  ffmpeg.Client
	bitrate string
	logger  *slog.Logger
}

// NewHandler constructs the mux stage handler.
func NewHandler(st *store.Client, client ffmpeg.Client, bitrate string) *Handler {
	if bitrate == "" {
		bitrate = "320k"
	}
	return &Handler{store: st, ffmpeg: client, bitrate: bitrate, logger: logging.NewNop()}
}

// Stage implements stage.Handler.
func (h *Handler) Stage() queue.Stage { return queue.StageMux }

// SetLogger implements stage.LoggerAware.
func (h *Handler) SetLogger(logger *slog.Logger) { h.logger = logger }

// Handle muxes one chapter twice: an mp4 carrying cover art and subtitles,
// then an audio-with-cover mp3. Content and metadata may lag behind the
// chapter under redelivery, so their absence is retryable.
func (h *Handler) Handle(ctx context.Context, job *queue.Job) (stage.Result, error) {
	chapter, err := store.Get[catalog.Chapter](ctx, h.store, job.Fingerprint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return stage.Result{}, services.Wrap(services.ErrNotFound, stageName, "load chapter", "chapter record missing", err)
		}
		return stage.Result{}, err
	}

	content, err := store.Get[catalog.ChapterContent](ctx, h.store, job.Fingerprint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return stage.Result{}, services.Wrap(services.ErrTransient, stageName, "load content", "scraped content not yet persisted", err)
		}
		return stage.Result{}, err
	}

	meta, err := store.Get[catalog.Metadata](ctx, h.store, chapter.BookHash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return stage.Result{}, services.Wrap(services.ErrTransient, stageName, "load metadata", "book metadata not yet persisted", err)
		}
		return stage.Result{}, err
	}

	duration, err := h.ffmpeg.AudioDuration(ctx, chapter.WAVPath)
	if err != nil {
		return stage.Result{}, services.Wrap(services.ErrExternalTool, stageName, "probe audio", "audio duration probe failed", err)
	}

	subtitlePath, err := writeSubtitles(chapter.SubtitlePath, content.Content, duration)
	if err != nil {
		return stage.Result{}, err
	}

	tags := buildTags(chapter, meta)

	if err := h.ffmpeg.Mux(ctx, ffmpeg.MuxRequest{
		InputAudio:   chapter.WAVPath,
		CoverImage:   chapter.CoverImagePath,
		SubtitlePath: subtitlePath,
		OutputPath:   chapter.MP4Path,
		Format:       ffmpeg.FormatMP4,
		Bitrate:      h.bitrate,
		Tags:         tags,
	}); err != nil {
		return stage.Result{}, services.Wrap(services.ErrExternalTool, stageName, "mux mp4", "mp4 mux run failed", err)
	}

	if err := h.ffmpeg.Mux(ctx, ffmpeg.MuxRequest{
		InputAudio: chapter.WAVPath,
		CoverImage: chapter.CoverImagePath,
		OutputPath: chapter.MP3Path,
		Format:     ffmpeg.FormatMP3,
		Bitrate:    h.bitrate,
		Tags:       tags,
	}); err != nil {
		return stage.Result{}, services.Wrap(services.ErrExternalTool, stageName, "mux mp3", "mp3 mux run failed", err)
	}

	h.logger.Info("chapter media muxed",
		logging.String("mp4", chapter.MP4Path),
		logging.String("mp3", chapter.MP3Path),
		logging.Duration("audio_duration", duration),
	)
	return stage.Result{Next: queue.StageCompletion}, nil
}

// writeSubtitles composes the evenly spaced cue sheet. An empty cue sheet
// returns no path so the mux runs without a subtitle input.
func writeSubtitles(path, content string, total time.Duration) (string, error) {
	cues := subtitles.Distribute(subtitles.SplitSentences(content), total)
	if len(cues) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", services.Wrap(services.ErrTransient, stageName, "write subtitles", "ensure subtitle directory", err)
	}
	if err := os.WriteFile(path, []byte(subtitles.Compose(cues)), 0o644); err != nil {
		return "", services.Wrap(services.ErrTransient, stageName, "write subtitles", "persist subtitle file", err)
	}
	return path, nil
}

// buildTags derives the shared tag set for both produced containers.
func buildTags(chapter *catalog.Chapter, meta *catalog.Metadata) map[string]string {
	return map[string]string{
		"album":        orPlaceholder(chapter.BookName),
		"artist":       orPlaceholder(meta.Artist),
		"album_artist": orPlaceholder(meta.AlbumArtist),
		"comment":      orPlaceholder(meta.Comment),
		"composer":     orPlaceholder(meta.Composer),
		"copyright":    orPlaceholder(meta.Copyright),
		"genre":        orDefault(meta.Genre, "audiobook"),
		"compilation":  "1",
		"title":        orPlaceholder(chapter.Title),
		"track":        strconv.Itoa(chapter.Number),
		"date":         orPlaceholder(meta.ReleasedYear),
	}
}

func orPlaceholder(value string) string {
	return orDefault(value, placeholder)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

var _ stage.Handler = (*Handler)(nil)
