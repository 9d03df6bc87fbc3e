// Package scrape implements the chapter-scrape stage: it marks the chapter
// as processing, pulls the chapter text from its source page, and persists
// the scraped content.
package scrape

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"lorecast/internal/catalog"
	"lorecast/internal/logging"
	"lorecast/internal/queue"
	"lorecast/internal/services"
	"lorecast/internal/services/scraper"
	"lorecast/internal/stage"
	"lorecast/internal/store"
)

const stageName = string(queue.StageScrape)

// Handler processes chapter-scrape jobs.
type Handler struct {
	store   *store.Client
	scraper scraper.Service
	logger  *slog.Logger
}

// NewHandler constructs the chapter-scrape stage handler.
func NewHandler(st *store.Client, sc scraper.Service) *Handler {
	return &Handler{store: st, scraper: sc, logger: logging.NewNop()}
}

// Stage implements stage.Handler.
func (h *Handler) Stage() queue.Stage { return queue.StageScrape }

// SetLogger implements stage.LoggerAware.
func (h *Handler) SetLogger(logger *slog.Logger) { h.logger = logger }

// Handle scrapes one chapter's text. An empty scrape result is a retryable
// failure; source pages render intermittently behind the browser endpoint.
func (h *Handler) Handle(ctx context.Context, job *queue.Job) (stage.Result, error) {
	chapter, err := store.Get[catalog.Chapter](ctx, h.store, job.Fingerprint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return stage.Result{}, services.Wrap(services.ErrNotFound, stageName, "load chapter", "chapter record missing", err)
		}
		return stage.Result{}, err
	}

	chapter.Status = catalog.StatusProcessing
	if err := h.store.Update(ctx, chapter); err != nil {
		return stage.Result{}, err
	}

	content, err := h.scraper.ChapterContent(ctx, chapter.URL)
	if err != nil {
		return stage.Result{}, services.Wrap(services.ErrExternalTool, stageName, "scrape content", "chapter content scrape failed", err)
	}
	if strings.TrimSpace(content.Content) == "" {
		return stage.Result{}, services.Wrap(services.ErrTransient, stageName, "scrape content", "chapter page yielded no text", scraper.ErrNoResult)
	}
	content.ChapterHash = chapter.Hash

	if err := h.store.Save(ctx, content); err != nil {
		return stage.Result{}, err
	}
	if err := writeTextFile(chapter.TextPath, content.Content); err != nil {
		return stage.Result{}, err
	}

	h.logger.Info("chapter content scraped",
		logging.String("title", content.Title),
		logging.Int("characters", len(content.Content)),
	)
	return stage.Result{Next: queue.StageSynthesis}, nil
}

// writeTextFile keeps a plain-text copy of the chapter alongside the
// produced media so the synced archive is self-contained.
func writeTextFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return services.Wrap(services.ErrTransient, stageName, "write text", "ensure text directory", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return services.Wrap(services.ErrTransient, stageName, "write text", "persist chapter text", err)
	}
	return nil
}

var _ stage.Handler = (*Handler)(nil)
