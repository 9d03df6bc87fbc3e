// Package enrichment implements the metadata-enrichment stage: it scrapes
// book-level descriptive tags from the external metadata page, downloads
// the cover image, and persists the metadata record keyed by book.
package enrichment

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"lorecast/internal/catalog"
	"lorecast/internal/logging"
	"lorecast/internal/queue"
	"lorecast/internal/services"
	"lorecast/internal/services/scraper"
	"lorecast/internal/stage"
	"lorecast/internal/store"
	"lorecast/internal/workflow"
)

const stageName = string(queue.StageEnrichment)

// Handler processes enrichment jobs.
type Handler struct {
	store   *store.Client
	scraper scraper.Service
	http    *http.Client
	logger  *slog.Logger
}

// NewHandler constructs the enrichment stage handler. The HTTP client is
// used for cover image downloads.
func NewHandler(st *store.Client, sc scraper.Service, httpClient *http.Client) *Handler {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Handler{
		store:   st,
		scraper: sc,
		http:    httpClient,
		logger:  logging.NewNop(),
	}
}

// Stage implements stage.Handler.
func (h *Handler) Stage() queue.Stage { return queue.StageEnrichment }

// SetLogger implements stage.LoggerAware.
func (h *Handler) SetLogger(logger *slog.Logger) { h.logger = logger }

// Handle enriches the chapter's parent book. Chapters that trailed behind
// an in-flight enrichment re-check here and skip straight to scraping when
// the winner already persisted the metadata.
func (h *Handler) Handle(ctx context.Context, job *queue.Job) (stage.Result, error) {
	chapter, err := store.Get[catalog.Chapter](ctx, h.store, job.Fingerprint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return stage.Result{}, services.Wrap(services.ErrNotFound, stageName, "load chapter", "chapter record missing", err)
		}
		return stage.Result{}, err
	}

	exists, err := h.store.Exists(ctx, catalog.KindMetadata, chapter.BookHash)
	if err != nil {
		return stage.Result{}, err
	}
	if exists {
		return stage.Result{Next: queue.StageScrape, Note: "metadata already present"}, nil
	}

	book, err := store.Get[catalog.Book](ctx, h.store, chapter.BookHash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return stage.Result{}, services.Wrap(services.ErrNotFound, stageName, "load book", "book record missing", err)
		}
		return stage.Result{}, err
	}

	meta, err := h.scraper.BookMetadata(ctx, book.MetadataURL)
	if err != nil {
		return stage.Result{}, services.Wrap(services.ErrExternalTool, stageName, "scrape metadata", "metadata scrape failed", err)
	}
	meta.BookHash = chapter.BookHash

	if meta.ImageURL != "" {
		if err := scraper.DownloadImage(ctx, h.http, meta.ImageURL, chapter.CoverImagePath); err != nil {
			// Cover art is cosmetic; the mux stage tolerates a missing file.
			h.logger.Warn("cover image download failed",
				logging.String("image_url", meta.ImageURL),
				logging.Error(err),
			)
		}
	}

	if err := h.store.Save(ctx, meta); err != nil {
		return stage.Result{}, err
	}

	// The routing lock held since dispatch is no longer needed once the
	// metadata record is visible.
	if err := h.store.ReleaseLock(ctx, workflow.EnrichLockName(chapter.BookHash)); err != nil {
		h.logger.Warn("releasing enrichment lock failed",
			logging.String(logging.FieldBookHash, chapter.BookHash),
			logging.Error(err),
		)
	}

	h.logger.Info("book metadata persisted",
		logging.String(logging.FieldBookHash, chapter.BookHash),
		logging.String("album", meta.Album),
		logging.String("artist", meta.Artist),
	)
	return stage.Result{Next: queue.StageScrape}, nil
}

var _ stage.Handler = (*Handler)(nil)
