// Package discovery implements the book-discovery stage: it scrapes a
// book's chapter index, slices the requested range, persists the book and
// its pending chapters, and routes each chapter downstream.
package discovery

import (
	"context"
	"errors"
	"log/slog"

	"lorecast/internal/catalog"
	"lorecast/internal/config"
	"lorecast/internal/logging"
	"lorecast/internal/queue"
	"lorecast/internal/services"
	"lorecast/internal/services/scraper"
	"lorecast/internal/stage"
	"lorecast/internal/store"
	"lorecast/internal/workflow"
)

const stageName = string(queue.StageDiscovery)

// Handler processes book injection requests.
type Handler struct {
	cfg     *config.Config
	store   *store.Client
	scraper scraper.Service
	router  *workflow.Router
	logger  *slog.Logger
}

// NewHandler constructs the discovery stage handler.
func NewHandler(cfg *config.Config, st *store.Client, sc scraper.Service, router *workflow.Router) *Handler {
	return &Handler{
		cfg:     cfg,
		store:   st,
		scraper: sc,
		router:  router,
		logger:  logging.NewNop(),
	}
}

// Stage implements stage.Handler.
func (h *Handler) Stage() queue.Stage { return queue.StageDiscovery }

// SetLogger implements stage.LoggerAware.
func (h *Handler) SetLogger(logger *slog.Logger) { h.logger = logger }

// Handle scrapes the chapter index, persists the book restricted to the
// requested range, and creates one pending chapter per range entry.
// Chapters already completed by an earlier overlapping run are skipped.
func (h *Handler) Handle(ctx context.Context, job *queue.Job) (stage.Result, error) {
	req := job.Request
	if req == nil {
		return stage.Result{}, services.Wrap(services.ErrValidation, stageName, "handle", "discovery job carries no injection request", nil)
	}

	listing, err := h.scraper.BookChapters(ctx, req.BookURL)
	if err != nil {
		return stage.Result{}, services.Wrap(services.ErrExternalTool, stageName, "scrape book", "chapter index scrape failed", err)
	}

	ranged, err := FilterChapters(listing.Chapters, req.StartFromURL, req.EndAtURL)
	if err != nil {
		return stage.Result{}, services.Wrap(services.ErrValidation, stageName, "filter chapters", "start or end marker invalid", err)
	}

	bookName := req.ShortName
	if bookName == "" {
		bookName = listing.Title
	}

	links := make([]catalog.ChapterLink, 0, len(ranged))
	for _, entry := range ranged {
		links = append(links, entry.Link)
	}
	book := catalog.NewBook(listing.Title, req.MetadataURL, links)
	if err := h.store.Save(ctx, book); err != nil {
		return stage.Result{}, err
	}

	h.logger.Info("book discovered",
		logging.String(logging.FieldBookHash, book.Hash),
		logging.String("title", book.Title),
		logging.Int("chapters_in_range", len(ranged)),
		logging.Int("chapters_total", len(listing.Chapters)),
	)

	created := 0
	for _, entry := range ranged {
		chapter := catalog.NewChapter(book.Hash, bookName, entry.Link.Title, entry.Link.URL, entry.Number, h.cfg.Paths.StaticDir)

		done, err := h.alreadyCompleted(ctx, chapter.Hash)
		if err != nil {
			return stage.Result{}, err
		}
		if done {
			h.logger.Info("chapter already completed, skipping",
				logging.String(logging.FieldChapterHash, chapter.Hash),
				logging.String("title", chapter.Title),
			)
			continue
		}

		if err := h.store.Save(ctx, chapter); err != nil {
			return stage.Result{}, err
		}
		if err := h.store.AddSetMember(ctx, store.BookChaptersKey(book.Hash), chapter.Hash); err != nil {
			return stage.Result{}, err
		}
		if err := h.router.RouteChapter(ctx, chapter); err != nil {
			return stage.Result{}, err
		}
		created++
	}

	h.logger.Info("chapters dispatched",
		logging.String(logging.FieldBookHash, book.Hash),
		logging.Int("created", created),
		logging.Int("skipped", len(ranged)-created),
	)
	return stage.Result{Note: "discovered " + book.Title}, nil
}

func (h *Handler) alreadyCompleted(ctx context.Context, hash string) (bool, error) {
	existing, err := store.Get[catalog.Chapter](ctx, h.store, hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return existing.Status == catalog.StatusCompleted, nil
}

var _ stage.Handler = (*Handler)(nil)
