// Package completion implements the terminal chapter stage: it flips the
// chapter to its completed status and schedules a delayed sync sweep for
// the book.
package completion

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"lorecast/internal/catalog"
	"lorecast/internal/logging"
	"lorecast/internal/queue"
	"lorecast/internal/services"
	"lorecast/internal/stage"
	"lorecast/internal/store"
)

const stageName = string(queue.StageCompletion)

// Handler processes completion jobs.
type Handler struct {
	store     *store.Client
	syncDelay time.Duration
	logger    *slog.Logger
}

// NewHandler constructs the completion stage handler. syncDelay spaces the
// sync sweep out so sibling chapters finishing around the same time settle
// first and collapse into one transfer.
func NewHandler(st *store.Client, syncDelay time.Duration) *Handler {
	return &Handler{store: st, syncDelay: syncDelay, logger: logging.NewNop()}
}

// Stage implements stage.Handler.
func (h *Handler) Stage() queue.Stage { return queue.StageCompletion }

// SetLogger implements stage.LoggerAware.
func (h *Handler) SetLogger(logger *slog.Logger) { h.logger = logger }

// Handle marks the chapter completed and dispatches a deliberately delayed
// remote-sync job.
func (h *Handler) Handle(ctx context.Context, job *queue.Job) (stage.Result, error) {
	chapter, err := store.Get[catalog.Chapter](ctx, h.store, job.Fingerprint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return stage.Result{}, services.Wrap(services.ErrNotFound, stageName, "load chapter", "chapter record missing", err)
		}
		return stage.Result{}, err
	}

	chapter.Status = catalog.StatusCompleted
	if err := h.store.Update(ctx, chapter); err != nil {
		return stage.Result{}, err
	}

	h.logger.Info("chapter completed",
		logging.String(logging.FieldBookHash, chapter.BookHash),
		logging.String("book", chapter.BookName),
		logging.String("title", chapter.Title),
	)
	return stage.Result{Next: queue.StageSync, Delay: h.syncDelay}, nil
}

var _ stage.Handler = (*Handler)(nil)
