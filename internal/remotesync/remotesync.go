// Package remotesync implements the remote-sync stage: it replicates the
// produced media tree to the remote archive, deduplicating concurrent
// sweeps for the same book behind a short-lived lock.
package remotesync

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"lorecast/internal/catalog"
	"lorecast/internal/logging"
	"lorecast/internal/queue"
	"lorecast/internal/services"
	"lorecast/internal/services/rsync"
	"lorecast/internal/stage"
	"lorecast/internal/store"
)

const stageName = string(queue.StageSync)

// LockName returns the per-book dedup lock key. Keyed by display name
// because concurrent sweeps for the same book are what the lock collapses.
func LockName(bookName string) string {
	return "sync:" + bookName
}

// Handler processes remote-sync jobs.
type Handler struct {
	store       *store.Client
	transfer    rsync.Client
	destination string
	lockTTL     time.Duration
	logger      *slog.Logger
}

// NewHandler constructs the remote-sync stage handler.
func NewHandler(st *store.Client, transfer rsync.Client, destination string, lockTTL time.Duration) *Handler {
	return &Handler{
		store:       st,
		transfer:    transfer,
		destination: destination,
		lockTTL:     lockTTL,
		logger:      logging.NewNop(),
	}
}

// Stage implements stage.Handler.
func (h *Handler) Stage() queue.Stage { return queue.StageSync }

// SetLogger implements stage.LoggerAware.
func (h *Handler) SetLogger(logger *slog.Logger) { h.logger = logger }

// Handle replicates the chapter's storage tree to the remote archive.
// Losing the dedup lock is a clean no-op: another sweep for the book is
// already running and will carry this chapter's files with it.
func (h *Handler) Handle(ctx context.Context, job *queue.Job) (stage.Result, error) {
	chapter, err := store.Get[catalog.Chapter](ctx, h.store, job.Fingerprint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return stage.Result{}, services.Wrap(services.ErrNotFound, stageName, "load chapter", "chapter record missing", err)
		}
		return stage.Result{}, err
	}

	won, err := h.store.AcquireLock(ctx, LockName(chapter.BookName), h.lockTTL)
	if err != nil {
		return stage.Result{}, err
	}
	if !won {
		return stage.Result{Note: "sync already in progress for " + chapter.BookName + ", skipping duplicate request"}, nil
	}
	// Bound the lock's lifetime to this transfer attempt, success or not.
	defer func() {
		if err := h.store.ReleaseLock(context.WithoutCancel(ctx), LockName(chapter.BookName)); err != nil {
			h.logger.Warn("releasing sync lock failed",
				logging.String("book", chapter.BookName),
				logging.Error(err),
			)
		}
	}()

	if err := h.store.AddSetMember(ctx, store.PendingSyncKey, chapter.BookName); err != nil {
		return stage.Result{}, err
	}

	started := time.Now()
	if err := h.transfer.Replicate(ctx, chapter.StaticBasePath, h.destination); err != nil {
		// Pending membership is observability only; clear it so a failed
		// book does not look in-flight forever.
		if remErr := h.store.RemoveSetMember(context.WithoutCancel(ctx), store.PendingSyncKey, chapter.BookName); remErr != nil {
			h.logger.Warn("clearing pending sync marker failed", logging.Error(remErr))
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return stage.Result{}, services.Wrap(services.ErrTimeout, stageName, "replicate", "transfer exceeded its time bound", err)
		}
		return stage.Result{}, services.Wrap(services.ErrExternalTool, stageName, "replicate", "transfer run failed", err)
	}

	if err := h.store.RemoveSetMember(ctx, store.PendingSyncKey, chapter.BookName); err != nil {
		return stage.Result{}, err
	}

	h.logger.Info("book replicated to remote archive",
		logging.String("book", chapter.BookName),
		logging.String("destination", h.destination),
		logging.Duration("elapsed", time.Since(started)),
	)
	return stage.Result{}, nil
}

var _ stage.Handler = (*Handler)(nil)
