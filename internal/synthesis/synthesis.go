// Package synthesis implements the speech-synthesis stage: it renders the
// scraped chapter text to a raw audio file through the external
// synthesizer.
package synthesis

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"lorecast/internal/catalog"
	"lorecast/internal/logging"
	"lorecast/internal/queue"
	"lorecast/internal/services"
	"lorecast/internal/services/tts"
	"lorecast/internal/stage"
	"lorecast/internal/store"
)

const stageName = string(queue.StageSynthesis)

// Handler processes speech-synthesis jobs.
type Handler struct {
	store   *store.Client
	tts     tts.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewHandler constructs the synthesis stage handler. A zero timeout leaves
// the synthesis run unbounded.
func NewHandler(st *store.Client, client tts.Client, timeout time.Duration) *Handler {
	return &Handler{store: st, tts: client, timeout: timeout, logger: logging.NewNop()}
}

// Stage implements stage.Handler.
func (h *Handler) Stage() queue.Stage { return queue.StageSynthesis }

// SetLogger implements stage.LoggerAware.
func (h *Handler) SetLogger(logger *slog.Logger) { h.logger = logger }

// Handle synthesizes the chapter text to the chapter's wav path.
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

	if err := os.MkdirAll(filepath.Dir(chapter.WAVPath), 0o755); err != nil {
		return stage.Result{}, services.Wrap(services.ErrTransient, stageName, "synthesize", "ensure audio directory", err)
	}

	runCtx := ctx
	if h.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	started := time.Now()
	if err := h.tts.Synthesize(runCtx, content.Content, chapter.WAVPath); err != nil {
		if runCtx.Err() != nil && ctx.Err() == nil {
			return stage.Result{}, services.Wrap(services.ErrTimeout, stageName, "synthesize", "synthesis exceeded its time bound", err)
		}
		return stage.Result{}, services.Wrap(services.ErrExternalTool, stageName, "synthesize", "synthesizer run failed", err)
	}

	h.logger.Info("chapter audio synthesized",
		logging.String("wav", chapter.WAVPath),
		logging.Duration("elapsed", time.Since(started)),
	)
	return stage.Result{Next: queue.StageMux}, nil
}

var _ stage.Handler = (*Handler)(nil)
