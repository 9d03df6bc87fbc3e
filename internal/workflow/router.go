package workflow

import (
	"context"
	"log/slog"
	"time"

	"lorecast/internal/catalog"
	"lorecast/internal/logging"
	"lorecast/internal/queue"
	"lorecast/internal/store"
)

// enrichFollowerDelay staggers chapters that lose the enrichment lock so
// the winner can persist metadata before they are examined again.
const enrichFollowerDelay = 30 * time.Second

// EnrichLockName returns the per-book lock guarding duplicate enrichment.
func EnrichLockName(bookHash string) string {
	return "enrich:" + bookHash
}

// Router owns the conditional dispatch decision after chapter creation:
// chapters of books that already have a metadata record go straight to
// chapter-scrape; otherwise enrichment runs first.
type Router struct {
	store     *store.Client
	queue     *queue.Client
	enrichTTL time.Duration
	logger    *slog.Logger
}

// NewRouter constructs a router over the shared store and queue.
func NewRouter(st *store.Client, qc *queue.Client, enrichTTL time.Duration, logger *slog.Logger) *Router {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Router{store: st, queue: qc, enrichTTL: enrichTTL, logger: logger}
}

// RouteChapter dispatches a freshly created or rescraped chapter to its
// next stage. The metadata-existence check and the enqueue are not one
// transaction; the per-book enrichment lock keeps concurrent chapters of a
// brand-new book from racing into duplicate metadata scrapes.
func (r *Router) RouteChapter(ctx context.Context, chapter *catalog.Chapter) error {
	exists, err := r.store.Exists(ctx, catalog.KindMetadata, chapter.BookHash)
	if err != nil {
		return err
	}
	if exists {
		r.logger.Info("metadata exists, routing chapter to scrape",
			logging.String(logging.FieldBookHash, chapter.BookHash),
			logging.String(logging.FieldChapterHash, chapter.Hash),
		)
		return r.queue.Enqueue(ctx, queue.NewChapterJob(queue.StageScrape, chapter.Hash))
	}

	job := queue.NewChapterJob(queue.StageEnrichment, chapter.Hash)
	won, err := r.store.AcquireLock(ctx, EnrichLockName(chapter.BookHash), r.enrichTTL)
	if err != nil {
		return err
	}
	if won {
		r.logger.Info("no metadata yet, routing chapter to enrichment",
			logging.String(logging.FieldBookHash, chapter.BookHash),
			logging.String(logging.FieldChapterHash, chapter.Hash),
		)
		return r.queue.Enqueue(ctx, job)
	}

	// Another chapter of this book is already enriching; trail behind it.
	r.logger.Info("enrichment in flight for book, delaying chapter",
		logging.String(logging.FieldBookHash, chapter.BookHash),
		logging.String(logging.FieldChapterHash, chapter.Hash),
		logging.Duration("delay", enrichFollowerDelay),
	)
	return r.queue.EnqueueAfter(ctx, job, enrichFollowerDelay)
}
