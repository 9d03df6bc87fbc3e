package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"lorecast/internal/catalog"
	"lorecast/internal/config"
	"lorecast/internal/logging"
	"lorecast/internal/queue"
	"lorecast/internal/services"
	"lorecast/internal/stage"
	"lorecast/internal/store"
)

// reclaimIdle is how long a delivery may sit unacked before another worker
// takes it over, covering workers that crashed mid-handler.
const reclaimIdle = 5 * time.Minute

// Manager runs the pipeline: one worker per registered stage pulls jobs
// from that stage's stream, invokes the handler, and dispatches the
// handler's result. Acks happen only after the outcome is persisted.
type Manager struct {
	cfg      *config.Config
	store    *store.Client
	queue    *queue.Client
	router   *Router
	logger   *slog.Logger
	handlers map[queue.Stage]stage.Handler

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewManager constructs a manager over the shared store and queue.
func NewManager(cfg *config.Config, st *store.Client, qc *queue.Client, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	enrichTTL := time.Duration(cfg.Workflow.EnrichLockSeconds) * time.Second
	return &Manager{
		cfg:      cfg,
		store:    st,
		queue:    qc,
		router:   NewRouter(st, qc, enrichTTL, logger),
		logger:   logging.NewComponentLogger(logger, "workflow"),
		handlers: make(map[queue.Stage]stage.Handler),
	}
}

// Router exposes the dispatch router so handlers can share it.
func (m *Manager) Router() *Router {
	return m.router
}

// Register installs a handler for its stage. Must be called before Start.
func (m *Manager) Register(h stage.Handler) {
	if aware, ok := h.(stage.LoggerAware); ok {
		aware.SetLogger(logging.NewComponentLogger(m.logger, string(h.Stage())))
	}
	m.handlers[h.Stage()] = h
}

// Start creates the consumer groups and launches the promoter loop plus one
// worker goroutine per registered stage. It returns immediately; Stop or
// context cancellation shuts the workers down.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return fmt.Errorf("workflow manager already started")
	}
	if len(m.handlers) == 0 {
		return fmt.Errorf("workflow manager has no registered handlers")
	}
	if err := m.queue.EnsureGroups(ctx); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.started = true

	m.wg.Add(1)
	go m.promoteLoop(runCtx)

	for st := range m.handlers {
		m.wg.Add(1)
		go m.workerLoop(runCtx, st)
	}

	m.logger.Info("workflow manager started", logging.Int("stages", len(m.handlers)))
	return nil
}

// Stop cancels the workers and waits for in-flight handlers to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	started := m.started
	m.mu.Unlock()
	if !started {
		return
	}
	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
	m.logger.Info("workflow manager stopped")
}

// Inject seeds the pipeline with a book discovery job.
func (m *Manager) Inject(ctx context.Context, req queue.InjectionRequest) (*queue.Job, error) {
	if req.BookURL == "" {
		return nil, services.Wrap(services.ErrValidation, string(queue.StageDiscovery), "inject", "book URL is required", nil)
	}
	job := queue.NewDiscoveryJob(req)
	if err := m.queue.Enqueue(ctx, job); err != nil {
		return nil, err
	}
	m.logger.Info("book injected",
		logging.String(logging.FieldCorrelationID, job.ID),
		logging.String("book_url", req.BookURL),
	)
	return job, nil
}

func (m *Manager) promoteLoop(ctx context.Context) {
	defer m.wg.Done()
	interval := time.Duration(m.cfg.Workflow.PromoteInterval) * time.Second
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			promoted, err := m.queue.PromoteDue(ctx, time.Now())
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				m.logger.Warn("promoting scheduled jobs failed", logging.Error(err))
				continue
			}
			if promoted > 0 {
				m.logger.Debug("promoted scheduled jobs", logging.Int("count", promoted))
			}
		}
	}
}

func (m *Manager) workerLoop(ctx context.Context, st queue.Stage) {
	defer m.wg.Done()

	consumer := consumerName(st)
	block := time.Duration(m.cfg.Workflow.DequeueBlock) * time.Second
	if block <= 0 {
		block = 5 * time.Second
	}
	lastReclaim := time.Now()

	for {
		if ctx.Err() != nil {
			return
		}

		if time.Since(lastReclaim) >= reclaimIdle {
			lastReclaim = time.Now()
			reclaimed, err := m.queue.Reclaim(ctx, st, consumer, reclaimIdle)
			if err != nil && ctx.Err() == nil {
				m.logger.Warn("reclaiming stale deliveries failed",
					logging.String(logging.FieldStage, string(st)),
					logging.Error(err),
				)
			}
			for _, delivery := range reclaimed {
				m.process(ctx, delivery)
			}
		}

		delivery, err := m.queue.Dequeue(ctx, st, consumer, block)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.logger.Warn("dequeue failed",
				logging.String(logging.FieldStage, string(st)),
				logging.Error(err),
			)
			time.Sleep(time.Second)
			continue
		}
		if delivery == nil {
			continue
		}
		m.process(ctx, delivery)
	}
}

// process runs one delivery through its handler and settles the outcome.
// The message is acked in every branch except an infrastructure failure,
// where redelivery via Reclaim is the recovery path.
func (m *Manager) process(ctx context.Context, delivery *queue.Delivery) {
	job := delivery.Job
	handler, ok := m.handlers[job.Stage]
	if !ok {
		m.logger.Error("no handler for stage, dropping job",
			logging.String(logging.FieldStage, string(job.Stage)),
			logging.String(logging.FieldCorrelationID, job.ID),
		)
		_ = m.queue.Ack(ctx, job.Stage, delivery.MessageID)
		return
	}

	jobCtx := services.WithStage(ctx, string(job.Stage))
	jobCtx = services.WithRequestID(jobCtx, job.ID)
	if job.Fingerprint != "" {
		jobCtx = services.WithChapterHash(jobCtx, job.Fingerprint)
	}

	logger := m.logger.With(logging.Args(
		logging.String(logging.FieldStage, string(job.Stage)),
		logging.String(logging.FieldCorrelationID, job.ID),
		logging.Int(logging.FieldAttempt, job.Attempt),
	)...)
	if job.Fingerprint != "" {
		logger = logger.With(logging.Args(logging.String(logging.FieldChapterHash, job.Fingerprint))...)
	}

	started := time.Now()
	result, err := handler.Handle(jobCtx, job)
	elapsed := time.Since(started)

	switch {
	case err == nil:
		logger.Info("stage completed", logging.Duration("elapsed", elapsed))
		if result.Next != "" {
			next := queue.NewChapterJob(result.Next, job.Fingerprint)
			if enqueueErr := m.queue.EnqueueAfter(ctx, next, result.Delay); enqueueErr != nil {
				logger.Error("dispatching next stage failed",
					logging.String("next_stage", string(result.Next)),
					logging.Error(enqueueErr),
				)
				// Leave unacked; redelivery reruns the handler, which
				// must tolerate repeating completed work.
				return
			}
		}
		if result.Note != "" {
			logger.Info(result.Note)
		}
		_ = m.queue.Ack(ctx, job.Stage, delivery.MessageID)

	case ctx.Err() != nil:
		// Shutdown interrupted the handler; leave the delivery pending.
		return

	case services.IsFatal(err):
		logger.Error("stage failed permanently", logging.Error(err), logging.Duration("elapsed", elapsed))
		m.deadLetter(ctx, job, err)
		_ = m.queue.Ack(ctx, job.Stage, delivery.MessageID)

	default:
		policy := m.policyFor(job.Stage)
		if policy.Exhausted(job.Attempt) {
			logger.Error("stage exhausted retries", logging.Error(err))
			m.deadLetter(ctx, job, err)
			m.markFailed(ctx, job)
			_ = m.queue.Ack(ctx, job.Stage, delivery.MessageID)
			return
		}
		delay := policy.Delay(job.Attempt)
		logger.Warn("stage failed, scheduling retry",
			logging.Error(err),
			logging.Duration("retry_in", delay),
		)
		if enqueueErr := m.queue.EnqueueAfter(ctx, job.Retry(), delay); enqueueErr != nil {
			logger.Error("scheduling retry failed", logging.Error(enqueueErr))
			return
		}
		_ = m.queue.Ack(ctx, job.Stage, delivery.MessageID)
	}
}

// deadLetter persists an operator-visible record of the dropped job.
func (m *Manager) deadLetter(ctx context.Context, job *queue.Job, cause error) {
	record := &catalog.DeadLetter{
		JobID:       job.ID,
		Stage:       string(job.Stage),
		ChapterHash: job.Fingerprint,
		Error:       cause.Error(),
		Attempts:    job.Attempt + 1,
		FailedAt:    time.Now().UTC(),
	}
	if err := m.store.Save(ctx, record); err != nil {
		m.logger.Error("saving dead letter failed",
			logging.String(logging.FieldCorrelationID, job.ID),
			logging.Error(err),
		)
	}
}

// markFailed flips the chapter behind an exhausted job to its terminal
// failed status so operators can find and reinject it.
func (m *Manager) markFailed(ctx context.Context, job *queue.Job) {
	if job.Fingerprint == "" {
		return
	}
	chapter, err := store.Get[catalog.Chapter](ctx, m.store, job.Fingerprint)
	if err != nil {
		m.logger.Error("loading chapter for failure marking failed",
			logging.String(logging.FieldChapterHash, job.Fingerprint),
			logging.Error(err),
		)
		return
	}
	chapter.Status = catalog.StatusFailed
	if err := m.store.Update(ctx, chapter); err != nil {
		m.logger.Error("marking chapter failed errored",
			logging.String(logging.FieldChapterHash, job.Fingerprint),
			logging.Error(err),
		)
	}
}

// policyFor returns the retry policy for a stage. Remote sync transfers
// are long and contention-prone, so they get fewer attempts with longer
// gaps than the scraping and synthesis stages.
func (m *Manager) policyFor(st queue.Stage) Policy {
	wf := m.cfg.Workflow
	if st == queue.StageSync {
		return Policy{
			MaxRetries: wf.SyncMaxRetries,
			BaseDelay:  time.Duration(wf.SyncRetryBase) * time.Second,
			MaxDelay:   time.Duration(wf.RetryMaxSeconds) * time.Second,
			Jitter:     true,
		}
	}
	return Policy{
		MaxRetries: wf.MaxRetries,
		BaseDelay:  time.Duration(wf.RetryBaseSeconds) * time.Second,
		MaxDelay:   time.Duration(wf.RetryMaxSeconds) * time.Second,
		Jitter:     true,
	}
}

func consumerName(st queue.Stage) string {
	host, err := os.Hostname()
	if err != nil {
		host = "lorecast"
	}
	return fmt.Sprintf("%s-%d-%s", host, os.Getpid(), st)
}
