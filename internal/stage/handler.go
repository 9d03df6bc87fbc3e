// Package stage defines the contract the workflow manager needs from each
// pipeline stage handler.
package stage

import (
	"context"
	"log/slog"
	"time"

	"lorecast/internal/queue"
)

// Result tells the manager what to dispatch after a successful handle.
// A zero Next means the job ends here.
type Result struct {
	Next  queue.Stage
	Delay time.Duration
	Note  string
}

// Handler is one pipeline stage. Handle performs the stage's unit of work
// against the job's entity and returns the downstream dispatch, if any.
// Failure classification rides on the returned error via the services
// sentinel taxonomy; the manager owns retry policy, not the handler.
type Handler interface {
	Stage() queue.Stage
	Handle(ctx context.Context, job *queue.Job) (Result, error)
}

// LoggerAware lets the manager hand stage-scoped loggers to handlers that
// want them.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}
