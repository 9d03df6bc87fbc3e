package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InjectionRequest is the inbound payload that seeds a book-discovery job.
type InjectionRequest struct {
	BookURL      string `json:"book_url"`
	MetadataURL  string `json:"metadata_url"`
	ShortName    string `json:"short_name"`
	StartFromURL string `json:"start_from_url"`
	EndAtURL     string `json:"end_at_url"`
}

// Job is a single (stage, fingerprint) dispatch instance flowing through a
// stream. Discovery jobs carry the injection request instead of a
// fingerprint; every other stage resolves its entity by fingerprint.
type Job struct {
	ID          string            `json:"id"`
	Stage       Stage             `json:"stage"`
	Fingerprint string            `json:"fingerprint,omitempty"`
	Request     *InjectionRequest `json:"request,omitempty"`
	Attempt     int               `json:"attempt"`
	EnqueuedAt  time.Time         `json:"enqueued_at"`
}

// NewChapterJob builds a job carrying a chapter fingerprint to a stage.
func NewChapterJob(stage Stage, fingerprint string) *Job {
	return &Job{
		ID:          uuid.NewString(),
		Stage:       stage,
		Fingerprint: fingerprint,
		EnqueuedAt:  time.Now().UTC(),
	}
}

// NewDiscoveryJob builds the initial job for an injected book.
func NewDiscoveryJob(req InjectionRequest) *Job {
	return &Job{
		ID:         uuid.NewString(),
		Stage:      StageDiscovery,
		Request:    &req,
		EnqueuedAt: time.Now().UTC(),
	}
}

// Retry returns a copy of the job with its attempt counter advanced.
func (j *Job) Retry() *Job {
	cp := *j
	cp.Attempt = j.Attempt + 1
	cp.EnqueuedAt = time.Now().UTC()
	return &cp
}

func (j *Job) encode() (string, error) {
	raw, err := json.Marshal(j)
	if err != nil {
		return "", fmt.Errorf("encode job %s: %w", j.ID, err)
	}
	return string(raw), nil
}

func decodeJob(raw string) (*Job, error) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	if _, ok := ParseStage(string(job.Stage)); !ok {
		return nil, fmt.Errorf("decode job %s: unknown stage %q", job.ID, job.Stage)
	}
	return &job, nil
}
