package catalog

import (
	"fmt"
	"strconv"
	"time"
)

// DeadLetter records a unit of work dropped after exhausting its retries,
// for operator inspection. Keyed by the job's correlation ID so repeated
// failures of the same fingerprint stay distinguishable.
type DeadLetter struct {
	JobID       string
	Stage       string
	ChapterHash string
	Error       string
	Attempts    int
	FailedAt    time.Time
}

// Kind implements store.Record.
func (d *DeadLetter) Kind() string { return KindDeadLetter }

// Key implements store.Record.
func (d *DeadLetter) Key() string { return d.JobID }

// MarshalFields implements store.Record.
func (d *DeadLetter) MarshalFields() (map[string]string, error) {
	return map[string]string{
		"job_id":       d.JobID,
		"stage":        d.Stage,
		"chapter_hash": d.ChapterHash,
		"error":        d.Error,
		"attempts":     strconv.Itoa(d.Attempts),
		"failed_at":    d.FailedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

// UnmarshalFields implements store.Record.
func (d *DeadLetter) UnmarshalFields(fields map[string]string) error {
	attempts, err := strconv.Atoi(fields["attempts"])
	if err != nil {
		return fmt.Errorf("dead letter %s: parse attempts: %w", fields["job_id"], err)
	}
	failedAt, err := time.Parse(time.RFC3339Nano, fields["failed_at"])
	if err != nil {
		return fmt.Errorf("dead letter %s: parse failed_at: %w", fields["job_id"], err)
	}
	d.JobID = fields["job_id"]
	d.Stage = fields["stage"]
	d.ChapterHash = fields["chapter_hash"]
	d.Error = fields["error"]
	d.Attempts = attempts
	d.FailedAt = failedAt
	return nil
}
