package jobs

import "time"

// State of a queued pipeline run.
type State string

const (
	StateQueued   State = "queued"
	StateStarted  State = "started"
	StateFinished State = "finished"
	StateFailed   State = "failed"
)

// Job is a deferred pipeline run. The uploaded document lives in the
// artifact store under ObjectKey until the worker has processed it.
type Job struct {
	ID         string    `json:"id"`
	ObjectKey  string    `json:"object_key"`
	FileName   string    `json:"file_name"`
	Query      string    `json:"query"`
	UserID     *string   `json:"user_id,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Status is the last known state of a job.
type Status struct {
	JobID     string    `json:"job_id"`
	State     State     `json:"state"`
	RecordID  string    `json:"record_id,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
