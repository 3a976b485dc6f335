package analysis

import "time"

// Record is one pipeline run's inputs and serialized output.
type Record struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	Query     string    `json:"query"`
	Result    string    `json:"result"` // JSON string of the pipeline result
	CreatedAt time.Time `json:"created_at"`
	UserID    *string   `json:"user_id,omitempty"`
}
