package jobs

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrEmpty is returned by Dequeue when nothing arrived before the timeout.
	ErrEmpty = errors.New("queue is empty")
	// ErrNotFound is returned for unknown or expired job ids.
	ErrNotFound = errors.New("job not found")
)

// Queue port: a single named FIFO plus a job status table.
type Queue interface {
	Enqueue(ctx context.Context, j *Job) error
	Dequeue(ctx context.Context, timeout time.Duration) (*Job, error)
	SetStatus(ctx context.Context, s *Status) error
	Status(ctx context.Context, id string) (*Status, error)
}

// ArtifactStore port (penyimpanan dokumen upload untuk worker)
type ArtifactStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key, localPath string) error
	Remove(ctx context.Context, key string) error
}
