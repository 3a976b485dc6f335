// Package jobs runs queued pipeline jobs one at a time.
package jobs

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	domain "github.com/bryanwahyu/bloodtest-analyzer/internal/domain/jobs"
)

const (
	defaultPollTimeout = 5 * time.Second
	errorBackoff       = time.Second
)

// Processor handles one dequeued job.
type Processor interface {
	ProcessJob(ctx context.Context, job *domain.Job) error
}

type Worker struct {
	Queue     domain.Queue
	Processor Processor
	Logger    *zap.Logger
	// PollTimeout bounds each blocking dequeue so cancellation is noticed.
	PollTimeout time.Duration
}

// Run blocks until ctx is cancelled. A job in flight finishes first.
func (w *Worker) Run(ctx context.Context) error {
	log := w.Logger
	if log == nil {
		log = zap.NewNop()
	}
	timeout := w.PollTimeout
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}
	log.Info("worker started")

	for {
		if ctx.Err() != nil {
			log.Info("worker stopping")
			return nil
		}

		job, err := w.Queue.Dequeue(ctx, timeout)
		switch {
		case errors.Is(err, domain.ErrEmpty):
			continue
		case err != nil:
			if ctx.Err() != nil {
				continue
			}
			log.Warn("dequeue failed", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(errorBackoff):
			}
			continue
		}

		log.Info("job picked up", zap.String("job_id", job.ID), zap.String("file_name", job.FileName))
		// detached so a shutdown signal does not abort the pipeline midway
		if err := w.Processor.ProcessJob(context.WithoutCancel(ctx), job); err != nil {
			log.Warn("job ended with error", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
}
