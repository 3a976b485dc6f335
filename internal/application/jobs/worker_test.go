package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	domain "github.com/bryanwahyu/bloodtest-analyzer/internal/domain/jobs"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type chanQueue struct {
	jobs chan *domain.Job
	errs chan error
}

func (q *chanQueue) Enqueue(_ context.Context, j *domain.Job) error {
	q.jobs <- j
	return nil
}

func (q *chanQueue) Dequeue(ctx context.Context, timeout time.Duration) (*domain.Job, error) {
	select {
	case err := <-q.errs:
		return nil, err
	case j := <-q.jobs:
		return j, nil
	case <-time.After(timeout):
		return nil, domain.ErrEmpty
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *chanQueue) SetStatus(context.Context, *domain.Status) error { return nil }
func (q *chanQueue) Status(context.Context, string) (*domain.Status, error) {
	return nil, domain.ErrNotFound
}

type recorder struct {
	mu   sync.Mutex
	seen []string
	done chan struct{}
	fail bool
	// entered is signalled before waiting on block
	entered chan struct{}
	block   chan struct{}
}

func (r *recorder) ProcessJob(ctx context.Context, j *domain.Job) error {
	if r.block != nil {
		r.entered <- struct{}{}
		<-r.block
	}
	r.mu.Lock()
	r.seen = append(r.seen, j.ID)
	r.mu.Unlock()
	r.done <- struct{}{}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if r.fail {
		return errors.New("pipeline exploded")
	}
	return nil
}

func start(t *testing.T, w *Worker) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()
	return cancel, errc
}

func TestWorkerProcessesInOrder(t *testing.T) {
	q := &chanQueue{jobs: make(chan *domain.Job, 4), errs: make(chan error, 1)}
	rec := &recorder{done: make(chan struct{}, 4), fail: true}
	w := &Worker{Queue: q, Processor: rec, Logger: zap.NewNop(), PollTimeout: 20 * time.Millisecond}

	cancel, errc := start(t, w)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(context.Background(), &domain.Job{ID: id}))
	}
	for i := 0; i < 3; i++ {
		<-rec.done
	}
	cancel()
	require.NoError(t, <-errc)

	assert.Equal(t, []string{"a", "b", "c"}, rec.seen)
}

func TestWorkerSurvivesDequeueErrors(t *testing.T) {
	q := &chanQueue{jobs: make(chan *domain.Job, 1), errs: make(chan error, 1)}
	rec := &recorder{done: make(chan struct{}, 1)}
	w := &Worker{Queue: q, Processor: rec, PollTimeout: 20 * time.Millisecond}

	q.errs <- errors.New("connection reset")
	cancel, errc := start(t, w)
	require.NoError(t, q.Enqueue(context.Background(), &domain.Job{ID: "after-error"}))

	select {
	case <-rec.done:
	case <-time.After(5 * time.Second):
		t.Fatal("job not processed after dequeue error")
	}
	cancel()
	require.NoError(t, <-errc)
	assert.Equal(t, []string{"after-error"}, rec.seen)
}

func TestWorkerFinishesJobInFlightOnCancel(t *testing.T) {
	q := &chanQueue{jobs: make(chan *domain.Job, 1), errs: make(chan error, 1)}
	rec := &recorder{done: make(chan struct{}, 1), entered: make(chan struct{}, 1), block: make(chan struct{})}
	w := &Worker{Queue: q, Processor: rec, PollTimeout: 20 * time.Millisecond}

	cancel, errc := start(t, w)
	require.NoError(t, q.Enqueue(context.Background(), &domain.Job{ID: "slow"}))

	<-rec.entered
	cancel()
	close(rec.block)

	<-rec.done
	require.NoError(t, <-errc)
	assert.Equal(t, []string{"slow"}, rec.seen)
}

func TestWorkerStopsWhenIdle(t *testing.T) {
	q := &chanQueue{jobs: make(chan *domain.Job), errs: make(chan error)}
	w := &Worker{Queue: q, Processor: &recorder{}, PollTimeout: time.Hour}

	cancel, errc := start(t, w)
	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}
