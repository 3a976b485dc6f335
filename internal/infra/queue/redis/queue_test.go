package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/bloodtest-analyzer/internal/domain/jobs"
)

func newQueue(t *testing.T) (*Queue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })
	return New(rdb, "", time.Hour), mr
}

func TestEnqueueDequeueFIFO(t *testing.T) {
	q, mr := newQueue(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, q.Enqueue(ctx, &jobs.Job{ID: "1", ObjectKey: "uploads/1.pdf", FileName: "a.pdf", Query: "q", EnqueuedAt: now}))
	require.NoError(t, q.Enqueue(ctx, &jobs.Job{ID: "2", ObjectKey: "uploads/2.pdf", FileName: "b.pdf", Query: "q", EnqueuedAt: now}))
	assert.True(t, mr.Exists("bloodtest:queue:default"))

	st, err := q.Status(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, jobs.StateQueued, st.State)

	j, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "1", j.ID)
	assert.Equal(t, "uploads/1.pdf", j.ObjectKey)
	assert.True(t, j.EnqueuedAt.Equal(now))

	j, err = q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "2", j.ID)
}

func TestDequeueEmpty(t *testing.T) {
	q, _ := newQueue(t)
	_, err := q.Dequeue(context.Background(), 100*time.Millisecond)
	assert.ErrorIs(t, err, jobs.ErrEmpty)
}

func TestStatusLifecycle(t *testing.T) {
	q, mr := newQueue(t)
	ctx := context.Background()

	_, err := q.Status(ctx, "missing")
	assert.ErrorIs(t, err, jobs.ErrNotFound)

	require.NoError(t, q.SetStatus(ctx, &jobs.Status{JobID: "7", State: jobs.StateFinished, RecordID: "rec-1"}))
	st, err := q.Status(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, jobs.StateFinished, st.State)
	assert.Equal(t, "rec-1", st.RecordID)
	assert.False(t, st.UpdatedAt.IsZero())

	mr.FastForward(2 * time.Hour)
	_, err = q.Status(ctx, "7")
	assert.ErrorIs(t, err, jobs.ErrNotFound)
}

func TestConnectBadURL(t *testing.T) {
	_, err := Connect(context.Background(), "not-a-url")
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	q, mr := newQueue(t)
	require.NoError(t, q.Ping(context.Background()))
	mr.Close()
	assert.Error(t, q.Ping(context.Background()))
}
