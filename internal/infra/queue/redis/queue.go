// Package redis keeps pending jobs in a Redis list and their status in
// expiring keys.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bryanwahyu/bloodtest-analyzer/internal/domain/jobs"
)

const keyPrefix = "bloodtest:"

type Queue struct {
	rdb       *goredis.Client
	name      string
	statusTTL time.Duration
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := goredis.NewClient(opts)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx2).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func New(rdb *goredis.Client, name string, statusTTL time.Duration) *Queue {
	if name == "" {
		name = "default"
	}
	return &Queue{rdb: rdb, name: name, statusTTL: statusTTL}
}

func (q *Queue) listKey() string { return keyPrefix + "queue:" + q.name }

func statusKey(id string) string { return keyPrefix + "job:" + id }

// Enqueue records the queued status and pushes the job in one transaction.
func (q *Queue) Enqueue(ctx context.Context, j *jobs.Job) error {
	payload, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	status, err := json.Marshal(&jobs.Status{JobID: j.ID, State: jobs.StateQueued, UpdatedAt: j.EnqueuedAt})
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}

	_, err = q.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, statusKey(j.ID), status, q.statusTTL)
		p.LPush(ctx, q.listKey(), payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("enqueue job %s: %w", j.ID, err)
	}
	return nil
}

// Dequeue blocks up to timeout and returns jobs.ErrEmpty if none arrived.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*jobs.Job, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.listKey()).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, jobs.ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue: %w", err)
	}
	// BRPOP replies [key, value]
	var j jobs.Job
	if err := json.Unmarshal([]byte(res[1]), &j); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	return &j, nil
}

func (q *Queue) SetStatus(ctx context.Context, s *jobs.Status) error {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return q.rdb.Set(ctx, statusKey(s.JobID), b, q.statusTTL).Err()
}

func (q *Queue) Status(ctx context.Context, id string) (*jobs.Status, error) {
	b, err := q.rdb.Get(ctx, statusKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, jobs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var s jobs.Status
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &s, nil
}

// Ping backs the health check.
func (q *Queue) Ping(ctx context.Context) error {
	return q.rdb.Ping(ctx).Err()
}
