// Package tasks runs background work decoupled from the request path. Jobs
// go through a Redis list so a merge response never waits on reindexing.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	queueKey = "enux:tasks"

	// KindRefresh re-derives search state for a playbook after a merge.
	KindRefresh = "refresh"
)

// Job is the unit of queued work. VersionID pins the playbook state the job
// was enqueued for so stale jobs can be skipped.
type Job struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	PlaybookID string    `json:"playbook_id"`
	VersionID  string    `json:"version_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewClient connects to Redis and verifies the connection.
func NewClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// Queue enqueues jobs onto the shared Redis list.
type Queue struct {
	client *redis.Client
}

func NewQueue(client *redis.Client) *Queue {
	return &Queue{client: client}
}

// Enqueue pushes a job and returns its assigned id.
func (q *Queue) Enqueue(ctx context.Context, kind, playbookID, versionID string) (string, error) {
	job := Job{
		ID:         uuid.NewString(),
		Kind:       kind,
		PlaybookID: playbookID,
		VersionID:  versionID,
		EnqueuedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.LPush(ctx, queueKey, data).Err(); err != nil {
		return "", fmt.Errorf("enqueue %s job: %w", kind, err)
	}
	return job.ID, nil
}

// Handler processes one job. Handlers must be idempotent; a job may run
// again after a worker crash.
type Handler func(ctx context.Context, job Job) error

// Worker pops jobs and dispatches them to registered handlers.
type Worker struct {
	client   *redis.Client
	handlers map[string]Handler
}

func NewWorker(client *redis.Client) *Worker {
	return &Worker{
		client:   client,
		handlers: make(map[string]Handler),
	}
}

func (w *Worker) Handle(kind string, h Handler) {
	w.handlers[kind] = h
}

// Run blocks until ctx is canceled. Failed jobs are logged and dropped; the
// next state-changing operation enqueues fresh work.
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		res, err := w.client.BRPop(ctx, 2*time.Second, queueKey).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("tasks: pop job: %v", err)
			time.Sleep(time.Second)
			continue
		}
		// BRPop returns [key, value].
		if len(res) != 2 {
			continue
		}
		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			log.Printf("tasks: unmarshal job: %v", err)
			continue
		}
		w.dispatch(ctx, job)
	}
}

func (w *Worker) dispatch(ctx context.Context, job Job) {
	h, ok := w.handlers[job.Kind]
	if !ok {
		log.Printf("tasks: no handler for %s job %s", job.Kind, job.ID)
		return
	}
	if err := h(ctx, job); err != nil {
		log.Printf("tasks: %s job %s: %v", job.Kind, job.ID, err)
	}
}
