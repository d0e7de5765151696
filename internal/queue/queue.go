// Package queue hands batch tasks from the web service to worker
// processes over a Redis list, with at-least-once delivery and manual
// acknowledgement after full completion.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/asritha26k/BankingTermDepositPrediction/internal/redisx"
)

// ErrEmpty reports that no task became available within the wait.
var ErrEmpty = errors.New("queue: no task available")

// Task is one unit of batch work. TaskID correlates the queue entry with
// the status record and notification channel; InputPath is the staged
// input artifact the worker consumes and deletes.
type Task struct {
	TaskID    string `json:"task_id"`
	InputPath string `json:"input_path"`

	raw []byte
}

type Queue struct {
	client *redisx.Client
	name   string
}

func New(client *redisx.Client, name string) *Queue {
	return &Queue{client: client, name: name}
}

// pendingKey is the list tasks wait on: task_queue:{name}
func (q *Queue) pendingKey() string { return "task_queue:" + q.name }

// processingKey holds entries between dequeue and ack, so a worker crash
// leaves the task recoverable: task_queue:{name}:processing
func (q *Queue) processingKey() string { return "task_queue:" + q.name + ":processing" }

// deadKey collects tasks that failed processing: task_queue:{name}:dead
func (q *Queue) deadKey() string { return "task_queue:" + q.name + ":dead" }

// Enqueue pushes a task onto the pending list.
func (q *Queue) Enqueue(ctx context.Context, t Task) error {
	rdb, err := q.client.Ensure(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	if err := rdb.LPush(ctx, q.pendingKey(), data).Err(); err != nil {
		return fmt.Errorf("enqueue: %w", err)
	}
	return nil
}

// Dequeue moves one task from pending to processing, blocking up to
// timeout. The entry stays on the processing list until Ack or Fail.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (Task, error) {
	rdb, err := q.client.Ensure(ctx)
	if err != nil {
		return Task{}, err
	}

	data, err := rdb.BLMove(ctx, q.pendingKey(), q.processingKey(), "RIGHT", "LEFT", timeout).Result()
	if errors.Is(err, redis.Nil) {
		return Task{}, ErrEmpty
	}
	if err != nil {
		return Task{}, fmt.Errorf("dequeue: %w", err)
	}

	var t Task
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		return Task{}, fmt.Errorf("unmarshal task: %w", err)
	}
	t.raw = []byte(data)
	return t, nil
}

// Ack removes a completed task from the processing list.
func (q *Queue) Ack(ctx context.Context, t Task) error {
	rdb, err := q.client.Ensure(ctx)
	if err != nil {
		return err
	}
	if err := rdb.LRem(ctx, q.processingKey(), 1, t.payload()).Err(); err != nil {
		return fmt.Errorf("ack: %w", err)
	}
	return nil
}

// Fail removes a task from the processing list and parks it on the dead
// letter list for operator inspection.
func (q *Queue) Fail(ctx context.Context, t Task) error {
	rdb, err := q.client.Ensure(ctx)
	if err != nil {
		return err
	}
	pipe := rdb.TxPipeline()
	pipe.LRem(ctx, q.processingKey(), 1, t.payload())
	pipe.LPush(ctx, q.deadKey(), t.payload())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("fail: %w", err)
	}
	return nil
}

// PendingLen reports the number of tasks waiting on the queue.
func (q *Queue) PendingLen(ctx context.Context) (int64, error) {
	rdb, err := q.client.Ensure(ctx)
	if err != nil {
		return 0, err
	}
	return rdb.LLen(ctx, q.pendingKey()).Result()
}

func (q *Queue) Close() error {
	return q.client.Close()
}

func (t Task) payload() []byte {
	if t.raw != nil {
		return t.raw
	}
	data, _ := json.Marshal(t)
	return data
}
