// Package status persists the latest known state of every task in Redis.
// The store is the single source of truth for point-in-time status
// queries; the notification bus is only a push hint on top of it.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/asritha26k/BankingTermDepositPrediction/internal/redisx"
)

var (
	ErrNotFound  = errors.New("status: record not found")
	ErrMalformed = errors.New("status: malformed record")
	ErrTerminal  = errors.New("status: record already terminal")
)

// Key returns the Redis key for a task's status record: task_status:{id}
func Key(taskID string) string { return "task_status:" + taskID }

type Store struct {
	client *redisx.Client
	ttl    time.Duration
}

// NewStore creates a store over the given connection handle. A non-zero
// ttl expires records that long after their last write.
func NewStore(client *redisx.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Get reads the record for a task. Returns ErrNotFound when no record
// exists and ErrMalformed when the stored value does not decode.
func (s *Store) Get(ctx context.Context, taskID string) (*Record, error) {
	rdb, err := s.client.Ensure(ctx)
	if err != nil {
		return nil, err
	}

	data, err := rdb.Get(ctx, Key(taskID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &rec, nil
}

// Set writes a record. Writes against a task whose record is already
// terminal are refused, keeping state transitions monotonic.
func (s *Store) Set(ctx context.Context, rec *Record) error {
	rdb, err := s.client.Ensure(ctx)
	if err != nil {
		return err
	}

	current, err := s.Get(ctx, rec.TaskID)
	if err == nil && current.Status.Terminal() {
		return ErrTerminal
	}
	if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrMalformed) {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	if err := rdb.Set(ctx, Key(rec.TaskID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
