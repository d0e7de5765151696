// Package notify is the ephemeral publish/subscribe channel for task
// progress messages. Delivery is best-effort with no retention: a
// subscriber that attaches after a message was published never sees it
// and must fall back to the status store.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/asritha26k/BankingTermDepositPrediction/internal/redisx"
)

// ErrTimeout reports that no message arrived within the bounded wait.
var ErrTimeout = errors.New("notify: receive timed out")

// Channel returns the pub/sub channel for a task: task_notify:{id}
func Channel(taskID string) string { return "task_notify:" + taskID }

// IsTerminal reports whether a message marks the end of a task's stream.
func IsTerminal(msg string) bool {
	return strings.Contains(msg, "Completed") || strings.Contains(msg, "Failed")
}

type Bus struct {
	client *redisx.Client
}

func NewBus(client *redisx.Client) *Bus {
	return &Bus{client: client}
}

// Publish broadcasts a free-text message on the task's channel.
func (b *Bus) Publish(ctx context.Context, taskID, msg string) error {
	rdb, err := b.client.Ensure(ctx)
	if err != nil {
		return err
	}
	if err := rdb.Publish(ctx, Channel(taskID), msg).Err(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Subscribe attaches to the task's channel. The caller must Close the
// subscription when done.
func (b *Bus) Subscribe(ctx context.Context, taskID string) (*Subscription, error) {
	rdb, err := b.client.Ensure(ctx)
	if err != nil {
		return nil, err
	}
	pubsub := rdb.Subscribe(ctx, Channel(taskID))
	// Force the subscription onto the wire before the caller starts
	// waiting, so publishes after Subscribe returns are not lost.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	return &Subscription{pubsub: pubsub}, nil
}

func (b *Bus) Close() error {
	return b.client.Close()
}

// Subscription is one attached listener on a task's channel.
type Subscription struct {
	pubsub *redis.PubSub
}

// Next waits up to timeout for the next message. Returns ErrTimeout when
// nothing arrived, so callers can check for cancellation and wait again.
func (s *Subscription) Next(ctx context.Context, timeout time.Duration) (string, error) {
	for {
		raw, err := s.pubsub.ReceiveTimeout(ctx, timeout)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return "", ErrTimeout
			}
			return "", fmt.Errorf("receive: %w", err)
		}
		switch m := raw.(type) {
		case *redis.Message:
			return m.Payload, nil
		default:
			// Subscribe confirmations and pongs, keep waiting.
		}
	}
}

func (s *Subscription) Close() error {
	return s.pubsub.Close()
}
