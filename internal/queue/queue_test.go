package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/asritha26k/BankingTermDepositPrediction/internal/redisx"
)

func newTestQueue(t *testing.T) (*Queue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	q := New(redisx.New("redis://"+mr.Addr()), "predictions")
	t.Cleanup(func() { q.Close() })
	return q, mr
}

func TestEnqueueDequeue(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	in := Task{TaskID: "t1", InputPath: "uploads/t1_input.csv"}
	if err := q.Enqueue(ctx, in); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	out, err := q.Dequeue(ctx, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if out.TaskID != "t1" || out.InputPath != "uploads/t1_input.csv" {
		t.Errorf("unexpected task: %+v", out)
	}
}

func TestDequeue_Empty(t *testing.T) {
	q, _ := newTestQueue(t)

	_, err := q.Dequeue(context.Background(), 50*time.Millisecond)
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestDequeue_HoldsUntilAck(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	if err := q.Enqueue(ctx, Task{TaskID: "t1", InputPath: "p"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	task, err := q.Dequeue(ctx, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}

	// The entry must sit on the processing list until acknowledged, so
	// a crashed worker leaves it recoverable.
	if n, _ := mr.List(q.processingKey()); len(n) != 1 {
		t.Fatalf("expected 1 processing entry, got %d", len(n))
	}

	if err := q.Ack(ctx, task); err != nil {
		t.Fatalf("Ack: %v", err)
	}
	if n, _ := mr.List(q.processingKey()); len(n) != 0 {
		t.Errorf("expected processing list drained after ack, got %d", len(n))
	}
}

func TestFail_MovesToDeadLetter(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	if err := q.Enqueue(ctx, Task{TaskID: "t1", InputPath: "p"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	task, err := q.Dequeue(ctx, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}

	if err := q.Fail(ctx, task); err != nil {
		t.Fatalf("Fail: %v", err)
	}

	if n, _ := mr.List(q.processingKey()); len(n) != 0 {
		t.Errorf("expected processing list drained after fail, got %d", len(n))
	}
	if n, _ := mr.List(q.deadKey()); len(n) != 1 {
		t.Errorf("expected 1 dead letter entry, got %d", len(n))
	}
}

func TestFIFOOrder(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	for _, id := range []string{"t1", "t2", "t3"} {
		if err := q.Enqueue(ctx, Task{TaskID: id, InputPath: "p"}); err != nil {
			t.Fatalf("Enqueue %s: %v", id, err)
		}
	}

	for _, want := range []string{"t1", "t2", "t3"} {
		task, err := q.Dequeue(ctx, 100*time.Millisecond)
		if err != nil {
			t.Fatalf("Dequeue: %v", err)
		}
		if task.TaskID != want {
			t.Errorf("expected %s, got %s", want, task.TaskID)
		}
	}
}

func TestPendingLen(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	if err := q.Enqueue(ctx, Task{TaskID: "t1", InputPath: "p"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	n, err := q.PendingLen(ctx)
	if err != nil {
		t.Fatalf("PendingLen: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 pending, got %d", n)
	}
}
