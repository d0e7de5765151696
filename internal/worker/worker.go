// Package worker consumes batch prediction tasks from the queue, runs
// the prediction engine and records progress in the status store and on
// the notification bus. The queue's own acknowledgement path stays
// authoritative for delivery; status and notifications are side channels
// whose failures never abort a job.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/asritha26k/BankingTermDepositPrediction/internal/files"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/notify"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/predict"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/queue"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/status"
)

const dequeueTimeout = 5 * time.Second

type Worker struct {
	queue  *queue.Queue
	store  *status.Store
	bus    *notify.Bus
	files  *files.Manager
	engine predict.Engine
}

func New(q *queue.Queue, store *status.Store, bus *notify.Bus, fm *files.Manager, engine predict.Engine) *Worker {
	return &Worker{queue: q, store: store, bus: bus, files: fm, engine: engine}
}

// Run consumes one task at a time until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		task, err := w.queue.Dequeue(ctx, dequeueTimeout)
		if errors.Is(err, queue.ErrEmpty) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("Dequeue error: %v, retrying in 5s...", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
			}
			continue
		}

		w.Process(ctx, task)
	}
}

// Process runs one task end to end and settles it with the queue. The
// staged input is deleted exactly once regardless of outcome.
func (w *Worker) Process(ctx context.Context, task queue.Task) {
	log.Printf("Task %s received", task.TaskID)

	defer func() {
		if err := w.files.Remove(task.InputPath); err != nil {
			log.Printf("Task %s: failed to delete input %s: %v", task.TaskID, task.InputPath, err)
		}
	}()

	w.publish(ctx, task.TaskID, "Status: Task received and starting...")

	if err := w.run(ctx, task); err != nil {
		w.fail(ctx, task, err)
		return
	}

	if err := w.queue.Ack(ctx, task); err != nil {
		log.Printf("Task %s: ack failed: %v", task.TaskID, err)
	}
	log.Printf("Task %s completed", task.TaskID)
}

func (w *Worker) run(ctx context.Context, task queue.Task) error {
	if w.engine == nil {
		return errors.New("prediction model not loaded, cannot process batch prediction")
	}

	w.publish(ctx, task.TaskID, "Status: Reading CSV file...")
	w.progress(ctx, task.TaskID, "Reading CSV file")

	input, err := os.Open(task.InputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	batch, err := predict.ReadBatch(input)
	input.Close()
	if err != nil {
		return err
	}

	w.publish(ctx, task.TaskID, "Status: Performing predictions...")
	w.progress(ctx, task.TaskID, "Performing predictions")

	labels, probabilities, err := w.engine.Predict(batch.Records)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	resultName := files.ResultName(task.TaskID, files.OriginalName(task.TaskID, task.InputPath))
	out, err := os.Create(w.files.ResultPath(resultName))
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	if err := predict.WriteResults(out, batch, labels, probabilities); err != nil {
		out.Close()
		return fmt.Errorf("write results: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close results file: %w", err)
	}

	downloadURL := "/results/" + resultName
	w.setStatus(ctx, &status.Record{
		TaskID:             task.TaskID,
		Status:             status.StateSuccess,
		Message:            "Batch prediction completed successfully.",
		ResultsDownloadURL: &downloadURL,
	})
	w.publish(ctx, task.TaskID, "Status: Completed!")
	return nil
}

// fail records the failure in the store and on the bus before settling
// with the queue, so a polling client always sees a readable reason.
func (w *Worker) fail(ctx context.Context, task queue.Task, cause error) {
	msg := fmt.Sprintf("Error during batch prediction for task %s: %v", task.TaskID, cause)
	log.Printf("Task %s failed: %v", task.TaskID, cause)

	w.setStatus(ctx, &status.Record{
		TaskID:  task.TaskID,
		Status:  status.StateFailure,
		Message: msg,
	})
	w.publish(ctx, task.TaskID, "Failed: "+msg)

	if err := w.queue.Fail(ctx, task); err != nil {
		log.Printf("Task %s: dead-letter failed: %v", task.TaskID, err)
	}
}

func (w *Worker) progress(ctx context.Context, taskID, phase string) {
	w.setStatus(ctx, &status.Record{
		TaskID:  taskID,
		Status:  status.StateProgress,
		Message: phase,
	})
}

func (w *Worker) setStatus(ctx context.Context, rec *status.Record) {
	if err := w.store.Set(ctx, rec); err != nil {
		log.Printf("Task %s: status write failed: %v", rec.TaskID, err)
	}
}

func (w *Worker) publish(ctx context.Context, taskID, msg string) {
	if err := w.bus.Publish(ctx, taskID, msg); err != nil {
		log.Printf("Task %s: notify failed: %v", taskID, err)
	}
}
