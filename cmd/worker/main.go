package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/asritha26k/BankingTermDepositPrediction/internal/config"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/files"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/notify"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/predict"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/queue"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/redisx"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/status"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	fm, err := files.NewManager(cfg.UploadDir, cfg.ResultsDir)
	if err != nil {
		log.Fatalf("File manager error: %v", err)
	}

	// A missing model does not stop the worker; jobs fail with a
	// readable computation error instead.
	var engine predict.Engine
	model, err := predict.Load(cfg.ModelPath)
	if err != nil {
		log.Printf("Model not loaded (%v): batch predictions will fail", err)
	} else {
		engine = model
	}

	store := status.NewStore(redisx.New(cfg.RedisURL), cfg.StatusTTL)
	bus := notify.NewBus(redisx.New(cfg.RedisURL))
	q := queue.New(redisx.New(cfg.RedisURL), cfg.QueueName)
	defer store.Close()
	defer bus.Close()
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	w := worker.New(q, store, bus, fm, engine)

	go func() {
		<-done
		log.Println("Shutting down worker...")
		cancel()
	}()

	log.Printf("Worker consuming queue %q at %s", cfg.QueueName, cfg.RedisURL)
	if err := w.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Worker error: %v", err)
	}
	log.Println("Worker stopped")
}
