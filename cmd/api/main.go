package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asritha26k/BankingTermDepositPrediction/internal/api"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/config"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/files"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/notify"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/predict"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/queue"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/redisx"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/status"
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

	var engine predict.Engine
	model, err := predict.Load(cfg.ModelPath)
	if err != nil {
		log.Printf("Model not loaded (%v): single predictions will fail", err)
	} else {
		engine = model
	}

	store := status.NewStore(redisx.New(cfg.RedisURL), cfg.StatusTTL)
	bus := notify.NewBus(redisx.New(cfg.RedisURL))
	q := queue.New(redisx.New(cfg.RedisURL), cfg.QueueName)
	defer store.Close()
	defer bus.Close()
	defer q.Close()

	router := api.NewRouter(fm, q, store, bus, engine, cfg.StreamPollTimeout)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("API server listening on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
