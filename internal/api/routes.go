package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/asritha26k/BankingTermDepositPrediction/internal/files"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/notify"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/predict"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/queue"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/status"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/ws"
)

func NewRouter(fm *files.Manager, q *queue.Queue, store *status.Store, bus *notify.Bus, engine predict.Engine, pollTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	h := NewHandlers(fm, q, store, engine)
	bridge := ws.NewBridge(bus, pollTimeout)

	r.Get("/health", h.Health)

	r.Post("/predict/single", h.PredictSingle)
	r.Post("/predict/batch", h.SubmitBatch)

	r.Get("/tasks/{id}/status", h.TaskStatus)
	r.Get("/results/{name}", h.DownloadResults)
	r.Get("/ws/tasks/{id}", bridge.HandleTask)

	return r
}
