package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/asritha26k/BankingTermDepositPrediction/internal/files"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/predict"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/queue"
	"github.com/asritha26k/BankingTermDepositPrediction/internal/status"
)

// maxUploadBytes caps batch CSV uploads at 50 MiB.
const maxUploadBytes = 50 << 20

type Handlers struct {
	files  *files.Manager
	queue  *queue.Queue
	store  *status.Store
	engine predict.Engine
}

func NewHandlers(fm *files.Manager, q *queue.Queue, store *status.Store, engine predict.Engine) *Handlers {
	return &Handlers{files: fm, queue: q, store: store, engine: engine}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// PredictSingle scores one client record synchronously.
func (h *Handlers) PredictSingle(w http.ResponseWriter, r *http.Request) {
	var rec predict.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := rec.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if h.engine == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "prediction model not loaded"})
		return
	}

	labels, probabilities, err := h.engine.Predict([]predict.Record{rec})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("prediction failed: %v", err)})
		return
	}

	predicted := 0
	if labels[0] == "yes" {
		predicted = 1
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"predicted_term_deposit": predicted,
		"prediction_probability": probabilities[0],
	})
}

// SubmitBatch stages an uploaded CSV and hands it to the queue. The
// response returns before any worker activity.
func (h *Handlers) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file field is required"})
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Only CSV files are allowed."})
		return
	}

	taskID := uuid.NewString()
	path, err := h.files.Stage(taskID, header.Filename, file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.queue.Enqueue(r.Context(), queue.Task{TaskID: taskID, InputPath: path}); err != nil {
		// No orphaned files on submission failure.
		h.files.Remove(path)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": fmt.Sprintf("failed to enqueue batch prediction task: %v", err),
		})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"message":       "Batch prediction request received and is being processed.",
		"task_id":       taskID,
		"status_url":    "/tasks/" + taskID + "/status",
		"websocket_url": "/ws/tasks/" + taskID,
	})
}

// TaskStatus reports the current status record for a task. Unknown ids
// are pending, malformed records are UNKNOWN; the endpoint never errors
// on either.
func (h *Handlers) TaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")

	rec, err := h.store.Get(r.Context(), taskID)
	switch {
	case err == nil:
	case errors.Is(err, status.ErrNotFound):
		rec = status.Pending(taskID)
	case errors.Is(err, status.ErrMalformed):
		rec = &status.Record{
			TaskID:  taskID,
			Status:  status.StateUnknown,
			Message: "Error retrieving status (malformed data).",
		}
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "status store unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// DownloadResults serves a result artifact. A missing file is 404, not a
// server error.
func (h *Handlers) DownloadResults(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	f, err := h.files.OpenResult(name)
	if err != nil {
		if errors.Is(err, files.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Results file not found."})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to open results file"})
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	io.Copy(w, f)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
