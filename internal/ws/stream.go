// Package ws streams task progress messages to websocket clients. The
// stream is driven only by the notification bus; clients that miss a
// terminal message fall back to status polling.
package ws

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"

	"github.com/asritha26k/BankingTermDepositPrediction/internal/notify"
)

type Bridge struct {
	bus         *notify.Bus
	pollTimeout time.Duration
}

func NewBridge(bus *notify.Bus, pollTimeout time.Duration) *Bridge {
	return &Bridge{bus: bus, pollTimeout: pollTimeout}
}

// HandleTask subscribes the client to the task's notification channel
// and forwards messages verbatim until a terminal message or client
// disconnect. The subscription is released on every exit path.
func (b *Bridge) HandleTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("WebSocket accept error for task %s: %v", taskID, err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "stream ended")

	// The connection is write-only; CloseRead cancels the context as
	// soon as the client goes away.
	ctx := conn.CloseRead(r.Context())

	sub, err := b.bus.Subscribe(ctx, taskID)
	if err != nil {
		log.Printf("Subscribe failed for task %s: %v", taskID, err)
		return
	}
	defer sub.Close()

	log.Printf("WebSocket connected for task %s", taskID)
	defer log.Printf("WebSocket closed for task %s", taskID)

	for {
		msg, err := sub.Next(ctx, b.pollTimeout)
		if errors.Is(err, notify.ErrTimeout) {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, context.Canceled) {
				log.Printf("WebSocket receive error for task %s: %v", taskID, err)
			}
			return
		}

		if err := conn.Write(ctx, websocket.MessageText, []byte(msg)); err != nil {
			return
		}
		if notify.IsTerminal(msg) {
			return
		}
	}
}
