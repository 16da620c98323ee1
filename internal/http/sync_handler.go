package http

import (
	"context"
	"net/http"
	"time"

	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/cart"
	"github.com/genilson28/ESPETINHO-ZEFINHA/internal/syncqueue"
)

// SyncHandler exposes the connectivity and queue state the UI shows in its
// status bar.
type SyncHandler struct {
	queue   *syncqueue.Queue
	engine  *cart.Engine
	timeout time.Duration
}

func NewSyncHandler(queue *syncqueue.Queue, engine *cart.Engine, timeout time.Duration) *SyncHandler {
	return &SyncHandler{
		queue:   queue,
		engine:  engine,
		timeout: timeout,
	}
}

type SyncStatusDTO struct {
	Online            bool `json:"online"`
	PendingOperations int  `json:"pending_operations"`
	CartSyncInFlight  bool `json:"cart_sync_in_flight"`
}

func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, SyncStatusDTO{
		Online:            h.queue.Online(),
		PendingOperations: h.queue.PendingCount(),
		CartSyncInFlight:  h.engine.Syncing(),
	})
}

// Flush forces a replay of the pending queue, for the manual "sync now"
// button. A replay that partially fails leaves the remainder queued.
func (h *SyncHandler) Flush(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if !h.queue.Online() {
		respondError(w, http.StatusServiceUnavailable, "offline", "cannot flush while offline")
		return
	}

	h.queue.Flush(ctx)
	respondJSON(w, http.StatusOK, SyncStatusDTO{
		Online:            h.queue.Online(),
		PendingOperations: h.queue.PendingCount(),
		CartSyncInFlight:  h.engine.Syncing(),
	})
}
