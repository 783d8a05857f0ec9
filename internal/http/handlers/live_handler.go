package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/openballot/evoting/internal/http/response"
	"github.com/openballot/evoting/pkg/events"
	"github.com/openballot/evoting/pkg/logger"
)

// Live handles GET /api/live: a server-sent-events stream of collection
// change notifications. Delivery is best-effort with no backlog; a client
// that reconnects should refetch the collections it cares about.
func (h *Handlers) Live(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalError(w, "Streaming not supported")
		return
	}

	// The server's WriteTimeout would cut the stream after every quiet
	// period; lift it for this connection so clients stay subscribed.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		logger.WarnContext(r.Context(), "Failed to clear write deadline for live stream", "error", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	msgs := make(chan *events.Message, 16)
	sub, err := h.eventBus.Subscribe(events.DataChanged, func(msg *events.Message) {
		select {
		case msgs <- msg:
		default:
			// Client is not draining; drop rather than block the bus.
		}
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to subscribe live client", "error", err)
		return
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-msgs:
			fmt.Fprintf(w, "event: data_update\ndata: %s\n\n", msg.Data)
			flusher.Flush()
		}
	}
}
