package ticket_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ms-servicing/internal/auth"
	"ms-servicing/internal/models"
)

func setupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream;charset=UTF-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Accel-Buffering", "no")
}

// StreamMyEvents streams the signed-in customer's ticket events.
func (h *Handler) StreamMyEvents(w http.ResponseWriter, r *http.Request) {
	customerID := auth.CustomerID(r.Context())
	events := h.Events.SubscribeCustomer(r.Context(), customerID)
	h.stream(w, r, fmt.Sprintf("customer %d", customerID), events)
}

// StreamAllEvents streams every ticket event to an admin.
func (h *Handler) StreamAllEvents(w http.ResponseWriter, r *http.Request) {
	events := h.Events.SubscribeAdmin(r.Context())
	h.stream(w, r, "admin", events)
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request, who string, events <-chan models.TicketEvent) {
	rc := http.NewResponseController(w)
	// The server write timeout would otherwise cut long-lived streams.
	_ = rc.SetWriteDeadline(time.Time{})

	setupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
	if err := rc.Flush(); err != nil {
		h.Logger.Error("SSE", fmt.Sprintf("Streaming unsupported for %s: %v", who, err))
		return
	}
	h.Logger.Info("SSE", fmt.Sprintf("Client connected to ticket events for %s", who))

	ctx := r.Context()
	keepAlive := time.NewTicker(h.KeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				h.Logger.Debug("SSE", fmt.Sprintf("Channel closed for %s", who))
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize ticket event: %v", err))
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", event.EventID, event.Type, data)
			if err := rc.Flush(); err != nil {
				return
			}
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			if err := rc.Flush(); err != nil {
				return
			}
		case <-ctx.Done():
			h.Logger.Debug("SSE", fmt.Sprintf("Client disconnected from ticket events for %s", who))
			return
		}
	}
}
