package httphandler

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Events serves the Server-Sent Events stream. Each hub event is written as
// an SSE frame with the event id, type, and JSON data; the connection stays
// open until the client disconnects or the hub drops this subscriber for
// falling behind.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	events, cancel := h.hub.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Ask clients to wait five seconds before reconnecting.
	fmt.Fprint(w, "retry: 5000\n\n")
	flusher.Flush()

	h.logger.Info("event stream opened", "remote", r.RemoteAddr)
	defer h.logger.Info("event stream closed", "remote", r.RemoteAddr)

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-events:
			if !open {
				return
			}

			data, err := json.Marshal(event.Data)
			if err != nil {
				h.logger.Error("encoding event failed", "event_type", event.Type, "error", err)
				continue
			}

			fmt.Fprintf(w, "id: %s\n", event.ID)
			fmt.Fprintf(w, "event: %s\n", event.Type)
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
