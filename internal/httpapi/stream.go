// internal/httpapi/stream.go
//
// Server-sent events for content changes.  The storefront holds one
// stream open and refetches whatever table a change names; that is much
// cheaper than the 30-second polling loop it replaces.
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// heartbeatEvery keeps intermediaries from reaping an idle stream.
const heartbeatEvery = 25 * time.Second

// streamChanges serves GET /v1/whats-on/stream.
func (h *Handler) streamChanges(w http.ResponseWriter, r *http.Request) {
	if h.Stream == nil {
		respond(w, http.StatusNotImplemented, errBody{Error: "change stream disabled"})
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		respond(w, http.StatusInternalServerError, errBody{Error: "streaming unsupported"})
		return
	}

	events, cancel := h.Stream.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatEvery)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
