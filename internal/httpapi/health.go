// internal/httpapi/health.go
package httpapi

import (
	"context"
	"net/http"
	"time"
)

type healthBody struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// healthz reports process liveness and database reachability.  The
// service stays "degraded" rather than unhealthy when the database is
// down, because seed fallbacks keep parts of the site readable.
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	body := healthBody{Status: "ok", Database: "ok"}
	status := http.StatusOK
	if err := h.DB.PingContext(ctx); err != nil {
		body.Status = "degraded"
		body.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}
	respond(w, status, body)
}
