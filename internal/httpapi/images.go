// internal/httpapi/images.go
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/meridianmall/arcade/internal/imgprobe"
)

// ImageProber is satisfied by *imgprobe.Prober.
type ImageProber interface {
	Probe(ctx context.Context, key, rawURL string) (bool, error)
}

type probeBody struct {
	Reachable  bool `json:"reachable"`
	Superseded bool `json:"superseded,omitempty"`
}

// probeImage serves GET /v1/images/probe.  The storefront checks an
// editor-supplied image before swapping out a card's placeholder; key
// names the UI slot, so flipping through a carousel cancels the probe the
// previous slide started.  Every answer is 200: an unreachable image is a
// placeholder, never an error page.
func (h *Handler) probeImage(w http.ResponseWriter, r *http.Request) {
	if h.Prober == nil {
		respond(w, http.StatusNotImplemented, errBody{Error: "image probe disabled"})
		return
	}
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		badRequest(w, "url parameter is required")
		return
	}
	key := r.URL.Query().Get("key")
	if key == "" {
		key = rawURL
	}

	reachable, err := h.Prober.Probe(r.Context(), key, rawURL)
	switch {
	case errors.Is(err, imgprobe.ErrSuperseded):
		respond(w, http.StatusOK, probeBody{Superseded: true})
	case err != nil:
		if r.Context().Err() != nil {
			return
		}
		respond(w, http.StatusOK, probeBody{Reachable: false})
	default:
		respond(w, http.StatusOK, probeBody{Reachable: reachable})
	}
}
