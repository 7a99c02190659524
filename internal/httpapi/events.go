// internal/httpapi/events.go
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridianmall/arcade/internal/event"
	"github.com/meridianmall/arcade/internal/query"
)

func (h *Handler) eventParams(r *http.Request) event.ListParams {
	return event.ListParams{
		Search:   r.URL.Query().Get("search"),
		Tags:     queryTags(r),
		Featured: queryBoolPtr(r, "featured"),
		From:     queryTime(r, "from"),
		To:       queryTime(r, "to"),
		Page:     queryInt(r, "page", 1),
		PerPage:  queryInt(r, "per_page", 0),
		Admin:    h.isAdmin(r),
	}
}

// listEvents serves GET /v1/events.
func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	params := h.eventParams(r)
	res, err := flight(h, r.Context(), flightKey(r, params.Admin), func(ctx context.Context) (query.List[event.Event], error) {
		return h.Events.List(ctx, params)
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, res)
}

// getEvent serves GET /v1/events/{slug}.
func (h *Handler) getEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := h.Events.BySlug(r.Context(), chi.URLParam(r, "slug"), h.isAdmin(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	if ev == nil {
		notFound(w)
		return
	}
	respond(w, http.StatusOK, ev)
}

// featuredEvents serves GET /v1/events/featured.
func (h *Handler) featuredEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 4)
	items, err := flight(h, r.Context(), flightKey(r, false), func(ctx context.Context) ([]event.Event, error) {
		return h.Events.Featured(ctx, limit)
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, items)
}

// searchEvents serves GET /v1/events/search?q=term.
func (h *Handler) searchEvents(w http.ResponseWriter, r *http.Request) {
	items, err := h.Events.Search(r.Context(), r.URL.Query().Get("q"), queryLimit(r, 20))
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, items)
}
