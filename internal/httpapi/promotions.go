// internal/httpapi/promotions.go
package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridianmall/arcade/internal/promotion"
	"github.com/meridianmall/arcade/internal/query"
)

func (h *Handler) promotionParams(r *http.Request) promotion.ListParams {
	return promotion.ListParams{
		Search:   r.URL.Query().Get("search"),
		TenantID: queryInt64(r, "tenant_id"),
		Status:   r.URL.Query().Get("status"),
		Page:     queryInt(r, "page", 1),
		PerPage:  queryInt(r, "per_page", 0),
		Admin:    h.isAdmin(r),
	}
}

// listPromotions serves GET /v1/promotions.
func (h *Handler) listPromotions(w http.ResponseWriter, r *http.Request) {
	params := h.promotionParams(r)
	res, err := flight(h, r.Context(), flightKey(r, params.Admin), func(ctx context.Context) (query.List[promotion.Promotion], error) {
		return h.Promotions.List(ctx, params)
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, res)
}

// getPromotion serves GET /v1/promotions/{id}.  Promotions are addressed
// by numeric id; they never had slugs in the CMS.
func (h *Handler) getPromotion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(w, "promotion id must be a positive integer")
		return
	}
	p, err := h.Promotions.ByID(r.Context(), id, h.isAdmin(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	if p == nil {
		notFound(w)
		return
	}
	respond(w, http.StatusOK, p)
}

// featuredPromotions serves GET /v1/promotions/featured.
func (h *Handler) featuredPromotions(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 6)
	items, err := flight(h, r.Context(), flightKey(r, false), func(ctx context.Context) ([]promotion.Promotion, error) {
		return h.Promotions.Featured(ctx, limit)
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, items)
}

// searchPromotions serves GET /v1/promotions/search?q=term.
func (h *Handler) searchPromotions(w http.ResponseWriter, r *http.Request) {
	items, err := h.Promotions.Search(r.Context(), r.URL.Query().Get("q"), queryLimit(r, 20))
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, items)
}
