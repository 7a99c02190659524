// internal/httpapi/tenants.go
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridianmall/arcade/internal/query"
	"github.com/meridianmall/arcade/internal/tenant"
)

func (h *Handler) tenantParams(r *http.Request) tenant.ListParams {
	return tenant.ListParams{
		Search:     r.URL.Query().Get("search"),
		CategoryID: queryInt64(r, "category_id"),
		Floor:      r.URL.Query().Get("floor"),
		Featured:   queryBoolPtr(r, "featured"),
		NewOnly:    queryBoolPtr(r, "new"),
		Page:       queryInt(r, "page", 1),
		PerPage:    queryInt(r, "per_page", 0),
		Admin:      h.isAdmin(r),
	}
}

// listTenants serves GET /v1/tenants, the store directory.
func (h *Handler) listTenants(w http.ResponseWriter, r *http.Request) {
	params := h.tenantParams(r)
	res, err := flight(h, r.Context(), flightKey(r, params.Admin), func(ctx context.Context) (query.List[tenant.Tenant], error) {
		return h.Tenants.List(ctx, params)
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, res)
}

// getTenant serves GET /v1/tenants/{slug}.
func (h *Handler) getTenant(w http.ResponseWriter, r *http.Request) {
	t, err := h.Tenants.BySlug(r.Context(), chi.URLParam(r, "slug"), h.isAdmin(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	if t == nil {
		notFound(w)
		return
	}
	respond(w, http.StatusOK, t)
}

// featuredTenants serves GET /v1/tenants/featured.
func (h *Handler) featuredTenants(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 8)
	items, err := flight(h, r.Context(), flightKey(r, false), func(ctx context.Context) ([]tenant.Tenant, error) {
		return h.Tenants.Featured(ctx, limit)
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, items)
}

// searchTenants serves GET /v1/tenants/search?q=term.
func (h *Handler) searchTenants(w http.ResponseWriter, r *http.Request) {
	items, err := h.Tenants.Search(r.Context(), r.URL.Query().Get("q"), queryLimit(r, 20))
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, items)
}
