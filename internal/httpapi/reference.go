// internal/httpapi/reference.go
//
// Small, rarely-changing reference collections: blog categories, VIP
// tiers, and the What's On strip.  All three are served whole, without
// pagination, and collapse concurrent reads.
package httpapi

import (
	"context"
	"net/http"

	"github.com/meridianmall/arcade/internal/category"
	"github.com/meridianmall/arcade/internal/vip"
	"github.com/meridianmall/arcade/internal/whatson"
)

// listCategories serves GET /v1/categories.
func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	items, err := flight(h, r.Context(), "categories", func(ctx context.Context) ([]category.Category, error) {
		return h.Categories.All(ctx)
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, items)
}

// listVIPTiers serves GET /v1/vip/tiers.
func (h *Handler) listVIPTiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := flight(h, r.Context(), "vip.tiers", func(ctx context.Context) ([]vip.Tier, error) {
		return h.VIP.Tiers(ctx)
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, tiers)
}

// listWhatsOn serves GET /v1/whats-on.  Preview sessions see inactive
// entries too, so CMS editors can stage the strip before flipping it on.
func (h *Handler) listWhatsOn(w http.ResponseWriter, r *http.Request) {
	admin := h.isAdmin(r)
	load := h.WhatsOn.Items
	key := "whatson"
	if admin {
		load = h.WhatsOn.All
		key = "whatson#preview"
	}
	items, err := flight(h, r.Context(), key, func(ctx context.Context) ([]whatson.Item, error) {
		return load(ctx)
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, items)
}
