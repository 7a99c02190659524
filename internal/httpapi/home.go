// internal/httpapi/home.go
//
// Aggregate payload for the landing page.  One round trip replaces the
// five the storefront used to issue on first paint.
package httpapi

import (
	"context"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/meridianmall/arcade/internal/event"
	"github.com/meridianmall/arcade/internal/post"
	"github.com/meridianmall/arcade/internal/promotion"
	"github.com/meridianmall/arcade/internal/tenant"
	"github.com/meridianmall/arcade/internal/whatson"
)

type homePayload struct {
	Posts      []post.Post           `json:"posts"`
	Events     []event.Event         `json:"events"`
	Tenants    []tenant.Tenant       `json:"tenants"`
	Promotions []promotion.Promotion `json:"promotions"`
	WhatsOn    []whatson.Item        `json:"whatsOn"`
}

// getHome serves GET /v1/home.  Sections load concurrently and fail
// independently: a dead promotions view must not blank the whole page,
// so a failed section logs a warning and ships empty.
func (h *Handler) getHome(w http.ResponseWriter, r *http.Request) {
	payload, err := flight(h, r.Context(), "home", func(ctx context.Context) (*homePayload, error) {
		var p homePayload
		g, gctx := errgroup.WithContext(ctx)

		section := func(name string, load func(context.Context) error) {
			g.Go(func() error {
				if err := load(gctx); err != nil {
					zap.S().Warnw("home section failed", "section", name, "error", err)
				}
				return nil
			})
		}

		section("posts", func(ctx context.Context) error {
			items, err := h.Posts.Featured(ctx, 3)
			p.Posts = items
			return err
		})
		section("events", func(ctx context.Context) error {
			items, err := h.Events.Featured(ctx, 4)
			p.Events = items
			return err
		})
		section("tenants", func(ctx context.Context) error {
			items, err := h.Tenants.Featured(ctx, 8)
			p.Tenants = items
			return err
		})
		section("promotions", func(ctx context.Context) error {
			items, err := h.Promotions.Featured(ctx, 6)
			p.Promotions = items
			return err
		})
		section("whatson", func(ctx context.Context) error {
			items, err := h.WhatsOn.Items(ctx)
			p.WhatsOn = items
			return err
		})

		_ = g.Wait()
		p.fillEmpty()
		return &p, nil
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, payload)
}

// fillEmpty keeps failed sections as [] rather than null on the wire.
func (p *homePayload) fillEmpty() {
	if p.Posts == nil {
		p.Posts = []post.Post{}
	}
	if p.Events == nil {
		p.Events = []event.Event{}
	}
	if p.Tenants == nil {
		p.Tenants = []tenant.Tenant{}
	}
	if p.Promotions == nil {
		p.Promotions = []promotion.Promotion{}
	}
	if p.WhatsOn == nil {
		p.WhatsOn = []whatson.Item{}
	}
}
