// internal/httpapi/handler.go
//
// JSON surface over the data layer.
//
// Context
// -------
// The storefront is a JavaScript app that calls these endpoints and
// renders whatever comes back.  Handlers stay thin: decode parameters,
// call one repository, translate the result.  The resilience story
// (fallback paths, retries, seed data) lives entirely below; up here an
// error is already final.
//
// Workflow
// --------
//  1. Middleware enriches and observes the request.
//  2. The handler builds entity ListParams from snake_case query params.
//  3. Identical concurrent list reads collapse into one repository call.
//  4. respond/fail translate values and errors to JSON envelopes.
//
// Notes
// -----
//   - Preview sessions authenticate with the X-Preview-Token header; a
//     matching token flips the Admin flag on repository params.
//   - Oxford commas, two spaces after periods.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/meridianmall/arcade/internal/category"
	"github.com/meridianmall/arcade/internal/contact"
	"github.com/meridianmall/arcade/internal/event"
	"github.com/meridianmall/arcade/internal/post"
	"github.com/meridianmall/arcade/internal/promotion"
	"github.com/meridianmall/arcade/internal/query"
	"github.com/meridianmall/arcade/internal/realtime"
	"github.com/meridianmall/arcade/internal/tenant"
	"github.com/meridianmall/arcade/internal/vip"
	"github.com/meridianmall/arcade/internal/whatson"
)

// flightTimeout bounds a collapsed read, which runs detached from the
// contexts of the callers waiting on it.
const flightTimeout = 10 * time.Second

// PostStore is the slice of the post repository the handlers consume.
type PostStore interface {
	List(ctx context.Context, params post.ListParams) (*post.ListResult, error)
	BySlug(ctx context.Context, slug string, admin bool) (*post.Post, error)
	Featured(ctx context.Context, limit int) ([]post.Post, error)
	Search(ctx context.Context, term string, limit int) ([]post.Post, error)
}

type EventStore interface {
	List(ctx context.Context, params event.ListParams) (query.List[event.Event], error)
	BySlug(ctx context.Context, slug string, admin bool) (*event.Event, error)
	Featured(ctx context.Context, limit int) ([]event.Event, error)
	Search(ctx context.Context, term string, limit int) ([]event.Event, error)
}

type TenantStore interface {
	List(ctx context.Context, params tenant.ListParams) (query.List[tenant.Tenant], error)
	BySlug(ctx context.Context, slug string, admin bool) (*tenant.Tenant, error)
	Featured(ctx context.Context, limit int) ([]tenant.Tenant, error)
	Search(ctx context.Context, term string, limit int) ([]tenant.Tenant, error)
}

type PromotionStore interface {
	List(ctx context.Context, params promotion.ListParams) (query.List[promotion.Promotion], error)
	ByID(ctx context.Context, id int64, admin bool) (*promotion.Promotion, error)
	Featured(ctx context.Context, limit int) ([]promotion.Promotion, error)
	Search(ctx context.Context, term string, limit int) ([]promotion.Promotion, error)
}

type VIPStore interface {
	Tiers(ctx context.Context) ([]vip.Tier, error)
}

type WhatsOnStore interface {
	Items(ctx context.Context) ([]whatson.Item, error)
	All(ctx context.Context) ([]whatson.Item, error)
}

type ContactStore interface {
	Submit(ctx context.Context, in contact.Input) (*contact.Submission, error)
}

type CategoryStore interface {
	All(ctx context.Context) ([]category.Category, error)
}

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Subscriber is satisfied by *realtime.Hub.
type Subscriber interface {
	Subscribe() (<-chan realtime.Event, func())
}

// Handler carries the repositories behind the JSON surface.
type Handler struct {
	Posts      PostStore
	Events     EventStore
	Tenants    TenantStore
	Promotions PromotionStore
	VIP        VIPStore
	WhatsOn    WhatsOnStore
	Contacts   ContactStore
	Categories CategoryStore

	// DB answers /healthz.
	DB Pinger

	// Stream feeds /v1/whats-on/stream.  nil disables the endpoint.
	Stream Subscriber

	// Prober backs /v1/images/probe.  nil disables the endpoint.
	Prober ImageProber

	// PreviewToken unlocks unpublished content when non-empty and
	// matched by the X-Preview-Token header.
	PreviewToken string

	group singleflight.Group
}

// isAdmin reports whether the request may see unpublished content.
func (h *Handler) isAdmin(r *http.Request) bool {
	return h.PreviewToken != "" && r.Header.Get("X-Preview-Token") == h.PreviewToken
}

// flight collapses identical concurrent reads into one repository call.
// The shared call runs on a context detached from any single caller, so
// one client disconnecting does not fail the rest of the flight.
func flight[T any](h *Handler, ctx context.Context, key string, fn func(context.Context) (T, error)) (T, error) {
	v, err, _ := h.group.Do(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flightTimeout)
		defer cancel()
		return fn(fctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// flightKey canonicalizes the request into a collapse key.  Encode sorts
// query parameters, so equivalent URLs share a key.
func flightKey(r *http.Request, admin bool) string {
	key := r.URL.Path + "?" + r.URL.Query().Encode()
	if admin {
		key += "#preview"
	}
	return key
}
