// internal/httpapi/router.go
//
// Route tree and middleware stack for the content API.
//
// Middleware order matters: observation wraps everything so even
// redirected and panicking requests are counted, security headers go out
// before any handler writes, and request enrichment runs last so the
// parsed user agent and geo data are ready for handlers and access logs.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meridianmall/arcade/internal/middleware"
	"github.com/meridianmall/arcade/internal/requestinfo"
)

// RouterConfig carries the deployment knobs the route tree needs.
type RouterConfig struct {
	CORSOrigins []string
	ForceHTTPS  bool

	// Geo may be nil; request enrichment then skips country lookups.
	Geo *requestinfo.GeoDB
}

// NewRouter assembles the public surface.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Observe)
	r.Use(middleware.Security)
	r.Use(middleware.ForceHTTPS(cfg.ForceHTTPS))
	r.Use(requestinfo.Enrich(cfg.Geo))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Preview-Token"},
		MaxAge:         300,
	}).Handler)

	r.Get("/healthz", h.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/home", h.getHome)

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.listPosts)
			r.Get("/featured", h.featuredPosts)
			r.Get("/search", h.searchPosts)
			r.Get("/{slug}", h.getPost)
		})
		r.Route("/events", func(r chi.Router) {
			r.Get("/", h.listEvents)
			r.Get("/featured", h.featuredEvents)
			r.Get("/search", h.searchEvents)
			r.Get("/{slug}", h.getEvent)
		})
		r.Route("/tenants", func(r chi.Router) {
			r.Get("/", h.listTenants)
			r.Get("/featured", h.featuredTenants)
			r.Get("/search", h.searchTenants)
			r.Get("/{slug}", h.getTenant)
		})
		r.Route("/promotions", func(r chi.Router) {
			r.Get("/", h.listPromotions)
			r.Get("/featured", h.featuredPromotions)
			r.Get("/search", h.searchPromotions)
			r.Get("/{id}", h.getPromotion)
		})

		r.Get("/categories", h.listCategories)
		r.Get("/vip/tiers", h.listVIPTiers)
		r.Get("/whats-on", h.listWhatsOn)
		r.Get("/whats-on/stream", h.streamChanges)
		r.Get("/images/probe", h.probeImage)

		r.Post("/contact", h.submitContact)
	})

	return r
}
