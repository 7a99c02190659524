// internal/httpapi/posts.go
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridianmall/arcade/internal/post"
)

func (h *Handler) postParams(r *http.Request) post.ListParams {
	return post.ListParams{
		Search:     r.URL.Query().Get("search"),
		Tags:       queryTags(r),
		CategoryID: queryInt64(r, "category_id"),
		Featured:   queryBoolPtr(r, "featured"),
		From:       queryTime(r, "from"),
		To:         queryTime(r, "to"),
		Page:       queryInt(r, "page", 1),
		PerPage:    queryInt(r, "per_page", 0),
		Admin:      h.isAdmin(r),
	}
}

// listPosts serves GET /v1/posts.  The result envelope carries the seed
// notice when every live path failed and bundled content is being shown.
func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	params := h.postParams(r)
	res, err := flight(h, r.Context(), flightKey(r, params.Admin), func(ctx context.Context) (*post.ListResult, error) {
		return h.Posts.List(ctx, params)
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, res)
}

// getPost serves GET /v1/posts/{slug}.
func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	p, err := h.Posts.BySlug(r.Context(), slug, h.isAdmin(r))
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

// featuredPosts serves GET /v1/posts/featured.
func (h *Handler) featuredPosts(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 3)
	items, err := flight(h, r.Context(), flightKey(r, false), func(ctx context.Context) ([]post.Post, error) {
		return h.Posts.Featured(ctx, limit)
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, items)
}

// searchPosts serves GET /v1/posts/search?q=term.
func (h *Handler) searchPosts(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	items, err := h.Posts.Search(r.Context(), term, queryLimit(r, 20))
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, items)
}
